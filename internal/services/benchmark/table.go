// Package benchmark compares scores against peer-cohort distributions.
package benchmark

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/ternarybob/bizhealth/internal/models"
	"gopkg.in/yaml.v3"
)

// Wildcard matches any value in one cohort key segment
const Wildcard = "*"

// CohortKey identifies a peer group by industry, size band and growth stage
type CohortKey struct {
	Industry    string
	SizeBand    string
	GrowthStage string
}

// KeyFor builds the cohort key of a company. Empty attributes become wildcards.
func KeyFor(profile models.CompanyProfile) CohortKey {
	return CohortKey{
		Industry:    segment(profile.Industry),
		SizeBand:    segment(profile.SizeBand),
		GrowthStage: segment(profile.GrowthStage),
	}
}

// ParseCohortKey reads an "industry|size_band|growth_stage" key
func ParseCohortKey(s string) (CohortKey, error) {
	parts := strings.Split(s, "|")
	if len(parts) != 3 {
		return CohortKey{}, fmt.Errorf("cohort key %q must have three segments", s)
	}
	return CohortKey{
		Industry:    segment(parts[0]),
		SizeBand:    segment(parts[1]),
		GrowthStage: segment(parts[2]),
	}, nil
}

func segment(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return Wildcard
	}
	return s
}

func (k CohortKey) String() string {
	return k.Industry + "|" + k.SizeBand + "|" + k.GrowthStage
}

// fallbacks lists the exact key then the progressively wider wildcard cohorts
func (k CohortKey) fallbacks() []CohortKey {
	return []CohortKey{
		k,
		{Industry: k.Industry, SizeBand: k.SizeBand, GrowthStage: Wildcard},
		{Industry: k.Industry, SizeBand: Wildcard, GrowthStage: Wildcard},
		{Industry: Wildcard, SizeBand: Wildcard, GrowthStage: Wildcard},
	}
}

// Point maps a score onto a cohort percentile
type Point struct {
	Score      float64 `yaml:"score"`
	Percentile float64 `yaml:"percentile"`
}

// Distribution is a cohort's score-to-percentile curve, sorted by score
type Distribution []Point

// Cohort holds the distributions of one peer group
type Cohort struct {
	Overall    Distribution
	Chapters   map[string]Distribution
	Dimensions map[string]Distribution
}

// Table is the loaded, immutable benchmark data set
type Table struct {
	version string
	cohorts map[CohortKey]*Cohort
}

type fileCohort struct {
	Key        string             `yaml:"key"`
	Overall    []Point            `yaml:"overall"`
	Chapters   map[string][]Point `yaml:"chapters"`
	Dimensions map[string][]Point `yaml:"dimensions"`
}

type fileTable struct {
	Version string       `yaml:"version"`
	Cohorts []fileCohort `yaml:"cohorts"`
}

// LoadTable reads a benchmark table from a YAML file
func LoadTable(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read benchmark file %s: %w", path, err)
	}
	table, err := ParseTable(data)
	if err != nil {
		return nil, fmt.Errorf("benchmark file %s: %w", path, err)
	}
	return table, nil
}

// ParseTable decodes benchmark YAML and checks every distribution
func ParseTable(data []byte) (*Table, error) {
	var raw fileTable
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse benchmark table: %w", err)
	}

	t := &Table{version: raw.Version, cohorts: make(map[CohortKey]*Cohort, len(raw.Cohorts))}
	for i, fc := range raw.Cohorts {
		key, err := ParseCohortKey(fc.Key)
		if err != nil {
			return nil, fmt.Errorf("cohorts[%d]: %w", i, err)
		}
		if _, dup := t.cohorts[key]; dup {
			return nil, fmt.Errorf("cohorts[%d]: duplicate cohort %s", i, key)
		}

		cohort := &Cohort{
			Chapters:   make(map[string]Distribution, len(fc.Chapters)),
			Dimensions: make(map[string]Distribution, len(fc.Dimensions)),
		}
		if cohort.Overall, err = newDistribution(fc.Overall); err != nil {
			return nil, fmt.Errorf("cohort %s overall: %w", key, err)
		}
		for code, pts := range fc.Chapters {
			d, err := newDistribution(pts)
			if err != nil {
				return nil, fmt.Errorf("cohort %s chapter %s: %w", key, code, err)
			}
			cohort.Chapters[models.CanonicalCode(code)] = d
		}
		for code, pts := range fc.Dimensions {
			d, err := newDistribution(pts)
			if err != nil {
				return nil, fmt.Errorf("cohort %s dimension %s: %w", key, code, err)
			}
			cohort.Dimensions[models.CanonicalCode(code)] = d
		}
		t.cohorts[key] = cohort
	}
	return t, nil
}

func newDistribution(points []Point) (Distribution, error) {
	if len(points) == 0 {
		return nil, nil
	}
	d := append(Distribution(nil), points...)
	sort.SliceStable(d, func(i, j int) bool { return d[i].Score < d[j].Score })
	for i, p := range d {
		if p.Percentile < 0 || p.Percentile > 100 {
			return nil, fmt.Errorf("percentile %v outside 0-100", p.Percentile)
		}
		if i > 0 {
			if p.Score == d[i-1].Score {
				return nil, fmt.Errorf("score %v listed twice", p.Score)
			}
			if p.Percentile < d[i-1].Percentile {
				return nil, fmt.Errorf("percentile decreases at score %v", p.Score)
			}
		}
	}
	return d, nil
}

// Version returns the declared data set version
func (t *Table) Version() string {
	if t == nil {
		return ""
	}
	return t.version
}

// Resolve finds the cohort used for key: the exact key first, then the
// wildcard cohorts that the table defines.
func (t *Table) Resolve(key CohortKey) (CohortKey, *Cohort, bool) {
	if t == nil {
		return CohortKey{}, nil, false
	}
	for _, candidate := range key.fallbacks() {
		if c, ok := t.cohorts[candidate]; ok {
			return candidate, c, true
		}
	}
	return CohortKey{}, nil, false
}

// Distribution selects the curve for a hierarchy level and code
func (c *Cohort) Distribution(level models.BenchmarkLevel, code string) Distribution {
	switch level {
	case models.BenchmarkOverall:
		return c.Overall
	case models.BenchmarkChapter:
		return c.Chapters[models.CanonicalCode(code)]
	case models.BenchmarkDimension:
		return c.Dimensions[models.CanonicalCode(code)]
	default:
		return nil
	}
}
