// Package insights merges upstream findings, recommendations and risks and
// derives quick wins and the phased roadmap from them.
package insights

import (
	"fmt"
	"strings"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/bizhealth/internal/models"
	"github.com/ternarybob/bizhealth/internal/services/taxonomy"
)

const stage = "insights"

// Insights is the merged, deduplicated output of every analysis stage
type Insights struct {
	Findings        []models.Finding
	Recommendations []models.Recommendation
	Risks           []models.Risk
}

// Extractor merges analysis payloads onto canonical dimensions
type Extractor struct {
	resolver *taxonomy.Resolver
	logger   arbor.ILogger
}

// NewExtractor creates an extractor resolving dimensions through resolver
func NewExtractor(resolver *taxonomy.Resolver, logger arbor.ILogger) *Extractor {
	return &Extractor{
		resolver: resolver,
		logger:   logger,
	}
}

// Merge folds payloads from several stages together. Items sharing a dedup key
// keep the first occurrence; empty fields are filled from later duplicates and
// contributing stages are unioned. Ids are assigned per dimension in first
// occurrence order. An unknown dimension code is a configuration defect.
func (e *Extractor) Merge(payloads []models.AnalysisPayload) (*Insights, []models.Issue, error) {
	m := newMerger()

	for _, p := range payloads {
		spec, err := e.resolver.Resolve(p.DimensionCode)
		if err != nil {
			return nil, nil, &models.ConfigurationDefect{
				Kind:          models.DefectUnknownCode,
				DimensionCode: p.DimensionCode,
				Detail:        fmt.Sprintf("analysis stage %q", p.Stage),
				Err:           err,
			}
		}
		dim := spec.Code
		source := strings.TrimSpace(p.Stage)

		for _, item := range p.Findings {
			if m.skipEmpty(item, dim, source, "finding") {
				continue
			}
			m.addFinding(item, dim, source)
		}
		for _, item := range p.Recommendations {
			if m.skipEmpty(item, dim, source, "recommendation") {
				continue
			}
			m.addRecommendation(item, dim, source)
		}
		for _, item := range p.Risks {
			if m.skipEmpty(item, dim, source, "risk") {
				continue
			}
			m.addRisk(item, dim, source)
		}
	}

	e.logger.Debug().
		Int("findings", len(m.out.Findings)).
		Int("recommendations", len(m.out.Recommendations)).
		Int("risks", len(m.out.Risks)).
		Int("payloads", len(payloads)).
		Msg("Merged analysis payloads")
	return &m.out, m.issues, nil
}

type merger struct {
	out      Insights
	issues   []models.Issue
	findings map[string]int
	recs     map[string]int
	risks    map[string]int
	counters map[string]int
}

func newMerger() *merger {
	return &merger{
		findings: make(map[string]int),
		recs:     make(map[string]int),
		risks:    make(map[string]int),
		counters: make(map[string]int),
	}
}

func (m *merger) skipEmpty(item models.AnalysisItem, dim, source, kind string) bool {
	if NormalizeTitle(item.Title) != "" {
		return false
	}
	m.issues = append(m.issues, models.Issue{
		Severity:      models.SeverityWarning,
		Code:          models.IssueEmptyInsightTitle,
		Stage:         stage,
		DimensionCode: dim,
		Message:       fmt.Sprintf("%s from stage %q has no title and was dropped", kind, source),
	})
	return true
}

func (m *merger) nextID(prefix, dim string) string {
	key := prefix + "-" + dim
	m.counters[key]++
	return fmt.Sprintf("%s-%03d", key, m.counters[key])
}

func (m *merger) addFinding(item models.AnalysisItem, dim, source string) {
	key := DedupKey(item.Title, dim)
	if i, ok := m.findings[key]; ok {
		f := &m.out.Findings[i]
		fill(&f.Description, item.Description)
		if f.Severity == "" {
			f.Severity = severity(item.Severity)
		}
		f.Sources = union(f.Sources, source)
		return
	}
	m.findings[key] = len(m.out.Findings)
	m.out.Findings = append(m.out.Findings, models.Finding{
		ID:            m.nextID("FND", dim),
		DimensionCode: dim,
		Title:         strings.TrimSpace(item.Title),
		Description:   strings.TrimSpace(item.Description),
		Severity:      severity(item.Severity),
		Sources:       union(nil, source),
	})
}

func (m *merger) addRecommendation(item models.AnalysisItem, dim, source string) {
	key := DedupKey(item.Title, dim)
	if i, ok := m.recs[key]; ok {
		r := &m.out.Recommendations[i]
		fill(&r.Description, item.Description)
		if r.Impact == "" {
			r.Impact = grade(item.Impact)
		}
		if r.Effort == "" {
			r.Effort = grade(item.Effort)
		}
		if r.TimelineDays == nil {
			r.Timeline, r.TimelineDays = timeline(item.Timeline)
		}
		r.Sources = union(r.Sources, source)
		return
	}
	m.recs[key] = len(m.out.Recommendations)
	rec := models.Recommendation{
		ID:            m.nextID("REC", dim),
		DimensionCode: dim,
		Title:         strings.TrimSpace(item.Title),
		Description:   strings.TrimSpace(item.Description),
		Impact:        grade(item.Impact),
		Effort:        grade(item.Effort),
		Sources:       union(nil, source),
	}
	rec.Timeline, rec.TimelineDays = timeline(item.Timeline)
	m.out.Recommendations = append(m.out.Recommendations, rec)
}

func (m *merger) addRisk(item models.AnalysisItem, dim, source string) {
	key := DedupKey(item.Title, dim)
	if i, ok := m.risks[key]; ok {
		r := &m.out.Risks[i]
		fill(&r.Description, item.Description)
		if r.Severity == "" {
			r.Severity = severity(item.Severity)
		}
		if r.Impact == "" {
			r.Impact = grade(item.Impact)
		}
		r.Sources = union(r.Sources, source)
		return
	}
	m.risks[key] = len(m.out.Risks)
	m.out.Risks = append(m.out.Risks, models.Risk{
		ID:            m.nextID("RSK", dim),
		DimensionCode: dim,
		Title:         strings.TrimSpace(item.Title),
		Description:   strings.TrimSpace(item.Description),
		Severity:      severity(item.Severity),
		Impact:        grade(item.Impact),
		Sources:       union(nil, source),
	})
}

func fill(dst *string, value string) {
	if *dst == "" {
		*dst = strings.TrimSpace(value)
	}
}

func union(sources []string, source string) []string {
	if source == "" {
		return sources
	}
	for _, s := range sources {
		if s == source {
			return sources
		}
	}
	return append(sources, source)
}

// grade accepts low, medium and high; anything else is left unset
func grade(s string) models.Level {
	switch l := models.ParseLevel(s); l {
	case models.LevelLow, models.LevelMedium, models.LevelHigh:
		return l
	default:
		return ""
	}
}

func severity(s string) models.Level {
	if l := models.ParseLevel(s); l == models.LevelCritical {
		return l
	}
	return grade(s)
}

func timeline(label string) (string, *int) {
	label = strings.TrimSpace(label)
	days, ok := ParseTimeline(label)
	if !ok {
		return label, nil
	}
	return label, &days
}
