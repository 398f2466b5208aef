package benchmark

import (
	"github.com/ternarybob/bizhealth/internal/models"
)

// Comparator turns scores into cohort percentiles. Safe for concurrent use.
type Comparator struct {
	table *Table
}

// NewComparator creates a comparator over a loaded table; nil means no data
func NewComparator(table *Table) *Comparator {
	return &Comparator{table: table}
}

// HasCohort reports whether any cohort serves key
func (c *Comparator) HasCohort(key CohortKey) bool {
	_, _, ok := c.table.Resolve(key)
	return ok
}

// Percentile places score within the cohort distribution for level and code.
// Unscored values or missing data give a nil percentile and PositionUnknown.
func (c *Comparator) Percentile(score *float64, level models.BenchmarkLevel, code string, key CohortKey) models.BenchmarkResult {
	unknown := models.BenchmarkResult{Position: models.PositionUnknown}
	if score == nil {
		return unknown
	}
	resolved, cohort, ok := c.table.Resolve(key)
	if !ok {
		return unknown
	}
	dist := cohort.Distribution(level, code)
	if len(dist) == 0 {
		return unknown
	}

	p := dist.Interpolate(*score)
	return models.BenchmarkResult{
		Percentile: &p,
		Position:   PositionFor(p),
		CohortKey:  resolved.String(),
	}
}

// Interpolate maps a score linearly between the surrounding breakpoints.
// Scores outside the curve take the nearest end.
func (d Distribution) Interpolate(score float64) float64 {
	if score <= d[0].Score {
		return d[0].Percentile
	}
	last := d[len(d)-1]
	if score >= last.Score {
		return last.Percentile
	}
	for i := 1; i < len(d); i++ {
		hi := d[i]
		if score > hi.Score {
			continue
		}
		lo := d[i-1]
		frac := (score - lo.Score) / (hi.Score - lo.Score)
		return lo.Percentile + frac*(hi.Percentile-lo.Percentile)
	}
	return last.Percentile
}

// PositionFor buckets a percentile into quartile positions
func PositionFor(percentile float64) models.Position {
	switch {
	case percentile < 25:
		return models.PositionBottomQuartile
	case percentile < 50:
		return models.PositionBelowMedian
	case percentile < 75:
		return models.PositionAboveMedian
	default:
		return models.PositionTopQuartile
	}
}
