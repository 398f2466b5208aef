package assessment

import (
	"fmt"
	"time"

	"github.com/ternarybob/bizhealth/internal/models"
	"github.com/ternarybob/bizhealth/internal/services/benchmark"
	"github.com/ternarybob/bizhealth/internal/services/insights"
	"github.com/ternarybob/bizhealth/internal/services/scoring"
)

// benchmarkAll attaches cohort positions to every dimension and chapter and
// returns the overall position. A profile no cohort serves is recorded once.
func (e *Engine) benchmarkAll(r *run, profile models.CompanyProfile, h *scoring.Hierarchy) (*models.BenchmarkResult, error) {
	key := benchmark.KeyFor(profile)
	if !e.comparator.HasCohort(key) {
		if err := r.tracker.Record(models.Issue{
			Severity: models.SeverityInfo,
			Code:     models.IssueUnknownCohort,
			Stage:    "benchmark",
			Message:  fmt.Sprintf("no benchmark cohort for %s", key),
		}); err != nil {
			return nil, err
		}
	}

	for i := range h.Dimensions {
		d := &h.Dimensions[i]
		res := e.comparator.Percentile(d.Score, models.BenchmarkDimension, d.Code, key)
		d.Benchmark = &res
	}
	for i := range h.Chapters {
		c := &h.Chapters[i]
		res := e.comparator.Percentile(c.Score, models.BenchmarkChapter, c.Code, key)
		c.Benchmark = &res
	}
	overall := e.comparator.Percentile(h.Overall, models.BenchmarkOverall, "", key)
	return &overall, nil
}

// assemble builds the draft model; it is not a deliverable until validated
func (e *Engine) assemble(r *run, in Input, h *scoring.Hierarchy, overall *models.BenchmarkResult,
	merged *insights.Insights, quickWins []models.QuickWin, roadmap *models.Roadmap) *models.InsightsModel {
	return &models.InsightsModel{
		Meta: &models.IDMMeta{
			SchemaVersion:    models.IDMSchemaVersion,
			RunID:            r.id,
			GeneratedAt:      time.Now().UTC(),
			FrameworkVersion: e.table.Version(),
			Company:          in.Profile,
		},
		Chapters:        h.Chapters,
		Dimensions:      h.Dimensions,
		Findings:        merged.Findings,
		Recommendations: merged.Recommendations,
		QuickWins:       quickWins,
		Risks:           merged.Risks,
		Roadmap:         roadmap,
		ScoresSummary:   scoresSummary(h, overall, in.Trajectory, in.PriorOverall),
		QualitySummary:  qualitySummary(r.tracker.Snapshot(), h.Dimensions),
	}
}

// scoresSummary picks the strongest and weakest scored dimensions in framework
// order; ties keep the earlier dimension.
func scoresSummary(h *scoring.Hierarchy, overall *models.BenchmarkResult, trajectory models.Trajectory, prior *float64) *models.ScoresSummary {
	s := &models.ScoresSummary{
		Overall:          h.Overall,
		OverallBand:      h.OverallBand,
		OverallBenchmark: overall,
		Trajectory:       trajectory,
		PriorOverall:     prior,
	}

	var strongest, weakest *models.DimensionScore
	for i := range h.Dimensions {
		d := &h.Dimensions[i]
		if d.Score == nil {
			continue
		}
		s.ScoredDimensions++
		if strongest == nil || *d.Score > *strongest.Score {
			strongest = d
		}
		if weakest == nil || *d.Score < *weakest.Score {
			weakest = d
		}
	}
	if strongest != nil {
		s.StrongestDimension = strongest.Code
		s.WeakestDimension = weakest.Code
	}

	if h.Overall != nil && prior != nil {
		s.Delta = scoring.Ptr(*h.Overall - *prior)
	}
	return s
}

func qualitySummary(audit models.QualityAudit, dims []models.DimensionScore) *models.QualitySummary {
	s := &models.QualitySummary{
		Status:        audit.Status,
		CriticalCount: audit.CriticalCount,
		WarningCount:  audit.WarningCount,
		InfoCount:     audit.InfoCount,
	}
	for _, d := range dims {
		switch d.Status {
		case models.StatusComplete:
			s.DimensionsComplete++
		case models.StatusPartial:
			s.DimensionsPartial++
		default:
			s.DimensionsSkipped++
		}
	}
	return s
}
