package models

import "time"

// IDMSchemaVersion is the version of the InsightsModel contract
const IDMSchemaVersion = "1.0"

// InsightsModel is the final artifact of a run. It is only a deliverable once
// it has passed contract validation.
type InsightsModel struct {
	Meta            *IDMMeta         `json:"meta" validate:"required"`
	Chapters        []ChapterScore   `json:"chapters" validate:"required,min=1,max=4,dive"`
	Dimensions      []DimensionScore `json:"dimensions" validate:"required,min=1,max=12,dive"`
	Findings        []Finding        `json:"findings" validate:"max=500,dive"`
	Recommendations []Recommendation `json:"recommendations" validate:"max=500,dive"`
	QuickWins       []QuickWin       `json:"quick_wins" validate:"max=100,dive"`
	Risks           []Risk           `json:"risks" validate:"max=500,dive"`
	Roadmap         *Roadmap         `json:"roadmap" validate:"required"`
	ScoresSummary   *ScoresSummary   `json:"scores_summary" validate:"required"`
	QualitySummary  *QualitySummary  `json:"quality_summary" validate:"required"`
}

// IDMMeta identifies the run that produced the model
type IDMMeta struct {
	SchemaVersion    string         `json:"schema_version" validate:"required,eq=1.0"`
	RunID            string         `json:"run_id" validate:"required"`
	GeneratedAt      time.Time      `json:"generated_at" validate:"required"`
	FrameworkVersion string         `json:"framework_version" validate:"required"`
	Company          CompanyProfile `json:"company"`
}

// ScoresSummary is the headline view of the hierarchy
type ScoresSummary struct {
	Overall            *float64         `json:"overall" validate:"omitempty,gte=0,lte=100"`
	OverallBand        ScoreBand        `json:"overall_band" validate:"omitempty,oneof=critical attention proficiency excellence"`
	OverallBenchmark   *BenchmarkResult `json:"overall_benchmark,omitempty"`
	Trajectory         Trajectory       `json:"trajectory,omitempty" validate:"omitempty,oneof=growing stable stagnating declining"`
	PriorOverall       *float64         `json:"prior_overall,omitempty" validate:"omitempty,gte=0,lte=100"`
	Delta              *float64         `json:"delta,omitempty" validate:"omitempty,gte=-100,lte=100"`
	StrongestDimension string           `json:"strongest_dimension,omitempty"`
	WeakestDimension   string           `json:"weakest_dimension,omitempty"`
	ScoredDimensions   int              `json:"scored_dimensions" validate:"gte=0"`
}

// QualitySummary summarizes the run's quality audit inside the model
type QualitySummary struct {
	Status             AuditStatus `json:"status" validate:"required,oneof=PASS FAIL NEEDS_REVIEW"`
	CriticalCount      int         `json:"critical_count" validate:"gte=0"`
	WarningCount       int         `json:"warning_count" validate:"gte=0"`
	InfoCount          int         `json:"info_count" validate:"gte=0"`
	DimensionsComplete int         `json:"dimensions_complete" validate:"gte=0"`
	DimensionsPartial  int         `json:"dimensions_partial" validate:"gte=0"`
	DimensionsSkipped  int         `json:"dimensions_skipped" validate:"gte=0"`
}
