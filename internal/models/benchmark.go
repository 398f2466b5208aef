package models

// BenchmarkLevel names the hierarchy level a benchmark applies to
type BenchmarkLevel string

const (
	BenchmarkOverall   BenchmarkLevel = "overall"
	BenchmarkChapter   BenchmarkLevel = "chapter"
	BenchmarkDimension BenchmarkLevel = "dimension"
)

// Position is the qualitative placement of a score within its cohort
type Position string

const (
	PositionBottomQuartile Position = "bottom_quartile"
	PositionBelowMedian    Position = "below_median"
	PositionAboveMedian    Position = "above_median"
	PositionTopQuartile    Position = "top_quartile"
	PositionUnknown        Position = "unknown"
)

// BenchmarkResult is a percentile lookup against a peer cohort.
// Percentile is nil whenever no cohort data exists.
type BenchmarkResult struct {
	Percentile *float64 `json:"percentile" validate:"omitempty,gte=0,lte=100"`
	Position   Position `json:"position" validate:"required,oneof=bottom_quartile below_median above_median top_quartile unknown"`
	CohortKey  string   `json:"cohort_key,omitempty"`
}
