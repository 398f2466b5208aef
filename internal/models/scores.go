package models

// ScoreBand is the qualitative label for a 0-100 score
type ScoreBand string

const (
	BandCritical    ScoreBand = "critical"
	BandAttention   ScoreBand = "attention"
	BandProficiency ScoreBand = "proficiency"
	BandExcellence  ScoreBand = "excellence"
	// BandUnscored is used when the score is nil
	BandUnscored ScoreBand = ""
)

// CompletionStatus describes how much of an aggregate's input was present
type CompletionStatus string

const (
	StatusComplete CompletionStatus = "complete"
	StatusPartial  CompletionStatus = "partial"
	StatusSkipped  CompletionStatus = "skipped"
)

// Confidence is derived from the fraction of expected questions answered
type Confidence string

const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
	ConfidenceNone   Confidence = "none"
)

// SubIndicatorScore aggregates the questions of one sub-indicator
type SubIndicatorScore struct {
	Code              string           `json:"code" validate:"required"`
	Name              string           `json:"name,omitempty"`
	DimensionCode     string           `json:"dimension_code" validate:"required"`
	Score             *float64         `json:"score" validate:"omitempty,gte=0,lte=100"`
	Status            CompletionStatus `json:"status" validate:"required,oneof=complete partial skipped"`
	QuestionsExpected int              `json:"questions_expected" validate:"gte=0"`
	QuestionsFound    int              `json:"questions_found" validate:"gte=0"`
}

// DimensionScore aggregates the sub-indicators of one canonical dimension
type DimensionScore struct {
	Code              string              `json:"code" validate:"required"`
	Name              string              `json:"name" validate:"required"`
	ChapterCode       string              `json:"chapter_code" validate:"required"`
	Score             *float64            `json:"score" validate:"omitempty,gte=0,lte=100"`
	Band              ScoreBand           `json:"band" validate:"omitempty,oneof=critical attention proficiency excellence"`
	Status            CompletionStatus    `json:"status" validate:"required,oneof=complete partial skipped"`
	Confidence        Confidence          `json:"confidence" validate:"required,oneof=high medium low none"`
	QuestionsExpected int                 `json:"questions_expected" validate:"gte=0"`
	QuestionsFound    int                 `json:"questions_found" validate:"gte=0"`
	SubIndicators     []SubIndicatorScore `json:"sub_indicators" validate:"required,min=1,max=10,dive"`
	Benchmark         *BenchmarkResult    `json:"benchmark,omitempty"`
}

// ChapterScore aggregates the dimension scores of one chapter
type ChapterScore struct {
	Code       string           `json:"code" validate:"required"`
	Name       string           `json:"name" validate:"required"`
	Score      *float64         `json:"score" validate:"omitempty,gte=0,lte=100"`
	Band       ScoreBand        `json:"band" validate:"omitempty,oneof=critical attention proficiency excellence"`
	Status     CompletionStatus `json:"status" validate:"required,oneof=complete partial skipped"`
	Dimensions []string         `json:"dimensions" validate:"required,min=1"`
	Benchmark  *BenchmarkResult `json:"benchmark,omitempty"`
}
