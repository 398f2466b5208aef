package models

import "strings"

// Level grades impact, effort and severity of insights
type Level string

const (
	LevelLow      Level = "low"
	LevelMedium   Level = "medium"
	LevelHigh     Level = "high"
	LevelCritical Level = "critical"
)

// ParseLevel normalizes a level label; unknown labels are returned as-is lowercased
func ParseLevel(s string) Level {
	return Level(strings.ToLower(strings.TrimSpace(s)))
}

// AnalysisItem is one structured finding, recommendation or risk produced upstream
type AnalysisItem struct {
	Title       string `json:"title" yaml:"title"`
	Description string `json:"description" yaml:"description"`
	Impact      string `json:"impact,omitempty" yaml:"impact"`
	Effort      string `json:"effort,omitempty" yaml:"effort"`
	Timeline    string `json:"timeline,omitempty" yaml:"timeline"`
	Severity    string `json:"severity,omitempty" yaml:"severity"`
}

// AnalysisPayload is the per-dimension output of one upstream analysis stage
type AnalysisPayload struct {
	Stage           string         `json:"stage" yaml:"stage"`
	DimensionCode   string         `json:"dimension_code" yaml:"dimension_code"`
	Findings        []AnalysisItem `json:"findings" yaml:"findings"`
	Recommendations []AnalysisItem `json:"recommendations" yaml:"recommendations"`
	Risks           []AnalysisItem `json:"risks" yaml:"risks"`
}

// Finding is a merged observation about one dimension
type Finding struct {
	ID            string   `json:"id" validate:"required"`
	DimensionCode string   `json:"dimension_code" validate:"required"`
	Title         string   `json:"title" validate:"required,max=300"`
	Description   string   `json:"description"`
	Severity      Level    `json:"severity" validate:"omitempty,oneof=low medium high critical"`
	Sources       []string `json:"sources,omitempty"`
}

// Recommendation is a merged action item
type Recommendation struct {
	ID            string   `json:"id" validate:"required"`
	DimensionCode string   `json:"dimension_code" validate:"required"`
	Title         string   `json:"title" validate:"required,max=300"`
	Description   string   `json:"description"`
	Impact        Level    `json:"impact" validate:"omitempty,oneof=low medium high"`
	Effort        Level    `json:"effort" validate:"omitempty,oneof=low medium high"`
	Timeline      string   `json:"timeline,omitempty"`
	TimelineDays  *int     `json:"timeline_days,omitempty" validate:"omitempty,gte=0"`
	Sources       []string `json:"sources,omitempty"`
}

// Risk is a merged risk statement
type Risk struct {
	ID            string   `json:"id" validate:"required"`
	DimensionCode string   `json:"dimension_code" validate:"required"`
	Title         string   `json:"title" validate:"required,max=300"`
	Description   string   `json:"description"`
	Severity      Level    `json:"severity" validate:"omitempty,oneof=low medium high critical"`
	Impact        Level    `json:"impact" validate:"omitempty,oneof=low medium high"`
	Sources       []string `json:"sources,omitempty"`
}

// QuickWin references a recommendation that passed the quick-win filter
type QuickWin struct {
	RecommendationID string `json:"recommendation_id" validate:"required"`
	DimensionCode    string `json:"dimension_code" validate:"required"`
	Title            string `json:"title" validate:"required"`
	Impact           Level  `json:"impact" validate:"required,oneof=low medium high"`
	Effort           Level  `json:"effort" validate:"required,oneof=low medium high"`
	TimelineDays     int    `json:"timeline_days" validate:"gte=0"`
}

// RoadmapItem places one recommendation in a phase
type RoadmapItem struct {
	RecommendationID string `json:"recommendation_id" validate:"required"`
	DimensionCode    string `json:"dimension_code" validate:"required"`
	Title            string `json:"title" validate:"required"`
	TimelineDays     *int   `json:"timeline_days,omitempty"`
}

// RoadmapPhase is one time-boxed implementation bucket
type RoadmapPhase struct {
	Key     string        `json:"key" validate:"required"`
	Label   string        `json:"label" validate:"required"`
	MinDays int           `json:"min_days" validate:"gte=0"`
	MaxDays *int          `json:"max_days,omitempty"`
	Items   []RoadmapItem `json:"items" validate:"dive"`
}

// Roadmap holds the phased plan plus recommendations that carry no timeline
type Roadmap struct {
	Phases      []RoadmapPhase `json:"phases" validate:"required,min=1,dive"`
	Unscheduled []RoadmapItem  `json:"unscheduled" validate:"dive"`
}
