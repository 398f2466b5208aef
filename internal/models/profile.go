package models

// CompanyProfile carries the attributes used for benchmark cohort keying
type CompanyProfile struct {
	Name        string `json:"name" yaml:"name"`
	Industry    string `json:"industry" yaml:"industry"`
	SizeBand    string `json:"size_band" yaml:"size_band"`
	GrowthStage string `json:"growth_stage" yaml:"growth_stage"`
	Region      string `json:"region,omitempty" yaml:"region"`
}

// Trajectory is supplied by the orchestrator when prior-run data exists
type Trajectory string

const (
	TrajectoryGrowing    Trajectory = "growing"
	TrajectoryStable     Trajectory = "stable"
	TrajectoryStagnating Trajectory = "stagnating"
	TrajectoryDeclining  Trajectory = "declining"
)
