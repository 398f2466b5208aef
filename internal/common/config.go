package common

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

// Config represents the application configuration
type Config struct {
	Environment string         `toml:"environment"` // "development" or "production"
	Logging     LoggingConfig  `toml:"logging"`
	Storage     StorageConfig  `toml:"storage"`
	Engine      EngineConfig   `toml:"engine"`
	Scoring     ScoringConfig  `toml:"scoring"`
	Quality     QualityConfig  `toml:"quality"`
	Insights    InsightsConfig `toml:"insights"`
	Roadmap     RoadmapConfig  `toml:"roadmap"`
}

type LoggingConfig struct {
	Level      string   `toml:"level"`       // "trace", "debug", "info", "warn", "error"
	Format     string   `toml:"format"`      // "json" or "text"
	Output     []string `toml:"output"`      // "stdout", "file"
	TimeFormat string   `toml:"time_format"` // Time format for logs (default: "15:04:05")
}

type StorageConfig struct {
	Badger BadgerConfig `toml:"badger"`
}

// BadgerConfig represents BadgerDB-specific configuration
type BadgerConfig struct {
	Path           string `toml:"path"`             // Database directory path
	ResetOnStartup bool   `toml:"reset_on_startup"` // Delete database on startup for clean test runs
	InMemory       bool   `toml:"in_memory"`        // Keep audits in memory only (tests, dry runs)
}

// EngineConfig controls run orchestration
type EngineConfig struct {
	Workers       int    `toml:"workers"`        // Normalization fan-out limit
	FrameworkFile string `toml:"framework_file"` // Optional framework override (TOML); empty uses the embedded framework
	BenchmarkFile string `toml:"benchmark_file"` // Optional benchmark table (YAML)
}

// ScoringConfig holds normalization and banding thresholds
type ScoringConfig struct {
	BandAttention            float64  `toml:"band_attention"`
	BandProficiency          float64  `toml:"band_proficiency"`
	BandExcellence           float64  `toml:"band_excellence"`
	PercentageClampTolerance float64  `toml:"percentage_clamp_tolerance"`
	ConfidenceHigh           float64  `toml:"confidence_high"`   // Answered fraction for high confidence
	ConfidenceMedium         float64  `toml:"confidence_medium"` // Answered fraction for medium confidence
	ResponseTypes            []string `toml:"response_types"`    // Accepted response types; empty accepts all
}

// QualityConfig holds the audit verdict thresholds
type QualityConfig struct {
	MaxCriticalIssues       int      `toml:"max_critical_issues"`
	MaxWarnings             int      `toml:"max_warnings"`
	CriticalDimensions      []string `toml:"critical_dimensions"`
	MinCriticalCompleteness float64  `toml:"min_critical_completeness"`
}

// InsightsConfig holds the quick-win filter
type InsightsConfig struct {
	QuickWinImpacts []string `toml:"quick_win_impacts"`
	QuickWinEfforts []string `toml:"quick_win_efforts"`
	QuickWinMaxDays int      `toml:"quick_win_max_days"`
}

// RoadmapConfig lists the roadmap phases in ascending order.
// Empty uses the 0-30 / 31-90 / 91-180 / 180+ day defaults.
type RoadmapConfig struct {
	Phases []RoadmapPhaseConfig `toml:"phases"`
}

// RoadmapPhaseConfig is one phase; MaxDays 0 on the last phase means open ended
type RoadmapPhaseConfig struct {
	Key     string `toml:"key"`
	Label   string `toml:"label"`
	MinDays int    `toml:"min_days"`
	MaxDays int    `toml:"max_days"`
}

// NewDefaultConfig creates a configuration with default values
func NewDefaultConfig() *Config {
	return &Config{
		Environment: "development",
		Logging: LoggingConfig{
			Level:      "info",
			Format:     "text",
			Output:     []string{"stdout"},
			TimeFormat: "15:04:05",
		},
		Storage: StorageConfig{
			Badger: BadgerConfig{
				Path: "./data",
			},
		},
		Engine: EngineConfig{
			Workers: 8,
		},
		Scoring: ScoringConfig{
			BandAttention:            40,
			BandProficiency:          60,
			BandExcellence:           80,
			PercentageClampTolerance: 0.5,
			ConfidenceHigh:           0.8,
			ConfidenceMedium:         0.5,
		},
		Quality: QualityConfig{
			MaxCriticalIssues:       0,
			MaxWarnings:             25,
			CriticalDimensions:      []string{"FIN", "STR"},
			MinCriticalCompleteness: 0.5,
		},
		Insights: InsightsConfig{
			QuickWinImpacts: []string{"medium", "high"},
			QuickWinEfforts: []string{"low"},
			QuickWinMaxDays: 90,
		},
	}
}

// LoadFromFile loads configuration with priority: default -> file -> env -> CLI
func LoadFromFile(path string) (*Config, error) {
	if path == "" {
		return LoadFromFiles()
	}
	return LoadFromFiles(path)
}

// LoadFromFiles loads configuration from multiple files with priority: default -> file1 -> file2 -> ... -> env
// Later files override earlier files.
func LoadFromFiles(paths ...string) (*Config, error) {
	config := NewDefaultConfig()

	for i, path := range paths {
		if path == "" {
			continue
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}

		// Unmarshal into config (merges with existing values, later values override)
		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s (file %d of %d): %w", path, i+1, len(paths), err)
		}
	}

	applyEnvOverrides(config)

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// applyEnvOverrides applies BIZHEALTH_* environment variable overrides to config
func applyEnvOverrides(config *Config) {
	if env := os.Getenv("BIZHEALTH_ENV"); env != "" {
		config.Environment = env
	}

	// Logging configuration
	if level := os.Getenv("BIZHEALTH_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}
	if format := os.Getenv("BIZHEALTH_LOG_FORMAT"); format != "" {
		config.Logging.Format = format
	}
	if output := os.Getenv("BIZHEALTH_LOG_OUTPUT"); output != "" {
		if outputs := splitList(output); len(outputs) > 0 {
			config.Logging.Output = outputs
		}
	}

	// Storage configuration
	if badgerPath := os.Getenv("BIZHEALTH_BADGER_PATH"); badgerPath != "" {
		config.Storage.Badger.Path = badgerPath
	}

	// Engine configuration
	if workers := os.Getenv("BIZHEALTH_ENGINE_WORKERS"); workers != "" {
		if w, err := strconv.Atoi(workers); err == nil {
			config.Engine.Workers = w
		}
	}
	if fw := os.Getenv("BIZHEALTH_FRAMEWORK_FILE"); fw != "" {
		config.Engine.FrameworkFile = fw
	}
	if bm := os.Getenv("BIZHEALTH_BENCHMARK_FILE"); bm != "" {
		config.Engine.BenchmarkFile = bm
	}

	// Scoring configuration
	if tol := os.Getenv("BIZHEALTH_PERCENTAGE_CLAMP_TOLERANCE"); tol != "" {
		if t, err := strconv.ParseFloat(tol, 64); err == nil {
			config.Scoring.PercentageClampTolerance = t
		}
	}
	if types := os.Getenv("BIZHEALTH_RESPONSE_TYPES"); types != "" {
		config.Scoring.ResponseTypes = splitList(types)
	}

	// Quality configuration
	if maxCritical := os.Getenv("BIZHEALTH_QUALITY_MAX_CRITICAL"); maxCritical != "" {
		if m, err := strconv.Atoi(maxCritical); err == nil {
			config.Quality.MaxCriticalIssues = m
		}
	}
	if maxWarnings := os.Getenv("BIZHEALTH_QUALITY_MAX_WARNINGS"); maxWarnings != "" {
		if m, err := strconv.Atoi(maxWarnings); err == nil {
			config.Quality.MaxWarnings = m
		}
	}
	if dims := os.Getenv("BIZHEALTH_QUALITY_CRITICAL_DIMENSIONS"); dims != "" {
		config.Quality.CriticalDimensions = splitList(dims)
	}
}

// ApplyFlagOverrides applies command-line flag overrides to config
func ApplyFlagOverrides(config *Config, benchmarkFile string) {
	if benchmarkFile != "" {
		config.Engine.BenchmarkFile = benchmarkFile
	}
}

// Validate rejects threshold combinations the engine cannot use
func (c *Config) Validate() error {
	s := c.Scoring
	if !(0 < s.BandAttention && s.BandAttention < s.BandProficiency && s.BandProficiency < s.BandExcellence && s.BandExcellence <= 100) {
		return fmt.Errorf("scoring bands must ascend within 0-100, got %v/%v/%v", s.BandAttention, s.BandProficiency, s.BandExcellence)
	}
	if s.PercentageClampTolerance < 0 {
		return fmt.Errorf("scoring.percentage_clamp_tolerance must not be negative")
	}
	if !(0 < s.ConfidenceMedium && s.ConfidenceMedium <= s.ConfidenceHigh && s.ConfidenceHigh <= 1) {
		return fmt.Errorf("scoring confidence thresholds must satisfy 0 < medium <= high <= 1")
	}
	if c.Engine.Workers < 1 {
		return fmt.Errorf("engine.workers must be at least 1, got %d", c.Engine.Workers)
	}
	if c.Quality.MaxCriticalIssues < 0 || c.Quality.MaxWarnings < 0 {
		return fmt.Errorf("quality limits must not be negative")
	}
	if m := c.Quality.MinCriticalCompleteness; m < 0 || m > 1 {
		return fmt.Errorf("quality.min_critical_completeness must be within 0-1, got %v", m)
	}
	for i, p := range c.Roadmap.Phases {
		if p.Key == "" {
			return fmt.Errorf("roadmap.phases[%d] needs a key", i)
		}
	}
	return nil
}

// IsProduction returns true if the environment is set to production
func (c *Config) IsProduction() bool {
	env := strings.ToLower(strings.TrimSpace(c.Environment))
	return env == "production" || env == "prod"
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// DeepCloneConfig creates a deep copy of the Config struct
func DeepCloneConfig(c *Config) *Config {
	if c == nil {
		return nil
	}

	clone := *c
	clone.Logging.Output = append([]string(nil), c.Logging.Output...)
	clone.Scoring.ResponseTypes = append([]string(nil), c.Scoring.ResponseTypes...)
	clone.Quality.CriticalDimensions = append([]string(nil), c.Quality.CriticalDimensions...)
	clone.Insights.QuickWinImpacts = append([]string(nil), c.Insights.QuickWinImpacts...)
	clone.Insights.QuickWinEfforts = append([]string(nil), c.Insights.QuickWinEfforts...)
	clone.Roadmap.Phases = append([]RoadmapPhaseConfig(nil), c.Roadmap.Phases...)
	return &clone
}
