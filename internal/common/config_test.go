package common

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestNewDefaultConfig(t *testing.T) {
	cfg := NewDefaultConfig()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, 0.5, cfg.Scoring.PercentageClampTolerance)
	assert.Equal(t, []string{"FIN", "STR"}, cfg.Quality.CriticalDimensions)
	assert.Equal(t, 0, cfg.Quality.MaxCriticalIssues)
	assert.Equal(t, 90, cfg.Insights.QuickWinMaxDays)
	assert.Empty(t, cfg.Roadmap.Phases)
}

func TestLoadFromFiles_LaterFilesOverride(t *testing.T) {
	base := writeConfig(t, "base.toml", `
[engine]
workers = 2

[quality]
max_warnings = 5
critical_dimensions = ["FIN"]
`)
	override := writeConfig(t, "override.toml", `
[quality]
max_warnings = 9

[[roadmap.phases]]
key = "now"
label = "Now"
min_days = 0
max_days = 60

[[roadmap.phases]]
key = "later"
label = "Later"
min_days = 61
`)

	cfg, err := LoadFromFiles(base, override)
	require.NoError(t, err)
	assert.Equal(t, 2, cfg.Engine.Workers)
	assert.Equal(t, 9, cfg.Quality.MaxWarnings)
	assert.Equal(t, []string{"FIN"}, cfg.Quality.CriticalDimensions)
	require.Len(t, cfg.Roadmap.Phases, 2)
	assert.Equal(t, 60, cfg.Roadmap.Phases[0].MaxDays)
}

func TestLoadFromFiles_EnvOverrides(t *testing.T) {
	t.Setenv("BIZHEALTH_ENGINE_WORKERS", "3")
	t.Setenv("BIZHEALTH_QUALITY_CRITICAL_DIMENSIONS", "fin, ops ,")
	t.Setenv("BIZHEALTH_LOG_OUTPUT", "stdout,file")
	t.Setenv("BIZHEALTH_PERCENTAGE_CLAMP_TOLERANCE", "1.5")

	cfg, err := LoadFromFiles()
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.Engine.Workers)
	assert.Equal(t, []string{"fin", "ops"}, cfg.Quality.CriticalDimensions)
	assert.Equal(t, []string{"stdout", "file"}, cfg.Logging.Output)
	assert.Equal(t, 1.5, cfg.Scoring.PercentageClampTolerance)
}

func TestLoadFromFiles_Errors(t *testing.T) {
	_, err := LoadFromFiles(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)

	_, err = LoadFromFiles(writeConfig(t, "bad.toml", "[engine\nworkers = 1"))
	assert.Error(t, err)

	_, err = LoadFromFiles(writeConfig(t, "bands.toml", "[scoring]\nband_attention = 90.0\n"))
	assert.Error(t, err)

	_, err = LoadFromFiles(writeConfig(t, "workers.toml", "[engine]\nworkers = 0\n"))
	assert.Error(t, err)
}

func TestDeepCloneConfig(t *testing.T) {
	cfg := NewDefaultConfig()
	clone := DeepCloneConfig(cfg)
	clone.Quality.CriticalDimensions[0] = "OPS"
	clone.Logging.Output[0] = "file"

	assert.Equal(t, "FIN", cfg.Quality.CriticalDimensions[0])
	assert.Equal(t, "stdout", cfg.Logging.Output[0])
	assert.Nil(t, DeepCloneConfig(nil))
}

func TestNewRunID(t *testing.T) {
	a, b := NewRunID(), NewRunID()
	assert.NotEqual(t, a, b)
	assert.Regexp(t, `^run_[0-9a-f-]{36}$`, a)
}
