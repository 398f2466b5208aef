package benchmark

import (
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/bizhealth/internal/models"
)

func loadTestTable(t *testing.T) *Table {
	t.Helper()
	table, err := LoadTable(filepath.Join("testdata", "benchmarks.yaml"))
	require.NoError(t, err)
	return table
}

func ptr(f float64) *float64 { return &f }

func TestKeyFor(t *testing.T) {
	key := KeyFor(models.CompanyProfile{Industry: " SaaS ", SizeBand: "SMB"})
	assert.Equal(t, "saas|smb|*", key.String())
}

func TestPercentileInterpolation(t *testing.T) {
	c := NewComparator(loadTestTable(t))
	key := CohortKey{Industry: "saas", SizeBand: "smb", GrowthStage: "growth"}

	tests := []struct {
		name     string
		score    float64
		level    models.BenchmarkLevel
		code     string
		want     float64
		position models.Position
	}{
		{"below curve", 10, models.BenchmarkOverall, "", 10, models.PositionBottomQuartile},
		{"midpoint", 40, models.BenchmarkOverall, "", 30, models.PositionBelowMedian},
		{"on breakpoint", 50, models.BenchmarkOverall, "", 50, models.PositionAboveMedian},
		{"upper segment", 65, models.BenchmarkOverall, "", 80, models.PositionTopQuartile},
		{"above curve", 95, models.BenchmarkOverall, "", 90, models.PositionTopQuartile},
		{"chapter", 60, models.BenchmarkChapter, "GE", 50, models.PositionAboveMedian},
		{"dimension code case", 40, models.BenchmarkDimension, "FIN", 32.5, models.PositionBelowMedian},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := c.Percentile(ptr(tt.score), tt.level, tt.code, key)
			require.NotNil(t, got.Percentile)
			assert.InDelta(t, tt.want, *got.Percentile, 1e-9)
			assert.Equal(t, tt.position, got.Position)
			assert.Equal(t, "saas|smb|growth", got.CohortKey)
		})
	}
}

func TestPercentileWildcardFallback(t *testing.T) {
	c := NewComparator(loadTestTable(t))

	got := c.Percentile(ptr(25), models.BenchmarkOverall, "", CohortKey{Industry: "saas", SizeBand: "enterprise", GrowthStage: "mature"})
	require.NotNil(t, got.Percentile)
	assert.Equal(t, "saas|*|*", got.CohortKey)
	assert.InDelta(t, 25, *got.Percentile, 1e-9)

	got = c.Percentile(ptr(80), models.BenchmarkOverall, "", CohortKey{Industry: "mining", SizeBand: "smb", GrowthStage: "growth"})
	assert.Equal(t, "*|*|*", got.CohortKey)
	assert.Equal(t, models.PositionAboveMedian, got.Position)
}

func TestPercentileUnknown(t *testing.T) {
	c := NewComparator(loadTestTable(t))
	key := CohortKey{Industry: "saas", SizeBand: "smb", GrowthStage: "growth"}

	got := c.Percentile(nil, models.BenchmarkOverall, "", key)
	assert.Nil(t, got.Percentile)
	assert.Equal(t, models.PositionUnknown, got.Position)

	got = c.Percentile(ptr(50), models.BenchmarkDimension, "OPS", key)
	assert.Nil(t, got.Percentile)
	assert.Equal(t, models.PositionUnknown, got.Position)

	empty := NewComparator(nil)
	got = empty.Percentile(ptr(50), models.BenchmarkOverall, "", key)
	assert.Nil(t, got.Percentile)
	assert.False(t, empty.HasCohort(key))
}

func TestPercentileConcurrent(t *testing.T) {
	c := NewComparator(loadTestTable(t))
	key := CohortKey{Industry: "saas", SizeBand: "smb", GrowthStage: "growth"}

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got := c.Percentile(ptr(40), models.BenchmarkOverall, "", key)
			assert.InDelta(t, 30, *got.Percentile, 1e-9)
		}()
	}
	wg.Wait()
}

func TestParseTableRejectsBadData(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"bad key", "cohorts:\n  - key: \"saas|smb\"\n"},
		{"duplicate cohort", "cohorts:\n  - key: \"a|b|c\"\n  - key: \"A|B|C\"\n"},
		{"percentile out of range", "cohorts:\n  - key: \"a|b|c\"\n    overall:\n      - { score: 10, percentile: 120 }\n"},
		{"decreasing curve", "cohorts:\n  - key: \"a|b|c\"\n    overall:\n      - { score: 10, percentile: 50 }\n      - { score: 20, percentile: 40 }\n"},
		{"repeated score", "cohorts:\n  - key: \"a|b|c\"\n    overall:\n      - { score: 10, percentile: 50 }\n      - { score: 10, percentile: 60 }\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseTable([]byte(tt.yaml))
			assert.Error(t, err)
		})
	}
}
