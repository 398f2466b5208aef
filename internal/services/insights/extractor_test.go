package insights

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/bizhealth/internal/models"
	"github.com/ternarybob/bizhealth/internal/schemas"
	"github.com/ternarybob/bizhealth/internal/services/taxonomy"
)

func newTestExtractor(t *testing.T) *Extractor {
	t.Helper()
	fw, err := schemas.DefaultFramework()
	require.NoError(t, err)
	table, err := taxonomy.NewTable(fw)
	require.NoError(t, err)
	logger := arbor.NewLogger()
	return NewExtractor(taxonomy.NewResolver(table, logger), logger)
}

func TestMerge_DeduplicatesAcrossStagesAndAliases(t *testing.T) {
	e := newTestExtractor(t)

	payloads := []models.AnalysisPayload{
		{
			Stage:         "phase1",
			DimensionCode: "IDS",
			Recommendations: []models.AnalysisItem{
				{Title: "**Adopt** a cloud backup", Impact: "High"},
			},
			Findings: []models.AnalysisItem{{Title: "Legacy ERP", Severity: "critical"}},
		},
		{
			Stage:         "phase2",
			DimensionCode: "ITD",
			Recommendations: []models.AnalysisItem{
				{Title: "adopt a  cloud backup", Description: "Nightly offsite snapshots", Effort: "low", Timeline: "30 days", Impact: "low"},
				{Title: "Document the network", Timeline: "2 quarters"},
			},
			Findings: []models.AnalysisItem{{Title: "legacy erp", Description: "Unsupported since 2019"}},
		},
	}

	got, issues, err := e.Merge(payloads)
	require.NoError(t, err)
	assert.Empty(t, issues)

	require.Len(t, got.Recommendations, 2)
	first := got.Recommendations[0]
	assert.Equal(t, "REC-ITD-001", first.ID)
	assert.Equal(t, "ITD", first.DimensionCode)
	assert.Equal(t, "**Adopt** a cloud backup", first.Title)
	assert.Equal(t, models.LevelHigh, first.Impact, "first occurrence wins")
	assert.Equal(t, models.LevelLow, first.Effort, "empty fields are filled from later duplicates")
	assert.Equal(t, "Nightly offsite snapshots", first.Description)
	require.NotNil(t, first.TimelineDays)
	assert.Equal(t, 30, *first.TimelineDays)
	assert.Equal(t, []string{"phase1", "phase2"}, first.Sources)

	second := got.Recommendations[1]
	assert.Equal(t, "REC-ITD-002", second.ID)
	require.NotNil(t, second.TimelineDays)
	assert.Equal(t, 180, *second.TimelineDays)

	require.Len(t, got.Findings, 1)
	assert.Equal(t, "FND-ITD-001", got.Findings[0].ID)
	assert.Equal(t, models.LevelCritical, got.Findings[0].Severity)
	assert.Equal(t, "Unsupported since 2019", got.Findings[0].Description)
}

func TestMerge_SameTitleDifferentDimensions(t *testing.T) {
	e := newTestExtractor(t)

	got, _, err := e.Merge([]models.AnalysisPayload{
		{Stage: "s", DimensionCode: "FIN", Risks: []models.AnalysisItem{{Title: "Key person dependency"}}},
		{Stage: "s", DimensionCode: "HR", Risks: []models.AnalysisItem{{Title: "Key person dependency"}}},
	})
	require.NoError(t, err)
	require.Len(t, got.Risks, 2)
	assert.Equal(t, "RSK-FIN-001", got.Risks[0].ID)
	assert.Equal(t, "RSK-HRS-001", got.Risks[1].ID)
}

func TestMerge_EmptyTitleIsDropped(t *testing.T) {
	e := newTestExtractor(t)

	got, issues, err := e.Merge([]models.AnalysisPayload{
		{Stage: "s", DimensionCode: "OPS", Findings: []models.AnalysisItem{{Title: " \t "}, {Title: "Manual invoicing"}}},
	})
	require.NoError(t, err)
	require.Len(t, got.Findings, 1)
	require.Len(t, issues, 1)
	assert.Equal(t, models.IssueEmptyInsightTitle, issues[0].Code)
	assert.Equal(t, "OPS", issues[0].DimensionCode)
}

func TestMerge_UnknownDimensionIsDefect(t *testing.T) {
	e := newTestExtractor(t)

	_, _, err := e.Merge([]models.AnalysisPayload{{Stage: "s", DimensionCode: "XYZ"}})
	var defect *models.ConfigurationDefect
	require.True(t, errors.As(err, &defect))
	assert.Equal(t, models.DefectUnknownCode, defect.Kind)

	var unknown *models.UnknownCodeError
	assert.True(t, errors.As(err, &unknown))
}

func TestMerge_IsDeterministic(t *testing.T) {
	e := newTestExtractor(t)
	payloads := []models.AnalysisPayload{
		{Stage: "a", DimensionCode: "MKT", Recommendations: []models.AnalysisItem{{Title: "One"}, {Title: "Two"}}},
		{Stage: "b", DimensionCode: "SAL", Recommendations: []models.AnalysisItem{{Title: "Three"}}},
	}

	first, _, err := e.Merge(payloads)
	require.NoError(t, err)
	second, _, err := e.Merge(payloads)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestDedupKey(t *testing.T) {
	tests := []struct {
		title string
		want  string
	}{
		{"Improve Cash Flow", "improve cash flow|FIN"},
		{"  improve   cash\tflow ", "improve cash flow|FIN"},
		{"**Improve** _cash_ flow", "improve cash flow|FIN"},
		{"Improve [cash flow](https://example.com)", "improve cash flow|FIN"},
		{"# Improve `cash` flow", "improve cash flow|FIN"},
	}
	for _, tt := range tests {
		t.Run(tt.title, func(t *testing.T) {
			assert.Equal(t, tt.want, DedupKey(tt.title, "FIN"))
		})
	}
}

func TestParseTimeline(t *testing.T) {
	tests := []struct {
		label string
		want  int
		ok    bool
	}{
		{"30 days", 30, true},
		{"90d", 90, true},
		{"6-8 weeks", 56, true},
		{"3 months", 90, true},
		{"within 1 year", 365, true},
		{"1 quarter", 90, true},
		{"45", 45, true},
		{"Immediately", 0, true},
		{"ongoing", 0, false},
		{"", 0, false},
		{"8-6 weeks", 0, false},
		{"10 years", 3650, true},
		{"11 years", 0, false},
		{"100000000000000000000 days", 0, false},
		{"Q3 2025", 0, false},
		{"by H2", 0, false},
		{"2026", 0, false},
		{"2000 days", 2000, true},
	}
	for _, tt := range tests {
		t.Run(tt.label, func(t *testing.T) {
			got, ok := ParseTimeline(tt.label)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}
