package validation

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/bizhealth/internal/models"
)

func score(f float64) *float64 { return &f }

func validModel() *models.InsightsModel {
	days := 30
	return &models.InsightsModel{
		Meta: &models.IDMMeta{
			SchemaVersion:    models.IDMSchemaVersion,
			RunID:            "run_test",
			GeneratedAt:      time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
			FrameworkVersion: "2025.1",
		},
		Chapters: []models.ChapterScore{
			{Code: "PH", Name: "Performance & Health", Score: score(70), Band: models.BandProficiency,
				Status: models.StatusPartial, Dimensions: []string{"OPS"}},
		},
		Dimensions: []models.DimensionScore{
			{
				Code: "OPS", Name: "Operations", ChapterCode: "PH", Score: score(70),
				Band: models.BandProficiency, Status: models.StatusPartial, Confidence: models.ConfidenceLow,
				QuestionsExpected: 25, QuestionsFound: 5,
				SubIndicators: []models.SubIndicatorScore{
					{Code: "OPS-1", DimensionCode: "OPS", Score: score(70), Status: models.StatusComplete, QuestionsExpected: 5, QuestionsFound: 5},
				},
				Benchmark: &models.BenchmarkResult{Position: models.PositionUnknown},
			},
		},
		Recommendations: []models.Recommendation{
			{ID: "REC-OPS-001", DimensionCode: "OPS", Title: "Automate invoicing", Impact: models.LevelHigh,
				Effort: models.LevelLow, TimelineDays: &days},
		},
		QuickWins: []models.QuickWin{
			{RecommendationID: "REC-OPS-001", DimensionCode: "OPS", Title: "Automate invoicing",
				Impact: models.LevelHigh, Effort: models.LevelLow, TimelineDays: 30},
		},
		Roadmap: &models.Roadmap{
			Phases: []models.RoadmapPhase{
				{Key: "0-30", Label: "Immediate", Items: []models.RoadmapItem{
					{RecommendationID: "REC-OPS-001", DimensionCode: "OPS", Title: "Automate invoicing", TimelineDays: &days},
				}},
			},
		},
		ScoresSummary:  &models.ScoresSummary{Overall: score(70), OverallBand: models.BandProficiency, ScoredDimensions: 1},
		QualitySummary: &models.QualitySummary{Status: models.AuditPass, DimensionsPartial: 1},
	}
}

func newTestContractValidator() *ContractValidator {
	return NewContractValidator(arbor.NewLogger())
}

func violationPaths(vs []models.Violation) []string {
	out := make([]string, 0, len(vs))
	for _, v := range vs {
		out = append(out, v.Path)
	}
	return out
}

func TestContractValidator_ValidModel(t *testing.T) {
	assert.Empty(t, newTestContractValidator().Validate(validModel()))
}

func TestContractValidator_MissingRoadmap(t *testing.T) {
	idm := validModel()
	idm.Roadmap = nil

	got := newTestContractValidator().Validate(idm)
	require.Len(t, got, 1)
	assert.Equal(t, "roadmap", got[0].Path)
	assert.Equal(t, "required", got[0].Rule)
}

func TestContractValidator_FieldPaths(t *testing.T) {
	idm := validModel()
	idm.Dimensions[0].Score = score(140)
	idm.Dimensions[0].Band = "superb"
	idm.Meta.SchemaVersion = "0.9"

	got := newTestContractValidator().Validate(idm)
	assert.ElementsMatch(t, []string{
		"meta.schema_version",
		"dimensions[0].score",
		"dimensions[0].band",
	}, violationPaths(got))
}

func TestContractValidator_CrossReferences(t *testing.T) {
	idm := validModel()
	idm.Dimensions = append(idm.Dimensions, idm.Dimensions[0])
	idm.Dimensions[1].ChapterCode = "RS"
	idm.QuickWins[0].RecommendationID = "REC-OPS-404"
	idm.Roadmap.Unscheduled = []models.RoadmapItem{{RecommendationID: "REC-ITD-009", DimensionCode: "ITD", Title: "x"}}

	got := newTestContractValidator().Validate(idm)
	assert.ElementsMatch(t, []string{
		"dimensions[1].code",
		"dimensions[1].chapter_code",
		"quick_wins[0].recommendation_id",
		"roadmap.unscheduled[0].recommendation_id",
	}, violationPaths(got))
}

func TestContractValidator_EmptyDimensions(t *testing.T) {
	idm := validModel()
	idm.Dimensions = nil

	got := newTestContractValidator().Validate(idm)
	assert.Contains(t, violationPaths(got), "dimensions")
	assert.Contains(t, violationPaths(got), "chapters[0].dimensions[0]")
}

func TestContractValidator_Nil(t *testing.T) {
	got := newTestContractValidator().Validate(nil)
	require.Len(t, got, 1)
	assert.Equal(t, "required", got[0].Rule)
}
