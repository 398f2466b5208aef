package scoring

import (
	"fmt"
	"reflect"
	"testing"

	"github.com/ternarybob/bizhealth/internal/models"
)

func questions(prefix string) []string {
	out := make([]string, 5)
	for i := range out {
		out[i] = fmt.Sprintf("%s-%d", prefix, i+1)
	}
	return out
}

func testFramework() *models.Framework {
	return &models.Framework{
		Version: "test",
		Chapters: []models.ChapterSpec{
			{Code: "GE", Name: "Growth Engine", Weight: 1},
			{Code: "PH", Name: "Performance & Health", Weight: 1},
		},
		Dimensions: []models.DimensionSpec{
			{Code: "STR", Name: "Strategy", Chapter: "GE", SubIndicators: []models.SubIndicatorSpec{
				{Code: "STR-1", Name: "Vision", Questions: questions("STR-1")},
				{Code: "STR-2", Name: "Planning", Questions: questions("STR-2")},
			}},
			{Code: "SAL", Name: "Sales", Chapter: "GE", SubIndicators: []models.SubIndicatorSpec{
				{Code: "SAL-1", Name: "Pipeline", Questions: questions("SAL-1")},
			}},
			{Code: "OPS", Name: "Operations", Chapter: "PH", SubIndicators: []models.SubIndicatorSpec{
				{Code: "OPS-1", Name: "Process", Questions: questions("OPS-1")},
			}},
		},
	}
}

func answer(question, dimension, sub string, score float64) models.NormalizedResponse {
	return models.NormalizedResponse{
		QuestionID:       question,
		DimensionCode:    dimension,
		SubIndicatorCode: sub,
		ResponseType:     models.ResponseScale15,
		Score:            Ptr(score),
		IsValid:          true,
		Scorable:         true,
		Weight:           1,
	}
}

func fullSub(dimension, sub string, score float64) []models.NormalizedResponse {
	var out []models.NormalizedResponse
	for _, q := range questions(sub) {
		out = append(out, answer(q, dimension, sub, score))
	}
	return out
}

func newTestAggregator() *Aggregator {
	return NewAggregator(testFramework(), AggregatorOptions{
		Bands:      DefaultThresholds(),
		Confidence: DefaultConfidenceThresholds(),
	})
}

func TestAggregateFullDimension(t *testing.T) {
	var responses []models.NormalizedResponse
	responses = append(responses, fullSub("STR", "STR-1", 80)...)
	responses = append(responses, fullSub("STR", "STR-2", 80)...)

	h, issues := newTestAggregator().Aggregate(responses)
	if len(issues) != 0 {
		t.Fatalf("unexpected issues: %+v", issues)
	}

	dim, ok := h.Dimension("STR")
	if !ok {
		t.Fatal("STR missing from hierarchy")
	}
	if dim.Score == nil || *dim.Score != 80 {
		t.Errorf("Score = %v, want 80", dim.Score)
	}
	if dim.Status != models.StatusComplete {
		t.Errorf("Status = %s, want complete", dim.Status)
	}
	if dim.Confidence != models.ConfidenceHigh {
		t.Errorf("Confidence = %s, want high", dim.Confidence)
	}
	if dim.Band != models.BandExcellence {
		t.Errorf("Band = %s, want excellence", dim.Band)
	}
	if dim.QuestionsFound != 10 || dim.QuestionsExpected != 10 {
		t.Errorf("questions = %d/%d, want 10/10", dim.QuestionsFound, dim.QuestionsExpected)
	}
}

func TestAggregatePartialSubIndicator(t *testing.T) {
	responses := []models.NormalizedResponse{
		answer("SAL-1-1", "SAL", "SAL-1", 100),
		answer("SAL-1-2", "SAL", "SAL-1", 60),
	}

	h, _ := newTestAggregator().Aggregate(responses)
	dim, _ := h.Dimension("SAL")
	if dim.Score == nil || *dim.Score != 80 {
		t.Fatalf("Score = %v, want 80", dim.Score)
	}
	if dim.Status != models.StatusPartial {
		t.Errorf("Status = %s, want partial", dim.Status)
	}
	if dim.Confidence != models.ConfidenceLow {
		t.Errorf("Confidence = %s, want low", dim.Confidence)
	}
	if got := dim.SubIndicators[0]; got.QuestionsFound != 2 || got.QuestionsExpected != 5 {
		t.Errorf("sub-indicator questions = %d/%d, want 2/5", got.QuestionsFound, got.QuestionsExpected)
	}
}

func TestAggregateNullPropagation(t *testing.T) {
	unscored := answer("OPS-1-1", "OPS", "OPS-1", 0)
	unscored.Score = nil
	unscored.IsValid = false

	h, _ := newTestAggregator().Aggregate([]models.NormalizedResponse{unscored})

	dim, _ := h.Dimension("OPS")
	if dim.Score != nil {
		t.Errorf("dimension Score = %v, want nil", *dim.Score)
	}
	if dim.Status != models.StatusSkipped {
		t.Errorf("dimension Status = %s, want skipped", dim.Status)
	}
	if dim.Band != models.BandUnscored {
		t.Errorf("dimension Band = %q, want unscored", dim.Band)
	}
	if dim.Confidence != models.ConfidenceNone {
		t.Errorf("dimension Confidence = %s, want none", dim.Confidence)
	}
	if h.Overall != nil {
		t.Errorf("Overall = %v, want nil when nothing is scored", *h.Overall)
	}
	for _, ch := range h.Chapters {
		if ch.Score != nil || ch.Status != models.StatusSkipped {
			t.Errorf("chapter %s = %v/%s, want nil/skipped", ch.Code, ch.Score, ch.Status)
		}
	}
}

func TestAggregateChapterIgnoresUnscoredDimensions(t *testing.T) {
	responses := fullSub("SAL", "SAL-1", 40)
	responses = append(responses, fullSub("OPS", "OPS-1", 70)...)

	h, _ := newTestAggregator().Aggregate(responses)

	ge := h.Chapters[0]
	if ge.Code != "GE" {
		t.Fatalf("first chapter = %s, want GE", ge.Code)
	}
	if ge.Score == nil || *ge.Score != 40 {
		t.Errorf("GE Score = %v, want 40 from SAL alone", ge.Score)
	}
	if ge.Status != models.StatusPartial {
		t.Errorf("GE Status = %s, want partial", ge.Status)
	}
	if !reflect.DeepEqual(ge.Dimensions, []string{"STR", "SAL"}) {
		t.Errorf("GE dimensions = %v", ge.Dimensions)
	}

	ph := h.Chapters[1]
	if ph.Status != models.StatusComplete {
		t.Errorf("PH Status = %s, want complete", ph.Status)
	}
	if h.Overall == nil || *h.Overall != 55 {
		t.Errorf("Overall = %v, want 55", h.Overall)
	}
	if h.OverallBand != models.BandAttention {
		t.Errorf("OverallBand = %s, want attention", h.OverallBand)
	}
}

func TestAggregateDuplicateFirstWins(t *testing.T) {
	responses := []models.NormalizedResponse{
		answer("OPS-1-1", "OPS", "OPS-1", 100),
		answer("OPS-1-1", "OPS", "OPS-1", 0),
	}

	h, issues := newTestAggregator().Aggregate(responses)
	dim, _ := h.Dimension("OPS")
	if dim.Score == nil || *dim.Score != 100 {
		t.Errorf("Score = %v, want 100 from first answer", dim.Score)
	}
	if len(issues) != 1 || issues[0].Code != models.IssueDuplicateResponse {
		t.Fatalf("issues = %+v, want one DUPLICATE_RESPONSE", issues)
	}
	if issues[0].Severity != models.SeverityWarning {
		t.Errorf("severity = %s, want WARNING", issues[0].Severity)
	}
}

func TestAggregateIsIdempotent(t *testing.T) {
	responses := fullSub("STR", "STR-1", 73.25)
	responses = append(responses, answer("STR-2-4", "STR", "STR-2", 12.5))
	responses = append(responses, fullSub("OPS", "OPS-1", 41)...)

	agg := newTestAggregator()
	first, _ := agg.Aggregate(responses)
	second, _ := agg.Aggregate(responses)
	if !reflect.DeepEqual(first, second) {
		t.Error("aggregating the same answers twice produced different hierarchies")
	}
}

func TestAggregateQuestionWeights(t *testing.T) {
	heavy := answer("OPS-1-1", "OPS", "OPS-1", 100)
	heavy.Weight = 3
	light := answer("OPS-1-2", "OPS", "OPS-1", 0)

	h, _ := newTestAggregator().Aggregate([]models.NormalizedResponse{heavy, light})
	dim, _ := h.Dimension("OPS")
	if dim.Score == nil || *dim.Score != 75 {
		t.Errorf("Score = %v, want 75", dim.Score)
	}
}
