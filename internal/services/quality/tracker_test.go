package quality

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/bizhealth/internal/models"
)

func issue(sev models.Severity, code models.IssueCode, dim string) models.Issue {
	return models.Issue{Severity: sev, Code: code, Stage: "test", DimensionCode: dim, Message: string(code)}
}

func TestEvaluate(t *testing.T) {
	policy := DefaultPolicy()
	policy.MaxCriticalIssues = 1
	policy.MaxWarnings = 2

	tests := []struct {
		name   string
		issues []models.Issue
		want   models.AuditStatus
	}{
		{"clean", nil, models.AuditPass},
		{"info only", []models.Issue{issue(models.SeverityInfo, models.IssuePartialDimension, "OPS")}, models.AuditPass},
		{"warnings within limit", []models.Issue{
			issue(models.SeverityWarning, models.IssueOutOfRange, "OPS"),
			issue(models.SeverityWarning, models.IssueOutOfRange, "OPS"),
		}, models.AuditPass},
		{"warnings over limit", []models.Issue{
			issue(models.SeverityWarning, models.IssueOutOfRange, "OPS"),
			issue(models.SeverityWarning, models.IssueOutOfRange, "CXP"),
			issue(models.SeverityWarning, models.IssueOutOfRange, "HRS"),
		}, models.AuditNeedsReview},
		{"critical on ordinary dimension", []models.Issue{
			issue(models.SeverityCritical, models.IssueTaxonomyMismatch, "OPS"),
		}, models.AuditNeedsReview},
		{"critical on critical dimension", []models.Issue{
			issue(models.SeverityCritical, models.IssueMissingHandler, "FIN"),
		}, models.AuditFail},
		{"too many criticals", []models.Issue{
			issue(models.SeverityCritical, models.IssueTaxonomyMismatch, "OPS"),
			issue(models.SeverityCritical, models.IssueTaxonomyMismatch, "CXP"),
		}, models.AuditFail},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			audit := &models.QualityAudit{Issues: tt.issues}
			assert.Equal(t, tt.want, Evaluate(audit, policy))
		})
	}
}

func TestEvaluateAborted(t *testing.T) {
	audit := &models.QualityAudit{Aborted: true}
	assert.Equal(t, models.AuditFail, Evaluate(audit, DefaultPolicy()))
}

func TestTrackerRecordAfterFinalize(t *testing.T) {
	tracker := NewTracker("run_test", DefaultPolicy(), arbor.NewLogger())
	require.NoError(t, tracker.Record(issue(models.SeverityWarning, models.IssueOutOfRange, "OPS")))

	first := tracker.Finalize()
	assert.Equal(t, models.AuditPass, first.Status)
	assert.False(t, first.CompletedAt.IsZero())

	assert.ErrorIs(t, tracker.Record(issue(models.SeverityCritical, models.IssueMissingHandler, "FIN")), ErrAuditFinalized)
	assert.ErrorIs(t, tracker.Abort(issue(models.SeverityCritical, models.IssueRunCancelled, "")), ErrAuditFinalized)

	second := tracker.Finalize()
	assert.Equal(t, first, second)
	assert.Len(t, second.Issues, 1)
}

func TestTrackerConcurrentRecord(t *testing.T) {
	tracker := NewTracker("run_test", DefaultPolicy(), arbor.NewLogger())
	codes := []string{"OPS", "CXP", "HRS", "INN"}

	var wg sync.WaitGroup
	var expected []models.Issue
	for i := 0; i < 40; i++ {
		it := issue(models.SeverityInfo, models.IssueEmptyResponse, codes[i%len(codes)])
		expected = append(expected, it)
		wg.Add(1)
		go func(it models.Issue) {
			defer wg.Done()
			assert.NoError(t, tracker.Record(it))
		}(it)
	}
	wg.Wait()

	audit := tracker.Finalize()
	assert.ElementsMatch(t, expected, audit.Issues)
	assert.Equal(t, 40, audit.InfoCount)
}

func TestTrackerObserveDimension(t *testing.T) {
	tracker := NewTracker("run_test", DefaultPolicy(), arbor.NewLogger())
	tracker.ExpectDimension("FIN", 5, 25)
	tracker.ExpectDimension("OPS", 5, 25)
	tracker.ExpectDimension("CXP", 5, 25)

	require.NoError(t, tracker.ObserveDimension(models.DimensionScore{
		Code:           "FIN",
		Status:         models.StatusPartial,
		QuestionsFound: 10,
		SubIndicators: []models.SubIndicatorScore{
			{Code: "FIN-1", Status: models.StatusComplete},
			{Code: "FIN-2", Status: models.StatusComplete},
			{Code: "FIN-3", Status: models.StatusSkipped},
		},
	}))
	require.NoError(t, tracker.ObserveDimension(models.DimensionScore{
		Code:           "OPS",
		Status:         models.StatusComplete,
		QuestionsFound: 25,
		SubIndicators:  []models.SubIndicatorScore{{Code: "OPS-1", Status: models.StatusComplete}},
	}))
	require.NoError(t, tracker.ObserveDimension(models.DimensionScore{Code: "CXP", Status: models.StatusSkipped}))
	tracker.ObserveChapters(4, 3)

	audit := tracker.Finalize()

	fin := audit.DimensionStatus["FIN"]
	assert.Equal(t, 5, fin.SubIndicatorsExpected)
	assert.Equal(t, 2, fin.SubIndicatorsFound)
	assert.Equal(t, 10, fin.QuestionsFound)
	assert.False(t, fin.Achieved)
	assert.True(t, audit.DimensionStatus["OPS"].Achieved)

	var codes []models.IssueCode
	for _, it := range audit.Issues {
		codes = append(codes, it.Code)
	}
	assert.ElementsMatch(t, []models.IssueCode{
		models.IssuePartialDimension,
		models.IssueBelowMinimumResponses,
		models.IssueSkippedDimension,
	}, codes)
	require.Len(t, fin.Issues, 2)

	assert.Equal(t, models.AuditFail, audit.Status)
	assert.Equal(t, models.LevelTotals{Expected: 75, Processed: 35}, audit.Totals.Questions)
	assert.Equal(t, models.LevelTotals{Expected: 3, Processed: 2}, audit.Totals.Dimensions)
	assert.Equal(t, models.LevelTotals{Expected: 4, Processed: 3}, audit.Totals.Chapters)
}

func TestTrackerAbort(t *testing.T) {
	tracker := NewTracker("run_test", DefaultPolicy(), arbor.NewLogger())
	require.NoError(t, tracker.Abort(issue(models.SeverityCritical, models.IssueRunCancelled, "")))

	snapshot := tracker.Snapshot()
	assert.True(t, snapshot.CompletedAt.IsZero())
	assert.Equal(t, models.AuditFail, snapshot.Status)

	audit := tracker.Finalize()
	assert.True(t, audit.Aborted)
	assert.Equal(t, models.AuditFail, audit.Status)
}
