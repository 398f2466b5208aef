package quality

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/bizhealth/internal/models"
)

// ErrAuditFinalized is returned when recording into a finalized audit
var ErrAuditFinalized = errors.New("quality audit already finalized")

// Tracker is the run-scoped, concurrency-safe collector of quality issues
type Tracker struct {
	mu        sync.Mutex
	runID     string
	policy    Policy
	logger    arbor.ILogger
	startedAt time.Time
	issues    []models.Issue
	dims      map[string]*models.DimensionAudit
	order     []string
	chapters  models.LevelTotals
	aborted   bool
	final     *models.QualityAudit
}

// NewTracker creates an empty tracker for one run
func NewTracker(runID string, policy Policy, logger arbor.ILogger) *Tracker {
	return &Tracker{
		runID:     runID,
		policy:    policy,
		logger:    logger,
		startedAt: time.Now().UTC(),
		dims:      make(map[string]*models.DimensionAudit),
	}
}

// Record appends one issue
func (t *Tracker) Record(issue models.Issue) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.final != nil {
		return ErrAuditFinalized
	}
	t.record(issue)
	return nil
}

// RecordAll appends several issues atomically
func (t *Tracker) RecordAll(issues []models.Issue) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.final != nil {
		return ErrAuditFinalized
	}
	for _, issue := range issues {
		t.record(issue)
	}
	return nil
}

func (t *Tracker) record(issue models.Issue) {
	issue.DimensionCode = models.CanonicalCode(issue.DimensionCode)
	t.issues = append(t.issues, issue)

	switch issue.Severity {
	case models.SeverityCritical:
		t.logger.Error().Str("code", string(issue.Code)).Str("dimension", issue.DimensionCode).
			Str("question", issue.QuestionID).Msg(issue.Message)
	case models.SeverityWarning:
		t.logger.Warn().Str("code", string(issue.Code)).Str("dimension", issue.DimensionCode).
			Str("question", issue.QuestionID).Msg(issue.Message)
	default:
		t.logger.Trace().Str("code", string(issue.Code)).Msg(issue.Message)
	}
}

// ExpectDimension registers the catalog size of a dimension before scoring
func (t *Tracker) ExpectDimension(code string, subIndicators, questions int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.final != nil {
		return
	}
	d := t.dimension(code)
	d.SubIndicatorsExpected = subIndicators
	d.QuestionsExpected = questions
}

func (t *Tracker) dimension(code string) *models.DimensionAudit {
	code = models.CanonicalCode(code)
	d, ok := t.dims[code]
	if !ok {
		d = &models.DimensionAudit{Code: code, Status: models.StatusSkipped}
		t.dims[code] = d
		t.order = append(t.order, code)
	}
	return d
}

// ObserveDimension records what aggregation found for a dimension and raises
// completeness issues. Critical dimensions answered below the configured
// minimum fraction get a CRITICAL issue.
func (t *Tracker) ObserveDimension(score models.DimensionScore) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.final != nil {
		return ErrAuditFinalized
	}

	d := t.dimension(score.Code)
	d.Observed = true
	d.Status = score.Status
	d.QuestionsFound = score.QuestionsFound
	if d.QuestionsExpected == 0 {
		d.QuestionsExpected = score.QuestionsExpected
	}
	if d.SubIndicatorsExpected == 0 {
		d.SubIndicatorsExpected = len(score.SubIndicators)
	}
	d.SubIndicatorsFound = 0
	for _, sub := range score.SubIndicators {
		if sub.Status != models.StatusSkipped {
			d.SubIndicatorsFound++
		}
	}
	d.Achieved = score.Status == models.StatusComplete

	switch score.Status {
	case models.StatusSkipped:
		t.record(models.Issue{
			Severity:      models.SeverityWarning,
			Code:          models.IssueSkippedDimension,
			Stage:         "aggregate",
			DimensionCode: d.Code,
			Message:       fmt.Sprintf("dimension %s has no scored answers", d.Code),
		})
	case models.StatusPartial:
		t.record(models.Issue{
			Severity:      models.SeverityInfo,
			Code:          models.IssuePartialDimension,
			Stage:         "aggregate",
			DimensionCode: d.Code,
			Message:       fmt.Sprintf("dimension %s answered %d of %d questions", d.Code, d.QuestionsFound, d.QuestionsExpected),
		})
	}

	if t.policy.IsCritical(d.Code) && d.QuestionsExpected > 0 {
		ratio := float64(d.QuestionsFound) / float64(d.QuestionsExpected)
		if ratio < t.policy.MinCriticalCompleteness {
			t.record(models.Issue{
				Severity:      models.SeverityCritical,
				Code:          models.IssueBelowMinimumResponses,
				Stage:         "aggregate",
				DimensionCode: d.Code,
				Message: fmt.Sprintf("critical dimension %s answered %d of %d questions, below minimum %.0f%%",
					d.Code, d.QuestionsFound, d.QuestionsExpected, t.policy.MinCriticalCompleteness*100),
			})
		}
	}
	return nil
}

// ObserveChapters records how many chapters were expected and scored
func (t *Tracker) ObserveChapters(expected, processed int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.final != nil {
		return
	}
	t.chapters = models.LevelTotals{Expected: expected, Processed: processed}
}

// Abort records a terminal issue; the audit will FAIL
func (t *Tracker) Abort(issue models.Issue) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.final != nil {
		return ErrAuditFinalized
	}
	t.record(issue)
	t.aborted = true
	return nil
}

// Snapshot returns the audit as it stands, evaluated but not finalized
func (t *Tracker) Snapshot() models.QualityAudit {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.final != nil {
		return *t.final
	}
	return t.build(time.Time{})
}

// Finalize closes the audit and returns it. Later calls return the same audit.
func (t *Tracker) Finalize() models.QualityAudit {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.final == nil {
		audit := t.build(time.Now().UTC())
		t.final = &audit
		t.logger.Info().
			Str("run_id", t.runID).
			Str("status", string(audit.Status)).
			Int("critical", audit.CriticalCount).
			Int("warnings", audit.WarningCount).
			Msg("Quality audit finalized")
	}
	return *t.final
}

func (t *Tracker) build(completedAt time.Time) models.QualityAudit {
	audit := models.QualityAudit{
		RunID:           t.runID,
		StartedAt:       t.startedAt,
		CompletedAt:     completedAt,
		DimensionStatus: make(map[string]models.DimensionAudit, len(t.dims)),
		Issues:          append([]models.Issue(nil), t.issues...),
		Aborted:         t.aborted,
	}
	audit.CriticalCount, audit.WarningCount, audit.InfoCount = countSeverities(audit.Issues)

	byDimension := make(map[string][]models.Issue)
	for _, issue := range audit.Issues {
		if issue.DimensionCode != "" {
			byDimension[issue.DimensionCode] = append(byDimension[issue.DimensionCode], issue)
		}
	}

	for _, code := range t.order {
		d := *t.dims[code]
		d.Issues = byDimension[code]
		audit.DimensionStatus[code] = d

		audit.Totals.Questions.Expected += d.QuestionsExpected
		audit.Totals.Questions.Processed += d.QuestionsFound
		audit.Totals.SubIndicators.Expected += d.SubIndicatorsExpected
		audit.Totals.SubIndicators.Processed += d.SubIndicatorsFound
		audit.Totals.Dimensions.Expected++
		if d.Observed && d.Status != models.StatusSkipped {
			audit.Totals.Dimensions.Processed++
		}
	}
	audit.Totals.Chapters = t.chapters

	audit.Status = Evaluate(&audit, t.policy)
	return audit
}
