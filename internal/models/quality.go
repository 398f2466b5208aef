package models

import "time"

// Severity grades a data-quality issue
type Severity string

const (
	SeverityCritical Severity = "CRITICAL"
	SeverityWarning  Severity = "WARNING"
	SeverityInfo     Severity = "INFO"
)

// IssueCode identifies the class of a data-quality issue
type IssueCode string

const (
	IssueMissingHandler        IssueCode = "MISSING_HANDLER"
	IssueUnknownTaxonomyCode   IssueCode = "UNKNOWN_TAXONOMY_CODE"
	IssueTaxonomyMismatch      IssueCode = "TAXONOMY_MISMATCH"
	IssueBelowMinimumResponses IssueCode = "BELOW_MINIMUM_RESPONSES"
	IssueContractViolation     IssueCode = "CONTRACT_VIOLATION"
	IssueRunCancelled          IssueCode = "RUN_CANCELLED"
	IssueOutOfRange            IssueCode = "OUT_OF_RANGE"
	IssueValueClamped          IssueCode = "VALUE_CLAMPED"
	IssueUnparseable           IssueCode = "UNPARSEABLE_VALUE"
	IssueEmptyResponse         IssueCode = "EMPTY_RESPONSE"
	IssueUnknownOption         IssueCode = "UNKNOWN_OPTION"
	IssueDuplicateResponse     IssueCode = "DUPLICATE_RESPONSE"
	IssueQuestionNotInCatalog  IssueCode = "QUESTION_NOT_IN_CATALOG"
	IssuePartialDimension      IssueCode = "PARTIAL_DIMENSION"
	IssueSkippedDimension      IssueCode = "SKIPPED_DIMENSION"
	IssueUnscheduled           IssueCode = "UNSCHEDULED_RECOMMENDATION"
	IssueEmptyInsightTitle     IssueCode = "EMPTY_INSIGHT_TITLE"
	IssueNotScorable           IssueCode = "NOT_SCORABLE"
	IssueUnknownCohort         IssueCode = "UNKNOWN_COHORT"
	IssueAnalysisUnavailable   IssueCode = "ANALYSIS_UNAVAILABLE"
	IssueRunAborted            IssueCode = "RUN_ABORTED"
)

// Issue is one validation observation recorded during a run
type Issue struct {
	Severity      Severity  `json:"severity"`
	Code          IssueCode `json:"code"`
	Stage         string    `json:"stage"`
	DimensionCode string    `json:"dimension_code,omitempty"`
	QuestionID    string    `json:"question_id,omitempty"`
	Message       string    `json:"message"`
}

// AuditStatus is the verdict of a run's quality audit
type AuditStatus string

const (
	AuditPass        AuditStatus = "PASS"
	AuditFail        AuditStatus = "FAIL"
	AuditNeedsReview AuditStatus = "NEEDS_REVIEW"
)

// LevelTotals counts expected and processed entities at one hierarchy level
type LevelTotals struct {
	Expected  int `json:"expected"`
	Processed int `json:"processed"`
}

// AuditTotals holds LevelTotals for every hierarchy level
type AuditTotals struct {
	Questions     LevelTotals `json:"questions"`
	SubIndicators LevelTotals `json:"sub_indicators"`
	Dimensions    LevelTotals `json:"dimensions"`
	Chapters      LevelTotals `json:"chapters"`
}

// DimensionAudit is the completeness record of one dimension
type DimensionAudit struct {
	Code                  string           `json:"code"`
	Status                CompletionStatus `json:"status"`
	Observed              bool             `json:"observed"`
	SubIndicatorsExpected int              `json:"sub_indicators_expected"`
	SubIndicatorsFound    int              `json:"sub_indicators_found"`
	QuestionsExpected     int              `json:"questions_expected"`
	QuestionsFound        int              `json:"questions_found"`
	Achieved              bool             `json:"achieved"`
	Issues                []Issue          `json:"issues,omitempty"`
}

// QualityAudit is the run-scoped completeness and validity record
type QualityAudit struct {
	RunID           string                    `json:"run_id"`
	StartedAt       time.Time                 `json:"started_at"`
	CompletedAt     time.Time                 `json:"completed_at"`
	Totals          AuditTotals               `json:"totals"`
	DimensionStatus map[string]DimensionAudit `json:"dimension_status"`
	Issues          []Issue                   `json:"issues"`
	CriticalCount   int                       `json:"critical_count"`
	WarningCount    int                       `json:"warning_count"`
	InfoCount       int                       `json:"info_count"`
	Aborted         bool                      `json:"aborted"`
	Status          AuditStatus               `json:"status"`
}
