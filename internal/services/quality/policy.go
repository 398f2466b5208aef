// Package quality tracks the validity and completeness of one assessment run
// and decides its audit verdict.
package quality

import (
	"sort"

	"github.com/ternarybob/bizhealth/internal/models"
)

// Policy holds the thresholds that turn recorded issues into a verdict
type Policy struct {
	// MaxCriticalIssues is the number of CRITICAL issues tolerated before FAIL
	MaxCriticalIssues int
	// MaxWarnings is the number of warnings tolerated before NEEDS_REVIEW
	MaxWarnings int
	// CriticalDimensions fail the run on any CRITICAL issue
	CriticalDimensions []string
	// MinCriticalCompleteness is the answered fraction a critical dimension needs
	MinCriticalCompleteness float64
}

// DefaultPolicy returns the shipped quality thresholds
func DefaultPolicy() Policy {
	return Policy{
		MaxCriticalIssues:       0,
		MaxWarnings:             25,
		CriticalDimensions:      []string{"FIN", "STR"},
		MinCriticalCompleteness: 0.5,
	}
}

// IsCritical reports whether a dimension is on the critical list
func (p Policy) IsCritical(code string) bool {
	code = models.CanonicalCode(code)
	for _, c := range p.CriticalDimensions {
		if models.CanonicalCode(c) == code {
			return true
		}
	}
	return false
}

// Evaluate derives the verdict of an audit without side effects.
// Aborted runs are always FAIL.
func Evaluate(audit *models.QualityAudit, policy Policy) models.AuditStatus {
	if audit.Aborted {
		return models.AuditFail
	}

	critical, warnings := 0, 0
	criticalOnKeyDimension := false
	for _, issue := range audit.Issues {
		switch issue.Severity {
		case models.SeverityCritical:
			critical++
			if policy.IsCritical(issue.DimensionCode) {
				criticalOnKeyDimension = true
			}
		case models.SeverityWarning:
			warnings++
		}
	}

	switch {
	case criticalOnKeyDimension || critical > policy.MaxCriticalIssues:
		return models.AuditFail
	case warnings > policy.MaxWarnings || critical > 0:
		return models.AuditNeedsReview
	default:
		return models.AuditPass
	}
}

func countSeverities(issues []models.Issue) (critical, warning, info int) {
	for _, issue := range issues {
		switch issue.Severity {
		case models.SeverityCritical:
			critical++
		case models.SeverityWarning:
			warning++
		case models.SeverityInfo:
			info++
		}
	}
	return critical, warning, info
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
