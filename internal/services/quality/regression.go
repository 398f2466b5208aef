package quality

import (
	"fmt"
	"sort"

	"github.com/ternarybob/bizhealth/internal/models"
)

// RegressionKind classifies how a run got worse than its baseline
type RegressionKind string

const (
	RegressionStatus     RegressionKind = "status"
	RegressionCritical   RegressionKind = "critical_count"
	RegressionWarnings   RegressionKind = "warning_count"
	RegressionCompletion RegressionKind = "completion"
	RegressionNewIssue   RegressionKind = "new_issue"
)

// Regression is one way the current audit is worse than the baseline
type Regression struct {
	Kind          RegressionKind `json:"kind"`
	DimensionCode string         `json:"dimension_code,omitempty"`
	Detail        string         `json:"detail"`
}

var statusRank = map[models.AuditStatus]int{
	models.AuditPass:        0,
	models.AuditNeedsReview: 1,
	models.AuditFail:        2,
}

var completionRank = map[models.CompletionStatus]int{
	models.StatusComplete: 0,
	models.StatusPartial:  1,
	models.StatusSkipped:  2,
}

// CompareAudits lists the regressions of current against baseline in a stable order.
// A nil baseline yields none.
func CompareAudits(baseline, current *models.QualityAudit) []Regression {
	if baseline == nil || current == nil {
		return nil
	}

	var out []Regression
	if statusRank[current.Status] > statusRank[baseline.Status] {
		out = append(out, Regression{
			Kind:   RegressionStatus,
			Detail: fmt.Sprintf("status %s -> %s", baseline.Status, current.Status),
		})
	}
	if current.CriticalCount > baseline.CriticalCount {
		out = append(out, Regression{
			Kind:   RegressionCritical,
			Detail: fmt.Sprintf("critical issues %d -> %d", baseline.CriticalCount, current.CriticalCount),
		})
	}
	if current.WarningCount > baseline.WarningCount {
		out = append(out, Regression{
			Kind:   RegressionWarnings,
			Detail: fmt.Sprintf("warnings %d -> %d", baseline.WarningCount, current.WarningCount),
		})
	}

	for _, code := range sortedKeys(current.DimensionStatus) {
		was, ok := baseline.DimensionStatus[code]
		if !ok {
			continue
		}
		now := current.DimensionStatus[code]
		if completionRank[now.Status] > completionRank[was.Status] {
			out = append(out, Regression{
				Kind:          RegressionCompletion,
				DimensionCode: code,
				Detail:        fmt.Sprintf("dimension %s %s -> %s", code, was.Status, now.Status),
			})
		}
	}

	known := make(map[string]bool, len(baseline.Issues))
	for _, issue := range baseline.Issues {
		known[issueKey(issue)] = true
	}
	var fresh []Regression
	for _, issue := range current.Issues {
		if issue.Severity == models.SeverityInfo {
			continue
		}
		key := issueKey(issue)
		if known[key] {
			continue
		}
		known[key] = true
		fresh = append(fresh, Regression{
			Kind:          RegressionNewIssue,
			DimensionCode: issue.DimensionCode,
			Detail:        fmt.Sprintf("%s %s", issue.Severity, issue.Code),
		})
	}
	sort.SliceStable(fresh, func(i, j int) bool {
		if fresh[i].DimensionCode != fresh[j].DimensionCode {
			return fresh[i].DimensionCode < fresh[j].DimensionCode
		}
		return fresh[i].Detail < fresh[j].Detail
	})
	return append(out, fresh...)
}

func issueKey(issue models.Issue) string {
	return string(issue.Severity) + "|" + string(issue.Code) + "|" + issue.DimensionCode
}
