package insights

import "github.com/ternarybob/bizhealth/internal/models"

// QuickWinPolicy selects recommendations worth doing first
type QuickWinPolicy struct {
	Impacts []models.Level
	Efforts []models.Level
	MaxDays int
}

// DefaultQuickWinPolicy is medium or high impact, low effort, within 90 days
func DefaultQuickWinPolicy() QuickWinPolicy {
	return QuickWinPolicy{
		Impacts: []models.Level{models.LevelMedium, models.LevelHigh},
		Efforts: []models.Level{models.LevelLow},
		MaxDays: 90,
	}
}

func (p QuickWinPolicy) matches(r models.Recommendation) bool {
	return contains(p.Impacts, r.Impact) &&
		contains(p.Efforts, r.Effort) &&
		r.TimelineDays != nil && *r.TimelineDays >= 0 && *r.TimelineDays <= p.MaxDays
}

// SelectQuickWins filters recommendations by policy, keeping their order
func SelectQuickWins(recs []models.Recommendation, policy QuickWinPolicy) []models.QuickWin {
	out := make([]models.QuickWin, 0)
	for _, r := range recs {
		if !policy.matches(r) {
			continue
		}
		out = append(out, models.QuickWin{
			RecommendationID: r.ID,
			DimensionCode:    r.DimensionCode,
			Title:            r.Title,
			Impact:           r.Impact,
			Effort:           r.Effort,
			TimelineDays:     *r.TimelineDays,
		})
	}
	return out
}

func contains(levels []models.Level, l models.Level) bool {
	for _, candidate := range levels {
		if candidate == l {
			return true
		}
	}
	return false
}
