package scoring

import "github.com/ternarybob/bizhealth/internal/models"

// Thresholds are the lower bounds of the attention, proficiency and excellence bands.
// Scores below Attention are critical.
type Thresholds struct {
	Attention   float64
	Proficiency float64
	Excellence  float64
}

// DefaultThresholds returns the 0/40/60/80 banding
func DefaultThresholds() Thresholds {
	return Thresholds{
		Attention:   40,
		Proficiency: 60,
		Excellence:  80,
	}
}

// Band labels a score; nil scores are unscored
func (t Thresholds) Band(score *float64) models.ScoreBand {
	if score == nil {
		return models.BandUnscored
	}
	switch s := *score; {
	case s >= t.Excellence:
		return models.BandExcellence
	case s >= t.Proficiency:
		return models.BandProficiency
	case s >= t.Attention:
		return models.BandAttention
	default:
		return models.BandCritical
	}
}

// ConfidenceThresholds are the answered fractions for high and medium confidence
type ConfidenceThresholds struct {
	High   float64
	Medium float64
}

// DefaultConfidenceThresholds returns 80% / 50%
func DefaultConfidenceThresholds() ConfidenceThresholds {
	return ConfidenceThresholds{High: 0.8, Medium: 0.5}
}

// Confidence grades the fraction of expected questions actually answered
func (c ConfidenceThresholds) Confidence(found, expected int) models.Confidence {
	if found <= 0 || expected <= 0 {
		return models.ConfidenceNone
	}
	ratio := float64(found) / float64(expected)
	switch {
	case ratio >= c.High:
		return models.ConfidenceHigh
	case ratio >= c.Medium:
		return models.ConfidenceMedium
	default:
		return models.ConfidenceLow
	}
}

// Completion classifies found against expected answers
func Completion(found, expected int) models.CompletionStatus {
	switch {
	case found <= 0:
		return models.StatusSkipped
	case found >= expected:
		return models.StatusComplete
	default:
		return models.StatusPartial
	}
}
