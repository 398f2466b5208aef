package scoring

import "math"

// Weighted is one child contribution to an aggregate
type Weighted struct {
	Score  *float64
	Weight float64
}

// WeightedMean averages the non-nil, finite scores by weight.
// Returns nil when no child carries a score; a missing aggregate is never zero.
// Items are summed in slice order so results are reproducible bit for bit.
func WeightedMean(items []Weighted) *float64 {
	var sum, total float64
	for _, it := range items {
		if it.Score == nil || math.IsNaN(*it.Score) || math.IsInf(*it.Score, 0) || it.Weight <= 0 {
			continue
		}
		sum += *it.Score * it.Weight
		total += it.Weight
	}
	if total == 0 {
		return nil
	}
	mean := ClampFloat64(sum/total, 0, 100)
	return &mean
}

// ClampFloat64 constrains a value to a range; NaN clamps to min
func ClampFloat64(value, min, max float64) float64 {
	if math.IsNaN(value) || value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}

// Ptr returns a pointer to f
func Ptr(f float64) *float64 {
	return &f
}
