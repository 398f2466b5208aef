package insights

import (
	"errors"
	"fmt"

	"github.com/ternarybob/bizhealth/internal/models"
)

// Phase is a configured roadmap bucket; a nil MaxDays is open ended
type Phase struct {
	Key     string
	Label   string
	MinDays int
	MaxDays *int
}

func days(n int) *int { return &n }

// DefaultPhases returns the 0-30, 31-90, 91-180 and 180+ day buckets
func DefaultPhases() []Phase {
	return []Phase{
		{Key: "0-30", Label: "Immediate (0-30 days)", MinDays: 0, MaxDays: days(30)},
		{Key: "31-90", Label: "Short term (31-90 days)", MinDays: 31, MaxDays: days(90)},
		{Key: "91-180", Label: "Medium term (91-180 days)", MinDays: 91, MaxDays: days(180)},
		{Key: "180+", Label: "Long term (180+ days)", MinDays: 181},
	}
}

func (p Phase) contains(d int) bool {
	return d >= p.MinDays && (p.MaxDays == nil || d <= *p.MaxDays)
}

// RoadmapBuilder places recommendations into phases by timeline
type RoadmapBuilder struct {
	phases []Phase
}

// NewRoadmapBuilder validates that phases ascend without overlapping
func NewRoadmapBuilder(phases []Phase) (*RoadmapBuilder, error) {
	if len(phases) == 0 {
		return nil, errors.New("roadmap needs at least one phase")
	}
	seen := make(map[string]bool, len(phases))
	for i, p := range phases {
		if p.Key == "" || seen[p.Key] {
			return nil, fmt.Errorf("roadmap phase %d has empty or duplicate key %q", i, p.Key)
		}
		seen[p.Key] = true
		if p.MinDays < 0 || (p.MaxDays != nil && *p.MaxDays < p.MinDays) {
			return nil, fmt.Errorf("roadmap phase %s has an invalid day range", p.Key)
		}
		if i == 0 {
			continue
		}
		prev := phases[i-1]
		if prev.MaxDays == nil || p.MinDays <= *prev.MaxDays {
			return nil, fmt.Errorf("roadmap phase %s overlaps %s", p.Key, prev.Key)
		}
	}
	return &RoadmapBuilder{phases: append([]Phase(nil), phases...)}, nil
}

// Build assigns every recommendation to the phase covering its timeline.
// Recommendations without a usable timeline go to the unscheduled bucket and
// raise a warning.
func (b *RoadmapBuilder) Build(recs []models.Recommendation) (*models.Roadmap, []models.Issue) {
	roadmap := &models.Roadmap{
		Phases:      make([]models.RoadmapPhase, len(b.phases)),
		Unscheduled: make([]models.RoadmapItem, 0),
	}
	for i, p := range b.phases {
		roadmap.Phases[i] = models.RoadmapPhase{
			Key:     p.Key,
			Label:   p.Label,
			MinDays: p.MinDays,
			MaxDays: p.MaxDays,
			Items:   make([]models.RoadmapItem, 0),
		}
	}

	var issues []models.Issue
	for _, r := range recs {
		item := models.RoadmapItem{
			RecommendationID: r.ID,
			DimensionCode:    r.DimensionCode,
			Title:            r.Title,
			TimelineDays:     r.TimelineDays,
		}
		if idx := b.phaseFor(r.TimelineDays); idx >= 0 {
			roadmap.Phases[idx].Items = append(roadmap.Phases[idx].Items, item)
			continue
		}
		roadmap.Unscheduled = append(roadmap.Unscheduled, item)
		issues = append(issues, models.Issue{
			Severity:      models.SeverityWarning,
			Code:          models.IssueUnscheduled,
			Stage:         "roadmap",
			DimensionCode: r.DimensionCode,
			Message:       fmt.Sprintf("recommendation %s has no usable timeline (%q)", r.ID, r.Timeline),
		})
	}
	return roadmap, issues
}

func (b *RoadmapBuilder) phaseFor(d *int) int {
	if d == nil {
		return -1
	}
	for i, p := range b.phases {
		if p.contains(*d) {
			return i
		}
	}
	return -1
}
