package scoring

import (
	"fmt"

	"github.com/ternarybob/bizhealth/internal/models"
)

// Hierarchy is the aggregated score tree of one run
type Hierarchy struct {
	SubIndicators []models.SubIndicatorScore
	Dimensions    []models.DimensionScore
	Chapters      []models.ChapterScore
	Overall       *float64
	OverallBand   models.ScoreBand
}

// Dimension returns the aggregated dimension with the given canonical code
func (h *Hierarchy) Dimension(code string) (models.DimensionScore, bool) {
	for _, d := range h.Dimensions {
		if d.Code == code {
			return d, true
		}
	}
	return models.DimensionScore{}, false
}

// AggregatorOptions configure banding and confidence
type AggregatorOptions struct {
	Bands      Thresholds
	Confidence ConfidenceThresholds
}

// Aggregator rolls normalized answers up the framework hierarchy
type Aggregator struct {
	framework *models.Framework
	opts      AggregatorOptions
}

// NewAggregator creates an aggregator over a validated framework
func NewAggregator(framework *models.Framework, opts AggregatorOptions) *Aggregator {
	return &Aggregator{
		framework: framework,
		opts:      opts,
	}
}

// Aggregate computes every level from the normalized answers. Iteration follows
// the framework's declared order only, never map order. When a question is
// answered twice the first answer wins and a warning is returned.
func (a *Aggregator) Aggregate(responses []models.NormalizedResponse) (*Hierarchy, []models.Issue) {
	var issues []models.Issue
	byQuestion := make(map[string]models.NormalizedResponse, len(responses))
	for _, r := range responses {
		if !r.Counts() {
			continue
		}
		if _, dup := byQuestion[r.QuestionID]; dup {
			issues = append(issues, models.Issue{
				Severity:      models.SeverityWarning,
				Code:          models.IssueDuplicateResponse,
				Stage:         "aggregate",
				DimensionCode: r.DimensionCode,
				QuestionID:    r.QuestionID,
				Message:       fmt.Sprintf("question %s answered more than once; first answer kept", r.QuestionID),
			})
			continue
		}
		byQuestion[r.QuestionID] = r
	}

	h := &Hierarchy{}
	dimensionsByCode := make(map[string]models.DimensionScore, len(a.framework.Dimensions))

	for i := range a.framework.Dimensions {
		spec := &a.framework.Dimensions[i]
		dim := a.aggregateDimension(spec, byQuestion)
		h.SubIndicators = append(h.SubIndicators, dim.SubIndicators...)
		h.Dimensions = append(h.Dimensions, dim)
		dimensionsByCode[dim.Code] = dim
	}

	chapterItems := make([]Weighted, 0, len(a.framework.Chapters))
	for _, ch := range a.framework.Chapters {
		chapter := a.aggregateChapter(ch, dimensionsByCode)
		h.Chapters = append(h.Chapters, chapter)
		chapterItems = append(chapterItems, Weighted{Score: chapter.Score, Weight: models.EffectiveWeight(ch.Weight)})
	}

	h.Overall = WeightedMean(chapterItems)
	h.OverallBand = a.opts.Bands.Band(h.Overall)
	return h, issues
}

func (a *Aggregator) aggregateDimension(spec *models.DimensionSpec, byQuestion map[string]models.NormalizedResponse) models.DimensionScore {
	code := models.CanonicalCode(spec.Code)
	subItems := make([]Weighted, 0, len(spec.SubIndicators))
	subs := make([]models.SubIndicatorScore, 0, len(spec.SubIndicators))
	found := 0

	for j := range spec.SubIndicators {
		sub := &spec.SubIndicators[j]
		items := make([]Weighted, 0, len(sub.Questions))
		subFound := 0
		for _, q := range sub.Questions {
			r, ok := byQuestion[q]
			if !ok || models.CanonicalCode(r.DimensionCode) != code {
				continue
			}
			items = append(items, Weighted{Score: r.Score, Weight: r.Weight})
			subFound++
		}

		score := WeightedMean(items)
		subs = append(subs, models.SubIndicatorScore{
			Code:              sub.Code,
			Name:              sub.Name,
			DimensionCode:     code,
			Score:             score,
			Status:            Completion(subFound, len(sub.Questions)),
			QuestionsExpected: len(sub.Questions),
			QuestionsFound:    subFound,
		})
		subItems = append(subItems, Weighted{Score: score, Weight: models.EffectiveWeight(sub.Weight)})
		found += subFound
	}

	expected := spec.ExpectedQuestionCount()
	score := WeightedMean(subItems)
	return models.DimensionScore{
		Code:              code,
		Name:              spec.Name,
		ChapterCode:       models.CanonicalCode(spec.Chapter),
		Score:             score,
		Band:              a.opts.Bands.Band(score),
		Status:            Completion(found, expected),
		Confidence:        a.opts.Confidence.Confidence(found, expected),
		QuestionsExpected: expected,
		QuestionsFound:    found,
		SubIndicators:     subs,
	}
}

func (a *Aggregator) aggregateChapter(ch models.ChapterSpec, dims map[string]models.DimensionScore) models.ChapterScore {
	specs := a.framework.ChapterDimensions(ch.Code)
	items := make([]Weighted, 0, len(specs))
	codes := make([]string, 0, len(specs))
	complete, skipped := 0, 0

	for _, spec := range specs {
		dim := dims[models.CanonicalCode(spec.Code)]
		codes = append(codes, dim.Code)
		items = append(items, Weighted{Score: dim.Score, Weight: models.EffectiveWeight(spec.Weight)})
		switch dim.Status {
		case models.StatusComplete:
			complete++
		case models.StatusSkipped:
			skipped++
		}
	}

	status := models.StatusPartial
	switch {
	case skipped == len(specs):
		status = models.StatusSkipped
	case complete == len(specs):
		status = models.StatusComplete
	}

	score := WeightedMean(items)
	return models.ChapterScore{
		Code:       models.CanonicalCode(ch.Code),
		Name:       ch.Name,
		Score:      score,
		Band:       a.opts.Bands.Band(score),
		Status:     status,
		Dimensions: codes,
	}
}
