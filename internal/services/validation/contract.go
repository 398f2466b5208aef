package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/bizhealth/internal/models"
)

// ContractValidator checks an assembled insights model against its schema
// contract: struct tag rules first, then cross-reference rules.
type ContractValidator struct {
	validate *validator.Validate
	logger   arbor.ILogger
}

// NewContractValidator creates a validator that reports JSON field paths
func NewContractValidator(logger arbor.ILogger) *ContractValidator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return &ContractValidator{
		validate: v,
		logger:   logger,
	}
}

// Validate returns every contract violation of idm; an empty result means valid
func (c *ContractValidator) Validate(idm *models.InsightsModel) []models.Violation {
	if idm == nil {
		return []models.Violation{{Path: "", Rule: "required", Message: "insights model is nil"}}
	}

	var out []models.Violation
	if err := c.validate.Struct(idm); err != nil {
		var fieldErrs validator.ValidationErrors
		if !errors.As(err, &fieldErrs) {
			return []models.Violation{{Path: "", Rule: "invalid", Message: err.Error()}}
		}
		for _, fe := range fieldErrs {
			out = append(out, models.Violation{
				Path:    fieldPath(fe.Namespace()),
				Rule:    fe.Tag(),
				Message: describe(fe),
			})
		}
	}
	out = append(out, crossReferences(idm)...)

	if len(out) > 0 {
		c.logger.Warn().
			Int("violations", len(out)).
			Strs("paths", paths(out)).
			Msg("Insights model failed contract validation")
	}
	return out
}

// fieldPath drops the root type name from a validator namespace
func fieldPath(namespace string) string {
	if i := strings.IndexByte(namespace, '.'); i >= 0 {
		return namespace[i+1:]
	}
	return namespace
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "field is required"
	case "oneof":
		return fmt.Sprintf("value %v must be one of [%s]", fe.Value(), fe.Param())
	case "min", "max", "gte", "lte", "eq":
		return fmt.Sprintf("value %v fails %s=%s", fe.Value(), fe.Tag(), fe.Param())
	default:
		return fmt.Sprintf("failed %s rule", fe.Tag())
	}
}

func paths(vs []models.Violation) []string {
	out := make([]string, len(vs))
	for i, v := range vs {
		out[i] = v.Path
	}
	return out
}

func crossReferences(idm *models.InsightsModel) []models.Violation {
	var out []models.Violation
	add := func(path, rule, format string, args ...interface{}) {
		out = append(out, models.Violation{Path: path, Rule: rule, Message: fmt.Sprintf(format, args...)})
	}

	chapters := make(map[string]bool, len(idm.Chapters))
	for i, ch := range idm.Chapters {
		if chapters[ch.Code] {
			add(fmt.Sprintf("chapters[%d].code", i), "unique", "chapter %s appears more than once", ch.Code)
		}
		chapters[ch.Code] = true
	}

	dimensions := make(map[string]bool, len(idm.Dimensions))
	for i, d := range idm.Dimensions {
		code := models.CanonicalCode(d.Code)
		if dimensions[code] {
			add(fmt.Sprintf("dimensions[%d].code", i), "unique", "dimension %s appears more than once", code)
		}
		dimensions[code] = true
		if d.ChapterCode != "" && !chapters[d.ChapterCode] {
			add(fmt.Sprintf("dimensions[%d].chapter_code", i), "chapter_ref", "chapter %s is not in the model", d.ChapterCode)
		}
	}

	for i, ch := range idm.Chapters {
		for j, code := range ch.Dimensions {
			if !dimensions[models.CanonicalCode(code)] {
				add(fmt.Sprintf("chapters[%d].dimensions[%d]", i, j), "dimension_ref", "dimension %s is not in the model", code)
			}
		}
	}

	recommendations := make(map[string]bool, len(idm.Recommendations))
	for i, r := range idm.Recommendations {
		if recommendations[r.ID] {
			add(fmt.Sprintf("recommendations[%d].id", i), "unique", "recommendation id %s repeats", r.ID)
		}
		recommendations[r.ID] = true
	}

	for i, qw := range idm.QuickWins {
		if !recommendations[qw.RecommendationID] {
			add(fmt.Sprintf("quick_wins[%d].recommendation_id", i), "recommendation_ref", "recommendation %s is not in the model", qw.RecommendationID)
		}
	}

	if idm.Roadmap != nil {
		for i, phase := range idm.Roadmap.Phases {
			for j, item := range phase.Items {
				if !recommendations[item.RecommendationID] {
					add(fmt.Sprintf("roadmap.phases[%d].items[%d].recommendation_id", i, j), "recommendation_ref",
						"recommendation %s is not in the model", item.RecommendationID)
				}
			}
		}
		for i, item := range idm.Roadmap.Unscheduled {
			if !recommendations[item.RecommendationID] {
				add(fmt.Sprintf("roadmap.unscheduled[%d].recommendation_id", i), "recommendation_ref",
					"recommendation %s is not in the model", item.RecommendationID)
			}
		}
	}
	return out
}
