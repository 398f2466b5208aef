// Package scoring normalizes raw answers and aggregates them through the
// question → sub-indicator → dimension → chapter → overall hierarchy.
// All functions are deterministic and perform no I/O.
package scoring

import (
	"errors"
	"fmt"

	"github.com/ternarybob/bizhealth/internal/models"
	"github.com/ternarybob/bizhealth/internal/services/taxonomy"
)

// NormalizerOptions configure the normalizer
type NormalizerOptions struct {
	// PercentageClampTolerance is how far outside 0-100 a percentage may fall
	// and still be clamped rather than rejected.
	PercentageClampTolerance float64
	// ResponseTypes lists the response types accepted by this deployment.
	// Empty accepts every known type.
	ResponseTypes []string
}

// Normalizer converts raw answers into 0-100 scores
type Normalizer struct {
	rules     map[string]Handler
	kinds     map[string]models.RuleKind
	tolerance float64
	accepted  map[models.ResponseType]bool
}

// NewNormalizer compiles per-question rules and checks that every configured
// response type has a handler. A failure is a *models.ConfigurationDefect.
func NewNormalizer(rules []models.NormalizationRule, opts NormalizerOptions) (*Normalizer, error) {
	n := &Normalizer{
		rules:     make(map[string]Handler, len(rules)),
		kinds:     make(map[string]models.RuleKind, len(rules)),
		tolerance: opts.PercentageClampTolerance,
	}
	if n.tolerance < 0 {
		n.tolerance = 0
	}

	var problems []error
	for _, rule := range rules {
		if rule.QuestionID == "" {
			problems = append(problems, errors.New("rule without question id"))
			continue
		}
		if _, dup := n.rules[rule.QuestionID]; dup {
			problems = append(problems, fmt.Errorf("question %s has more than one rule", rule.QuestionID))
			continue
		}
		h, err := newRuleHandler(rule)
		if err != nil {
			problems = append(problems, fmt.Errorf("question %s: %w", rule.QuestionID, err))
			continue
		}
		n.rules[rule.QuestionID] = h
		n.kinds[rule.QuestionID] = rule.Kind
	}

	if len(opts.ResponseTypes) > 0 {
		n.accepted = make(map[models.ResponseType]bool, len(opts.ResponseTypes))
		for _, s := range opts.ResponseTypes {
			t, ok := models.ParseResponseType(s)
			if !ok {
				problems = append(problems, fmt.Errorf("response type %q has no normalization handler", s))
				continue
			}
			n.accepted[t] = true
		}
	}

	if len(problems) > 0 {
		return nil, &models.ConfigurationDefect{
			Kind:   models.DefectMissingHandler,
			Detail: fmt.Sprintf("%d normalization rule problem(s)", len(problems)),
			Err:    errors.Join(problems...),
		}
	}
	return n, nil
}

// HandlerFor selects the handler for a question's declared response type.
// Types without a usable handler get missingHandler, which never yields a score.
func (n *Normalizer) HandlerFor(t models.ResponseType, questionID string) Handler {
	if n.accepted != nil && !n.accepted[t] {
		return missingHandler{reason: fmt.Sprintf("response type %q is not enabled", t)}
	}

	rule, hasRule := n.rules[questionID]
	kind := n.kinds[questionID]

	switch t {
	case models.ResponseScale15:
		return scaleHandler{}
	case models.ResponsePercentage:
		return percentageHandler{tolerance: n.tolerance}
	case models.ResponseCurrency, models.ResponseNumber:
		if !hasRule || (kind != models.RuleBands && kind != models.RulePeerRelative) {
			return missingHandler{reason: fmt.Sprintf("%s question %s has no bands or peer_relative rule", t, questionID)}
		}
		return rule
	case models.ResponseYesNo:
		if hasRule && kind == models.RuleLookup {
			return rule
		}
		return defaultYesNo
	case models.ResponseCategorical:
		if !hasRule || kind != models.RuleLookup {
			return missingHandler{reason: fmt.Sprintf("categorical question %s has no lookup rule", questionID)}
		}
		return rule
	case models.ResponseMultiSelect, models.ResponseText:
		return unscorableHandler{}
	default:
		return missingHandler{reason: fmt.Sprintf("no handler for response type %q", t)}
	}
}

// Normalize scores one answer placed at target. It returns at most one issue.
func (n *Normalizer) Normalize(raw models.RawResponse, target taxonomy.Placement) (models.NormalizedResponse, *models.Issue) {
	out := models.NormalizedResponse{
		QuestionID:       raw.QuestionID,
		DimensionCode:    target.DimensionCode,
		SubIndicatorCode: target.SubIndicatorCode,
		ResponseType:     raw.ResponseType,
		Weight:           models.EffectiveWeight(target.Weight),
		Display:          raw.Value.String(),
	}

	handler := n.HandlerFor(raw.ResponseType, raw.QuestionID)
	var outcome Outcome
	if _, missing := handler.(missingHandler); !missing && raw.ResponseType.Scorable() && raw.Value.IsEmpty() {
		outcome = invalid(models.IssueEmptyResponse, "empty answer")
	} else {
		outcome = handler.Normalize(raw.Value)
	}

	out.Score = outcome.Score
	out.IsValid = outcome.Valid
	out.Scorable = outcome.Scorable
	if !out.IsValid {
		out.Score = nil
	}

	if outcome.Problem == nil {
		return out, nil
	}
	out.Notes = append(out.Notes, outcome.Problem.Message)
	return out, &models.Issue{
		Severity:      outcome.Problem.Severity,
		Code:          outcome.Problem.Code,
		Stage:         "normalize",
		DimensionCode: target.DimensionCode,
		QuestionID:    raw.QuestionID,
		Message:       outcome.Problem.Message,
	}
}
