package scoring

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"

	"github.com/ternarybob/bizhealth/internal/models"
)

// Problem describes why an answer was not scored cleanly
type Problem struct {
	Code     models.IssueCode
	Severity models.Severity
	Message  string
}

// Outcome is the result of normalizing one answer.
// Valid answers may still carry a warning problem (for example a clamped value).
type Outcome struct {
	Score    *float64
	Valid    bool
	Scorable bool
	Problem  *Problem
}

// scored accepts a computed score; a non-finite one is never valid
func scored(v float64) Outcome {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return invalid(models.IssueUnparseable, "answer produced a non-finite score")
	}
	return Outcome{Score: Ptr(ClampFloat64(v, 0, 100)), Valid: true, Scorable: true}
}

func invalid(code models.IssueCode, format string, args ...interface{}) Outcome {
	return Outcome{
		Scorable: true,
		Problem: &Problem{
			Code:     code,
			Severity: models.SeverityWarning,
			Message:  fmt.Sprintf(format, args...),
		},
	}
}

func numericFailure(err error, v models.Value) Outcome {
	if errors.Is(err, ErrEmptyValue) {
		return invalid(models.IssueEmptyResponse, "empty answer")
	}
	return invalid(models.IssueUnparseable, "cannot read %q as a number", v.String())
}

// Handler normalizes one answer of a specific response type
type Handler interface {
	Normalize(v models.Value) Outcome
}

// scaleHandler rescales an ordinal 1-5 answer linearly onto 0-100
type scaleHandler struct{}

func (scaleHandler) Normalize(v models.Value) Outcome {
	n, err := ParseNumber(v)
	if err != nil {
		return numericFailure(err, v)
	}
	if n < 1 || n > 5 {
		return invalid(models.IssueOutOfRange, "scale answer %s outside 1-5", formatFloat(n))
	}
	return scored((n - 1) / 4 * 100)
}

// percentageHandler passes 0-100 through. Values just outside the range, within
// tolerance, are clamped and reported; anything farther is invalid.
type percentageHandler struct {
	tolerance float64
}

func (h percentageHandler) Normalize(v models.Value) Outcome {
	n, err := ParseNumber(v)
	if err != nil {
		return numericFailure(err, v)
	}
	if n >= 0 && n <= 100 {
		return scored(n)
	}
	if n >= -h.tolerance && n <= 100+h.tolerance {
		clamped := ClampFloat64(n, 0, 100)
		out := scored(clamped)
		out.Problem = &Problem{
			Code:     models.IssueValueClamped,
			Severity: models.SeverityWarning,
			Message:  fmt.Sprintf("percentage %s clamped to %s", formatFloat(n), formatFloat(clamped)),
		}
		return out
	}
	return invalid(models.IssueOutOfRange, "percentage %s outside 0-100", formatFloat(n))
}

// bandsHandler scores a value by the highest threshold it reaches
type bandsHandler struct {
	thresholds []models.Threshold
}

func (h bandsHandler) Normalize(v models.Value) Outcome {
	n, err := ParseNumber(v)
	if err != nil {
		return numericFailure(err, v)
	}
	if n < h.thresholds[0].Min {
		return invalid(models.IssueOutOfRange, "value %s below lowest band %s", formatFloat(n), formatFloat(h.thresholds[0].Min))
	}
	score := h.thresholds[0].Score
	for _, t := range h.thresholds {
		if n >= t.Min {
			score = t.Score
		}
	}
	return scored(score)
}

// peerRelativeHandler maps a value linearly between a peer floor and ceiling
type peerRelativeHandler struct {
	floor   float64
	ceiling float64
	invert  bool
}

func (h peerRelativeHandler) Normalize(v models.Value) Outcome {
	n, err := ParseNumber(v)
	if err != nil {
		return numericFailure(err, v)
	}
	ratio := ClampFloat64((n-h.floor)/(h.ceiling-h.floor), 0, 1)
	if h.invert {
		ratio = 1 - ratio
	}
	return scored(ratio * 100)
}

// lookupHandler scores yes/no and categorical answers from a fixed table
type lookupHandler struct {
	options map[string]float64
}

func (h lookupHandler) Normalize(v models.Value) Outcome {
	key, err := ParseOption(v)
	if err != nil {
		if errors.Is(err, ErrEmptyValue) {
			return invalid(models.IssueEmptyResponse, "empty answer")
		}
		return invalid(models.IssueUnknownOption, "%v", err)
	}
	score, ok := h.options[key]
	if !ok {
		return invalid(models.IssueUnknownOption, "option %q not in lookup table", key)
	}
	return scored(score)
}

// unscorableHandler carries free text and multi-select answers for display only
type unscorableHandler struct{}

func (unscorableHandler) Normalize(v models.Value) Outcome {
	if v.IsEmpty() {
		return Outcome{Problem: &Problem{
			Code:     models.IssueEmptyResponse,
			Severity: models.SeverityInfo,
			Message:  "empty display-only answer",
		}}
	}
	return Outcome{Valid: true}
}

// missingHandler fails loud: the answer is unscored and the run must abort
type missingHandler struct {
	reason string
}

func (h missingHandler) Normalize(models.Value) Outcome {
	return Outcome{
		Scorable: true,
		Problem: &Problem{
			Code:     models.IssueMissingHandler,
			Severity: models.SeverityCritical,
			Message:  h.reason,
		},
	}
}

var defaultYesNo = lookupHandler{options: map[string]float64{
	"yes":   100,
	"y":     100,
	"true":  100,
	"no":    0,
	"n":     0,
	"false": 0,
}}

func newRuleHandler(rule models.NormalizationRule) (Handler, error) {
	switch rule.Kind {
	case models.RuleBands:
		if len(rule.Thresholds) == 0 {
			return nil, errors.New("bands rule declares no thresholds")
		}
		thresholds := append([]models.Threshold(nil), rule.Thresholds...)
		sort.SliceStable(thresholds, func(i, j int) bool { return thresholds[i].Min < thresholds[j].Min })
		for i := 1; i < len(thresholds); i++ {
			if thresholds[i].Min == thresholds[i-1].Min {
				return nil, fmt.Errorf("bands rule repeats threshold %s", formatFloat(thresholds[i].Min))
			}
		}
		return bandsHandler{thresholds: thresholds}, nil
	case models.RulePeerRelative:
		if rule.Ceiling == rule.Floor {
			return nil, errors.New("peer_relative rule needs distinct floor and ceiling")
		}
		return peerRelativeHandler{floor: rule.Floor, ceiling: rule.Ceiling, invert: rule.Invert}, nil
	case models.RuleLookup:
		if len(rule.Options) == 0 {
			return nil, errors.New("lookup rule declares no options")
		}
		options := make(map[string]float64, len(rule.Options))
		for k, v := range rule.Options {
			options[optionKey(k)] = v
		}
		return lookupHandler{options: options}, nil
	default:
		return nil, fmt.Errorf("unknown rule kind %q", rule.Kind)
	}
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
