package scoring

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/ternarybob/bizhealth/internal/models"
)

var (
	// ErrEmptyValue is returned when an answer carries no content
	ErrEmptyValue = errors.New("empty value")
	// ErrNotNumeric is returned when an answer cannot be read as a number
	ErrNotNumeric = errors.New("value is not numeric")
)

var magnitudes = map[string]float64{
	"k":  1e3,
	"m":  1e6,
	"mm": 1e6,
	"b":  1e9,
	"bn": 1e9,
}

// ParseNumber reads a numeric answer. Text such as "$1,250,000", "40%",
// "1.2m" or "€40k" is accepted; lists, NaN and infinities are never numeric.
func ParseNumber(v models.Value) (float64, error) {
	switch {
	case v.Number != nil:
		return finite(*v.Number, v.String())
	case v.Text != nil:
		return parseNumericText(*v.Text)
	case len(v.List) > 0:
		return 0, fmt.Errorf("%w: list answer", ErrNotNumeric)
	default:
		return 0, ErrEmptyValue
	}
}

func parseNumericText(raw string) (float64, error) {
	s := strings.ToLower(strings.TrimSpace(raw))
	if s == "" {
		return 0, ErrEmptyValue
	}

	negative := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		negative = true
		s = strings.TrimSuffix(strings.TrimPrefix(s, "("), ")")
	}

	s = strings.Map(func(r rune) rune {
		switch r {
		case '$', '€', '£', '¥', ',', ' ', '_', '%':
			return -1
		}
		return r
	}, s)
	for _, code := range []string{"usd", "eur", "gbp", "aud"} {
		s = strings.TrimPrefix(s, code)
		s = strings.TrimSuffix(s, code)
	}

	multiplier := 1.0
	for _, suffix := range []string{"mm", "bn", "k", "m", "b"} {
		if strings.HasSuffix(s, suffix) {
			multiplier = magnitudes[suffix]
			s = strings.TrimSuffix(s, suffix)
			break
		}
	}

	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrNotNumeric, raw)
	}
	if negative {
		f = -f
	}
	return finite(f*multiplier, raw)
}

func finite(f float64, raw string) (float64, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("%w: %q is not finite", ErrNotNumeric, raw)
	}
	return f, nil
}

// ParseOption reads a single categorical answer as a lookup key
func ParseOption(v models.Value) (string, error) {
	switch {
	case v.Text != nil:
		key := optionKey(*v.Text)
		if key == "" {
			return "", ErrEmptyValue
		}
		return key, nil
	case v.Number != nil:
		return strconv.FormatFloat(*v.Number, 'f', -1, 64), nil
	case len(v.List) == 1:
		return optionKey(v.List[0]), nil
	case len(v.List) > 1:
		return "", fmt.Errorf("expected a single option, got %d", len(v.List))
	default:
		return "", ErrEmptyValue
	}
}

func optionKey(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	return strings.Join(strings.FieldsFunc(s, func(r rune) bool {
		return r == ' ' || r == '-' || r == '_'
	}), "_")
}
