package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// ResponseType identifies how a raw answer is normalized
type ResponseType string

const (
	ResponseScale15     ResponseType = "scale_1_5"
	ResponsePercentage  ResponseType = "percentage"
	ResponseCurrency    ResponseType = "currency"
	ResponseNumber      ResponseType = "number"
	ResponseYesNo       ResponseType = "yes_no"
	ResponseCategorical ResponseType = "categorical"
	ResponseMultiSelect ResponseType = "multi_select"
	ResponseText        ResponseType = "text"
)

// AllResponseTypes returns every response type the normalizer knows about
func AllResponseTypes() []ResponseType {
	return []ResponseType{
		ResponseScale15,
		ResponsePercentage,
		ResponseCurrency,
		ResponseNumber,
		ResponseYesNo,
		ResponseCategorical,
		ResponseMultiSelect,
		ResponseText,
	}
}

// ParseResponseType converts a configured string into a ResponseType
func ParseResponseType(s string) (ResponseType, bool) {
	candidate := ResponseType(strings.ToLower(strings.TrimSpace(s)))
	for _, t := range AllResponseTypes() {
		if t == candidate {
			return t, true
		}
	}
	return candidate, false
}

// Scorable reports whether answers of this type contribute a numeric score
func (t ResponseType) Scorable() bool {
	return t != ResponseMultiSelect && t != ResponseText
}

// Value holds exactly one of a number, a text or a list of strings.
// The zero value is an empty answer.
type Value struct {
	Number *float64
	Text   *string
	List   []string
}

// NumberValue builds a numeric Value
func NumberValue(f float64) Value {
	return Value{Number: &f}
}

// TextValue builds a text Value
func TextValue(s string) Value {
	return Value{Text: &s}
}

// ListValue builds a multi-item Value
func ListValue(items ...string) Value {
	return Value{List: items}
}

// IsEmpty reports whether the answer carries no usable content
func (v Value) IsEmpty() bool {
	switch {
	case v.Number != nil:
		return false
	case v.Text != nil:
		return strings.TrimSpace(*v.Text) == ""
	default:
		return len(v.List) == 0
	}
}

// String renders the value for display and quality notes
func (v Value) String() string {
	switch {
	case v.Number != nil:
		return strconv.FormatFloat(*v.Number, 'f', -1, 64)
	case v.Text != nil:
		return *v.Text
	case len(v.List) > 0:
		return strings.Join(v.List, ", ")
	default:
		return ""
	}
}

func (v Value) MarshalJSON() ([]byte, error) {
	switch {
	case v.Number != nil:
		return json.Marshal(*v.Number)
	case v.Text != nil:
		return json.Marshal(*v.Text)
	case v.List != nil:
		return json.Marshal(v.List)
	default:
		return []byte("null"), nil
	}
}

func (v *Value) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	*v = Value{}
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil
	}

	switch trimmed[0] {
	case '"':
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return err
		}
		v.Text = &s
	case '[':
		var items []string
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return fmt.Errorf("list answers must contain strings: %w", err)
		}
		v.List = items
	case 't', 'f':
		var b bool
		if err := json.Unmarshal(trimmed, &b); err != nil {
			return err
		}
		s := boolText(b)
		v.Text = &s
	default:
		var f float64
		if err := json.Unmarshal(trimmed, &f); err != nil {
			return fmt.Errorf("unsupported answer value %s: %w", string(trimmed), err)
		}
		v.Number = &f
	}
	return nil
}

func (v *Value) UnmarshalYAML(node *yaml.Node) error {
	*v = Value{}
	switch node.Kind {
	case yaml.ScalarNode:
		switch node.Tag {
		case "!!null":
			return nil
		case "!!int", "!!float":
			f, err := strconv.ParseFloat(node.Value, 64)
			if err != nil {
				return fmt.Errorf("line %d: %w", node.Line, err)
			}
			v.Number = &f
		case "!!bool":
			var b bool
			if err := node.Decode(&b); err != nil {
				return err
			}
			s := boolText(b)
			v.Text = &s
		default:
			s := node.Value
			v.Text = &s
		}
	case yaml.SequenceNode:
		var items []string
		if err := node.Decode(&items); err != nil {
			return fmt.Errorf("line %d: list answers must contain strings: %w", node.Line, err)
		}
		v.List = items
	default:
		return fmt.Errorf("line %d: unsupported answer value", node.Line)
	}
	return nil
}

func boolText(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

// RawResponse is one answer as supplied by the survey system
type RawResponse struct {
	QuestionID    string       `json:"question_id" yaml:"question_id"`
	DimensionCode string       `json:"dimension_code" yaml:"dimension_code"`
	Value         Value        `json:"value" yaml:"value"`
	ResponseType  ResponseType `json:"response_type" yaml:"response_type"`
}

// NormalizedResponse is a RawResponse mapped onto the 0-100 scale.
// A nil Score means the answer could not be scored and counts as missing.
type NormalizedResponse struct {
	QuestionID       string       `json:"question_id"`
	DimensionCode    string       `json:"dimension_code"`
	SubIndicatorCode string       `json:"sub_indicator_code,omitempty"`
	ResponseType     ResponseType `json:"response_type"`
	Score            *float64     `json:"score"`
	IsValid          bool         `json:"is_valid"`
	Scorable         bool         `json:"scorable"`
	Weight           float64      `json:"weight"`
	Display          string       `json:"display,omitempty"`
	Notes            []string     `json:"notes,omitempty"`
}

// Counts reports whether the response contributes to aggregation
func (r NormalizedResponse) Counts() bool {
	return r.IsValid && r.Scorable && r.Score != nil && r.SubIndicatorCode != ""
}
