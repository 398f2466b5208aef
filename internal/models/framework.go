package models

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// RuleKind selects the normalization rule applied to numeric answers
type RuleKind string

const (
	RuleBands        RuleKind = "bands"
	RulePeerRelative RuleKind = "peer_relative"
	RuleLookup       RuleKind = "lookup"
)

// Threshold maps values at or above Min onto Score
type Threshold struct {
	Min   float64 `toml:"min" json:"min"`
	Score float64 `toml:"score" json:"score"`
}

// NormalizationRule configures how one question's answer is scored
type NormalizationRule struct {
	QuestionID string             `toml:"question" json:"question"`
	Kind       RuleKind           `toml:"kind" json:"kind"`
	Thresholds []Threshold        `toml:"thresholds" json:"thresholds,omitempty"`
	Floor      float64            `toml:"floor" json:"floor,omitempty"`
	Ceiling    float64            `toml:"ceiling" json:"ceiling,omitempty"`
	Invert     bool               `toml:"invert" json:"invert,omitempty"`
	Options    map[string]float64 `toml:"options" json:"options,omitempty"`
}

// SubIndicatorSpec declares the questions rolled up into one sub-indicator
type SubIndicatorSpec struct {
	Code            string             `toml:"code" json:"code"`
	Name            string             `toml:"name" json:"name"`
	Weight          float64            `toml:"weight" json:"weight,omitempty"`
	Questions       []string           `toml:"questions" json:"questions"`
	QuestionWeights map[string]float64 `toml:"question_weights" json:"question_weights,omitempty"`
}

// QuestionWeight returns the declared weight of a question, defaulting to 1
func (s *SubIndicatorSpec) QuestionWeight(questionID string) float64 {
	if w, ok := s.QuestionWeights[questionID]; ok && w > 0 {
		return w
	}
	return 1
}

// DimensionSpec declares one canonical dimension
type DimensionSpec struct {
	Code              string             `toml:"code" json:"code"`
	Name              string             `toml:"name" json:"name"`
	Chapter           string             `toml:"chapter" json:"chapter"`
	Weight            float64            `toml:"weight" json:"weight,omitempty"`
	ExpectedQuestions int                `toml:"expected_questions" json:"expected_questions,omitempty"`
	SubIndicators     []SubIndicatorSpec `toml:"sub_indicators" json:"sub_indicators"`
}

// ExpectedQuestionCount returns the declared question count or the catalog size
func (d *DimensionSpec) ExpectedQuestionCount() int {
	if d.ExpectedQuestions > 0 {
		return d.ExpectedQuestions
	}
	n := 0
	for _, s := range d.SubIndicators {
		n += len(s.Questions)
	}
	return n
}

// ChapterSpec declares one chapter grouping dimensions
type ChapterSpec struct {
	Code                  string  `toml:"code" json:"code"`
	Name                  string  `toml:"name" json:"name"`
	Weight                float64 `toml:"weight" json:"weight,omitempty"`
	ExpectedSubIndicators int     `toml:"expected_sub_indicators" json:"expected_sub_indicators,omitempty"`
}

// Framework is the full scoring hierarchy plus its taxonomy aliases
type Framework struct {
	Version    string              `toml:"version" json:"version"`
	Chapters   []ChapterSpec       `toml:"chapters" json:"chapters"`
	Dimensions []DimensionSpec     `toml:"dimensions" json:"dimensions"`
	Aliases    map[string]string   `toml:"aliases" json:"aliases,omitempty"`
	Rules      []NormalizationRule `toml:"rules" json:"rules,omitempty"`
}

// CanonicalCode normalizes a code for lookups
func CanonicalCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// EffectiveWeight treats unset or non-positive weights as 1
func EffectiveWeight(w float64) float64 {
	if w <= 0 {
		return 1
	}
	return w
}

// Validate checks hierarchy closure: unique codes, every dimension in exactly one
// declared chapter, every chapter populated and declared sub-indicator totals met.
func (f *Framework) Validate() error {
	if f == nil {
		return &ConfigurationDefect{Kind: DefectInvalidFramework, Detail: "framework is nil"}
	}

	var problems []error
	chapters := make(map[string]int, len(f.Chapters))
	for _, ch := range f.Chapters {
		code := CanonicalCode(ch.Code)
		if code == "" {
			problems = append(problems, errors.New("chapter with empty code"))
			continue
		}
		if _, dup := chapters[code]; dup {
			problems = append(problems, fmt.Errorf("duplicate chapter %s", code))
		}
		chapters[code] = 0
	}

	subTotals := make(map[string]int, len(f.Chapters))
	dimensions := make(map[string]bool, len(f.Dimensions))
	questions := make(map[string]string)
	for _, d := range f.Dimensions {
		code := CanonicalCode(d.Code)
		if code == "" {
			problems = append(problems, errors.New("dimension with empty code"))
			continue
		}
		if dimensions[code] {
			problems = append(problems, fmt.Errorf("duplicate dimension %s", code))
		}
		dimensions[code] = true

		chapter := CanonicalCode(d.Chapter)
		if _, ok := chapters[chapter]; !ok {
			problems = append(problems, fmt.Errorf("dimension %s references unknown chapter %q", code, d.Chapter))
		} else {
			chapters[chapter]++
			subTotals[chapter] += len(d.SubIndicators)
		}

		if len(d.SubIndicators) == 0 {
			problems = append(problems, fmt.Errorf("dimension %s declares no sub-indicators", code))
		}
		subs := make(map[string]bool, len(d.SubIndicators))
		for _, s := range d.SubIndicators {
			sc := CanonicalCode(s.Code)
			if sc == "" || subs[sc] {
				problems = append(problems, fmt.Errorf("dimension %s has empty or duplicate sub-indicator %q", code, s.Code))
			}
			subs[sc] = true
			for _, q := range s.Questions {
				if owner, seen := questions[q]; seen {
					problems = append(problems, fmt.Errorf("question %s listed in both %s and %s", q, owner, sc))
					continue
				}
				questions[q] = sc
			}
		}
	}

	for _, ch := range f.Chapters {
		code := CanonicalCode(ch.Code)
		if chapters[code] == 0 {
			problems = append(problems, fmt.Errorf("chapter %s has no dimensions", code))
		}
		if ch.ExpectedSubIndicators > 0 && subTotals[code] != ch.ExpectedSubIndicators {
			problems = append(problems, fmt.Errorf("chapter %s expects %d sub-indicators, dimensions declare %d",
				code, ch.ExpectedSubIndicators, subTotals[code]))
		}
	}

	aliases := make([]string, 0, len(f.Aliases))
	for alias := range f.Aliases {
		aliases = append(aliases, alias)
	}
	sort.Strings(aliases)
	for _, alias := range aliases {
		target := CanonicalCode(f.Aliases[alias])
		if !dimensions[target] {
			problems = append(problems, fmt.Errorf("alias %s targets unknown dimension %q", alias, f.Aliases[alias]))
		}
		if ac := CanonicalCode(alias); dimensions[ac] && ac != target {
			problems = append(problems, fmt.Errorf("alias %s shadows canonical dimension %s", alias, ac))
		}
	}

	if len(problems) > 0 {
		return &ConfigurationDefect{
			Kind:   DefectInvalidFramework,
			Detail: fmt.Sprintf("%d framework problem(s)", len(problems)),
			Err:    errors.Join(problems...),
		}
	}
	return nil
}

// ChapterDimensions returns the dimensions of a chapter in declared order
func (f *Framework) ChapterDimensions(chapter string) []*DimensionSpec {
	code := CanonicalCode(chapter)
	var out []*DimensionSpec
	for i := range f.Dimensions {
		if CanonicalCode(f.Dimensions[i].Chapter) == code {
			out = append(out, &f.Dimensions[i])
		}
	}
	return out
}
