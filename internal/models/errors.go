package models

import (
	"fmt"
	"strings"
)

// DefectKind classifies fatal configuration defects
type DefectKind string

const (
	DefectUnknownCode      DefectKind = "unknown_code"
	DefectMissingHandler   DefectKind = "missing_handler"
	DefectInvalidFramework DefectKind = "invalid_framework"
)

// ConfigurationDefect aborts a run. Scoring through it would corrupt the hierarchy.
type ConfigurationDefect struct {
	Kind          DefectKind
	DimensionCode string
	QuestionID    string
	Detail        string
	Err           error
}

func (e *ConfigurationDefect) Error() string {
	var b strings.Builder
	b.WriteString("configuration defect (")
	b.WriteString(string(e.Kind))
	b.WriteString(")")
	if e.DimensionCode != "" {
		b.WriteString(" dimension=" + e.DimensionCode)
	}
	if e.QuestionID != "" {
		b.WriteString(" question=" + e.QuestionID)
	}
	if e.Detail != "" {
		b.WriteString(": " + e.Detail)
	}
	if e.Err != nil {
		b.WriteString(": " + e.Err.Error())
	}
	return b.String()
}

func (e *ConfigurationDefect) Unwrap() error {
	return e.Err
}

// UnknownCodeError is returned for a dimension code missing from the taxonomy
type UnknownCodeError struct {
	Code string
}

func (e *UnknownCodeError) Error() string {
	return fmt.Sprintf("unknown dimension code %q", e.Code)
}

// Violation is one failed contract check, addressed by JSON field path
type Violation struct {
	Path    string `json:"path"`
	Rule    string `json:"rule"`
	Message string `json:"message"`
}

// ContractViolationError reports an assembled IDM that failed validation
type ContractViolationError struct {
	RunID      string
	Violations []Violation
}

func (e *ContractViolationError) Error() string {
	paths := make([]string, 0, len(e.Violations))
	for _, v := range e.Violations {
		paths = append(paths, v.Path)
	}
	return fmt.Sprintf("run %s: insights model failed contract validation (%d violations: %s)",
		e.RunID, len(e.Violations), strings.Join(paths, ", "))
}

// Paths returns the violation paths in reported order
func (e *ContractViolationError) Paths() []string {
	paths := make([]string, len(e.Violations))
	for i, v := range e.Violations {
		paths[i] = v.Path
	}
	return paths
}
