// -----------------------------------------------------------------------
// Package validation checks framework files and assembled insights models
// -----------------------------------------------------------------------

package validation

import (
	"context"
	"errors"
	"fmt"

	"github.com/pelletier/go-toml/v2"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/bizhealth/internal/models"
	"github.com/ternarybob/bizhealth/internal/schemas"
	"github.com/ternarybob/bizhealth/internal/services/scoring"
	"github.com/ternarybob/bizhealth/internal/services/taxonomy"
)

// FrameworkValidationService validates framework override files before use
type FrameworkValidationService struct {
	logger arbor.ILogger
}

// ValidationResult contains the result of framework validation
type ValidationResult struct {
	Valid      bool              `json:"valid"`
	Error      string            `json:"error,omitempty"`
	Message    string            `json:"message"`
	Framework  *models.Framework `json:"framework,omitempty"`
	Dimensions int               `json:"dimensions,omitempty"`
	Questions  int               `json:"questions,omitempty"`
}

// NewFrameworkValidationService creates a new framework validation service
func NewFrameworkValidationService(logger arbor.ILogger) *FrameworkValidationService {
	return &FrameworkValidationService{
		logger: logger,
	}
}

// ValidateTOML checks syntax, hierarchy closure, the taxonomy table and every
// normalization rule of a framework file
func (s *FrameworkValidationService) ValidateTOML(ctx context.Context, tomlContent string) ValidationResult {
	if err := ctx.Err(); err != nil {
		return ValidationResult{Error: err.Error(), Message: "Validation cancelled"}
	}

	// Step 1: Parse TOML syntax
	var raw map[string]interface{}
	if err := toml.Unmarshal([]byte(tomlContent), &raw); err != nil {
		return ValidationResult{
			Valid:   false,
			Error:   err.Error(),
			Message: fmt.Sprintf("TOML syntax error: %v", err),
		}
	}

	// Step 2: Decode and check hierarchy closure
	fw, err := schemas.ParseFramework([]byte(tomlContent))
	if err != nil {
		return s.failed(err, "Framework validation failed", nil)
	}

	// Step 3: Build the taxonomy table so alias conflicts surface here
	table, err := taxonomy.NewTable(fw)
	if err != nil {
		return s.failed(err, "Taxonomy validation failed", fw)
	}

	// Step 4: Every rule must reference a catalog question and compile
	var problems []error
	for _, rule := range fw.Rules {
		if _, ok := table.Placement(rule.QuestionID); !ok {
			problems = append(problems, fmt.Errorf("rule for %s references a question outside the catalog", rule.QuestionID))
		}
	}
	if len(problems) > 0 {
		return s.failed(errors.Join(problems...), "Rule validation failed", fw)
	}
	if _, err := scoring.NewNormalizer(fw.Rules, scoring.NormalizerOptions{}); err != nil {
		return s.failed(err, "Rule validation failed", fw)
	}

	questions := 0
	for _, d := range fw.Dimensions {
		for _, sub := range d.SubIndicators {
			questions += len(sub.Questions)
		}
	}

	s.logger.Debug().
		Str("version", fw.Version).
		Int("dimensions", len(fw.Dimensions)).
		Int("questions", questions).
		Msg("Framework file validated")

	// Step 5: Success
	return ValidationResult{
		Valid:      true,
		Message:    "Framework is valid",
		Framework:  fw,
		Dimensions: len(fw.Dimensions),
		Questions:  questions,
	}
}

func (s *FrameworkValidationService) failed(err error, message string, fw *models.Framework) ValidationResult {
	s.logger.Warn().Err(err).Msg(message)
	return ValidationResult{
		Valid:     false,
		Error:     err.Error(),
		Message:   fmt.Sprintf("%s: %v", message, err),
		Framework: fw,
	}
}
