package taxonomy

import (
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/bizhealth/internal/models"
)

// Resolver maps raw dimension codes onto canonical dimensions
type Resolver struct {
	table  *Table
	logger arbor.ILogger
}

// NewResolver creates a resolver over an injected table
func NewResolver(table *Table, logger arbor.ILogger) *Resolver {
	return &Resolver{
		table:  table,
		logger: logger,
	}
}

// Table returns the lookup table backing the resolver
func (r *Resolver) Table() *Table {
	return r.table
}

// Resolve returns the canonical dimension for rawCode. An unmapped code returns
// *models.UnknownCodeError; callers must stop the run rather than drop the data.
func (r *Resolver) Resolve(rawCode string) (*models.DimensionSpec, error) {
	spec, ok := r.table.Lookup(rawCode)
	if !ok {
		r.logger.Error().Str("code", rawCode).Msg("Unknown dimension code")
		return nil, &models.UnknownCodeError{Code: rawCode}
	}

	if r.table.IsAlias(rawCode) {
		r.logger.Trace().
			Str("alias", rawCode).
			Str("canonical", spec.Code).
			Msg("Resolved legacy dimension alias")
	}
	return spec, nil
}

// ResolveCode is Resolve returning only the canonical code
func (r *Resolver) ResolveCode(rawCode string) (string, error) {
	spec, err := r.Resolve(rawCode)
	if err != nil {
		return "", err
	}
	return spec.Code, nil
}
