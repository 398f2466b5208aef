// Package taxonomy resolves raw and legacy dimension codes to canonical dimensions.
//
// A Table is constructed once from a Framework and never mutated afterwards; every
// alias points at the same *models.DimensionSpec as its canonical code, so two codes
// can never accumulate into two distinct dimension buckets.
package taxonomy

import (
	"fmt"
	"sort"

	"github.com/ternarybob/bizhealth/internal/models"
)

// Placement locates a catalog question inside the hierarchy
type Placement struct {
	DimensionCode    string
	SubIndicatorCode string
	Weight           float64
}

// Table is the single authoritative code lookup
type Table struct {
	version    string
	dimensions []*models.DimensionSpec
	byCode     map[string]*models.DimensionSpec
	aliases    map[string]string
	questions  map[string]Placement
}

// NewTable builds an immutable lookup table from a validated framework.
// The framework is copied, so later changes to it do not leak into the table.
func NewTable(framework *models.Framework) (*Table, error) {
	if err := framework.Validate(); err != nil {
		return nil, err
	}

	specs := make([]models.DimensionSpec, len(framework.Dimensions))
	copy(specs, framework.Dimensions)

	t := &Table{
		version:    framework.Version,
		dimensions: make([]*models.DimensionSpec, len(specs)),
		byCode:     make(map[string]*models.DimensionSpec, len(specs)+len(framework.Aliases)),
		aliases:    make(map[string]string, len(framework.Aliases)),
		questions:  make(map[string]Placement),
	}

	for i := range specs {
		spec := &specs[i]
		spec.Code = models.CanonicalCode(spec.Code)
		spec.Chapter = models.CanonicalCode(spec.Chapter)
		spec.SubIndicators = append([]models.SubIndicatorSpec(nil), spec.SubIndicators...)
		t.dimensions[i] = spec
		t.byCode[spec.Code] = spec

		for j := range spec.SubIndicators {
			sub := &spec.SubIndicators[j]
			for _, q := range sub.Questions {
				t.questions[q] = Placement{
					DimensionCode:    spec.Code,
					SubIndicatorCode: sub.Code,
					Weight:           sub.QuestionWeight(q),
				}
			}
		}
	}

	for alias, target := range framework.Aliases {
		key := models.CanonicalCode(alias)
		spec, ok := t.byCode[models.CanonicalCode(target)]
		if !ok {
			return nil, fmt.Errorf("alias %s: %w", alias, &models.UnknownCodeError{Code: target})
		}
		if existing, taken := t.byCode[key]; taken && existing != spec {
			return nil, fmt.Errorf("alias %s already resolves to %s", alias, existing.Code)
		}
		t.byCode[key] = spec
		if key != spec.Code {
			t.aliases[key] = spec.Code
		}
	}

	return t, nil
}

// Version returns the framework version the table was built from
func (t *Table) Version() string {
	return t.version
}

// Dimensions returns the canonical dimensions in framework order
func (t *Table) Dimensions() []*models.DimensionSpec {
	out := make([]*models.DimensionSpec, len(t.dimensions))
	copy(out, t.dimensions)
	return out
}

// Lookup returns the dimension for a canonical code or alias
func (t *Table) Lookup(code string) (*models.DimensionSpec, bool) {
	spec, ok := t.byCode[models.CanonicalCode(code)]
	return spec, ok
}

// IsAlias reports whether code is a legacy alias rather than a canonical code
func (t *Table) IsAlias(code string) bool {
	_, ok := t.aliases[models.CanonicalCode(code)]
	return ok
}

// Aliases returns the alias → canonical pairs sorted by alias
func (t *Table) Aliases() [][2]string {
	keys := make([]string, 0, len(t.aliases))
	for k := range t.aliases {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pairs := make([][2]string, len(keys))
	for i, k := range keys {
		pairs[i] = [2]string{k, t.aliases[k]}
	}
	return pairs
}

// Placement returns where a catalog question sits in the hierarchy
func (t *Table) Placement(questionID string) (Placement, bool) {
	p, ok := t.questions[questionID]
	return p, ok
}
