package interfaces

import (
	"context"

	"github.com/ternarybob/bizhealth/internal/models"
)

// AnalysisProvider produces structured findings, recommendations and risks for
// scored dimensions. Narrative generation lives behind this boundary.
type AnalysisProvider interface {
	Analyze(ctx context.Context, profile models.CompanyProfile, dimensions []models.DimensionScore) ([]models.AnalysisPayload, error)
}
