package interfaces

import (
	"context"
	"errors"

	"github.com/ternarybob/bizhealth/internal/models"
)

// ErrNotFound is returned when a stored record does not exist
var ErrNotFound = errors.New("record not found")

// AuditStorage persists quality audits, including those of failed runs
type AuditStorage interface {
	SaveAudit(ctx context.Context, record *models.AuditRecord) error
	GetAudit(ctx context.Context, runID string) (*models.AuditRecord, error)
	// LatestAudit returns the newest audit for a company with the given status
	LatestAudit(ctx context.Context, companyName string, status models.AuditStatus) (*models.AuditRecord, error)
	ListAudits(ctx context.Context, companyName string, limit int) ([]models.AuditRecord, error)
}

// ArtifactStorage persists insights models and diagnostic drafts
type ArtifactStorage interface {
	SaveArtifact(ctx context.Context, record *models.ArtifactRecord) error
	GetArtifact(ctx context.Context, id string) (*models.ArtifactRecord, error)
	ListArtifacts(ctx context.Context, runID string) ([]models.ArtifactRecord, error)
}

// StorageManager - composite interface for all storage operations
type StorageManager interface {
	AuditStorage() AuditStorage
	ArtifactStorage() ArtifactStorage
	Close() error
}
