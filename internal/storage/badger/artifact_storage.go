package badger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/bizhealth/internal/interfaces"
	"github.com/ternarybob/bizhealth/internal/models"
	"github.com/timshannon/badgerhold/v4"
)

// ArtifactStorage implements the ArtifactStorage interface for Badger
type ArtifactStorage struct {
	db     *BadgerDB
	logger arbor.ILogger
}

// NewArtifactStorage creates a new ArtifactStorage instance
func NewArtifactStorage(db *BadgerDB, logger arbor.ILogger) interfaces.ArtifactStorage {
	return &ArtifactStorage{
		db:     db,
		logger: logger,
	}
}

// SaveArtifact inserts or replaces a run output
func (s *ArtifactStorage) SaveArtifact(ctx context.Context, record *models.ArtifactRecord) error {
	if record.ID == "" || record.RunID == "" {
		return errors.New("artifact record requires an id and a run id")
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now()
	}

	if err := s.db.Store().Upsert(record.ID, record); err != nil {
		return fmt.Errorf("failed to save artifact %s: %w", record.ID, err)
	}

	s.logger.Debug().
		Str("artifact_id", record.ID).
		Str("run_id", record.RunID).
		Str("kind", string(record.Kind)).
		Int("bytes", len(record.Payload)).
		Msg("Saved run artifact")
	return nil
}

// GetArtifact retrieves one artifact by id
func (s *ArtifactStorage) GetArtifact(ctx context.Context, id string) (*models.ArtifactRecord, error) {
	var record models.ArtifactRecord
	err := s.db.Store().Get(id, &record)
	if err == badgerhold.ErrNotFound {
		return nil, interfaces.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get artifact %s: %w", id, err)
	}
	return &record, nil
}

// ListArtifacts returns the artifacts of a run oldest first
func (s *ArtifactStorage) ListArtifacts(ctx context.Context, runID string) ([]models.ArtifactRecord, error) {
	var records []models.ArtifactRecord
	if err := s.db.Store().Find(&records, badgerhold.Where("RunID").Eq(runID).SortBy("CreatedAt")); err != nil {
		return nil, fmt.Errorf("failed to list artifacts: %w", err)
	}
	return records, nil
}
