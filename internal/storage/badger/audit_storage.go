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

// AuditStorage implements the AuditStorage interface for Badger
type AuditStorage struct {
	db     *BadgerDB
	logger arbor.ILogger
}

// NewAuditStorage creates a new AuditStorage instance
func NewAuditStorage(db *BadgerDB, logger arbor.ILogger) interfaces.AuditStorage {
	return &AuditStorage{
		db:     db,
		logger: logger,
	}
}

// SaveAudit inserts or replaces the audit of a run
func (s *AuditStorage) SaveAudit(ctx context.Context, record *models.AuditRecord) error {
	if record.RunID == "" {
		return errors.New("audit record requires a run id")
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now()
	}
	if record.Status == "" {
		record.Status = string(record.Audit.Status)
	}

	if err := s.db.Store().Upsert(record.RunID, record); err != nil {
		return fmt.Errorf("failed to save audit %s: %w", record.RunID, err)
	}

	s.logger.Debug().
		Str("run_id", record.RunID).
		Str("status", record.Status).
		Msg("Saved quality audit")
	return nil
}

// GetAudit retrieves the audit of a run
func (s *AuditStorage) GetAudit(ctx context.Context, runID string) (*models.AuditRecord, error) {
	var record models.AuditRecord
	err := s.db.Store().Get(runID, &record)
	if err == badgerhold.ErrNotFound {
		return nil, interfaces.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get audit %s: %w", runID, err)
	}
	return &record, nil
}

// LatestAudit returns the newest audit for a company with the given status
func (s *AuditStorage) LatestAudit(ctx context.Context, companyName string, status models.AuditStatus) (*models.AuditRecord, error) {
	var records []models.AuditRecord
	query := badgerhold.Where("CompanyName").Eq(companyName).
		And("Status").Eq(string(status)).
		SortBy("CreatedAt").Reverse().
		Limit(1)
	if err := s.db.Store().Find(&records, query); err != nil {
		return nil, fmt.Errorf("failed to find latest %s audit: %w", status, err)
	}
	if len(records) == 0 {
		return nil, interfaces.ErrNotFound
	}
	return &records[0], nil
}

// ListAudits returns a company's audits newest first; limit <= 0 returns all
func (s *AuditStorage) ListAudits(ctx context.Context, companyName string, limit int) ([]models.AuditRecord, error) {
	var records []models.AuditRecord
	query := badgerhold.Where("CompanyName").Eq(companyName).SortBy("CreatedAt").Reverse()
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := s.db.Store().Find(&records, query); err != nil {
		return nil, fmt.Errorf("failed to list audits: %w", err)
	}
	return records, nil
}
