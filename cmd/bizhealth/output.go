package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/bizhealth/internal/common"
	"github.com/ternarybob/bizhealth/internal/interfaces"
	"github.com/ternarybob/bizhealth/internal/models"
	"github.com/ternarybob/bizhealth/internal/services/assessment"
	"github.com/ternarybob/bizhealth/internal/services/quality"
	"gopkg.in/yaml.v3"
)

// readInput parses a YAML or JSON assessment input, chosen by extension
func readInput(path string) (*assessment.Input, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var in assessment.Input
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		err = json.Unmarshal(data, &in)
	default:
		err = yaml.Unmarshal(data, &in)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return &in, nil
}

// persist stores the audit and the produced artifact, and compares the audit
// with the company's latest passing run
func persist(ctx context.Context, logger arbor.ILogger, store interfaces.StorageManager, company string, result *assessment.Result) error {
	audits := store.AuditStorage()

	baseline, err := audits.LatestAudit(ctx, company, models.AuditPass)
	switch {
	case err == nil:
		for _, reg := range quality.CompareAudits(&baseline.Audit, &result.Audit) {
			logger.Warn().
				Str("baseline", baseline.RunID).
				Str("kind", string(reg.Kind)).
				Str("dimension", reg.DimensionCode).
				Msg(reg.Detail)
		}
	case errors.Is(err, interfaces.ErrNotFound):
		logger.Debug().Str("company", company).Msg("No passing baseline audit")
	default:
		return fmt.Errorf("failed to load baseline audit: %w", err)
	}

	now := time.Now().UTC()
	if err := audits.SaveAudit(ctx, &models.AuditRecord{
		RunID:       result.RunID,
		CompanyName: company,
		CreatedAt:   now,
		Audit:       result.Audit,
	}); err != nil {
		return err
	}

	model, kind := artifact(result)
	if model == nil {
		return nil
	}
	payload, err := json.Marshal(model)
	if err != nil {
		return fmt.Errorf("failed to encode artifact: %w", err)
	}
	return store.ArtifactStorage().SaveArtifact(ctx, &models.ArtifactRecord{
		ID:          common.NewArtifactID(),
		RunID:       result.RunID,
		Kind:        kind,
		CompanyName: company,
		CreatedAt:   now,
		Payload:     payload,
	})
}

func artifact(result *assessment.Result) (*models.InsightsModel, models.ArtifactKind) {
	if result.IDM != nil {
		return result.IDM, models.ArtifactIDM
	}
	return result.Draft, models.ArtifactDraft
}

// writeOutput writes the deliverable, or the diagnostic draft with its audit
func writeOutput(path string, result *assessment.Result) error {
	var body interface{}
	if result.IDM != nil {
		body = result.IDM
	} else {
		body = struct {
			RunID      string                `json:"run_id"`
			Status     models.AuditStatus    `json:"status"`
			Violations []models.Violation    `json:"violations,omitempty"`
			Audit      models.QualityAudit   `json:"audit"`
			Draft      *models.InsightsModel `json:"draft,omitempty"`
		}{result.RunID, result.Status, result.Violations, result.Audit, result.Draft}
	}

	data, err := json.MarshalIndent(body, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	if path == "" {
		_, err = os.Stdout.Write(data)
		return err
	}
	return os.WriteFile(path, data, 0644)
}
