package models

import "time"

// AuditRecord is a persisted quality audit, stored independently of any model
type AuditRecord struct {
	RunID       string       `json:"run_id" badgerhold:"key"`
	CompanyName string       `json:"company_name" badgerhold:"index"`
	Status      string       `json:"status" badgerhold:"index"`
	CreatedAt   time.Time    `json:"created_at"`
	Audit       QualityAudit `json:"audit"`
}

// ArtifactKind distinguishes deliverable models from diagnostic drafts
type ArtifactKind string

const (
	ArtifactIDM   ArtifactKind = "idm"
	ArtifactDraft ArtifactKind = "draft"
)

// ArtifactRecord is a persisted run output as JSON
type ArtifactRecord struct {
	ID          string       `json:"id" badgerhold:"key"`
	RunID       string       `json:"run_id" badgerhold:"index"`
	Kind        ArtifactKind `json:"kind"`
	CompanyName string       `json:"company_name"`
	CreatedAt   time.Time    `json:"created_at"`
	Payload     []byte       `json:"payload"`
}
