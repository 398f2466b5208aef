package common

import (
	"github.com/google/uuid"
)

// NewRunID generates a unique assessment run ID with the "run_" prefix
// Format: run_<uuid>
func NewRunID() string {
	return "run_" + uuid.New().String()
}

// NewArtifactID generates a unique stored artifact ID with the "art_" prefix
func NewArtifactID() string {
	return "art_" + uuid.New().String()
}
