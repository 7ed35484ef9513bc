package models

import (
	"time"

	"github.com/google/uuid"
)

// Run kinds.
const (
	RunKindPrimary    = "primary"
	RunKindEnrichment = "enrichment"
)

// Run statuses. A run starts in RunStatusRunning and is moved to
// exactly one terminal status when it finishes.
const (
	RunStatusRunning             = "running"
	RunStatusCompleted           = "completed"
	RunStatusFailed              = "failed"
	RunStatusCompletedWithErrors = "completed_with_errors"
)

// SyncRun is one ledger entry: a single execution of a primary or
// enrichment sync. Subject is the username for primary runs and a
// fixed marker for enrichment runs.
type SyncRun struct {
	ID             uuid.UUID  `json:"id"`
	Kind           string     `json:"kind"`
	Subject        string     `json:"subject"`
	Status         string     `json:"status"`
	StartedAt      time.Time  `json:"started_at"`
	CompletedAt    *time.Time `json:"completed_at,omitempty"`
	ItemsProcessed int        `json:"items_processed"`
	ErrorMessage   *string    `json:"error_message,omitempty"`
}
