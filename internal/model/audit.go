package model

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// AuditStore is the append-only ledger of runs.
type AuditStore interface {
	Append(ctx context.Context, entry AuditEntry) error
	ListByCohort(ctx context.Context, cohort string, limit int) ([]AuditEntry, error)
}

// AuditEntry records a single run.
// Payload is the JSON report of the run and is left out of listings.
type AuditEntry struct {
	ID         uuid.UUID `json:"id"`
	Cohort     string    `json:"cohort"`
	Action     RunMode   `json:"action"`
	Processed  int       `json:"processed"`
	Successful int       `json:"successful"`
	Errored    int       `json:"errored"`
	Executor   string    `json:"executor"`
	CreatedAt  time.Time `json:"createdAt"`
	Payload    []byte    `json:"-"`
}
