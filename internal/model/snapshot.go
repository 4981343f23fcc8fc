package model

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// SnapshotStore persists pre-mutation identity state. Snapshots are append-only.
type SnapshotStore interface {
	Create(ctx context.Context, snapshot Snapshot) error
	Latest(ctx context.Context, identityID uuid.UUID, cohort string) (Snapshot, error)
}

// Snapshot is the state of an identity captured right before a migration update.
type Snapshot struct {
	ID         uuid.UUID
	IdentityID uuid.UUID
	Cohort     string
	State      IdentityState
	CreatedAt  time.Time
}
