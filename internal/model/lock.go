package model

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// LockStore acquires and releases guard locks atomically.
type LockStore interface {
	// TryAcquire inserts lock unless a live lock for the same script exists.
	TryAcquire(ctx context.Context, lock GuardLock) (bool, error)
	Release(ctx context.Context, scriptName string, lockID uuid.UUID) error
	Get(ctx context.Context, scriptName string) (GuardLock, error)
}

// GuardLock marks one in-flight destructive run.
type GuardLock struct {
	ScriptName string
	LockID     uuid.UUID
	PID        int
	Host       string
	AcquiredAt time.Time
	ExpiresAt  time.Time
}
