package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/dtroode/cohort-migrator/internal/model"
)

var _ model.LockStore = (*LockRepository)(nil)

type LockRepository struct {
	db *Connection
}

func NewLockRepository(db *Connection) *LockRepository {
	return &LockRepository{
		db: db,
	}
}

// TryAcquire inserts the lock, taking over an existing row only once it has expired.
func (r *LockRepository) TryAcquire(ctx context.Context, lock model.GuardLock) (bool, error) {
	query := `INSERT INTO guard_locks (script_name, lock_id, pid, host, acquired_at, expires_at)
			  VALUES ($1, $2, $3, $4, $5, $6)
			  ON CONFLICT (script_name) DO UPDATE
			  SET lock_id = EXCLUDED.lock_id, pid = EXCLUDED.pid, host = EXCLUDED.host,
			      acquired_at = EXCLUDED.acquired_at, expires_at = EXCLUDED.expires_at
			  WHERE guard_locks.expires_at < EXCLUDED.acquired_at`

	tag, err := r.db.Exec(ctx, query,
		lock.ScriptName, lock.LockID, lock.PID, lock.Host, lock.AcquiredAt, lock.ExpiresAt,
	)
	if err != nil {
		return false, fmt.Errorf("failed to acquire guard lock: %w", err)
	}

	return tag.RowsAffected() == 1, nil
}

func (r *LockRepository) Release(ctx context.Context, scriptName string, lockID uuid.UUID) error {
	query := `DELETE FROM guard_locks WHERE script_name = $1 AND lock_id = $2`

	tag, err := r.db.Exec(ctx, query, scriptName, lockID)
	if err != nil {
		return fmt.Errorf("failed to release guard lock: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrNotFound
	}

	return nil
}

func (r *LockRepository) Get(ctx context.Context, scriptName string) (model.GuardLock, error) {
	query := `SELECT script_name, lock_id, pid, host, acquired_at, expires_at
			  FROM guard_locks WHERE script_name = $1`

	var lock model.GuardLock
	err := r.db.QueryRow(ctx, query, scriptName).Scan(
		&lock.ScriptName, &lock.LockID, &lock.PID, &lock.Host, &lock.AcquiredAt, &lock.ExpiresAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.GuardLock{}, model.ErrNotFound
		}
		return model.GuardLock{}, fmt.Errorf("failed to get guard lock: %w", err)
	}

	return lock, nil
}
