package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/dtroode/cohort-migrator/internal/model"
)

var _ model.SnapshotStore = (*SnapshotRepository)(nil)

type SnapshotRepository struct {
	db *Connection
}

func NewSnapshotRepository(db *Connection) *SnapshotRepository {
	return &SnapshotRepository{
		db: db,
	}
}

func (r *SnapshotRepository) Create(ctx context.Context, snapshot model.Snapshot) error {
	state, err := json.Marshal(snapshot.State)
	if err != nil {
		return fmt.Errorf("failed to encode snapshot state: %w", err)
	}

	query := `INSERT INTO identity_snapshots (id, identity_id, cohort, state, created_at)
			  VALUES ($1, $2, $3, $4, $5)`

	if _, err := r.db.Exec(ctx, query,
		snapshot.ID, snapshot.IdentityID, snapshot.Cohort, state, snapshot.CreatedAt,
	); err != nil {
		return fmt.Errorf("failed to create snapshot: %w", err)
	}

	return nil
}

func (r *SnapshotRepository) Latest(ctx context.Context, identityID uuid.UUID, cohort string) (model.Snapshot, error) {
	query := `SELECT id, identity_id, cohort, state, created_at
			  FROM identity_snapshots
			  WHERE identity_id = $1 AND cohort = $2
			  ORDER BY created_at DESC
			  LIMIT 1`

	var (
		snapshot model.Snapshot
		state    []byte
	)
	err := r.db.QueryRow(ctx, query, identityID, cohort).Scan(
		&snapshot.ID, &snapshot.IdentityID, &snapshot.Cohort, &state, &snapshot.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Snapshot{}, model.ErrSnapshotNotFound
		}
		return model.Snapshot{}, fmt.Errorf("failed to get latest snapshot: %w", err)
	}

	if err := json.Unmarshal(state, &snapshot.State); err != nil {
		return model.Snapshot{}, fmt.Errorf("failed to decode snapshot state: %w", err)
	}

	return snapshot, nil
}
