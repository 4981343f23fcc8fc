package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dtroode/cohort-migrator/internal/model"
)

var _ model.ViolationStore = (*ViolationRepository)(nil)

type ViolationRepository struct {
	db *sql.DB
}

func NewViolationRepository(db *sql.DB) *ViolationRepository {
	return &ViolationRepository{
		db: db,
	}
}

func (r *ViolationRepository) Append(ctx context.Context, v model.SecurityViolation) error {
	query := `INSERT INTO security_violations (id, occurred_at, operation, kind, actor, prevented, detail)
			  VALUES ($1, $2, $3, $4, $5, $6, $7)`

	if _, err := r.db.ExecContext(ctx, query,
		v.ID, v.Timestamp, v.Operation, string(v.Kind), v.Actor, v.Prevented, v.Detail,
	); err != nil {
		return fmt.Errorf("failed to append security violation: %w", err)
	}

	return nil
}

func (r *ViolationRepository) Recent(ctx context.Context, limit int) ([]model.SecurityViolation, error) {
	query := `SELECT id, occurred_at, operation, kind, actor, prevented, detail
			  FROM security_violations
			  ORDER BY occurred_at DESC
			  LIMIT $1`

	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list security violations: %w", err)
	}
	defer rows.Close()

	var violations []model.SecurityViolation
	for rows.Next() {
		var (
			v    model.SecurityViolation
			kind string
		)
		if err := rows.Scan(&v.ID, &v.Timestamp, &v.Operation, &kind, &v.Actor, &v.Prevented, &v.Detail); err != nil {
			return nil, fmt.Errorf("failed to scan security violation: %w", err)
		}
		v.Kind = model.ViolationKind(kind)
		violations = append(violations, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate security violations: %w", err)
	}

	return violations, nil
}
