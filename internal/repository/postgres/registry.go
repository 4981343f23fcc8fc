package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dtroode/cohort-migrator/internal/model"
)

var _ model.RegistryStore = (*RegistryRepository)(nil)

type RegistryRepository struct {
	db *sql.DB
}

func NewRegistryRepository(db *sql.DB) *RegistryRepository {
	return &RegistryRepository{
		db: db,
	}
}

func (r *RegistryRepository) Baseline(ctx context.Context, scope string) ([]string, error) {
	query := `SELECT operation FROM operation_registry
			  WHERE scope = $1
			  ORDER BY operation`

	rows, err := r.db.QueryContext(ctx, query, scope)
	if err != nil {
		return nil, fmt.Errorf("failed to load registry baseline: %w", err)
	}
	defer rows.Close()

	var ops []string
	for rows.Next() {
		var op string
		if err := rows.Scan(&op); err != nil {
			return nil, fmt.Errorf("failed to scan registry operation: %w", err)
		}
		ops = append(ops, op)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate registry operations: %w", err)
	}

	return ops, nil
}

// SaveBaseline replaces the stored operations of scope in one transaction.
func (r *RegistryRepository) SaveBaseline(ctx context.Context, scope string, operations []string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM operation_registry WHERE scope = $1`, scope); err != nil {
		return fmt.Errorf("failed to clear registry baseline: %w", err)
	}

	for _, op := range operations {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO operation_registry (scope, operation) VALUES ($1, $2)`,
			scope, op,
		); err != nil {
			return fmt.Errorf("failed to save registry operation %s: %w", op, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit registry baseline: %w", err)
	}
	return nil
}
