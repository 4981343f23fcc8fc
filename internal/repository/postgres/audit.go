package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dtroode/cohort-migrator/internal/model"
)

var _ model.AuditStore = (*AuditRepository)(nil)

// AuditRepository is the append-only run ledger. It only ever inserts and reads.
type AuditRepository struct {
	db *sql.DB
}

func NewAuditRepository(db *sql.DB) *AuditRepository {
	return &AuditRepository{
		db: db,
	}
}

func (r *AuditRepository) Append(ctx context.Context, entry model.AuditEntry) error {
	payload := entry.Payload
	if len(payload) == 0 {
		payload = []byte("{}")
	}

	query := `INSERT INTO migration_audit (id, cohort, action, processed, successful, errored, executor, payload, created_at)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	if _, err := r.db.ExecContext(ctx, query,
		entry.ID, entry.Cohort, string(entry.Action), entry.Processed, entry.Successful, entry.Errored,
		entry.Executor, payload, entry.CreatedAt,
	); err != nil {
		return fmt.Errorf("failed to append audit entry: %w", err)
	}

	return nil
}

func (r *AuditRepository) ListByCohort(ctx context.Context, cohort string, limit int) ([]model.AuditEntry, error) {
	query := `SELECT id, cohort, action, processed, successful, errored, executor, payload, created_at
			  FROM migration_audit
			  WHERE cohort = $1
			  ORDER BY created_at DESC
			  LIMIT $2`

	rows, err := r.db.QueryContext(ctx, query, cohort, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list audit entries: %w", err)
	}
	defer rows.Close()

	var entries []model.AuditEntry
	for rows.Next() {
		var (
			entry  model.AuditEntry
			action string
		)
		if err := rows.Scan(
			&entry.ID, &entry.Cohort, &action, &entry.Processed, &entry.Successful, &entry.Errored,
			&entry.Executor, &entry.Payload, &entry.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan audit entry: %w", err)
		}
		entry.Action = model.RunMode(action)
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate audit entries: %w", err)
	}

	return entries, nil
}
