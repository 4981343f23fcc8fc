package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/dtroode/cohort-migrator/internal/model"
)

var _ model.IdentityStore = (*IdentityRepository)(nil)

const identityColumns = `id, email, first_name, last_name, billing_reference_id, password_hash,
	must_reset_password, password_set_method, password_set_at, migration_cohort, migration_source,
	access_tier, created_at, updated_at`

// normalizedNameExpr matches cohort.NormalizeName for already NFC-normalized data.
const normalizedNameExpr = `lower(regexp_replace(trim(first_name || ' ' || last_name), '\s+', ' ', 'g'))`

type IdentityRepository struct {
	db *Connection
}

func NewIdentityRepository(db *Connection) *IdentityRepository {
	return &IdentityRepository{
		db: db,
	}
}

func (r *IdentityRepository) GetByID(ctx context.Context, id uuid.UUID) (model.Identity, error) {
	query := `SELECT ` + identityColumns + ` FROM identities WHERE id = $1`

	identity, err := scanIdentity(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Identity{}, model.ErrNotFound
		}
		return model.Identity{}, fmt.Errorf("failed to get identity by id: %w", err)
	}

	return identity, nil
}

func (r *IdentityRepository) GetByEmail(ctx context.Context, email string) (model.Identity, error) {
	query := `SELECT ` + identityColumns + ` FROM identities WHERE lower(email) = lower($1)`

	identity, err := scanIdentity(r.db.QueryRow(ctx, query, email))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Identity{}, model.ErrNotFound
		}
		return model.Identity{}, fmt.Errorf("failed to get identity by email: %w", err)
	}

	return identity, nil
}

func (r *IdentityRepository) FindByNormalizedName(ctx context.Context, normalizedName string) ([]model.Identity, error) {
	query := `SELECT ` + identityColumns + ` FROM identities WHERE ` + normalizedNameExpr + ` = $1 ORDER BY created_at`

	rows, err := r.db.Query(ctx, query, normalizedName)
	if err != nil {
		return nil, fmt.Errorf("failed to find identities by name: %w", err)
	}
	defer rows.Close()

	var identities []model.Identity
	for rows.Next() {
		identity, err := scanIdentity(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan identity: %w", err)
		}
		identities = append(identities, identity)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate identities: %w", err)
	}

	return identities, nil
}

func (r *IdentityRepository) Create(ctx context.Context, identity model.Identity) (model.Identity, error) {
	query := `INSERT INTO identities (id, email, first_name, last_name, billing_reference_id, password_hash,
			  must_reset_password, password_set_method, password_set_at, migration_cohort, migration_source,
			  access_tier, created_at, updated_at)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
			  RETURNING ` + identityColumns

	saved, err := scanIdentity(r.db.QueryRow(ctx, query,
		identity.ID, identity.Email, identity.FirstName, identity.LastName, identity.BillingReferenceID,
		identity.PasswordHash, identity.MustResetPassword, identity.PasswordSetMethod, identity.PasswordSetAt,
		identity.MigrationCohort, identity.MigrationSource, identity.AccessTier,
		identity.CreatedAt, identity.UpdatedAt,
	))
	if err != nil {
		return model.Identity{}, fmt.Errorf("failed to create identity: %w", err)
	}

	return saved, nil
}

func (r *IdentityRepository) UpdateState(ctx context.Context, id uuid.UUID, state model.IdentityState) error {
	query := `UPDATE identities SET billing_reference_id = $2, password_hash = $3, must_reset_password = $4,
			  password_set_method = $5, password_set_at = $6, migration_cohort = $7, migration_source = $8,
			  updated_at = $9
			  WHERE id = $1`

	tag, err := r.db.Exec(ctx, query, id,
		state.BillingReferenceID, state.PasswordHash, state.MustResetPassword,
		state.PasswordSetMethod, state.PasswordSetAt, state.MigrationCohort, state.MigrationSource,
		time.Now(),
	)
	if err != nil {
		return fmt.Errorf("failed to update identity: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrNotFound
	}

	return nil
}

func scanIdentity(row pgx.Row) (model.Identity, error) {
	var identity model.Identity
	err := row.Scan(
		&identity.ID, &identity.Email, &identity.FirstName, &identity.LastName, &identity.BillingReferenceID,
		&identity.PasswordHash, &identity.MustResetPassword, &identity.PasswordSetMethod, &identity.PasswordSetAt,
		&identity.MigrationCohort, &identity.MigrationSource, &identity.AccessTier,
		&identity.CreatedAt, &identity.UpdatedAt,
	)
	return identity, err
}
