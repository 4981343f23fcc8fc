package model

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// IdentityStore defines the identity persistence operations the pipeline relies on.
type IdentityStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (Identity, error)
	GetByEmail(ctx context.Context, email string) (Identity, error)
	FindByNormalizedName(ctx context.Context, normalizedName string) ([]Identity, error)
	Create(ctx context.Context, identity Identity) (Identity, error)
	UpdateState(ctx context.Context, id uuid.UUID, state IdentityState) error
}

// AccessTierBasic is the lowest access tier, assigned to identities created by migration.
const AccessTierBasic = "basic"

// Password set methods stamped on identities.
const (
	PasswordSetMethodMigration = "migration_temporary"
	PasswordSetMethodUserReset = "user_reset"
)

// Identity represents a stored customer identity.
type Identity struct {
	ID                 uuid.UUID
	Email              string
	FirstName          string
	LastName           string
	BillingReferenceID string
	PasswordHash       string
	MustResetPassword  bool
	PasswordSetMethod  string
	PasswordSetAt      *time.Time
	MigrationCohort    *string
	MigrationSource    *string
	AccessTier         string
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// FullName joins first and last name with a single space.
func (i Identity) FullName() string {
	switch {
	case i.FirstName == "":
		return i.LastName
	case i.LastName == "":
		return i.FirstName
	default:
		return i.FirstName + " " + i.LastName
	}
}

// State returns the mutable field set of the identity.
func (i Identity) State() IdentityState {
	return IdentityState{
		BillingReferenceID: i.BillingReferenceID,
		PasswordHash:       i.PasswordHash,
		MustResetPassword:  i.MustResetPassword,
		PasswordSetMethod:  i.PasswordSetMethod,
		PasswordSetAt:      i.PasswordSetAt,
		MigrationCohort:    i.MigrationCohort,
		MigrationSource:    i.MigrationSource,
	}
}

// IdentityState is the set of identity fields a migration may change.
// Snapshots capture exactly this set and rollback restores exactly this set.
type IdentityState struct {
	BillingReferenceID string     `json:"billing_reference_id"`
	PasswordHash       string     `json:"password_hash"`
	MustResetPassword  bool       `json:"must_reset_password"`
	PasswordSetMethod  string     `json:"password_set_method"`
	PasswordSetAt      *time.Time `json:"password_set_at,omitempty"`
	MigrationCohort    *string    `json:"migration_cohort,omitempty"`
	MigrationSource    *string    `json:"migration_source_file,omitempty"`
}
