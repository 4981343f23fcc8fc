package model

import "errors"

var (
	ErrNotFound                = errors.New("not found")
	ErrFeatureDisabled         = errors.New("cohort migration is disabled by configuration")
	ErrEmergencyDisabled       = errors.New("destructive operations are disabled by the emergency switch")
	ErrUnauthorized            = errors.New("actor is not authorized for this operation")
	ErrConfirmationDeclined    = errors.New("confirmation declined")
	ErrLockHeld                = errors.New("another run holds the lock for this operation")
	ErrQuarantined             = errors.New("operation is quarantined")
	ErrUnguarded               = errors.New("destructive operation invoked outside the execution guard")
	ErrOutsideCohort           = errors.New("record is not a member of the loaded cohort")
	ErrSnapshotNotFound        = errors.New("no snapshot for identity in cohort")
	ErrIdentityAlreadyMigrated = errors.New("identity was already migrated by an earlier record of this run")
	ErrPasswordResetRequired   = errors.New("password reset required")
	ErrInvalidCredentials      = errors.New("invalid credentials")
)
