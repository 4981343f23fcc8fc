package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/dtroode/cohort-migrator/internal/cohort"
	"github.com/dtroode/cohort-migrator/internal/credential"
	"github.com/dtroode/cohort-migrator/internal/logger"
	"github.com/dtroode/cohort-migrator/internal/model"
)

// Credential verifies passwords of migrated identities and completes the
// forced reset of the shared temporary credential.
type Credential struct {
	identities model.IdentityStore
	hasher     *credential.Hasher
	logger     *logger.Logger
	now        func() time.Time
}

func NewCredential(identities model.IdentityStore, hasher *credential.Hasher, logger *logger.Logger) *Credential {
	return &Credential{
		identities: identities,
		hasher:     hasher,
		logger:     logger,
		now:        time.Now,
	}
}

// Authenticate checks password for email. When the identity still carries a
// temporary credential, it is returned together with model.ErrPasswordResetRequired.
func (s *Credential) Authenticate(ctx context.Context, email, password string) (model.Identity, error) {
	identity, err := s.identities.GetByEmail(ctx, cohort.NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return model.Identity{}, model.ErrInvalidCredentials
		}
		return model.Identity{}, fmt.Errorf("failed to get identity by email: %w", err)
	}

	if identity.PasswordHash == "" {
		return model.Identity{}, model.ErrInvalidCredentials
	}
	if err := s.hasher.Compare(identity.PasswordHash, password); err != nil {
		if errors.Is(err, credential.ErrMismatch) {
			return model.Identity{}, model.ErrInvalidCredentials
		}
		return model.Identity{}, fmt.Errorf("failed to verify password: %w", err)
	}

	if identity.MustResetPassword {
		s.logger.Info("Credential service: password reset required",
			"identity_id", identity.ID.String())
		return identity, model.ErrPasswordResetRequired
	}

	return identity, nil
}

// CompleteReset replaces the temporary credential with newPassword.
func (s *Credential) CompleteReset(ctx context.Context, identityID uuid.UUID, newPassword string) error {
	identity, err := s.identities.GetByID(ctx, identityID)
	if err != nil {
		return fmt.Errorf("failed to get identity: %w", err)
	}

	hash, err := s.hasher.HashNew(newPassword)
	if err != nil {
		return err
	}

	now := s.now()
	state := identity.State()
	state.PasswordHash = hash
	state.MustResetPassword = false
	state.PasswordSetMethod = model.PasswordSetMethodUserReset
	state.PasswordSetAt = &now

	if err := s.identities.UpdateState(ctx, identityID, state); err != nil {
		return fmt.Errorf("failed to store new password: %w", err)
	}

	s.logger.Info("Credential service: password reset completed",
		"identity_id", identityID.String())

	return nil
}
