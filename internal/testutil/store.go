package testutil

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/dtroode/cohort-migrator/internal/model"
)

var (
	_ model.IdentityStore = (*IdentityStore)(nil)
	_ model.SnapshotStore = (*SnapshotStore)(nil)
)

// IdentityStore is an in-memory identity store with the same lookup rules as
// the postgres repository.
type IdentityStore struct {
	mu         sync.Mutex
	identities map[uuid.UUID]model.Identity
	order      []uuid.UUID

	// Fail, when set, is returned by every call for the given email.
	Fail map[string]error

	Creates int
	Updates int
}

// NewIdentityStore creates a store seeded with identities.
func NewIdentityStore(identities ...model.Identity) *IdentityStore {
	s := &IdentityStore{identities: make(map[uuid.UUID]model.Identity)}
	for _, i := range identities {
		s.put(i)
	}
	return s
}

func (s *IdentityStore) put(i model.Identity) {
	if _, ok := s.identities[i.ID]; !ok {
		s.order = append(s.order, i.ID)
	}
	s.identities[i.ID] = i
}

func (s *IdentityStore) GetByID(_ context.Context, id uuid.UUID) (model.Identity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i, ok := s.identities[id]
	if !ok {
		return model.Identity{}, model.ErrNotFound
	}
	return i, nil
}

func (s *IdentityStore) GetByEmail(_ context.Context, email string) (model.Identity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.Fail[strings.ToLower(email)]; err != nil {
		return model.Identity{}, err
	}
	for _, id := range s.order {
		if strings.EqualFold(s.identities[id].Email, email) {
			return s.identities[id], nil
		}
	}
	return model.Identity{}, model.ErrNotFound
}

func (s *IdentityStore) FindByNormalizedName(_ context.Context, normalizedName string) ([]model.Identity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.Identity
	for _, id := range s.order {
		i := s.identities[id]
		name := strings.Join(strings.Fields(strings.ToLower(i.FirstName+" "+i.LastName)), " ")
		if name == normalizedName {
			out = append(out, i)
		}
	}
	return out, nil
}

func (s *IdentityStore) Create(_ context.Context, identity model.Identity) (model.Identity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.Fail[strings.ToLower(identity.Email)]; err != nil {
		return model.Identity{}, err
	}
	for _, i := range s.identities {
		if strings.EqualFold(i.Email, identity.Email) {
			return model.Identity{}, fmt.Errorf("duplicate email %s", identity.Email)
		}
	}
	s.put(identity)
	s.Creates++
	return identity, nil
}

func (s *IdentityStore) UpdateState(_ context.Context, id uuid.UUID, state model.IdentityState) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i, ok := s.identities[id]
	if !ok {
		return model.ErrNotFound
	}
	if err := s.Fail[strings.ToLower(i.Email)]; err != nil {
		return err
	}
	i.BillingReferenceID = state.BillingReferenceID
	i.PasswordHash = state.PasswordHash
	i.MustResetPassword = state.MustResetPassword
	i.PasswordSetMethod = state.PasswordSetMethod
	i.PasswordSetAt = state.PasswordSetAt
	i.MigrationCohort = state.MigrationCohort
	i.MigrationSource = state.MigrationSource
	s.identities[id] = i
	s.Updates++
	return nil
}

// All returns every stored identity in insertion order.
func (s *IdentityStore) All() []model.Identity {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.Identity, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.identities[id])
	}
	return out
}

// SnapshotStore is an append-only in-memory snapshot store.
type SnapshotStore struct {
	mu        sync.Mutex
	Snapshots []model.Snapshot
}

func NewSnapshotStore() *SnapshotStore {
	return &SnapshotStore{}
}

func (s *SnapshotStore) Create(_ context.Context, snapshot model.Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Snapshots = append(s.Snapshots, snapshot)
	return nil
}

func (s *SnapshotStore) Latest(_ context.Context, identityID uuid.UUID, cohort string) (model.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := len(s.Snapshots) - 1; i >= 0; i-- {
		snap := s.Snapshots[i]
		if snap.IdentityID == identityID && snap.Cohort == cohort {
			return snap, nil
		}
	}
	return model.Snapshot{}, model.ErrSnapshotNotFound
}
