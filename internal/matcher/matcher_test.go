package matcher

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/dtroode/cohort-migrator/internal/cohort"
	"github.com/dtroode/cohort-migrator/internal/mocks"
	"github.com/dtroode/cohort-migrator/internal/model"
	"github.com/dtroode/cohort-migrator/internal/testutil"
)

func record(name, email string) model.CohortRecord {
	return model.CohortRecord{
		DisplayName:     name,
		Email:           email,
		NormalizedEmail: cohort.NormalizeEmail(email),
		NormalizedName:  cohort.NormalizeName(name),
	}
}

func TestMatcher_Match(t *testing.T) {
	existing := model.Identity{ID: uuid.New(), Email: "jane@x.com", FirstName: "Jane", LastName: "Doe"}
	namesake := model.Identity{ID: uuid.New(), Email: "jd@other.com", FirstName: "Jane", LastName: "Doe"}
	twin := model.Identity{ID: uuid.New(), Email: "jd2@other.com", FirstName: "Jane", LastName: "Doe"}

	tests := []struct {
		name           string
		record         model.CohortRecord
		setup          func(s *mocks.IdentityStore)
		wantType       model.MatchType
		wantAction     model.Action
		wantIdentity   *uuid.UUID
		wantErrorCount int
	}{
		{
			name:   "exact email wins over name",
			record: record("Jane Doe", "jane@x.com"),
			setup: func(s *mocks.IdentityStore) {
				s.On("GetByEmail", mock.Anything, "jane@x.com").Return(existing, nil)
			},
			wantType:     model.MatchEmailExact,
			wantAction:   model.ActionUpdateExisting,
			wantIdentity: &existing.ID,
		},
		{
			name:   "unique name",
			record: record("Jane  Doe", "new@x.com"),
			setup: func(s *mocks.IdentityStore) {
				s.On("GetByEmail", mock.Anything, "new@x.com").Return(model.Identity{}, model.ErrNotFound)
				s.On("FindByNormalizedName", mock.Anything, "jane doe").Return([]model.Identity{namesake}, nil)
			},
			wantType:     model.MatchNameUnique,
			wantAction:   model.ActionUpdateExisting,
			wantIdentity: &namesake.ID,
		},
		{
			name:   "ambiguous name never merges",
			record: record("Jane Doe", "new@x.com"),
			setup: func(s *mocks.IdentityStore) {
				s.On("GetByEmail", mock.Anything, "new@x.com").Return(model.Identity{}, model.ErrNotFound)
				s.On("FindByNormalizedName", mock.Anything, "jane doe").Return([]model.Identity{namesake, twin}, nil)
			},
			wantType:       model.MatchNameAmbiguous,
			wantAction:     model.ActionCreateNew,
			wantErrorCount: 1,
		},
		{
			name:   "no match",
			record: record("Nobody Known", "nobody@x.com"),
			setup: func(s *mocks.IdentityStore) {
				s.On("GetByEmail", mock.Anything, "nobody@x.com").Return(model.Identity{}, model.ErrNotFound)
				s.On("FindByNormalizedName", mock.Anything, "nobody known").Return(nil, nil)
			},
			wantType:   model.MatchNone,
			wantAction: model.ActionCreateNew,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := mocks.NewIdentityStore(t)
			tt.setup(store)

			m := New(store, testutil.MakeNoopLogger())
			res, err := m.Match(context.Background(), tt.record)
			require.NoError(t, err)

			assert.Equal(t, tt.wantType, res.MatchType)
			assert.Equal(t, tt.wantAction, res.Action)
			assert.Len(t, res.Errors, tt.wantErrorCount)
			if tt.wantIdentity != nil {
				require.NotNil(t, res.Identity)
				assert.Equal(t, *tt.wantIdentity, res.Identity.ID)
				assert.Equal(t, *tt.wantIdentity, res.IdentityID)
			} else {
				assert.Nil(t, res.Identity)
				assert.Equal(t, uuid.Nil, res.IdentityID)
			}
		})
	}
}

func TestMatcher_Match_EmailLookupError(t *testing.T) {
	store := mocks.NewIdentityStore(t)
	store.On("GetByEmail", mock.Anything, "jane@x.com").Return(model.Identity{}, assert.AnError)

	m := New(store, testutil.MakeNoopLogger())
	_, err := m.Match(context.Background(), record("Jane Doe", "jane@x.com"))
	require.ErrorIs(t, err, assert.AnError)
	store.AssertNotCalled(t, "FindByNormalizedName", mock.Anything, mock.Anything)
}

func TestMatcher_MatchAll_RecordsLookupFailures(t *testing.T) {
	store := mocks.NewIdentityStore(t)
	store.On("GetByEmail", mock.Anything, "broken@x.com").Return(model.Identity{}, assert.AnError)
	store.On("GetByEmail", mock.Anything, "fresh@x.com").Return(model.Identity{}, model.ErrNotFound)
	store.On("FindByNormalizedName", mock.Anything, "fresh person").Return(nil, nil)

	c := cohort.New("c", "s", []model.CohortRecord{
		record("Broken Lookup", "broken@x.com"),
		record("Fresh Person", "fresh@x.com"),
	})

	m := New(store, testutil.MakeNoopLogger())
	results := m.MatchAll(context.Background(), c)

	require.Len(t, results, 2)
	assert.True(t, results[0].Failed)
	assert.NotEmpty(t, results[0].Errors)
	assert.False(t, results[1].Failed)
	assert.Equal(t, model.MatchNone, results[1].MatchType)
}

func TestMatcher_MatchAll_Idempotent(t *testing.T) {
	existing := model.Identity{ID: uuid.New(), Email: "jane@x.com"}
	store := mocks.NewIdentityStore(t)
	store.On("GetByEmail", mock.Anything, "jane@x.com").Return(existing, nil)
	store.On("GetByEmail", mock.Anything, "john@x.com").Return(model.Identity{}, model.ErrNotFound)
	store.On("FindByNormalizedName", mock.Anything, "john roe").Return(nil, nil)

	c := cohort.New("c", "s", []model.CohortRecord{
		record("Jane Doe", "jane@x.com"),
		record("John Roe", "john@x.com"),
	})

	m := New(store, testutil.MakeNoopLogger())
	first := m.MatchAll(context.Background(), c)
	second := m.MatchAll(context.Background(), c)

	assert.Equal(t, first, second)
}
