package monitor

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/dtroode/cohort-migrator/internal/mocks"
	"github.com/dtroode/cohort-migrator/internal/model"
	"github.com/dtroode/cohort-migrator/internal/testutil"
)

func TestMonitor_ShouldBlockExecution(t *testing.T) {
	m := New(nil, []string{"legacy-bulk-password-reset", " ", "legacy-user-merge "}, testutil.MakeNoopLogger())

	assert.True(t, m.ShouldBlockExecution("legacy-bulk-password-reset"))
	assert.True(t, m.ShouldBlockExecution("legacy-user-merge"))
	assert.False(t, m.ShouldBlockExecution("cohort-execute"))
	assert.False(t, m.ShouldBlockExecution(""))
}

func TestMonitor_RecordViolation_FillsDefaults(t *testing.T) {
	store := mocks.NewViolationStore(t)
	fixed := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	store.On("Append", mock.Anything, mock.MatchedBy(func(v model.SecurityViolation) bool {
		return v.ID != uuid.Nil && v.Timestamp.Equal(fixed) && v.Kind == model.ViolationUnguarded && v.Prevented
	})).Return(nil)

	m := New(store, nil, testutil.MakeNoopLogger())
	m.now = func() time.Time { return fixed }

	err := m.RecordViolation(context.Background(), model.SecurityViolation{
		Operation: "cohort-execute",
		Kind:      model.ViolationUnguarded,
		Actor:     "script",
		Prevented: true,
	})
	require.NoError(t, err)
}

func TestMonitor_RecordViolation_StoreError(t *testing.T) {
	store := mocks.NewViolationStore(t)
	store.On("Append", mock.Anything, mock.Anything).Return(assert.AnError)

	m := New(store, nil, testutil.MakeNoopLogger())
	err := m.RecordViolation(context.Background(), model.SecurityViolation{Operation: "x", Kind: model.ViolationQuarantined})
	require.ErrorIs(t, err, assert.AnError)
}

func TestMonitor_VerifyRegistry(t *testing.T) {
	store := mocks.NewViolationStore(t)
	store.On("Append", mock.Anything, mock.MatchedBy(func(v model.SecurityViolation) bool {
		return v.Kind == model.ViolationRegistryChanged &&
			v.Operation == "registry:grpc" &&
			v.Detail == "added=[cohort-wipe] removed=[cohort-rollback]"
	})).Return(nil).Once()

	m := New(store, nil, testutil.MakeNoopLogger())

	changed, err := m.VerifyRegistry(context.Background(), "grpc", []string{"cohort-execute", "cohort-rollback", "cohort-sample"})
	require.NoError(t, err)
	assert.False(t, changed, "first call records the baseline")

	changed, err = m.VerifyRegistry(context.Background(), "grpc", []string{"cohort-sample", "cohort-execute", "cohort-rollback"})
	require.NoError(t, err)
	assert.False(t, changed, "order does not matter")

	changed, err = m.VerifyRegistry(context.Background(), "grpc", []string{"cohort-sample", "cohort-execute", "cohort-wipe"})
	require.NoError(t, err)
	assert.True(t, changed)

	changed, err = m.VerifyRegistry(context.Background(), "grpc", []string{"cohort-sample", "cohort-execute", "cohort-wipe"})
	require.NoError(t, err)
	assert.False(t, changed, "a reported change becomes the baseline")
}

func TestMonitor_VerifyRegistry_ScopesAreIndependent(t *testing.T) {
	m := New(nil, nil, testutil.MakeNoopLogger())

	changed, err := m.VerifyRegistry(context.Background(), "grpc", []string{"a", "b"})
	require.NoError(t, err)
	assert.False(t, changed)

	changed, err = m.VerifyRegistry(context.Background(), "cli", []string{"x"})
	require.NoError(t, err)
	assert.False(t, changed)

	changed, err = m.VerifyRegistry(context.Background(), "grpc", []string{"a"})
	require.NoError(t, err)
	assert.True(t, changed)
}

func TestMonitor_VerifyRegistry_StoredBaseline(t *testing.T) {
	violations := mocks.NewViolationStore(t)
	violations.On("Append", mock.Anything, mock.MatchedBy(func(v model.SecurityViolation) bool {
		return v.Kind == model.ViolationRegistryChanged && v.Detail == "added=[cohortctl wipe] removed=[]"
	})).Return(nil).Once()

	registry := mocks.NewRegistryStore(t)
	registry.On("Baseline", mock.Anything, "cli").
		Return([]string{"cohortctl execute", "cohortctl sample"}, nil).Once()
	registry.On("SaveBaseline", mock.Anything, "cli", []string{"cohortctl execute", "cohortctl sample", "cohortctl wipe"}).
		Return(nil).Once()

	m := New(violations, nil, testutil.MakeNoopLogger())
	m.UseRegistry(registry)

	changed, err := m.VerifyRegistry(context.Background(), "cli", []string{"cohortctl wipe", "cohortctl sample", "cohortctl execute"})
	require.NoError(t, err)
	assert.True(t, changed)
}

func TestMonitor_VerifyRegistry_StoredBaselineMissing(t *testing.T) {
	registry := mocks.NewRegistryStore(t)
	registry.On("Baseline", mock.Anything, "grpc").Return(nil, nil).Once()
	registry.On("SaveBaseline", mock.Anything, "grpc", []string{"/a/One"}).Return(nil).Once()

	m := New(mocks.NewViolationStore(t), nil, testutil.MakeNoopLogger())
	m.UseRegistry(registry)

	changed, err := m.VerifyRegistry(context.Background(), "grpc", []string{"/a/One"})
	require.NoError(t, err)
	assert.False(t, changed)
}

func TestMonitor_VerifyRegistry_ViolationNotStoredKeepsBaseline(t *testing.T) {
	violations := mocks.NewViolationStore(t)
	violations.On("Append", mock.Anything, mock.Anything).Return(assert.AnError).Once()

	registry := mocks.NewRegistryStore(t)
	registry.On("Baseline", mock.Anything, "grpc").Return([]string{"/a/One"}, nil).Once()

	m := New(violations, nil, testutil.MakeNoopLogger())
	m.UseRegistry(registry)

	changed, err := m.VerifyRegistry(context.Background(), "grpc", []string{"/a/One", "/a/Two"})
	require.ErrorIs(t, err, assert.AnError)
	assert.True(t, changed)
	registry.AssertNotCalled(t, "SaveBaseline", mock.Anything, mock.Anything, mock.Anything)
}

func TestMonitor_VerifyRegistry_LoadError(t *testing.T) {
	registry := mocks.NewRegistryStore(t)
	registry.On("Baseline", mock.Anything, "grpc").Return(nil, assert.AnError).Once()

	m := New(nil, nil, testutil.MakeNoopLogger())
	m.UseRegistry(registry)

	_, err := m.VerifyRegistry(context.Background(), "grpc", []string{"/a/One"})
	require.ErrorIs(t, err, assert.AnError)
}

func TestMonitor_Violations(t *testing.T) {
	store := mocks.NewViolationStore(t)
	want := []model.SecurityViolation{{ID: uuid.New(), Operation: "cohort-execute"}}
	store.On("Recent", mock.Anything, 10).Return(want, nil)

	m := New(store, nil, testutil.MakeNoopLogger())
	got, err := m.Violations(context.Background(), 10)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}
