package app

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/dtroode/cohort-migrator/internal/config"
	"github.com/dtroode/cohort-migrator/internal/guard"
	"github.com/dtroode/cohort-migrator/internal/mocks"
	"github.com/dtroode/cohort-migrator/internal/model"
	"github.com/dtroode/cohort-migrator/internal/monitor"
	"github.com/dtroode/cohort-migrator/internal/testutil"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()
	return &config.Config{
		JWT: config.JWT{Secret: "secret"},
		Migration: config.Migration{
			Cohort:           "2024-q1",
			Delimiter:        ",",
			BcryptCost:       4,
			SampleSize:       5,
			AllowedOperators: []string{"alice"},
			ConfirmPhrase:    "MIGRATE COHORT",
			EmergencyFlag:    filepath.Join(dir, "EMERGENCY_DISABLE"),
			Quarantine:       []string{"legacy-user-merge"},
			LockBackend:      config.LockBackendFile,
			LockDir:          dir,
		},
	}
}

func testStores(t *testing.T) Stores {
	return Stores{
		Identities: testutil.NewIdentityStore(),
		Snapshots:  testutil.NewSnapshotStore(),
		Audit:      mocks.NewAuditStore(t),
		Violations: mocks.NewViolationStore(t),
	}
}

func TestWire(t *testing.T) {
	cfg := testConfig(t)
	a, err := Wire(cfg, testStores(t), testutil.MakeNoopLogger())
	require.NoError(t, err)

	assert.Equal(t, "MIGRATE COHORT", a.Guard.Phrase())
	assert.True(t, a.Monitor.ShouldBlockExecution("legacy-user-merge"))
	assert.Equal(t, cfg.Migration.EmergencyFlag, a.Emergency.Path())

	tok, err := a.Tokens.Issue(context.Background(), "alice")
	require.NoError(t, err)
	op, err := a.Tokens.GetOperator(context.Background(), tok)
	require.NoError(t, err)
	assert.Equal(t, "alice", op)

	assert.NoError(t, a.Close())
}

func TestWire_LockBackend(t *testing.T) {
	t.Run("postgres needs a lock store", func(t *testing.T) {
		cfg := testConfig(t)
		cfg.Migration.LockBackend = config.LockBackendPostgres
		_, err := Wire(cfg, testStores(t), testutil.MakeNoopLogger())
		assert.Error(t, err)
	})

	t.Run("postgres with a lock store", func(t *testing.T) {
		cfg := testConfig(t)
		cfg.Migration.LockBackend = config.LockBackendPostgres
		stores := testStores(t)
		stores.Locks = mocks.NewLockStore(t)
		_, err := Wire(cfg, stores, testutil.MakeNoopLogger())
		assert.NoError(t, err)
	})

	t.Run("unknown", func(t *testing.T) {
		cfg := testConfig(t)
		cfg.Migration.LockBackend = "etcd"
		_, err := Wire(cfg, testStores(t), testutil.MakeNoopLogger())
		assert.Error(t, err)
	})
}

func TestWire_ClassifyDisabledByDefault(t *testing.T) {
	cfg := testConfig(t)
	a, err := Wire(cfg, testStores(t), testutil.MakeNoopLogger())
	require.NoError(t, err)

	_, err = a.Migration.Classify(context.Background(), "alice")
	assert.ErrorIs(t, err, model.ErrFeatureDisabled)
}

func TestWire_GuardRecordsQuarantinedRuns(t *testing.T) {
	cfg := testConfig(t)
	stores := testStores(t)
	violations := mocks.NewViolationStore(t)
	violations.On("Append", mock.Anything, mock.MatchedBy(func(v model.SecurityViolation) bool {
		return v.Kind == model.ViolationQuarantined && v.Operation == "legacy-user-merge"
	})).Return(nil).Once()
	stores.Violations = violations

	a, err := Wire(cfg, stores, testutil.MakeNoopLogger())
	require.NoError(t, err)

	ran := false
	err = a.Guard.Run(context.Background(), guard.Request{
		Operation:   "legacy-user-merge",
		Actor:       "alice",
		Destructive: true,
		Confirmer:   guard.Phrase("MIGRATE COHORT"),
	}, func(context.Context) error {
		ran = true
		return nil
	})
	assert.ErrorIs(t, err, model.ErrQuarantined)
	assert.False(t, ran)
}

func TestWire_RegistryBaselineIsStored(t *testing.T) {
	cfg := testConfig(t)
	stores := testStores(t)

	violations := mocks.NewViolationStore(t)
	violations.On("Append", mock.Anything, mock.MatchedBy(func(v model.SecurityViolation) bool {
		return v.Kind == model.ViolationRegistryChanged && v.Detail == "added=[/cohort.v1.Maintenance/Wipe] removed=[]"
	})).Return(nil).Once()
	stores.Violations = violations

	registry := mocks.NewRegistryStore(t)
	registry.On("Baseline", mock.Anything, monitor.ScopeGRPC).
		Return([]string{"/cohort.v1.Migration/Execute"}, nil).Once()
	registry.On("SaveBaseline", mock.Anything, monitor.ScopeGRPC,
		[]string{"/cohort.v1.Maintenance/Wipe", "/cohort.v1.Migration/Execute"}).
		Return(nil).Once()
	stores.Registry = registry

	a, err := Wire(cfg, stores, testutil.MakeNoopLogger())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	calls := 0
	a.WatchRegistry(ctx, time.Hour, monitor.ScopeGRPC, func() []string {
		calls++
		return []string{"/cohort.v1.Migration/Execute", "/cohort.v1.Maintenance/Wipe"}
	})
	assert.Equal(t, 1, calls, "checked once before waiting")
}
