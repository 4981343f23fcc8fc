package guard

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/dtroode/cohort-migrator/internal/logger"
	"github.com/dtroode/cohort-migrator/internal/mocks"
	"github.com/dtroode/cohort-migrator/internal/model"
	"github.com/dtroode/cohort-migrator/internal/monitor"
	"github.com/dtroode/cohort-migrator/internal/testutil"
)

const (
	testOp     = "cohort-execute"
	testPhrase = "MIGRATE COHORT"
)

type fixture struct {
	guard       *Guard
	violations  *mocks.ViolationStore
	emergency   *EmergencySwitch
	locker      *FileLocker
	transitions []State
}

func newFixture(t *testing.T, quarantine ...string) *fixture {
	t.Helper()
	dir := t.TempDir()

	violations := mocks.NewViolationStore(t)
	mon := monitor.New(violations, quarantine, testutil.MakeNoopLogger())
	f := &fixture{
		violations: violations,
		emergency:  NewEmergencySwitch(filepath.Join(dir, "EMERGENCY_DISABLE")),
		locker:     NewFileLocker(filepath.Join(dir, "locks")),
	}
	f.guard = New(mon, f.emergency, NewAuthorizer([]string{"alice"}, nil), f.locker, testPhrase, testutil.MakeNoopLogger())
	f.guard.OnTransition(func(_ string, _, to State) {
		f.transitions = append(f.transitions, to)
	})
	return f
}

func (f *fixture) lockFileExists(t *testing.T) bool {
	t.Helper()
	_, err := os.Stat(f.locker.Path(testOp))
	return err == nil
}

func request(actor string, confirmer Confirmer) Request {
	return Request{Operation: testOp, Actor: actor, Destructive: true, Confirmer: confirmer}
}

func TestGuard_Run_Completes(t *testing.T) {
	f := newFixture(t)

	var sawToken bool
	err := f.guard.Run(context.Background(), request("alice", Phrase(testPhrase)), func(ctx context.Context) error {
		tok, ok := FromContext(ctx)
		sawToken = ok && tok.Operation == testOp && tok.Actor == "alice"
		assert.True(t, f.lockFileExists(t), "lock file exists while running")
		return nil
	})
	require.NoError(t, err)

	assert.True(t, sawToken)
	assert.False(t, f.lockFileExists(t))
	assert.Equal(t, []State{
		StateAwaitingConfirmation, StateConfirmed, StateLocked, StateRunning, StateCompleted, StateUnlocked,
	}, f.transitions)
}

func TestGuard_Run_ConfirmationDeclined(t *testing.T) {
	tests := []struct {
		name      string
		confirmer Confirmer
	}{
		{name: "wrong phrase", confirmer: Phrase("migrate cohort")},
		{name: "no confirmer", confirmer: nil},
		{name: "prompt error", confirmer: ConfirmFunc(func(context.Context, Prompt) (string, error) {
			return "", errors.New("stdin closed")
		})},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)

			called := false
			err := f.guard.Run(context.Background(), request("alice", tt.confirmer), func(context.Context) error {
				called = true
				return nil
			})
			require.ErrorIs(t, err, model.ErrConfirmationDeclined)

			assert.False(t, called)
			assert.False(t, f.lockFileExists(t))
			assert.Equal(t, []State{StateAwaitingConfirmation, StateCancelled}, f.transitions)
		})
	}
}

func TestGuard_Run_EmergencyBlocksEvenWhenAuthorizedAndConfirmed(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.emergency.Engage("ops", "incident"))
	f.violations.On("Append", mock.Anything, mock.MatchedBy(func(v model.SecurityViolation) bool {
		return v.Kind == model.ViolationEmergency && v.Prevented
	})).Return(nil)

	prompted := false
	confirmer := ConfirmFunc(func(context.Context, Prompt) (string, error) {
		prompted = true
		return testPhrase, nil
	})

	err := f.guard.Run(context.Background(), request("alice", confirmer), func(context.Context) error {
		t.Fatal("body must not run")
		return nil
	})
	require.ErrorIs(t, err, model.ErrEmergencyDisabled)

	assert.False(t, prompted, "emergency check happens before confirmation")
	assert.False(t, f.lockFileExists(t))
	assert.Equal(t, []State{StateFailed}, f.transitions)
}

func TestGuard_Run_Unauthorized(t *testing.T) {
	f := newFixture(t)
	f.violations.On("Append", mock.Anything, mock.MatchedBy(func(v model.SecurityViolation) bool {
		return v.Kind == model.ViolationUnauthorized && v.Actor == "mallory"
	})).Return(nil)

	err := f.guard.Run(context.Background(), request("mallory", Phrase(testPhrase)), func(context.Context) error {
		t.Fatal("body must not run")
		return nil
	})
	require.ErrorIs(t, err, model.ErrUnauthorized)
	assert.Equal(t, []State{StateFailed}, f.transitions)
}

func TestGuard_Run_Quarantined(t *testing.T) {
	f := newFixture(t, testOp)
	f.violations.On("Append", mock.Anything, mock.MatchedBy(func(v model.SecurityViolation) bool {
		return v.Kind == model.ViolationQuarantined
	})).Return(nil)

	err := f.guard.Run(context.Background(), request("alice", Phrase(testPhrase)), func(context.Context) error {
		t.Fatal("body must not run")
		return nil
	})
	require.ErrorIs(t, err, model.ErrQuarantined)
}

func TestGuard_Run_BodyErrorReleasesLock(t *testing.T) {
	f := newFixture(t)

	err := f.guard.Run(context.Background(), request("alice", Phrase(testPhrase)), func(context.Context) error {
		return assert.AnError
	})
	require.ErrorIs(t, err, assert.AnError)

	assert.False(t, f.lockFileExists(t))
	assert.Equal(t, []State{
		StateAwaitingConfirmation, StateConfirmed, StateLocked, StateRunning, StateFailed, StateUnlocked,
	}, f.transitions)
}

func TestGuard_Run_PanicReleasesLock(t *testing.T) {
	f := newFixture(t)

	assert.PanicsWithValue(t, "boom", func() {
		_ = f.guard.Run(context.Background(), request("alice", Phrase(testPhrase)), func(context.Context) error {
			panic("boom")
		})
	})

	assert.False(t, f.lockFileExists(t))
	assert.Equal(t, StateUnlocked, f.transitions[len(f.transitions)-1])
}

func TestGuard_Run_RejectsConcurrentRun(t *testing.T) {
	f := newFixture(t)
	other := New(
		monitor.New(nil, nil, testutil.MakeNoopLogger()),
		f.emergency,
		NewAuthorizer([]string{"alice"}, nil),
		NewFileLocker(filepath.Dir(f.locker.Path(testOp))),
		testPhrase,
		testutil.MakeNoopLogger(),
	)

	var nestedErr error
	err := f.guard.Run(context.Background(), request("alice", Phrase(testPhrase)), func(ctx context.Context) error {
		nestedErr = other.Run(ctx, request("alice", Phrase(testPhrase)), func(context.Context) error {
			t.Fatal("second run must not start")
			return nil
		})
		return nil
	})
	require.NoError(t, err)
	require.ErrorIs(t, nestedErr, model.ErrLockHeld)
	assert.False(t, f.lockFileExists(t))
}

func TestGuard_Run_SharedLockNameExcludesOtherOperations(t *testing.T) {
	f := newFixture(t)
	const lockName = "cohort-migration:2025-spring"

	execute := request("alice", Phrase(testPhrase))
	execute.LockName = lockName

	var nestedErr, unrelatedErr error
	err := f.guard.Run(context.Background(), execute, func(ctx context.Context) error {
		tok, _ := FromContext(ctx)
		assert.Equal(t, testOp, tok.Operation)
		assert.FileExists(t, f.locker.Path(lockName))
		assert.False(t, f.lockFileExists(t), "the operation name is not used as lock")

		nestedErr = f.guard.Run(ctx, Request{
			Operation:   "cohort-sample",
			LockName:    lockName,
			Actor:       "alice",
			Destructive: true,
			Confirmer:   Phrase(testPhrase),
		}, func(context.Context) error {
			t.Fatal("sample must not start while execute holds the cohort lock")
			return nil
		})

		unrelatedErr = f.guard.Run(ctx, Request{
			Operation:   "cohort-sample",
			LockName:    "cohort-migration:2025-autumn",
			Actor:       "alice",
			Destructive: true,
			Confirmer:   Phrase(testPhrase),
		}, func(context.Context) error {
			return nil
		})
		return nil
	})
	require.NoError(t, err)
	require.ErrorIs(t, nestedErr, model.ErrLockHeld)
	require.NoError(t, unrelatedErr)
	assert.NoFileExists(t, f.locker.Path(lockName))
}

func TestGuard_Run_ViolationStoreDownIsLogged(t *testing.T) {
	dir := t.TempDir()
	violations := mocks.NewViolationStore(t)
	violations.On("Append", mock.Anything, mock.Anything).Return(assert.AnError).Once()

	var buf bytes.Buffer
	g := New(
		monitor.New(violations, nil, testutil.MakeNoopLogger()),
		NewEmergencySwitch(filepath.Join(dir, "EMERGENCY_DISABLE")),
		NewAuthorizer([]string{"alice"}, nil),
		NewFileLocker(filepath.Join(dir, "locks")),
		testPhrase,
		logger.NewWithWriter(&buf, 0),
	)

	err := g.Run(context.Background(), request("mallory", Phrase(testPhrase)), func(context.Context) error {
		t.Fatal("body must not run")
		return nil
	})
	require.ErrorIs(t, err, model.ErrUnauthorized)
	assert.Contains(t, buf.String(), "Execution guard: failed to record violation")
	assert.Contains(t, buf.String(), "kind=unauthorized")
}

func TestGuard_Run_NonDestructiveSkipsConfirmation(t *testing.T) {
	f := newFixture(t)

	err := f.guard.Run(context.Background(), Request{Operation: testOp, Actor: "alice"}, func(context.Context) error {
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []State{StateLocked, StateRunning, StateCompleted, StateUnlocked}, f.transitions)
}

func TestFromContext_Missing(t *testing.T) {
	_, ok := FromContext(context.Background())
	assert.False(t, ok)
}
