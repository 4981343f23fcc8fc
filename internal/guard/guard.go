package guard

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/dtroode/cohort-migrator/internal/logger"
	"github.com/dtroode/cohort-migrator/internal/model"
)

// Observer is told about blocked attempts and decides on quarantine.
type Observer interface {
	ShouldBlockExecution(name string) bool
	RecordViolation(ctx context.Context, v model.SecurityViolation) error
}

// EmergencyChecker reports whether the emergency switch is engaged.
type EmergencyChecker interface {
	Engaged() (bool, error)
}

// Request describes one guarded invocation.
type Request struct {
	Operation   string
	Actor       string
	Destructive bool
	Summary     string
	Confirmer   Confirmer

	// LockName is the lock the run holds. Operations sharing a lock name
	// exclude each other; empty means the operation name.
	LockName string
}

func (r Request) lockName() string {
	if r.LockName != "" {
		return r.LockName
	}
	return r.Operation
}

// Token is placed in the context of a running guarded operation.
type Token struct {
	Operation string
	Actor     string
	LockID    uuid.UUID
}

type tokenKey struct{}

// FromContext returns the guard token of the run ctx belongs to.
func FromContext(ctx context.Context) (Token, bool) {
	t, ok := ctx.Value(tokenKey{}).(Token)
	return t, ok
}

// Guard wraps exactly one operation invocation per Run call.
type Guard struct {
	observer     Observer
	emergency    EmergencyChecker
	authorizer   *Authorizer
	locker       Locker
	phrase       string
	logger       *logger.Logger
	onTransition func(operation string, from, to State)
}

// New creates a Guard. phrase is the exact text an operator must supply to
// confirm a destructive run.
func New(
	observer Observer,
	emergency EmergencyChecker,
	authorizer *Authorizer,
	locker Locker,
	phrase string,
	logger *logger.Logger,
) *Guard {
	return &Guard{
		observer:   observer,
		emergency:  emergency,
		authorizer: authorizer,
		locker:     locker,
		phrase:     phrase,
		logger:     logger,
	}
}

// OnTransition registers fn to be called on every state change.
func (g *Guard) OnTransition(fn func(operation string, from, to State)) {
	g.onTransition = fn
}

// Phrase returns the confirmation phrase operators must supply.
func (g *Guard) Phrase() string {
	return g.phrase
}

type run struct {
	g     *Guard
	req   Request
	state State
}

func (r *run) to(next State) {
	r.g.logger.Debug("Execution guard: state transition",
		"operation", r.req.Operation,
		"actor", r.req.Actor,
		"from", r.state.String(),
		"to", next.String())
	if r.g.onTransition != nil {
		r.g.onTransition(r.req.Operation, r.state, next)
	}
	r.state = next
}

// Run executes body once every gate has passed. The lock taken for the run is
// released when body returns, fails, or panics.
func (g *Guard) Run(ctx context.Context, req Request, body func(ctx context.Context) error) (err error) {
	r := &run{g: g, req: req, state: StateIdle}

	if g.observer.ShouldBlockExecution(req.Operation) {
		g.violation(ctx, req, model.ViolationQuarantined, "operation is on the quarantine list")
		r.to(StateFailed)
		return fmt.Errorf("%w: %s", model.ErrQuarantined, req.Operation)
	}

	engaged, checkErr := g.emergency.Engaged()
	if engaged {
		g.violation(ctx, req, model.ViolationEmergency, "emergency switch engaged")
		r.to(StateFailed)
		if checkErr != nil {
			return fmt.Errorf("%w: %v", model.ErrEmergencyDisabled, checkErr)
		}
		return model.ErrEmergencyDisabled
	}

	if !g.authorizer.Allowed(req.Operation, req.Actor) {
		g.violation(ctx, req, model.ViolationUnauthorized, "actor not on allow-list")
		r.to(StateFailed)
		return fmt.Errorf("%w: %q may not run %s", model.ErrUnauthorized, req.Actor, req.Operation)
	}

	if req.Destructive {
		r.to(StateAwaitingConfirmation)
		if err := g.confirm(ctx, req); err != nil {
			r.to(StateCancelled)
			g.logger.Info("Execution guard: run cancelled at confirmation",
				"operation", req.Operation,
				"actor", req.Actor)
			return err
		}
		r.to(StateConfirmed)
	}

	lock, err := g.locker.Acquire(ctx, req.lockName())
	if err != nil {
		r.to(StateFailed)
		return err
	}
	r.to(StateLocked)

	defer func() {
		if p := recover(); p != nil {
			r.to(StateFailed)
			g.release(ctx, r, lock)
			panic(p)
		}
		g.release(ctx, r, lock)
	}()

	r.to(StateRunning)
	g.logger.Info("Execution guard: running operation",
		"operation", req.Operation,
		"actor", req.Actor,
		"lock_id", lock.LockID.String())

	runCtx := context.WithValue(ctx, tokenKey{}, Token{Operation: req.Operation, Actor: req.Actor, LockID: lock.LockID})
	if err := body(runCtx); err != nil {
		r.to(StateFailed)
		return err
	}
	r.to(StateCompleted)
	return nil
}

func (g *Guard) confirm(ctx context.Context, req Request) error {
	if req.Confirmer == nil {
		return fmt.Errorf("%w: no confirmation supplied", model.ErrConfirmationDeclined)
	}
	answer, err := req.Confirmer.Confirm(ctx, Prompt{
		Operation: req.Operation,
		Actor:     req.Actor,
		Phrase:    g.phrase,
		Summary:   req.Summary,
	})
	if err != nil {
		return errors.Join(model.ErrConfirmationDeclined, err)
	}
	if answer != g.phrase {
		return model.ErrConfirmationDeclined
	}
	return nil
}

func (g *Guard) release(ctx context.Context, r *run, lock model.GuardLock) {
	if err := g.locker.Release(context.WithoutCancel(ctx), lock); err != nil {
		g.logger.Error("Execution guard: failed to release lock",
			"operation", r.req.Operation,
			"lock_id", lock.LockID.String(),
			"error", err.Error())
	}
	r.to(StateUnlocked)
}

func (g *Guard) violation(ctx context.Context, req Request, kind model.ViolationKind, detail string) {
	if err := g.observer.RecordViolation(ctx, model.SecurityViolation{
		Operation: req.Operation,
		Kind:      kind,
		Actor:     req.Actor,
		Prevented: true,
		Detail:    detail,
	}); err != nil {
		g.logger.Error("Execution guard: failed to record violation",
			"operation", req.Operation,
			"kind", string(kind),
			"error", err.Error())
	}
}
