// Package monitor records attempts to run quarantined or destructive
// operations outside the execution guard.
package monitor

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dtroode/cohort-migrator/internal/logger"
	"github.com/dtroode/cohort-migrator/internal/model"
)

// Registry scopes. Each process kind compares its own runnable operations.
const (
	ScopeGRPC = "grpc"
	ScopeCLI  = "cli"
)

// Monitor is a passive observer; it never runs operations itself.
type Monitor struct {
	store      model.ViolationStore
	registry   model.RegistryStore
	quarantine map[string]struct{}
	logger     *logger.Logger
	now        func() time.Time

	mu       sync.Mutex
	baseline map[string][]string
}

// New creates a Monitor that blocks the named quarantined operations.
func New(store model.ViolationStore, quarantine []string, logger *logger.Logger) *Monitor {
	q := make(map[string]struct{}, len(quarantine))
	for _, name := range quarantine {
		name = strings.TrimSpace(name)
		if name != "" {
			q[name] = struct{}{}
		}
	}
	return &Monitor{
		store:      store,
		quarantine: q,
		logger:     logger,
		now:        time.Now,
		baseline:   make(map[string][]string),
	}
}

// ShouldBlockExecution reports whether name is quarantined.
func (m *Monitor) ShouldBlockExecution(name string) bool {
	_, ok := m.quarantine[name]
	return ok
}

// RecordViolation persists v and logs it. A failure to persist is returned but
// the violation is always logged.
func (m *Monitor) RecordViolation(ctx context.Context, v model.SecurityViolation) error {
	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}
	if v.Timestamp.IsZero() {
		v.Timestamp = m.now()
	}

	m.logger.Warn("Security monitor: violation detected",
		"operation", v.Operation,
		"kind", string(v.Kind),
		"actor", v.Actor,
		"prevented", v.Prevented,
		"detail", v.Detail)

	if m.store == nil {
		return nil
	}
	if err := m.store.Append(ctx, v); err != nil {
		m.logger.Error("Security monitor: failed to persist violation",
			"operation", v.Operation,
			"error", err.Error())
		return fmt.Errorf("failed to persist violation: %w", err)
	}
	return nil
}

// UseRegistry keeps registry baselines in store instead of process memory,
// so a change between deployments is detected too.
func (m *Monitor) UseRegistry(store model.RegistryStore) {
	m.registry = store
}

// VerifyRegistry compares the operations a process exposes under scope with
// the accepted baseline. The first call for a scope records the baseline. A
// change is recorded as a violation once and then becomes the new baseline.
// It reports whether the set changed.
func (m *Monitor) VerifyRegistry(ctx context.Context, scope string, ops []string) (bool, error) {
	current := normalizeOps(ops)

	baseline, err := m.loadBaseline(ctx, scope)
	if err != nil {
		return false, err
	}
	if len(baseline) == 0 {
		return false, m.saveBaseline(ctx, scope, current)
	}
	if slices.Equal(baseline, current) {
		return false, nil
	}

	added, removed := diffOps(baseline, current)
	err = m.RecordViolation(ctx, model.SecurityViolation{
		Operation: "registry:" + scope,
		Kind:      model.ViolationRegistryChanged,
		Actor:     "system",
		Prevented: false,
		Detail:    fmt.Sprintf("added=[%s] removed=[%s]", strings.Join(added, ","), strings.Join(removed, ",")),
	})
	if err != nil {
		// keep the old baseline so the change is reported again next time
		return true, err
	}
	return true, m.saveBaseline(ctx, scope, current)
}

func (m *Monitor) loadBaseline(ctx context.Context, scope string) ([]string, error) {
	if m.registry == nil {
		m.mu.Lock()
		defer m.mu.Unlock()
		return m.baseline[scope], nil
	}
	ops, err := m.registry.Baseline(ctx, scope)
	if err != nil {
		return nil, fmt.Errorf("failed to load registry baseline: %w", err)
	}
	return normalizeOps(ops), nil
}

func (m *Monitor) saveBaseline(ctx context.Context, scope string, ops []string) error {
	if m.registry == nil {
		m.mu.Lock()
		defer m.mu.Unlock()
		m.baseline[scope] = ops
		return nil
	}
	if err := m.registry.SaveBaseline(ctx, scope, ops); err != nil {
		return fmt.Errorf("failed to save registry baseline: %w", err)
	}
	return nil
}

// Violations returns the most recent violations, newest first.
func (m *Monitor) Violations(ctx context.Context, limit int) ([]model.SecurityViolation, error) {
	if m.store == nil {
		return nil, nil
	}
	return m.store.Recent(ctx, limit)
}

func normalizeOps(ops []string) []string {
	out := make([]string, 0, len(ops))
	for _, op := range ops {
		op = strings.TrimSpace(op)
		if op != "" {
			out = append(out, op)
		}
	}
	slices.Sort(out)
	return slices.Compact(out)
}

func diffOps(before, after []string) (added, removed []string) {
	for _, op := range after {
		if _, found := slices.BinarySearch(before, op); !found {
			added = append(added, op)
		}
	}
	for _, op := range before {
		if _, found := slices.BinarySearch(after, op); !found {
			removed = append(removed, op)
		}
	}
	return added, removed
}
