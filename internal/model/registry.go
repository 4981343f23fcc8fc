package model

import "context"

// RegistryStore keeps the last accepted set of runnable operations per scope,
// so a process can compare what it exposes with what earlier processes did.
type RegistryStore interface {
	Baseline(ctx context.Context, scope string) ([]string, error)
	SaveBaseline(ctx context.Context, scope string, operations []string) error
}
