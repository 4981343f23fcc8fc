// Package guard gates destructive operations.
//
// A guarded run passes, in order: the quarantine list, the emergency switch,
// the operator allow-list, an explicit confirmation phrase and an atomic lock.
// Only then does the operation body run, with a guard token in its context.
// The lock is released on every exit path.
package guard
