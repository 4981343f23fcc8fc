package model

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// ViolationStore persists security violations.
type ViolationStore interface {
	Append(ctx context.Context, violation SecurityViolation) error
	Recent(ctx context.Context, limit int) ([]SecurityViolation, error)
}

// ViolationKind classifies a security violation.
type ViolationKind string

const (
	ViolationQuarantined     ViolationKind = "quarantined_operation"
	ViolationUnguarded       ViolationKind = "unguarded_invocation"
	ViolationUnauthorized    ViolationKind = "unauthorized"
	ViolationRegistryChanged ViolationKind = "registry_changed"
	ViolationEmergency       ViolationKind = "emergency_blocked"
)

// SecurityViolation is an observed attempt to bypass the execution guard.
type SecurityViolation struct {
	ID        uuid.UUID     `json:"id"`
	Timestamp time.Time     `json:"timestamp"`
	Operation string        `json:"operation"`
	Kind      ViolationKind `json:"kind"`
	Actor     string        `json:"actor,omitempty"`
	Prevented bool          `json:"prevented"`
	Detail    string        `json:"detail,omitempty"`
}
