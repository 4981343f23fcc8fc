package context

import (
	"context"

	"google.golang.org/grpc/metadata"
)

// operatorKey is the metadata key carrying the authenticated operator.
const (
	operatorKey string = "x-operator"
)

// Manager stores the authenticated operator in gRPC metadata.
type Manager struct{}

// NewManager creates a new gRPC context manager instance.
func NewManager() *Manager {
	return &Manager{}
}

// SetOperatorToContext sets the operator in the incoming metadata of ctx,
// replacing any value a client may have sent under the same key.
func (m *Manager) SetOperatorToContext(ctx context.Context, operator string) context.Context {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		md = metadata.New(map[string]string{operatorKey: operator})
	} else {
		md = md.Copy()
		md.Set(operatorKey, operator)
	}

	return metadata.NewIncomingContext(ctx, md)
}

// GetOperatorFromContext returns the operator set by SetOperatorToContext.
func (m *Manager) GetOperatorFromContext(ctx context.Context) (string, bool) {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return "", false
	}

	operators := md.Get(operatorKey)
	if len(operators) == 0 || operators[0] == "" {
		return "", false
	}

	return operators[0], true
}
