package model

import "context"

type ContextManager interface {
	SetOperatorToContext(ctx context.Context, operator string) context.Context
	GetOperatorFromContext(ctx context.Context) (string, bool)
}
