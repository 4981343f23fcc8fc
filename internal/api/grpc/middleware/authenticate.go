package middleware

import (
	"context"
	"errors"
	"strings"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"github.com/dtroode/cohort-migrator/internal/logger"
	"github.com/dtroode/cohort-migrator/internal/model"
)

var (
	errMissingToken = errors.New("missing authorization token")
	errInvalidToken = errors.New("invalid authorization token")
)

// TokenService resolves the operator from bearer tokens.
type TokenService interface {
	GetOperator(ctx context.Context, token string) (string, error)
}

// Authenticate validates bearer tokens and injects the operator into context.
type Authenticate struct {
	tokenService   TokenService
	contextManager model.ContextManager
	logger         *logger.Logger
}

// NewAuthenticate creates a new Authenticate middleware instance.
func NewAuthenticate(tokenService TokenService, contextManager model.ContextManager, logger *logger.Logger) *Authenticate {
	return &Authenticate{tokenService: tokenService, contextManager: contextManager, logger: logger}
}

// AuthFunc parses the Authorization header, validates the token and returns a context carrying the operator.
func (m *Authenticate) AuthFunc(ctx context.Context) (context.Context, error) {
	var tokenString string
	if md, ok := metadata.FromIncomingContext(ctx); ok {
		if authHeaders := md.Get("authorization"); len(authHeaders) > 0 {
			tokenString = strings.TrimPrefix(authHeaders[0], "Bearer ")
		}
	}

	operator, authErr := m.authenticateOperator(ctx, tokenString)
	if authErr != nil {
		m.logger.Warn("Authenticate middleware: request rejected",
			"error", authErr.Error())
		return nil, status.Error(codes.Unauthenticated, authErr.Error())
	}

	return m.contextManager.SetOperatorToContext(ctx, operator), nil
}

func (m *Authenticate) authenticateOperator(ctx context.Context, tokenString string) (string, error) {
	if tokenString == "" {
		return "", errMissingToken
	}

	operator, err := m.tokenService.GetOperator(ctx, tokenString)
	if err != nil || operator == "" {
		return "", errInvalidToken
	}

	return operator, nil
}
