package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/dtroode/cohort-migrator/internal/logger"
	"github.com/dtroode/cohort-migrator/internal/model"
)

// TokenService issues and resolves operator access tokens.
type TokenService struct {
	manager model.TokenManager
	logger  *logger.Logger
}

func NewTokenService(manager model.TokenManager, logger *logger.Logger) *TokenService {
	return &TokenService{manager: manager, logger: logger}
}

// Issue creates an access token naming operator.
func (s *TokenService) Issue(_ context.Context, operator string) (string, error) {
	operator = strings.TrimSpace(operator)
	if operator == "" {
		return "", fmt.Errorf("operator is empty")
	}

	token, err := s.manager.GenerateOperatorToken(operator)
	if err != nil {
		return "", fmt.Errorf("issue operator token: %w", err)
	}

	s.logger.Info("Token service: operator token issued",
		"operator", operator)

	return token, nil
}

// GetOperator returns the operator named by token.
func (s *TokenService) GetOperator(_ context.Context, token string) (string, error) {
	operator, err := s.manager.ParseOperatorToken(token)
	if err != nil {
		return "", err
	}
	if operator == "" {
		return "", fmt.Errorf("token names no operator")
	}
	return operator, nil
}
