package model

// TokenManager issues and validates operator access tokens.
type TokenManager interface {
	GenerateOperatorToken(operator string) (string, error)
	ParseOperatorToken(token string) (string, error)
}
