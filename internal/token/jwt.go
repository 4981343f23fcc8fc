package token

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/dtroode/cohort-migrator/internal/model"
)

// Claims carries the operator identity of an access token.
type Claims struct {
	jwt.RegisteredClaims
	Operator  string `json:"operator"`
	TokenType string `json:"typ"`
}

// JWT implements TokenManager backed by symmetric HMAC.
type JWT struct {
	secretKey string
	ttl       time.Duration
	now       func() time.Time
}

const (
	defaultTTL   = 8 * time.Hour
	typeOperator = "operator"
	issuer       = "cohort-migrator"
)

// NewJWT creates a token manager signing with secretKey.
func NewJWT(secretKey string) model.TokenManager {
	return &JWT{secretKey: secretKey, ttl: defaultTTL, now: time.Now}
}

// GenerateOperatorToken creates a token naming operator.
func (j *JWT) GenerateOperatorToken(operator string) (string, error) {
	now := j.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    issuer,
			Subject:   operator,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(j.ttl)),
		},
		Operator:  operator,
		TokenType: typeOperator,
	})

	tokenString, err := token.SignedString([]byte(j.secretKey))
	if err != nil {
		return "", fmt.Errorf("failed to sign operator token: %w", err)
	}

	return tokenString, nil
}

// ParseOperatorToken validates token and returns the operator it names.
func (j *JWT) ParseOperatorToken(tokenString string) (string, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("wrong signing method %v", t.Header["alg"])
		}
		return []byte(j.secretKey), nil
	}, jwt.WithIssuer(issuer), jwt.WithTimeFunc(j.now))
	if err != nil {
		return "", fmt.Errorf("failed to parse operator token: %w", err)
	}
	if !token.Valid {
		return "", fmt.Errorf("operator token is invalid")
	}
	if claims.TokenType != typeOperator {
		return "", fmt.Errorf("token type mismatch: %s", claims.TokenType)
	}
	return claims.Operator, nil
}
