package local

import (
	stderrors "errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
	"github.com/goliatone/go-todos"
)

var _ todos.TokenValidator = (*TokenValidator)(nil)

// TokenValidator validates id tokens minted by IdentityProvider
type TokenValidator struct {
	key    []byte
	parser *jwt.Parser
}

// NewTokenValidator returns a validator for tokens signed with cfg.SigningKey
func NewTokenValidator(cfg Config) (*TokenValidator, error) {
	if len(cfg.SigningKey) == 0 {
		return nil, fmt.Errorf("local: signing key is required")
	}
	cfg = cfg.withDefaults()

	return &TokenValidator{
		key: cfg.SigningKey,
		parser: jwt.NewParser(
			jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
			jwt.WithIssuer(cfg.Issuer),
			jwt.WithAudience(cfg.Audience),
			jwt.WithExpirationRequired(),
		),
	}, nil
}

// Validate implements todos.TokenValidator.
func (v *TokenValidator) Validate(tokenString string) (*todos.IdentityClaims, error) {
	claims := &todos.IdentityClaims{}
	_, err := v.parser.ParseWithClaims(tokenString, claims, func(*jwt.Token) (any, error) {
		return v.key, nil
	})
	if err != nil {
		return nil, normalizeValidationError(err)
	}
	if claims.TokenUse != "id" {
		return nil, normalizeValidationError(fmt.Errorf("unexpected token_use %q", claims.TokenUse))
	}
	return claims, nil
}

func normalizeValidationError(err error) error {
	clone := todos.ErrTokenMalformed.Clone()
	if stderrors.Is(err, jwt.ErrTokenExpired) {
		clone = todos.ErrTokenExpired.Clone()
	}
	if clone == nil {
		return err
	}
	clone.Source = err
	return clone.WithMetadata(map[string]any{
		"provider": "local",
		"cause":    err.Error(),
	})
}
