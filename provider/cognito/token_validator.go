package cognito

import (
	stderrors "errors"
	"fmt"
	"log"
	"time"

	"github.com/MicahParks/keyfunc/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/goliatone/go-todos"
)

const tokenUseID = "id"

var _ todos.TokenValidator = (*TokenValidator)(nil)

// TokenValidator validates id tokens issued by a Cognito user pool.
type TokenValidator struct {
	config  Config
	keyFunc jwt.Keyfunc
	parser  *jwt.Parser
	jwks    *keyfunc.JWKS
}

// ValidatorOption customizes the token validator
type ValidatorOption func(*TokenValidator)

// WithKeyFunc replaces the remote JWKS lookup, e.g. with a static key
func WithKeyFunc(fn jwt.Keyfunc) ValidatorOption {
	return func(v *TokenValidator) {
		if fn != nil {
			v.keyFunc = fn
		}
	}
}

// NewTokenValidator creates a validator for cfg's pool. Unless WithKeyFunc
// is given, the pool's JWKS is fetched and refreshed in the background.
func NewTokenValidator(cfg Config, opts ...ValidatorOption) (*TokenValidator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.UserPoolID == "" {
		return nil, fmt.Errorf("cognito: user pool id is required")
	}

	v := &TokenValidator{config: cfg}
	for _, opt := range opts {
		if opt != nil {
			opt(v)
		}
	}

	if v.keyFunc == nil {
		refresh := cfg.JWKSRefreshInterval
		if refresh == 0 {
			refresh = time.Hour
		}
		jwks, err := keyfunc.Get(cfg.JWKSURL(), keyfunc.Options{
			RefreshErrorHandler: func(err error) {
				log.Printf("cognito: failed to do a background refresh of JWT set: %s", err)
			},
			RefreshInterval:   refresh,
			RefreshRateLimit:  time.Minute * 5,
			RefreshTimeout:    time.Second * 10,
			RefreshUnknownKID: true,
		})
		if err != nil {
			return nil, fmt.Errorf("cognito: failed to get JWKS: %w", err)
		}
		v.jwks = jwks
		v.keyFunc = jwks.Keyfunc
	}

	v.parser = jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodRS256.Alg()}),
		jwt.WithIssuer(cfg.Issuer()),
		jwt.WithAudience(cfg.ClientID),
		jwt.WithExpirationRequired(),
	)

	return v, nil
}

// Validate implements todos.TokenValidator.
func (v *TokenValidator) Validate(tokenString string) (*todos.IdentityClaims, error) {
	claims := &todos.IdentityClaims{}
	token, err := v.parser.ParseWithClaims(tokenString, claims, v.keyFunc)
	if err != nil {
		return nil, normalizeValidationError(err)
	}
	if !token.Valid {
		return nil, todos.ErrTokenMalformed
	}
	if claims.TokenUse != tokenUseID {
		return nil, normalizeValidationError(fmt.Errorf("unexpected token_use %q", claims.TokenUse))
	}
	return claims, nil
}

// Close stops the background JWKS refresh
func (v *TokenValidator) Close() {
	if v.jwks != nil {
		v.jwks.EndBackground()
	}
}

func normalizeValidationError(err error) error {
	if err == nil {
		return nil
	}

	clone := todos.ErrTokenMalformed.Clone()
	if stderrors.Is(err, jwt.ErrTokenExpired) {
		clone = todos.ErrTokenExpired.Clone()
	}

	if clone == nil {
		return err
	}

	clone.Source = err
	return clone.WithMetadata(map[string]any{
		"provider": "cognito",
		"cause":    err.Error(),
	})
}
