package todos

import (
	"encoding/json"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// IdentityClaims are the claims of an identity (id) token
type IdentityClaims struct {
	jwt.RegisteredClaims
	Name            string `json:"name,omitempty"`
	Email           string `json:"email,omitempty"`
	PhoneNumber     string `json:"phone_number,omitempty"`
	CognitoUsername string `json:"cognito:username,omitempty"`
	TokenUse        string `json:"token_use,omitempty"`
}

// Username returns the provider username, falling back to the subject
func (c *IdentityClaims) Username() string {
	if c == nil {
		return ""
	}
	if c.CognitoUsername != "" {
		return c.CognitoUsername
	}
	return c.RegisteredClaims.Subject
}

// Expires returns the expiration time
func (c *IdentityClaims) Expires() time.Time {
	if c != nil && c.RegisteredClaims.ExpiresAt != nil {
		return c.RegisteredClaims.ExpiresAt.Time
	}
	return time.Time{}
}

// IsExpired reports whether the claims expired before now. Claims without
// an expiration never expire.
func (c *IdentityClaims) IsExpired(now time.Time) bool {
	exp := c.Expires()
	return !exp.IsZero() && !now.Before(exp)
}

// ParseIdentityClaims decodes the claims of tokenString without verifying
// its signature. Signature checks belong to a TokenValidator.
func ParseIdentityClaims(tokenString string) (*IdentityClaims, error) {
	claims := &IdentityClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(tokenString, claims); err != nil {
		return nil, tokenError(ErrTokenMalformed, err)
	}
	return claims, nil
}

// TokenPayload is a raw JWT with its decoded claims
type TokenPayload struct {
	JWTToken string         `json:"jwtToken"`
	Payload  map[string]any `json:"payload,omitempty"`
}

// RefreshToken is the opaque refresh token
type RefreshToken struct {
	Token string `json:"token"`
}

// AuthResult is the result of a successful authentication, persisted as
// JSON under AuthStorageKey.
type AuthResult struct {
	IDToken      TokenPayload `json:"idToken"`
	AccessToken  TokenPayload `json:"accessToken"`
	RefreshToken RefreshToken `json:"refreshToken"`
	ExpiresIn    int32        `json:"expiresIn,omitempty"`
	TokenType    string       `json:"tokenType,omitempty"`
}

// NewAuthResult builds a result from raw tokens, decoding the claims of the
// identity and access tokens into their payloads.
func NewAuthResult(idToken, accessToken, refreshToken string) (*AuthResult, error) {
	idPayload, err := decodePayload(idToken)
	if err != nil {
		return nil, err
	}

	res := &AuthResult{
		IDToken:      TokenPayload{JWTToken: idToken, Payload: idPayload},
		RefreshToken: RefreshToken{Token: refreshToken},
	}

	if accessToken != "" {
		accessPayload, err := decodePayload(accessToken)
		if err != nil {
			return nil, err
		}
		res.AccessToken = TokenPayload{JWTToken: accessToken, Payload: accessPayload}
	}

	return res, nil
}

// IdentityClaims returns the claims of the identity token. The decoded
// payload is preferred, the raw token is decoded when the payload is absent.
func (r *AuthResult) IdentityClaims() (*IdentityClaims, error) {
	if r == nil {
		return nil, ErrTokenMalformed
	}

	if len(r.IDToken.Payload) > 0 {
		raw, err := json.Marshal(r.IDToken.Payload)
		if err != nil {
			return nil, tokenError(ErrTokenMalformed, err)
		}
		claims := &IdentityClaims{}
		if err := json.Unmarshal(raw, claims); err != nil {
			return nil, tokenError(ErrTokenMalformed, err)
		}
		return claims, nil
	}

	if r.IDToken.JWTToken == "" {
		return nil, ErrTokenMalformed
	}

	return ParseIdentityClaims(r.IDToken.JWTToken)
}

func decodePayload(tokenString string) (map[string]any, error) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(tokenString, claims); err != nil {
		return nil, tokenError(ErrTokenMalformed, err)
	}
	return map[string]any(claims), nil
}

// ParseAuthResult decodes a stored authentication result
func ParseAuthResult(raw string) (*AuthResult, error) {
	res := &AuthResult{}
	if err := json.Unmarshal([]byte(raw), res); err != nil {
		return nil, tokenError(ErrTokenMalformed, err)
	}
	return res, nil
}
