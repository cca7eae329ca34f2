package cognito

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"strings"
	"time"
)

// Config holds the user pool coordinates.
type Config struct {
	// Region of the user pool, e.g. "us-west-2".
	Region string

	// UserPoolID is the pool id, e.g. "us-west-2_AbCdEf123".
	UserPoolID string

	// ClientID is the app client id.
	ClientID string

	// ClientSecret is set only for app clients created with a secret.
	ClientSecret string

	// Endpoint overrides the Cognito endpoint (optional, for local emulators).
	Endpoint string

	// JWKSRefreshInterval is how often the key set is refreshed.
	// Default: 1 hour.
	JWKSRefreshInterval time.Duration
}

// Validate checks the fields required to talk to the pool
func (c Config) Validate() error {
	if strings.TrimSpace(c.ClientID) == "" {
		return fmt.Errorf("cognito: client id is required")
	}
	return nil
}

func (c Config) region() string {
	if c.Region != "" {
		return c.Region
	}
	// pool ids are prefixed with their region
	if i := strings.Index(c.UserPoolID, "_"); i > 0 {
		return c.UserPoolID[:i]
	}
	return ""
}

// Issuer is the iss claim of tokens minted by the pool
func (c Config) Issuer() string {
	return fmt.Sprintf("https://cognito-idp.%s.amazonaws.com/%s", c.region(), c.UserPoolID)
}

// JWKSURL is the pool's public key set
func (c Config) JWKSURL() string {
	return c.Issuer() + "/.well-known/jwks.json"
}

// SecretHash computes the SECRET_HASH parameter required by app clients
// that have a client secret. It returns "" when no secret is configured.
func (c Config) SecretHash(username string) string {
	if c.ClientSecret == "" {
		return ""
	}
	mac := hmac.New(sha256.New, []byte(c.ClientSecret))
	mac.Write([]byte(username + c.ClientID))
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}
