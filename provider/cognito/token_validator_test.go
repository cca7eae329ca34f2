package cognito_test

import (
	"crypto/rand"
	"crypto/rsa"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-todos"
	"github.com/goliatone/go-todos/provider/cognito"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestValidator(t *testing.T) (*cognito.TokenValidator, *rsa.PrivateKey) {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	v, err := cognito.NewTokenValidator(testConfig, cognito.WithKeyFunc(func(*jwt.Token) (any, error) {
		return &key.PublicKey, nil
	}))
	require.NoError(t, err)
	return v, key
}

func poolClaims(expires time.Time, tokenUse string) *todos.IdentityClaims {
	return &todos.IdentityClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "sub-1",
			Issuer:    testConfig.Issuer(),
			Audience:  jwt.ClaimStrings{testConfig.ClientID},
			ExpiresAt: jwt.NewNumericDate(expires),
			IssuedAt:  jwt.NewNumericDate(time.Now().Add(-time.Minute)),
		},
		Name:            "Ada",
		CognitoUsername: "ada@example.com",
		TokenUse:        tokenUse,
	}
}

func sign(t *testing.T, key *rsa.PrivateKey, claims jwt.Claims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodRS256, claims).SignedString(key)
	require.NoError(t, err)
	return token
}

func TestTokenValidatorAcceptsPoolIDToken(t *testing.T) {
	v, key := newTestValidator(t)

	claims, err := v.Validate(sign(t, key, poolClaims(time.Now().Add(time.Hour), "id")))
	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", claims.Username())
	assert.Equal(t, "Ada", claims.Name)
}

func TestTokenValidatorRejectsExpired(t *testing.T) {
	v, key := newTestValidator(t)

	_, err := v.Validate(sign(t, key, poolClaims(time.Now().Add(-time.Hour), "id")))
	require.Error(t, err)

	var richErr *goerrors.Error
	require.True(t, goerrors.As(err, &richErr))
	assert.Equal(t, todos.TextCodeTokenExpired, richErr.TextCode)
	assert.Equal(t, "cognito", richErr.Metadata["provider"])
}

func TestTokenValidatorRejectsAccessToken(t *testing.T) {
	v, key := newTestValidator(t)

	_, err := v.Validate(sign(t, key, poolClaims(time.Now().Add(time.Hour), "access")))
	assert.True(t, todos.IsTokenMalformedError(err))
}

func TestTokenValidatorRejectsOtherIssuerAndAudience(t *testing.T) {
	v, key := newTestValidator(t)

	claims := poolClaims(time.Now().Add(time.Hour), "id")
	claims.Issuer = "https://cognito-idp.us-west-2.amazonaws.com/other"
	_, err := v.Validate(sign(t, key, claims))
	assert.True(t, todos.IsTokenMalformedError(err))

	claims = poolClaims(time.Now().Add(time.Hour), "id")
	claims.Audience = jwt.ClaimStrings{"someone-else"}
	_, err = v.Validate(sign(t, key, claims))
	assert.True(t, todos.IsTokenMalformedError(err))
}

func TestTokenValidatorRejectsHS256(t *testing.T) {
	v, _ := newTestValidator(t)

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, poolClaims(time.Now().Add(time.Hour), "id")).SignedString([]byte("secret"))
	require.NoError(t, err)

	_, err = v.Validate(token)
	assert.True(t, todos.IsTokenMalformedError(err))
}

func TestNewTokenValidatorRequiresPool(t *testing.T) {
	_, err := cognito.NewTokenValidator(cognito.Config{ClientID: "c"})
	assert.Error(t, err)
}
