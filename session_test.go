package todos_test

import (
	"encoding/json"
	"testing"

	"github.com/goliatone/go-todos"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnauthenticatedSession(t *testing.T) {
	s := todos.UnauthenticatedSession()
	assert.True(t, s.IsUnauthenticated())

	s.SignupFailed = true
	assert.False(t, s.IsUnauthenticated())
}

func TestAuthSessionJSONFieldNames(t *testing.T) {
	raw, err := json.Marshal(todos.AuthSession{
		Authenticated: true,
		SignedUp:      true,
		Name:          "Ada",
		Username:      "ada@example.com",
		JWTToken:      "tok",
	})
	require.NoError(t, err)

	var fields map[string]any
	require.NoError(t, json.Unmarshal(raw, &fields))

	for _, key := range []string{"authenticated", "loginFailed", "confirmed", "confirmFailed", "signedup", "signupFailed", "name", "username", "jwtToken"} {
		assert.Contains(t, fields, key)
	}
	assert.NotContains(t, fields, "error")
}

func TestSignupFormValidate(t *testing.T) {
	valid := todos.SignupForm{
		Name:        "Ada",
		Email:       "ada@example.com",
		PhoneNumber: "+14155552671",
		Password:    "long-enough",
	}
	assert.NoError(t, valid.Validate())

	short := valid
	short.Password = "short"
	assert.Error(t, short.Validate())

	noEmail := valid
	noEmail.Email = "ada"
	assert.Error(t, noEmail.Validate())

	attrs := valid.Attributes("+14155552671")
	require.Len(t, attrs, 3)
	assert.Equal(t, todos.Attribute{Name: "phone_number", Value: "+14155552671"}, attrs[0])
	assert.Equal(t, todos.Attribute{Name: "email", Value: "ada@example.com"}, attrs[1])
	assert.Equal(t, todos.Attribute{Name: "name", Value: "Ada"}, attrs[2])
}

func TestConfirmFormValidate(t *testing.T) {
	assert.NoError(t, todos.ConfirmForm{Username: "ada", Code: "123456"}.Validate())
	assert.Error(t, todos.ConfirmForm{Username: "ada", Code: "12a"}.Validate())
	assert.Error(t, todos.ConfirmForm{Code: "123456"}.Validate())
}

func TestLoginFormValidate(t *testing.T) {
	assert.NoError(t, todos.LoginForm{Username: "ada", Password: "pw"}.Validate())
	assert.Error(t, todos.LoginForm{Username: "ada"}.Validate())
}

func TestNormalizePhoneNumber(t *testing.T) {
	got, err := todos.NormalizePhoneNumber("(415) 555-2671", "US")
	require.NoError(t, err)
	assert.Equal(t, "+14155552671", got)

	got, err = todos.NormalizePhoneNumber("+44 20 7946 0958", "")
	require.NoError(t, err)
	assert.Equal(t, "+442079460958", got)

	_, err = todos.NormalizePhoneNumber("hello", "US")
	assert.Error(t, err)
}
