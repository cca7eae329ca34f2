package todos

import (
	"errors"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/nyaruka/phonenumbers"
)

// AuthStorageKey is the well-known storage key holding the last successful
// authentication result.
const AuthStorageKey = "MYTODOS_AUTH_USER"

var errInvalidPhone = errors.New("must be a valid phone number")

// DefaultPhoneRegion is used to parse phone numbers given without a country code
const DefaultPhoneRegion = "US"

// AuthSession is the client side authentication state. It is replaced
// wholesale on every transition.
type AuthSession struct {
	Authenticated bool           `json:"authenticated"`
	LoginFailed   bool           `json:"loginFailed"`
	Confirmed     bool           `json:"confirmed"`
	ConfirmFailed bool           `json:"confirmFailed"`
	SignedUp      bool           `json:"signedup"`
	SignupFailed  bool           `json:"signupFailed"`
	Name          string         `json:"name,omitempty"`
	Username      string         `json:"username,omitempty"`
	JWTToken      string         `json:"jwtToken,omitempty"`
	AuthToken     any            `json:"authToken,omitempty"`
	Error         *ProviderError `json:"error,omitempty"`
}

// UnauthenticatedSession is the default session: every flag false and no
// identity attached.
func UnauthenticatedSession() AuthSession {
	return AuthSession{}
}

// IsUnauthenticated reports whether s is the default session
func (s AuthSession) IsUnauthenticated() bool {
	return !s.Authenticated && !s.LoginFailed &&
		!s.Confirmed && !s.ConfirmFailed &&
		!s.SignedUp && !s.SignupFailed &&
		s.Name == "" && s.Username == "" && s.JWTToken == "" &&
		s.AuthToken == nil && s.Error == nil
}

// SignupForm is the sign-up form payload
type SignupForm struct {
	Name        string `json:"name" form:"name"`
	Email       string `json:"email" form:"email"`
	PhoneNumber string `json:"phone_number" form:"phone_number"`
	Password    string `json:"password" form:"password"`
}

// Validate checks the form fields
func (f SignupForm) Validate() error {
	return validation.ValidateStruct(&f,
		validation.Field(&f.Name, validation.Required, validation.Length(1, 200)),
		validation.Field(&f.Email, validation.Required, validation.Length(6, 100), is.Email),
		validation.Field(&f.PhoneNumber, validation.Required),
		validation.Field(&f.Password, validation.Required, validation.Length(8, 100)),
	)
}

// Attributes returns the provider attribute list for the form
func (f SignupForm) Attributes(phone string) []Attribute {
	return []Attribute{
		{Name: "phone_number", Value: phone},
		{Name: "email", Value: f.Email},
		{Name: "name", Value: f.Name},
	}
}

// LoginForm is the sign-in form payload
type LoginForm struct {
	Username string `json:"username" form:"username"`
	Password string `json:"password" form:"password"`
}

// Validate checks the form fields
func (f LoginForm) Validate() error {
	return validation.ValidateStruct(&f,
		validation.Field(&f.Username, validation.Required),
		validation.Field(&f.Password, validation.Required),
	)
}

// ConfirmForm is the confirmation form payload
type ConfirmForm struct {
	Username string `json:"username" form:"username"`
	Code     string `json:"code" form:"code"`
}

// Validate checks the form fields
func (f ConfirmForm) Validate() error {
	return validation.ValidateStruct(&f,
		validation.Field(&f.Username, validation.Required),
		validation.Field(&f.Code, validation.Required, validation.Length(1, 16), is.Digit),
	)
}

// NormalizePhoneNumber formats number in E.164, the format identity
// providers expect for the phone_number attribute.
func NormalizePhoneNumber(number, region string) (string, error) {
	if region == "" {
		region = DefaultPhoneRegion
	}
	num, err := phonenumbers.Parse(strings.TrimSpace(number), region)
	if err != nil {
		return "", err
	}
	if !phonenumbers.IsValidNumber(num) {
		return "", errInvalidPhone
	}
	return phonenumbers.Format(num, phonenumbers.E164), nil
}
