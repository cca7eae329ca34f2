package todos

import (
	"errors"
	"fmt"
	"net/http"

	goerrors "github.com/goliatone/go-errors"
)

const (
	// MessageFetchTodos is the fixed message surfaced when listing fails
	MessageFetchTodos = "there was an error fetching todos"
	// MessageSaveTodo is the fixed message surfaced when saving fails
	MessageSaveTodo = "there was an error saving todo"
)

const (
	TextCodeTokenMalformed = "TOKEN_MALFORMED"
	TextCodeTokenExpired   = "TOKEN_EXPIRED"
	TextCodeInvalidItem    = "INVALID_TODO_ITEM"
	TextCodeInvalidForm    = "INVALID_FORM"
)

// ErrTokenMalformed is returned when an identity token cannot be decoded
var ErrTokenMalformed = goerrors.New("identity token is malformed", goerrors.CategoryAuth).
	WithTextCode(TextCodeTokenMalformed).
	WithCode(goerrors.CodeUnauthorized)

// ErrTokenExpired is returned when an identity token is past its expiration
var ErrTokenExpired = goerrors.New("identity token is expired", goerrors.CategoryAuth).
	WithTextCode(TextCodeTokenExpired).
	WithCode(goerrors.CodeUnauthorized)

// ErrNoStoredSession is returned when storage holds no authentication result
var ErrNoStoredSession = errors.New("no stored session")

// StoreErrorKind classifies item store failures
type StoreErrorKind string

const (
	StoreErrorNotFound         StoreErrorKind = "not_found"
	StoreErrorThrottled        StoreErrorKind = "throttled"
	StoreErrorPermissionDenied StoreErrorKind = "permission_denied"
	StoreErrorUnknown          StoreErrorKind = "unknown"
)

func (k StoreErrorKind) textCode() string {
	switch k {
	case StoreErrorNotFound:
		return "STORE_NOT_FOUND"
	case StoreErrorThrottled:
		return "STORE_THROTTLED"
	case StoreErrorPermissionDenied:
		return "STORE_PERMISSION_DENIED"
	default:
		return "STORE_UNKNOWN"
	}
}

func (k StoreErrorKind) category() goerrors.Category {
	switch k {
	case StoreErrorNotFound:
		return goerrors.CategoryNotFound
	case StoreErrorThrottled:
		return goerrors.CategoryRateLimit
	case StoreErrorPermissionDenied:
		return goerrors.CategoryAuthz
	default:
		return goerrors.CategoryInternal
	}
}

func (k StoreErrorKind) status() int {
	switch k {
	case StoreErrorNotFound:
		return http.StatusNotFound
	case StoreErrorThrottled:
		return http.StatusTooManyRequests
	case StoreErrorPermissionDenied:
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

func newStoreError(message, operation string, kind StoreErrorKind, cause error) error {
	if kind == "" {
		kind = StoreErrorUnknown
	}
	err := goerrors.New(message, kind.category()).
		WithTextCode(kind.textCode()).
		WithCode(kind.status()).
		WithMetadata(map[string]any{
			"kind":      string(kind),
			"operation": operation,
		})
	err.Source = cause
	return err
}

// StoreErrorKindOf returns the kind attached to a store error. Errors that
// did not come from TodoStore report StoreErrorUnknown.
func StoreErrorKindOf(err error) StoreErrorKind {
	var richErr *goerrors.Error
	if err == nil || !goerrors.As(err, &richErr) || richErr == nil {
		return StoreErrorUnknown
	}
	if kind, ok := richErr.Metadata["kind"].(string); ok && kind != "" {
		return StoreErrorKind(kind)
	}
	return StoreErrorUnknown
}

// ProviderErrorKind is the closed set of identity provider failure kinds
type ProviderErrorKind string

const (
	ProviderErrorInvalidCredentials ProviderErrorKind = "invalid_credentials"
	ProviderErrorUserNotConfirmed   ProviderErrorKind = "user_not_confirmed"
	ProviderErrorCodeMismatch       ProviderErrorKind = "code_mismatch"
	ProviderErrorNetwork            ProviderErrorKind = "network_error"
	ProviderErrorUnknown            ProviderErrorKind = "unknown"
)

// ProviderError is the error detail carried by failed session payloads
type ProviderError struct {
	Kind    ProviderErrorKind `json:"kind"`
	Code    string            `json:"code,omitempty"`
	Message string            `json:"message"`
	Err     error             `json:"-"`
}

// NewProviderError builds a provider error with the given kind
func NewProviderError(kind ProviderErrorKind, code, message string, err error) *ProviderError {
	if kind == "" {
		kind = ProviderErrorUnknown
	}
	if message == "" && err != nil {
		message = err.Error()
	}
	return &ProviderError{
		Kind:    kind,
		Code:    code,
		Message: message,
		Err:     err,
	}
}

func (e *ProviderError) Error() string {
	if e == nil {
		return "provider error"
	}
	if e.Code != "" {
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
	if e.Message != "" {
		return e.Message
	}
	return string(e.Kind)
}

func (e *ProviderError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// AsProviderError normalizes any error into a *ProviderError. Errors that
// are not provider errors are reported as ProviderErrorUnknown.
func AsProviderError(err error) *ProviderError {
	if err == nil {
		return nil
	}
	var perr *ProviderError
	if errors.As(err, &perr) && perr != nil {
		return perr
	}
	var richErr *goerrors.Error
	if goerrors.As(err, &richErr) && richErr != nil {
		return NewProviderError(ProviderErrorUnknown, richErr.TextCode, richErr.Message, err)
	}
	return NewProviderError(ProviderErrorUnknown, "", err.Error(), err)
}

// ProviderErrorKindOf reports the kind of a provider failure
func ProviderErrorKindOf(err error) ProviderErrorKind {
	if perr := AsProviderError(err); perr != nil {
		return perr.Kind
	}
	return ""
}

// IsTokenExpiredError reports whether err signals an expired token
func IsTokenExpiredError(err error) bool {
	return hasTextCode(err, TextCodeTokenExpired)
}

// IsTokenMalformedError reports whether err signals an undecodable token
func IsTokenMalformedError(err error) bool {
	return hasTextCode(err, TextCodeTokenMalformed)
}

func hasTextCode(err error, code string) bool {
	var richErr *goerrors.Error
	if err == nil || !goerrors.As(err, &richErr) || richErr == nil {
		return false
	}
	return richErr.TextCode == code
}

func tokenError(base *goerrors.Error, cause error) error {
	clone := base.Clone()
	if clone == nil {
		return cause
	}
	clone.Source = cause
	if cause != nil {
		clone.WithMetadata(map[string]any{"cause": cause.Error()})
	}
	return clone
}
