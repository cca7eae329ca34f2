package todos

import (
	"context"
	"fmt"
	"strings"
)

type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// QueryInput describes a partition query with an optional exclusion filter
type QueryInput struct {
	OwnerID      string
	ExcludeState TodoState
}

// ItemTable is the managed key-value table holding to-do items.
// Partition key is ownerId, sort key is todoId.
type ItemTable interface {
	Query(ctx context.Context, input QueryInput) ([]*TodoItem, error)
	Put(ctx context.Context, item *TodoItem) error
}

// ErrorClassifier is implemented by tables that can tell what kind of
// failure a native error represents.
type ErrorClassifier interface {
	ClassifyError(err error) StoreErrorKind
}

// SignUpResult is returned by a successful provider sign-up
type SignUpResult struct {
	Username      string `json:"username"`
	UserSub       string `json:"userSub,omitempty"`
	UserConfirmed bool   `json:"userConfirmed"`
}

// IdentityProvider is the managed identity service. Implementations must
// return *ProviderError (or something wrapping one) on failure.
type IdentityProvider interface {
	SignUp(ctx context.Context, username, password string, attributes []Attribute) (*SignUpResult, error)
	Authenticate(ctx context.Context, username, password string) (*AuthResult, error)
	ConfirmRegistration(ctx context.Context, username, code string) error
}

// Storage is the local persisted key-value storage used to keep the last
// successful authentication across restarts.
type Storage interface {
	Get(key string) (string, bool, error)
	Set(key, value string) error
	Remove(key string) error
}

// TokenValidator validates identity tokens presented to the backend
type TokenValidator interface {
	Validate(tokenString string) (*IdentityClaims, error)
}

// TokenValidatorFunc adapts a function into a TokenValidator.
type TokenValidatorFunc func(tokenString string) (*IdentityClaims, error)

// Validate satisfies the TokenValidator interface.
func (f TokenValidatorFunc) Validate(tokenString string) (*IdentityClaims, error) {
	if f == nil {
		return nil, ErrTokenMalformed
	}
	return f(tokenString)
}

type defLogger struct{}

func (d defLogger) Error(msg string, args ...any) {
	fmt.Print("[ERR] TODOS " + line(msg, args...))
}

func (d defLogger) Warn(msg string, args ...any) {
	fmt.Print("[WRN] TODOS " + line(msg, args...))
}

func (d defLogger) Info(msg string, args ...any) {
	fmt.Print("[INF] TODOS " + line(msg, args...))
}

func (d defLogger) Debug(msg string, args ...any) {
	fmt.Print("[DBG] TODOS " + line(msg, args...))
}

func line(msg string, args ...any) string {
	var b strings.Builder
	b.WriteString(msg)
	for i := 0; i < len(args); i += 2 {
		if i+1 < len(args) {
			fmt.Fprintf(&b, " %v=%v", args[i], args[i+1])
		} else {
			fmt.Fprintf(&b, " %v", args[i])
		}
	}
	b.WriteString("\n")
	return b.String()
}

// NopLogger discards everything
type NopLogger struct{}

func (NopLogger) Debug(string, ...any) {}
func (NopLogger) Info(string, ...any)  {}
func (NopLogger) Warn(string, ...any)  {}
func (NopLogger) Error(string, ...any) {}
