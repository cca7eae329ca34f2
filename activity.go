package todos

import (
	"context"
	"time"
)

// ActivityEventType enumerates supported activity categories.
type ActivityEventType string

const (
	ActivityEventSessionRestored ActivityEventType = "auth.session.restored"
	ActivityEventSignupSuccess   ActivityEventType = "auth.signup.success"
	ActivityEventSignupFailure   ActivityEventType = "auth.signup.failure"
	ActivityEventLoginSuccess    ActivityEventType = "auth.login.success"
	ActivityEventLoginFailure    ActivityEventType = "auth.login.failure"
	ActivityEventConfirmSuccess  ActivityEventType = "auth.confirm.success"
	ActivityEventConfirmFailure  ActivityEventType = "auth.confirm.failure"
	ActivityEventLogout          ActivityEventType = "auth.logout"
)

// MetadataSessionPersisted reports on login events whether the result was
// written to storage
const MetadataSessionPersisted = "session_persisted"

// ActivityEvent captures audit-friendly information about a transition.
type ActivityEvent struct {
	EventType  ActivityEventType
	Action     ActionType
	Username   string
	ErrorKind  ProviderErrorKind
	Metadata   map[string]any
	OccurredAt time.Time
}

// ActivitySink consumes activity events for auditing/telemetry purposes.
type ActivitySink interface {
	Record(ctx context.Context, event ActivityEvent) error
}

// ActivitySinkFunc adapts a function to the ActivitySink interface.
type ActivitySinkFunc func(ctx context.Context, event ActivityEvent) error

// Record implements ActivitySink.
func (f ActivitySinkFunc) Record(ctx context.Context, event ActivityEvent) error {
	if f == nil {
		return nil
	}
	return f(ctx, event)
}

type noopActivitySink struct{}

func (noopActivitySink) Record(context.Context, ActivityEvent) error {
	return nil
}

func normalizeActivitySink(s ActivitySink) ActivitySink {
	if s == nil {
		return noopActivitySink{}
	}
	return s
}
