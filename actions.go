package todos

import "sync"

// ActionType tags which transition produced an Action
type ActionType string

const (
	ActionValidateUser      ActionType = "VALIDATE_USER"
	ActionSignupUser        ActionType = "SIGNUP_USER"
	ActionSignupUserFailed  ActionType = "SIGNUP_USER_FAILED"
	ActionLoginUser         ActionType = "LOGIN_USER"
	ActionLoginUserFailed   ActionType = "LOGIN_USER_FAILED"
	ActionConfirmUser       ActionType = "CONFIRM_USER"
	ActionConfirmUserFailed ActionType = "CONFIRM_USER_FAILED"
	ActionLogoutUser        ActionType = "LOGOUT_USER"
)

// IsFailure reports whether the action reports a failed transition
func (t ActionType) IsFailure() bool {
	switch t {
	case ActionSignupUserFailed, ActionLoginUserFailed, ActionConfirmUserFailed:
		return true
	}
	return false
}

// Action is the {type, payload} envelope delivered to a Dispatcher
type Action struct {
	Type    ActionType  `json:"type"`
	Payload AuthSession `json:"payload"`
}

// Dispatcher receives every transition outcome
type Dispatcher interface {
	Dispatch(action Action)
}

// DispatchFunc adapts a function to the Dispatcher interface.
type DispatchFunc func(action Action)

// Dispatch implements Dispatcher.
func (f DispatchFunc) Dispatch(action Action) {
	if f != nil {
		f(action)
	}
}

type noopDispatcher struct{}

func (noopDispatcher) Dispatch(Action) {}

func normalizeDispatcher(d Dispatcher) Dispatcher {
	if d == nil {
		return noopDispatcher{}
	}
	return d
}

// SessionStore owns the current AuthSession. Each dispatched action
// replaces the session atomically.
type SessionStore struct {
	mu          sync.RWMutex
	current     AuthSession
	last        ActionType
	subscribers []func(Action)
}

var _ Dispatcher = (*SessionStore)(nil)

// NewSessionStore starts from the unauthenticated default
func NewSessionStore() *SessionStore {
	return &SessionStore{current: UnauthenticatedSession()}
}

// Dispatch implements Dispatcher.
func (s *SessionStore) Dispatch(action Action) {
	s.mu.Lock()
	s.current = action.Payload
	s.last = action.Type
	subs := make([]func(Action), len(s.subscribers))
	copy(subs, s.subscribers)
	s.mu.Unlock()

	for _, fn := range subs {
		fn(action)
	}
}

// Current returns the current session
func (s *SessionStore) Current() AuthSession {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// LastAction returns the type of the last dispatched action
func (s *SessionStore) LastAction() ActionType {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.last
}

// Subscribe registers fn to be called after every dispatch
func (s *SessionStore) Subscribe(fn func(Action)) {
	if fn == nil {
		return
	}
	s.mu.Lock()
	s.subscribers = append(s.subscribers, fn)
	s.mu.Unlock()
}
