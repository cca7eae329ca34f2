package todos

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-print"
)

// StateMachineOption customizes state machine construction.
type StateMachineOption func(*AuthStateMachine)

// WithStateMachineClock injects a custom clock (useful for tests).
func WithStateMachineClock(clock func() time.Time) StateMachineOption {
	return func(sm *AuthStateMachine) {
		if clock != nil {
			sm.now = clock
		}
	}
}

// WithStateMachineActivitySink sets the ActivitySink used to publish transition events.
func WithStateMachineActivitySink(sink ActivitySink) StateMachineOption {
	return func(sm *AuthStateMachine) {
		sm.activitySink = normalizeActivitySink(sink)
	}
}

// WithStateMachineLogger overrides the logger.
func WithStateMachineLogger(logger Logger) StateMachineOption {
	return func(sm *AuthStateMachine) {
		if logger != nil {
			sm.logger = logger
		}
	}
}

// WithPhoneRegion sets the region used to parse sign-up phone numbers
func WithPhoneRegion(region string) StateMachineOption {
	return func(sm *AuthStateMachine) {
		if region != "" {
			sm.phoneRegion = region
		}
	}
}

// WithDebug dumps provider results to the debug log
func WithDebug(debug bool) StateMachineOption {
	return func(sm *AuthStateMachine) {
		sm.debug = debug
	}
}

// AuthStateMachine runs authentication transitions against an
// IdentityProvider. Every transition dispatches exactly one Action and
// returns it.
type AuthStateMachine struct {
	provider     IdentityProvider
	storage      Storage
	dispatcher   Dispatcher
	activitySink ActivitySink
	logger       Logger
	now          func() time.Time
	phoneRegion  string
	debug        bool
}

// NewAuthStateMachine wires a state machine to its collaborators
func NewAuthStateMachine(provider IdentityProvider, storage Storage, dispatcher Dispatcher, opts ...StateMachineOption) *AuthStateMachine {
	sm := &AuthStateMachine{
		provider:     provider,
		storage:      storage,
		dispatcher:   normalizeDispatcher(dispatcher),
		activitySink: noopActivitySink{},
		logger:       defLogger{},
		now:          time.Now,
		phoneRegion:  DefaultPhoneRegion,
	}

	for _, opt := range opts {
		if opt != nil {
			opt(sm)
		}
	}

	return sm
}

// ValidateUser rehydrates the session from storage. No network call.
func (sm *AuthStateMachine) ValidateUser(ctx context.Context) Action {
	return sm.run(ctx, ActionValidateUser, func() Action {
		session, err := sm.restore()
		if err != nil {
			sm.logger.Debug("validate user: no usable stored session", "error", err)
			return Action{Type: ActionValidateUser, Payload: UnauthenticatedSession()}
		}

		sm.recordActivity(ctx, ActivityEvent{
			EventType: ActivityEventSessionRestored,
			Action:    ActionValidateUser,
			Username:  session.Username,
		})

		return Action{Type: ActionValidateUser, Payload: session}
	})
}

func (sm *AuthStateMachine) restore() (AuthSession, error) {
	if sm.storage == nil {
		return AuthSession{}, ErrNoStoredSession
	}

	raw, ok, err := sm.storage.Get(AuthStorageKey)
	if err != nil {
		return AuthSession{}, err
	}
	if !ok || raw == "" {
		return AuthSession{}, ErrNoStoredSession
	}

	result, err := ParseAuthResult(raw)
	if err != nil {
		return AuthSession{}, err
	}

	claims, err := result.IdentityClaims()
	if err != nil {
		return AuthSession{}, err
	}

	if claims.IsExpired(sm.now()) {
		return AuthSession{}, ErrTokenExpired
	}

	return AuthSession{
		Authenticated: true,
		Confirmed:     true,
		SignedUp:      true,
		Name:          claims.Name,
		Username:      claims.Username(),
		JWTToken:      result.IDToken.JWTToken,
	}, nil
}

// SignupUser registers a new user. The email doubles as username.
func (sm *AuthStateMachine) SignupUser(ctx context.Context, form SignupForm) Action {
	failed := func(err error) Action {
		perr := AsProviderError(err)
		sm.logger.Error("signup user failed", "email", form.Email, "kind", perr.Kind, "error", perr)
		sm.recordActivity(ctx, ActivityEvent{
			EventType: ActivityEventSignupFailure,
			Action:    ActionSignupUserFailed,
			Username:  form.Email,
			ErrorKind: perr.Kind,
		})
		return Action{
			Type: ActionSignupUserFailed,
			Payload: AuthSession{
				SignupFailed: true,
				Error:        perr,
			},
		}
	}

	return sm.runOr(ctx, ActionSignupUserFailed, failed, func() Action {
		if err := form.Validate(); err != nil {
			return failed(invalidForm(err))
		}

		phone, err := NormalizePhoneNumber(form.PhoneNumber, sm.phoneRegion)
		if err != nil {
			return failed(invalidForm(fmt.Errorf("phone_number: %w", err)))
		}

		result, err := sm.provider.SignUp(ctx, form.Email, form.Password, form.Attributes(phone))
		if err != nil {
			return failed(err)
		}

		sm.dump("signup user result", result)
		sm.recordActivity(ctx, ActivityEvent{
			EventType: ActivityEventSignupSuccess,
			Action:    ActionSignupUser,
			Username:  form.Email,
		})

		return Action{
			Type: ActionSignupUser,
			Payload: AuthSession{
				SignedUp:  true,
				AuthToken: result,
			},
		}
	})
}

// LoginUser authenticates against the provider and persists the result so
// a later ValidateUser can restore the session.
func (sm *AuthStateMachine) LoginUser(ctx context.Context, form LoginForm) Action {
	failed := func(err error) Action {
		perr := AsProviderError(err)
		sm.logger.Error("login user failed", "username", form.Username, "kind", perr.Kind, "error", perr)
		sm.recordActivity(ctx, ActivityEvent{
			EventType: ActivityEventLoginFailure,
			Action:    ActionLoginUserFailed,
			Username:  form.Username,
			ErrorKind: perr.Kind,
		})
		return Action{
			Type: ActionLoginUserFailed,
			Payload: AuthSession{
				Authenticated: false,
				LoginFailed:   true,
				Error:         perr,
			},
		}
	}

	return sm.runOr(ctx, ActionLoginUserFailed, failed, func() Action {
		if err := form.Validate(); err != nil {
			return failed(invalidForm(err))
		}

		result, err := sm.provider.Authenticate(ctx, form.Username, form.Password)
		if err != nil {
			return failed(err)
		}
		if result == nil {
			return failed(NewProviderError(ProviderErrorUnknown, "", "provider returned no authentication result", nil))
		}

		claims, err := result.IdentityClaims()
		if err != nil {
			return failed(err)
		}

		persisted := true
		if err := sm.persist(result); err != nil {
			// the session is authenticated but will not survive a restart
			persisted = false
			sm.logger.Error("login user: unable to persist session", "username", claims.Username(), "error", err)
		}

		sm.dump("login user result", result)
		sm.recordActivity(ctx, ActivityEvent{
			EventType: ActivityEventLoginSuccess,
			Action:    ActionLoginUser,
			Username:  claims.Username(),
			Metadata:  map[string]any{MetadataSessionPersisted: persisted},
		})

		return Action{
			Type: ActionLoginUser,
			Payload: AuthSession{
				Authenticated: true,
				Name:          claims.Name,
				Username:      claims.Username(),
				JWTToken:      result.IDToken.JWTToken,
			},
		}
	})
}

func (sm *AuthStateMachine) persist(result *AuthResult) error {
	if sm.storage == nil {
		return nil
	}
	raw, err := json.Marshal(result)
	if err != nil {
		return err
	}
	return sm.storage.Set(AuthStorageKey, string(raw))
}

// ConfirmUser confirms a registration with the one-time code
func (sm *AuthStateMachine) ConfirmUser(ctx context.Context, form ConfirmForm) Action {
	failed := func(err error) Action {
		perr := AsProviderError(err)
		sm.logger.Error("confirm user failed", "username", form.Username, "kind", perr.Kind, "error", perr)
		sm.recordActivity(ctx, ActivityEvent{
			EventType: ActivityEventConfirmFailure,
			Action:    ActionConfirmUserFailed,
			Username:  form.Username,
			ErrorKind: perr.Kind,
		})
		return Action{
			Type: ActionConfirmUserFailed,
			Payload: AuthSession{
				Confirmed:     false,
				ConfirmFailed: true,
				Error:         perr,
			},
		}
	}

	return sm.runOr(ctx, ActionConfirmUserFailed, failed, func() Action {
		if err := form.Validate(); err != nil {
			return failed(invalidForm(err))
		}

		if err := sm.provider.ConfirmRegistration(ctx, form.Username, form.Code); err != nil {
			return failed(err)
		}

		sm.recordActivity(ctx, ActivityEvent{
			EventType: ActivityEventConfirmSuccess,
			Action:    ActionConfirmUser,
			Username:  form.Username,
		})

		return Action{
			Type: ActionConfirmUser,
			Payload: AuthSession{
				Confirmed: true,
				Error:     nil,
			},
		}
	})
}

// LogoutUser clears the stored session and dispatches the default payload.
// No network call.
func (sm *AuthStateMachine) LogoutUser(ctx context.Context) Action {
	return sm.run(ctx, ActionLogoutUser, func() Action {
		if sm.storage != nil {
			if err := sm.storage.Remove(AuthStorageKey); err != nil {
				sm.logger.Warn("logout user: unable to clear stored session", "error", err)
			}
		}

		sm.recordActivity(ctx, ActivityEvent{
			EventType: ActivityEventLogout,
			Action:    ActionLogoutUser,
		})

		return Action{Type: ActionLogoutUser, Payload: UnauthenticatedSession()}
	})
}

// Async runs transition on its own goroutine. The returned channel receives
// the dispatched action once and is then closed.
func Async(ctx context.Context, transition func(ctx context.Context) Action) <-chan Action {
	out := make(chan Action, 1)
	go func() {
		defer close(out)
		out <- transition(ctx)
	}()
	return out
}

func (sm *AuthStateMachine) run(ctx context.Context, failType ActionType, fn func() Action) Action {
	return sm.runOr(ctx, failType, func(err error) Action {
		return Action{Type: failType, Payload: UnauthenticatedSession()}
	}, fn)
}

// runOr resolves a transition exactly once. A panic inside fn resolves as
// the failure produced by onPanic.
func (sm *AuthStateMachine) runOr(ctx context.Context, failType ActionType, onPanic func(error) Action, fn func() Action) Action {
	r := &resolver{dispatcher: sm.dispatcher}

	func() {
		defer func() {
			if rec := recover(); rec != nil {
				sm.logger.Error("transition panicked", "action", failType, "panic", rec)
				r.resolve(onPanic(NewProviderError(
					ProviderErrorUnknown,
					"",
					fmt.Sprintf("transition panicked: %v", rec),
					nil,
				)))
			}
		}()
		r.resolve(fn())
	}()

	return r.action
}

type resolver struct {
	once       sync.Once
	dispatcher Dispatcher
	action     Action
}

func (r *resolver) resolve(action Action) {
	r.once.Do(func() {
		r.action = action
		r.dispatcher.Dispatch(action)
	})
}

func invalidForm(err error) error {
	rich := goerrors.Wrap(err, goerrors.CategoryValidation, "invalid form data").
		WithTextCode(TextCodeInvalidForm).
		WithCode(goerrors.CodeBadRequest)
	return NewProviderError(ProviderErrorUnknown, TextCodeInvalidForm, err.Error(), rich)
}

func (sm *AuthStateMachine) dump(msg string, v any) {
	if !sm.debug {
		return
	}
	sm.logger.Debug(msg, "result", print.MaybePrettyJSON(v))
}

func (sm *AuthStateMachine) recordActivity(ctx context.Context, event ActivityEvent) {
	if event.OccurredAt.IsZero() {
		event.OccurredAt = sm.now()
	}

	sink := normalizeActivitySink(sm.activitySink)
	if err := sink.Record(ctx, event); err != nil {
		sm.logger.Warn("state machine activity sink error", "error", err)
	}
}
