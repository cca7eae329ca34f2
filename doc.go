// Package todos provides the persistence and authentication-state core of a
// small to-do application.
//
// Item store:
//   - TodoStore wraps an ItemTable (DynamoDB in production, SQLite locally)
//     with two logical operations, ListActive and Save. Archived items never
//     appear in listings and Save is a full-overwrite upsert keyed by
//     (ownerId, todoId).
//   - Failures keep the fixed human readable messages callers have always
//     seen, but carry a StoreErrorKind so callers can tell throttling from
//     permission problems. See StoreErrorKindOf.
//
// Auth state machine:
//   - AuthStateMachine mediates between UI actions and an IdentityProvider.
//     Every transition computes a full AuthSession payload, dispatches it once
//     as an Action and returns it. The machine holds no session state; the
//     dispatcher (usually a SessionStore) owns it.
//   - The last successful authentication result is kept in a Storage under
//     AuthStorageKey so ValidateUser can rehydrate a session on start up.
//
// Activity sinks:
//   - ActivitySink receives one event per transition. Sinks run best-effort,
//     errors are logged and never change the dispatched payload.
package todos
