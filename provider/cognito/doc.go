// Package cognito provides a todos.IdentityProvider backed by an Amazon
// Cognito user pool, and a JWKS TokenValidator for the pool's id tokens.
//
// Use IdentityProvider with todos.NewAuthStateMachine on the client side and
// TokenValidator with the api package on the backend.
package cognito
