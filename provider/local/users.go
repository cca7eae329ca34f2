// Package local provides a development todos.IdentityProvider. Users live
// in a SQL table, passwords are bcrypt hashes and identity tokens are HS256
// JWTs shaped like the ones a managed user pool issues.
package local

import (
	"context"
	"time"

	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// User is the bun model for local users. Username is the sign-up email.
type User struct {
	bun.BaseModel `bun:"table:users"`

	ID               uuid.UUID `bun:"id,pk,nullzero,type:uuid"`
	Username         string    `bun:"username,notnull,unique"`
	Name             string    `bun:"name"`
	Email            string    `bun:"email"`
	PhoneNumber      string    `bun:"phone_number"`
	PasswordHash     string    `bun:"password_hash,notnull"`
	Confirmed        bool      `bun:"confirmed,notnull,default:false"`
	ConfirmationCode string    `bun:"confirmation_code"`
	CreatedAt        time.Time `bun:"created_at,notnull,default:current_timestamp"`
	UpdatedAt        time.Time `bun:"updated_at,notnull,default:current_timestamp"`
}

// NewUsersRepository returns a repository keyed by id with username as the
// lookup identifier
func NewUsersRepository(db *bun.DB) repository.Repository[*User] {
	return repository.NewRepository[*User](db, repository.ModelHandlers[*User]{
		NewRecord: func() *User { return &User{} },
		GetID: func(u *User) uuid.UUID {
			if u == nil {
				return uuid.Nil
			}
			return u.ID
		},
		SetID: func(u *User, id uuid.UUID) {
			if u != nil {
				u.ID = id
			}
		},
		GetIdentifier: func() string {
			return "username"
		},
	})
}

// CreateUsersTable creates the users table if it does not exist
func CreateUsersTable(ctx context.Context, db bun.IDB) error {
	_, err := db.NewCreateTable().
		Model((*User)(nil)).
		IfNotExists().
		Exec(ctx)
	return err
}
