package local

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/goliatone/go-repository-bun"
	"github.com/goliatone/go-todos"
	"github.com/goliatone/hashid/pkg/hashid"
	"github.com/uptrace/bun"
)

const (
	// DefaultIssuer is the iss claim of locally minted tokens
	DefaultIssuer = "go-todos-local"
	// DefaultAudience is the aud claim, the local stand-in for a client id
	DefaultAudience = "go-todos"
	// DefaultTokenTTL matches the one hour id token lifetime of a user pool
	DefaultTokenTTL = time.Hour
)

// Config configures the local provider
type Config struct {
	SigningKey []byte
	Issuer     string
	Audience   string
	TokenTTL   time.Duration
	// HashCost is the bcrypt cost, bcrypt.DefaultCost when zero
	HashCost int
}

func (c Config) withDefaults() Config {
	if c.Issuer == "" {
		c.Issuer = DefaultIssuer
	}
	if c.Audience == "" {
		c.Audience = DefaultAudience
	}
	if c.TokenTTL == 0 {
		c.TokenTTL = DefaultTokenTTL
	}
	return c
}

var _ todos.IdentityProvider = (*IdentityProvider)(nil)

// IdentityProvider implements todos.IdentityProvider over local users
type IdentityProvider struct {
	config  Config
	db      bun.IDB
	users   repository.Repository[*User]
	logger  todos.Logger
	now     func() time.Time
	newCode func() (string, error)
}

// Option customizes the provider
type Option func(*IdentityProvider)

// WithLogger overrides the logger. Confirmation codes are written to it.
func WithLogger(logger todos.Logger) Option {
	return func(p *IdentityProvider) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// WithClock injects a custom clock (useful for tests).
func WithClock(clock func() time.Time) Option {
	return func(p *IdentityProvider) {
		if clock != nil {
			p.now = clock
		}
	}
}

// WithCodeGenerator overrides how confirmation codes are generated
func WithCodeGenerator(fn func() (string, error)) Option {
	return func(p *IdentityProvider) {
		if fn != nil {
			p.newCode = fn
		}
	}
}

// NewIdentityProvider returns a provider storing users in db
func NewIdentityProvider(cfg Config, db *bun.DB, opts ...Option) (*IdentityProvider, error) {
	if len(cfg.SigningKey) == 0 {
		return nil, fmt.Errorf("local: signing key is required")
	}
	if db == nil {
		return nil, fmt.Errorf("local: db is required")
	}

	p := &IdentityProvider{
		config:  cfg.withDefaults(),
		db:      db,
		users:   NewUsersRepository(db),
		logger:  todos.NopLogger{},
		now:     time.Now,
		newCode: NewConfirmationCode,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(p)
		}
	}
	return p, nil
}

// SignUp implements todos.IdentityProvider.
func (p *IdentityProvider) SignUp(ctx context.Context, username, password string, attributes []todos.Attribute) (*todos.SignUpResult, error) {
	username = normalizeUsername(username)

	if _, err := p.lookup(ctx, username); err == nil {
		return nil, todos.NewProviderError(todos.ProviderErrorUnknown, "UsernameExistsException", "User already exists", nil)
	} else if !repository.IsRecordNotFound(err) {
		return nil, todos.NewProviderError(todos.ProviderErrorUnknown, "", "", err)
	}

	hash, err := HashPassword(password, p.config.HashCost)
	if err != nil {
		return nil, todos.NewProviderError(todos.ProviderErrorUnknown, "InvalidPasswordException", "", err)
	}

	code, err := p.newCode()
	if err != nil {
		return nil, todos.NewProviderError(todos.ProviderErrorUnknown, "", "", err)
	}

	user := &User{
		Username:         username,
		PasswordHash:     hash,
		ConfirmationCode: code,
		CreatedAt:        p.now().UTC(),
		UpdatedAt:        p.now().UTC(),
	}
	for _, attr := range attributes {
		switch attr.Name {
		case "name":
			user.Name = attr.Value
		case "email":
			user.Email = attr.Value
		case "phone_number":
			user.PhoneNumber = attr.Value
		}
	}

	if id, err := hashid.NewUUID(username); err == nil {
		user.ID = id
	}

	created, err := p.users.CreateTx(ctx, p.db, user)
	if err != nil {
		return nil, todos.NewProviderError(todos.ProviderErrorUnknown, "", "could not create user", err)
	}

	p.logger.Info("local sign up: confirmation code", "username", username, "code", code)

	return &todos.SignUpResult{
		Username:      username,
		UserSub:       created.ID.String(),
		UserConfirmed: false,
	}, nil
}

// Authenticate implements todos.IdentityProvider.
func (p *IdentityProvider) Authenticate(ctx context.Context, username, password string) (*todos.AuthResult, error) {
	user, err := p.lookup(ctx, normalizeUsername(username))
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, errInvalidCredentials()
		}
		return nil, todos.NewProviderError(todos.ProviderErrorUnknown, "", "", err)
	}

	if err := ComparePasswordAndHash(password, user.PasswordHash); err != nil {
		return nil, errInvalidCredentials()
	}

	if !user.Confirmed {
		return nil, todos.NewProviderError(todos.ProviderErrorUserNotConfirmed, "UserNotConfirmedException", "User is not confirmed.", nil)
	}

	idToken, err := p.mint(user, "id")
	if err != nil {
		return nil, todos.NewProviderError(todos.ProviderErrorUnknown, "", "", err)
	}
	accessToken, err := p.mint(user, "access")
	if err != nil {
		return nil, todos.NewProviderError(todos.ProviderErrorUnknown, "", "", err)
	}

	result, err := todos.NewAuthResult(idToken, accessToken, "")
	if err != nil {
		return nil, todos.NewProviderError(todos.ProviderErrorUnknown, "", "", err)
	}
	result.ExpiresIn = int32(p.config.TokenTTL / time.Second)
	result.TokenType = "Bearer"

	return result, nil
}

// ConfirmRegistration implements todos.IdentityProvider.
func (p *IdentityProvider) ConfirmRegistration(ctx context.Context, username, code string) error {
	user, err := p.lookup(ctx, normalizeUsername(username))
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return todos.NewProviderError(todos.ProviderErrorInvalidCredentials, "UserNotFoundException", "Username/client id combination not found.", err)
		}
		return todos.NewProviderError(todos.ProviderErrorUnknown, "", "", err)
	}

	if user.Confirmed {
		return nil
	}

	if strings.TrimSpace(code) == "" || code != user.ConfirmationCode {
		return todos.NewProviderError(todos.ProviderErrorCodeMismatch, "CodeMismatchException", "Invalid verification code provided, please try again.", nil)
	}

	user.Confirmed = true
	user.ConfirmationCode = ""
	user.UpdatedAt = p.now().UTC()

	if _, err := p.users.UpdateTx(ctx, p.db, user, repository.UpdateByID(user.ID.String())); err != nil {
		return todos.NewProviderError(todos.ProviderErrorUnknown, "", "could not confirm user", err)
	}
	return nil
}

func (p *IdentityProvider) lookup(ctx context.Context, username string) (*User, error) {
	return p.users.GetByIdentifierTx(ctx, p.db, username)
}

func (p *IdentityProvider) mint(user *User, tokenUse string) (string, error) {
	issuedAt := p.now()
	claims := &todos.IdentityClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID.String(),
			Issuer:    p.config.Issuer,
			Audience:  jwt.ClaimStrings{p.config.Audience},
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(issuedAt.Add(p.config.TokenTTL)),
		},
		CognitoUsername: user.Username,
		TokenUse:        tokenUse,
	}
	if tokenUse == "id" {
		claims.Name = user.Name
		claims.Email = user.Email
		claims.PhoneNumber = user.PhoneNumber
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(p.config.SigningKey)
}

func errInvalidCredentials() error {
	return todos.NewProviderError(todos.ProviderErrorInvalidCredentials, "NotAuthorizedException", "Incorrect username or password.", nil)
}

func normalizeUsername(username string) string {
	return strings.ToLower(strings.TrimSpace(username))
}
