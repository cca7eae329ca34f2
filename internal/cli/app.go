package cli

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/goliatone/go-print"
	"github.com/goliatone/go-todos"
	"github.com/goliatone/go-todos/activitymap"
	"github.com/goliatone/go-todos/config"
	"github.com/goliatone/go-todos/dynamo"
	"github.com/goliatone/go-todos/localstore"
	"github.com/goliatone/go-todos/provider/cognito"
	"github.com/goliatone/go-todos/provider/local"
	"github.com/goliatone/go-todos/repository"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

// app holds everything a command needs, built from the loaded config
type app struct {
	cfg     *config.Config
	logger  todos.Logger
	storage *localstore.File
	session *todos.SessionStore
	auth    *todos.AuthStateMachine
	store   *todos.TodoStore

	db      *bun.DB
	closers []func() error
}

func newApp(ctx context.Context, cfg *config.Config) (*app, error) {
	a := &app{
		cfg:     cfg,
		logger:  newLogger(cfg.Debug),
		session: todos.NewSessionStore(),
	}

	path := cfg.Storage.Path
	if path == "" {
		path = localstore.DefaultPath()
	}
	a.storage = localstore.NewFile(path)

	table, err := a.buildTable(ctx)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.store = todos.NewTodoStore(table, todos.WithStoreLogger(a.logger))

	provider, err := a.buildProvider(ctx)
	if err != nil {
		a.Close()
		return nil, err
	}

	a.auth = todos.NewAuthStateMachine(provider, a.storage, a.session,
		todos.WithStateMachineLogger(a.logger),
		todos.WithPhoneRegion(cfg.PhoneRegion),
		todos.WithDebug(cfg.Debug),
		todos.WithStateMachineActivitySink(activitymap.Sink(func(r activitymap.Record) {
			a.logger.Debug("activity", "record", print.MaybePrettyJSON(r))
		}, activitymap.WithChannel("cli"))),
	)

	return a, nil
}

func (a *app) buildTable(ctx context.Context) (todos.ItemTable, error) {
	switch a.cfg.Backend {
	case config.BackendSQLite:
		db, err := a.sqlDB()
		if err != nil {
			return nil, err
		}
		table := repository.NewTodoTable(db)
		if err := table.CreateTable(ctx); err != nil {
			return nil, fmt.Errorf("failed to create todos table: %w", err)
		}
		return table, nil
	default:
		client, err := dynamo.NewClient(ctx, dynamo.ClientConfig{
			Region:   a.cfg.AWS.Region,
			Endpoint: a.cfg.AWS.Endpoint,
		})
		if err != nil {
			return nil, err
		}
		return dynamo.New(client,
			dynamo.WithTableName(a.cfg.Dynamo.Table),
			dynamo.WithConsistentRead(a.cfg.Dynamo.ConsistentRead),
			dynamo.WithLogger(a.logger),
		), nil
	}
}

func (a *app) buildProvider(ctx context.Context) (todos.IdentityProvider, error) {
	switch a.cfg.Provider {
	case config.ProviderLocal:
		db, err := a.sqlDB()
		if err != nil {
			return nil, err
		}
		if err := local.CreateUsersTable(ctx, db); err != nil {
			return nil, fmt.Errorf("failed to create users table: %w", err)
		}
		return local.NewIdentityProvider(a.localConfig(), db, local.WithLogger(a.logger))
	default:
		cfg := a.cognitoConfig()
		client, err := cognito.NewClient(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return cognito.NewIdentityProvider(cfg, client, cognito.WithLogger(a.logger))
	}
}

// tokenValidator is built on demand, the cognito validator fetches the
// pool key set when created.
func (a *app) tokenValidator() (todos.TokenValidator, error) {
	switch a.cfg.Provider {
	case config.ProviderLocal:
		return local.NewTokenValidator(a.localConfig())
	default:
		v, err := cognito.NewTokenValidator(a.cognitoConfig())
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, func() error {
			v.Close()
			return nil
		})
		return v, nil
	}
}

func (a *app) localConfig() local.Config {
	return local.Config{SigningKey: []byte(a.cfg.Local.SigningKey)}
}

func (a *app) cognitoConfig() cognito.Config {
	return cognito.Config{
		Region:       a.cfg.AWS.Region,
		UserPoolID:   a.cfg.Cognito.UserPoolID,
		ClientID:     a.cfg.Cognito.ClientID,
		ClientSecret: a.cfg.Cognito.ClientSecret,
		Endpoint:     a.cfg.AWS.Endpoint,
	}
}

// sqlDB opens the sqlite database once, shared by the todo table and the
// local users table.
func (a *app) sqlDB() (*bun.DB, error) {
	if a.db != nil {
		return a.db, nil
	}

	sqldb, err := sql.Open(sqliteshim.ShimName, a.cfg.Local.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	sqldb.SetMaxOpenConns(1)

	a.db = bun.NewDB(sqldb, sqlitedialect.New())
	a.closers = append(a.closers, a.db.Close)
	return a.db, nil
}

// owner restores the stored session and returns its username
func (a *app) owner(ctx context.Context) (string, error) {
	action := a.auth.ValidateUser(ctx)
	if !action.Payload.Authenticated || action.Payload.Username == "" {
		return "", errNotLoggedIn
	}
	return action.Payload.Username, nil
}

func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			a.logger.Warn("close failed", "error", err)
		}
	}
	a.closers = nil
}
