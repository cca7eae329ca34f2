// Package api is the backend function exposing the item store to
// authenticated clients over HTTP.
package api

import (
	"github.com/gofiber/fiber/v2"
	"github.com/goliatone/go-todos"
)

// Routes holds the route paths
type Routes struct {
	Todos  string
	Health string
}

// DefaultRoutes returns the default paths
func DefaultRoutes() Routes {
	return Routes{
		Todos:  "/todos",
		Health: "/health",
	}
}

// Server mounts the to-do routes on a fiber app
type Server struct {
	store     *todos.TodoStore
	validator todos.TokenValidator
	logger    todos.Logger
	routes    Routes
	debug     bool
}

// Option customizes the server
type Option func(*Server)

// WithLogger overrides the logger
func WithLogger(logger todos.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithRoutes overrides the default route paths
func WithRoutes(routes Routes) Option {
	return func(s *Server) {
		if routes.Todos != "" {
			s.routes.Todos = routes.Todos
		}
		if routes.Health != "" {
			s.routes.Health = routes.Health
		}
	}
}

// WithDebug logs error details
func WithDebug(debug bool) Option {
	return func(s *Server) {
		s.debug = debug
	}
}

// NewServer returns a server over store. Requests to the to-do routes
// must carry an identity token accepted by validator.
func NewServer(store *todos.TodoStore, validator todos.TokenValidator, opts ...Option) *Server {
	s := &Server{
		store:     store,
		validator: validator,
		logger:    todos.NopLogger{},
		routes:    DefaultRoutes(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// App builds a fiber app with the routes registered
func (s *Server) App() *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               "todos",
		DisableStartupMessage: true,
		ErrorHandler:          s.errorHandler,
	})
	s.Register(app)
	return app
}

// Register mounts the routes on router
func (s *Server) Register(router fiber.Router) {
	router.Get(s.routes.Health, s.health)

	protected := Bearer(BearerConfig{
		TokenValidator: s.validator,
		ErrorHandler:   s.errorHandler,
	})

	router.Get(s.routes.Todos, protected, s.listTodos)
	router.Post(s.routes.Todos, protected, s.createTodo)
}
