package api

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-todos"
)

const (
	defaultTokenLookup = "header:" + fiber.HeaderAuthorization
	defaultContextKey  = "user"
)

// ErrJWTMissingOrMalformed is returned when no bearer token is present
var ErrJWTMissingOrMalformed = goerrors.New("missing or malformed JWT", goerrors.CategoryAuth).
	WithTextCode("TOKEN_MISSING").
	WithCode(goerrors.CodeUnauthorized)

// BearerConfig configures the bearer token middleware
type BearerConfig struct {
	Filter         func(*fiber.Ctx) bool
	ErrorHandler   fiber.ErrorHandler
	TokenValidator todos.TokenValidator
	// TokenLookup is a comma separated list of source:name pairs, e.g.
	// "header:Authorization,query:auth_token,cookie:jwt"
	TokenLookup string
	AuthScheme  string
}

func (cfg BearerConfig) withDefaults() BearerConfig {
	if cfg.TokenValidator == nil {
		panic("TODOS: bearer middleware configuration: TokenValidator is required.")
	}
	if cfg.ErrorHandler == nil {
		cfg.ErrorHandler = func(c *fiber.Ctx, err error) error {
			return c.Status(fiber.StatusUnauthorized).SendString("Invalid or expired token")
		}
	}
	if cfg.TokenLookup == "" {
		cfg.TokenLookup = defaultTokenLookup
	}
	if cfg.AuthScheme == "" {
		cfg.AuthScheme = "Bearer"
	}
	return cfg
}

// Bearer validates the request token and stores the claims in c.Locals
func Bearer(config BearerConfig) fiber.Handler {
	cfg := config.withDefaults()
	extractors := getExtractors(cfg.TokenLookup, cfg.AuthScheme)

	return func(c *fiber.Ctx) error {
		if cfg.Filter != nil && cfg.Filter(c) {
			return c.Next()
		}

		raw, err := extractRawToken(c, extractors)
		if err != nil {
			return cfg.ErrorHandler(c, err)
		}

		claims, err := cfg.TokenValidator.Validate(raw)
		if err != nil {
			return cfg.ErrorHandler(c, err)
		}

		c.Locals(defaultContextKey, claims)
		return c.Next()
	}
}

// ClaimsFromContext returns the claims stored by Bearer
func ClaimsFromContext(c *fiber.Ctx) (*todos.IdentityClaims, bool) {
	claims, ok := c.Locals(defaultContextKey).(*todos.IdentityClaims)
	return claims, ok && claims != nil
}

type extractor func(c *fiber.Ctx) (string, error)

func extractRawToken(c *fiber.Ctx, extractors []extractor) (string, error) {
	var raw string
	err := error(ErrJWTMissingOrMalformed)

	for _, ex := range extractors {
		raw, err = ex(c)
		if raw != "" && err == nil {
			break
		}
	}
	return raw, err
}

func getExtractors(tokenLookup, authScheme string) []extractor {
	extractors := make([]extractor, 0)

	for _, rootPart := range strings.Split(tokenLookup, ",") {
		parts := strings.Split(strings.TrimSpace(rootPart), ":")
		if len(parts) != 2 {
			continue
		}
		source, name := strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1])

		switch source {
		case "header":
			extractors = append(extractors, fromHeader(name, authScheme))
		case "query":
			extractors = append(extractors, fromQuery(name))
		case "cookie":
			extractors = append(extractors, fromCookie(name))
		}
	}

	return extractors
}

func fromHeader(header, authScheme string) extractor {
	authScheme = strings.TrimSpace(authScheme)
	return func(c *fiber.Ctx) (string, error) {
		a := c.Get(header)
		l := len(authScheme)
		if l == 0 {
			if token := strings.TrimSpace(a); token != "" {
				return token, nil
			}
			return "", ErrJWTMissingOrMalformed
		}
		// scheme, one space, then the token
		if len(a) > l+1 && a[l] == ' ' && strings.EqualFold(a[:l], authScheme) {
			if token := strings.TrimSpace(a[l+1:]); token != "" {
				return token, nil
			}
		}
		return "", ErrJWTMissingOrMalformed
	}
}

func fromQuery(param string) extractor {
	return func(c *fiber.Ctx) (string, error) {
		if token := c.Query(param); token != "" {
			return token, nil
		}
		return "", ErrJWTMissingOrMalformed
	}
}

func fromCookie(name string) extractor {
	return func(c *fiber.Ctx) (string, error) {
		if token := c.Cookies(name); token != "" {
			return token, nil
		}
		return "", ErrJWTMissingOrMalformed
	}
}
