package api

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"
	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-print"
)

// ErrorBody is the JSON body of every error response
type ErrorBody struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

func (s *Server) errorHandler(c *fiber.Ctx, err error) error {
	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		return c.Status(fiberErr.Code).JSON(ErrorBody{Error: fiberErr.Message})
	}

	var richErr *goerrors.Error
	if !goerrors.As(err, &richErr) {
		richErr = goerrors.Wrap(err, goerrors.CategoryInternal, "An unexpected server error occurred").
			WithCode(goerrors.CodeInternal)
	}

	status := statusFor(richErr.Category)

	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed",
			"path", c.Path(),
			"method", c.Method(),
			"error", richErr.Message,
			"text_code", richErr.TextCode,
			"source", richErr.Source,
		)
	} else {
		s.logger.Info("request rejected",
			"path", c.Path(),
			"status", status,
			"error", richErr.Message,
			"text_code", richErr.TextCode,
		)
	}

	if s.debug {
		s.logger.Debug("error details", "details", print.MaybePrettyJSON(richErr.Metadata))
	}

	return c.Status(status).JSON(ErrorBody{
		Error: richErr.Message,
		Code:  richErr.TextCode,
	})
}

func statusFor(category goerrors.Category) int {
	switch category {
	case goerrors.CategoryValidation, goerrors.CategoryBadInput:
		return http.StatusBadRequest
	case goerrors.CategoryAuth:
		return http.StatusUnauthorized
	case goerrors.CategoryAuthz:
		return http.StatusForbidden
	case goerrors.CategoryNotFound:
		return http.StatusNotFound
	case goerrors.CategoryRateLimit:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}
