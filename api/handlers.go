package api

import (
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/gofiber/fiber/v2"
	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-todos"
	"github.com/google/uuid"
)

// QueryResult is the GET /todos response body
type QueryResult struct {
	Items []*todos.TodoItem `json:"Items"`
	Count int               `json:"Count"`
}

// TodoPayload is the POST /todos request body. Any ownerId sent by the
// client is ignored. CreatedAt echoes what GET returned so updates keep
// the original creation time.
type TodoPayload struct {
	TodoID    string          `json:"todoId"`
	Text      string          `json:"text"`
	TodoState todos.TodoState `json:"todoState"`
	CreatedAt time.Time       `json:"createdAt"`
}

// Validate checks the payload
func (p TodoPayload) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.Text, validation.Required),
		validation.Field(&p.TodoState, validation.In(todos.TodoStateActive, todos.TodoStateArchived)),
	)
}

func (s *Server) health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}

func (s *Server) listTodos(c *fiber.Ctx) error {
	owner, err := s.owner(c)
	if err != nil {
		return err
	}

	items, err := s.store.ListActive(c.UserContext(), owner)
	if err != nil {
		return err
	}

	return c.JSON(QueryResult{Items: items, Count: len(items)})
}

func (s *Server) createTodo(c *fiber.Ctx) error {
	owner, err := s.owner(c)
	if err != nil {
		return err
	}

	payload := TodoPayload{}
	if err := c.BodyParser(&payload); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryBadInput, "invalid request body").
			WithTextCode("INVALID_BODY").
			WithCode(goerrors.CodeBadRequest)
	}

	payload.Text = strings.TrimSpace(payload.Text)
	if err := payload.Validate(); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryValidation, "invalid todo item").
			WithTextCode(todos.TextCodeInvalidItem).
			WithCode(goerrors.CodeBadRequest)
	}

	item := &todos.TodoItem{
		OwnerID:   owner,
		TodoID:    strings.TrimSpace(payload.TodoID),
		Text:      payload.Text,
		TodoState: payload.TodoState,
		CreatedAt: payload.CreatedAt.UTC(),
	}
	if item.TodoID == "" {
		item.TodoID = uuid.NewString()
	}

	if err := s.store.Save(c.UserContext(), item); err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(item)
}

func (s *Server) owner(c *fiber.Ctx) (string, error) {
	claims, ok := ClaimsFromContext(c)
	if !ok || claims.Username() == "" {
		return "", ErrJWTMissingOrMalformed
	}
	return claims.Username(), nil
}
