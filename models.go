package todos

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/google/uuid"
)

// TodoState is the lifecycle flag of an item
type TodoState string

const (
	// TodoStateActive items show up in listings
	TodoStateActive TodoState = "active"
	// TodoStateArchived is the terminal soft-delete state
	TodoStateArchived TodoState = "archived"
)

// IsValid reports whether s is one of the known states
func (s TodoState) IsValid() bool {
	return s == TodoStateActive || s == TodoStateArchived
}

const maxTodoTextLength = 2000

// TodoItem is a single to-do entry. (OwnerID, TodoID) is the item key.
type TodoItem struct {
	OwnerID   string    `json:"ownerId" dynamodbav:"ownerId"`
	TodoID    string    `json:"todoId" dynamodbav:"todoId"`
	Text      string    `json:"text" dynamodbav:"text"`
	TodoState TodoState `json:"todoState" dynamodbav:"todoState"`
	CreatedAt time.Time `json:"createdAt" dynamodbav:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt" dynamodbav:"updatedAt"`
}

// NewTodoItem creates an active item with a fresh id
func NewTodoItem(ownerID, text string) *TodoItem {
	return &TodoItem{
		OwnerID:   ownerID,
		TodoID:    uuid.NewString(),
		Text:      text,
		TodoState: TodoStateActive,
	}
}

// IsArchived reports whether the item has been archived
func (t *TodoItem) IsArchived() bool {
	return t != nil && t.TodoState == TodoStateArchived
}

// Clone returns a shallow copy
func (t *TodoItem) Clone() *TodoItem {
	if t == nil {
		return nil
	}
	c := *t
	return &c
}

// Validate checks the item before it is written
func (t TodoItem) Validate() error {
	return validation.ValidateStruct(&t,
		validation.Field(&t.OwnerID, validation.Required),
		validation.Field(&t.TodoID, validation.Required),
		validation.Field(&t.Text, validation.Required, validation.Length(1, maxTodoTextLength)),
		validation.Field(&t.TodoState, validation.Required, validation.In(TodoStateActive, TodoStateArchived)),
	)
}

// Attribute is a name/value user attribute sent on sign-up
type Attribute struct {
	Name  string `json:"Name"`
	Value string `json:"Value"`
}
