// Package repository stores to-do items in a SQL table through bun. It is
// the local development stand-in for the managed DynamoDB table.
package repository

import (
	"context"
	"strings"
	"time"

	"github.com/goliatone/go-todos"
	"github.com/uptrace/bun"
)

// TodoModel is the bun model for to-do items. (owner_id, todo_id) is the
// composite primary key, matching the DynamoDB partition and sort keys.
type TodoModel struct {
	bun.BaseModel `bun:"table:todos"`

	OwnerID   string    `bun:"owner_id,pk,notnull"`
	TodoID    string    `bun:"todo_id,pk,notnull"`
	Text      string    `bun:"text,notnull"`
	TodoState string    `bun:"todo_state,notnull,default:'active'"`
	CreatedAt time.Time `bun:"created_at,notnull,default:current_timestamp"`
	UpdatedAt time.Time `bun:"updated_at,notnull,default:current_timestamp"`
}

var (
	_ todos.ItemTable       = (*TodoTable)(nil)
	_ todos.ErrorClassifier = (*TodoTable)(nil)
)

// TodoTable implements todos.ItemTable using bun
type TodoTable struct {
	db bun.IDB
}

// NewTodoTable creates a new table over db
func NewTodoTable(db bun.IDB) *TodoTable {
	return &TodoTable{db: db}
}

// CreateTable creates the todos table if it does not exist
func (r *TodoTable) CreateTable(ctx context.Context) error {
	_, err := r.db.NewCreateTable().
		Model((*TodoModel)(nil)).
		IfNotExists().
		Exec(ctx)
	return err
}

// Query implements todos.ItemTable. Rows come back in todo_id order, the
// same order a DynamoDB sort key yields.
func (r *TodoTable) Query(ctx context.Context, input todos.QueryInput) ([]*todos.TodoItem, error) {
	var models []TodoModel
	q := r.db.NewSelect().
		Model(&models).
		Where("owner_id = ?", input.OwnerID)

	if input.ExcludeState != "" {
		q = q.Where("todo_state <> ?", string(input.ExcludeState))
	}

	if err := q.Order("todo_id ASC").Scan(ctx); err != nil {
		return nil, err
	}

	items := make([]*todos.TodoItem, len(models))
	for i := range models {
		items[i] = toTodoItem(&models[i])
	}
	return items, nil
}

// Put implements todos.ItemTable. Every column is overwritten on conflict.
func (r *TodoTable) Put(ctx context.Context, item *todos.TodoItem) error {
	model := fromTodoItem(item)
	_, err := r.db.NewInsert().
		Model(model).
		On("CONFLICT (owner_id, todo_id) DO UPDATE").
		Set("text = EXCLUDED.text").
		Set("todo_state = EXCLUDED.todo_state").
		Set("created_at = EXCLUDED.created_at").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)
	return err
}

// ClassifyError implements todos.ErrorClassifier for SQLite errors
func (r *TodoTable) ClassifyError(err error) todos.StoreErrorKind {
	if err == nil {
		return ""
	}
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "no such table"):
		return todos.StoreErrorNotFound
	case strings.Contains(msg, "database is locked"), strings.Contains(msg, "busy"):
		return todos.StoreErrorThrottled
	case strings.Contains(msg, "readonly"), strings.Contains(msg, "permission denied"):
		return todos.StoreErrorPermissionDenied
	}
	return todos.StoreErrorUnknown
}

func toTodoItem(m *TodoModel) *todos.TodoItem {
	return &todos.TodoItem{
		OwnerID:   m.OwnerID,
		TodoID:    m.TodoID,
		Text:      m.Text,
		TodoState: todos.TodoState(m.TodoState),
		CreatedAt: m.CreatedAt.UTC(),
		UpdatedAt: m.UpdatedAt.UTC(),
	}
}

func fromTodoItem(item *todos.TodoItem) *TodoModel {
	return &TodoModel{
		OwnerID:   item.OwnerID,
		TodoID:    item.TodoID,
		Text:      item.Text,
		TodoState: string(item.TodoState),
		CreatedAt: item.CreatedAt,
		UpdatedAt: item.UpdatedAt,
	}
}
