package todos

import (
	"context"
	"strings"
	"time"

	goerrors "github.com/goliatone/go-errors"
)

// TodoStoreOption customizes store construction.
type TodoStoreOption func(*TodoStore)

// WithStoreLogger overrides the logger used to report table failures.
func WithStoreLogger(logger Logger) TodoStoreOption {
	return func(s *TodoStore) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithStoreClock injects a custom clock (useful for tests).
func WithStoreClock(clock func() time.Time) TodoStoreOption {
	return func(s *TodoStore) {
		if clock != nil {
			s.now = clock
		}
	}
}

// WithErrorClassifier overrides how table errors are classified. By default
// the table is used when it implements ErrorClassifier.
func WithErrorClassifier(c ErrorClassifier) TodoStoreOption {
	return func(s *TodoStore) {
		if c != nil {
			s.classifier = c
		}
	}
}

// TodoStore is the item store gateway. It keeps no state between calls.
type TodoStore struct {
	table      ItemTable
	classifier ErrorClassifier
	logger     Logger
	now        func() time.Time
}

// NewTodoStore returns a gateway over table
func NewTodoStore(table ItemTable, opts ...TodoStoreOption) *TodoStore {
	s := &TodoStore{
		table:  table,
		logger: defLogger{},
		now:    time.Now,
	}

	if c, ok := table.(ErrorClassifier); ok {
		s.classifier = c
	}

	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}

	return s
}

// ListActive returns the owner's items that are not archived, in the order
// the table returned them.
func (s *TodoStore) ListActive(ctx context.Context, ownerID string) ([]*TodoItem, error) {
	ownerID = strings.TrimSpace(ownerID)
	if ownerID == "" {
		return nil, goerrors.New("owner id is required", goerrors.CategoryValidation).
			WithTextCode(TextCodeInvalidItem).
			WithCode(goerrors.CodeBadRequest)
	}

	items, err := s.table.Query(ctx, QueryInput{
		OwnerID:      ownerID,
		ExcludeState: TodoStateArchived,
	})
	if err != nil {
		kind := s.classify(err)
		s.logger.Error("todo store list failed", "owner", ownerID, "kind", kind, "error", err)
		return nil, newStoreError(MessageFetchTodos, "list", kind, err)
	}

	// the table filter is authoritative, this guards adapters that ignore it
	active := make([]*TodoItem, 0, len(items))
	for _, item := range items {
		if item == nil || item.IsArchived() {
			continue
		}
		active = append(active, item)
	}

	return active, nil
}

// Save upserts item by (ownerId, todoId), overwriting every field.
// CreatedAt is set when missing and UpdatedAt on every call.
func (s *TodoStore) Save(ctx context.Context, item *TodoItem) error {
	if item == nil {
		return goerrors.New("todo item is required", goerrors.CategoryValidation).
			WithTextCode(TextCodeInvalidItem).
			WithCode(goerrors.CodeBadRequest)
	}

	// work on a copy, item is only updated once the write succeeds
	next := *item
	if next.TodoState == "" {
		next.TodoState = TodoStateActive
	}

	if err := next.Validate(); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryValidation, "invalid todo item").
			WithTextCode(TextCodeInvalidItem).
			WithCode(goerrors.CodeBadRequest)
	}

	now := s.now().UTC()
	if next.CreatedAt.IsZero() {
		next.CreatedAt = now
	}
	next.UpdatedAt = now

	if err := s.table.Put(ctx, &next); err != nil {
		kind := s.classify(err)
		s.logger.Error("todo store save failed", "owner", next.OwnerID, "todo", next.TodoID, "kind", kind, "error", err)
		return newStoreError(MessageSaveTodo, "save", kind, err)
	}

	*item = next
	return nil
}

// Add creates a new active item for ownerID and saves it
func (s *TodoStore) Add(ctx context.Context, ownerID, text string) (*TodoItem, error) {
	item := NewTodoItem(strings.TrimSpace(ownerID), strings.TrimSpace(text))
	if err := s.Save(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

// Archive flips item to archived and saves it
func (s *TodoStore) Archive(ctx context.Context, item *TodoItem) error {
	if item == nil {
		return s.Save(ctx, nil)
	}
	next := item.Clone()
	next.TodoState = TodoStateArchived
	if err := s.Save(ctx, next); err != nil {
		return err
	}
	*item = *next
	return nil
}

func (s *TodoStore) classify(err error) StoreErrorKind {
	if s.classifier == nil {
		return StoreErrorUnknown
	}
	if kind := s.classifier.ClassifyError(err); kind != "" {
		return kind
	}
	return StoreErrorUnknown
}
