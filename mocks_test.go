package todos_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/goliatone/go-todos"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockIdentityProvider implements todos.IdentityProvider
type MockIdentityProvider struct {
	mock.Mock
}

func (m *MockIdentityProvider) SignUp(ctx context.Context, username, password string, attributes []todos.Attribute) (*todos.SignUpResult, error) {
	args := m.Called(ctx, username, password, attributes)
	res, _ := args.Get(0).(*todos.SignUpResult)
	return res, args.Error(1)
}

func (m *MockIdentityProvider) Authenticate(ctx context.Context, username, password string) (*todos.AuthResult, error) {
	args := m.Called(ctx, username, password)
	res, _ := args.Get(0).(*todos.AuthResult)
	return res, args.Error(1)
}

func (m *MockIdentityProvider) ConfirmRegistration(ctx context.Context, username, code string) error {
	args := m.Called(ctx, username, code)
	return args.Error(0)
}

// MockItemTable implements todos.ItemTable
type MockItemTable struct {
	mock.Mock
}

func (m *MockItemTable) Query(ctx context.Context, input todos.QueryInput) ([]*todos.TodoItem, error) {
	args := m.Called(ctx, input)
	items, _ := args.Get(0).([]*todos.TodoItem)
	return items, args.Error(1)
}

func (m *MockItemTable) Put(ctx context.Context, item *todos.TodoItem) error {
	args := m.Called(ctx, item)
	return args.Error(0)
}

// classifyingTable adds an ErrorClassifier to MockItemTable
type classifyingTable struct {
	MockItemTable
	kind todos.StoreErrorKind
}

func (c *classifyingTable) ClassifyError(error) todos.StoreErrorKind {
	return c.kind
}

// memoryTable is a keyed in-memory table honoring the exclusion filter
type memoryTable struct {
	mu    sync.Mutex
	order []string
	items map[string]*todos.TodoItem
}

func newMemoryTable() *memoryTable {
	return &memoryTable{items: map[string]*todos.TodoItem{}}
}

func (t *memoryTable) Query(_ context.Context, input todos.QueryInput) ([]*todos.TodoItem, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := []*todos.TodoItem{}
	for _, key := range t.order {
		item := t.items[key]
		if item.OwnerID != input.OwnerID {
			continue
		}
		if input.ExcludeState != "" && item.TodoState == input.ExcludeState {
			continue
		}
		out = append(out, item.Clone())
	}
	return out, nil
}

func (t *memoryTable) Put(_ context.Context, item *todos.TodoItem) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	key := item.OwnerID + "#" + item.TodoID
	if _, ok := t.items[key]; !ok {
		t.order = append(t.order, key)
	}
	t.items[key] = item.Clone()
	return nil
}

func (t *memoryTable) len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.items)
}

// recordingDispatcher keeps every dispatched action
type recordingDispatcher struct {
	mu      sync.Mutex
	actions []todos.Action
}

func (r *recordingDispatcher) Dispatch(action todos.Action) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.actions = append(r.actions, action)
}

func (r *recordingDispatcher) all() []todos.Action {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]todos.Action, len(r.actions))
	copy(out, r.actions)
	return out
}

func signIDToken(t *testing.T, name, username string, expires time.Time) string {
	t.Helper()
	claims := &todos.IdentityClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "sub-" + username,
			Issuer:    "https://cognito-idp.us-west-2.amazonaws.com/us-west-2_test",
			IssuedAt:  jwt.NewNumericDate(expires.Add(-time.Hour)),
			ExpiresAt: jwt.NewNumericDate(expires),
		},
		Name:            name,
		Email:           username,
		CognitoUsername: username,
		TokenUse:        "id",
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return token
}

func newAuthResult(t *testing.T, name, username string, expires time.Time) *todos.AuthResult {
	t.Helper()
	res, err := todos.NewAuthResult(signIDToken(t, name, username, expires), "", "refresh-token")
	require.NoError(t, err)
	return res
}
