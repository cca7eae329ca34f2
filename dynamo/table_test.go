package dynamo_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/aws/smithy-go"
	"github.com/goliatone/go-todos"
	"github.com/goliatone/go-todos/dynamo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockAPI struct {
	mock.Mock
}

func (m *MockAPI) Query(ctx context.Context, params *dynamodb.QueryInput, _ ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error) {
	args := m.Called(ctx, params)
	out, _ := args.Get(0).(*dynamodb.QueryOutput)
	return out, args.Error(1)
}

func (m *MockAPI) PutItem(ctx context.Context, params *dynamodb.PutItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	args := m.Called(ctx, params)
	out, _ := args.Get(0).(*dynamodb.PutItemOutput)
	return out, args.Error(1)
}

func marshalItems(t *testing.T, items ...*todos.TodoItem) []map[string]types.AttributeValue {
	t.Helper()
	out := make([]map[string]types.AttributeValue, 0, len(items))
	for _, item := range items {
		av, err := attributevalue.MarshalMap(item)
		require.NoError(t, err)
		out = append(out, av)
	}
	return out
}

func TestQueryBuildsKeyConditionAndFilter(t *testing.T) {
	api := &MockAPI{}
	api.On("Query", mock.Anything, mock.MatchedBy(func(in *dynamodb.QueryInput) bool {
		owner, _ := in.ExpressionAttributeValues[":u"].(*types.AttributeValueMemberS)
		state, _ := in.ExpressionAttributeValues[":s"].(*types.AttributeValueMemberS)
		return aws.ToString(in.TableName) == "TodoTable" &&
			aws.ToString(in.KeyConditionExpression) == "ownerId = :u" &&
			aws.ToString(in.FilterExpression) == "todoState <> :s" &&
			owner != nil && owner.Value == "u1" &&
			state != nil && state.Value == "archived"
	})).Return(&dynamodb.QueryOutput{
		Items: marshalItems(t, &todos.TodoItem{OwnerID: "u1", TodoID: "t1", Text: "milk", TodoState: todos.TodoStateActive}),
		Count: 1,
	}, nil).Once()

	table := dynamo.New(api)
	items, err := table.Query(context.Background(), todos.QueryInput{OwnerID: "u1", ExcludeState: todos.TodoStateArchived})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "t1", items[0].TodoID)
	assert.Equal(t, "milk", items[0].Text)
	api.AssertExpectations(t)
}

func TestQueryWithoutExclusionHasNoFilter(t *testing.T) {
	api := &MockAPI{}
	api.On("Query", mock.Anything, mock.MatchedBy(func(in *dynamodb.QueryInput) bool {
		_, hasState := in.ExpressionAttributeValues[":s"]
		return in.FilterExpression == nil && !hasState && aws.ToString(in.TableName) == "Custom"
	})).Return(&dynamodb.QueryOutput{}, nil).Once()

	items, err := dynamo.New(api, dynamo.WithTableName("Custom")).Query(context.Background(), todos.QueryInput{OwnerID: "u1"})
	require.NoError(t, err)
	assert.Empty(t, items)
	api.AssertExpectations(t)
}

func TestQueryFollowsLastEvaluatedKey(t *testing.T) {
	lastKey := map[string]types.AttributeValue{
		"ownerId": &types.AttributeValueMemberS{Value: "u1"},
		"todoId":  &types.AttributeValueMemberS{Value: "t1"},
	}

	api := &MockAPI{}
	api.On("Query", mock.Anything, mock.MatchedBy(func(in *dynamodb.QueryInput) bool {
		return in.ExclusiveStartKey == nil
	})).Return(&dynamodb.QueryOutput{
		Items:            marshalItems(t, &todos.TodoItem{OwnerID: "u1", TodoID: "t1", Text: "a", TodoState: todos.TodoStateActive}),
		LastEvaluatedKey: lastKey,
	}, nil).Once()
	api.On("Query", mock.Anything, mock.MatchedBy(func(in *dynamodb.QueryInput) bool {
		return in.ExclusiveStartKey != nil
	})).Return(&dynamodb.QueryOutput{
		Items: marshalItems(t, &todos.TodoItem{OwnerID: "u1", TodoID: "t2", Text: "b", TodoState: todos.TodoStateActive}),
	}, nil).Once()

	items, err := dynamo.New(api, dynamo.WithConsistentRead(true)).Query(context.Background(), todos.QueryInput{OwnerID: "u1"})
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "t1", items[0].TodoID)
	assert.Equal(t, "t2", items[1].TodoID)
	api.AssertExpectations(t)
}

func TestPutMarshalsItem(t *testing.T) {
	created := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	item := &todos.TodoItem{OwnerID: "u1", TodoID: "t1", Text: "milk", TodoState: todos.TodoStateArchived, CreatedAt: created, UpdatedAt: created}

	api := &MockAPI{}
	api.On("PutItem", mock.Anything, mock.MatchedBy(func(in *dynamodb.PutItemInput) bool {
		got := &todos.TodoItem{}
		if err := attributevalue.UnmarshalMap(in.Item, got); err != nil {
			return false
		}
		_, hasOwner := in.Item["ownerId"]
		_, hasState := in.Item["todoState"]
		return aws.ToString(in.TableName) == "TodoTable" && hasOwner && hasState &&
			got.TodoID == "t1" && got.TodoState == todos.TodoStateArchived && got.CreatedAt.Equal(created)
	})).Return(&dynamodb.PutItemOutput{}, nil).Once()

	require.NoError(t, dynamo.New(api).Put(context.Background(), item))
	api.AssertExpectations(t)
}

func TestStoreOverTableClassifiesErrors(t *testing.T) {
	api := &MockAPI{}
	api.On("Query", mock.Anything, mock.Anything).
		Return(nil, &types.ProvisionedThroughputExceededException{Message: aws.String("slow down")}).Once()

	store := todos.NewTodoStore(dynamo.New(api), todos.WithStoreLogger(todos.NopLogger{}))
	_, err := store.ListActive(context.Background(), "u1")
	require.Error(t, err)
	assert.Equal(t, todos.StoreErrorThrottled, todos.StoreErrorKindOf(err))
}

func TestClassifyError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected todos.StoreErrorKind
	}{
		{"resource not found", &types.ResourceNotFoundException{}, todos.StoreErrorNotFound},
		{"throughput", &types.ProvisionedThroughputExceededException{}, todos.StoreErrorThrottled},
		{"request limit", &smithy.GenericAPIError{Code: "RequestLimitExceeded"}, todos.StoreErrorThrottled},
		{"throttling", &smithy.GenericAPIError{Code: "ThrottlingException"}, todos.StoreErrorThrottled},
		{"access denied", &smithy.GenericAPIError{Code: "AccessDeniedException"}, todos.StoreErrorPermissionDenied},
		{"bad credentials", &smithy.GenericAPIError{Code: "UnrecognizedClientException"}, todos.StoreErrorPermissionDenied},
		{"other api error", &smithy.GenericAPIError{Code: "ValidationException"}, todos.StoreErrorUnknown},
		{"plain error", errors.New("boom"), todos.StoreErrorUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, dynamo.ClassifyError(tt.err))
		})
	}

	assert.Equal(t, todos.StoreErrorKind(""), dynamo.ClassifyError(nil))
}
