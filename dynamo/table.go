// Package dynamo stores to-do items in a DynamoDB table keyed by
// ownerId (partition) and todoId (sort).
package dynamo

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/goliatone/go-todos"
)

// DefaultTableName is the table the backend function reads and writes
const DefaultTableName = "TodoTable"

const (
	keyConditionOwner = "ownerId = :u"
	filterNotState    = "todoState <> :s"
)

// API is the subset of the DynamoDB client the table uses
type API interface {
	Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
}

var (
	_ todos.ItemTable       = (*Table)(nil)
	_ todos.ErrorClassifier = (*Table)(nil)
)

// Option customizes a Table
type Option func(*Table)

// WithTableName overrides DefaultTableName
func WithTableName(name string) Option {
	return func(t *Table) {
		if name != "" {
			t.name = name
		}
	}
}

// WithConsistentRead makes queries strongly consistent
func WithConsistentRead(consistent bool) Option {
	return func(t *Table) {
		t.consistentRead = consistent
	}
}

// WithLogger overrides the logger
func WithLogger(logger todos.Logger) Option {
	return func(t *Table) {
		if logger != nil {
			t.logger = logger
		}
	}
}

// Table implements todos.ItemTable
type Table struct {
	client         API
	name           string
	consistentRead bool
	logger         todos.Logger
}

// New returns a table backed by client
func New(client API, opts ...Option) *Table {
	t := &Table{
		client: client,
		name:   DefaultTableName,
		logger: todos.NopLogger{},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(t)
		}
	}
	return t
}

// Name returns the table name
func (t *Table) Name() string {
	return t.name
}

// Query returns every item in the owner's partition, following
// LastEvaluatedKey until the result set is complete.
func (t *Table) Query(ctx context.Context, input todos.QueryInput) ([]*todos.TodoItem, error) {
	params := &dynamodb.QueryInput{
		TableName:              aws.String(t.name),
		KeyConditionExpression: aws.String(keyConditionOwner),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":u": &types.AttributeValueMemberS{Value: input.OwnerID},
		},
	}
	if t.consistentRead {
		params.ConsistentRead = aws.Bool(true)
	}
	if input.ExcludeState != "" {
		params.FilterExpression = aws.String(filterNotState)
		params.ExpressionAttributeValues[":s"] = &types.AttributeValueMemberS{Value: string(input.ExcludeState)}
	}

	items := []*todos.TodoItem{}
	paginator := dynamodb.NewQueryPaginator(t.client, params)
	for pages := 0; paginator.HasMorePages(); pages++ {
		out, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("error querying dynamo: %w", err)
		}

		page := []*todos.TodoItem{}
		if err := attributevalue.UnmarshalListOfMaps(out.Items, &page); err != nil {
			return nil, fmt.Errorf("error unmarshalling dynamo items: %w", err)
		}
		items = append(items, page...)

		t.logger.Debug("dynamo query page", "table", t.name, "page", pages, "count", out.Count)
	}

	return items, nil
}

// Put writes item, replacing any item with the same key
func (t *Table) Put(ctx context.Context, item *todos.TodoItem) error {
	av, err := attributevalue.MarshalMap(item)
	if err != nil {
		return fmt.Errorf("error marshalling todo for dynamo: %w", err)
	}

	if _, err := t.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(t.name),
		Item:      av,
	}); err != nil {
		return fmt.Errorf("error putting item to dynamo: %w", err)
	}

	return nil
}
