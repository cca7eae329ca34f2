package dynamo

import (
	"errors"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/aws/smithy-go"
	"github.com/goliatone/go-todos"
)

// ClassifyError maps DynamoDB exception codes to store error kinds
func (t *Table) ClassifyError(err error) todos.StoreErrorKind {
	return ClassifyError(err)
}

// ClassifyError maps DynamoDB exception codes to store error kinds
func ClassifyError(err error) todos.StoreErrorKind {
	if err == nil {
		return ""
	}

	var notFound *types.ResourceNotFoundException
	if errors.As(err, &notFound) {
		return todos.StoreErrorNotFound
	}

	var throughput *types.ProvisionedThroughputExceededException
	if errors.As(err, &throughput) {
		return todos.StoreErrorThrottled
	}

	var apiErr smithy.APIError
	if !errors.As(err, &apiErr) {
		return todos.StoreErrorUnknown
	}

	switch apiErr.ErrorCode() {
	case "ResourceNotFoundException":
		return todos.StoreErrorNotFound
	case "ProvisionedThroughputExceededException", "RequestLimitExceeded", "ThrottlingException":
		return todos.StoreErrorThrottled
	case "AccessDeniedException", "UnrecognizedClientException":
		return todos.StoreErrorPermissionDenied
	default:
		return todos.StoreErrorUnknown
	}
}
