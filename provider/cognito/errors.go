package cognito

import (
	"context"
	"errors"
	"net"

	"github.com/aws/smithy-go"
	smithyhttp "github.com/aws/smithy-go/transport/http"
	"github.com/goliatone/go-todos"
)

var kindsByCode = map[string]todos.ProviderErrorKind{
	"NotAuthorizedException":         todos.ProviderErrorInvalidCredentials,
	"UserNotFoundException":          todos.ProviderErrorInvalidCredentials,
	"PasswordResetRequiredException": todos.ProviderErrorInvalidCredentials,
	"UserNotConfirmedException":      todos.ProviderErrorUserNotConfirmed,
	"CodeMismatchException":          todos.ProviderErrorCodeMismatch,
	"ExpiredCodeException":           todos.ProviderErrorCodeMismatch,
}

// mapError converts SDK errors into the closed *todos.ProviderError set
func mapError(err error) error {
	if err == nil {
		return nil
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		kind, ok := kindsByCode[apiErr.ErrorCode()]
		if !ok {
			kind = todos.ProviderErrorUnknown
		}
		msg := apiErr.ErrorMessage()
		if msg == "" {
			msg = apiErr.ErrorCode()
		}
		return todos.NewProviderError(kind, apiErr.ErrorCode(), msg, err)
	}

	if isNetworkError(err) {
		return todos.NewProviderError(todos.ProviderErrorNetwork, "", err.Error(), err)
	}

	return todos.NewProviderError(todos.ProviderErrorUnknown, "", err.Error(), err)
}

func isNetworkError(err error) bool {
	var sendErr *smithyhttp.RequestSendError
	if errors.As(err, &sendErr) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	return errors.Is(err, context.DeadlineExceeded)
}
