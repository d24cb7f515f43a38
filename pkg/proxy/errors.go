package proxy

import (
	"context"
	"errors"
	"fmt"

	"mercator-hq/relay/pkg/proxy/types"
)

// BackendErrorKind classifies a backend failure for the client.
type BackendErrorKind int

const (
	// BackendFailed is any backend failure not covered below.
	BackendFailed BackendErrorKind = iota

	// BackendModelNotFound means the backend has nothing for the model.
	BackendModelNotFound

	// BackendUnavailable means the backend cannot serve right now.
	BackendUnavailable

	// BackendTimeout means the backend did not answer in time.
	BackendTimeout
)

// String returns the metric label for the kind.
func (k BackendErrorKind) String() string {
	switch k {
	case BackendModelNotFound:
		return "model_not_found"
	case BackendUnavailable:
		return "unavailable"
	case BackendTimeout:
		return "timeout"
	default:
		return "failed"
	}
}

// BackendError wraps an error returned by the chunk source.
type BackendError struct {
	Kind  BackendErrorKind
	Model string
	Err   error
}

// Error implements the error interface.
func (e *BackendError) Error() string {
	return fmt.Sprintf("backend error for model %q: %v", e.Model, e.Err)
}

// Unwrap returns the underlying error.
func (e *BackendError) Unwrap() error {
	return e.Err
}

// HandleError converts err into an OpenAI error envelope. Details of
// unexpected errors are not exposed.
func HandleError(err error) *types.ErrorResponse {
	var reqErr *RequestError
	if errors.As(err, &reqErr) {
		return reqErr.ToErrorResponse()
	}

	var backendErr *BackendError
	if errors.As(err, &backendErr) {
		return handleBackendError(backendErr)
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return types.NewGatewayTimeoutError("Backend request timed out")
	}

	return types.NewServerError("An internal error occurred. Please try again later.")
}

func handleBackendError(err *BackendError) *types.ErrorResponse {
	if errors.Is(err.Err, context.DeadlineExceeded) {
		return types.NewGatewayTimeoutError(fmt.Sprintf("Backend request timed out for model %q", err.Model))
	}

	switch err.Kind {
	case BackendModelNotFound:
		return types.NewErrorResponse(
			fmt.Sprintf("The model %q does not exist", err.Model),
			types.ErrorTypeNotFound,
			"model",
			types.CodeModelNotFound,
		)
	case BackendUnavailable:
		return types.NewServiceUnavailableError("Backend is unavailable")
	case BackendTimeout:
		return types.NewGatewayTimeoutError(fmt.Sprintf("Backend request timed out for model %q", err.Model))
	default:
		return types.NewBadGatewayError("Backend request failed")
	}
}
