package proxy

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"mercator-hq/relay/pkg/proxy/types"
)

const (
	// DefaultMaxRequestBytes caps a request body when no limit is configured.
	DefaultMaxRequestBytes = 10 * 1024 * 1024

	// RequestIDHeader is the HTTP header for request ID propagation.
	RequestIDHeader = "X-Request-ID"
)

// ParseChatCompletionRequest decodes and validates a chat completion body.
// Bodies larger than maxBytes are rejected; a non-positive maxBytes means
// DefaultMaxRequestBytes.
//
// Every client-caused failure is returned as a *RequestError.
func ParseChatCompletionRequest(r *http.Request, maxBytes int64) (*types.ChatCompletionRequest, error) {
	return DecodeChatCompletionRequest(r.Body, maxBytes)
}

// DecodeChatCompletionRequest is ParseChatCompletionRequest for any reader.
func DecodeChatCompletionRequest(r io.Reader, maxBytes int64) (*types.ChatCompletionRequest, error) {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxRequestBytes
	}

	// Read one byte past the limit so an exactly-sized body is accepted.
	body, err := io.ReadAll(io.LimitReader(r, maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read request body: %w", err)
	}
	if int64(len(body)) > maxBytes {
		return nil, &RequestError{
			Message: fmt.Sprintf("request body exceeds maximum size of %d bytes", maxBytes),
			Code:    types.CodeRequestTooLarge,
			Param:   "body",
		}
	}

	var req types.ChatCompletionRequest
	if err := json.Unmarshal(body, &req); err != nil {
		return nil, &RequestError{
			Message: fmt.Sprintf("invalid JSON: %v", err),
			Code:    types.CodeInvalidJSON,
			Param:   "body",
		}
	}

	if err := req.Validate(); err != nil {
		var valErr *types.ValidationError
		if errors.As(err, &valErr) {
			code := types.CodeInvalidValue
			if valErr.Field == "model" || valErr.Field == "messages" {
				code = types.CodeMissingField
			}
			return nil, &RequestError{
				Message: valErr.Message,
				Code:    code,
				Param:   valErr.Field,
			}
		}
		return nil, err
	}

	return &req, nil
}

// ExtractRequestID returns the client-supplied X-Request-ID, or "".
func ExtractRequestID(r *http.Request) string {
	return r.Header.Get(RequestIDHeader)
}

// RequestError is a request parsing or validation error.
type RequestError struct {
	Message string
	Code    string
	Param   string
}

// Error implements the error interface.
func (e *RequestError) Error() string {
	return e.Message
}

// ToErrorResponse converts the error to an OpenAI error envelope.
func (e *RequestError) ToErrorResponse() *types.ErrorResponse {
	return types.NewInvalidRequestError(e.Message, e.Param, e.Code)
}
