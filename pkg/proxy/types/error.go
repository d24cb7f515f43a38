package types

import "net/http"

// ErrorResponse is the OpenAI error envelope.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail contains the error fields clients inspect.
type ErrorDetail struct {
	Message string `json:"message"`
	Type    string `json:"type"`
	Param   string `json:"param,omitempty"`
	Code    string `json:"code,omitempty"`
}

// Error types.
const (
	ErrorTypeInvalidRequest     = "invalid_request_error"
	ErrorTypeNotFound           = "not_found"
	ErrorTypeServerError        = "server_error"
	ErrorTypeBadGateway         = "bad_gateway"
	ErrorTypeServiceUnavailable = "service_unavailable"
	ErrorTypeGatewayTimeout     = "gateway_timeout"
)

// Error codes.
const (
	CodeMissingField       = "missing_field"
	CodeInvalidValue       = "invalid_value"
	CodeInvalidJSON        = "invalid_json"
	CodeModelNotFound      = "model_not_found"
	CodeBackendError       = "backend_error"
	CodeBackendTimeout     = "backend_timeout"
	CodeBackendUnavailable = "backend_unavailable"
	CodeRequestTooLarge    = "request_too_large"
	CodeInternalError      = "internal_error"
)

// NewErrorResponse creates an error response with the given details.
func NewErrorResponse(message, errorType, param, code string) *ErrorResponse {
	return &ErrorResponse{
		Error: ErrorDetail{
			Message: message,
			Type:    errorType,
			Param:   param,
			Code:    code,
		},
	}
}

// NewInvalidRequestError creates a 400 error response.
func NewInvalidRequestError(message, param, code string) *ErrorResponse {
	return NewErrorResponse(message, ErrorTypeInvalidRequest, param, code)
}

// NewServerError creates a 500 error response.
func NewServerError(message string) *ErrorResponse {
	return NewErrorResponse(message, ErrorTypeServerError, "", CodeInternalError)
}

// NewBadGatewayError creates a 502 error response.
func NewBadGatewayError(message string) *ErrorResponse {
	return NewErrorResponse(message, ErrorTypeBadGateway, "", CodeBackendError)
}

// NewServiceUnavailableError creates a 503 error response.
func NewServiceUnavailableError(message string) *ErrorResponse {
	return NewErrorResponse(message, ErrorTypeServiceUnavailable, "", CodeBackendUnavailable)
}

// NewGatewayTimeoutError creates a 504 error response.
func NewGatewayTimeoutError(message string) *ErrorResponse {
	return NewErrorResponse(message, ErrorTypeGatewayTimeout, "", CodeBackendTimeout)
}

// HTTPStatusCode maps the error type to an HTTP status.
func (e *ErrorDetail) HTTPStatusCode() int {
	switch e.Type {
	case ErrorTypeInvalidRequest:
		return http.StatusBadRequest
	case ErrorTypeNotFound:
		return http.StatusNotFound
	case ErrorTypeBadGateway:
		return http.StatusBadGateway
	case ErrorTypeServiceUnavailable:
		return http.StatusServiceUnavailable
	case ErrorTypeGatewayTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}
