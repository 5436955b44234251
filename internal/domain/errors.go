package domain

import (
	"fmt"
	"time"
)

// APIError represents a standardized error response returned by the HTTP and
// MCP surfaces.
type APIError struct {
	Code      string    `json:"code"`
	Message   string    `json:"message"`
	Details   string    `json:"details,omitempty"`
	Timestamp time.Time `json:"timestamp"`
	RequestID string    `json:"request_id"`
}

// Error implements the error interface
func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Error codes for different failure scenarios
const (
	ErrInvalidInput   = "INVALID_INPUT"
	ErrValidation     = "VALIDATION_ERROR"
	ErrExternalAPI    = "EXTERNAL_API_ERROR"
	ErrCache          = "CACHE_ERROR"
	ErrInternalServer = "INTERNAL_SERVER_ERROR"
)

// NewAPIError creates a new APIError with timestamp
func NewAPIError(code, message, details, requestID string) *APIError {
	return &APIError{
		Code:      code,
		Message:   message,
		Details:   details,
		Timestamp: time.Now().UTC(),
		RequestID: requestID,
	}
}

// ValidationError represents input validation errors
type ValidationError struct {
	Field   string      `json:"field"`
	Message string      `json:"message"`
	Value   interface{} `json:"value"`
}

// Error implements the error interface
func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error for field '%s': %s", e.Field, e.Message)
}

// NewValidationError creates a new ValidationError
func NewValidationError(field, message string, value interface{}) *ValidationError {
	return &ValidationError{
		Field:   field,
		Message: message,
		Value:   value,
	}
}

// ErrorKind classifies failures of the resolution pipeline.
type ErrorKind string

const (
	KindValidation      ErrorKind = "VALIDATION"
	KindNetwork         ErrorKind = "NETWORK"
	KindUpstream        ErrorKind = "UPSTREAM"
	KindParse           ErrorKind = "PARSE"
	KindCacheCorruption ErrorKind = "CACHE_CORRUPTION"
)

// ResolutionError is returned by external clients. Resolvers fold it into the
// error field of their result; it never aborts the pipeline.
type ResolutionError struct {
	Kind       ErrorKind
	Source     string
	Message    string
	StatusCode int
	Err        error
}

// Error implements the error interface
func (e *ResolutionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s %s error: %s: %v", e.Source, e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s %s error: %s", e.Source, e.Kind, e.Message)
}

// Unwrap returns the underlying cause.
func (e *ResolutionError) Unwrap() error {
	return e.Err
}

// NewNetworkError wraps a transport failure (timeout, refused connection).
func NewNetworkError(source string, err error) *ResolutionError {
	return &ResolutionError{Kind: KindNetwork, Source: source, Message: "request failed", Err: err}
}

// NewUpstreamError reports a non-success status or an unexpected payload shape.
func NewUpstreamError(source string, statusCode int, message string) *ResolutionError {
	return &ResolutionError{Kind: KindUpstream, Source: source, StatusCode: statusCode, Message: message}
}

// NewParseError reports a response that could not be decoded.
func NewParseError(source string, err error) *ResolutionError {
	return &ResolutionError{Kind: KindParse, Source: source, Message: "invalid response body", Err: err}
}
