package core

import (
	"errors"
	"fmt"
)

// ErrorCategory classifies errors for handling decisions.
type ErrorCategory string

const (
	ErrCatTransport ErrorCategory = "transport" // Connection or timeout failure
	ErrCatProvider  ErrorCategory = "provider"  // Remote service reported failure
	ErrCatParse     ErrorCategory = "parse"     // Structured output missing or malformed
	ErrCatConfig    ErrorCategory = "config"    // Invalid or incomplete configuration/input
	ErrCatInternal  ErrorCategory = "internal"  // Unexpected internal error
)

// DomainError represents a structured error from the engine.
type DomainError struct {
	Category  ErrorCategory
	Code      string
	Message   string
	Retryable bool
	Cause     error
	Details   map[string]interface{}
}

// Error implements the error interface.
func (e *DomainError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %s (%v)", e.Category, e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Category, e.Code, e.Message)
}

// Unwrap returns the underlying cause.
func (e *DomainError) Unwrap() error {
	return e.Cause
}

// Is checks if this error matches a target.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Category == t.Category && e.Code == t.Code
}

// WithCause wraps an underlying error.
func (e *DomainError) WithCause(cause error) *DomainError {
	e.Cause = cause
	return e
}

// WithDetail adds contextual information.
func (e *DomainError) WithDetail(key string, value interface{}) *DomainError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// ErrTransport creates a transport error. Transport errors are always
// retryable: the request may never have reached the provider.
func ErrTransport(message string) *DomainError {
	return &DomainError{
		Category:  ErrCatTransport,
		Code:      CodeTransportFailed,
		Message:   message,
		Retryable: true,
	}
}

// ErrProvider creates a provider-reported error. Retryability depends on
// what the provider reported, so the caller decides.
func ErrProvider(code, message string, retryable bool) *DomainError {
	return &DomainError{
		Category:  ErrCatProvider,
		Code:      code,
		Message:   message,
		Retryable: retryable,
	}
}

// ErrRateLimit creates a retryable provider rate-limit error.
func ErrRateLimit(message string) *DomainError {
	return ErrProvider(CodeRateLimited, message, true)
}

// ErrParse creates a parse error. Parse errors are never retried against
// the same response.
func ErrParse(code, message string) *DomainError {
	return &DomainError{
		Category:  ErrCatParse,
		Code:      code,
		Message:   message,
		Retryable: false,
	}
}

// ErrConfig creates a configuration error. Config errors surface before
// any network call and are never retried.
func ErrConfig(code, message string) *DomainError {
	return &DomainError{
		Category:  ErrCatConfig,
		Code:      code,
		Message:   message,
		Retryable: false,
	}
}

// ErrNotFound creates a config-category not found error.
func ErrNotFound(resource, id string) *DomainError {
	return &DomainError{
		Category:  ErrCatConfig,
		Code:      CodeNotFound,
		Message:   fmt.Sprintf("%s not found: %s", resource, id),
		Retryable: false,
	}
}

// IsRetryable checks if an error is retryable.
func IsRetryable(err error) bool {
	var domErr *DomainError
	if errors.As(err, &domErr) {
		return domErr.Retryable
	}
	return false
}

// GetCategory extracts the error category.
func GetCategory(err error) ErrorCategory {
	var domErr *DomainError
	if errors.As(err, &domErr) {
		return domErr.Category
	}
	return ErrCatInternal
}

// IsCategory checks if an error belongs to a category.
func IsCategory(err error, cat ErrorCategory) bool {
	return GetCategory(err) == cat
}

// StepError is the single failure a step execution surfaces once its
// attempt budget is exhausted or a fatal error aborts it.
type StepError struct {
	Stage    Stage
	Attempts int
	Cause    error
}

// Error implements the error interface.
func (e *StepError) Error() string {
	return fmt.Sprintf("stage %s failed after %d attempt(s): %v", e.Stage, e.Attempts, e.Cause)
}

// Unwrap returns the last underlying cause.
func (e *StepError) Unwrap() error {
	return e.Cause
}

// Category returns the taxonomy category of the underlying cause.
func (e *StepError) Category() ErrorCategory {
	return GetCategory(e.Cause)
}

// AsStepError extracts a StepError if present.
func AsStepError(err error) (*StepError, bool) {
	var se *StepError
	if errors.As(err, &se) {
		return se, true
	}
	return nil, false
}

// Predefined error codes.
const (
	CodeTransportFailed = "TRANSPORT_FAILED"
	CodeRateLimited     = "RATE_LIMITED"
	CodeOverloaded      = "OVERLOADED"
	CodeBadRequest      = "BAD_REQUEST"
	CodeAuthFailed      = "AUTH_FAILED"
	CodeNotFound        = "NOT_FOUND"

	CodeMissingField  = "MISSING_FIELD"
	CodeEmptyResponse = "EMPTY_RESPONSE"
	CodeInvalidConfig = "INVALID_CONFIG"
	CodeMissingInput  = "MISSING_INPUT"
	CodeEmptyText     = "EMPTY_TEXT"
	CodeInvalidMode   = "INVALID_MODE"
	CodeUnknownStage  = "UNKNOWN_STAGE"
	CodeRenderFailed  = "RENDER_FAILED"
	CodeUnknownModel  = "UNKNOWN_MODEL"
)
