// Package errors provides standardized error handling for the classification batch.
package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	// Per-call failures. All of these are absorbed by the batch fallback.
	ErrCodeParseError       ErrorCode = "PARSE_ERROR"
	ErrCodeEndpointError    ErrorCode = "ENDPOINT_ERROR"
	ErrCodeEndpointTimeout  ErrorCode = "ENDPOINT_TIMEOUT"
	ErrCodeInvocationFailed ErrorCode = "INVOCATION_FAILED"
	ErrCodeCancelled        ErrorCode = "CANCELLED"

	// Run-level failures. These abort the run.
	ErrCodeLoadFailed    ErrorCode = "LOAD_FAILED"
	ErrCodePersistFailed ErrorCode = "PERSIST_FAILED"
	ErrCodeConfigInvalid ErrorCode = "CONFIG_INVALID"

	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
	Cause     error                  `json:"-"`
}

func (e *StandardError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("StandardError[%s]: %s: %s", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// Unwrap exposes the underlying cause to errors.Is and errors.As.
func (e *StandardError) Unwrap() error { return e.Cause }

// WithMetadata returns e after merging the given key/value pairs into its metadata.
func (e *StandardError) WithMetadata(fields map[string]interface{}) *StandardError {
	if e.Metadata == nil {
		e.Metadata = make(map[string]interface{}, len(fields))
	}
	for k, v := range fields {
		e.Metadata[k] = v
	}
	return e
}

// ==========================
// 2. Error Constructors
// ==========================

func details(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

// NewParseError reports a model reply that cannot be decoded into the declared fields.
func NewParseError(details string, cause error) *StandardError {
	return &StandardError{
		Code:      ErrCodeParseError,
		Message:   "Model reply does not match the response contract",
		Details:   details,
		Retryable: true,
		Timestamp: time.Now().UTC(),
		Cause:     cause,
	}
}

// NewEndpointError reports a transport failure or an error response from the model endpoint.
func NewEndpointError(provider string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeEndpointError,
		Message:   fmt.Sprintf("Model endpoint '%s' error", provider),
		Details:   details(err),
		Retryable: true,
		Timestamp: time.Now().UTC(),
		Cause:     err,
	}
}

// NewEndpointTimeoutError reports a call that exceeded its deadline.
func NewEndpointTimeoutError(provider string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeEndpointTimeout,
		Message:   fmt.Sprintf("Model endpoint '%s' timeout", provider),
		Details:   details(err),
		Retryable: true,
		Timestamp: time.Now().UTC(),
		Cause:     err,
	}
}

// NewCancelledError reports a call abandoned because the run was cancelled.
// It is never retried.
func NewCancelledError(provider string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeCancelled,
		Message:   fmt.Sprintf("Call to model endpoint '%s' cancelled", provider),
		Details:   details(err),
		Retryable: false,
		Timestamp: time.Now().UTC(),
		Cause:     err,
	}
}

// NewInvocationFailure wraps any failure of a single remote call.
func NewInvocationFailure(text string, cause error) *StandardError {
	return &StandardError{
		Code:      ErrCodeInvocationFailed,
		Message:   "Classification call failed",
		Details:   details(cause),
		Retryable: IsRetryable(cause),
		Metadata:  map[string]interface{}{"text": text, "causeCode": string(CodeOf(cause))},
		Timestamp: time.Now().UTC(),
		Cause:     cause,
	}
}

// NewLoadFailedError reports that the input collection could not be read.
func NewLoadFailedError(path string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeLoadFailed,
		Message:   "Input collection could not be loaded",
		Details:   fmt.Sprintf("path: %s, error: %s", path, details(err)),
		Retryable: false,
		Timestamp: time.Now().UTC(),
		Cause:     err,
	}
}

// NewPersistFailedError reports that the batch output could not be written.
func NewPersistFailedError(path string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodePersistFailed,
		Message:   "Batch output could not be written",
		Details:   fmt.Sprintf("path: %s, error: %s", path, details(err)),
		Retryable: false,
		Timestamp: time.Now().UTC(),
		Cause:     err,
	}
}

// NewConfigInvalidError reports an unusable configuration.
func NewConfigInvalidError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeConfigInvalid,
		Message:   "Invalid configuration",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// ==========================
// 3. Utility Functions
// ==========================

// CodeOf returns the code of the outermost StandardError in err's chain,
// or INTERNAL_ERROR when there is none.
func CodeOf(err error) ErrorCode {
	if err == nil {
		return ""
	}
	var stdErr *StandardError
	if stderrors.As(err, &stdErr) {
		return stdErr.Code
	}
	return ErrCodeInternal
}

// HasCode reports whether any StandardError in err's chain carries code.
func HasCode(err error, code ErrorCode) bool {
	for err != nil {
		var stdErr *StandardError
		if !stderrors.As(err, &stdErr) {
			return false
		}
		if stdErr.Code == code {
			return true
		}
		err = stdErr.Cause
	}
	return false
}

// IsParseError reports whether err is, or wraps, a PARSE_ERROR.
func IsParseError(err error) bool { return HasCode(err, ErrCodeParseError) }

// IsInvocationFailure reports whether err is, or wraps, an INVOCATION_FAILED error.
func IsInvocationFailure(err error) bool { return HasCode(err, ErrCodeInvocationFailed) }

// IsRetryableErrorCode checks if an error code is retryable.
func IsRetryableErrorCode(code ErrorCode) bool {
	switch code {
	case ErrCodeParseError,
		ErrCodeEndpointError,
		ErrCodeEndpointTimeout,
		ErrCodeInvocationFailed,
		ErrCodeInternal:
		return true
	default:
		return false
	}
}

// IsRetryable reports whether another attempt may succeed. Every StandardError
// in the chain must be retryable by code and by flag; errors carrying no
// StandardError are treated as transient.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	for err != nil {
		var stdErr *StandardError
		if !stderrors.As(err, &stdErr) {
			return true
		}
		if !stdErr.Retryable || !IsRetryableErrorCode(stdErr.Code) {
			return false
		}
		err = stdErr.Cause
	}
	return true
}

// GetErrorCategory returns the category of the error code.
func GetErrorCategory(code ErrorCode) string {
	codeStr := string(code)
	switch {
	case strings.Contains(codeStr, "PARSE"):
		return "CONTRACT"
	case strings.Contains(codeStr, "ENDPOINT") || strings.Contains(codeStr, "INVOCATION") || code == ErrCodeCancelled:
		return "LLM"
	case strings.Contains(codeStr, "LOAD") || strings.Contains(codeStr, "PERSIST"):
		return "STORAGE"
	case strings.Contains(codeStr, "CONFIG"):
		return "CONFIG"
	default:
		return "OTHER"
	}
}
