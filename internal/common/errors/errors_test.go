package errors

import (
	"context"
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInvocationFailure_WrapsCause(t *testing.T) {
	transport := stderrors.New("connection reset")
	endpointErr := NewEndpointError("openai", transport)
	failure := NewInvocationFailure("Journal of Foo", endpointErr)

	assert.Equal(t, ErrCodeInvocationFailed, failure.Code)
	assert.True(t, failure.Retryable)
	assert.True(t, IsInvocationFailure(failure))
	assert.False(t, IsParseError(failure))
	assert.ErrorIs(t, failure, transport)
	assert.Equal(t, "Journal of Foo", failure.Metadata["text"])
	assert.Equal(t, string(ErrCodeEndpointError), failure.Metadata["causeCode"])

	var stdErr *StandardError
	require.True(t, stderrors.As(failure, &stdErr))
	assert.Equal(t, ErrCodeInvocationFailed, stdErr.Code)
}

func TestIsParseError_ThroughWrapping(t *testing.T) {
	parseErr := NewParseError("missing field \"issn\"", nil)
	failure := NewInvocationFailure("ACM Transactions on Internet Technology", parseErr)
	wrapped := fmt.Errorf("attempt 3: %w", failure)

	assert.True(t, IsParseError(wrapped))
	assert.True(t, IsInvocationFailure(wrapped))
	assert.Equal(t, ErrCodeInvocationFailed, CodeOf(wrapped))
}

func TestCodeOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ErrorCode
	}{
		{name: "nil", err: nil, want: ""},
		{name: "plain error", err: stderrors.New("boom"), want: ErrCodeInternal},
		{name: "timeout", err: NewEndpointTimeoutError("genai", context.DeadlineExceeded), want: ErrCodeEndpointTimeout},
		{name: "load", err: NewLoadFailedError("in.json", stderrors.New("missing")), want: ErrCodeLoadFailed},
		{name: "persist", err: NewPersistFailedError("out.json", stderrors.New("read-only")), want: ErrCodePersistFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CodeOf(tt.err))
		})
	}
}

func TestGetErrorCategory(t *testing.T) {
	assert.Equal(t, "CONTRACT", GetErrorCategory(ErrCodeParseError))
	assert.Equal(t, "LLM", GetErrorCategory(ErrCodeEndpointTimeout))
	assert.Equal(t, "LLM", GetErrorCategory(ErrCodeInvocationFailed))
	assert.Equal(t, "LLM", GetErrorCategory(ErrCodeCancelled))
	assert.Equal(t, "STORAGE", GetErrorCategory(ErrCodePersistFailed))
	assert.Equal(t, "CONFIG", GetErrorCategory(ErrCodeConfigInvalid))
	assert.Equal(t, "OTHER", GetErrorCategory(ErrCodeInternal))
}

func TestRetryableCodes(t *testing.T) {
	assert.True(t, IsRetryableErrorCode(ErrCodeParseError))
	assert.True(t, IsRetryableErrorCode(ErrCodeEndpointError))
	assert.False(t, IsRetryableErrorCode(ErrCodeCancelled))
	assert.False(t, IsRetryableErrorCode(ErrCodeLoadFailed))
	assert.False(t, IsRetryableErrorCode(ErrCodePersistFailed))
}

func TestIsRetryable(t *testing.T) {
	flagged := NewEndpointError("openai", stderrors.New("bad request"))
	flagged.Retryable = false

	tests := []struct {
		name string
		err  error
		want bool
	}{
		{name: "nil", err: nil, want: false},
		{name: "plain error", err: stderrors.New("reset"), want: true},
		{name: "endpoint error", err: NewInvocationFailure("x", NewEndpointError("openai", stderrors.New("reset"))), want: true},
		{name: "timeout", err: NewInvocationFailure("x", NewEndpointTimeoutError("openai", context.DeadlineExceeded)), want: true},
		{name: "parse error", err: NewInvocationFailure("x", NewParseError("no object", nil)), want: true},
		{name: "cancelled", err: NewInvocationFailure("x", NewCancelledError("openai", context.Canceled)), want: false},
		{name: "flag cleared", err: NewInvocationFailure("x", flagged), want: false},
		{name: "fmt wrapped", err: fmt.Errorf("attempt 1: %w", NewCancelledError("openai", context.Canceled)), want: false},
		{name: "config", err: NewConfigInvalidError("bad"), want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsRetryable(tt.err))
		})
	}

	failure := NewInvocationFailure("x", NewCancelledError("openai", context.Canceled))
	assert.False(t, failure.Retryable)
}

func TestStandardError_Message(t *testing.T) {
	err := NewConfigInvalidError("batch.concurrency must be >= 1")
	assert.Equal(t, "StandardError[CONFIG_INVALID]: Invalid configuration: batch.concurrency must be >= 1", err.Error())

	err = err.WithMetadata(map[string]interface{}{"key": "batch.concurrency"})
	assert.Equal(t, "batch.concurrency", err.Metadata["key"])
}
