// Package llm holds the remote model clients. Every client performs exactly
// one request per Generate call.
package llm

import (
	"context"
	"errors"
	"io"
)

// ErrEmptyResponse is returned when the endpoint answers without any text.
var ErrEmptyResponse = errors.New("model returned no content")

type Client interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Close releases provider resources when the client holds any.
func Close(c Client) error {
	if closer, ok := c.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}
