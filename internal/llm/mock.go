package llm

import (
	"context"
	"fmt"
	"regexp"
	"strings"
)

var instructionLine = regexp.MustCompile(`"([^"]+)":\s*(string|boolean|number|integer)\s*//`)

// MockClient answers offline with a well-formed reply for whatever fields the
// prompt's format instructions declare. String fields echo "mock".
type MockClient struct{}

func NewMockClient() *MockClient { return &MockClient{} }

func (c *MockClient) Generate(ctx context.Context, prompt string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	matches := instructionLine.FindAllStringSubmatch(prompt, -1)
	if len(matches) == 0 {
		return "", ErrEmptyResponse
	}

	var b strings.Builder
	b.WriteString("```json\n{")
	for i, m := range matches {
		if i > 0 {
			b.WriteString(", ")
		}
		var value string
		switch m[2] {
		case "boolean":
			value = "false"
		case "number", "integer":
			value = "0"
		default:
			value = `"mock"`
		}
		fmt.Fprintf(&b, "%q: %s", m[1], value)
	}
	b.WriteString("}\n```")
	return b.String(), nil
}
