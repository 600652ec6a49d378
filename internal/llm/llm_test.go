package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/generative-ai-go/genai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"journal-classifier/internal/common/config"
	commonhttp "journal-classifier/internal/common/http"
)

const reply = "```json\n{\"title\": \"Journal of Foo\"}\n```"

// ==========================
// OpenAI-compatible
// ==========================

func TestOpenAIClient_Generate(t *testing.T) {
	var got map[string]interface{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"c1","object":"chat.completion","choices":[{"index":0,"message":{"role":"assistant","content":` +
			mustJSON(reply) + `},"finish_reason":"stop"}]}`))
	}))
	defer srv.Close()

	c := NewOpenAIClient("sk-test", "gpt-4o-mini", srv.URL+"/v1", 0.5, 1000)
	out, err := c.Generate(context.Background(), "classify")
	require.NoError(t, err)
	assert.Equal(t, reply, out)
	assert.Equal(t, "gpt-4o-mini", got["model"])
	assert.InDelta(t, 0.5, got["temperature"], 1e-6)
}

func TestOpenAIClient_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"message":"rate limited","type":"requests"}}`))
	}))
	defer srv.Close()

	c := NewOpenAIClient("sk-test", "gpt-4o-mini", srv.URL+"/v1", 0.5, 0)
	_, err := c.Generate(context.Background(), "classify")
	assert.Error(t, err)
}

func TestOpenAIClient_NoChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"c1","choices":[]}`))
	}))
	defer srv.Close()

	c := NewOpenAIClient("sk-test", "gpt-4o-mini", srv.URL+"/v1", 0.5, 0)
	_, err := c.Generate(context.Background(), "classify")
	assert.ErrorIs(t, err, ErrEmptyResponse)
}

// ==========================
// Claude
// ==========================

func TestClaudeClient_Generate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/messages", r.URL.Path)
		assert.Equal(t, "ak-test", r.Header.Get("X-Api-Key"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"m1","type":"message","role":"assistant","model":"claude-3-5-haiku-latest",` +
			`"content":[{"type":"text","text":` + mustJSON(reply) + `}],"stop_reason":"end_turn",` +
			`"usage":{"input_tokens":10,"output_tokens":20}}`))
	}))
	defer srv.Close()

	c := NewClaudeClient("ak-test", "claude-3-5-haiku-latest", srv.URL+"/v1", 0.5, 0)
	out, err := c.Generate(context.Background(), "classify")
	require.NoError(t, err)
	assert.Equal(t, reply, out)
}

// ==========================
// Gemini
// ==========================

func TestCandidateText(t *testing.T) {
	_, err := candidateText(&genai.GenerateContentResponse{})
	assert.ErrorIs(t, err, ErrEmptyResponse)

	out, err := candidateText(&genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{Parts: []genai.Part{genai.Text("```json\n"), genai.Text("{}\n```")}},
		}},
	})
	require.NoError(t, err)
	assert.Equal(t, "```json\n{}\n```", out)
}

// ==========================
// GenAI gateway
// ==========================

func TestGenAIClient_Generate(t *testing.T) {
	var got genAIRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/ai/generate", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_ = json.NewEncoder(w).Encode(map[string]interface{}{"text": reply})
	}))
	defer srv.Close()

	c := NewGenAIClient(srv.URL+"/", "", "internal", 0.5, 1000)
	out, err := c.Generate(context.Background(), "classify")
	require.NoError(t, err)
	assert.Equal(t, reply, out)
	assert.Equal(t, "classify", got.Prompt)
	assert.Equal(t, 1000, got.MaxTokens)
}

func TestGenAIClient_Failures(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		check  func(t *testing.T, err error)
	}{
		{
			name:   "server error",
			status: http.StatusBadGateway,
			body:   "upstream down",
			check: func(t *testing.T, err error) {
				var statusErr *commonhttp.StatusError
				require.True(t, errors.As(err, &statusErr))
				assert.Equal(t, http.StatusBadGateway, statusErr.StatusCode)
			},
		},
		{
			name:   "empty text",
			status: http.StatusOK,
			body:   `{"text": "  "}`,
			check: func(t *testing.T, err error) {
				assert.ErrorIs(t, err, ErrEmptyResponse)
			},
		},
		{
			name:   "not json",
			status: http.StatusOK,
			body:   `<html>`,
			check: func(t *testing.T, err error) {
				assert.Error(t, err)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			_, err := NewGenAIClient(srv.URL, "", "", 0, 0).Generate(context.Background(), "p")
			tt.check(t, err)
		})
	}
}

func TestGenAIClient_ContextDeadline(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	defer srv.Close()
	defer close(release)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewGenAIClient(srv.URL, "", "", 0, 0).Generate(ctx, "p")
	assert.ErrorIs(t, err, context.Canceled)
}

// ==========================
// Mock + factory
// ==========================

func TestMockClient_FollowsInstructions(t *testing.T) {
	prompt := "```json\n{\n\t\"title\": string  // The title\n\t\"match\": boolean  // Whether\n}\n```"
	out, err := NewMockClient().Generate(context.Background(), prompt)
	require.NoError(t, err)
	assert.Equal(t, "```json\n{\"title\": \"mock\", \"match\": false}\n```", out)

	_, err = NewMockClient().Generate(context.Background(), "no instructions")
	assert.ErrorIs(t, err, ErrEmptyResponse)
}

func TestNewClient(t *testing.T) {
	tests := []struct {
		provider string
		want     interface{}
		wantErr  bool
	}{
		{provider: "openai", want: &OpenAIClient{}},
		{provider: "ollama", want: &OpenAIClient{}},
		{provider: "claude", want: &ClaudeClient{}},
		{provider: "genai", want: &GenAIClient{}},
		{provider: "MOCK", want: &MockClient{}},
		{provider: "watson", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.provider, func(t *testing.T) {
			c, err := NewClient(context.Background(), config.LLMConfig{
				Provider: tt.provider,
				Model:    "m",
				BaseURL:  "http://localhost:1234",
			})
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.IsType(t, tt.want, c)
			assert.NoError(t, Close(c))
		})
	}
}

func mustJSON(s string) string {
	b, _ := json.Marshal(s)
	return string(b)
}
