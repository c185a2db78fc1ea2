package openai

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/digkill/TGCreditBot/internal/config"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	cfg := config.Config{
		OpenAIAPIKey:  "sk-test",
		OpenAIBaseURL: srv.URL,
		ChatModel:     "gpt-test",
		ImageModel:    "img-test",
		ImageSize:     "256x256",
	}
	return NewClient(cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestComplete_Success(t *testing.T) {
	var got map[string]any
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = io.WriteString(w, `{"choices":[{"message":{"role":"assistant","content":"hi there"}}]}`)
	})

	result := client.Complete(context.Background(), ChatRequest{
		Messages:    []Message{{Role: RoleSystem, Content: "sys"}, {Role: RoleUser, Content: "hello"}},
		Temperature: 0.2,
		MaxTokens:   1024,
	})

	require.True(t, result.OK)
	assert.Equal(t, "hi there", result.Content)
	assert.Equal(t, "gpt-test", got["model"])
	assert.Equal(t, 0.2, got["temperature"])
	assert.Equal(t, float64(1024), got["max_tokens"])
	assert.Len(t, got["messages"], 2)
}

func TestComplete_Failures(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{name: "error status", status: http.StatusUnauthorized, body: `{"error":{"message":"bad key"}}`},
		{name: "empty choices", status: http.StatusOK, body: `{"choices":[]}`},
		{name: "empty content", status: http.StatusOK, body: `{"choices":[{"message":{"content":""}}]}`},
		{name: "wrong shape", status: http.StatusOK, body: `{"object":"list"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = io.WriteString(w, tt.body)
			})

			result := client.Complete(context.Background(), ChatRequest{Messages: []Message{{Role: RoleUser, Content: "x"}}})
			assert.False(t, result.OK)
			assert.JSONEq(t, tt.body, result.Diagnostic())
		})
	}
}

func TestComplete_NonJSONBody(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = io.WriteString(w, "upstream down")
	})

	result := client.Complete(context.Background(), ChatRequest{})
	assert.False(t, result.OK)
	assert.JSONEq(t, `{"error":"upstream down"}`, result.Diagnostic())
}

func TestComplete_TransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()
	client := NewClient(config.Config{OpenAIBaseURL: srv.URL}, slog.New(slog.NewTextHandler(io.Discard, nil)))

	result := client.Complete(context.Background(), ChatRequest{})
	require.False(t, result.OK)

	var body map[string]string
	require.NoError(t, json.Unmarshal(result.Raw, &body))
	assert.Contains(t, body["error"], "post /chat/completions")
}

func TestGenerateImage(t *testing.T) {
	var got map[string]any
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/images/generations", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = io.WriteString(w, `{"created":1,"data":[{"url":"https://img.example/x.png"}]}`)
	})

	result := client.GenerateImage(context.Background(), "a red fox running")
	require.True(t, result.OK)
	assert.Equal(t, "https://img.example/x.png", result.Content)
	assert.Equal(t, "a red fox running", got["prompt"])
	assert.Equal(t, float64(1), got["n"])
	assert.Equal(t, "256x256", got["size"])
	assert.Equal(t, "img-test", got["model"])
}

func TestGenerateImage_MissingURL(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"data":[]}`)
	})

	result := client.GenerateImage(context.Background(), "a red fox running")
	assert.False(t, result.OK)
	assert.JSONEq(t, `{"data":[]}`, result.Diagnostic())
}

func TestResultDiagnostic_TruncatesLongBodies(t *testing.T) {
	body := `{"error":{"message":"` + strings.Repeat("é", 2000) + `"}}`
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = io.WriteString(w, body)
	})

	result := client.Complete(context.Background(), ChatRequest{})
	require.False(t, result.OK)
	assert.JSONEq(t, body, string(result.Raw))

	diagnostic := result.Diagnostic()
	assert.LessOrEqual(t, len(diagnostic), 512+len("…"))
	assert.True(t, strings.HasSuffix(diagnostic, "…"))
	assert.True(t, utf8.ValidString(diagnostic))
}
