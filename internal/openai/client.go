package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/digkill/TGCreditBot/internal/config"
)

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type ChatRequest struct {
	Messages    []Message
	Temperature float64
	MaxTokens   int
}

// Client talks to an OpenAI-compatible API. It never returns transport errors:
// every call yields a Result.
type Client struct {
	apiKey     string
	baseURL    string
	chatModel  string
	imageModel string
	imageSize  string
	httpClient *http.Client
	log        *slog.Logger
}

func NewClient(cfg config.Config, log *slog.Logger) *Client {
	return &Client{
		apiKey:     cfg.OpenAIAPIKey,
		baseURL:    strings.TrimRight(cfg.OpenAIBaseURL, "/"),
		chatModel:  cfg.ChatModel,
		imageModel: cfg.ImageModel,
		imageSize:  cfg.ImageSize,
		httpClient: &http.Client{
			Timeout: cfg.RequestTimeout,
		},
		log: log,
	}
}

func (c *Client) Complete(ctx context.Context, req ChatRequest) Result {
	payload := map[string]any{
		"model":       c.chatModel,
		"messages":    req.Messages,
		"temperature": req.Temperature,
	}
	if req.MaxTokens > 0 {
		payload["max_tokens"] = req.MaxTokens
	}

	status, body, err := c.post(ctx, "/chat/completions", payload)
	if err != nil {
		c.log.Error("chat completion request failed", "err", err)
		return TransportFailure(err)
	}
	result := parseChat(status, body)
	if !result.OK {
		c.log.Warn("chat completion rejected", "status", status, "body", truncateBody(body))
	}
	return result
}

func (c *Client) GenerateImage(ctx context.Context, prompt string) Result {
	payload := map[string]any{
		"prompt": prompt,
		"n":      1,
		"size":   c.imageSize,
	}
	if c.imageModel != "" {
		payload["model"] = c.imageModel
	}

	status, body, err := c.post(ctx, "/images/generations", payload)
	if err != nil {
		c.log.Error("image generation request failed", "err", err)
		return TransportFailure(err)
	}
	result := parseImage(status, body)
	if !result.OK {
		c.log.Warn("image generation rejected", "status", status, "body", truncateBody(body))
	}
	return result
}

func (c *Client) post(ctx context.Context, path string, payload map[string]any) (int, []byte, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return 0, nil, fmt.Errorf("marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return 0, nil, fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("post %s: %w", path, err)
	}
	defer resp.Body.Close()

	rawBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, fmt.Errorf("read response body: %w", err)
	}
	return resp.StatusCode, rawBody, nil
}

func truncateBody(body []byte) string {
	const limit = 512
	s := strings.TrimSpace(string(body))
	if len(s) <= limit {
		return s
	}
	cut := limit
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "…"
}
