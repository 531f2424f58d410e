// Package llm is the gateway to the chat-completion provider. One client,
// two operations: scenario JSON generation and C# script generation. Both
// are single round-trips — malformed output fails the job, never retries.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/eroom-dev/eroom/pkg/config"
	"github.com/eroom-dev/eroom/pkg/models"
)

const (
	messagesPath     = "/v1/messages"
	anthropicVersion = "2023-06-01"
	apiKeyEnv        = "ANTHROPIC_KEY"

	// requestTimeout bounds each provider round-trip.
	requestTimeout = 30 * time.Second
)

// Option configures a Client.
type Option func(*Client)

// WithBaseURL overrides the provider endpoint (tests, proxies).
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = u }
}

// WithAPIKey sets the API key explicitly instead of reading ANTHROPIC_KEY
// on first use.
func WithAPIKey(k string) Option {
	return func(c *Client) { c.apiKey = k }
}

// Client is the chat-completion client. The underlying HTTP client and API
// key are resolved lazily, exactly once, on first use.
type Client struct {
	baseURL string
	model   config.ModelConfig
	apiKey  string

	initOnce sync.Once
	initErr  error
	httpc    *http.Client
}

// NewClient creates a client for the given model parameters. No network or
// environment access happens until the first generate call.
func NewClient(model config.ModelConfig, opts ...Option) *Client {
	c := &Client{
		baseURL: config.DefaultLLMBaseURL,
		model:   model,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ensure lazily constructs the pooled HTTP client and resolves the API key.
// Safe under concurrent first use. A missing key is sticky: every call on
// this client reports it as a job-level error.
func (c *Client) ensure() error {
	c.initOnce.Do(func() {
		if c.apiKey == "" {
			c.apiKey = os.Getenv(apiKeyEnv)
		}
		if c.apiKey == "" {
			c.initErr = ErrMissingAPIKey
			return
		}
		c.httpc = &http.Client{Timeout: requestTimeout}
		slog.Info("LLM client initialized", "base_url", c.baseURL, "model", c.model.Name)
	})
	return c.initErr
}

// Close releases pooled connections. Safe to call on a never-used client.
func (c *Client) Close() {
	if c.httpc != nil {
		c.httpc.CloseIdleConnections()
	}
}

// GenerateScenario runs one scenario round-trip: payload is marshaled as the
// user message, the response's JSON is extracted and parsed into the typed
// scenario. Any failure is final for the calling job.
func (c *Client) GenerateScenario(ctx context.Context, systemPrompt string, payload any) (*models.Scenario, error) {
	user, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshaling scenario payload: %w", err)
	}

	text, err := c.complete(ctx, systemPrompt, c.model.ScenarioTemperature, string(user))
	if err != nil {
		llmRequestsTotal.WithLabelValues("scenario", "error").Inc()
		return nil, err
	}

	sc, err := ParseScenario(text)
	if err != nil {
		llmRequestsTotal.WithLabelValues("scenario", "error").Inc()
		return nil, err
	}

	llmRequestsTotal.WithLabelValues("scenario", "ok").Inc()
	slog.Info("Scenario generated",
		"objects", len(sc.Objects),
		"response_bytes", len(text))
	return sc, nil
}

// GenerateScripts runs one script round-trip and builds the script bundle
// from the response's fenced code blocks. An empty bundle fails the job; a
// bundle without a GameManager entry is only worth a warning.
func (c *Client) GenerateScripts(ctx context.Context, systemPrompt string, payload any) (models.ScriptBundle, error) {
	user, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshaling scripts payload: %w", err)
	}

	text, err := c.complete(ctx, systemPrompt, c.model.ScriptTemperature, string(user))
	if err != nil {
		llmRequestsTotal.WithLabelValues("scripts", "error").Inc()
		return nil, err
	}

	bundle := ExtractScripts(text)
	if len(bundle) == 0 {
		llmRequestsTotal.WithLabelValues("scripts", "error").Inc()
		return nil, ErrNoScripts
	}
	if _, ok := bundle[models.GameManagerName]; !ok {
		slog.Warn("Script bundle has no GameManager script", "scripts", len(bundle))
	}

	llmRequestsTotal.WithLabelValues("scripts", "ok").Inc()
	slog.Info("Scripts generated", "scripts", len(bundle))
	return bundle, nil
}

// Wire types for the messages endpoint.

type messageRequest struct {
	Model       string    `json:"model"`
	MaxTokens   int       `json:"max_tokens"`
	Temperature float64   `json:"temperature"`
	System      string    `json:"system,omitempty"`
	Messages    []message `json:"messages"`
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type messageResponse struct {
	Content    []contentBlock `json:"content"`
	StopReason string         `json:"stop_reason"`
	Usage      usage          `json:"usage"`
}

type contentBlock struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type usage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
}

type errorResponse struct {
	Error struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

// complete performs one messages round-trip and returns the first content
// block's text.
func (c *Client) complete(ctx context.Context, system string, temperature float64, user string) (string, error) {
	if err := c.ensure(); err != nil {
		return "", err
	}

	body, err := json.Marshal(messageRequest{
		Model:       c.model.Name,
		MaxTokens:   c.model.MaxTokens,
		Temperature: temperature,
		System:      system,
		Messages:    []message{{Role: "user", Content: user}},
	})
	if err != nil {
		return "", fmt.Errorf("marshaling llm request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+messagesPath, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("building llm request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", c.apiKey)
	req.Header.Set("anthropic-version", anthropicVersion)

	start := time.Now()
	resp, err := c.httpc.Do(req)
	if err != nil {
		return "", fmt.Errorf("calling llm provider: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("reading llm response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("%w: status %d: %s", ErrRequestFailed, resp.StatusCode, providerError(data))
	}

	var mr messageResponse
	if err := json.Unmarshal(data, &mr); err != nil {
		return "", fmt.Errorf("decoding llm response: %w", err)
	}
	if len(mr.Content) == 0 || mr.Content[0].Text == "" {
		return "", ErrEmptyResponse
	}

	slog.Debug("LLM call complete",
		"model", c.model.Name,
		"duration_ms", time.Since(start).Milliseconds(),
		"input_tokens", mr.Usage.InputTokens,
		"output_tokens", mr.Usage.OutputTokens,
		"stop_reason", mr.StopReason)

	return mr.Content[0].Text, nil
}

// providerError extracts the provider's error message from a failure body,
// falling back to a truncated raw snippet.
func providerError(data []byte) string {
	var er errorResponse
	if err := json.Unmarshal(data, &er); err == nil && er.Error.Message != "" {
		return er.Error.Message
	}
	const max = 200
	if len(data) > max {
		data = data[:max]
	}
	return string(data)
}
