// Package mesh is the gateway to the text-to-3D provider. Submissions are
// fire-and-track: the pipeline gets an opaque tracking id back and the
// provider finishes the model on its own time. Submission failures never
// become errors; they become sentinel tracking ids the client can inspect.
package mesh

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"sync/atomic"
	"time"
)

const (
	textTo3DPath = "/v2/text-to-3d"

	// requestTimeout bounds each provider round-trip.
	requestTimeout = 30 * time.Second

	// defaultPollInterval paces AwaitPreview's status checks.
	defaultPollInterval = 10 * time.Second

	// negativePrompt is sent with every preview submission to keep the
	// generated geometry clean.
	negativePrompt = "low quality, low resolution, low poly, ugly"
)

// Env var names for the rotating provider keys.
var keyEnvNames = []string{"MESHY_KEY_1", "MESHY_KEY_2", "MESHY_KEY_3"}

// Task states reported by the provider.
const (
	TaskSucceeded = "SUCCEEDED"
	TaskFailed    = "FAILED"
	TaskExpired   = "EXPIRED"
)

// Option configures a Client.
type Option func(*Client)

// WithBaseURL overrides the provider endpoint (tests, proxies).
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = u }
}

// WithKeys sets the API keys explicitly instead of collecting
// MESHY_KEY_1..3 from the environment.
func WithKeys(keys ...string) Option {
	return func(c *Client) { c.keys = keys }
}

// WithPollInterval overrides the AwaitPreview polling pace.
func WithPollInterval(d time.Duration) Option {
	return func(c *Client) { c.pollInterval = d }
}

// Client is the text-to-3D client. Safe for concurrent use; the rotation
// counter is atomic and the HTTP client is pooled.
type Client struct {
	baseURL      string
	keys         []string
	pollInterval time.Duration
	rotation     atomic.Int64
	httpc        *http.Client
}

// NewClient creates a client, collecting MESHY_KEY_1..3 from the
// environment (missing ones are skipped, order preserved) unless keys are
// supplied explicitly.
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:      baseURL,
		pollInterval: defaultPollInterval,
		httpc:        &http.Client{Timeout: requestTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.keys == nil {
		for _, env := range keyEnvNames {
			if k := os.Getenv(env); k != "" {
				c.keys = append(c.keys, k)
			}
		}
	}
	if len(c.keys) == 0 {
		slog.Warn("No mesh API keys configured; submissions will return sentinels")
	}
	return c
}

// Close releases pooled connections.
func (c *Client) Close() {
	c.httpc.CloseIdleConnections()
}

// key selects the bearer key for keyIndex (round-robin by modulo). A
// negative index draws from the client's own rotation counter instead.
func (c *Client) key(keyIndex int) (string, bool) {
	if len(c.keys) == 0 {
		return "", false
	}
	if keyIndex < 0 {
		keyIndex = int(c.rotation.Add(1) - 1)
	}
	return c.keys[keyIndex%len(c.keys)], true
}

// Wire types for the text-to-3d endpoint.

type submitRequest struct {
	Prompt         string `json:"prompt"`
	NegativePrompt string `json:"negative_prompt"`
	Mode           string `json:"mode"`
	PreviewTaskID  string `json:"preview_task_id,omitempty"`
}

type submitResponse struct {
	ResourceID string `json:"resource_id"`
}

// TaskStatus is a point-in-time view of a generation task.
type TaskStatus struct {
	ID       string `json:"id"`
	Status   string `json:"status"`
	Progress int    `json:"progress"`
	ModelURL string `json:"model_url"`
}

// SubmitModel submits one preview-mode generation for objectName and
// returns the provider's tracking id. keyIndex is the object's ordinal
// among the job's submissions and drives key rotation. Failures are
// reported as sentinel ids, never as errors; the caller keeps going.
func (c *Client) SubmitModel(ctx context.Context, prompt, objectName string, keyIndex int) string {
	id, kind := c.submit(ctx, keyIndex, submitRequest{
		Prompt:         prompt,
		NegativePrompt: negativePrompt,
		Mode:           "preview",
	})
	if kind != "" {
		meshSubmissionsTotal.WithLabelValues(kind).Inc()
		sentinel := Sentinel(kind)
		slog.Warn("Mesh submission failed",
			"object", objectName, "kind", kind, "tracking_id", sentinel)
		return sentinel
	}

	meshSubmissionsTotal.WithLabelValues("ok").Inc()
	slog.Info("Mesh job submitted", "object", objectName, "tracking_id", id)
	return id
}

// RefineModel submits a refine pass for a finished preview task. Failure
// yields a sentinel of kind refine. Not used by the core pipeline, which
// returns preview handles only.
func (c *Client) RefineModel(ctx context.Context, previewTaskID string, keyIndex int) string {
	id, kind := c.submit(ctx, keyIndex, submitRequest{
		Mode:          "refine",
		PreviewTaskID: previewTaskID,
	})
	if kind != "" {
		meshSubmissionsTotal.WithLabelValues(kind).Inc()
		return Sentinel(SentinelRefine)
	}
	meshSubmissionsTotal.WithLabelValues("ok").Inc()
	return id
}

// submit performs one POST and classifies the outcome: ("", kind) on
// failure, (id, "") on success.
func (c *Client) submit(ctx context.Context, keyIndex int, payload submitRequest) (string, string) {
	key, ok := c.key(keyIndex)
	if !ok {
		return "", SentinelException
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", SentinelException
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+textTo3DPath, bytes.NewReader(body))
	if err != nil {
		return "", SentinelException
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+key)

	resp, err := c.httpc.Do(req)
	if err != nil {
		return "", SentinelException
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", SentinelException
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", SentinelLocal
	}

	var sr submitResponse
	if err := json.Unmarshal(data, &sr); err != nil || sr.ResourceID == "" {
		return "", SentinelNoID
	}
	return sr.ResourceID, ""
}

// GetTask fetches the current status of a generation task.
func (c *Client) GetTask(ctx context.Context, trackingID string, keyIndex int) (*TaskStatus, error) {
	key, ok := c.key(keyIndex)
	if !ok {
		return nil, fmt.Errorf("no mesh API keys configured")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.baseURL+textTo3DPath+"/"+trackingID, nil)
	if err != nil {
		return nil, fmt.Errorf("building task request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+key)

	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching task %s: %w", trackingID, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("task %s: provider returned status %d", trackingID, resp.StatusCode)
	}

	var ts TaskStatus
	if err := json.NewDecoder(resp.Body).Decode(&ts); err != nil {
		return nil, fmt.Errorf("decoding task %s: %w", trackingID, err)
	}
	return &ts, nil
}

// AwaitPreview polls a preview task until it finishes. Returns the tracking
// id when the task succeeded, a sentinel of kind preview when the provider
// gave up on it, and an error when polling itself was cut short. Not used
// by the core pipeline.
func (c *Client) AwaitPreview(ctx context.Context, trackingID string, keyIndex int) (string, error) {
	ticker := time.NewTicker(c.pollInterval)
	defer ticker.Stop()

	for {
		ts, err := c.GetTask(ctx, trackingID, keyIndex)
		if err != nil {
			return "", err
		}
		switch ts.Status {
		case TaskSucceeded:
			return trackingID, nil
		case TaskFailed, TaskExpired:
			slog.Warn("Preview task did not finish", "tracking_id", trackingID, "status", ts.Status)
			return Sentinel(SentinelPreview), nil
		}

		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-ticker.C:
		}
	}
}
