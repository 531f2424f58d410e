package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eroom-dev/eroom/pkg/config"
)

var testModel = config.ModelConfig{
	Name:                "claude-sonnet-4-5",
	MaxTokens:           4096,
	ScenarioTemperature: 0.9,
	ScriptTemperature:   0.2,
}

// textResponse wraps text in the provider's messages response shape.
func textResponse(t *testing.T, text string) []byte {
	t.Helper()
	data, err := json.Marshal(map[string]any{
		"content":     []map[string]any{{"type": "text", "text": text}},
		"stop_reason": "end_turn",
		"usage":       map[string]int{"input_tokens": 12, "output_tokens": 40},
	})
	require.NoError(t, err)
	return data
}

func TestGenerateScenarioRoundTrip(t *testing.T) {
	var captured messageRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, messagesPath, r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("x-api-key"))
		assert.Equal(t, anthropicVersion, r.Header.Get("anthropic-version"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))

		_, _ = w.Write(textResponse(t, "```json\n{\"scenario_data\":{\"theme\":\"vault\"},\"object_instructions\":[]}\n```"))
	}))
	defer srv.Close()

	c := NewClient(testModel, WithBaseURL(srv.URL), WithAPIKey("test-key"))
	defer c.Close()

	sc, err := c.GenerateScenario(context.Background(), "system prompt", map[string]string{"theme": "vault"})
	require.NoError(t, err)

	require.NotNil(t, sc.Data)
	assert.Equal(t, "vault", sc.Data.Theme)

	// The request carried the configured model parameters and the payload as
	// the single user message.
	assert.Equal(t, testModel.Name, captured.Model)
	assert.Equal(t, testModel.MaxTokens, captured.MaxTokens)
	assert.Equal(t, testModel.ScenarioTemperature, captured.Temperature)
	assert.Equal(t, "system prompt", captured.System)
	require.Len(t, captured.Messages, 1)
	assert.Equal(t, "user", captured.Messages[0].Role)
	assert.JSONEq(t, `{"theme":"vault"}`, captured.Messages[0].Content)
}

func TestGenerateScriptsUsesScriptTemperature(t *testing.T) {
	var captured messageRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		_, _ = w.Write(textResponse(t, "```csharp\npublic class GameManager {\n}\n```"))
	}))
	defer srv.Close()

	c := NewClient(testModel, WithBaseURL(srv.URL), WithAPIKey("test-key"))
	defer c.Close()

	bundle, err := c.GenerateScripts(context.Background(), "scripts prompt", map[string]string{})
	require.NoError(t, err)

	assert.Contains(t, bundle, "GameManager")
	assert.Equal(t, testModel.ScriptTemperature, captured.Temperature)
}

func TestGenerateScriptsEmptyBundle(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write(textResponse(t, "I cannot write scripts today."))
	}))
	defer srv.Close()

	c := NewClient(testModel, WithBaseURL(srv.URL), WithAPIKey("test-key"))
	defer c.Close()

	_, err := c.GenerateScripts(context.Background(), "scripts prompt", nil)

	assert.ErrorIs(t, err, ErrNoScripts)
}

func TestMissingAPIKeyIsJobError(t *testing.T) {
	t.Setenv(apiKeyEnv, "")

	c := NewClient(testModel)
	defer c.Close()

	_, err := c.GenerateScenario(context.Background(), "s", nil)
	assert.ErrorIs(t, err, ErrMissingAPIKey)

	// Sticky across calls — the client stays constructed-once.
	_, err = c.GenerateScripts(context.Background(), "s", nil)
	assert.ErrorIs(t, err, ErrMissingAPIKey)
}

func TestProviderErrorSurfaced(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"type":"error","error":{"type":"overloaded_error","message":"Overloaded"}}`))
	}))
	defer srv.Close()

	c := NewClient(testModel, WithBaseURL(srv.URL), WithAPIKey("test-key"))
	defer c.Close()

	_, err := c.GenerateScenario(context.Background(), "s", nil)

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrRequestFailed)
	assert.Contains(t, err.Error(), "Overloaded")
}

func TestEmptyContentRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"content":[],"stop_reason":"end_turn"}`))
	}))
	defer srv.Close()

	c := NewClient(testModel, WithBaseURL(srv.URL), WithAPIKey("test-key"))
	defer c.Close()

	_, err := c.GenerateScenario(context.Background(), "s", nil)

	assert.ErrorIs(t, err, ErrEmptyResponse)
}

func TestConcurrentFirstUse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write(textResponse(t, `{"scenario_data":{"theme":"x"},"object_instructions":[]}`))
	}))
	defer srv.Close()

	c := NewClient(testModel, WithBaseURL(srv.URL), WithAPIKey("test-key"))
	defer c.Close()

	var wg sync.WaitGroup
	errs := make(chan error, 8)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := c.GenerateScenario(context.Background(), "s", nil)
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		assert.NoError(t, err)
	}
}
