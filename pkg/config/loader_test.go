package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "eroom.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

const minimalConfig = `{
  "prompts": {"scenario": "You design escape rooms.", "unified_scripts": "You write Unity C# scripts."},
  "model": {"name": "claude-sonnet-4-5", "maxTokens": 8192, "scenarioTemperature": 0.9, "scriptTemperature": 0.2}
}`

func TestInitializeAppliesDefaults(t *testing.T) {
	cfg, err := Initialize(writeConfig(t, minimalConfig))
	require.NoError(t, err)

	assert.Equal(t, "You design escape rooms.", cfg.Prompts.Scenario)
	assert.Equal(t, "claude-sonnet-4-5", cfg.Model.Name)
	assert.Equal(t, 8192, cfg.Model.MaxTokens)

	// Omitted sections resolve to defaults.
	assert.Equal(t, 1, cfg.Queue.Workers)
	assert.Equal(t, 10*time.Second, cfg.Queue.ShutdownTimeout())
	assert.Equal(t, DefaultLLMBaseURL, cfg.LLM.BaseURL)
	assert.Equal(t, DefaultMeshBaseURL, cfg.Mesh.BaseURL)
}

func TestInitializeQueueOverride(t *testing.T) {
	cfg, err := Initialize(writeConfig(t, `{
  "prompts": {"scenario": "s", "unified_scripts": "u"},
  "model": {"name": "m", "maxTokens": 1024, "scenarioTemperature": 0.5, "scriptTemperature": 0.5},
  "queue": {"workers": 4}
}`))
	require.NoError(t, err)

	assert.Equal(t, 4, cfg.Queue.Workers)
	// Unset queue fields still come from defaults.
	assert.Equal(t, 10, cfg.Queue.ShutdownTimeoutSeconds)
}

func TestInitializeMissingFile(t *testing.T) {
	_, err := Initialize(filepath.Join(t.TempDir(), "nope.json"))

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrConfigNotFound)
}

func TestInitializeInvalidJSON(t *testing.T) {
	_, err := Initialize(writeConfig(t, `{"prompts": `))

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidJSON)

	var loadErr *LoadError
	require.ErrorAs(t, err, &loadErr)
	assert.Contains(t, loadErr.File, "eroom.json")
}

func TestInitializeValidation(t *testing.T) {
	tests := []struct {
		name        string
		content     string
		wantSection string
		wantField   string
		wantErr     error
	}{
		{
			name: "missing scenario prompt",
			content: `{
  "prompts": {"unified_scripts": "u"},
  "model": {"name": "m", "maxTokens": 1024}
}`,
			wantSection: "prompts",
			wantField:   "scenario",
			wantErr:     ErrMissingRequiredField,
		},
		{
			name: "missing model name",
			content: `{
  "prompts": {"scenario": "s", "unified_scripts": "u"},
  "model": {"maxTokens": 1024}
}`,
			wantSection: "model",
			wantField:   "name",
			wantErr:     ErrMissingRequiredField,
		},
		{
			name: "zero max tokens",
			content: `{
  "prompts": {"scenario": "s", "unified_scripts": "u"},
  "model": {"name": "m"}
}`,
			wantSection: "model",
			wantField:   "maxTokens",
			wantErr:     ErrInvalidValue,
		},
		{
			name: "temperature out of range",
			content: `{
  "prompts": {"scenario": "s", "unified_scripts": "u"},
  "model": {"name": "m", "maxTokens": 1024, "scenarioTemperature": 1.5}
}`,
			wantSection: "model",
			wantField:   "scenarioTemperature",
			wantErr:     ErrInvalidValue,
		},
		{
			name: "zero workers",
			content: `{
  "prompts": {"scenario": "s", "unified_scripts": "u"},
  "model": {"name": "m", "maxTokens": 1024},
  "queue": {"workers": -1}
}`,
			wantSection: "queue",
			wantField:   "workers",
			wantErr:     ErrInvalidValue,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Initialize(writeConfig(t, tt.content))

			require.Error(t, err)
			assert.ErrorIs(t, err, ErrValidationFailed)
			assert.ErrorIs(t, err, tt.wantErr)

			var valErr *ValidationError
			require.ErrorAs(t, err, &valErr)
			assert.Equal(t, tt.wantSection, valErr.Section)
			assert.Equal(t, tt.wantField, valErr.Field)
		})
	}
}

func TestInitializeExpandsEnv(t *testing.T) {
	t.Setenv("EROOM_TEST_MODEL", "claude-haiku-4-5")

	cfg, err := Initialize(writeConfig(t, `{
  "prompts": {"scenario": "s", "unified_scripts": "u"},
  "model": {"name": "{{.EROOM_TEST_MODEL}}", "maxTokens": 1024, "scenarioTemperature": 0.5, "scriptTemperature": 0.5}
}`))
	require.NoError(t, err)

	assert.Equal(t, "claude-haiku-4-5", cfg.Model.Name)
}
