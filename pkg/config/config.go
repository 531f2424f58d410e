// Package config loads and validates the service configuration: prompt
// templates, LLM model parameters, queue sizing, and provider endpoints.
// The configuration is a single JSON document read once at startup.
package config

// Config is the root configuration for the eroom server.
type Config struct {
	Prompts PromptsConfig `json:"prompts"`
	Model   ModelConfig   `json:"model"`
	Queue   *QueueConfig  `json:"queue,omitempty"`
	LLM     LLMConfig     `json:"llm,omitempty"`
	Mesh    MeshConfig    `json:"mesh,omitempty"`
}

// PromptsConfig carries the system prompts for the two LLM calls a job makes.
type PromptsConfig struct {
	// Scenario is the system prompt for scenario generation.
	Scenario string `json:"scenario"`

	// UnifiedScripts is the system prompt for the single script-generation
	// call that produces all C# scripts for a room.
	UnifiedScripts string `json:"unified_scripts"`
}

// ModelConfig carries LLM model parameters. Temperatures are split by role:
// scenario generation benefits from more variety than script generation.
type ModelConfig struct {
	Name                string  `json:"name"`
	MaxTokens           int     `json:"maxTokens"`
	ScenarioTemperature float64 `json:"scenarioTemperature"`
	ScriptTemperature   float64 `json:"scriptTemperature"`
}

// LLMConfig carries the chat-completion provider endpoint.
type LLMConfig struct {
	BaseURL string `json:"baseUrl"`
}

// MeshConfig carries the text-to-3D provider endpoint.
type MeshConfig struct {
	BaseURL string `json:"baseUrl"`
}

// Default provider endpoints, overridable for tests and proxies.
const (
	DefaultLLMBaseURL  = "https://api.anthropic.com"
	DefaultMeshBaseURL = "https://api.meshy.ai"
)

// validate checks the assembled configuration. Returns the first violation
// as a *ValidationError.
func validate(cfg *Config) error {
	if cfg.Prompts.Scenario == "" {
		return NewValidationError("prompts", "scenario", ErrMissingRequiredField)
	}
	if cfg.Prompts.UnifiedScripts == "" {
		return NewValidationError("prompts", "unified_scripts", ErrMissingRequiredField)
	}
	if cfg.Model.Name == "" {
		return NewValidationError("model", "name", ErrMissingRequiredField)
	}
	if cfg.Model.MaxTokens <= 0 {
		return NewValidationError("model", "maxTokens", ErrInvalidValue)
	}
	if cfg.Model.ScenarioTemperature < 0 || cfg.Model.ScenarioTemperature > 1 {
		return NewValidationError("model", "scenarioTemperature", ErrInvalidValue)
	}
	if cfg.Model.ScriptTemperature < 0 || cfg.Model.ScriptTemperature > 1 {
		return NewValidationError("model", "scriptTemperature", ErrInvalidValue)
	}
	if cfg.Queue.Workers < 1 {
		return NewValidationError("queue", "workers", ErrInvalidValue)
	}
	if cfg.Queue.ShutdownTimeoutSeconds < 1 {
		return NewValidationError("queue", "shutdownTimeoutSeconds", ErrInvalidValue)
	}
	if cfg.LLM.BaseURL == "" {
		return NewValidationError("llm", "baseUrl", ErrMissingRequiredField)
	}
	if cfg.Mesh.BaseURL == "" {
		return NewValidationError("mesh", "baseUrl", ErrMissingRequiredField)
	}
	return nil
}
