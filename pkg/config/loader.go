package config

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"dario.cat/mergo"
)

// Initialize loads, validates, and returns ready-to-use configuration.
// This is the primary entry point for configuration loading.
//
// Steps performed:
//  1. Read the JSON file at path
//  2. Expand {{.ENV_VAR}} references
//  3. Parse JSON into structs
//  4. Apply default values (queue sizing, provider endpoints)
//  5. Validate all configuration
//  6. Return Config ready for use
func Initialize(path string) (*Config, error) {
	log := slog.With("config_path", path)
	log.Info("Initializing configuration")

	cfg, err := load(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrValidationFailed, err)
	}

	log.Info("Configuration initialized successfully",
		"model", cfg.Model.Name,
		"max_tokens", cfg.Model.MaxTokens,
		"workers", cfg.Queue.Workers)

	return cfg, nil
}

// load is the internal loader (not exported)
func load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, NewLoadError(path, ErrConfigNotFound)
		}
		return nil, NewLoadError(path, err)
	}

	// Expand environment variables before parsing
	data = ExpandEnv(data)

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, NewLoadError(path, fmt.Errorf("%w: %v", ErrInvalidJSON, err))
	}

	queue, err := resolveQueueConfig(cfg.Queue)
	if err != nil {
		return nil, NewLoadError(path, err)
	}
	cfg.Queue = queue

	if cfg.LLM.BaseURL == "" {
		cfg.LLM.BaseURL = DefaultLLMBaseURL
	}
	if cfg.Mesh.BaseURL == "" {
		cfg.Mesh.BaseURL = DefaultMeshBaseURL
	}

	return &cfg, nil
}

// resolveQueueConfig merges user-provided queue settings over the defaults.
// A nil user config means "all defaults".
func resolveQueueConfig(user *QueueConfig) (*QueueConfig, error) {
	defaults := DefaultQueueConfig()
	if user == nil {
		return defaults, nil
	}
	if err := mergo.Merge(user, defaults); err != nil {
		return nil, fmt.Errorf("merging queue defaults: %w", err)
	}
	return user, nil
}
