// Package e2e boots the complete eroom server against scripted LLM and
// mesh providers and exercises it over real HTTP.
package e2e

import (
	"context"
	"net/http/httptest"
	"testing"

	"github.com/eroom-dev/eroom/pkg/api"
	"github.com/eroom-dev/eroom/pkg/config"
	"github.com/eroom-dev/eroom/pkg/llm"
	"github.com/eroom-dev/eroom/pkg/mesh"
	"github.com/eroom-dev/eroom/pkg/pipeline"
	"github.com/eroom-dev/eroom/pkg/queue"
	"github.com/eroom-dev/eroom/pkg/store"
)

// Token every test app serves behind.
const testToken = "e2e-token"

// TestApp is a complete eroom instance wired to scripted providers.
type TestApp struct {
	Store   *store.Store
	Manager *queue.Manager
	LLM     *ScriptedLLM
	Mesh    *ScriptedMesh
	BaseURL string

	t *testing.T
}

type testAppConfig struct {
	workers   int
	configure func(*ScriptedLLM, *ScriptedMesh)
}

// TestAppOption configures the test app.
type TestAppOption func(*testAppConfig)

// WithWorkers sets the worker pool size.
func WithWorkers(n int) TestAppOption {
	return func(c *testAppConfig) { c.workers = n }
}

// WithProviders customizes the scripted providers before the app starts.
func WithProviders(f func(*ScriptedLLM, *ScriptedMesh)) TestAppOption {
	return func(c *testAppConfig) { c.configure = f }
}

// NewTestApp boots a server on a random port. Everything is torn down via
// t.Cleanup.
func NewTestApp(t *testing.T, opts ...TestAppOption) *TestApp {
	t.Helper()

	cfg := &testAppConfig{workers: 1}
	for _, opt := range opts {
		opt(cfg)
	}

	scriptedLLM := NewScriptedLLM()
	t.Cleanup(scriptedLLM.Close)
	scriptedMesh := NewScriptedMesh()
	t.Cleanup(scriptedMesh.Close)
	if cfg.configure != nil {
		cfg.configure(scriptedLLM, scriptedMesh)
	}

	model := config.ModelConfig{
		Name:                "claude-sonnet-4-5",
		MaxTokens:           8192,
		ScenarioTemperature: 0.9,
		ScriptTemperature:   0.2,
	}
	llmClient := llm.NewClient(model,
		llm.WithBaseURL(scriptedLLM.URL()),
		llm.WithAPIKey("e2e-key"))
	t.Cleanup(llmClient.Close)

	meshClient := mesh.NewClient(scriptedMesh.URL(), mesh.WithKeys("mk1", "mk2", "mk3"))
	t.Cleanup(meshClient.Close)

	jobStore := store.New()
	prompts := config.PromptsConfig{Scenario: scenarioPrompt, UnifiedScripts: scriptsPrompt}
	jobPipeline := pipeline.New(prompts, llmClient, meshClient, jobStore)

	queueCfg := &config.QueueConfig{Workers: cfg.workers, ShutdownTimeoutSeconds: 2}
	manager := queue.NewManager(queueCfg, jobStore, jobPipeline)
	manager.Start(context.Background())
	t.Cleanup(func() { manager.Stop(context.Background()) })

	server := api.NewServer(testToken, jobStore, manager)
	httpSrv := httptest.NewServer(server.Handler())
	t.Cleanup(httpSrv.Close)

	return &TestApp{
		Store:   jobStore,
		Manager: manager,
		LLM:     scriptedLLM,
		Mesh:    scriptedMesh,
		BaseURL: httpSrv.URL,
		t:       t,
	}
}
