package e2e

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"

	"github.com/google/uuid"
)

// System prompts used by every test app; the scripted LLM routes on them.
const (
	scenarioPrompt = "You design escape room scenarios."
	scriptsPrompt  = "You write Unity C# scripts."
)

// llmRequest is the slice of the provider wire format the mock needs.
type llmRequest struct {
	Model       string  `json:"model"`
	MaxTokens   int     `json:"max_tokens"`
	Temperature float64 `json:"temperature"`
	System      string  `json:"system"`
	Messages    []struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"messages"`
}

// ScriptedLLM is a fake chat-completion provider. Responses are routed by
// system prompt: scenario calls consume ScenarioResponses in order (the
// last one repeats), script calls likewise. A nil gate means no blocking.
type ScriptedLLM struct {
	srv *httptest.Server

	mu                sync.Mutex
	ScenarioResponses []string
	ScriptsResponses  []string
	scenarioCalls     int
	scriptsCalls      int
	captured          []llmRequest

	// ScenarioGate, when set, blocks scenario calls until closed.
	// ScenarioStarted receives one signal per scenario call before the
	// gate is awaited.
	ScenarioGate    chan struct{}
	ScenarioStarted chan struct{}
}

// NewScriptedLLM starts the fake provider with default happy-path
// responses: a valid normal-difficulty scenario and a two-script bundle.
func NewScriptedLLM() *ScriptedLLM {
	l := &ScriptedLLM{
		ScenarioResponses: []string{ScenarioResponse(ScenarioDoc("normal", 2, 4))},
		ScriptsResponses:  []string{DefaultScriptsResponse},
	}
	l.srv = httptest.NewServer(http.HandlerFunc(l.handle))
	return l
}

// URL returns the provider base URL.
func (l *ScriptedLLM) URL() string { return l.srv.URL }

// Close shuts the provider down.
func (l *ScriptedLLM) Close() { l.srv.Close() }

// Captured returns all requests seen so far.
func (l *ScriptedLLM) Captured() []llmRequest {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]llmRequest(nil), l.captured...)
}

func (l *ScriptedLLM) handle(w http.ResponseWriter, r *http.Request) {
	var req llmRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	l.mu.Lock()
	l.captured = append(l.captured, req)
	var text string
	var gate chan struct{}
	var started chan struct{}
	if req.System == scenarioPrompt {
		text = pick(l.ScenarioResponses, l.scenarioCalls)
		l.scenarioCalls++
		gate = l.ScenarioGate
		started = l.ScenarioStarted
	} else {
		text = pick(l.ScriptsResponses, l.scriptsCalls)
		l.scriptsCalls++
	}
	l.mu.Unlock()

	if started != nil {
		started <- struct{}{}
	}
	if gate != nil {
		<-gate
	}

	_ = json.NewEncoder(w).Encode(map[string]any{
		"content":     []map[string]any{{"type": "text", "text": text}},
		"stop_reason": "end_turn",
		"usage":       map[string]int{"input_tokens": 10, "output_tokens": 100},
	})
}

// pick returns responses[i], repeating the last entry past the end.
func pick(responses []string, i int) string {
	if len(responses) == 0 {
		return ""
	}
	if i >= len(responses) {
		i = len(responses) - 1
	}
	return responses[i]
}

// ScriptedMesh is a fake text-to-3D provider. Respond decides each call's
// outcome; the default issues sequential task ids.
type ScriptedMesh struct {
	srv *httptest.Server

	mu      sync.Mutex
	calls   int
	prompts []string

	// Respond maps the zero-based call ordinal to an HTTP status. A non-2xx
	// status is sent with an empty body.
	Respond func(call int) int
}

// NewScriptedMesh starts the fake provider.
func NewScriptedMesh() *ScriptedMesh {
	m := &ScriptedMesh{}
	m.srv = httptest.NewServer(http.HandlerFunc(m.handle))
	return m
}

// URL returns the provider base URL.
func (m *ScriptedMesh) URL() string { return m.srv.URL }

// Close shuts the provider down.
func (m *ScriptedMesh) Close() { m.srv.Close() }

// Calls returns how many submissions arrived.
func (m *ScriptedMesh) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

func (m *ScriptedMesh) handle(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Prompt string `json:"prompt"`
		Mode   string `json:"mode"`
	}
	_ = json.NewDecoder(r.Body).Decode(&body)

	m.mu.Lock()
	call := m.calls
	m.calls++
	m.prompts = append(m.prompts, body.Prompt)
	respond := m.Respond
	m.mu.Unlock()

	status := http.StatusOK
	if respond != nil {
		status = respond(call)
	}
	if status < 200 || status >= 300 {
		w.WriteHeader(status)
		return
	}
	_ = json.NewEncoder(w).Encode(map[string]string{"resource_id": "mesh-task-" + uuid.NewString()})
}
