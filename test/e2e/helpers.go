package e2e

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/eroom-dev/eroom/pkg/models"
	"github.com/eroom-dev/eroom/pkg/queue"
)

// httpDo sends an authenticated request and returns status and body.
func (app *TestApp) httpDo(method, path, body string) (int, []byte) {
	app.t.Helper()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, app.BaseURL+path, reader)
	require.NoError(app.t, err)
	req.Header.Set("Authorization", "Bearer "+testToken)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(app.t, err)
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	require.NoError(app.t, err)
	return resp.StatusCode, data
}

// Submit posts a creation request body and returns status and parsed body.
func (app *TestApp) Submit(body string) (int, map[string]any) {
	app.t.Helper()
	status, data := app.httpDo(http.MethodPost, "/room/create", body)
	var parsed map[string]any
	require.NoError(app.t, json.Unmarshal(data, &parsed))
	return status, parsed
}

// SubmitOK posts a creation request and requires a 202, returning the ruid.
func (app *TestApp) SubmitOK(body string) string {
	app.t.Helper()
	status, parsed := app.Submit(body)
	require.Equal(app.t, http.StatusAccepted, status, "submit response: %v", parsed)
	require.Equal(app.t, "대기중", parsed["status"])
	ruid, _ := parsed["ruid"].(string)
	require.NotEmpty(app.t, ruid)
	return ruid
}

// Poll fetches /room/result once.
func (app *TestApp) Poll(ruid string) (int, []byte) {
	app.t.Helper()
	return app.httpDo(http.MethodGet, "/room/result?ruid="+ruid, "")
}

// WaitTerminal polls until the job's terminal document is delivered.
func (app *TestApp) WaitTerminal(ruid string) *models.ResultDocument {
	app.t.Helper()

	deadline := time.Now().Add(10 * time.Second)
	for time.Now().Before(deadline) {
		status, data := app.Poll(ruid)
		require.Equal(app.t, http.StatusOK, status, "poll body: %s", data)

		var doc models.ResultDocument
		require.NoError(app.t, json.Unmarshal(data, &doc))
		if doc.Timestamp != 0 {
			return &doc
		}
		time.Sleep(10 * time.Millisecond)
	}
	app.t.Fatalf("job %s did not reach a terminal state", ruid)
	return nil
}

// QueueStatus fetches /queue/status.
func (app *TestApp) QueueStatus() queue.Stats {
	app.t.Helper()
	status, data := app.httpDo(http.MethodGet, "/queue/status", "")
	require.Equal(app.t, http.StatusOK, status)

	var stats queue.Stats
	require.NoError(app.t, json.Unmarshal(data, &stats))
	return stats
}
