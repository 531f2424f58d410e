package api

import "github.com/eroom-dev/eroom/pkg/queue"

// ErrorResponse is the canonical error body.
type ErrorResponse struct {
	Error string `json:"error"`
}

// RootResponse is the liveness body for GET /.
type RootResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// HealthResponse is the body for GET /health.
type HealthResponse struct {
	Status string      `json:"status"`
	Queue  queue.Stats `json:"queue"`
}

// CreateRoomResponse acknowledges an accepted submission. Status is the
// Korean "waiting" UI string, a client contract.
type CreateRoomResponse struct {
	RUID    string `json:"ruid"`
	Status  string `json:"status"`
	Message string `json:"message"`
}

// JobStatusResponse is served while a polled job is still in flight.
type JobStatusResponse struct {
	RUID   string `json:"ruid"`
	Status string `json:"status"`
}
