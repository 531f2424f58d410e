// Package queue owns the FIFO of pending room-creation jobs and the fixed
// worker set that drains it. Submissions register in the result store and
// enqueue; workers claim items in order and hand them to the executor.
package queue

import (
	"context"
	"errors"

	"github.com/eroom-dev/eroom/pkg/models"
)

// Sentinel errors for queue operations.
var (
	// ErrShuttingDown indicates a submission arrived after shutdown began.
	ErrShuttingDown = errors.New("queue is shutting down")
)

// JobExecutor processes one claimed job to a terminal state. The executor
// owns the terminal store write; the returned error is for logging only.
type JobExecutor interface {
	Execute(ctx context.Context, jobID string, req *models.CreationRequest) error
}

// item is one queued job.
type item struct {
	id  string
	req *models.CreationRequest
}

// Stats is a monitoring snapshot of the queue. Counters are read
// independently; they are individually accurate but not mutually
// consistent under concurrent load.
type Stats struct {
	Queued        int `json:"queued"`
	Active        int `json:"active"`
	Completed     int `json:"completed"`
	MaxConcurrent int `json:"maxConcurrent"`
}
