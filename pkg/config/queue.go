package config

import "time"

// QueueConfig contains queue and worker pool configuration.
type QueueConfig struct {
	// Workers is the number of worker goroutines draining the job queue.
	// Each worker processes one job at a time, so this is also the maximum
	// number of concurrently processing jobs.
	Workers int `json:"workers"`

	// ShutdownTimeoutSeconds is the max time to wait for in-flight jobs to
	// complete during shutdown before their contexts are cancelled.
	ShutdownTimeoutSeconds int `json:"shutdownTimeoutSeconds"`
}

// ShutdownTimeout returns the shutdown budget as a duration.
func (c *QueueConfig) ShutdownTimeout() time.Duration {
	return time.Duration(c.ShutdownTimeoutSeconds) * time.Second
}

// DefaultQueueConfig returns the built-in queue defaults.
func DefaultQueueConfig() *QueueConfig {
	return &QueueConfig{
		Workers:                1,
		ShutdownTimeoutSeconds: 10,
	}
}
