package queue

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// queueDepth tracks the number of jobs waiting in the FIFO.
	queueDepth = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "eroom_queue_depth",
		Help: "Number of jobs waiting in the queue.",
	})

	// jobsActive tracks pipelines currently in flight.
	jobsActive = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "eroom_jobs_active",
		Help: "Number of jobs currently being processed.",
	})

	// jobsProcessedTotal counts finished jobs by outcome.
	jobsProcessedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "eroom_jobs_processed_total",
		Help: "Count of finished jobs by outcome.",
	}, []string{"outcome"})
)
