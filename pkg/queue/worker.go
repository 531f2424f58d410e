package queue

import (
	"context"
	"log/slog"
)

// Worker is one queue drainer. It blocks on the FIFO, claims a job, and
// runs the executor. Terminal status is the executor's business; the
// worker only tracks lifecycle and counters.
type Worker struct {
	id      string
	manager *Manager
}

func newWorker(id string, m *Manager) *Worker {
	return &Worker{id: id, manager: m}
}

// run is the worker loop. It exits when take reports shutdown.
func (w *Worker) run(ctx context.Context) {
	defer w.manager.wg.Done()

	log := slog.With("worker_id", w.id)
	log.Info("Worker started")

	for {
		it, ok := w.manager.take()
		if !ok {
			log.Info("Worker shutting down")
			return
		}
		w.process(ctx, it)
	}
}

func (w *Worker) process(ctx context.Context, it item) {
	log := slog.With("worker_id", w.id, "job_id", it.id)

	if err := w.manager.store.MarkProcessing(it.id); err != nil {
		// The only way here is a submit rollback racing the claim.
		log.Warn("Could not claim job", "error", err)
		return
	}

	w.manager.active.Add(1)
	jobsActive.Inc()
	log.Info("Job claimed")

	err := w.manager.executor.Execute(ctx, it.id, it.req)

	w.manager.active.Add(-1)
	jobsActive.Dec()
	w.manager.completed.Add(1)

	outcome := "completed"
	if err != nil {
		outcome = "failed"
	}
	jobsProcessedTotal.WithLabelValues(outcome).Inc()
	log.Info("Job finished", "outcome", outcome)
}
