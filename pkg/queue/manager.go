package queue

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/eroom-dev/eroom/pkg/config"
	"github.com/eroom-dev/eroom/pkg/models"
	"github.com/eroom-dev/eroom/pkg/store"
)

// Manager owns the FIFO and the worker set. One instance per process.
type Manager struct {
	cfg      *config.QueueConfig
	store    *store.Store
	executor JobExecutor

	mu        sync.Mutex
	cond      *sync.Cond
	fifo      []item
	accepting bool
	started   bool

	workers  []*Worker
	wg       sync.WaitGroup
	stopOnce sync.Once

	// runCtx is the parent of every job context; cancelled only when the
	// shutdown budget is exhausted.
	runCtx    context.Context
	runCancel context.CancelFunc

	active    atomic.Int64
	completed atomic.Int64
}

// NewManager creates a manager over the given store and executor. Call
// Start before submitting.
func NewManager(cfg *config.QueueConfig, st *store.Store, executor JobExecutor) *Manager {
	m := &Manager{
		cfg:      cfg,
		store:    st,
		executor: executor,
	}
	m.cond = sync.NewCond(&m.mu)
	return m
}

// Start spawns the worker goroutines. Safe to call once; subsequent calls
// are no-ops.
func (m *Manager) Start(ctx context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.started {
		slog.Warn("Queue manager already started, ignoring duplicate Start call")
		return
	}
	m.started = true
	m.accepting = true
	m.runCtx, m.runCancel = context.WithCancel(ctx)

	for i := 0; i < m.cfg.Workers; i++ {
		w := newWorker(fmt.Sprintf("worker-%d", i), m)
		m.workers = append(m.workers, w)
		m.wg.Add(1)
		go w.run(m.runCtx)
	}

	slog.Info("Queue manager started", "workers", m.cfg.Workers)
}

// Submit registers a fresh job in QUEUED state and enqueues it. The
// returned ruid is what the client polls with. A submission that cannot be
// enqueued (shutdown began, or the submitter's context died between
// registration and enqueue) rolls its registration back.
func (m *Manager) Submit(ctx context.Context, req *models.CreationRequest) (string, error) {
	id := NewRUID()
	for m.store.Register(id) != nil {
		id = NewRUID()
	}

	if err := ctx.Err(); err != nil {
		m.store.Delete(id)
		return "", fmt.Errorf("submission cancelled: %w", err)
	}

	m.mu.Lock()
	if !m.accepting {
		m.mu.Unlock()
		m.store.Delete(id)
		return "", ErrShuttingDown
	}
	m.fifo = append(m.fifo, item{id: id, req: req})
	depth := len(m.fifo)
	m.cond.Signal()
	m.mu.Unlock()

	queueDepth.Set(float64(depth))
	slog.Info("Job queued", "job_id", id, "user_id", req.UserID, "queue_depth", depth)
	return id, nil
}

// take blocks until an item is available or shutdown begins. After
// shutdown no further items are handed out, even if the FIFO is non-empty;
// leftovers are failed by Stop.
func (m *Manager) take() (item, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for len(m.fifo) == 0 && m.accepting {
		m.cond.Wait()
	}
	if !m.accepting {
		return item{}, false
	}

	it := m.fifo[0]
	m.fifo = m.fifo[1:]
	queueDepth.Set(float64(len(m.fifo)))
	return it, true
}

// Stats returns a monitoring snapshot.
func (m *Manager) Stats() Stats {
	m.mu.Lock()
	queued := len(m.fifo)
	m.mu.Unlock()

	return Stats{
		Queued:        queued,
		Active:        int(m.active.Load()),
		Completed:     int(m.completed.Load()),
		MaxConcurrent: m.cfg.Workers,
	}
}

// Stop shuts the queue down: no new submissions, workers finish their
// current job and exit. When the configured budget runs out the job
// contexts are cancelled, which drives in-flight pipelines into their
// failure path. Jobs still queued when the workers exit are failed
// directly. Idempotent.
func (m *Manager) Stop(ctx context.Context) {
	m.stopOnce.Do(func() {
		slog.Info("Stopping queue manager")

		m.mu.Lock()
		m.accepting = false
		m.cond.Broadcast()
		m.mu.Unlock()

		done := make(chan struct{})
		go func() {
			m.wg.Wait()
			close(done)
		}()

		budget := m.cfg.ShutdownTimeout()
		select {
		case <-done:
		case <-time.After(budget):
			slog.Warn("Shutdown budget exhausted, cancelling in-flight jobs", "budget", budget)
			m.runCancel()
			select {
			case <-done:
			case <-ctx.Done():
				slog.Error("Workers did not exit after cancellation")
			}
		case <-ctx.Done():
			m.runCancel()
			<-done
		}

		m.failLeftovers()
		m.runCancel()
		slog.Info("Queue manager stopped", "completed", m.completed.Load())
	})
}

// failLeftovers records a FAILED document for jobs that were queued but
// never claimed. Without this, a client polling a drained job would wait
// forever on QUEUED.
func (m *Manager) failLeftovers() {
	m.mu.Lock()
	leftovers := m.fifo
	m.fifo = nil
	m.mu.Unlock()

	for _, it := range leftovers {
		// QUEUED → FAILED needs the intermediate claim.
		if err := m.store.MarkProcessing(it.id); err != nil {
			continue
		}
		doc := models.NewFailedDocument(it.id, it.req.UserID, "server shut down before the job started")
		if err := m.store.Fail(it.id, doc); err != nil {
			slog.Error("Could not fail leftover job", "job_id", it.id, "error", err)
		}
	}
	if len(leftovers) > 0 {
		queueDepth.Set(0)
		slog.Warn("Failed leftover queued jobs on shutdown", "count", len(leftovers))
	}
}
