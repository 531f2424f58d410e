package queue

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eroom-dev/eroom/pkg/config"
	"github.com/eroom-dev/eroom/pkg/models"
	"github.com/eroom-dev/eroom/pkg/store"
)

// fakeExecutor completes every job, optionally blocking until released.
type fakeExecutor struct {
	store   *store.Store
	block   chan struct{} // nil means run to completion immediately
	mu      sync.Mutex
	order   []string
	running atomic.Int64
	peak    atomic.Int64
}

func (f *fakeExecutor) Execute(ctx context.Context, jobID string, req *models.CreationRequest) error {
	n := f.running.Add(1)
	defer f.running.Add(-1)
	for {
		peak := f.peak.Load()
		if n <= peak || f.peak.CompareAndSwap(peak, n) {
			break
		}
	}

	f.mu.Lock()
	f.order = append(f.order, jobID)
	f.mu.Unlock()

	if f.block != nil {
		select {
		case <-f.block:
		case <-ctx.Done():
			doc := models.NewFailedDocument(jobID, req.UserID, "cancelled during shutdown")
			return f.store.Fail(jobID, doc)
		}
	}

	doc := models.NewCompletedDocument(jobID, req.UserID, nil, nil, nil)
	return f.store.Complete(jobID, doc)
}

func (f *fakeExecutor) processed() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.order...)
}

func testManager(t *testing.T, workers int, exec *fakeExecutor) (*Manager, *store.Store) {
	t.Helper()
	st := store.New()
	if exec.store == nil {
		exec.store = st
	}
	cfg := &config.QueueConfig{Workers: workers, ShutdownTimeoutSeconds: 1}
	m := NewManager(cfg, st, exec)
	return m, st
}

func request(user string) *models.CreationRequest {
	return &models.CreationRequest{
		UserID:     user,
		Theme:      "t",
		Keywords:   []string{"k"},
		RoomPrefab: "https://ex/r.txt",
	}
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met in time")
}

func TestSubmitRegistersBeforeReturning(t *testing.T) {
	exec := &fakeExecutor{block: make(chan struct{})}
	m, st := testManager(t, 1, exec)
	m.Start(context.Background())
	defer m.Stop(context.Background())
	defer close(exec.block)

	id, err := m.Submit(context.Background(), request("u1"))
	require.NoError(t, err)
	assert.Regexp(t, `^room-[0-9a-f]{16}$`, id)

	snap, ok := st.Get(id)
	require.True(t, ok)
	assert.Contains(t, []models.JobStatus{models.StatusQueued, models.StatusProcessing}, snap.Status)
}

func TestJobsCompleteInFIFOOrder(t *testing.T) {
	exec := &fakeExecutor{}
	m, st := testManager(t, 1, exec)
	m.Start(context.Background())
	defer m.Stop(context.Background())

	var ids []string
	for i := 0; i < 5; i++ {
		id, err := m.Submit(context.Background(), request("u"))
		require.NoError(t, err)
		ids = append(ids, id)
	}

	waitFor(t, func() bool { return m.Stats().Completed == 5 })
	assert.Equal(t, ids, exec.processed())

	for _, id := range ids {
		snap, ok := st.Get(id)
		require.True(t, ok)
		assert.Equal(t, models.StatusCompleted, snap.Status)
	}
}

func TestActiveNeverExceedsWorkerCount(t *testing.T) {
	exec := &fakeExecutor{block: make(chan struct{})}
	m, _ := testManager(t, 2, exec)
	m.Start(context.Background())

	for i := 0; i < 6; i++ {
		_, err := m.Submit(context.Background(), request("u"))
		require.NoError(t, err)
	}

	waitFor(t, func() bool { return m.Stats().Active == 2 })
	stats := m.Stats()
	assert.Equal(t, 2, stats.Active)
	assert.Equal(t, 4, stats.Queued)
	assert.Equal(t, 2, stats.MaxConcurrent)

	close(exec.block)
	waitFor(t, func() bool { return m.Stats().Completed == 6 })
	assert.LessOrEqual(t, exec.peak.Load(), int64(2))
}

func TestDistinctRUIDsForIdenticalBodies(t *testing.T) {
	exec := &fakeExecutor{}
	m, _ := testManager(t, 1, exec)
	m.Start(context.Background())
	defer m.Stop(context.Background())

	a, err := m.Submit(context.Background(), request("u"))
	require.NoError(t, err)
	b, err := m.Submit(context.Background(), request("u"))
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestSubmitAfterStopRollsBackRegistration(t *testing.T) {
	exec := &fakeExecutor{}
	m, st := testManager(t, 1, exec)
	m.Start(context.Background())
	m.Stop(context.Background())

	_, err := m.Submit(context.Background(), request("u"))
	assert.ErrorIs(t, err, ErrShuttingDown)
	assert.Equal(t, 0, st.Len())
}

func TestSubmitWithCancelledContextRollsBack(t *testing.T) {
	exec := &fakeExecutor{}
	m, st := testManager(t, 1, exec)
	m.Start(context.Background())
	defer m.Stop(context.Background())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := m.Submit(ctx, request("u"))
	require.Error(t, err)
	assert.Equal(t, 0, st.Len())
}

func TestStopFailsLeftoverQueuedJobs(t *testing.T) {
	exec := &fakeExecutor{block: make(chan struct{})}
	m, st := testManager(t, 1, exec)
	m.Start(context.Background())

	first, err := m.Submit(context.Background(), request("u"))
	require.NoError(t, err)
	waitFor(t, func() bool { return m.Stats().Active == 1 })

	second, err := m.Submit(context.Background(), request("u"))
	require.NoError(t, err)

	// Worker is stuck on the first job; Stop's budget (1s) expires, the
	// job context is cancelled, and the queued second job is failed.
	m.Stop(context.Background())

	snap, ok := st.Get(first)
	require.True(t, ok)
	assert.Equal(t, models.StatusFailed, snap.Status)

	snap, ok = st.Get(second)
	require.True(t, ok)
	assert.Equal(t, models.StatusFailed, snap.Status)
	assert.Contains(t, snap.Result.Error, "shut down")
}

func TestStopIsIdempotent(t *testing.T) {
	exec := &fakeExecutor{}
	m, _ := testManager(t, 1, exec)
	m.Start(context.Background())
	m.Stop(context.Background())
	m.Stop(context.Background())
}

func TestNewRUIDShape(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id := NewRUID()
		assert.Regexp(t, `^room-[0-9a-f]{16}$`, id)
		assert.False(t, seen[id], "duplicate ruid %s", id)
		seen[id] = true
	}
}
