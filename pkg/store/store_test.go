package store

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eroom-dev/eroom/pkg/models"
)

func TestRegisterRejectsDuplicateID(t *testing.T) {
	s := New()

	require.NoError(t, s.Register("room-aaaa"))
	err := s.Register("room-aaaa")

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDuplicateID)
	assert.Equal(t, 1, s.Len())
}

func TestLifecycleHappyPath(t *testing.T) {
	s := New()
	doc := models.NewCompletedDocument("room-bbbb", "user-1", []byte(`{"ok":true}`), nil, nil)

	require.NoError(t, s.Register("room-bbbb"))

	snap, ok := s.Get("room-bbbb")
	require.True(t, ok)
	assert.Equal(t, models.StatusQueued, snap.Status)
	assert.Nil(t, snap.Result)

	require.NoError(t, s.MarkProcessing("room-bbbb"))
	snap, ok = s.Get("room-bbbb")
	require.True(t, ok)
	assert.Equal(t, models.StatusProcessing, snap.Status)

	require.NoError(t, s.Complete("room-bbbb", doc))

	snap, ok = s.Collect("room-bbbb")
	require.True(t, ok)
	assert.Equal(t, models.StatusCompleted, snap.Status)
	require.NotNil(t, snap.Result)
	assert.True(t, snap.Result.Success)

	// Collected terminal entry is gone.
	_, ok = s.Get("room-bbbb")
	assert.False(t, ok)
	assert.Equal(t, 0, s.Len())
}

func TestMarkProcessingUnknownJob(t *testing.T) {
	s := New()

	err := s.MarkProcessing("room-missing")

	assert.ErrorIs(t, err, ErrNotFound)
}

func TestIllegalTransitions(t *testing.T) {
	failedDoc := models.NewFailedDocument("id", "user-1", "boom")
	completedDoc := models.NewCompletedDocument("id", "user-1", nil, nil, nil)

	tests := []struct {
		name string
		run  func(s *Store) error
	}{
		{
			name: "complete while queued",
			run: func(s *Store) error {
				return s.Complete("id", completedDoc)
			},
		},
		{
			name: "fail while queued",
			run: func(s *Store) error {
				return s.Fail("id", failedDoc)
			},
		},
		{
			name: "double mark processing",
			run: func(s *Store) error {
				require.NoError(t, s.MarkProcessing("id"))
				return s.MarkProcessing("id")
			},
		},
		{
			name: "second terminal write",
			run: func(s *Store) error {
				require.NoError(t, s.MarkProcessing("id"))
				require.NoError(t, s.Complete("id", completedDoc))
				return s.Fail("id", failedDoc)
			},
		},
		{
			name: "processing after terminal",
			run: func(s *Store) error {
				require.NoError(t, s.MarkProcessing("id"))
				require.NoError(t, s.Fail("id", failedDoc))
				return s.MarkProcessing("id")
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := New()
			require.NoError(t, s.Register("id"))

			err := tt.run(s)

			assert.ErrorIs(t, err, ErrIllegalTransition)
		})
	}
}

func TestCollectLeavesNonTerminalInPlace(t *testing.T) {
	s := New()
	require.NoError(t, s.Register("room-cccc"))

	snap, ok := s.Collect("room-cccc")
	require.True(t, ok)
	assert.Equal(t, models.StatusQueued, snap.Status)

	// Still present: only terminal states are consumed.
	_, ok = s.Get("room-cccc")
	assert.True(t, ok)
}

func TestCollectDeliversTerminalExactlyOnce(t *testing.T) {
	s := New()
	require.NoError(t, s.Register("room-dddd"))
	require.NoError(t, s.MarkProcessing("room-dddd"))
	require.NoError(t, s.Complete("room-dddd", models.NewCompletedDocument("room-dddd", "user-1", nil, nil, nil)))

	const collectors = 16
	var wg sync.WaitGroup
	hits := make(chan Snapshot, collectors)

	for i := 0; i < collectors; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if snap, ok := s.Collect("room-dddd"); ok {
				hits <- snap
			}
		}()
	}
	wg.Wait()
	close(hits)

	var delivered int
	for snap := range hits {
		delivered++
		assert.Equal(t, models.StatusCompleted, snap.Status)
	}
	assert.Equal(t, 1, delivered, "terminal result must be handed out exactly once")
}

func TestDeleteRollsBackRegistration(t *testing.T) {
	s := New()
	require.NoError(t, s.Register("room-eeee"))

	assert.True(t, s.Delete("room-eeee"))
	assert.False(t, s.Delete("room-eeee"))
	_, ok := s.Get("room-eeee")
	assert.False(t, ok)
}
