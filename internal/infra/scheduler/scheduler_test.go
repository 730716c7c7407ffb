package scheduler

import (
	"context"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestScheduler() *Scheduler {
	return &Scheduler{
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
		entries: make(map[string]*registration),
	}
}

func TestRegister_DuplicateNameIsNoop(t *testing.T) {
	s := newTestScheduler()

	added, err := s.Register("note-sync", time.Minute, func(ctx context.Context) error { return nil })
	require.NoError(t, err)
	assert.True(t, added)

	added, err = s.Register("note-sync", time.Second, func(ctx context.Context) error { return nil })
	require.NoError(t, err)
	assert.False(t, added)

	assert.True(t, s.Registered("note-sync"))
	assert.False(t, s.Registered("other"))
}

func TestRegister_RejectsInvalidInterval(t *testing.T) {
	s := newTestScheduler()

	_, err := s.Register("bad", 0, func(ctx context.Context) error { return nil })
	require.Error(t, err)
}

func TestScheduler_RunsRegisteredTask(t *testing.T) {
	s := newTestScheduler()

	var runs atomic.Int32
	_, err := s.Register("tick", 10*time.Millisecond, func(ctx context.Context) error {
		runs.Add(1)

		return nil
	})
	require.NoError(t, err)

	s.start()
	defer s.stop()

	assert.Eventually(t, func() bool {
		return runs.Load() >= 2
	}, time.Second, 5*time.Millisecond)
}

func TestScheduler_SkipsOverlappingRuns(t *testing.T) {
	s := newTestScheduler()

	var started atomic.Int32
	release := make(chan struct{})
	_, err := s.Register("slow", 10*time.Millisecond, func(ctx context.Context) error {
		started.Add(1)
		select {
		case <-release:
		case <-ctx.Done():
		}

		return nil
	})
	require.NoError(t, err)

	s.start()

	// Let several ticks elapse while the first run blocks.
	time.Sleep(80 * time.Millisecond)
	assert.EqualValues(t, 1, started.Load())

	close(release)
	s.stop()
}

func TestScheduler_StopWaitsForTasks(t *testing.T) {
	s := newTestScheduler()

	done := make(chan struct{})
	_, err := s.Register("quick", 10*time.Millisecond, func(ctx context.Context) error {
		select {
		case <-done:
		default:
			close(done)
		}

		return nil
	})
	require.NoError(t, err)

	s.start()
	<-done
	s.stop()

	// Registration after start is rejected.
	_, err = s.Register("late", time.Minute, func(ctx context.Context) error { return nil })
	require.Error(t, err)
}
