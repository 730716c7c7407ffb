// Package scheduler runs named periodic tasks on the fx lifecycle.
package scheduler

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"echotrail/internal/util"

	"github.com/pkg/errors"
	"go.uber.org/fx"
)

// Task is one periodic unit of work. Run errors are logged, never fatal.
type Task func(ctx context.Context) error

type registration struct {
	name     string
	interval time.Duration
	task     Task
	inFlight atomic.Bool
}

// Scheduler owns a set of named tickers. Registering the same name twice
// is a no-op, so callers can register unconditionally on every startup.
type Scheduler struct {
	logger  *slog.Logger
	mu      sync.Mutex
	entries map[string]*registration
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	started bool
}

// Params holds dependencies for the Scheduler, injected by Fx
type Params struct {
	fx.In

	Lc     fx.Lifecycle
	Logger *slog.Logger
}

// New creates a Scheduler bound to the fx lifecycle
func New(params Params) *Scheduler {
	s := &Scheduler{
		logger:  params.Logger,
		entries: make(map[string]*registration),
	}

	params.Lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			s.start()

			return nil
		},
		OnStop: func(ctx context.Context) error {
			s.stop()

			return nil
		},
	})

	return s
}

// Register adds a named periodic task. A second registration under the
// same name is ignored and reported back to the caller.
func (s *Scheduler) Register(name string, interval time.Duration, task Task) (bool, error) {
	if interval <= 0 {
		return false, errors.Errorf("invalid interval for task %s: %s", name, interval)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.entries[name]; exists {
		s.logger.Info("Task already registered, skipping",
			slog.String("task", name))

		return false, nil
	}
	if s.started {
		return false, errors.Errorf("scheduler already started, cannot register task %s", name)
	}

	s.entries[name] = &registration{
		name:     name,
		interval: interval,
		task:     task,
	}

	return true, nil
}

// Registered reports whether a task name is already bound.
func (s *Scheduler) Registered(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, exists := s.entries[name]

	return exists
}

func (s *Scheduler) start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return
	}
	s.started = true

	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel

	for _, entry := range s.entries {
		s.wg.Add(1)
		go s.loop(ctx, entry)
	}
}

func (s *Scheduler) stop() {
	s.mu.Lock()
	cancel := s.cancel
	s.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	s.wg.Wait()

	s.logger.Info("Scheduler stopped")
}

func (s *Scheduler) loop(ctx context.Context, entry *registration) {
	defer s.wg.Done()

	s.logger.Info("Scheduled task started",
		slog.String("task", entry.name),
		slog.String("interval", util.FormatDuration(entry.interval)))

	ticker := time.NewTicker(entry.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.runOnce(ctx, entry)
		}
	}
}

func (s *Scheduler) runOnce(ctx context.Context, entry *registration) {
	// A tick that fires while the previous run is still going is dropped,
	// the next tick picks up the work.
	if !entry.inFlight.CompareAndSwap(false, true) {
		s.logger.Info("Previous run still in flight, skipping tick",
			slog.String("task", entry.name))

		return
	}
	defer entry.inFlight.Store(false)

	if err := entry.task(ctx); err != nil {
		s.logger.Error("Scheduled task failed",
			slog.String("task", entry.name),
			slog.Any("error", err))
	}
}
