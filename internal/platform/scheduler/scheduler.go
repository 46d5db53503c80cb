// Package scheduler runs named periodic tasks on a single goroutine per task:
// ticks never overlap, and every task stops promptly when its context is
// cancelled. It backs the console's pending-count refresh and the reminder
// sweep so background polling never blocks interactive work.
package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Func is one unit of periodic work. A returned error is logged, not fatal:
// the task keeps ticking.
type Func func(ctx context.Context) error

// Task is a cancellable periodic job.
type Task struct {
	name     string
	interval time.Duration
	fn       Func
	log      zerolog.Logger

	mu      sync.Mutex
	cancel  context.CancelFunc
	done    chan struct{}
	started bool
}

// NewTask builds a task that runs fn every interval.
func NewTask(name string, interval time.Duration, fn Func, log zerolog.Logger) *Task {
	return &Task{name: name, interval: interval, fn: fn, log: log}
}

// Start launches the task goroutine. The first run happens after one full
// interval. Start is a no-op if the task is already running.
func (t *Task) Start(ctx context.Context) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.started {
		return
	}
	ctx, t.cancel = context.WithCancel(ctx)
	t.done = make(chan struct{})
	t.started = true

	go t.loop(ctx)
}

func (t *Task) loop(ctx context.Context) {
	defer close(t.done)
	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			t.log.Debug().Str("task", t.name).Msg("periodic task stopped")
			return
		case <-ticker.C:
			// fn runs on this goroutine, so a slow tick delays the next
			// one instead of overlapping it.
			if err := t.fn(ctx); err != nil && ctx.Err() == nil {
				t.log.Warn().Err(err).Str("task", t.name).Msg("periodic task run failed")
			}
		}
	}
}

// Stop cancels the task and waits for the in-flight run, if any, to return.
func (t *Task) Stop() {
	t.mu.Lock()
	if !t.started {
		t.mu.Unlock()
		return
	}
	cancel, done := t.cancel, t.done
	t.started = false
	t.mu.Unlock()

	cancel()
	<-done
}
