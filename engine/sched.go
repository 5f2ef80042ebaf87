package engine

import (
	"sync"
	"time"
)

// ----- Scheduled Task ----- //

// scheduledTask is a single-shot timer with clean cancellation semantics:
// after cancel returns, the callback will not fire. Rescheduling from inside
// the callback gives the recurring random-interval pattern used by the
// macro scene and the random walks.
type scheduledTask struct {
	mu        sync.Mutex
	timer     *time.Timer
	cancelled bool
}

// schedule runs f after d on a timer goroutine.
func schedule(d time.Duration, f func()) *scheduledTask {
	t := &scheduledTask{}
	t.timer = time.AfterFunc(d, func() {
		t.mu.Lock()
		if t.cancelled {
			t.mu.Unlock()
			return
		}
		t.mu.Unlock()
		f()
	})
	return t
}

func (t *scheduledTask) cancel() {
	if t == nil {
		return
	}
	t.mu.Lock()
	t.cancelled = true
	if t.timer != nil {
		t.timer.Stop()
	}
	t.mu.Unlock()
}

// ----- Tick Source ----- //

// tickSource abstracts the morph engine's frame pump: a periodic callback
// with sub-100ms resolution that can be cancelled. Tests substitute a manual
// implementation.
type tickSource interface {
	start(onTick func())
	stop()
}

type tickerSource struct {
	interval time.Duration
	mu       sync.Mutex
	done     chan struct{}
}

func newTickerSource(interval time.Duration) *tickerSource {
	return &tickerSource{interval: interval}
}

func (ts *tickerSource) start(onTick func()) {
	ts.mu.Lock()
	if ts.done != nil {
		ts.mu.Unlock()
		return
	}
	done := make(chan struct{})
	ts.done = done
	ts.mu.Unlock()
	go func() {
		ticker := time.NewTicker(ts.interval)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				onTick()
			}
		}
	}()
}

func (ts *tickerSource) stop() {
	ts.mu.Lock()
	if ts.done != nil {
		close(ts.done)
		ts.done = nil
	}
	ts.mu.Unlock()
}
