package engine

import (
	"math/rand"
	"sync"
	"time"
)

// Random walk rates are capped to ambient speeds: faster drift turns the
// organic wander into audible warble.
const (
	walkRateMinHz = 0.005
	walkRateMaxHz = 0.1
)

// ----- Random Walk ----- //

// randomWalk drifts a value inside [min,max] by a bounded uniform step on a
// fixed period, emitting each new value to its callback. It models slow
// organic movement, e.g. a bass frequency wandering a few Hz over tens of
// seconds.
type randomWalk struct {
	mu           sync.Mutex
	value        float64
	min, max     float64
	stepFraction float64
	rateHz       float64
	running      bool
	task         *scheduledTask
	rng          *rand.Rand
	onValue      func(float64)
}

func newRandomWalk(value, min, max, stepFraction, rateHz float64, rng *rand.Rand, onValue func(float64)) *randomWalk {
	w := &randomWalk{
		min:          min,
		max:          max,
		stepFraction: stepFraction,
		rng:          rng,
		onValue:      onValue,
	}
	w.value = clampF(value, min, max)
	w.rateHz = clampF(rateHz, walkRateMinHz, walkRateMaxHz)
	return w
}

func (w *randomWalk) start() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.running {
		return
	}
	w.running = true
	w.reschedule()
}

func (w *randomWalk) stop() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.running {
		return
	}
	w.running = false
	w.task.cancel()
	w.task = nil
}

// setRate restarts the period at the new interval when running; a stopped
// walk just remembers the rate for the next start. There is never more than
// one timer outstanding.
func (w *randomWalk) setRate(rateHz float64) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.rateHz = clampF(rateHz, walkRateMinHz, walkRateMaxHz)
	if w.running {
		w.task.cancel()
		w.reschedule()
	}
}

// setRange updates the bounds and re-clamps the current value immediately,
// without waiting for the next tick. The callback only fires from ticks;
// callers that move the bounds are expected to re-anchor the target
// themselves, which keeps setRange safe to call from inside the callback's
// own lock.
func (w *randomWalk) setRange(min, max float64) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if max < min {
		min, max = max, min
	}
	w.min = min
	w.max = max
	w.value = clampF(w.value, min, max)
}

func (w *randomWalk) current() float64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.value
}

// reschedule must be called with w.mu held.
func (w *randomWalk) reschedule() {
	interval := time.Duration(float64(time.Second) / w.rateHz)
	w.task = schedule(interval, w.tick)
}

func (w *randomWalk) tick() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return
	}
	span := w.max - w.min
	delta := (w.rng.Float64()*2 - 1) * w.stepFraction * span
	w.value = clampF(w.value+delta, w.min, w.max)
	value := w.value
	cb := w.onValue
	w.reschedule()
	w.mu.Unlock()
	if cb != nil {
		cb(value)
	}
}
