package engine

import (
	"math/rand"
	"testing"
)

func stepWalk(w *randomWalk, n int) {
	w.running = true
	for i := 0; i < n; i++ {
		w.tick()
		w.task.cancel() // drop the timer armed by the tick
	}
	w.running = false
	w.task = nil
}

func TestWalkStaysInRange(t *testing.T) {
	for seed := int64(0); seed < 5; seed++ {
		rng := rand.New(rand.NewSource(seed))
		values := []float64{}
		w := newRandomWalk(50, 40, 60, 0.5, 0.1, rng, func(v float64) {
			values = append(values, v)
		})
		stepWalk(w, 1000)
		expectEqual(t, len(values), 1000)
		for i, v := range values {
			if v < 40 || v > 60 {
				t.Fatalf("seed %v: value %v escaped [40,60] at step %v", seed, v, i)
			}
		}
	}
}

func TestWalkRateClamp(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	w := newRandomWalk(1, 0, 2, 0.1, 5, rng, nil)
	expectNearlyEqual(t, w.rateHz, walkRateMaxHz)
	w.setRate(0.0001)
	expectNearlyEqual(t, w.rateHz, walkRateMinHz)
	w.setRate(0.05)
	expectNearlyEqual(t, w.rateHz, 0.05)
}

func TestWalkInitialValueClamped(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	w := newRandomWalk(500, 40, 60, 0.1, 0.02, rng, nil)
	expectNearlyEqual(t, w.current(), 60)
}

func TestWalkSetRangeReclampsImmediately(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	w := newRandomWalk(100, 0, 200, 0.1, 0.02, rng, nil)

	// Shrinking the range below the current value re-clamps at once
	// instead of waiting for the next tick.
	w.setRange(0, 50)
	expectNearlyEqual(t, w.current(), 50)

	// A range that still contains the value leaves it alone.
	w.setRange(0, 80)
	expectNearlyEqual(t, w.current(), 50)

	// Inverted bounds are swapped.
	w.setRange(90, 60)
	expectNearlyEqual(t, w.current(), 60)
}

func TestWalkStartStopIdempotent(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	w := newRandomWalk(1, 0, 2, 0.1, 0.01, rng, nil)
	w.start()
	first := w.task
	w.start()
	expectEqual(t, w.task, first)
	w.stop()
	expectEqual(t, w.task == nil, true)
	w.stop() // second stop is a no-op
}
