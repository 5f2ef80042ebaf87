package engine

import (
	"math/rand"
	"testing"
	"time"
)

// manualTicks drives the morph pump by hand.
type manualTicks struct {
	onTick func()
}

func (m *manualTicks) start(onTick func()) { m.onTick = onTick }
func (m *manualTicks) stop()               { m.onTick = nil }

func (m *manualTicks) fire() {
	if m.onTick != nil {
		m.onTick()
	}
}

type fakeClock struct {
	t time.Time
}

func (c *fakeClock) now() time.Time          { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func morphEngine() (*Engine, *manualTicks, *fakeClock) {
	ticks := &manualTicks{}
	clock := &fakeClock{t: time.Unix(0, 0)}
	e := New(Config{
		Rand:       rand.New(rand.NewSource(1)),
		Now:        clock.now,
		MorphTicks: ticks,
	})
	return e, ticks, clock
}

func TestSnapshotCaptureAndDelete(t *testing.T) {
	e, _, _ := morphEngine()
	defer e.Dispose()

	e.SetDarkness(0.8)
	e.CaptureSnapshot(0)
	snap, ok := e.Snapshot(0)
	expectEqual(t, ok, true)
	expectEqual(t, snap.Darkness, 0.8)

	_, ok = e.Snapshot(1)
	expectEqual(t, ok, false)

	e.DeleteSnapshot(0)
	_, ok = e.Snapshot(0)
	expectEqual(t, ok, false)

	// Out-of-range slots are ignored.
	e.CaptureSnapshot(-1)
	e.CaptureSnapshot(snapshotSlots)
	_, ok = e.Snapshot(-1)
	expectEqual(t, ok, false)
}

func TestMorphNeedsTwoSnapshots(t *testing.T) {
	e, _, _ := morphEngine()
	defer e.Dispose()

	expectEqual(t, e.ToggleMorph(), false)
	e.CaptureSnapshot(0)
	expectEqual(t, e.ToggleMorph(), false)
	e.CaptureSnapshot(2)
	expectEqual(t, e.ToggleMorph(), true)
	active, from, to, _ := e.MorphState()
	expectEqual(t, active, true)
	expectEqual(t, from, 0)
	expectEqual(t, to, 2)
}

func TestMorphInterpolates(t *testing.T) {
	e, ticks, clock := morphEngine()
	defer e.Dispose()

	e.SetDarkness(0.2)
	e.CaptureSnapshot(0)
	e.SetDarkness(0.8)
	e.CaptureSnapshot(1)
	e.SetDarkness(0.5)

	expectEqual(t, e.ToggleMorph(), true)

	ticks.fire() // t=0
	expectNearlyEqual(t, e.Params().Darkness, 0.2)

	clock.advance(10 * time.Second) // half of the default 20s segment
	ticks.fire()
	expectNearlyEqual(t, e.Params().Darkness, 0.5)

	clock.advance(5 * time.Second)
	ticks.fire()
	expectNearlyEqual(t, e.Params().Darkness, 0.65)
}

func TestMorphRotatesPairs(t *testing.T) {
	e, ticks, clock := morphEngine()
	defer e.Dispose()

	e.SetDarkness(0.2)
	e.CaptureSnapshot(0)
	e.SetDarkness(0.8)
	e.CaptureSnapshot(1)
	e.SetDarkness(0.5)
	e.CaptureSnapshot(3)

	expectEqual(t, e.ToggleMorph(), true)

	clock.advance(20 * time.Second)
	ticks.fire() // completes 0->1, rotates to 1->3
	expectNearlyEqual(t, e.Params().Darkness, 0.8)
	active, from, to, progress := e.MorphState()
	expectEqual(t, active, true)
	expectEqual(t, from, 1)
	expectEqual(t, to, 3)
	expectNearlyEqual(t, progress, 0)

	clock.advance(20 * time.Second)
	ticks.fire() // completes 1->3, wraps to 3->0
	expectNearlyEqual(t, e.Params().Darkness, 0.5)
	_, from, to, _ = e.MorphState()
	expectEqual(t, from, 3)
	expectEqual(t, to, 0)
}

func TestManualEditStopsMorph(t *testing.T) {
	e, ticks, _ := morphEngine()
	defer e.Dispose()

	e.SetDarkness(0.2)
	e.CaptureSnapshot(0)
	e.SetDarkness(0.8)
	e.CaptureSnapshot(1)
	expectEqual(t, e.ToggleMorph(), true)

	e.SetMotion(0.9)
	active, _, _, _ := e.MorphState()
	expectEqual(t, active, false)

	// The morph tick must be inert after the stop.
	before := e.Params()
	ticks.fire()
	expectEqual(t, e.Params(), before)
}

func TestVolumeDoesNotStopMorph(t *testing.T) {
	e, _, _ := morphEngine()
	defer e.Dispose()

	e.CaptureSnapshot(0)
	e.SetDarkness(0.9)
	e.CaptureSnapshot(1)
	expectEqual(t, e.ToggleMorph(), true)

	e.SetVolume(0.2)
	active, _, _, _ := e.MorphState()
	expectEqual(t, active, true)
}

func TestDeleteSnapshotStopsDependentMorph(t *testing.T) {
	e, _, _ := morphEngine()
	defer e.Dispose()

	e.CaptureSnapshot(0)
	e.SetDarkness(0.9)
	e.CaptureSnapshot(1)
	expectEqual(t, e.ToggleMorph(), true)

	e.DeleteSnapshot(1)
	active, _, _, _ := e.MorphState()
	expectEqual(t, active, false)
}

func TestToggleMorphStops(t *testing.T) {
	e, ticks, _ := morphEngine()
	defer e.Dispose()

	e.CaptureSnapshot(0)
	e.SetDarkness(0.9)
	e.CaptureSnapshot(1)
	expectEqual(t, e.ToggleMorph(), true)
	expectEqual(t, e.ToggleMorph(), false)
	active, _, _, _ := e.MorphState()
	expectEqual(t, active, false)
	expectEqual(t, ticks.onTick == nil, true)
}

func TestDisposeStopsActiveMorph(t *testing.T) {
	e, ticks, _ := morphEngine()

	e.CaptureSnapshot(0)
	e.SetDarkness(0.9)
	e.CaptureSnapshot(1)
	expectEqual(t, e.ToggleMorph(), true)

	// The morph pump never outlives the instance, even when the engine was
	// never started.
	e.Dispose()
	expectEqual(t, ticks.onTick == nil, true)
}

func TestSetMorphDuration(t *testing.T) {
	e, ticks, clock := morphEngine()
	defer e.Dispose()

	e.SetDarkness(0)
	e.CaptureSnapshot(0)
	e.SetDarkness(1)
	e.CaptureSnapshot(1)
	e.SetMorphDuration(4 * time.Second)
	expectEqual(t, e.ToggleMorph(), true)

	clock.advance(2 * time.Second)
	ticks.fire()
	expectNearlyEqual(t, e.Params().Darkness, 0.5)

	e.SetMorphDuration(0) // ignored
	clock.advance(2 * time.Second)
	ticks.fire()
	expectNearlyEqual(t, e.Params().Darkness, 1)
}
