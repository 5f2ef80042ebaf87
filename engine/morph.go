package engine

import "time"

// ----- Snapshot Morph ----- //

const (
	snapshotSlots     = 4
	defaultSegmentSec = 20.0
	morphTickInterval = 80 * time.Millisecond // ~12 updates/s, throttles graph traffic
)

// morphState cycles through the filled snapshot slots two at a time,
// linearly interpolating every timbral field between the current pair.
type morphState struct {
	active       bool
	fromSlot     int
	toSlot       int
	segmentStart time.Time
	segmentDur   time.Duration
	ticks        tickSource
}

func lerpTimbre(a, b Timbre, t float64) Timbre {
	return Timbre{
		Darkness:       lerp(a.Darkness, b.Darkness, t),
		Motion:         lerp(a.Motion, b.Motion, t),
		Density:        lerp(a.Density, b.Density, t),
		Grain:          lerp(a.Grain, b.Grain, t),
		Rust:           lerp(a.Rust, b.Rust, t),
		Hum:            lerp(a.Hum, b.Hum, t),
		Fracture:       lerp(a.Fracture, b.Fracture, t),
		Space:          lerp(a.Space, b.Space, t),
		PulseIntensity: lerp(a.PulseIntensity, b.PulseIntensity, t),
		RootPosition:   lerp(a.RootPosition, b.RootPosition, t),
		IntervalSpread: lerp(a.IntervalSpread, b.IntervalSpread, t),
	}
}

// CaptureSnapshot copies the current timbral parameters into a slot.
// Volume and mode are deliberately excluded from snapshots.
func (e *Engine) CaptureSnapshot(slot int) {
	if slot < 0 || slot >= snapshotSlots {
		return
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	t := e.params.Timbre()
	e.snapshots[slot] = &t
}

// DeleteSnapshot clears a slot. An active morph that depends on the slot
// stops, as does one that can no longer find two endpoints.
func (e *Engine) DeleteSnapshot(slot int) {
	if slot < 0 || slot >= snapshotSlots {
		return
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.snapshots[slot] = nil
	if e.morph.active && (e.morph.fromSlot == slot || e.morph.toSlot == slot || len(e.filledSlots()) < 2) {
		e.stopMorphLocked()
	}
}

// Snapshot returns the contents of a slot, or false when empty.
func (e *Engine) Snapshot(slot int) (Timbre, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if slot < 0 || slot >= snapshotSlots || e.snapshots[slot] == nil {
		return Timbre{}, false
	}
	return *e.snapshots[slot], true
}

// ToggleMorph starts cycling when idle and at least two slots are filled;
// stops when active. Returns whether morphing is active afterwards.
func (e *Engine) ToggleMorph() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.morph.active {
		e.stopMorphLocked()
		return false
	}
	filled := e.filledSlots()
	if len(filled) < 2 {
		return false
	}
	e.morph.active = true
	e.morph.fromSlot = filled[0]
	e.morph.toSlot = filled[1]
	e.morph.segmentStart = e.now()
	if e.morph.segmentDur <= 0 {
		e.morph.segmentDur = time.Duration(defaultSegmentSec * float64(time.Second))
	}
	e.morph.ticks.start(e.morphTick)
	return true
}

// SetMorphDuration sets the per-segment duration. The in-flight segment's
// progress is re-evaluated against the new duration on its next tick.
func (e *Engine) SetMorphDuration(d time.Duration) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if d > 0 {
		e.morph.segmentDur = d
	}
}

// MorphState reports (active, fromSlot, toSlot, progress) for UI sync.
func (e *Engine) MorphState() (bool, int, int, float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.morph.active {
		return false, 0, 0, 0
	}
	return true, e.morph.fromSlot, e.morph.toSlot, e.morphProgressLocked()
}

func (e *Engine) morphProgressLocked() float64 {
	elapsed := e.now().Sub(e.morph.segmentStart).Seconds()
	return clamp01(elapsed / e.morph.segmentDur.Seconds())
}

// filledSlots returns the indices of non-empty slots in slot order.
func (e *Engine) filledSlots() []int {
	filled := make([]int, 0, snapshotSlots)
	for i, s := range e.snapshots {
		if s != nil {
			filled = append(filled, i)
		}
	}
	return filled
}

// stopMorphLocked halts the tick source; no further morph callbacks apply
// values after this returns.
func (e *Engine) stopMorphLocked() {
	if !e.morph.active {
		return
	}
	e.morph.active = false
	e.morph.ticks.stop()
}

// interruptMorph enforces the manual-precedence invariant: a user-initiated
// change to any morph-affected parameter stops the morph first.
func (e *Engine) interruptMorph() {
	if e.morph.active {
		e.stopMorphLocked()
	}
}

func (e *Engine) morphTick() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.morph.active {
		return
	}
	from := e.snapshots[e.morph.fromSlot]
	to := e.snapshots[e.morph.toSlot]
	if from == nil || to == nil {
		e.stopMorphLocked()
		return
	}
	t := e.morphProgressLocked()
	e.applyTimbreLocked(lerpTimbre(*from, *to, t), true)
	if t >= 1 {
		e.rotateMorphPairLocked()
	}
}

// rotateMorphPairLocked advances (from,to) to the next adjacent pair in the
// cyclic order of filled slots and resets the segment clock.
func (e *Engine) rotateMorphPairLocked() {
	filled := e.filledSlots()
	if len(filled) < 2 {
		e.stopMorphLocked()
		return
	}
	pos := 0
	for i, slot := range filled {
		if slot == e.morph.toSlot {
			pos = i
			break
		}
	}
	e.morph.fromSlot = filled[pos]
	e.morph.toSlot = filled[(pos+1)%len(filled)]
	e.morph.segmentStart = e.now()
}
