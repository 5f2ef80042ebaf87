package engine

import (
	"log/slog"
)

// Public setters clamp, cache, then forward to the audio graph. While the
// engine is Uninitialized the cached value still updates and is applied
// automatically on first Start. Manual edits to morph-affected parameters
// stop an active morph before the value lands.

// SetVolume sets the master output level. Volume is not part of snapshots,
// so it never interrupts a morph.
func (e *Engine) SetVolume(v float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.params.Volume = clamp01(v)
	if e.initialized() {
		e.bus.setVolume(e.params.Volume, true)
	}
}

func (e *Engine) SetDarkness(v float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.interruptMorph()
	e.params.Darkness = clamp01(v)
	e.forwardDarknessLocked(true)
}

func (e *Engine) SetMotion(v float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.interruptMorph()
	e.params.Motion = clamp01(v)
	e.forwardMotionLocked()
}

func (e *Engine) SetDensity(v float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.interruptMorph()
	e.params.Density = clamp01(v)
	e.forwardDensityLocked(true)
}

func (e *Engine) SetGrain(v float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.interruptMorph()
	e.params.Grain = clamp01(v)
	e.forwardGrainLocked(true)
}

func (e *Engine) SetRust(v float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.interruptMorph()
	e.params.Rust = clamp01(v)
	e.forwardRustLocked()
}

func (e *Engine) SetHum(v float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.interruptMorph()
	e.params.Hum = clamp01(v)
	e.forwardHumLocked(true)
}

func (e *Engine) SetFracture(v float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.interruptMorph()
	e.params.Fracture = clamp01(v)
	e.forwardFractureLocked(true)
}

func (e *Engine) SetSpace(v float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.interruptMorph()
	e.params.Space = clamp01(v)
	e.forwardSpaceLocked()
}

func (e *Engine) SetPulseIntensity(v float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.interruptMorph()
	e.params.PulseIntensity = clamp01(v)
	e.forwardPulseIntensityLocked()
}

func (e *Engine) SetRootPosition(v float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.interruptMorph()
	e.params.RootPosition = clamp01(v)
	e.forwardHarmonyLocked(true)
}

func (e *Engine) SetIntervalSpread(v float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.interruptMorph()
	e.params.IntervalSpread = clamp01(v)
	e.forwardHarmonyLocked(true)
}

// SetPureDrone toggles the rhythm-free overlay: pulse intensity drops to
// silence, modulation depths shrink, and the frequency walks freeze where
// they are. The cached pulse intensity survives for re-engagement.
func (e *Engine) SetPureDrone(enabled bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.params.PureDrone == enabled {
		return
	}
	e.params.PureDrone = enabled
	if !e.initialized() {
		return
	}
	e.pulse.setMuted(enabled)
	e.forwardMotionLocked()
	if e.state != stateRunning {
		return
	}
	if enabled {
		e.stopWalksLocked()
	} else {
		e.startWalksLocked()
	}
}

// SetMode applies a scene preset. Manual leaves every parameter untouched;
// named modes overwrite the nine texture parameters with ramped
// transitions, never volume, root, or interval spread.
func (e *Engine) SetMode(m Mode) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if m == ModeManual {
		e.params.Mode = ModeManual
		return
	}
	preset, ok := modePresets[m]
	if !ok {
		return
	}
	e.interruptMorph()
	preset.RootPosition = e.params.RootPosition
	preset.IntervalSpread = e.params.IntervalSpread
	e.applyTimbreLocked(preset, true)
	e.params.Mode = m
}

// Randomize draws a fresh scene from curated sub-ranges (never the
// degenerate extremes), re-anchors the harmony, widens the frequency walks
// around the new anchors, and always returns the mode to Manual.
func (e *Engine) Randomize() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.interruptMorph()
	e.params.Darkness = 0.25 + e.rng.Float64()*0.55
	e.params.Motion = 0.2 + e.rng.Float64()*0.55
	e.params.Density = 0.25 + e.rng.Float64()*0.5
	e.params.RootPosition = e.rng.Float64()
	e.params.IntervalSpread = e.rng.Float64()
	wet := 0.3 + e.rng.Float64()*0.35
	e.params.Space = wet / maxMasterWet
	e.params.Mode = ModeManual
	e.forwardDarknessLocked(true)
	e.forwardMotionLocked()
	e.forwardDensityLocked(true)
	e.forwardSpaceLocked()
	e.forwardHarmonyLocked(true)
	if e.subWalk != nil {
		e.subWalk.setRange(e.derived.subHz*0.90, e.derived.subHz*1.10)
		e.airWalk.setRange(e.derived.airHz*0.94, e.derived.airHz*1.06)
	}
	emit(e.analytics, EventSoundRandomize, nil)
}

// ----- Forwards ----- //

// applyAllLocked pushes the full cached parameter set into every component.
// Used on first start and after preset load.
func (e *Engine) applyAllLocked(ramped bool) {
	e.bus.setVolume(e.params.Volume, ramped)
	e.forwardDarknessLocked(ramped)
	e.forwardMotionLocked()
	e.forwardDensityLocked(ramped)
	e.forwardGrainLocked(ramped)
	e.forwardRustLocked()
	e.forwardHumLocked(ramped)
	e.forwardFractureLocked(ramped)
	e.forwardSpaceLocked()
	e.forwardPulseIntensityLocked()
	e.forwardHarmonyLocked(ramped)
}

// applyTimbreLocked stores a full timbral set into the canonical params and
// forwards it. This is the bulk path used by modes, the morph engine, the
// macro scene, and randomize; it does not touch volume or mode.
func (e *Engine) applyTimbreLocked(t Timbre, ramped bool) {
	e.params.Darkness = clamp01(t.Darkness)
	e.params.Motion = clamp01(t.Motion)
	e.params.Density = clamp01(t.Density)
	e.params.Grain = clamp01(t.Grain)
	e.params.Rust = clamp01(t.Rust)
	e.params.Hum = clamp01(t.Hum)
	e.params.Fracture = clamp01(t.Fracture)
	e.params.Space = clamp01(t.Space)
	e.params.PulseIntensity = clamp01(t.PulseIntensity)
	e.params.RootPosition = clamp01(t.RootPosition)
	e.params.IntervalSpread = clamp01(t.IntervalSpread)
	e.forwardDarknessLocked(ramped)
	e.forwardMotionLocked()
	e.forwardDensityLocked(ramped)
	e.forwardGrainLocked(ramped)
	e.forwardRustLocked()
	e.forwardHumLocked(ramped)
	e.forwardFractureLocked(ramped)
	e.forwardSpaceLocked()
	e.forwardPulseIntensityLocked()
	e.forwardHarmonyLocked(ramped)
}

func (e *Engine) forwardDarknessLocked(ramped bool) {
	if !e.initialized() {
		return
	}
	e.bus.setDarkness(e.params.Darkness, ramped)
	e.mid.setCutoff(darknessToCutoff(e.params.Darkness)*0.75, ramped)
	// Darker scenes also pull the shimmer back.
	e.air.setLevel(1-0.6*e.params.Darkness, ramped)
}

// forwardMotionLocked fans the motion knob out to every modulator rate.
// Pure drone halves the rates and shrinks the depths.
func (e *Engine) forwardMotionLocked() {
	if !e.initialized() {
		return
	}
	rate := motionToLFORate(e.params.Motion)
	depthScale := 1.0
	if e.params.PureDrone {
		rate *= 0.5
		depthScale = 0.4
	}
	e.sub.setPitchMod(rate, (6+e.params.Motion*6)*depthScale)
	e.mid.setFilterMod(rate*1.3, (0.15+0.4*e.params.Motion+0.3*e.params.Fracture)*depthScale)
	e.texture.setAMRate(rate * 4)
	e.air.setPanRate(rate * 1.6)
	e.air.setShimmerDepth((4 + e.params.Motion*14) * depthScale)
	e.pulse.setMotion(e.params.Motion)
	if e.subWalk != nil {
		e.subWalk.setRate(rate)
		e.airWalk.setRate(rate * 0.75)
		e.bandWalk.setRate(rate * 1.5)
	}
}

func (e *Engine) forwardDensityLocked(ramped bool) {
	if !e.initialized() {
		return
	}
	e.mid.setDetune(4+30*e.params.Density+22*e.params.Fracture, ramped)
	e.mid.setLevel(0.45+0.55*e.params.Density, ramped)
	e.pulse.setDensity(e.params.Density)
}

func (e *Engine) forwardGrainLocked(ramped bool) {
	if !e.initialized() {
		return
	}
	e.texture.setLevel(e.params.Grain, ramped)
	e.texture.setBandQ(2 + 6*e.params.Grain)
}

func (e *Engine) forwardRustLocked() {
	if !e.initialized() {
		return
	}
	e.texture.setDrive(e.params.Rust)
	e.sub.setDrive(0.5 * e.params.Rust)
}

func (e *Engine) forwardHumLocked(ramped bool) {
	if !e.initialized() {
		return
	}
	e.sub.setLevel(0.4+0.6*e.params.Hum, ramped)
}

func (e *Engine) forwardFractureLocked(ramped bool) {
	if !e.initialized() {
		return
	}
	// Fracture rides on the mid layer's detune and filter movement.
	e.mid.setDetune(4+30*e.params.Density+22*e.params.Fracture, ramped)
	e.forwardMotionLocked()
}

func (e *Engine) forwardSpaceLocked() {
	if !e.initialized() {
		return
	}
	e.bus.setReverbWet(e.params.Space * maxMasterWet)
	e.air.setReverbWet(0.5 + 0.5*e.params.Space)
}

func (e *Engine) forwardPulseIntensityLocked() {
	if !e.initialized() {
		return
	}
	e.pulse.setIntensity(e.params.PulseIntensity)
}

// forwardHarmonyLocked re-derives the frequency structure from root and
// spread, pushes it to the layers and the pulse, and recenters the
// frequency walks around the new anchors.
func (e *Engine) forwardHarmonyLocked(ramped bool) {
	e.derived = deriveFrequencies(e.params.RootPosition, e.params.IntervalSpread)
	if !e.initialized() {
		return
	}
	e.sub.setFrequency(e.derived.subHz, ramped)
	e.mid.setFrequency(e.derived.midHz, ramped)
	e.air.setFrequency(e.derived.airHz, ramped)
	e.pulse.setKickFreq(e.derived.kickHz)
	e.subWalk.setRange(e.derived.subHz*0.93, e.derived.subHz*1.07)
	e.airWalk.setRange(e.derived.airHz*0.96, e.derived.airHz*1.04)
}

// ----- Preset Persistence ----- //

// SavePreset persists the full parameter set plus derived frequencies
// under the given name. Last write wins.
func (e *Engine) SavePreset(name string) error {
	e.mu.Lock()
	p := Preset{
		Params: e.params,
		SubHz:  e.derived.subHz,
		MidHz:  e.derived.midHz,
		AirHz:  e.derived.airHz,
	}
	store := e.store
	e.mu.Unlock()
	if store == nil {
		return errNoStore
	}
	return store.Save(name, p)
}

// LoadPreset restores a named preset, reporting false when absent or
// unreadable. On success every parameter re-applies through the normal
// ramped path and the harmonic structure re-derives from the loaded root
// and spread.
func (e *Engine) LoadPreset(name string) bool {
	store := e.storeRef()
	if store == nil {
		return false
	}
	p, ok, err := store.Load(name)
	if err != nil {
		slog.Warn("preset load failed", "name", name, "error", err)
		return false
	}
	if !ok {
		return false
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.interruptMorph()
	loaded := sanitizeParams(p.Params)
	volume := loaded.Volume
	mode := loaded.Mode
	e.applyTimbreLocked(loaded.Timbre(), true)
	e.params.Volume = volume
	e.params.Mode = mode
	e.params.PureDrone = loaded.PureDrone
	if e.initialized() {
		e.bus.setVolume(volume, true)
		e.pulse.setMuted(loaded.PureDrone)
	}
	return true
}

// ListPresets enumerates stored preset names; storage trouble degrades to
// an empty list.
func (e *Engine) ListPresets() []string {
	store := e.storeRef()
	if store == nil {
		return nil
	}
	names, err := store.List()
	if err != nil {
		slog.Warn("preset list failed", "error", err)
		return nil
	}
	return names
}

// DeletePreset removes a stored preset; deleting an absent name is a no-op.
func (e *Engine) DeletePreset(name string) {
	store := e.storeRef()
	if store == nil {
		return
	}
	if err := store.Delete(name); err != nil {
		slog.Warn("preset delete failed", "name", name, "error", err)
	}
}

func (e *Engine) storeRef() PresetStore {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.store
}

// sanitizeParams clamps every numeric field of an externally sourced
// parameter set.
func sanitizeParams(p Params) Params {
	p.Volume = clamp01(p.Volume)
	p.Darkness = clamp01(p.Darkness)
	p.Motion = clamp01(p.Motion)
	p.Density = clamp01(p.Density)
	p.Grain = clamp01(p.Grain)
	p.Rust = clamp01(p.Rust)
	p.Hum = clamp01(p.Hum)
	p.Fracture = clamp01(p.Fracture)
	p.Space = clamp01(p.Space)
	p.PulseIntensity = clamp01(p.PulseIntensity)
	p.RootPosition = clamp01(p.RootPosition)
	p.IntervalSpread = clamp01(p.IntervalSpread)
	if p.Mode == "" {
		p.Mode = ModeManual
	}
	return p
}
