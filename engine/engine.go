// Package engine implements a generative ambient-drone instrument: four
// tonal layers, a percussive pulse sequencer, and a shared master bus, all
// driven by a handful of normalized knobs, slow modulators, and a snapshot
// morph engine.
package engine

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"sync"
	"time"
)

// SampleRate and ChannelCount describe the byte stream produced by Read:
// interleaved 16-bit little-endian stereo at 44.1 kHz.
const (
	SampleRate   = 44100
	ChannelCount = 2
)

const (
	sampleRate      = SampleRate
	channelCount    = ChannelCount
	bitDepthInBytes = 2
	bytesPerFrame   = channelCount * bitDepthInBytes
	secPerSample    = 1.0 / sampleRate
	blockFrames     = 2048
)

const (
	macroMinSec   = 120.0
	macroMaxSec   = 300.0
	macroNudgeMin = 0.08
	macroNudgeMax = 0.1
)

var (
	errDisposed = errors.New("engine disposed")
	errNoStore  = errors.New("no preset store configured")
)

// ----- Engine States ----- //

const (
	stateUninitialized = iota
	stateStopped
	stateRunning
)

// ----- Preset Store ----- //

// PresetStore is the external key-value persistence for named presets.
// Implementations treat malformed stored data as absent, never as fatal.
type PresetStore interface {
	Save(name string, p Preset) error
	Load(name string) (Preset, bool, error)
	List() ([]string, error)
	Delete(name string) error
}

// ----- Config ----- //

// Config wires the engine's external collaborators. Every field is
// optional; zero values mean no persistence, no analytics, no export, and
// real wall-clock timers.
type Config struct {
	Store      PresetStore
	Analytics  AnalyticsSink
	Export     ExportSink
	Rand       *rand.Rand
	Now        func() time.Time
	MorphTicks tickSource
}

// ----- Engine ----- //

// Engine is the orchestrator. It owns the canonical parameter state and
// every audio resource; no resources are allocated until the first Start.
// The zero state after New is Uninitialized.
type Engine struct {
	mu sync.Mutex

	params   Params
	derived  derived
	state    int
	disposed bool

	sub     *subLayer
	mid     *midLayer
	texture *textureLayer
	air     *airLayer
	pulse   *pulse
	bus     *bus
	layers  []layer

	subWalk  *randomWalk
	airWalk  *randomWalk
	bandWalk *randomWalk

	macroTask *scheduledTask

	snapshots [snapshotSlots]*Timbre
	morph     morphState

	rec       recorder
	store     PresetStore
	analytics AnalyticsSink
	export    ExportSink

	rng *rand.Rand
	now func() time.Time

	scratchL, scratchR []float64
}

var _ io.Reader = (*Engine)(nil)

// New constructs an Uninitialized engine. No audio resources exist until
// Start is called.
func New(cfg Config) *Engine {
	rng := cfg.Rand
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	ticks := cfg.MorphTicks
	if ticks == nil {
		ticks = newTickerSource(morphTickInterval)
	}
	e := &Engine{
		params:    defaultParams(),
		store:     cfg.Store,
		analytics: cfg.Analytics,
		export:    cfg.Export,
		rng:       rng,
		now:       now,
	}
	e.derived = deriveFrequencies(e.params.RootPosition, e.params.IntervalSpread)
	e.morph.ticks = ticks
	e.morph.segmentDur = time.Duration(defaultSegmentSec * float64(time.Second))
	return e
}

// ----- Lifecycle ----- //

// Start initializes the audio graph on first call, applies the cached
// parameter set to every component, and engages layers, modulators, and the
// pulse transport. Starting a running engine is a no-op.
func (e *Engine) Start() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.disposed {
		return errDisposed
	}
	if e.state == stateRunning {
		return nil
	}
	if e.state == stateUninitialized {
		if err := e.initGraphLocked(); err != nil {
			return fmt.Errorf("engine init: %w", err)
		}
		// The graph exists now; leave Uninitialized before applying the
		// cached parameters so the forwards reach the components.
		e.state = stateStopped
	}
	e.applyAllLocked(false)
	e.pulse.setMuted(e.params.PureDrone)
	for _, l := range e.layers {
		l.start()
	}
	if !e.params.PureDrone {
		e.startWalksLocked()
	}
	e.state = stateRunning
	e.scheduleMacroLocked()
	emit(e.analytics, EventEngineStart, nil)
	return nil
}

// Stop ramps everything to silence and cancels all control timers.
// Resources stay allocated so restart is cheap. No-op unless Running.
func (e *Engine) Stop() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state != stateRunning {
		return
	}
	e.stopLocked()
	emit(e.analytics, EventEngineStop, nil)
}

func (e *Engine) stopLocked() {
	for _, l := range e.layers {
		l.stop()
	}
	e.stopWalksLocked()
	e.macroTask.cancel()
	e.macroTask = nil
	e.stopMorphLocked()
	e.state = stateStopped
}

// Dispose stops the engine and irreversibly releases every resource. The
// instance must not be reused afterwards.
func (e *Engine) Dispose() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.disposed {
		return
	}
	if e.state == stateRunning {
		e.stopLocked()
	}
	// A morph can be active while stopped; its ticker must not survive the
	// instance.
	e.stopMorphLocked()
	e.macroTask.cancel()
	e.macroTask = nil
	if e.state != stateUninitialized {
		for _, l := range e.layers {
			l.dispose()
		}
	}
	e.disposed = true
}

// initGraphLocked allocates the layers, pulse, bus, and random walks. It
// runs at most once per engine lifetime.
func (e *Engine) initGraphLocked() error {
	bus, err := newBus()
	if err != nil {
		return err
	}
	e.bus = bus
	e.sub = newSubLayer(e.derived.subHz, e.rng)
	e.mid = newMidLayer(e.derived.midHz, e.rng)
	e.texture = newTextureLayer(e.rng)
	e.air = newAirLayer(e.derived.airHz, e.rng)
	e.pulse = newPulse(e.derived.kickHz, e.rng)
	e.layers = []layer{e.sub, e.mid, e.texture, e.air, e.pulse}

	// Each walk ticks on its own timer goroutine, so each gets its own rng.
	e.subWalk = newRandomWalk(e.derived.subHz, e.derived.subHz*0.93, e.derived.subHz*1.07, 0.25, 0.02, rand.New(rand.NewSource(e.rng.Int63())), func(v float64) {
		e.mu.Lock()
		defer e.mu.Unlock()
		if e.state == stateRunning {
			e.sub.setFrequency(v, false)
		}
	})
	e.airWalk = newRandomWalk(e.derived.airHz, e.derived.airHz*0.96, e.derived.airHz*1.04, 0.25, 0.015, rand.New(rand.NewSource(e.rng.Int63())), func(v float64) {
		e.mu.Lock()
		defer e.mu.Unlock()
		if e.state == stateRunning {
			e.air.setFrequency(v, false)
		}
	})
	e.bandWalk = newRandomWalk(420, 220, 900, 0.2, 0.03, rand.New(rand.NewSource(e.rng.Int63())), func(v float64) {
		e.mu.Lock()
		defer e.mu.Unlock()
		if e.state == stateRunning {
			e.texture.setBandCenter(v, false)
		}
	})
	return nil
}

func (e *Engine) startWalksLocked() {
	e.subWalk.start()
	e.airWalk.start()
	e.bandWalk.start()
}

func (e *Engine) stopWalksLocked() {
	if e.subWalk == nil {
		return
	}
	e.subWalk.stop()
	e.airWalk.stop()
	e.bandWalk.stop()
}

func (e *Engine) initialized() bool {
	return e.state != stateUninitialized
}

// ----- Macro Scene ----- //

// scheduleMacroLocked arms the next unattended evolution: a single-shot
// timer that nudges every texture parameter and then re-arms itself.
func (e *Engine) scheduleMacroLocked() {
	interval := time.Duration((macroMinSec + e.rng.Float64()*(macroMaxSec-macroMinSec)) * float64(time.Second))
	e.macroTask = schedule(interval, e.macroFire)
}

func (e *Engine) macroFire() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state != stateRunning {
		return
	}
	mag := macroNudgeMin + e.rng.Float64()*(macroNudgeMax-macroNudgeMin)
	if e.params.PureDrone {
		mag *= 0.5
	}
	t := e.params.Timbre()
	t.Darkness = clamp01(t.Darkness + e.signedNudge(mag))
	t.Motion = clamp01(t.Motion + e.signedNudge(mag))
	t.Density = clamp01(t.Density + e.signedNudge(mag))
	t.Grain = clamp01(t.Grain + e.signedNudge(mag))
	t.Rust = clamp01(t.Rust + e.signedNudge(mag))
	t.Hum = clamp01(t.Hum + e.signedNudge(mag))
	t.Fracture = clamp01(t.Fracture + e.signedNudge(mag))
	t.Space = clamp01(t.Space + e.signedNudge(mag))
	t.PulseIntensity = clamp01(t.PulseIntensity + e.signedNudge(mag))
	e.applyTimbreLocked(t, true)
	e.scheduleMacroLocked()
}

func (e *Engine) signedNudge(mag float64) float64 {
	return (e.rng.Float64()*2 - 1) * mag
}

// ----- Introspection ----- //

// Params returns the canonical parameter snapshot. Any setter call updates
// this synchronously before touching the audio graph, so a read immediately
// after a set always observes the just-set value.
func (e *Engine) Params() Params {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.params
}

// IsRunning reports whether the engine is producing sound.
func (e *Engine) IsRunning() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state == stateRunning
}

// Frequencies returns the cached derived (sub, mid, air) frequencies in Hz.
func (e *Engine) Frequencies() (float64, float64, float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.derived.subHz, e.derived.midHz, e.derived.airHz
}

// Spectrum returns the latest post-limiter magnitude spectrum in dB, or the
// silent sentinel before initialization.
func (e *Engine) Spectrum() []float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.bus == nil {
		return silentSpectrum()
	}
	return e.bus.spectrum()
}

// Waveform returns the most recent post-limiter mono block for scope-style
// display. Empty before initialization.
func (e *Engine) Waveform() []float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.bus == nil {
		return nil
	}
	return e.bus.waveform()
}

// GuideOpened forwards the guide_open analytics event for the embedding UI.
func (e *Engine) GuideOpened() {
	emit(e.analytics, EventGuideOpen, nil)
}

// ----- Rendering ----- //

// Read renders interleaved 16-bit little-endian stereo into p. Before
// initialization it produces silence; after Dispose it returns io.EOF.
func (e *Engine) Read(p []byte) (int, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.disposed {
		return 0, io.EOF
	}
	frames := len(p) / bytesPerFrame
	if frames > blockFrames {
		frames = blockFrames
	}
	if len(e.scratchL) < frames {
		e.scratchL = make([]float64, frames)
		e.scratchR = make([]float64, frames)
	}
	outL := e.scratchL[:frames]
	outR := e.scratchR[:frames]
	for i := range outL {
		outL[i] = 0
		outR[i] = 0
	}
	if e.initialized() {
		for _, l := range e.layers {
			l.render(outL, outR)
		}
		e.bus.process(outL, outR)
		e.rec.capture(outL, outR)
	}
	for i := 0; i < frames; i++ {
		writeSample(p, i, 0, outL[i])
		writeSample(p, i, 1, outR[i])
	}
	return frames * bytesPerFrame, nil
}

func writeSample(buf []byte, frame, ch int, value float64) {
	const max = 32767
	if value > 1 {
		value = 1
	} else if value < -1 {
		value = -1
	}
	b := int16(value * max)
	buf[bytesPerFrame*frame+2*ch] = byte(b)
	buf[bytesPerFrame*frame+2*ch+1] = byte(b >> 8)
}

// ----- Recording ----- //

// StartRecording taps the post-limiter signal into a capture buffer. Before
// initialization it logs and does nothing.
func (e *Engine) StartRecording() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.initialized() {
		slog.Warn("recording requested before engine initialization")
		return
	}
	if e.rec.active {
		return
	}
	e.rec.start(e.now())
	emit(e.analytics, EventRecordStart, nil)
}

// StopRecording finalizes the capture and hands it to the export sink.
// Safe to call repeatedly; no-op when idle.
func (e *Engine) StopRecording() {
	e.mu.Lock()
	if !e.rec.active {
		e.mu.Unlock()
		return
	}
	seconds := e.rec.elapsed(e.now())
	recording := e.rec.finish()
	sink := e.export
	e.mu.Unlock()
	emit(e.analytics, EventRecordStop, map[string]string{
		"seconds": fmt.Sprintf("%.1f", seconds),
	})
	if sink == nil {
		return
	}
	if err := sink.Deliver(recording, "drift"); err != nil {
		slog.Warn("recording export failed", "error", err)
	}
}

// IsRecording reports whether a capture is in progress.
func (e *Engine) IsRecording() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.rec.active
}

// RecordingSeconds returns elapsed wall-clock seconds of the active
// capture, zero when idle.
func (e *Engine) RecordingSeconds() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.rec.elapsed(e.now())
}
