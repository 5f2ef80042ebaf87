package engine

import (
	"math/rand"

	"github.com/cwbudde/algo-dsp/dsp/filter/biquad"
	"github.com/cwbudde/algo-dsp/dsp/filter/design"
)

// ----- Texture Layer ----- //

const (
	textureLevelScale = 0.28
	// Rust past this point saturates the drive growth instead of letting the
	// band overload.
	rustOverloadThreshold = 0.72
)

// textureLayer is the industrial grit: pink noise through a resonant
// bandpass, saturation, and an amplitude modulator.
type textureLayer struct {
	noise    *pinkNoise
	band     *ramp // center Hz
	bandQ    float64
	filterL  *biquad.Section
	filterR  *biquad.Section
	builtHz  float64
	builtQ   float64
	amLFO    *lfo
	gain     *ramp
	level    float64
	drive    float64
	started  bool
	disposed bool
}

func newTextureLayer(rng *rand.Rand) *textureLayer {
	t := &textureLayer{
		noise: newPinkNoise(rng),
		band:  newRamp(420),
		bandQ: 3.5,
		amLFO: newLFO(0.05, 0.5, rng.Float64()),
		gain:  newRamp(0),
		level: textureLevelScale,
	}
	t.rebuildFilter(t.band.value, t.bandQ)
	return t
}

func (t *textureLayer) start() {
	if t.disposed {
		return
	}
	t.started = true
	t.gain.linear(startRampSec, t.level)
}

func (t *textureLayer) stop() {
	if t.disposed {
		return
	}
	t.gain.linear(stopRampSec, 0)
}

func (t *textureLayer) dispose() {
	t.disposed = true
	t.noise = nil
	t.filterL, t.filterR = nil, nil
}

func (t *textureLayer) setLevel(level float64, ramped bool) {
	t.level = clamp01(level) * textureLevelScale
	if t.started {
		t.gain.linear(rampFor(ramped), t.level)
	}
}

func (t *textureLayer) setBandCenter(hz float64, ramped bool) {
	t.band.exponential(rampFor(ramped), clampF(hz, 80, 3000), 0.5)
}

func (t *textureLayer) setBandQ(q float64) {
	t.bandQ = clampF(q, 0.5, 12)
}

func (t *textureLayer) setDrive(drive float64) {
	drive = clamp01(drive)
	if drive > rustOverloadThreshold {
		drive = rustOverloadThreshold + (drive-rustOverloadThreshold)*0.35
	}
	t.drive = drive
}

func (t *textureLayer) setAMRate(rateHz float64) {
	t.amLFO.setRate(clampF(rateHz, walkRateMinHz, 2))
}

func (t *textureLayer) rebuildFilter(hz, q float64) {
	coeffs := design.Bandpass(clampF(hz, minFilterHz, 3000), q, sampleRate)
	t.filterL = biquad.NewSection(coeffs)
	t.filterR = biquad.NewSection(coeffs)
	t.builtHz = hz
	t.builtQ = q
}

func (t *textureLayer) render(outL, outR []float64) {
	if t.disposed {
		return
	}
	hz := t.band.stepN(len(outL))
	if relDiff(hz, t.builtHz) > 0.002 || t.bandQ != t.builtQ {
		t.rebuildFilter(hz, t.bandQ)
	}
	for i := range outL {
		am := 1 + t.amLFO.stepScaled()*0.5
		raw := shape(t.noise.step()*2.2, t.drive)
		g := t.gain.step() * am
		outL[i] += t.filterL.ProcessSample(raw) * g
		outR[i] += t.filterR.ProcessSample(raw) * g
	}
}
