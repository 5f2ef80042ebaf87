package engine

import (
	"math/rand"

	"github.com/cwbudde/algo-dsp/dsp/filter/biquad"
	"github.com/cwbudde/algo-dsp/dsp/filter/design"
)

// ----- Mid Layer ----- //

const (
	midLevelScale = 0.32
	midFilterQ    = 2.2
	// Attack is deliberately shorter than a classic cinematic swell so
	// transport toggling feels responsive.
	midAttackSec  = 1.6
	midReleaseSec = 0.8
)

// midLayer is the cinematic body: two detuned saws through a resonant
// lowpass with its own cutoff modulator.
type midLayer struct {
	oscA, oscB *osc
	cutoff     *ramp
	filterLFO  *lfo // depth as a cutoff ratio exponent
	filterL    *biquad.Section
	filterR    *biquad.Section
	builtHz    float64
	gain       *ramp
	level      float64
	detune     float64 // cents, split symmetrically across the pair
	baseHz     float64
	started    bool
	disposed   bool
}

func newMidLayer(freqHz float64, rng *rand.Rand) *midLayer {
	m := &midLayer{
		oscA:      newOsc(waveSaw, freqHz, rng),
		oscB:      newOsc(waveSaw, freqHz, rng),
		cutoff:    newRamp(600),
		filterLFO: newLFO(0.03, 0.4, rng.Float64()),
		gain:      newRamp(0),
		level:     midLevelScale,
		detune:    8,
		baseHz:    freqHz,
	}
	m.rebuildFilter(m.cutoff.value)
	m.applyDetune(freqRampSec)
	return m
}

func (m *midLayer) start() {
	if m.disposed {
		return
	}
	m.started = true
	m.gain.linear(midAttackSec, m.level)
}

func (m *midLayer) stop() {
	if m.disposed {
		return
	}
	m.gain.linear(midReleaseSec, 0)
}

func (m *midLayer) dispose() {
	m.disposed = true
	m.oscA, m.oscB = nil, nil
	m.filterL, m.filterR = nil, nil
}

func (m *midLayer) setFrequency(hz float64, ramped bool) {
	m.baseHz = clampF(hz, minFilterHz, midFreqMaxHz)
	m.applyDetune(freqRampSec)
}

func (m *midLayer) setDetune(cents float64, ramped bool) {
	m.detune = clampF(cents, 0, 60)
	m.applyDetune(rampFor(ramped))
}

func (m *midLayer) setCutoff(hz float64, ramped bool) {
	m.cutoff.exponential(rampFor(ramped), clampF(hz, minFilterHz, 4000), 0.5)
}

func (m *midLayer) setFilterMod(rateHz, depth float64) {
	m.filterLFO.setRate(clampF(rateHz, walkRateMinHz, 1))
	m.filterLFO.setDepth(clampF(depth, 0, 1))
}

func (m *midLayer) setLevel(level float64, ramped bool) {
	m.level = clamp01(level) * midLevelScale
	if m.started {
		m.gain.linear(rampFor(ramped), m.level)
	}
}

func (m *midLayer) applyDetune(durationSec float64) {
	half := m.detune / 2
	m.oscA.freq.exponential(durationSec, m.baseHz*vibratoRatio(1, half), 0.01)
	m.oscB.freq.exponential(durationSec, m.baseHz*vibratoRatio(-1, half), 0.01)
}

func (m *midLayer) rebuildFilter(hz float64) {
	coeffs := design.Lowpass(clampF(hz, minFilterHz, 4000), midFilterQ, sampleRate)
	m.filterL = biquad.NewSection(coeffs)
	m.filterR = biquad.NewSection(coeffs)
	m.builtHz = hz
}

func (m *midLayer) render(outL, outR []float64) {
	if m.disposed {
		return
	}
	// Cutoff and its modulator are consumed at block rate; the biquad is
	// rebuilt only when the effective frequency actually moved.
	base := m.cutoff.stepN(len(outL))
	mod := 1.0
	for i := 0; i < len(outL); i++ {
		mod = vibratoRatio(m.filterLFO.step(), m.filterLFO.depth*1200)
	}
	effective := clampF(base*mod, minFilterHz, 4000)
	if relDiff(effective, m.builtHz) > 0.002 {
		m.rebuildFilter(effective)
	}
	for i := range outL {
		raw := (m.oscA.step(1) + m.oscB.step(1)) * 0.5
		g := m.gain.step()
		outL[i] += m.filterL.ProcessSample(raw) * g
		outR[i] += m.filterR.ProcessSample(raw) * g
	}
}

func relDiff(a, b float64) float64 {
	if b == 0 {
		return 1
	}
	d := (a - b) / b
	if d < 0 {
		return -d
	}
	return d
}
