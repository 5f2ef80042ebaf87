package engine

import (
	"math"
	"math/rand"

	"github.com/cwbudde/algo-dsp/dsp/effects"
)

// ----- Air Layer ----- //

const (
	airLevelScale = 0.2
	// Wetter than the master bus on purpose: the shimmer should feel like it
	// lives further away than everything else.
	airReverbDefaultWet = 0.75
	airReverbRoomSize   = 0.92
	airReverbDamp       = 0.3
	airReverbGain       = 0.03
)

// airLayer is the shimmer: a single oscillator with pitch shimmer, an
// auto-panner, and its own reverb tank.
type airLayer struct {
	osc        *osc
	shimmerLFO *lfo // depth in cents
	panLFO     *lfo
	reverbL    *effects.Reverb
	reverbR    *effects.Reverb
	gain       *ramp
	level      float64
	started    bool
	disposed   bool
}

func newAirLayer(freqHz float64, rng *rand.Rand) *airLayer {
	a := &airLayer{
		osc:        newOsc(waveSine, freqHz, rng),
		shimmerLFO: newLFO(0.04, 9, rng.Float64()),
		panLFO:     newLFO(0.03, 1, rng.Float64()),
		reverbL:    effects.NewReverb(),
		reverbR:    effects.NewReverb(),
		gain:       newRamp(0),
		level:      airLevelScale,
	}
	for _, rv := range []*effects.Reverb{a.reverbL, a.reverbR} {
		rv.SetRoomSize(airReverbRoomSize)
		rv.SetDamp(airReverbDamp)
		rv.SetGain(airReverbGain)
		rv.SetDry(1)
		rv.SetWet(airReverbDefaultWet)
	}
	return a
}

func (a *airLayer) start() {
	if a.disposed {
		return
	}
	a.started = true
	a.gain.linear(startRampSec, a.level)
}

func (a *airLayer) stop() {
	if a.disposed {
		return
	}
	a.gain.linear(stopRampSec, 0)
}

func (a *airLayer) dispose() {
	a.disposed = true
	a.osc = nil
	a.reverbL, a.reverbR = nil, nil
}

func (a *airLayer) setFrequency(hz float64, ramped bool) {
	a.osc.freq.exponential(freqRampSec, clampF(hz, airFreqMinHz, airFreqMaxHz), 0.01)
}

func (a *airLayer) setLevel(level float64, ramped bool) {
	a.level = clamp01(level) * airLevelScale
	if a.started {
		a.gain.linear(rampFor(ramped), a.level)
	}
}

func (a *airLayer) setPanRate(rateHz float64) {
	a.panLFO.setRate(clampF(rateHz, walkRateMinHz, 1))
}

func (a *airLayer) setShimmerDepth(cents float64) {
	a.shimmerLFO.setDepth(clampF(cents, 0, 40))
}

func (a *airLayer) setReverbWet(wet float64) {
	wet = clamp01(wet) * 1.2
	a.reverbL.SetWet(wet)
	a.reverbR.SetWet(wet)
}

func (a *airLayer) render(outL, outR []float64) {
	if a.disposed {
		return
	}
	for i := range outL {
		ratio := vibratoRatio(a.shimmerLFO.step(), a.shimmerLFO.depth)
		v := a.osc.step(ratio) * a.gain.step()
		// Equal-power pan swept by the pan LFO.
		pan := (a.panLFO.step() + 1) / 2
		angle := pan * math.Pi / 2
		outL[i] += a.reverbL.ProcessSample(v * math.Cos(angle))
		outR[i] += a.reverbR.ProcessSample(v * math.Sin(angle))
	}
}
