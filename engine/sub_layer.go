package engine

import "math/rand"

// ----- Sub Layer ----- //

const subLevelScale = 0.55

// subLayer is the low anchor: a sine with gentle saturation and a slow
// pitch-drift modulator.
type subLayer struct {
	osc      *osc
	pitchLFO *lfo // depth interpreted in cents
	gain     *ramp
	level    float64
	drive    float64
	started  bool
	disposed bool
}

func newSubLayer(freqHz float64, rng *rand.Rand) *subLayer {
	return &subLayer{
		osc:      newOsc(waveSine, freqHz, rng),
		pitchLFO: newLFO(0.02, 6, rng.Float64()),
		gain:     newRamp(0),
		level:    subLevelScale,
	}
}

func (s *subLayer) start() {
	if s.disposed {
		return
	}
	s.started = true
	s.gain.linear(startRampSec, s.level)
}

func (s *subLayer) stop() {
	if s.disposed {
		return
	}
	s.gain.linear(stopRampSec, 0)
}

func (s *subLayer) dispose() {
	s.disposed = true
	s.osc = nil
	s.pitchLFO = nil
}

func (s *subLayer) setFrequency(hz float64, ramped bool) {
	s.osc.freq.exponential(freqRampSec, clampF(hz, minFilterHz, 120), 0.01)
}

func (s *subLayer) setLevel(level float64, ramped bool) {
	s.level = clamp01(level) * subLevelScale
	if s.started {
		s.gain.linear(rampFor(ramped), s.level)
	}
}

func (s *subLayer) setPitchMod(rateHz, depthCents float64) {
	s.pitchLFO.setRate(clampF(rateHz, walkRateMinHz, 1))
	s.pitchLFO.setDepth(clampF(depthCents, 0, 50))
}

func (s *subLayer) setDrive(drive float64) {
	s.drive = clamp01(drive)
}

func (s *subLayer) render(outL, outR []float64) {
	if s.disposed {
		return
	}
	for i := range outL {
		ratio := vibratoRatio(s.pitchLFO.step(), s.pitchLFO.depth)
		v := shape(s.osc.step(ratio), s.drive*0.6) * s.gain.step()
		outL[i] += v
		outR[i] += v
	}
}
