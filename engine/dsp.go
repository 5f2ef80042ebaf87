package engine

import (
	"math"
	"math/rand"
)

// ----- Oscillator ----- //

const (
	waveSine = iota
	waveSaw
)

// osc is a naive phase-accumulating oscillator. Frequency moves through a
// ramp; phase is randomized at construction so stacked layers never start
// phase-aligned.
type osc struct {
	kind    int
	freq    *ramp
	phase01 float64
}

func newOsc(kind int, freqHz float64, rng *rand.Rand) *osc {
	return &osc{
		kind:    kind,
		freq:    newRamp(freqHz),
		phase01: rng.Float64(),
	}
}

// step advances one sample. freqRatio multiplies the ramped base frequency,
// which is how vibrato and shimmer modulation reach the oscillator.
func (o *osc) step(freqRatio float64) float64 {
	value := 0.0
	switch o.kind {
	case waveSine:
		value = math.Sin(2 * math.Pi * o.phase01)
	case waveSaw:
		value = o.phase01*2 - 1
	}
	o.phase01 += o.freq.step() * freqRatio * secPerSample
	_, o.phase01 = math.Modf(o.phase01)
	return value
}

// ----- Pink Noise ----- //

// pinkNoise is a Paul Kellet style -3dB/octave filter bank over white noise.
type pinkNoise struct {
	rng   *rand.Rand
	state [7]float64
}

var pinkCoeffs = [7]float64{0.1294, 0.1875, 0.2414, 0.3026, 0.3830, 0.4962, 0.7195}

func newPinkNoise(rng *rand.Rand) *pinkNoise {
	return &pinkNoise{rng: rng}
}

func (p *pinkNoise) step() float64 {
	white := p.rng.Float64()*2 - 1
	for i := range p.state {
		p.state[i] += pinkCoeffs[i] * (white - p.state[i])
	}
	sum := 0.0
	for _, s := range p.state {
		sum += s
	}
	return sum / 2.5
}

// ----- Waveshaper ----- //

// shape applies tanh soft saturation. drive 0 is transparent.
func shape(in, drive float64) float64 {
	if drive <= 0 {
		return in
	}
	gain := 1 + drive*4
	return math.Tanh(in*gain) / math.Tanh(gain)
}

// ----- Peak Limiter ----- //

// limiter is a lookahead-free peak limiter: instant attack on overshoot,
// exponential release back toward unity.
type limiter struct {
	threshold float64
	release   float64 // per-sample release coefficient
	gain      float64
}

func newLimiter(threshold, releaseSec float64) *limiter {
	return &limiter{
		threshold: threshold,
		release:   math.Exp(-1 / (releaseSec * sampleRate)),
		gain:      1,
	}
}

func (l *limiter) step(in float64) float64 {
	peak := math.Abs(in)
	if peak*l.gain > l.threshold {
		l.gain = l.threshold / peak
	} else {
		l.gain = 1 + (l.gain-1)*l.release
	}
	return in * l.gain
}
