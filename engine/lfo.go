package engine

import "math"

// ----- LFO ----- //

// lfo is the sample-clocked periodic modulator used inside layers. Rate
// changes glide through a ramp so a moving modulator never jumps phase
// velocity audibly; depth changes apply immediately (callers time them to
// quiet transitions).
type lfo struct {
	phase01 float64
	rate    *ramp // Hz
	depth   float64
}

func newLFO(rateHz, depth, phase01 float64) *lfo {
	return &lfo{
		phase01: phase01,
		rate:    newRamp(rateHz),
		depth:   depth,
	}
}

func (l *lfo) setRate(rateHz float64) {
	l.rate.exponential(lfoRateRampSec, rateHz, 1e-5)
}

func (l *lfo) setDepth(depth float64) {
	l.depth = depth
}

// step advances one sample and returns the raw oscillator value in [-1,1].
func (l *lfo) step() float64 {
	value := math.Sin(2 * math.Pi * l.phase01)
	l.phase01 += l.rate.step() * secPerSample
	_, l.phase01 = math.Modf(l.phase01)
	return value
}

// stepScaled advances one sample and returns the value scaled by depth.
func (l *lfo) stepScaled() float64 {
	return l.step() * l.depth
}

// vibratoRatio converts an LFO excursion in cents into a frequency ratio.
func vibratoRatio(lfoValue, cents float64) float64 {
	return math.Pow(2, lfoValue*cents/1200)
}
