package engine

import "math"

// ----- Transition Kind ----- //

const (
	transitionNone = iota
	transitionLinear
	transitionExponential
)

// ----- Ramp ----- //

// ramp is a sample-clocked smoothed value. Every audible parameter moves
// through one of these so that no setter ever produces an instantaneous jump.
type ramp struct {
	kind         int
	duration     float64 // seconds
	endThreshold float64
	initialValue float64
	targetValue  float64
	value        float64
	pos          int
}

func newRamp(value float64) *ramp {
	return &ramp{value: value, targetValue: value}
}

// setNow jumps immediately, cancelling any transition in flight. Only used
// for inaudible re-initialization, never for user-facing changes.
func (r *ramp) setNow(value float64) {
	r.kind = transitionNone
	r.value = value
	r.targetValue = value
	r.pos = 0
}

func (r *ramp) linear(durationSec, targetValue float64) {
	if durationSec <= 0 {
		r.setNow(targetValue)
		return
	}
	r.kind = transitionLinear
	r.duration = durationSec
	r.endThreshold = 0
	r.pos = 0
	r.initialValue = r.value
	r.targetValue = targetValue
}

func (r *ramp) exponential(durationSec, targetValue, endThreshold float64) {
	if durationSec <= 0 {
		r.setNow(targetValue)
		return
	}
	r.kind = transitionExponential
	r.duration = durationSec
	r.endThreshold = endThreshold
	r.pos = 0
	r.initialValue = r.value
	r.targetValue = targetValue
}

func (r *ramp) step() float64 {
	switch r.kind {
	case transitionLinear:
		phaseTime := float64(r.pos) * secPerSample
		if phaseTime >= r.duration {
			r.end()
		} else {
			t := phaseTime / r.duration
			r.value = t*r.targetValue + (1-t)*r.initialValue
			r.pos++
		}
	case transitionExponential:
		phaseTime := float64(r.pos) * secPerSample
		t := phaseTime / r.duration
		r.value = setTargetAtTime(r.initialValue, r.targetValue, t)
		if math.Abs(r.value-r.targetValue) < r.endThreshold {
			r.end()
		} else {
			r.pos++
		}
	case transitionNone:
	}
	return r.value
}

// stepN advances the ramp by n samples at once. Used for parameters that are
// only consumed at block granularity, like filter cutoffs.
func (r *ramp) stepN(n int) float64 {
	if r.kind == transitionNone {
		return r.value
	}
	for i := 0; i < n; i++ {
		r.step()
		if r.kind == transitionNone {
			break
		}
	}
	return r.value
}

func (r *ramp) end() {
	r.kind = transitionNone
	r.value = r.targetValue
	r.pos = 0
}

func (r *ramp) idle() bool {
	return r.kind == transitionNone
}

// 63% closer to target when pos=1.0
func setTargetAtTime(initialValue, targetValue, pos float64) float64 {
	return targetValue + (initialValue-targetValue)*math.Exp(-pos)
}
