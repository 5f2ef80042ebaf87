package engine

import "testing"

func TestRampLinear(t *testing.T) {
	r := newRamp(0)
	durationSamples := 441 // 10ms
	r.linear(0.01, 1)
	for i := 0; i < durationSamples/2; i++ {
		r.step()
	}
	expectClose(t, r.value, 0.5, 0.01)
	for i := 0; i < durationSamples; i++ {
		r.step()
	}
	expectNearlyEqual(t, r.value, 1)
	expectEqual(t, r.idle(), true)
}

func TestRampLinearNeverOvershoots(t *testing.T) {
	r := newRamp(1)
	r.linear(0.005, 0.25)
	for i := 0; i < sampleRate; i++ {
		v := r.step()
		if v < 0.25 || v > 1 {
			t.Fatalf("ramp escaped [0.25,1]: %v at step %v", v, i)
		}
	}
	expectNearlyEqual(t, r.value, 0.25)
}

func TestRampExponentialConverges(t *testing.T) {
	r := newRamp(1000)
	r.exponential(0.05, 100, 0.5)
	for i := 0; i < sampleRate && !r.idle(); i++ {
		r.step()
	}
	expectEqual(t, r.idle(), true)
	expectNearlyEqual(t, r.value, 100)
}

func TestRampExponentialShape(t *testing.T) {
	// One time constant in: 63% of the way to the target.
	expectClose(t, setTargetAtTime(0, 1, 1), 0.632, 0.001)
	expectNearlyEqual(t, setTargetAtTime(0, 1, 0), 0)
}

func TestRampSetNowCancels(t *testing.T) {
	r := newRamp(0)
	r.linear(1, 1)
	r.step()
	r.setNow(0.4)
	expectEqual(t, r.idle(), true)
	expectNearlyEqual(t, r.step(), 0.4)
}

func TestRampZeroDurationJumps(t *testing.T) {
	r := newRamp(0)
	r.linear(0, 1)
	expectNearlyEqual(t, r.value, 1)
	r.exponential(0, 2, 0.1)
	expectNearlyEqual(t, r.value, 2)
}

func TestRampStepN(t *testing.T) {
	a := newRamp(0)
	b := newRamp(0)
	a.linear(0.01, 1)
	b.linear(0.01, 1)
	for i := 0; i < 100; i++ {
		a.step()
	}
	b.stepN(100)
	expectNearlyEqual(t, a.value, b.value)

	// Retargeting mid-flight starts from the current value.
	a.linear(0.01, 0)
	expectClose(t, a.initialValue, b.value, 0.0001)
}
