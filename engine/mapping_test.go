package engine

import "testing"

func TestDarknessToCutoff(t *testing.T) {
	expectNearlyEqual(t, darknessToCutoff(0), brightCutoffHz)
	expectNearlyEqual(t, darknessToCutoff(1), darkCutoffHz)
	// Out-of-range input clamps instead of extrapolating.
	expectNearlyEqual(t, darknessToCutoff(-2), brightCutoffHz)
	expectNearlyEqual(t, darknessToCutoff(3), darkCutoffHz)

	prev := darknessToCutoff(0)
	for d := 0.05; d <= 1.0001; d += 0.05 {
		cur := darknessToCutoff(d)
		if cur >= prev {
			t.Fatalf("cutoff not strictly decreasing at darkness %v: %v >= %v", d, cur, prev)
		}
		if cur < minFilterHz {
			t.Fatalf("cutoff %v below filter floor", cur)
		}
		prev = cur
	}
}

func TestDarknessCurveIsExponential(t *testing.T) {
	// Equal knob moves give equal frequency ratios.
	r1 := darknessToCutoff(0.2) / darknessToCutoff(0.4)
	r2 := darknessToCutoff(0.6) / darknessToCutoff(0.8)
	expectNearlyEqual(t, r1, r2)
}

func TestMotionToLFORate(t *testing.T) {
	expectNearlyEqual(t, motionToLFORate(0), 0.005)
	expectNearlyEqual(t, motionToLFORate(1), 0.08)
	expectNearlyEqual(t, motionToLFORate(2), 0.08)
}

func TestRootToSubFreq(t *testing.T) {
	expectNearlyEqual(t, rootToSubFreq(0), 34)
	expectNearlyEqual(t, rootToSubFreq(0.5), 51)
	expectNearlyEqual(t, rootToSubFreq(1), 68)
}

func TestDerivedFrequencyClamps(t *testing.T) {
	// Mid caps at 200 Hz even when the raw ratio would exceed it.
	expectNearlyEqual(t, subToMidFreq(68, 1), 200)
	expectNearlyEqual(t, subToMidFreq(34, 0), 54.4)

	expectNearlyEqual(t, subToAirFreq(34, 0), 163.2)
	expectNearlyEqual(t, subToAirFreq(68, 1), 748)
	// Clamps guard against values outside the normal derivation.
	expectNearlyEqual(t, subToAirFreq(10, 0), airFreqMinHz)
	expectNearlyEqual(t, subToAirFreq(200, 1), airFreqMaxHz)

	expectNearlyEqual(t, subToKickFreq(34), 41.48)
	expectNearlyEqual(t, subToKickFreq(10), kickFreqMin)
	expectNearlyEqual(t, subToKickFreq(200), kickFreqMax)
}

func TestDeriveFrequenciesConsistent(t *testing.T) {
	d := deriveFrequencies(0.3, 0.4)
	expectNearlyEqual(t, d.subHz, rootToSubFreq(0.3))
	expectNearlyEqual(t, d.midHz, subToMidFreq(d.subHz, 0.4))
	expectNearlyEqual(t, d.airHz, subToAirFreq(d.subHz, 0.4))
	expectNearlyEqual(t, d.kickHz, subToKickFreq(d.subHz))
}
