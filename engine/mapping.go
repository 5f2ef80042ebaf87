package engine

import "math"

// Parameter-to-signal mappings. Each takes a normalized [0,1] value (clamped
// here, so callers can pass raw UI input) and returns a physical unit.

const (
	brightCutoffHz = 2400.0
	darkCutoffHz   = 60.0
	minFilterHz    = 20.0 // exponential ramps blow up below this

	lfoRateFloorHz = 0.005
	lfoRateSpanHz  = 0.075 // ceiling 0.08 Hz

	subFreqFloorHz = 34.0
	subFreqSpanHz  = 34.0 // ceiling 68 Hz

	midRatioFloor = 1.6
	midRatioSpan  = 1.8 // ceiling 3.4
	midFreqMinHz  = 45.0
	midFreqMaxHz  = 200.0

	airRatioFloor = 4.8
	airRatioSpan  = 6.2 // ceiling 11.0
	airFreqMinHz  = 140.0
	airFreqMaxHz  = 760.0

	kickRatio    = 1.22
	kickFreqMin  = 38.0
	kickFreqMax  = 90.0
)

// darknessToCutoff interpolates exponentially from the bright ceiling down to
// the dark floor, so equal knob moves feel like equal pitch moves.
func darknessToCutoff(darkness float64) float64 {
	darkness = clamp01(darkness)
	cutoff := brightCutoffHz * math.Pow(darkCutoffHz/brightCutoffHz, darkness)
	return math.Max(cutoff, minFilterHz)
}

func motionToLFORate(motion float64) float64 {
	return lfoRateFloorHz + clamp01(motion)*lfoRateSpanHz
}

func rootToSubFreq(root float64) float64 {
	return subFreqFloorHz + clamp01(root)*subFreqSpanHz
}

func subToMidFreq(subHz, spread float64) float64 {
	ratio := midRatioFloor + clamp01(spread)*midRatioSpan
	return clampF(subHz*ratio, midFreqMinHz, midFreqMaxHz)
}

func subToAirFreq(subHz, spread float64) float64 {
	ratio := airRatioFloor + clamp01(spread)*airRatioSpan
	return clampF(subHz*ratio, airFreqMinHz, airFreqMaxHz)
}

func subToKickFreq(subHz float64) float64 {
	return clampF(subHz*kickRatio, kickFreqMin, kickFreqMax)
}

// derived caches the harmonic structure computed from root and spread.
type derived struct {
	subHz  float64
	midHz  float64
	airHz  float64
	kickHz float64
}

func deriveFrequencies(root, spread float64) derived {
	sub := rootToSubFreq(root)
	return derived{
		subHz:  sub,
		midHz:  subToMidFreq(sub, spread),
		airHz:  subToAirFreq(sub, spread),
		kickHz: subToKickFreq(sub),
	}
}
