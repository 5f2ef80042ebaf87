package engine

// ----- Layer ----- //

// layer is the common contract of the four tonal generators. Rendering into
// the shared output buffers is the pull-model equivalent of connecting a
// node to the bus: every layer adds its block into outL/outR.
//
// start ramps the output level up from wherever it is; stop only ramps it
// back to silence. The generating sources themselves live from construction
// until dispose, which is what makes restarts click-free and instant.
type layer interface {
	start()
	stop()
	dispose()
	render(outL, outR []float64)
}

// Ramp durations shared by the layers. "Ramped" is the slower user-visible
// transition, "immediate" the fast internal re-application.
const (
	startRampSec     = 0.4
	stopRampSec      = 0.6
	paramRampSec     = 0.9
	immediateRampSec = 0.08
	freqRampSec      = 0.5
	lfoRateRampSec   = 0.8
)

// rampFor picks the transition duration from the caller's ramped/immediate
// flag.
func rampFor(ramped bool) float64 {
	if ramped {
		return paramRampSec
	}
	return immediateRampSec
}
