package engine

import (
	"math"
	"math/rand"

	"github.com/cwbudde/algo-dsp/dsp/filter/biquad"
	"github.com/cwbudde/algo-dsp/dsp/filter/design"
)

// ----- Pulse Subsystem ----- //

const (
	pulseSteps   = 16
	pulseBaseBPM = 62.0
	pulseBPMSpan = 34.0
	maxSwing     = 0.12

	// Empirical density gates for the extra hits.
	denseThreshold  = 0.55
	denserThreshold = 0.82

	// intensity^1.35 gives a perceptually smoother gain curve than linear:
	// near-zero intensity is barely audible, top of the range is dramatic.
	intensityCurve = 1.35
	pulseGainScale = 0.5

	maxPulseVoices = 16

	tickBandHz      = 1800.0
	quietTickBandHz = 2600.0
)

// pulseVoice is one percussive hit in flight.
type pulseVoice struct {
	kick    bool
	phase01 float64
	freq    float64
	vel     float64
	age     int
	decay   int // samples
	band    *biquad.Section
	rng     *rand.Rand
}

func (v *pulseVoice) done() bool {
	return v.age >= v.decay
}

func (v *pulseVoice) step() float64 {
	if v.done() {
		return 0
	}
	t := float64(v.age) / float64(v.decay)
	env := math.Exp(-5 * t)
	v.age++
	if v.kick {
		// Pitch sweeps down onto the kick frequency for the initial thump.
		f := v.freq * (1 + 2.5*math.Exp(-9*t))
		value := math.Sin(2 * math.Pi * v.phase01)
		v.phase01 += f * secPerSample
		_, v.phase01 = math.Modf(v.phase01)
		return value * env * v.vel
	}
	white := v.rng.Float64()*2 - 1
	return v.band.ProcessSample(white) * env * v.vel
}

// pulse is the 16-step percussive sequencer. The transport advances inside
// the render loop, so timing is sample-accurate and keeps phase even when
// the intensity gain is zero.
type pulse struct {
	running       bool
	stepIndex     int
	samplesToNext float64
	motion        float64
	density       float64
	intensity     float64
	muted         bool // pure drone overlay
	kickHz        float64
	gain          *ramp
	voices        []*pulseVoice
	rng           *rand.Rand
	disposed      bool
}

func newPulse(kickHz float64, rng *rand.Rand) *pulse {
	return &pulse{
		kickHz: kickHz,
		gain:   newRamp(0),
		voices: make([]*pulseVoice, 0, maxPulseVoices),
		rng:    rng,
	}
}

// start resets the step counter and engages the transport.
func (p *pulse) start() {
	if p.disposed {
		return
	}
	p.running = true
	p.stepIndex = 0
	p.samplesToNext = 0
	p.applyGain()
}

// stop is a full stop, not a mute: the transport position resets and no
// further steps fire.
func (p *pulse) stop() {
	if p.disposed {
		return
	}
	p.running = false
	p.stepIndex = 0
	p.samplesToNext = 0
	p.gain.linear(stopRampSec, 0)
}

func (p *pulse) dispose() {
	p.disposed = true
	p.voices = nil
}

func (p *pulse) setMotion(motion float64) {
	p.motion = clamp01(motion)
}

func (p *pulse) setDensity(density float64) {
	p.density = clamp01(density)
}

// setIntensity at zero silences the bus while the sequencer keeps
// advancing, so re-engaging stays phase-locked.
func (p *pulse) setIntensity(intensity float64) {
	p.intensity = clamp01(intensity)
	p.applyGain()
}

func (p *pulse) setMuted(muted bool) {
	p.muted = muted
	p.applyGain()
}

func (p *pulse) setKickFreq(hz float64) {
	p.kickHz = clampF(hz, kickFreqMin, kickFreqMax)
}

func (p *pulse) applyGain() {
	if !p.running {
		return
	}
	effective := p.intensity
	if p.muted {
		effective = 0
	}
	p.gain.linear(0.15, math.Pow(effective, intensityCurve)*pulseGainScale)
}

func (p *pulse) bpm() float64 {
	return pulseBaseBPM + p.motion*pulseBPMSpan
}

func (p *pulse) stepSamples() float64 {
	return 60.0 / p.bpm() / 4.0 * sampleRate
}

func (p *pulse) addVoice(v *pulseVoice) {
	if len(p.voices) >= maxPulseVoices {
		copy(p.voices, p.voices[1:])
		p.voices = p.voices[:maxPulseVoices-1]
	}
	p.voices = append(p.voices, v)
}

func (p *pulse) kickVoice(freq, vel float64) *pulseVoice {
	return &pulseVoice{
		kick:  true,
		freq:  freq,
		vel:   vel,
		decay: int(0.35 * sampleRate),
	}
}

func (p *pulse) tickVoice(bandHz, vel float64) *pulseVoice {
	return &pulseVoice{
		vel:   vel,
		decay: int(0.06 * sampleRate),
		band:  biquad.NewSection(design.Bandpass(bandHz, 5, sampleRate)),
		rng:   p.rng,
	}
}

func (p *pulse) trigger(step int) {
	switch {
	case step == 0 || step == 8:
		p.addVoice(p.kickVoice(p.kickHz, 0.9))
	case step == 12 && p.density > denseThreshold:
		p.addVoice(p.kickVoice(p.kickHz*0.84, 0.7))
	}
	if step == 4 || step == 12 {
		p.addVoice(p.tickVoice(tickBandHz, 0.35+0.65*p.intensity))
	}
	if p.density > denserThreshold && step%2 == 0 && step != 0 && step != 8 {
		p.addVoice(p.tickVoice(quietTickBandHz, 0.18))
	}
}

// advance moves to the next step and schedules it, swung in proportion to
// motion: odd sixteenths land late, even ones early.
func (p *pulse) advance() {
	p.stepIndex = (p.stepIndex + 1) % pulseSteps
	dur := p.stepSamples()
	swing := p.motion * maxSwing
	if p.stepIndex%2 == 1 {
		dur *= 1 + swing
	} else {
		dur *= 1 - swing
	}
	p.samplesToNext += dur
}

func (p *pulse) render(outL, outR []float64) {
	if p.disposed {
		return
	}
	for i := range outL {
		if p.running {
			if p.samplesToNext <= 0 {
				p.trigger(p.stepIndex)
				p.advance()
			}
			p.samplesToNext--
		}
		v := 0.0
		for _, voice := range p.voices {
			v += voice.step()
		}
		g := p.gain.step()
		outL[i] += v * g
		outR[i] += v * g
	}
	alive := p.voices[:0]
	for _, voice := range p.voices {
		if !voice.done() {
			alive = append(alive, voice)
		}
	}
	p.voices = alive
}
