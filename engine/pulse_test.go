package engine

import (
	"math"
	"math/rand"
	"testing"
)

func testPulse() *pulse {
	return newPulse(48, rand.New(rand.NewSource(1)))
}

func TestPulseBPMFollowsMotion(t *testing.T) {
	p := testPulse()
	p.setMotion(0)
	expectNearlyEqual(t, p.bpm(), pulseBaseBPM)
	p.setMotion(1)
	expectNearlyEqual(t, p.bpm(), pulseBaseBPM+pulseBPMSpan)
}

func TestPulseStepPattern(t *testing.T) {
	p := testPulse()
	p.setDensity(0.3)

	p.trigger(0)
	expectEqual(t, len(p.voices), 1)
	expectEqual(t, p.voices[0].kick, true)

	p.voices = p.voices[:0]
	p.trigger(8)
	expectEqual(t, len(p.voices), 1)
	expectEqual(t, p.voices[0].kick, true)

	// At low density step 12 carries only the tick.
	p.voices = p.voices[:0]
	p.trigger(12)
	expectEqual(t, len(p.voices), 1)
	expectEqual(t, p.voices[0].kick, false)

	// Odd steps are silent at low density.
	p.voices = p.voices[:0]
	p.trigger(3)
	expectEqual(t, len(p.voices), 0)
}

func TestPulseDenseSteps(t *testing.T) {
	p := testPulse()
	p.setDensity(0.7)

	// Above the dense threshold step 12 gains a second, softer kick.
	p.trigger(12)
	expectEqual(t, len(p.voices), 2)
	expectEqual(t, p.voices[0].kick, true)
	expectEqual(t, p.voices[1].kick, false)

	// Even off-beat steps stay silent until the denser threshold.
	p.voices = p.voices[:0]
	p.trigger(6)
	expectEqual(t, len(p.voices), 0)

	p.setDensity(0.9)
	p.trigger(6)
	expectEqual(t, len(p.voices), 1)
	// The backbeat steps never double up with quiet ticks.
	p.voices = p.voices[:0]
	p.trigger(8)
	expectEqual(t, len(p.voices), 1)
	expectEqual(t, p.voices[0].kick, true)
}

func TestPulseIntensityCurve(t *testing.T) {
	p := testPulse()
	p.start()
	p.setIntensity(0.5)
	expectNearlyEqual(t, p.gain.targetValue, math.Pow(0.5, intensityCurve)*pulseGainScale)
	p.setIntensity(0)
	expectNearlyEqual(t, p.gain.targetValue, 0)
}

func TestPulseMuteKeepsTransportRunning(t *testing.T) {
	p := testPulse()
	p.setMotion(0)
	p.start()
	p.setMuted(true)
	expectNearlyEqual(t, p.gain.targetValue, 0)

	// Render past two step durations: the step counter must advance even
	// though the output gain is zero.
	outL := make([]float64, 4096)
	outR := make([]float64, 4096)
	steps := int(3 * p.stepSamples() / 4096)
	for i := 0; i < steps+1; i++ {
		p.render(outL, outR)
	}
	if p.stepIndex < 2 {
		t.Errorf("expected transport to advance while muted, step index %v", p.stepIndex)
	}
	for _, v := range outL {
		if v != 0 {
			t.Fatal("expected silent output while muted")
		}
	}
}

func TestPulseStopResetsTransport(t *testing.T) {
	p := testPulse()
	p.setIntensity(0.8)
	p.start()
	outL := make([]float64, 16384)
	outR := make([]float64, 16384)
	p.render(outL, outR)
	p.render(outL, outR)
	if p.stepIndex == 0 && p.samplesToNext == 0 {
		t.Fatal("expected transport to have advanced before stop")
	}
	p.stop()
	expectEqual(t, p.running, false)
	expectEqual(t, p.stepIndex, 0)
	expectNearlyEqual(t, p.samplesToNext, 0)
}

func TestPulseSwingStretchesOddSteps(t *testing.T) {
	p := testPulse()
	p.setMotion(1)
	base := p.stepSamples()

	p.stepIndex = 0
	p.samplesToNext = 0
	p.advance() // to step 1, odd: late
	odd := p.samplesToNext
	p.samplesToNext = 0
	p.advance() // to step 2, even: early
	even := p.samplesToNext

	expectNearlyEqual(t, odd, base*(1+maxSwing))
	expectNearlyEqual(t, even, base*(1-maxSwing))
}

func TestPulseVoiceBounded(t *testing.T) {
	p := testPulse()
	for i := 0; i < maxPulseVoices*3; i++ {
		p.addVoice(p.kickVoice(48, 0.5))
	}
	expectEqual(t, len(p.voices), maxPulseVoices)
}

func TestPulseAudibleWhenEngaged(t *testing.T) {
	p := testPulse()
	p.setIntensity(1)
	p.start()
	outL := make([]float64, 8192)
	outR := make([]float64, 8192)
	p.render(outL, outR)
	peak := 0.0
	for _, v := range outL {
		peak = math.Max(peak, math.Abs(v))
	}
	if peak == 0 {
		t.Error("expected audible pulse output at full intensity")
	}
}

func TestPulseMuteIsNotAStop(t *testing.T) {
	p := testPulse()
	p.start()
	p.setMuted(true)
	expectEqual(t, p.running, true)
	p.setMuted(false)
	p.setIntensity(0.6)
	expectNearlyEqual(t, p.gain.targetValue, math.Pow(0.6, intensityCurve)*pulseGainScale)
}
