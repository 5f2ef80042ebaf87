package engine

import (
	"math"
	"math/cmplx"

	algofft "github.com/MeKo-Christian/algo-fft"
	"github.com/cwbudde/algo-dsp/dsp/effects"
	"github.com/cwbudde/algo-dsp/dsp/filter/biquad"
	"github.com/cwbudde/algo-dsp/dsp/filter/design"
	"github.com/cwbudde/algo-dsp/dsp/window"
)

// ----- Master Bus ----- //

const (
	toneFilterQ = 0.7071

	masterReverbRoomSize = 0.85
	masterReverbDamp     = 0.4
	masterReverbGain     = 0.02
	maxMasterWet         = 0.7

	limiterThreshold  = 0.95
	limiterReleaseSec = 0.12

	spectrumFFTSize   = 2048
	spectrumSmoothing = 0.65
	spectrumFloorDB   = -120.0
)

// bus owns the shared output path: gain, tone-shaping lowpass, spatial
// reverb, peak limiter, plus the non-destructive post-limiter analysis tap.
type bus struct {
	volume *ramp
	cutoff *ramp

	toneL, toneR *biquad.Section
	builtHz      float64

	reverbL, reverbR *effects.Reverb
	wet              float64

	limL, limR *limiter

	// analysis tap
	specWindow     []float64
	specWindowGain float64
	specPlan       *algofft.Plan[complex128]
	specRing       []float64
	specWrite      int
	specFilled     int
	specToHop      int
	specHop        int
	specIn         []complex128
	specOut        []complex128
	specDB         []float64
	specReady      bool

	lastBlock []float64 // most recent post-limiter mono block
}

func newBus() (*bus, error) {
	b := &bus{
		volume:  newRamp(0),
		cutoff:  newRamp(darknessToCutoff(0.5)),
		reverbL: effects.NewReverb(),
		reverbR: effects.NewReverb(),
		limL:    newLimiter(limiterThreshold, limiterReleaseSec),
		limR:    newLimiter(limiterThreshold, limiterReleaseSec),
	}
	for _, rv := range []*effects.Reverb{b.reverbL, b.reverbR} {
		rv.SetRoomSize(masterReverbRoomSize)
		rv.SetDamp(masterReverbDamp)
		rv.SetGain(masterReverbGain)
		rv.SetDry(1)
	}
	b.rebuildTone(b.cutoff.value)

	win := window.Generate(window.TypeHann, spectrumFFTSize, window.WithPeriodic())
	sum := 0.0
	for _, w := range win {
		sum += w
	}
	plan, err := algofft.NewPlan64(spectrumFFTSize)
	if err != nil {
		return nil, err
	}
	b.specWindow = win
	b.specWindowGain = sum / spectrumFFTSize
	b.specPlan = plan
	b.specHop = spectrumFFTSize / 2
	b.specRing = make([]float64, spectrumFFTSize)
	b.specIn = make([]complex128, spectrumFFTSize)
	b.specOut = make([]complex128, spectrumFFTSize)
	b.specDB = silentSpectrum()
	return b, nil
}

func silentSpectrum() []float64 {
	db := make([]float64, spectrumFFTSize/2+1)
	for i := range db {
		db[i] = spectrumFloorDB
	}
	return db
}

func (b *bus) setVolume(v float64, ramped bool) {
	b.volume.linear(rampFor(ramped), clamp01(v))
}

func (b *bus) setDarkness(d float64, ramped bool) {
	b.cutoff.exponential(rampFor(ramped), darknessToCutoff(d), 0.5)
}

func (b *bus) setReverbWet(wet float64) {
	b.wet = clampF(wet, 0, maxMasterWet)
	b.reverbL.SetWet(b.wet)
	b.reverbR.SetWet(b.wet)
}

func (b *bus) rebuildTone(hz float64) {
	coeffs := design.Lowpass(clampF(hz, minFilterHz, brightCutoffHz), toneFilterQ, sampleRate)
	b.toneL = biquad.NewSection(coeffs)
	b.toneR = biquad.NewSection(coeffs)
	b.builtHz = hz
}

// process runs the shared path in place over one block and feeds the
// analysis tap.
func (b *bus) process(outL, outR []float64) {
	hz := b.cutoff.stepN(len(outL))
	if relDiff(hz, b.builtHz) > 0.002 {
		b.rebuildTone(hz)
	}
	if len(b.lastBlock) != len(outL) {
		b.lastBlock = make([]float64, len(outL))
	}
	for i := range outL {
		g := b.volume.step()
		l := b.toneL.ProcessSample(outL[i] * g)
		r := b.toneR.ProcessSample(outR[i] * g)
		l = b.reverbL.ProcessSample(l)
		r = b.reverbR.ProcessSample(r)
		l = b.limL.step(l)
		r = b.limR.step(r)
		outL[i] = l
		outR[i] = r
		mono := (l + r) / 2
		b.lastBlock[i] = mono
		b.pushSpectrumSample(mono)
	}
}

func (b *bus) pushSpectrumSample(x float64) {
	b.specRing[b.specWrite] = x
	b.specWrite++
	if b.specWrite >= spectrumFFTSize {
		b.specWrite = 0
	}
	if b.specFilled < spectrumFFTSize {
		b.specFilled++
	}
	b.specToHop++
	if b.specFilled < spectrumFFTSize || b.specToHop < b.specHop {
		return
	}
	b.specToHop = 0
	b.updateSpectrumFrame()
}

func (b *bus) updateSpectrumFrame() {
	const eps = 1e-12
	read := b.specWrite
	for i := 0; i < spectrumFFTSize; i++ {
		b.specIn[i] = complex(b.specRing[read]*b.specWindow[i], 0)
		read++
		if read >= spectrumFFTSize {
			read = 0
		}
	}
	if err := b.specPlan.Forward(b.specOut, b.specIn); err != nil {
		return
	}
	norm := spectrumFFTSize * math.Max(b.specWindowGain, eps)
	last := len(b.specDB) - 1
	for k := 0; k <= last; k++ {
		mag := cmplx.Abs(b.specOut[k]) / norm
		if k > 0 && k < last {
			mag *= 2
		}
		db := 20 * math.Log10(math.Max(eps, mag))
		if db < spectrumFloorDB {
			db = spectrumFloorDB
		}
		if !b.specReady {
			b.specDB[k] = db
			continue
		}
		b.specDB[k] = spectrumSmoothing*b.specDB[k] + (1-spectrumSmoothing)*db
	}
	b.specReady = true
}

// spectrum returns a copy of the latest magnitude spectrum in dB.
func (b *bus) spectrum() []float64 {
	out := make([]float64, len(b.specDB))
	copy(out, b.specDB)
	return out
}

// waveform returns a copy of the most recent post-limiter mono block.
func (b *bus) waveform() []float64 {
	out := make([]float64, len(b.lastBlock))
	copy(out, b.lastBlock)
	return out
}
