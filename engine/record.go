package engine

import "time"

// ----- Recording ----- //

// Recording is a finished capture handed to the export sink: raw interleaved
// stereo float32 samples plus an encoding hint.
type Recording struct {
	Samples    []float32
	SampleRate int
	Channels   int
	Encoding   string // "pcm-f32le"
}

// ExportSink delivers a finished recording to the user. Implementations own
// naming (timestamp, extension) and any optional re-encode; on re-encode
// failure they must fall back to the captured format rather than lose the
// take.
type ExportSink interface {
	Deliver(rec Recording, prefix string) error
}

// recorder taps the post-limiter signal into an in-memory capture buffer.
type recorder struct {
	active  bool
	samples []float32
	started time.Time
}

func (r *recorder) start(now time.Time) {
	r.active = true
	r.samples = r.samples[:0]
	r.started = now
}

func (r *recorder) capture(outL, outR []float64) {
	if !r.active {
		return
	}
	for i := range outL {
		r.samples = append(r.samples, float32(outL[i]), float32(outR[i]))
	}
}

func (r *recorder) finish() Recording {
	r.active = false
	samples := make([]float32, len(r.samples))
	copy(samples, r.samples)
	r.samples = r.samples[:0]
	return Recording{
		Samples:    samples,
		SampleRate: sampleRate,
		Channels:   channelCount,
		Encoding:   "pcm-f32le",
	}
}

func (r *recorder) elapsed(now time.Time) float64 {
	if !r.active {
		return 0
	}
	return now.Sub(r.started).Seconds()
}
