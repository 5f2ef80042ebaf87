// Package wavexport delivers finished recordings as files. Captures are
// re-encoded to 16-bit PCM WAV; when that fails the raw captured samples
// are written out instead so a take is never lost.
package wavexport

import (
	"encoding/binary"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/go-audio/audio"
	"github.com/go-audio/transforms"
	"github.com/go-audio/wav"

	"github.com/lee-cloete/drift/engine"
)

const exportBitDepth = 16

// Sink writes recordings into a directory, naming them
// <prefix>-<timestamp> with the extension of the delivered encoding.
type Sink struct {
	dir string
	now func() time.Time
}

var _ engine.ExportSink = (*Sink)(nil)

func NewSink(dir string) *Sink {
	return &Sink{dir: dir, now: time.Now}
}

// Deliver writes the recording to disk. WAV encode failure falls back to
// the originally captured float32 data.
func (s *Sink) Deliver(rec engine.Recording, prefix string) error {
	if len(rec.Samples) == 0 {
		return fmt.Errorf("empty recording")
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("create export dir: %w", err)
	}
	stamp := s.now().Format("20060102-150405")
	wavPath := filepath.Join(s.dir, fmt.Sprintf("%s-%s.wav", prefix, stamp))
	if err := s.writeWav(wavPath, rec); err != nil {
		slog.Warn("wav encode failed, falling back to raw capture", "error", err)
		rawPath := filepath.Join(s.dir, fmt.Sprintf("%s-%s.f32le", prefix, stamp))
		if rawErr := s.writeRaw(rawPath, rec); rawErr != nil {
			return fmt.Errorf("export fallback failed: %w (wav: %v)", rawErr, err)
		}
	}
	return nil
}

func (s *Sink) writeWav(path string, rec engine.Recording) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	enc := wav.NewEncoder(f, rec.SampleRate, exportBitDepth, rec.Channels, 1)
	// Scaling mutates the buffer, keep the capture intact for the fallback.
	scaled := make([]float32, len(rec.Samples))
	copy(scaled, rec.Samples)
	fBuf := &audio.Float32Buffer{
		Data: scaled,
		Format: &audio.Format{
			NumChannels: rec.Channels,
			SampleRate:  rec.SampleRate,
		},
	}
	if err := transforms.PCMScaleF32(fBuf, exportBitDepth); err != nil {
		return fmt.Errorf("scale samples: %w", err)
	}
	if err := enc.Write(fBuf.AsIntBuffer()); err != nil {
		return fmt.Errorf("encode wav: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("finalize wav: %w", err)
	}
	return nil
}

// writeRaw dumps the capture in its original encoding: interleaved
// float32 little-endian.
func (s *Sink) writeRaw(path string, rec engine.Recording) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()
	if err := binary.Write(f, binary.LittleEndian, rec.Samples); err != nil {
		return fmt.Errorf("write raw samples: %w", err)
	}
	return nil
}
