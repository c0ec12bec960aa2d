// Package audio produces PCM buffers for the story pipeline, either from a
// live microphone capture or from an uploaded WAV/MP3/M4A file, and writes
// them back out as WAV.
package audio

import (
	"errors"
	"fmt"
	"math"
	"time"
)

var (
	// ErrNoAudioCaptured is returned when a capture collected zero frames,
	// e.g. stop was pressed before anything was recorded.
	ErrNoAudioCaptured = errors.New("audio: no audio captured")
	// ErrUnsupportedFormat is returned for unrecognized or undecodable
	// upload containers.
	ErrUnsupportedFormat = errors.New("audio: unsupported format")
)

// Buffer is one contiguous PCM buffer. Samples are float32 in [-1, 1],
// interleaved when Channels > 1.
type Buffer struct {
	Samples    []float32
	SampleRate uint32
	Channels   uint32
}

// Frames returns the number of sample frames (samples per channel).
func (b Buffer) Frames() int {
	if b.Channels == 0 {
		return 0
	}
	return len(b.Samples) / int(b.Channels)
}

// Duration returns the playback length of the buffer.
func (b Buffer) Duration() time.Duration {
	if b.SampleRate == 0 {
		return 0
	}
	return time.Duration(float64(b.Frames()) / float64(b.SampleRate) * float64(time.Second))
}

// Clone returns a deep copy, so each pipeline stage can own its samples.
func (b Buffer) Clone() Buffer {
	out := b
	out.Samples = make([]float32, len(b.Samples))
	copy(out.Samples, b.Samples)
	return out
}

// Validate reports whether the buffer can be handed to a transcriber.
func (b Buffer) Validate() error {
	if b.SampleRate == 0 {
		return fmt.Errorf("audio: sample rate must be > 0")
	}
	if b.Channels == 0 {
		return fmt.Errorf("audio: channel count must be > 0")
	}
	if len(b.Samples) == 0 {
		return fmt.Errorf("audio: buffer is empty")
	}
	if len(b.Samples)%int(b.Channels) != 0 {
		return fmt.Errorf("audio: %d samples is not a multiple of %d channels", len(b.Samples), b.Channels)
	}
	for i, s := range b.Samples {
		if math.IsNaN(float64(s)) || math.IsInf(float64(s), 0) {
			return fmt.Errorf("audio: sample %d is not finite", i)
		}
	}
	return nil
}

// Mono downmixes interleaved channels by averaging them.
func (b Buffer) Mono() Buffer {
	if b.Channels <= 1 {
		return b.Clone()
	}
	ch := int(b.Channels)
	frames := b.Frames()
	out := make([]float32, frames)
	for i := 0; i < frames; i++ {
		var sum float32
		for c := 0; c < ch; c++ {
			sum += b.Samples[i*ch+c]
		}
		out[i] = sum / float32(ch)
	}
	return Buffer{Samples: out, SampleRate: b.SampleRate, Channels: 1}
}

// Resample converts a mono buffer to the target rate by linear
// interpolation. Multi-channel buffers are downmixed first.
func (b Buffer) Resample(rate uint32) Buffer {
	m := b.Mono()
	if rate == 0 || m.SampleRate == rate || len(m.Samples) == 0 {
		return m
	}

	ratio := float64(m.SampleRate) / float64(rate)
	n := int(math.Round(float64(len(m.Samples)) / ratio))
	if n < 1 {
		n = 1
	}
	out := make([]float32, n)
	last := len(m.Samples) - 1
	for i := range out {
		pos := float64(i) * ratio
		j := int(pos)
		if j >= last {
			out[i] = m.Samples[last]
			continue
		}
		frac := float32(pos - float64(j))
		out[i] = m.Samples[j]*(1-frac) + m.Samples[j+1]*frac
	}
	return Buffer{Samples: out, SampleRate: rate, Channels: 1}
}

// Normalize scales samples in place so the peak absolute amplitude is 1.
// A silent buffer is left untouched.
func Normalize(samples []float32) {
	var peak float32
	for _, s := range samples {
		if s < 0 {
			s = -s
		}
		if s > peak {
			peak = s
		}
	}
	if peak == 0 {
		return
	}
	for i := range samples {
		samples[i] /= peak
	}
}

// Capture concatenates captured frames into one normalized buffer. It
// returns ErrNoAudioCaptured when no samples were collected.
func Capture(frames [][]float32, sampleRate, channels uint32) (Buffer, error) {
	total := 0
	for _, f := range frames {
		total += len(f)
	}
	if total == 0 {
		return Buffer{}, ErrNoAudioCaptured
	}

	samples := make([]float32, 0, total)
	for _, f := range frames {
		samples = append(samples, f...)
	}
	Normalize(samples)

	return Buffer{Samples: samples, SampleRate: sampleRate, Channels: channels}, nil
}
