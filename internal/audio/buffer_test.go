package audio

import (
	"errors"
	"math"
	"testing"
	"time"
)

func TestCaptureZeroFrames(t *testing.T) {
	tests := []struct {
		name   string
		frames [][]float32
	}{
		{"nil frames", nil},
		{"empty frames", [][]float32{{}, {}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Capture(tt.frames, 16000, 1)
			if !errors.Is(err, ErrNoAudioCaptured) {
				t.Errorf("Capture() error = %v, want ErrNoAudioCaptured", err)
			}
		})
	}
}

func TestCaptureConcatenatesAndNormalizes(t *testing.T) {
	frames := [][]float32{
		{0.1, -0.2},
		{0.25},
		{-0.5, 0},
	}

	buf, err := Capture(frames, 48000, 1)
	if err != nil {
		t.Fatalf("Capture() error = %v", err)
	}

	want := []float32{0.2, -0.4, 0.5, -1, 0}
	if len(buf.Samples) != len(want) {
		t.Fatalf("len(Samples) = %d, want %d", len(buf.Samples), len(want))
	}
	for i := range want {
		if math.Abs(float64(buf.Samples[i]-want[i])) > 1e-6 {
			t.Errorf("Samples[%d] = %f, want %f", i, buf.Samples[i], want[i])
		}
	}
	if buf.SampleRate != 48000 || buf.Channels != 1 {
		t.Errorf("format = %dHz %dch, want 48000Hz 1ch", buf.SampleRate, buf.Channels)
	}
}

func TestNormalizeSilence(t *testing.T) {
	samples := []float32{0, 0, 0}
	Normalize(samples)
	for i, s := range samples {
		if s != 0 || math.IsNaN(float64(s)) {
			t.Errorf("samples[%d] = %f, want 0", i, s)
		}
	}
}

func TestNormalizePeakIsOne(t *testing.T) {
	samples := []float32{0.01, -0.04, 0.02}
	Normalize(samples)
	if samples[1] != -1 {
		t.Errorf("peak sample = %f, want -1", samples[1])
	}
	if math.Abs(float64(samples[0]-0.25)) > 1e-6 {
		t.Errorf("samples[0] = %f, want 0.25", samples[0])
	}
}

func TestBufferMono(t *testing.T) {
	buf := Buffer{Samples: []float32{1, 0, 0.5, 0.5, -1, 1}, SampleRate: 8000, Channels: 2}
	m := buf.Mono()

	if m.Channels != 1 {
		t.Fatalf("Channels = %d, want 1", m.Channels)
	}
	want := []float32{0.5, 0.5, 0}
	for i := range want {
		if m.Samples[i] != want[i] {
			t.Errorf("Samples[%d] = %f, want %f", i, m.Samples[i], want[i])
		}
	}
}

func TestBufferResample(t *testing.T) {
	samples := make([]float32, 48000)
	for i := range samples {
		samples[i] = float32(math.Sin(float64(i) / 10))
	}
	buf := Buffer{Samples: samples, SampleRate: 48000, Channels: 1}

	out := buf.Resample(16000)
	if out.SampleRate != 16000 {
		t.Errorf("SampleRate = %d, want 16000", out.SampleRate)
	}
	if len(out.Samples) != 16000 {
		t.Errorf("len(Samples) = %d, want 16000", len(out.Samples))
	}
	if out.Duration() != time.Second {
		t.Errorf("Duration() = %v, want 1s", out.Duration())
	}
	// Resample must not mutate the source.
	if buf.Samples[1] != samples[1] {
		t.Error("Resample mutated the source buffer")
	}
}

func TestBufferResampleSameRateIsCopy(t *testing.T) {
	buf := Buffer{Samples: []float32{0.1, 0.2}, SampleRate: 16000, Channels: 1}
	out := buf.Resample(16000)
	out.Samples[0] = 9
	if buf.Samples[0] != 0.1 {
		t.Error("Resample at same rate should return an independent copy")
	}
}

func TestBufferValidate(t *testing.T) {
	tests := []struct {
		name    string
		buf     Buffer
		wantErr bool
	}{
		{"valid", Buffer{Samples: []float32{0.1}, SampleRate: 16000, Channels: 1}, false},
		{"empty", Buffer{SampleRate: 16000, Channels: 1}, true},
		{"zero rate", Buffer{Samples: []float32{0.1}, Channels: 1}, true},
		{"zero channels", Buffer{Samples: []float32{0.1}, SampleRate: 16000}, true},
		{"ragged stereo", Buffer{Samples: []float32{0.1, 0.2, 0.3}, SampleRate: 16000, Channels: 2}, true},
		{"nan sample", Buffer{Samples: []float32{float32(math.NaN())}, SampleRate: 16000, Channels: 1}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.buf.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestBufferClone(t *testing.T) {
	buf := Buffer{Samples: []float32{0.1, 0.2}, SampleRate: 16000, Channels: 1}
	c := buf.Clone()
	c.Samples[0] = 1
	if buf.Samples[0] != 0.1 {
		t.Error("Clone() shares its sample slice with the original")
	}
}
