package audio

import (
	"bytes"
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
)

func TestLoadMP3(t *testing.T) {
	data, err := os.ReadFile(filepath.Join("testdata", "silence.mp3"))
	if err != nil {
		t.Fatal(err)
	}

	buf, err := Load("story.mp3", bytes.NewReader(data))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if buf.Channels != 2 {
		t.Errorf("Channels = %d, want 2", buf.Channels)
	}
	if buf.SampleRate != 44100 {
		t.Errorf("SampleRate = %d, want 44100", buf.SampleRate)
	}
	if len(buf.Samples) == 0 || len(buf.Samples)%2 != 0 {
		t.Errorf("sample count = %d, want a non-empty interleaved stereo buffer", len(buf.Samples))
	}
	if err := buf.Validate(); err != nil {
		t.Errorf("Validate() error = %v", err)
	}
}

func TestLoadMP3Invalid(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"garbage", []byte("definitely not an mpeg stream")},
		{"empty", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load("story.mp3", bytes.NewReader(tt.data))
			if !errors.Is(err, ErrUnsupportedFormat) {
				t.Errorf("Load() error = %v, want ErrUnsupportedFormat", err)
			}
		})
	}
}

func requireFFmpeg(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("ffmpeg"); err != nil {
		t.Skipf("ffmpeg not found in PATH: %v", err)
	}
}

func TestLoadM4A(t *testing.T) {
	requireFFmpeg(t)

	dir := t.TempDir()
	wavPath := filepath.Join(dir, "tone.wav")
	m4aPath := filepath.Join(dir, "tone.m4a")

	src := Buffer{Samples: make([]float32, 16000), SampleRate: 16000, Channels: 1}
	for i := range src.Samples {
		src.Samples[i] = float32(i%32-16) / 32
	}
	if err := SaveWAV(src, wavPath); err != nil {
		t.Fatal(err)
	}
	cmd := exec.Command("ffmpeg", "-y", "-loglevel", "error", "-i", wavPath, "-c:a", "aac", m4aPath)
	if out, err := cmd.CombinedOutput(); err != nil {
		t.Skipf("ffmpeg cannot encode aac: %v: %s", err, out)
	}

	buf, err := LoadFile(m4aPath)
	if err != nil {
		t.Fatalf("LoadFile() error = %v", err)
	}
	if buf.SampleRate != 16000 || buf.Channels != 1 {
		t.Errorf("decoded %dHz/%dch, want 16000Hz/1ch", buf.SampleRate, buf.Channels)
	}
	if len(buf.Samples) == 0 {
		t.Error("decoded buffer is empty")
	}
}

func TestDecodeWithFFmpegInvalid(t *testing.T) {
	requireFFmpeg(t)

	_, err := decodeWithFFmpeg(context.Background(), bytes.NewReader([]byte("not an m4a")), "m4a")
	if !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("decodeWithFFmpeg() error = %v, want ErrUnsupportedFormat", err)
	}
}
