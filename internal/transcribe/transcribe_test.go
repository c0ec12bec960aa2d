package transcribe

import (
	"context"
	"errors"
	"testing"

	"github.com/chaz8081/heritage-collector/internal/audio"
	"github.com/chaz8081/heritage-collector/internal/config"
)

// fakeTranscriber records what it was asked to process.
type fakeTranscriber struct {
	got  []float32
	text string
	err  error
}

func (f *fakeTranscriber) Process(_ context.Context, samples []float32) (string, error) {
	f.got = samples
	return f.text, f.err
}

func (f *fakeTranscriber) Close() error { return nil }

func TestTranscribeResamplesTo16kMono(t *testing.T) {
	fake := &fakeTranscriber{text: "hello"}
	buf := audio.Buffer{
		Samples:    make([]float32, 48000*2), // 1s of 48kHz stereo
		SampleRate: 48000,
		Channels:   2,
	}

	text, err := Transcribe(context.Background(), fake, buf)
	if err != nil {
		t.Fatalf("Transcribe() error = %v", err)
	}
	if text != "hello" {
		t.Errorf("Transcribe() = %q, want %q", text, "hello")
	}
	if len(fake.got) != SampleRate {
		t.Errorf("backend got %d samples, want %d", len(fake.got), SampleRate)
	}
}

func TestTranscribeMalformedAudio(t *testing.T) {
	fake := &fakeTranscriber{}
	_, err := Transcribe(context.Background(), fake, audio.Buffer{SampleRate: 16000, Channels: 1})
	if !errors.Is(err, ErrMalformedAudio) {
		t.Errorf("Transcribe() error = %v, want ErrMalformedAudio", err)
	}
	if fake.got != nil {
		t.Error("backend should not be called for malformed audio")
	}
}

func TestTranscribeWrapsBackendError(t *testing.T) {
	backendErr := errors.New("model exploded")
	fake := &fakeTranscriber{err: backendErr}
	buf := audio.Buffer{Samples: []float32{0.1, 0.2}, SampleRate: 16000, Channels: 1}

	_, err := Transcribe(context.Background(), fake, buf)
	if !errors.Is(err, ErrTranscription) {
		t.Errorf("Transcribe() error = %v, want ErrTranscription", err)
	}
	if !errors.Is(err, backendErr) {
		t.Errorf("Transcribe() error = %v, want it to wrap the backend error", err)
	}
}

func TestNewUnknownBackend(t *testing.T) {
	_, err := New(&config.TranscribeConfig{Backend: "vosk"})
	if err == nil {
		t.Fatal("New() with unknown backend should return error")
	}
}

func TestNewOpenAIRequiresKey(t *testing.T) {
	_, err := New(&config.TranscribeConfig{Backend: "openai", OpenAIModel: "whisper-1"})
	if err == nil {
		t.Fatal("New() openai backend without API key should return error")
	}
}
