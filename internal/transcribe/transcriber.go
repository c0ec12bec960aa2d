// Package transcribe provides speech-to-text backends.
//
// Supported backends:
//   - whisper: whisper.cpp via Go bindings (default)
//   - openai: OpenAI audio transcription API
package transcribe

import (
	"context"
	"fmt"

	"github.com/chaz8081/heritage-collector/internal/config"
)

// Transcriber converts audio samples to text.
type Transcriber interface {
	// Process transcribes mono 16kHz float32 audio samples to text.
	Process(ctx context.Context, samples []float32) (string, error)
	// Close releases backend resources.
	Close() error
}

// New creates a Transcriber based on the config backend setting.
func New(cfg *config.TranscribeConfig) (Transcriber, error) {
	switch cfg.Backend {
	case "openai":
		t, err := NewOpenAITranscriber(cfg.OpenAIKey, cfg.OpenAIModel)
		if err != nil {
			return nil, err
		}
		return t, nil
	case "whisper", "":
		t, err := NewWhisperTranscriber(cfg.ModelPath)
		if err != nil {
			return nil, err
		}
		return t, nil
	default:
		return nil, fmt.Errorf("transcribe: unknown backend %q (supported: whisper, openai)", cfg.Backend)
	}
}
