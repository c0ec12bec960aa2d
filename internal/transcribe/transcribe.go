package transcribe

import (
	"context"
	"errors"
	"fmt"

	"github.com/chaz8081/heritage-collector/internal/audio"
)

// SampleRate is the rate every backend expects.
const SampleRate = 16000

var (
	// ErrMalformedAudio is returned for buffers that cannot be transcribed.
	ErrMalformedAudio = errors.New("transcribe: malformed audio")
	// ErrTranscription wraps any backend failure.
	ErrTranscription = errors.New("transcribe: transcription failed")
)

// Transcribe validates buf, converts it to 16kHz mono and runs t on it.
// There is no retry; a backend error is returned wrapped in ErrTranscription.
func Transcribe(ctx context.Context, t Transcriber, buf audio.Buffer) (string, error) {
	if err := buf.Validate(); err != nil {
		return "", fmt.Errorf("%w: %v", ErrMalformedAudio, err)
	}

	mono := buf.Resample(SampleRate)

	text, err := t.Process(ctx, mono.Samples)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrTranscription, err)
	}
	return text, nil
}
