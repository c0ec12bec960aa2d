package transcribe

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai"

	"github.com/chaz8081/heritage-collector/internal/audio"
)

// OpenAITranscriber sends audio to the OpenAI transcription endpoint.
type OpenAITranscriber struct {
	client *openai.Client
	model  string
}

// NewOpenAITranscriber creates a transcriber for the given API key and model
// (e.g. "whisper-1").
func NewOpenAITranscriber(apiKey, model string) (*OpenAITranscriber, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("transcribe: openai backend requires OPENAI_API_KEY")
	}
	return newOpenAITranscriber(openai.DefaultConfig(apiKey), model), nil
}

func newOpenAITranscriber(cfg openai.ClientConfig, model string) *OpenAITranscriber {
	if model == "" {
		model = openai.Whisper1
	}
	return &OpenAITranscriber{client: openai.NewClientWithConfig(cfg), model: model}
}

// Close is a no-op; the HTTP client holds no resources.
func (t *OpenAITranscriber) Close() error { return nil }

// Process encodes the samples as a 16kHz mono WAV and transcribes it.
func (t *OpenAITranscriber) Process(ctx context.Context, samples []float32) (string, error) {
	wav, err := audio.WAVBytes(audio.Buffer{Samples: samples, SampleRate: SampleRate, Channels: 1})
	if err != nil {
		return "", fmt.Errorf("transcribe: encode wav: %w", err)
	}

	resp, err := t.client.CreateTranscription(ctx, openai.AudioRequest{
		Model:    t.model,
		FilePath: "story.wav",
		Reader:   bytes.NewReader(wav),
	})
	if err != nil {
		return "", fmt.Errorf("transcribe: openai: %w", err)
	}
	return strings.TrimSpace(resp.Text), nil
}
