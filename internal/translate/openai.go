package translate

import (
	"context"
	"fmt"

	"github.com/sashabaranov/go-openai"
)

// OpenAI translates with a chat completion model.
type OpenAI struct {
	client *openai.Client
	model  string
}

// NewOpenAI creates an OpenAI provider. baseURL may be empty for the
// public API.
func NewOpenAI(apiKey, baseURL, model string) (*OpenAI, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("translate: openai provider requires OPENAI_API_KEY")
	}
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	if model == "" {
		model = openai.GPT4oMini
	}
	return &OpenAI{client: openai.NewClientWithConfig(cfg), model: model}, nil
}

func (p *OpenAI) Name() string { return "openai" }

func (p *OpenAI) Translate(ctx context.Context, text, source, target string) (string, error) {
	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       p.model,
		Temperature: 0.2,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt(source, target)},
			{Role: openai.ChatMessageRoleUser, Content: userPrompt(text)},
		},
	})
	if err != nil {
		return "", fmt.Errorf("openai chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("openai: empty response")
	}

	out := cleanOutput(resp.Choices[0].Message.Content)
	if out == "" {
		return "", fmt.Errorf("openai: empty translation")
	}
	return out, nil
}
