package translate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// Ollama translates with a locally hosted model through /api/generate.
type Ollama struct {
	baseURL string
	model   string
	client  *http.Client
}

// NewOllama creates a provider for the Ollama server at baseURL.
func NewOllama(baseURL, model string, timeout time.Duration) *Ollama {
	return &Ollama{
		baseURL: strings.TrimRight(baseURL, "/"),
		model:   model,
		client:  &http.Client{Timeout: timeout},
	}
}

func (p *Ollama) Name() string { return "ollama" }

func (p *Ollama) Translate(ctx context.Context, text, source, target string) (string, error) {
	payload, err := json.Marshal(map[string]any{
		"model":  p.model,
		"system": systemPrompt(source, target),
		"prompt": userPrompt(text),
		"stream": false,
		"options": map[string]any{
			"temperature":    0.2,
			"repeat_penalty": 1.1,
		},
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/api/generate", bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("ollama error: status %d (check if model '%s' is pulled)", resp.StatusCode, p.model)
	}

	var ollamaResp struct {
		Response string `json:"response"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&ollamaResp); err != nil {
		return "", fmt.Errorf("ollama: decode response: %w", err)
	}

	out := cleanOutput(ollamaResp.Response)
	out = strings.Trim(out, `"'`)
	if out == "" {
		return "", fmt.Errorf("ollama: empty translation")
	}
	return out, nil
}
