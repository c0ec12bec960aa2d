package translate

import (
	"fmt"
	"log/slog"

	"github.com/chaz8081/heritage-collector/internal/config"
)

// NewProvider builds the named provider from configuration.
func NewProvider(name string, cfg *config.TranslateConfig) (Provider, error) {
	switch name {
	case "openai":
		p, err := NewOpenAI(cfg.OpenAI.APIKey, cfg.OpenAI.BaseURL, cfg.OpenAI.Model)
		if err != nil {
			return nil, err
		}
		return p, nil
	case "libretranslate":
		return NewLibreTranslate(cfg.LibreTranslate.URL, cfg.LibreTranslate.APIKey, cfg.Timeout), nil
	case "ollama":
		return NewOllama(cfg.Ollama.URL, cfg.Ollama.Model, cfg.Timeout), nil
	default:
		return nil, fmt.Errorf("translate: unknown provider %q", name)
	}
}

// NewService builds a Service from configuration. An empty or "none"
// secondary disables the fallback. If the primary cannot be built (for
// example a missing API key) the secondary takes its place.
func NewService(cfg *config.TranslateConfig, detector LanguageDetector) (*Service, error) {
	s := &Service{Detector: detector}

	primary, primaryErr := NewProvider(cfg.Primary, cfg)
	if primaryErr == nil {
		s.Primary = primary
	}

	if cfg.Secondary != "" && cfg.Secondary != "none" {
		secondary, err := NewProvider(cfg.Secondary, cfg)
		if err != nil {
			return nil, fmt.Errorf("translate: secondary: %w", err)
		}
		s.Secondary = secondary
	}

	if primaryErr != nil {
		if s.Secondary == nil {
			return nil, fmt.Errorf("translate: primary: %w", primaryErr)
		}
		slog.Warn("[translate] primary provider unavailable, using fallback only",
			"primary", cfg.Primary, "fallback", s.Secondary.Name(), "error", primaryErr)
		s.Primary, s.Secondary = s.Secondary, nil
	}
	return s, nil
}
