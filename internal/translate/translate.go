// Package translate converts transcripts to a target language through a
// primary provider with a single fallback to a secondary provider.
package translate

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
)

// ErrUnavailable is reported when every provider failed.
var ErrUnavailable = errors.New("translate: translation unavailable")

// Provider is one translation service.
type Provider interface {
	Name() string
	// Translate converts text from source to target. An empty source asks
	// the provider to detect it.
	Translate(ctx context.Context, text, source, target string) (string, error)
}

// LanguageDetector identifies the language of a text.
type LanguageDetector interface {
	Detect(text string) (string, error)
}

// Status describes how a Result was produced.
type Status string

const (
	// StatusTranslated means a provider returned a translation.
	StatusTranslated Status = "translated"
	// StatusUnchanged means the text was already in the target language.
	StatusUnchanged Status = "unchanged"
	// StatusUnavailable means all providers failed; Text is empty.
	StatusUnavailable Status = "unavailable"
)

// Result is the outcome of a translation. Callers must check Status (or
// OK) instead of treating an empty Text as a translation.
type Result struct {
	Text     string
	Provider string
	Status   Status
	Err      error
}

// OK reports whether Text holds usable target-language text.
func (r Result) OK() bool {
	return r.Status == StatusTranslated || r.Status == StatusUnchanged
}

// Service tries Primary and falls back to Secondary once.
type Service struct {
	Primary   Provider
	Secondary Provider // optional
	// Detector, if set, identifies the source language when the caller
	// does not supply one.
	Detector LanguageDetector
}

// Translate converts text into target. Text already in the target
// language is returned unchanged without calling any provider.
func (s *Service) Translate(ctx context.Context, text, source, target string) Result {
	target = normalizeCode(target)
	source = normalizeCode(source)

	if strings.TrimSpace(text) == "" {
		return Result{Status: StatusUnavailable, Err: fmt.Errorf("%w: empty text", ErrUnavailable)}
	}

	if source == "" && s.Detector != nil {
		if code, err := s.Detector.Detect(text); err == nil {
			source = normalizeCode(code)
		}
	}
	if source != "" && source == target {
		return Result{Text: text, Status: StatusUnchanged}
	}

	if s.Primary == nil {
		return Result{Status: StatusUnavailable, Err: fmt.Errorf("%w: no provider configured", ErrUnavailable)}
	}

	out, primaryErr := s.Primary.Translate(ctx, text, source, target)
	if primaryErr == nil {
		return Result{Text: out, Provider: s.Primary.Name(), Status: StatusTranslated}
	}
	slog.Warn("[translate] primary provider failed", "provider", s.Primary.Name(), "error", primaryErr)

	if s.Secondary == nil {
		return Result{
			Status: StatusUnavailable,
			Err:    fmt.Errorf("%w: %s: %w", ErrUnavailable, s.Primary.Name(), primaryErr),
		}
	}

	out, secondaryErr := s.Secondary.Translate(ctx, text, source, target)
	if secondaryErr == nil {
		slog.Info("[translate] used fallback provider", "provider", s.Secondary.Name())
		return Result{Text: out, Provider: s.Secondary.Name(), Status: StatusTranslated}
	}
	slog.Error("[translate] fallback provider failed", "provider", s.Secondary.Name(), "error", secondaryErr)

	return Result{
		Status: StatusUnavailable,
		Err: fmt.Errorf("%w: %w", ErrUnavailable, errors.Join(
			fmt.Errorf("%s: %w", s.Primary.Name(), primaryErr),
			fmt.Errorf("%s: %w", s.Secondary.Name(), secondaryErr),
		)),
	}
}

// normalizeCode reduces "en-US" or "EN" to "en".
func normalizeCode(code string) string {
	code = strings.ToLower(strings.TrimSpace(code))
	if code == "auto" {
		return ""
	}
	if i := strings.IndexAny(code, "-_"); i > 0 {
		code = code[:i]
	}
	return code
}

// cleanOutput strips wrappers that chat models like to add around a
// translation.
func cleanOutput(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```text")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	s = strings.TrimPrefix(s, `"""`)
	s = strings.TrimSuffix(s, `"""`)
	return strings.TrimSpace(s)
}
