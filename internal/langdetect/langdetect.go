// Package langdetect classifies the language of a transcript from its text.
package langdetect

import (
	"errors"
	"fmt"
	"strings"

	"github.com/abadojack/whatlanggo"
)

var (
	// ErrEmptyText is returned for empty or whitespace-only input. Callers
	// should check for empty transcripts before detecting.
	ErrEmptyText = errors.New("langdetect: empty text")
	// ErrUndetermined is returned when no language can be chosen.
	ErrUndetermined = errors.New("langdetect: language undetermined")
)

// Detector maps text to an ISO 639-1 language code. whatlanggo's trigram
// classifier has no random state, so the same text always yields the same
// code.
type Detector struct {
	opts whatlanggo.Options
}

// New returns a Detector. A non-empty whitelist of ISO 639-1 codes restricts
// the candidate languages; unknown codes are rejected.
func New(whitelist []string) (*Detector, error) {
	d := &Detector{}
	if len(whitelist) == 0 {
		return d, nil
	}

	known := make(map[string]whatlanggo.Lang)
	for lang := range whatlanggo.Langs {
		if code := lang.Iso6391(); code != "" {
			known[code] = lang
		}
	}

	d.opts.Whitelist = make(map[whatlanggo.Lang]bool, len(whitelist))
	for _, code := range whitelist {
		lang, ok := known[strings.ToLower(code)]
		if !ok {
			return nil, fmt.Errorf("langdetect: unknown language code %q", code)
		}
		d.opts.Whitelist[lang] = true
	}
	return d, nil
}

// Detect returns the ISO 639-1 code of text's language.
func (d *Detector) Detect(text string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", ErrEmptyText
	}

	info := whatlanggo.DetectWithOptions(text, d.opts)
	code := info.Lang.Iso6391()
	if info.Lang < 0 || code == "" {
		return "", fmt.Errorf("%w: %.40q", ErrUndetermined, text)
	}
	return code, nil
}
