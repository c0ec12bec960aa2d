package dataset

import (
	"fmt"
	"strings"
	"time"
)

// Unavailable marks a field whose stage failed, so it is never mistaken
// for a real (empty) value.
const Unavailable = "[unavailable]"

// Record is the persisted metadata, transcript and translation of one
// submission. Transcript and Translation are set together or not at all.
type Record struct {
	Name             string
	SelectedLanguage string
	FreeText         string
	Transcript       string
	DetectedLanguage string
	Translation      string
	CreatedAt        time.Time
}

// Field labels in their fixed on-disk order.
const (
	labelName        = "Name"
	labelLanguage    = "Selected Language"
	labelStory       = "Story Text"
	labelTranscript  = "Transcription"
	labelDetected    = "Detected Language"
	labelTranslation = "Translated to English"
	labelCreatedAt   = "Created At"
)

var valueEscaper = strings.NewReplacer(`\`, `\\`, "\r\n", `\n`, "\n", `\n`, "\r", `\n`)

// Encode renders the record, one "Label: value" line per field.
func (r Record) Encode() string {
	var b strings.Builder
	line := func(label, value string) {
		fmt.Fprintf(&b, "%s: %s\n", label, valueEscaper.Replace(value))
	}
	line(labelName, r.Name)
	line(labelLanguage, r.SelectedLanguage)
	line(labelStory, strings.TrimSpace(r.FreeText))
	line(labelTranscript, r.Transcript)
	line(labelDetected, r.DetectedLanguage)
	line(labelTranslation, r.Translation)
	line(labelCreatedAt, r.CreatedAt.Format(time.RFC3339))
	return b.String()
}

// ParseRecord is the inverse of Encode.
func ParseRecord(s string) (Record, error) {
	var r Record
	for i, line := range strings.Split(strings.TrimRight(s, "\n"), "\n") {
		label, value, ok := strings.Cut(line, ": ")
		if !ok {
			// A field with an empty value still carries the separator, minus
			// any trailing space an editor may have stripped.
			label, ok = strings.CutSuffix(line, ":")
			if !ok {
				return Record{}, fmt.Errorf("dataset: record line %d: missing separator", i+1)
			}
		}
		value = unescape(value)

		switch label {
		case labelName:
			r.Name = value
		case labelLanguage:
			r.SelectedLanguage = value
		case labelStory:
			r.FreeText = value
		case labelTranscript:
			r.Transcript = value
		case labelDetected:
			r.DetectedLanguage = value
		case labelTranslation:
			r.Translation = value
		case labelCreatedAt:
			t, err := time.Parse(time.RFC3339, value)
			if err != nil {
				return Record{}, fmt.Errorf("dataset: record created at: %w", err)
			}
			r.CreatedAt = t
		default:
			return Record{}, fmt.Errorf("dataset: record line %d: unknown field %q", i+1, label)
		}
	}
	return r, nil
}

func unescape(s string) string {
	if !strings.Contains(s, `\`) {
		return s
	}
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] == '\\' && i+1 < len(s) {
			switch s[i+1] {
			case 'n':
				b.WriteByte('\n')
				i++
				continue
			case '\\':
				b.WriteByte('\\')
				i++
				continue
			}
		}
		b.WriteByte(s[i])
	}
	return b.String()
}
