// Package story runs one submission through the collection pipeline:
// audio source, local persistence, transcription, language detection,
// translation and remote upload.
package story

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/chaz8081/heritage-collector/internal/audio"
	"github.com/chaz8081/heritage-collector/internal/dataset"
	"github.com/chaz8081/heritage-collector/internal/transcribe"
	"github.com/chaz8081/heritage-collector/internal/translate"
	"github.com/chaz8081/heritage-collector/internal/upload"
)

// Detector identifies the language of a transcript.
type Detector interface {
	Detect(text string) (string, error)
}

// Translator converts a transcript into the target language.
type Translator interface {
	Translate(ctx context.Context, text, source, target string) translate.Result
}

// Services holds the collaborators shared by every submission. It is built
// once at process start.
type Services struct {
	Store       *dataset.Store
	Transcriber transcribe.Transcriber
	Detector    Detector
	Translator  Translator
	Uploader    upload.Uploader // nil disables the remote stage
	Folder      string
	// TargetLanguage is the ISO 639-1 code translations are produced in.
	TargetLanguage string
	// Load decodes uploads. Defaults to audio.Load.
	Load func(name string, r io.ReadSeeker) (audio.Buffer, error)
	// Notify, if set, receives every event as soon as it happens.
	Notify func(Event)
}

// Upload is an audio file sent with a submission.
type Upload struct {
	Name string
	Data io.ReadSeeker
}

// Recording is the raw output of a live capture session.
type Recording struct {
	Frames     [][]float32
	SampleRate uint32
	Channels   uint32
}

// Submission is one user entry. At most one of Upload and Recording may be
// set; with neither, the submission is text only.
type Submission struct {
	Name      string
	Language  string
	FreeText  string
	Upload    *Upload
	Recording *Recording
}

// Outcome describes what a submission produced.
type Outcome struct {
	ID                string
	Stage             Stage
	Paths             dataset.Paths
	AudioSaved        bool
	Record            dataset.Record
	TranslatedBy      string
	TranslationStatus translate.Status
	Remote            []upload.Result
	Events            []Event
}

// Pipeline runs submissions. Submissions are independent and are not
// coordinated against each other.
type Pipeline struct {
	svc Services
	now func() time.Time
}

// New returns a Pipeline over svc.
func New(svc Services) *Pipeline {
	if svc.Load == nil {
		svc.Load = audio.Load
	}
	if svc.TargetLanguage == "" {
		svc.TargetLanguage = "en"
	}
	return &Pipeline{svc: svc, now: time.Now}
}

// run tracks one submission.
type run struct {
	p   *Pipeline
	out *Outcome
}

func (r *run) enter(s Stage) {
	r.out.Stage = s
	r.emit(Event{Stage: s})
	slog.Debug("[story] stage", "id", r.out.ID, "stage", s)
}

// degrade records a non-terminal failure; the submission continues.
func (r *run) degrade(s Stage, err error) {
	r.emit(Event{Stage: s, Err: err})
	slog.Warn("[story] stage unavailable", "id", r.out.ID, "stage", s, "error", err)
}

// fail ends the submission in stage s. Files already written stay.
func (r *run) fail(s Stage, err error) (*Outcome, error) {
	r.emit(Event{Stage: s, Err: err, Terminal: true})
	r.out.Stage = Failed
	slog.Error("[story] submission failed", "id", r.out.ID, "stage", s, "error", err)
	return r.out, &StageError{Stage: s, Err: err}
}

func (r *run) emit(e Event) {
	r.out.Events = append(r.out.Events, e)
	if r.p.svc.Notify != nil {
		r.p.svc.Notify(e)
	}
}

// Submit runs sub through the pipeline. The returned Outcome is non-nil
// even on error; a terminal failure is a *StageError.
func (p *Pipeline) Submit(ctx context.Context, sub Submission) (*Outcome, error) {
	r := &run{p: p, out: &Outcome{ID: uuid.NewString(), Stage: Idle}}
	slog.Info("[story] submission received", "id", r.out.ID,
		"language", sub.Language, "upload", sub.Upload != nil, "recording", sub.Recording != nil)

	rec := dataset.Record{
		Name:             strings.TrimSpace(sub.Name),
		SelectedLanguage: sub.Language,
		FreeText:         sub.FreeText,
		CreatedAt:        p.now(),
	}

	if sub.Upload != nil && sub.Recording != nil {
		return r.fail(Idle, fmt.Errorf("%w: submission has both an upload and a recording", ErrFormat))
	}

	var (
		buf        audio.Buffer
		hasAudio   bool
		uploadName string
	)
	switch {
	case sub.Recording != nil:
		r.enter(Capturing)
		b, err := audio.Capture(sub.Recording.Frames, sub.Recording.SampleRate, sub.Recording.Channels)
		if err != nil {
			return r.fail(Capturing, fmt.Errorf("%w: %w", ErrCapture, err))
		}
		buf, hasAudio = b, true

	case sub.Upload != nil:
		r.enter(Uploading)
		if sub.Upload.Data == nil {
			return r.fail(Uploading, fmt.Errorf("%w: empty upload", ErrFormat))
		}
		b, err := p.svc.Load(sub.Upload.Name, sub.Upload.Data)
		if err != nil {
			return r.fail(Uploading, fmt.Errorf("%w: %w", ErrFormat, err))
		}
		if _, err := sub.Upload.Data.Seek(0, io.SeekStart); err != nil {
			return r.fail(Uploading, fmt.Errorf("%w: rewind upload: %w", ErrFormat, err))
		}
		buf, hasAudio, uploadName = b, true, sub.Upload.Name
	}

	paths, err := p.svc.Store.Reserve(uploadName)
	if err != nil {
		return r.fail(Persisted, fmt.Errorf("%w: %w", ErrPersist, err))
	}
	r.out.Paths = paths

	if hasAudio {
		if sub.Upload != nil {
			err = p.svc.Store.CopyUpload(sub.Upload.Data, paths.Audio)
		} else {
			err = p.svc.Store.SaveAudio(buf, paths.Audio)
		}
		if err != nil {
			return r.fail(Persisted, fmt.Errorf("%w: %w", ErrPersist, err))
		}
		r.out.AudioSaved = true
		r.enter(Persisted)

		text, err := transcribe.Transcribe(ctx, p.svc.Transcriber, buf.Clone())
		if err != nil {
			return r.fail(Transcribed, fmt.Errorf("%w: %w", ErrTranscription, err))
		}
		rec.Transcript = strings.TrimSpace(text)
		r.enter(Transcribed)

		source := r.detect(rec.Transcript)
		rec.DetectedLanguage = source
		if source == "" {
			rec.DetectedLanguage = dataset.Unavailable
		}
		r.enter(LanguageDetected)

		// Transcript and Translation are populated together or not at all.
		if rec.Transcript != "" {
			rec.Translation = r.translate(ctx, rec.Transcript, source)
		}
		r.enter(Translated)
	}

	if err := p.svc.Store.WriteRecord(rec, paths.Record); err != nil {
		return r.fail(Persisted, fmt.Errorf("%w: %w", ErrPersist, err))
	}
	r.out.Record = rec
	if !hasAudio {
		r.enter(Persisted)
	}

	if p.svc.Uploader != nil {
		files := []string{paths.Record}
		if hasAudio {
			files = append(files, paths.Audio)
		}
		for _, f := range files {
			id, err := p.svc.Uploader.Upload(ctx, f, p.svc.Folder)
			if err != nil {
				return r.fail(RemoteUploaded, fmt.Errorf("%w: %w", ErrUpload, err))
			}
			r.out.Remote = append(r.out.Remote, upload.Result{LocalPath: f, RemoteID: id})
		}
		r.enter(RemoteUploaded)
	}

	r.enter(Done)
	slog.Info("[story] submission complete", "id", r.out.ID, "record", paths.Record, "remote", len(r.out.Remote))
	return r.out, nil
}

// detect returns the transcript's language code, or "" when it cannot be
// determined.
func (r *run) detect(text string) string {
	if text == "" {
		r.degrade(LanguageDetected, fmt.Errorf("%w: empty transcript", ErrDetection))
		return ""
	}
	if r.p.svc.Detector == nil {
		r.degrade(LanguageDetected, fmt.Errorf("%w: no detector configured", ErrDetection))
		return ""
	}
	code, err := r.p.svc.Detector.Detect(text)
	if err != nil {
		r.degrade(LanguageDetected, fmt.Errorf("%w: %w", ErrDetection, err))
		return ""
	}
	return code
}

// translate returns the translation, or dataset.Unavailable.
func (r *run) translate(ctx context.Context, text, source string) string {
	if r.p.svc.Translator == nil {
		r.out.TranslationStatus = translate.StatusUnavailable
		r.degrade(Translated, fmt.Errorf("%w: no translator configured", ErrTranslation))
		return dataset.Unavailable
	}

	res := r.p.svc.Translator.Translate(ctx, text, source, r.p.svc.TargetLanguage)
	r.out.TranslationStatus = res.Status
	r.out.TranslatedBy = res.Provider
	if !res.OK() {
		cause := res.Err
		if cause == nil {
			cause = errors.New(string(res.Status))
		}
		r.degrade(Translated, fmt.Errorf("%w: %w", ErrTranslation, cause))
		return dataset.Unavailable
	}
	return res.Text
}
