package story

import (
	"errors"
	"fmt"
)

// Stage is a step of the per-submission state machine:
//
//	Idle -> Capturing|Uploading -> Persisted -> Transcribed ->
//	LanguageDetected -> Translated -> RemoteUploaded -> Done
//
// Failed is reachable from any stage.
type Stage int

const (
	Idle Stage = iota
	Capturing
	Uploading
	Persisted
	Transcribed
	LanguageDetected
	Translated
	RemoteUploaded
	Done
	Failed
)

var stageNames = [...]string{
	Idle:             "idle",
	Capturing:        "capturing",
	Uploading:        "uploading",
	Persisted:        "persisted",
	Transcribed:      "transcribed",
	LanguageDetected: "language_detected",
	Translated:       "translated",
	RemoteUploaded:   "remote_uploaded",
	Done:             "done",
	Failed:           "failed",
}

func (s Stage) String() string {
	if s < 0 || int(s) >= len(stageNames) {
		return fmt.Sprintf("stage(%d)", int(s))
	}
	return stageNames[s]
}

// MarshalText lets stages appear by name in JSON responses.
func (s Stage) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Error taxonomy. Every StageError wraps exactly one of these.
var (
	ErrCapture       = errors.New("no audio captured")
	ErrFormat        = errors.New("unreadable audio upload")
	ErrPersist       = errors.New("could not save submission")
	ErrTranscription = errors.New("transcription failed")
	ErrDetection     = errors.New("language detection failed")
	ErrTranslation   = errors.New("translation unavailable")
	ErrUpload        = errors.New("remote upload failed")
)

// StageError reports the stage a submission failed in.
type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("story: %s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }

// Event is one stage transition or stage failure. Err is set for failures;
// Terminal marks failures that ended the submission.
type Event struct {
	Stage    Stage
	Err      error
	Terminal bool
}

func (e Event) String() string {
	switch {
	case e.Err == nil:
		return e.Stage.String()
	case e.Terminal:
		return fmt.Sprintf("%s failed: %v", e.Stage, e.Err)
	default:
		return fmt.Sprintf("%s unavailable: %v", e.Stage, e.Err)
	}
}
