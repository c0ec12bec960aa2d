package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/chaz8081/heritage-collector/internal/config"
	"github.com/chaz8081/heritage-collector/internal/dataset"
	"github.com/chaz8081/heritage-collector/internal/langdetect"
	"github.com/chaz8081/heritage-collector/internal/story"
	"github.com/chaz8081/heritage-collector/internal/transcribe"
	"github.com/chaz8081/heritage-collector/internal/translate"
	"github.com/chaz8081/heritage-collector/internal/upload"
)

// buildPipeline constructs every collaborator once. The returned close
// function releases the transcription model.
func buildPipeline(ctx context.Context, cfg *config.Config, notify func(story.Event)) (*story.Pipeline, func(), error) {
	slog.Info("[main] loading transcriber", "backend", cfg.Transcribe.Backend)
	start := time.Now()
	tr, err := transcribe.New(&cfg.Transcribe)
	if err != nil {
		if cfg.Transcribe.Backend == "whisper" {
			return nil, nil, fmt.Errorf("%w\n\nCheck that the model file exists at: %s\nRun 'heritage-collector model' to download it", err, cfg.Transcribe.ModelPath)
		}
		return nil, nil, err
	}
	slog.Info("[main] transcriber ready", "elapsed", time.Since(start).Round(time.Millisecond))

	det, err := langdetect.New(cfg.Detect.Whitelist)
	if err != nil {
		tr.Close()
		return nil, nil, err
	}

	translator, err := translate.NewService(&cfg.Translate, det)
	if err != nil {
		tr.Close()
		return nil, nil, err
	}

	up, err := upload.New(ctx, &cfg.Upload)
	if err != nil {
		tr.Close()
		if upload.IsAuth(err) {
			return nil, nil, fmt.Errorf("%w\n\nRemote upload needs valid credentials; set upload.backend to \"none\" to collect locally only", err)
		}
		return nil, nil, err
	}

	p := story.New(story.Services{
		Store:          dataset.New(cfg.DatasetDir),
		Transcriber:    tr,
		Detector:       det,
		Translator:     translator,
		Uploader:       up,
		Folder:         cfg.Upload.Folder,
		TargetLanguage: cfg.Translate.Target,
		Notify:         notify,
	})
	return p, func() { tr.Close() }, nil
}

// printEvent reports each stage inline as it happens.
func printEvent(e story.Event) {
	switch {
	case e.Err == nil:
		fmt.Printf("  ✓ %s\n", e.Stage)
	case e.Terminal:
		fmt.Printf("  ✗ %s: %v\n", e.Stage, e.Err)
	default:
		fmt.Printf("  ! %s unavailable: %v\n", e.Stage, e.Err)
	}
}

// resultText is what a finished recording hands to the desktop: the
// translation when there is one, otherwise the transcript.
func resultText(rec dataset.Record) string {
	if rec.Translation != "" && rec.Translation != dataset.Unavailable {
		return rec.Translation
	}
	return rec.Transcript
}

func printOutcome(out *story.Outcome) {
	if out == nil || out.Record.CreatedAt.IsZero() {
		return
	}
	fmt.Println()
	fmt.Printf("  Record:      %s\n", out.Paths.Record)
	if out.AudioSaved {
		fmt.Printf("  Audio:       %s\n", out.Paths.Audio)
	}
	if out.Record.Transcript != "" {
		fmt.Printf("  Transcript:  %s\n", out.Record.Transcript)
		fmt.Printf("  Language:    %s\n", out.Record.DetectedLanguage)
		fmt.Printf("  English:     %s\n", out.Record.Translation)
	}
	for _, r := range out.Remote {
		fmt.Printf("  Uploaded:    %s -> %s\n", r.LocalPath, r.RemoteID)
	}
}
