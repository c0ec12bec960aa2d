package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"strings"

	"github.com/chaz8081/heritage-collector/internal/audio"
	"github.com/chaz8081/heritage-collector/internal/config"
	"github.com/chaz8081/heritage-collector/internal/hotkey"
	"github.com/chaz8081/heritage-collector/internal/inject"
	"github.com/chaz8081/heritage-collector/internal/server"
	"github.com/chaz8081/heritage-collector/internal/story"
)

func runRecord(ctx context.Context, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("record", flag.ExitOnError)
	name := fs.String("name", "", "storyteller name")
	lang := fs.String("language", "Other", "selected language ("+strings.Join(server.Languages, ", ")+")")
	text := fs.String("story", "", "story text")
	fs.Parse(args)

	if !server.ValidLanguage(*lang) {
		return fmt.Errorf("record: -language must be one of %s", strings.Join(server.Languages, ", "))
	}

	injector, err := inject.NewInjector(cfg.Inject.Method)
	if err != nil {
		return err
	}

	printBanner(cfg)

	p, closeFn, err := buildPipeline(ctx, cfg, printEvent)
	if err != nil {
		return err
	}
	defer closeFn()

	recorder, err := audio.NewRecorder(cfg.Audio.SampleRate, cfg.Audio.Channels)
	if err != nil {
		return fmt.Errorf("%w\n\nEnsure microphone access is granted to this terminal", err)
	}
	defer recorder.Close()

	listener := hotkey.NewListener(cfg.Hotkey.Keys, cfg.Hotkey.Mode)
	go listener.Start()

	keys := strings.Join(cfg.Hotkey.Keys, "+")
	if cfg.Hotkey.Mode == "hold" {
		fmt.Printf("Hold %s while telling your story. Ctrl+C to quit.\n", keys)
	} else {
		fmt.Printf("Press %s to start recording and again to stop. Ctrl+C to quit.\n", keys)
	}

	var (
		frames   [][]float32
		startErr error
	)
	err = hotkey.Session(ctx, listener.Events(),
		func() {
			if startErr = recorder.Start(); startErr != nil {
				return
			}
			fmt.Println("Recording...")
		},
		func() {
			frames = recorder.Stop()
		},
	)
	if err != nil {
		if recorder.IsRecording() {
			recorder.Stop()
		}
		return err
	}
	if startErr != nil {
		return fmt.Errorf("record: start capture: %w", startErr)
	}

	out, err := p.Submit(ctx, story.Submission{
		Name:     *name,
		Language: *lang,
		FreeText: *text,
		Recording: &story.Recording{
			Frames:     frames,
			SampleRate: cfg.Audio.SampleRate,
			Channels:   cfg.Audio.Channels,
		},
	})
	printOutcome(out)
	if err != nil {
		return err
	}

	if injector.Enabled() {
		if err := injector.Inject(resultText(out.Record)); err != nil {
			slog.Warn("[main] could not deliver result", "method", cfg.Inject.Method, "error", err)
		}
	}
	return nil
}
