package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/chaz8081/heritage-collector/internal/config"
	"github.com/chaz8081/heritage-collector/internal/server"
	"github.com/chaz8081/heritage-collector/internal/story"
)

func runSubmit(ctx context.Context, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("submit", flag.ExitOnError)
	file := fs.String("file", "", "audio file to submit (wav, mp3 or m4a)")
	name := fs.String("name", "", "storyteller name")
	lang := fs.String("language", "Other", "selected language ("+strings.Join(server.Languages, ", ")+")")
	text := fs.String("story", "", "story text")
	fs.Parse(args)

	if *file == "" && strings.TrimSpace(*text) == "" {
		return errors.New("submit: -file or -story is required")
	}
	if !server.ValidLanguage(*lang) {
		return fmt.Errorf("submit: -language must be one of %s", strings.Join(server.Languages, ", "))
	}

	sub := story.Submission{Name: *name, Language: *lang, FreeText: *text}
	if *file != "" {
		f, err := os.Open(*file)
		if err != nil {
			return fmt.Errorf("submit: %w", err)
		}
		defer f.Close()
		sub.Upload = &story.Upload{Name: filepath.Base(*file), Data: f}
	}

	printBanner(cfg)

	p, closeFn, err := buildPipeline(ctx, cfg, printEvent)
	if err != nil {
		return err
	}
	defer closeFn()

	out, err := p.Submit(ctx, sub)
	printOutcome(out)
	return err
}
