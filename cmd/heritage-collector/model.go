package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/chaz8081/heritage-collector/internal/config"
	"github.com/chaz8081/heritage-collector/internal/models"
)

func runModel(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("model", flag.ExitOnError)
	name := fs.String("name", models.DefaultModel, "model to download (tiny, base, small)")
	dir := fs.String("dir", config.DefaultModelsDir(), "destination directory")
	fs.Parse(args)

	m, err := models.Lookup(*name)
	if err != nil {
		return err
	}

	fmt.Println("=== Model Download ===")
	path, err := models.Download(ctx, m, *dir, os.Stdout)
	if err != nil {
		return fmt.Errorf("%s download failed: %w", m.Name, err)
	}
	fmt.Printf("  Set transcribe.model_path to %s\n", path)
	return nil
}
