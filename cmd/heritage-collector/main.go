package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/chaz8081/heritage-collector/internal/config"
)

const usage = `Usage: heritage-collector [-config path] <command> [flags]

Commands:
  serve    run the HTTP submission API
  submit   submit an audio file and/or story text
  record   record a story from the microphone (hotkey start/stop)
  model    download a whisper model
  init     write the default config file
`

func main() {
	flag.Usage = func() { fmt.Fprint(os.Stderr, usage) }
	configPath := flag.String("config", "", "path to config file (default: ~/.config/heritage-collector/config.yaml)")
	flag.Parse()

	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(2)
	}
	cmd, args := flag.Arg(0), flag.Args()[1:]

	config.LoadDotEnv()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "config validation: %v\n", err)
		os.Exit(1)
	}
	setupLogging(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	switch cmd {
	case "serve":
		err = runServe(ctx, cfg, args)
	case "submit":
		err = runSubmit(ctx, cfg, args)
	case "record":
		err = runRecord(ctx, cfg, args)
	case "model":
		err = runModel(ctx, args)
	case "init":
		err = runInit()
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n", cmd)
		flag.Usage()
		os.Exit(2)
	}
	if err != nil {
		slog.Error("command failed", "command", cmd, "error", err)
		stop()
		os.Exit(1)
	}
}

func setupLogging(level string) {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: config.ParseLogLevel(level),
	})
	slog.SetDefault(slog.New(handler))
}

// loadConfig loads the config from the specified path, or falls back to
// the default config path, or uses built-in defaults.
func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.Load(path)
	}

	defaultPath := config.DefaultConfigPath()
	if _, err := os.Stat(defaultPath); err == nil {
		cfg, err := config.Load(defaultPath)
		if err != nil {
			return nil, fmt.Errorf("loading %s: %w", defaultPath, err)
		}
		return cfg, nil
	}

	cfg := config.Default()
	cfg.ApplyEnv()
	return cfg, nil
}

func runInit() error {
	path, err := config.WriteDefault()
	if err != nil {
		return err
	}
	if path == "" {
		fmt.Printf("Config already exists at %s\n", config.DefaultConfigPath())
		return nil
	}
	fmt.Printf("Wrote default config to %s\n", path)
	return nil
}

// printBanner displays the startup configuration summary.
func printBanner(cfg *config.Config) {
	translators := cfg.Translate.Primary
	if cfg.Translate.Secondary != "" && cfg.Translate.Secondary != "none" {
		translators += " -> " + cfg.Translate.Secondary
	}
	transcriber := cfg.Transcribe.Backend
	if cfg.Transcribe.Backend == "whisper" {
		transcriber += " (" + cfg.Transcribe.ModelPath + ")"
	}

	fmt.Println("=== heritage-collector ===")
	fmt.Printf("  Dataset:    %s\n", cfg.DatasetDir)
	fmt.Printf("  Transcribe: %s\n", transcriber)
	fmt.Printf("  Translate:  %s (to %s)\n", translators, cfg.Translate.Target)
	fmt.Printf("  Upload:     %s\n", uploadSummary(cfg))
	fmt.Printf("  Hotkey:     %s (%s mode)\n", strings.Join(cfg.Hotkey.Keys, "+"), cfg.Hotkey.Mode)
	fmt.Printf("  Audio:      %dHz, %dch\n", cfg.Audio.SampleRate, cfg.Audio.Channels)
	fmt.Printf("  Log:        %s\n", cfg.LogLevel)
	fmt.Println("==========================")
}

func uploadSummary(cfg *config.Config) string {
	switch cfg.Upload.Backend {
	case "drive":
		return "drive (folder " + cfg.Upload.Folder + ")"
	case "minio":
		dest := cfg.Upload.MinIO.Bucket
		if cfg.Upload.Folder != "" {
			dest += "/" + cfg.Upload.Folder
		}
		return "minio " + cfg.Upload.MinIO.Endpoint + " (" + dest + ")"
	default:
		return "disabled"
	}
}
