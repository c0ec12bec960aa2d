package main

import (
	"context"
	"flag"
	"log/slog"

	"github.com/chaz8081/heritage-collector/internal/config"
	"github.com/chaz8081/heritage-collector/internal/server"
	"github.com/chaz8081/heritage-collector/internal/story"
)

func runServe(ctx context.Context, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	addr := fs.String("addr", cfg.Server.Addr, "listen address")
	fs.Parse(args)

	printBanner(cfg)

	p, closeFn, err := buildPipeline(ctx, cfg, func(e story.Event) {
		if e.Err != nil {
			slog.Warn("[server] stage event", "stage", e.Stage, "terminal", e.Terminal, "error", e.Err)
		}
	})
	if err != nil {
		return err
	}
	defer closeFn()

	return server.New(p, cfg.Server.MaxUploadMB).ListenAndServe(ctx, *addr)
}
