package internal

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/starford/ansuz/internal/docservice"
	"github.com/starford/ansuz/internal/index"
	"github.com/starford/ansuz/internal/mcpserver"
	"github.com/starford/ansuz/internal/render"
	"github.com/starford/ansuz/internal/storage"
)

// Export performs a one-shot static site build: sync the index from the
// content tree, then render every page, tag listing, and the feed into
// the configured output directory.
func Export(ctx context.Context, cfg *Config) error {
	logger := newLogger(cfg)

	env, err := openDeps(cfg)
	if err != nil {
		return err
	}
	defer env.db.Close()

	if err := index.Sync(env.db, env.store, env.md, logger); err != nil {
		return fmt.Errorf("export: sync: %w", err)
	}

	if err := os.MkdirAll(cfg.Export.OutputDir, 0o755); err != nil {
		return fmt.Errorf("export: create output dir: %w", err)
	}
	out, err := storage.NewFS(cfg.Export.OutputDir)
	if err != nil {
		return fmt.Errorf("export: init output: %w", err)
	}

	svc := docservice.NewService(env.db, env.site)
	site, err := svc.ExportSite(ctx)
	if err != nil {
		return fmt.Errorf("export: assemble site: %w", err)
	}

	exporter, err := render.NewExporter(out)
	if err != nil {
		return err
	}
	if err := exporter.Export(site); err != nil {
		return err
	}

	logger.Info("export: done",
		slog.Int("posts", len(site.Posts)),
		slog.Int("pages", len(site.Pages)),
		slog.Int("tags", len(site.TagPosts)),
		slog.String("output", cfg.Export.OutputDir))

	if problems, err := env.db.Problems(); err == nil && len(problems) > 0 {
		for _, p := range problems {
			logger.Warn("export: excluded document",
				slog.String("path", p.Path),
				slog.String("reason", p.Reason))
		}
	}
	return nil
}

// Check syncs the index and reports build diagnostics. It returns an
// error when any document was excluded, so CI can fail on broken content.
func Check(ctx context.Context, cfg *Config) error {
	logger := newLogger(cfg)

	env, err := openDeps(cfg)
	if err != nil {
		return err
	}
	defer env.db.Close()

	if err := index.Sync(env.db, env.store, env.md, logger); err != nil {
		return fmt.Errorf("check: sync: %w", err)
	}

	problems, err := env.db.Problems()
	if err != nil {
		return err
	}
	if len(problems) == 0 {
		logger.Info("check: content is clean")
		return nil
	}
	for _, p := range problems {
		logger.Error("check: problem",
			slog.String("path", p.Path),
			slog.String("reason", p.Reason))
	}
	return fmt.Errorf("check: %d document(s) excluded from the index", len(problems))
}

// ServeMCP syncs the index and serves the MCP tool surface on stdio.
func ServeMCP(ctx context.Context, cfg *Config) error {
	// MCP speaks JSON-RPC on stdout; logs must go to stderr.
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: cfg.App.LogLevel,
	}))

	env, err := openDeps(cfg)
	if err != nil {
		return err
	}
	defer env.db.Close()

	if err := index.Sync(env.db, env.store, env.md, logger); err != nil {
		logger.Warn("mcp: initial sync failed", slog.String("error", err.Error()))
	}

	svc := docservice.NewService(env.db, env.site)
	return mcpserver.New(svc).ServeStdio()
}

func newLogger(cfg *Config) *slog.Logger {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.App.LogLevel,
	}))
	slog.SetDefault(logger)
	return logger
}
