package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/tmackey/docsection/internal/api"
	"github.com/tmackey/docsection/internal/config"
	"github.com/tmackey/docsection/internal/infer"
	"github.com/tmackey/docsection/internal/pipeline"
)

func main() {
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Outline inference is optional. Without a key, documents that need an
	// inferred outline fall back to a single full-document section.
	var ai *infer.Client
	if cfg.AnthropicAPIKey != "" {
		ai = infer.NewClient(cfg.AnthropicAPIKey, cfg.AnthropicModel)
	} else {
		log.Warn("ANTHROPIC_API_KEY not set, outline inference disabled")
	}

	orch := pipeline.NewOrchestrator(cfg, ai, log)
	orch.Start(ctx)

	srv := api.NewServer(orch, log, cfg)

	httpServer := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      srv,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown.
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Info("shutting down...")

		orch.Stop()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		httpServer.Shutdown(shutdownCtx)

		if ai != nil {
			ai.Close()
		}
	}()

	log.Info("starting docsection", "port", cfg.Port)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
}
