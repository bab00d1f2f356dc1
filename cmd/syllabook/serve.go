package main

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/dgallion1/syllabook/internal/api"
	"github.com/dgallion1/syllabook/internal/config"
	"github.com/dgallion1/syllabook/internal/pipeline"
)

// runServe runs the HTTP API and its job workers until ctx is canceled.
func runServe(ctx context.Context, cfg config.Config, args []string, stdout, stderr io.Writer) error {
	f, err := parseServeFlags(args, stderr)
	if err != nil {
		return err
	}
	f.apply(&cfg)
	log := newLogger(stdout, f.common.verbose)

	if err := cfg.ValidateServe(); err != nil {
		log.Error("invalid configuration", "error", err)
		return err
	}

	client := newLLMClient(cfg)
	defer client.Close()

	orch := pipeline.NewOrchestrator(cfg, client, log)
	orch.Start(ctx)

	httpServer := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      api.NewServer(orch, client, log, cfg),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown.
	done := make(chan struct{})
	go func() {
		defer close(done)
		<-ctx.Done()
		log.Info("shutting down...")

		// Stop accepting uploads before the queue closes.
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			log.Warn("http shutdown", "error", err)
		}

		orch.Stop()
	}()

	log.Info("starting syllabook", "port", cfg.Port, "workers", cfg.WorkerCount, "model", client.Model())
	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Error("server error", "error", err)
		orch.Stop()
		return err
	}
	<-done
	return nil
}
