package main

import (
	"context"
	"fmt"
	"io"

	"github.com/dgallion1/syllabook/internal/config"
	"github.com/dgallion1/syllabook/internal/generate"
	"github.com/dgallion1/syllabook/internal/pipeline"
)

func newLLMClient(cfg config.Config) *generate.OpenRouterClient {
	return generate.NewOpenRouterClient(generate.ClientConfig{
		APIKey:  cfg.OpenRouterAPIKey,
		URL:     cfg.OpenRouterURL,
		Model:   cfg.OpenRouterModel,
		Referer: cfg.OpenRouterReferer,
		Timeout: cfg.GenerationTimeout,
	})
}

// runBuild converts one syllabus into one book on disk.
func runBuild(ctx context.Context, cfg config.Config, args []string, stdout, stderr io.Writer) error {
	f, err := parseBuildFlags(args, stderr)
	if err != nil {
		return err
	}
	f.apply(&cfg)
	log := newLogger(stderr, f.common.verbose)

	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", "error", err)
		return err
	}

	client := newLLMClient(cfg)
	defer client.Close()

	runner := pipeline.NewRunner(cfg, client, log)
	runner.OnPhase = func(p pipeline.Phase) {
		log.Info("phase", "phase", p)
	}
	runner.Progress = func(done, total int) {
		log.Debug("topic generated", "done", done, "total", total)
	}

	res, err := runner.Run(ctx, cfg.SyllabusPath, cfg.OutputPath)
	if err != nil {
		log.Error("build failed", "syllabus", cfg.SyllabusPath, "error", err)
		return err
	}
	log.Info("book written",
		"path", res.OutputPath,
		"topics", res.Topics,
		"duration_ms", res.Duration.Milliseconds(),
	)
	fmt.Fprintln(stdout, res.OutputPath)
	return nil
}
