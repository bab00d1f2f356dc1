package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/dgallion1/syllabook/internal/book"
	"github.com/dgallion1/syllabook/internal/config"
	"github.com/dgallion1/syllabook/internal/generate"
	"github.com/dgallion1/syllabook/internal/metrics"
	"github.com/dgallion1/syllabook/internal/outline"
	"github.com/dgallion1/syllabook/internal/syllabus"
)

// Phase names a pipeline stage.
type Phase string

const (
	PhaseExtracting Phase = "extracting"
	PhaseGenerating Phase = "generating"
	PhaseAssembling Phase = "assembling"
)

// Result describes a finished run.
type Result struct {
	Outline    outline.Outline
	Document   *book.Document
	OutputPath string
	Topics     int
	Duration   time.Duration
}

// Runner turns one syllabus file into one book: extract, outline, generate
// every topic, assemble, write. Nothing is written unless every step
// succeeds.
type Runner struct {
	extractor   *syllabus.Extractor
	client      generate.Client
	genOpts     generate.Options
	concurrency int
	log         *slog.Logger

	// Title overrides the title derived from the syllabus file name.
	Title string
	// Progress, when set, is called after each topic completes.
	Progress func(done, total int)
	// OnPhase, when set, is called as each stage starts.
	OnPhase func(Phase)
}

// NewRunner builds a runner from configuration.
func NewRunner(cfg config.Config, client generate.Client, log *slog.Logger) *Runner {
	if log == nil {
		log = slog.Default()
	}
	concurrency := cfg.Concurrency
	if concurrency <= 0 {
		concurrency = 1
	}
	return &Runner{
		extractor: &syllabus.Extractor{FallbackPdftotext: cfg.PDFFallbackPdftotext},
		client:    client,
		genOpts: generate.Options{
			MaxRetries:    cfg.MaxRetries,
			ContextTokens: cfg.ContextTokens,
		},
		concurrency: concurrency,
		log:         log,
		Title:       cfg.Title,
	}
}

// Run executes the pipeline. An empty outputPath skips the final write;
// the assembled document is still returned.
func (r *Runner) Run(ctx context.Context, syllabusPath, outputPath string) (*Result, error) {
	start := time.Now()
	res, err := r.run(ctx, syllabusPath, outputPath)
	if err != nil {
		metrics.BooksTotal.WithLabelValues("failed").Inc()
		return nil, err
	}
	metrics.BooksTotal.WithLabelValues("completed").Inc()
	res.Duration = time.Since(start)
	r.log.Info("book complete",
		"output", res.OutputPath,
		"chapters", len(res.Outline.Chapters),
		"topics", res.Topics,
		"duration_ms", res.Duration.Milliseconds(),
	)
	return res, nil
}

func (r *Runner) run(ctx context.Context, syllabusPath, outputPath string) (*Result, error) {
	r.phase(PhaseExtracting)
	segments, err := r.extractor.Extract(ctx, syllabusPath)
	if err != nil {
		return nil, err
	}

	o := outline.Build(segments)
	o.Title = r.Title
	if o.Title == "" {
		o.Title = outline.TitleFromFilename(syllabusPath)
	}
	r.log.Info("outline built",
		"title", o.Title,
		"segments", len(segments),
		"chapters", len(o.Chapters),
		"topics", o.TopicCount(),
	)

	r.phase(PhaseGenerating)
	gen := generate.NewGenerator(r.client, o.Title, strings.Join(segments, "\n"), r.genOpts, r.log)
	sections, err := r.generateAll(ctx, gen, o)
	if err != nil {
		return nil, err
	}

	r.phase(PhaseAssembling)
	doc, err := book.Assemble(o, sections)
	if err != nil {
		return nil, fmt.Errorf("assemble: %w", err)
	}
	if outputPath != "" {
		if err := doc.WriteFile(outputPath); err != nil {
			return nil, fmt.Errorf("write book: %w", err)
		}
	}

	return &Result{
		Outline:    o,
		Document:   doc,
		OutputPath: outputPath,
		Topics:     len(sections),
	}, nil
}

// generateAll runs one task per topic with at most r.concurrency in flight.
// The first failure cancels the remaining tasks and is the error returned.
func (r *Runner) generateAll(ctx context.Context, gen *generate.Generator, o outline.Outline) (map[outline.TopicKey]generate.GeneratedSection, error) {
	keys := o.Keys()
	total := len(keys)
	sections := make(map[outline.TopicKey]generate.GeneratedSection, total)
	if total == 0 {
		r.progress(0, 0)
		return sections, nil
	}

	var (
		mu   sync.Mutex
		done int
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.concurrency)
	for _, key := range keys {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			ch, topic, _ := o.Lookup(key)
			sec, err := gen.GenerateSection(gctx, ch, topic)
			if err != nil {
				r.log.Error("topic generation failed",
					"chapter", ch.Title,
					"topic", topic.Title,
					"error", err,
				)
				return err
			}
			metrics.TopicsGeneratedTotal.Inc()

			mu.Lock()
			defer mu.Unlock()
			sections[key] = sec
			done++
			r.progress(done, total)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return sections, nil
}

func (r *Runner) phase(p Phase) {
	r.log.Debug("phase", "phase", p)
	if r.OnPhase != nil {
		r.OnPhase(p)
	}
}

func (r *Runner) progress(done, total int) {
	if r.Progress != nil {
		r.Progress(done, total)
	}
}
