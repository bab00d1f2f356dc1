package generate

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/dgallion1/syllabook/internal/chunker"
	"github.com/dgallion1/syllabook/internal/metrics"
	"github.com/dgallion1/syllabook/internal/outline"
)

// ErrGeneration matches every *GenerationError.
var ErrGeneration = errors.New("generation failed")

// GenerationError reports the topic and part whose generation failed.
type GenerationError struct {
	Chapter string
	Topic   string
	Part    Part
	Err     error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("generate %s for %q / %q: %v", e.Part, e.Chapter, e.Topic, e.Err)
}

func (e *GenerationError) Unwrap() []error { return []error{ErrGeneration, e.Err} }

// GeneratedSection is the written content for one topic.
type GeneratedSection struct {
	Introduction string   `json:"introduction"`
	Body         string   `json:"body"`
	Questions    []string `json:"questions"`
}

// Options tunes a Generator.
type Options struct {
	MaxRetries    int                     // Attempts per call; <= 0 means DefaultMaxRetries
	ContextTokens int                     // Budget for the syllabus context in each prompt
	Backoff       func(int) time.Duration // Defaults to Backoff
}

// Generator writes topic sections through a Client. It holds no mutable
// state, so one Generator can serve concurrent GenerateSection calls.
type Generator struct {
	client    Client
	bookTitle string
	context   string
	opts      Options
	log       *slog.Logger
}

// NewGenerator creates a generator. syllabusText is trimmed to
// opts.ContextTokens once and shared by every prompt.
func NewGenerator(client Client, bookTitle, syllabusText string, opts Options, log *slog.Logger) *Generator {
	if opts.MaxRetries <= 0 {
		opts.MaxRetries = DefaultMaxRetries
	}
	if opts.Backoff == nil {
		opts.Backoff = Backoff
	}
	if log == nil {
		log = slog.Default()
	}
	return &Generator{
		client:    client,
		bookTitle: bookTitle,
		context:   chunker.Truncate(syllabusText, opts.ContextTokens),
		opts:      opts,
		log:       log,
	}
}

// GenerateSection makes the introduction, body and review question calls for
// one topic, in that order. Any failed part fails the whole topic.
func (g *Generator) GenerateSection(ctx context.Context, chapter outline.Chapter, topic outline.Topic) (GeneratedSection, error) {
	in := PromptInput{
		BookTitle: g.bookTitle,
		Chapter:   chapter.Title,
		Topic:     topic.Title,
		Snippet:   topic.Snippet,
		Syllabus:  g.context,
	}

	var sec GeneratedSection
	for _, part := range Parts {
		text, err := g.generatePart(ctx, part, in)
		if err != nil {
			return GeneratedSection{}, &GenerationError{Chapter: chapter.Title, Topic: topic.Title, Part: part, Err: err}
		}
		switch part {
		case PartIntroduction:
			sec.Introduction = text
		case PartBody:
			sec.Body = text
		case PartQuestions:
			sec.Questions = ParseQuestions(text)
		}
	}

	g.log.Debug("section generated",
		"chapter", chapter.Title,
		"topic", topic.Title,
		"questions", len(sec.Questions),
	)
	return sec, nil
}

func (g *Generator) generatePart(ctx context.Context, part Part, in PromptInput) (string, error) {
	prompt := BuildPrompt(part, in)
	raw, err := g.callWithRetry(ctx, part, in.Topic, prompt)
	if err != nil {
		return "", err
	}
	text := CleanText(raw)
	if err := ValidatePart(part, text); err != nil {
		metrics.GenerationCallsTotal.WithLabelValues(string(part), "malformed").Inc()
		return "", fmt.Errorf("%w: %s", err, truncate(raw, 120))
	}
	return text, nil
}

func (g *Generator) callWithRetry(ctx context.Context, part Part, topic, prompt string) (string, error) {
	var lastErr error
	for attempt := range g.opts.MaxRetries {
		if attempt > 0 {
			wait := g.opts.Backoff(attempt - 1)
			g.log.Warn("retrying generation call",
				"part", part,
				"topic", topic,
				"attempt", attempt+1,
				"wait", wait,
				"error", lastErr,
			)
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(wait):
			}
		}

		start := time.Now()
		text, err := g.client.Generate(WithPart(ctx, part), prompt)
		metrics.GenerationCallDuration.WithLabelValues(string(part)).Observe(time.Since(start).Seconds())
		if err == nil {
			metrics.GenerationCallsTotal.WithLabelValues(string(part), "ok").Inc()
			return text, nil
		}
		lastErr = err
		if !IsRetryable(err) {
			metrics.GenerationCallsTotal.WithLabelValues(string(part), "failed").Inc()
			return "", err
		}
		metrics.GenerationCallsTotal.WithLabelValues(string(part), "retryable").Inc()
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
	}
	return "", fmt.Errorf("after %d attempts: %w", g.opts.MaxRetries, lastErr)
}
