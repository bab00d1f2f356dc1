package browser

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
)

// Capability is the browser driver the runner issues actions against.
type Capability interface {
	Navigate(ctx context.Context, url string) error
	Search(ctx context.Context, selector, query string) error
	Click(ctx context.Context, selector string) error
	FirstComment(ctx context.Context, selector string) (string, error)
	ExtractText(ctx context.Context, selector string) (string, error)
	WaitStable(ctx context.Context) error
	Close() error
}

var (
	// ErrStep matches every *StepError.
	ErrStep = errors.New("browser step failed")
	// ErrUnexpectedText means a text step did not contain its Expect value.
	ErrUnexpectedText = errors.New("unexpected step text")
	// ErrEmptyText means a text step found its element but no text.
	ErrEmptyText = errors.New("step returned no text")
)

// StepError reports which action stopped a run.
type StepError struct {
	Index int
	Kind  Kind
	Err   error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("step %d (%s): %v", e.Index+1, e.Kind, e.Err)
}

func (e *StepError) Unwrap() []error { return []error{ErrStep, e.Err} }

// StepResult records one completed action.
type StepResult struct {
	Index    int           `json:"index"`
	Kind     Kind          `json:"kind"`
	Text     string        `json:"text,omitempty"`
	Duration time.Duration `json:"duration"`
}

// Answer returns the text of the last text-producing step, or "".
func Answer(results []StepResult) string {
	for i := len(results) - 1; i >= 0; i-- {
		if results[i].Text != "" {
			return results[i].Text
		}
	}
	return ""
}

// Runner executes scripts one action at a time.
type Runner struct {
	cap         Capability
	stepTimeout time.Duration
	log         *slog.Logger
}

// NewRunner creates a runner. stepTimeout bounds each action; zero means no
// per-step limit beyond ctx.
func NewRunner(c Capability, stepTimeout time.Duration, log *slog.Logger) *Runner {
	if log == nil {
		log = slog.Default()
	}
	return &Runner{cap: c, stepTimeout: stepTimeout, log: log}
}

// Run executes the script in order. The first failing step stops the run;
// the results of the steps before it are returned with the error.
func (r *Runner) Run(ctx context.Context, s Script) ([]StepResult, error) {
	if len(s.Actions) == 0 {
		return nil, fmt.Errorf("%w: script %q has no actions", ErrInvalidAction, s.Name)
	}
	results := make([]StepResult, 0, len(s.Actions))
	for i, a := range s.Actions {
		if err := ctx.Err(); err != nil {
			return results, &StepError{Index: i, Kind: a.Kind, Err: err}
		}
		start := time.Now()
		text, err := r.step(ctx, a)
		if err != nil {
			r.log.Error("browser step failed", "script", s.Name, "step", i+1, "kind", a.Kind, "error", err)
			return results, &StepError{Index: i, Kind: a.Kind, Err: err}
		}
		res := StepResult{Index: i, Kind: a.Kind, Text: text, Duration: time.Since(start)}
		r.log.Info("browser step",
			"script", s.Name,
			"step", i+1,
			"kind", a.Kind,
			"duration_ms", res.Duration.Milliseconds(),
		)
		results = append(results, res)
	}
	return results, nil
}

func (r *Runner) step(ctx context.Context, a Action) (string, error) {
	if err := a.Validate(); err != nil {
		return "", err
	}
	if r.stepTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.stepTimeout)
		defer cancel()
	}

	var (
		text string
		err  error
	)
	switch a.Kind {
	case KindNavigate:
		err = r.cap.Navigate(ctx, a.URL)
	case KindSearch:
		err = r.cap.Search(ctx, a.Selector, a.Query)
	case KindClick:
		err = r.cap.Click(ctx, a.Selector)
	case KindWait:
		err = r.cap.WaitStable(ctx)
	case KindFirstComment:
		text, err = r.cap.FirstComment(ctx, a.Selector)
	case KindExtractText:
		text, err = r.cap.ExtractText(ctx, a.Selector)
	}
	if err != nil {
		return "", err
	}
	if !a.ProducesText() {
		return "", nil
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return "", ErrEmptyText
	}
	if a.Expect != "" && !strings.Contains(text, a.Expect) {
		return "", fmt.Errorf("%w: want %q in %q", ErrUnexpectedText, a.Expect, truncate(text, 80))
	}
	return text, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
