package generate

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/dgallion1/syllabook/internal/outline"
)

// scriptedClient answers by prompt kind and can fail the first N calls.
type scriptedClient struct {
	mu      sync.Mutex
	prompts []string
	failN   int
	failErr error
}

func (c *scriptedClient) Generate(_ context.Context, prompt string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.prompts = append(c.prompts, prompt)
	if c.failN > 0 {
		c.failN--
		return "", c.failErr
	}
	switch {
	case strings.HasPrefix(prompt, "Write a brief introduction"):
		return "This **topic** explains the basics and why they matter in practice.", nil
	case strings.HasPrefix(prompt, "Write educational content"):
		return "Note: A short overview.\n\n1.1 First aspect\nDetails about the first aspect.", nil
	case strings.HasPrefix(prompt, "Create three review questions"):
		return "1. What is it?\n2. How is it used?\n3. How would you fix it?", nil
	}
	return "", errors.New("unexpected prompt")
}

func (c *scriptedClient) calls() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.prompts)
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func noWait(int) time.Duration { return 0 }

var (
	testChapter = outline.Chapter{Title: "Basics"}
	testTopic   = outline.Topic{Title: "Intro", Snippet: "Ohm's law and power."}
)

func TestGenerateSection(t *testing.T) {
	client := &scriptedClient{}
	g := NewGenerator(client, "Electronics", "Chapter 1: Basics\nTopic: Intro", Options{Backoff: noWait}, quietLogger())

	sec, err := g.GenerateSection(context.Background(), testChapter, testTopic)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sec.Introduction != "This topic explains the basics and why they matter in practice." {
		t.Errorf("unexpected introduction %q", sec.Introduction)
	}
	if !strings.HasPrefix(sec.Body, "Note: A short overview.") || !strings.Contains(sec.Body, "1.1 First aspect") {
		t.Errorf("unexpected body %q", sec.Body)
	}
	if len(sec.Questions) != 3 || sec.Questions[0] != "What is it?" {
		t.Errorf("unexpected questions %q", sec.Questions)
	}

	if client.calls() != 3 {
		t.Fatalf("expected 3 calls, got %d", client.calls())
	}
	for i, want := range []string{"Write a brief introduction", "Write educational content", "Create three review questions"} {
		p := client.prompts[i]
		if !strings.HasPrefix(p, want) {
			t.Errorf("call %d: expected prompt starting %q", i, want)
		}
		for _, ctx := range []string{"Intro", "Basics", "Ohm's law and power.", "Syllabus context:"} {
			if !strings.Contains(p, ctx) {
				t.Errorf("call %d: prompt missing %q", i, ctx)
			}
		}
	}
}

func TestGenerateSection_RetriesTransientErrors(t *testing.T) {
	client := &scriptedClient{failN: 2, failErr: &RetryableError{StatusCode: 429, Message: "rate limited"}}
	g := NewGenerator(client, "", "", Options{MaxRetries: 3, Backoff: noWait}, quietLogger())

	if _, err := g.GenerateSection(context.Background(), testChapter, testTopic); err != nil {
		t.Fatalf("expected success after retries, got %v", err)
	}
	if client.calls() != 5 {
		t.Errorf("expected 2 failed + 3 successful calls, got %d", client.calls())
	}
}

func TestGenerateSection_RetryLimit(t *testing.T) {
	client := &scriptedClient{failN: 100, failErr: &RetryableError{StatusCode: 503, Message: "down"}}
	g := NewGenerator(client, "", "", Options{MaxRetries: 3, Backoff: noWait}, quietLogger())

	_, err := g.GenerateSection(context.Background(), testChapter, testTopic)
	if !errors.Is(err, ErrGeneration) {
		t.Fatalf("expected ErrGeneration, got %v", err)
	}
	var gerr *GenerationError
	if !errors.As(err, &gerr) {
		t.Fatalf("expected *GenerationError, got %T", err)
	}
	if gerr.Part != PartIntroduction || gerr.Chapter != "Basics" || gerr.Topic != "Intro" {
		t.Errorf("unexpected error fields: %+v", gerr)
	}
	if !IsRetryable(err) {
		t.Error("expected the transient cause to stay visible")
	}
	if client.calls() != 3 {
		t.Errorf("expected exactly 3 attempts, got %d", client.calls())
	}
}

func TestGenerateSection_NonRetryableFailsFast(t *testing.T) {
	client := &scriptedClient{failN: 1, failErr: errors.New("chat completions status 400: bad model")}
	g := NewGenerator(client, "", "", Options{MaxRetries: 5, Backoff: noWait}, quietLogger())

	_, err := g.GenerateSection(context.Background(), testChapter, testTopic)
	if !errors.Is(err, ErrGeneration) {
		t.Fatalf("expected ErrGeneration, got %v", err)
	}
	if client.calls() != 1 {
		t.Errorf("expected a single attempt, got %d", client.calls())
	}
}

func TestGenerateSection_SingleAttempt(t *testing.T) {
	client := &scriptedClient{failN: 1, failErr: &RetryableError{StatusCode: 429}}
	g := NewGenerator(client, "", "", Options{MaxRetries: 1, Backoff: noWait}, quietLogger())

	if _, err := g.GenerateSection(context.Background(), testChapter, testTopic); !errors.Is(err, ErrGeneration) {
		t.Fatalf("expected ErrGeneration, got %v", err)
	}
	if client.calls() != 1 {
		t.Errorf("expected one attempt, got %d", client.calls())
	}
}

func TestGenerateSection_CanceledDuringBackoff(t *testing.T) {
	client := &scriptedClient{failN: 100, failErr: &RetryableError{StatusCode: 429}}
	ctx, cancel := context.WithCancel(context.Background())
	wait := func(int) time.Duration {
		cancel()
		return time.Hour
	}
	g := NewGenerator(client, "", "", Options{MaxRetries: 5, Backoff: wait}, quietLogger())

	_, err := g.GenerateSection(ctx, testChapter, testTopic)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if !errors.Is(err, ErrGeneration) {
		t.Errorf("expected the cancellation wrapped in a GenerationError, got %v", err)
	}
}

type quietClient struct{ reply string }

func (c quietClient) Generate(context.Context, string) (string, error) { return c.reply, nil }

func TestGenerateSection_MalformedOutput(t *testing.T) {
	g := NewGenerator(quietClient{reply: "<p></p>"}, "", "", Options{Backoff: noWait}, quietLogger())
	_, err := g.GenerateSection(context.Background(), testChapter, testTopic)
	if !errors.Is(err, ErrMalformed) || !errors.Is(err, ErrGeneration) {
		t.Fatalf("expected malformed generation error, got %v", err)
	}
}

func TestNewGenerator_TrimsContext(t *testing.T) {
	long := strings.Repeat("word ", 5000)
	g := NewGenerator(quietClient{}, "", long, Options{ContextTokens: 100}, nil)
	if len(strings.Fields(g.context)) >= 5000 {
		t.Error("expected syllabus context to be trimmed")
	}
	if g.opts.MaxRetries != DefaultMaxRetries {
		t.Errorf("expected default retries, got %d", g.opts.MaxRetries)
	}
}
