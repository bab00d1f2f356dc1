package chunker

import (
	"strings"
	"testing"
)

func TestTruncate_FitsUnchanged(t *testing.T) {
	text := "Chapter 1: Basics\n\nTopic: Intro"
	if got := Truncate(text, 100); got != text {
		t.Errorf("expected text unchanged, got %q", got)
	}
}

func TestTruncate_ZeroBudgetDisablesLimit(t *testing.T) {
	text := strings.Repeat("word ", 500)
	if got := Truncate(text, 0); got != strings.TrimSpace(text) {
		t.Error("expected zero budget to return the whole text")
	}
}

func TestTruncate_CutsAtParagraph(t *testing.T) {
	first := strings.Repeat("alpha ", 30)  // ~40 tokens
	second := strings.Repeat("beta ", 300) // ~400 tokens
	text := first + "\n\n" + second

	got := Truncate(text, 100)
	if strings.Contains(got, "beta") {
		t.Error("expected second paragraph to be cut")
	}
	if !strings.HasPrefix(got, "alpha") {
		t.Errorf("expected first paragraph kept, got %q", got[:20])
	}
	if EstimateTokens(got) > 100 {
		t.Errorf("expected at most 100 tokens, got %d", EstimateTokens(got))
	}
}

func TestTruncate_FillsWithSentences(t *testing.T) {
	text := "One two three. Four five six. " + strings.Repeat("seven ", 200)
	got := Truncate(text, 10)
	if got != "One two three. Four five six." {
		t.Errorf("unexpected truncation %q", got)
	}
}

func TestTruncate_OversizedSentence(t *testing.T) {
	text := strings.Repeat("word ", 400)
	got := Truncate(text, 40)
	if n := len(strings.Fields(got)); n != 30 {
		t.Errorf("expected 30 words (40 tokens / 1.33), got %d", n)
	}
}

func TestEstimateTokens(t *testing.T) {
	if EstimateTokens("") != 0 {
		t.Error("expected 0 tokens for empty text")
	}
	if EstimateTokens("x") != 1 {
		t.Error("expected at least 1 token for non-empty text")
	}
	if got := EstimateTokens(strings.Repeat("word ", 100)); got != 133 {
		t.Errorf("expected 133 tokens, got %d", got)
	}
}
