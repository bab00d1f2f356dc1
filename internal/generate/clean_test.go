package generate

import (
	"reflect"
	"strings"
	"testing"
)

func TestCleanText(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "   ", ""},
		{"plain", "Just a sentence.", "Just a sentence."},
		{"emphasis", "Hello **world** and _you_.", "Hello world and you."},
		{"paragraphs", "First.\n\nSecond.", "First.\n\nSecond."},
		{"heading", "## Resistors\n\nThey resist.", "Resistors\n\nThey resist."},
		{"ordered list", "1. What?\n2. Why?", "1. What?\n\n2. Why?"},
		{"unordered list", "- alpha\n- beta", "• alpha\n\n• beta"},
		{"soft breaks kept", "1.1 First aspect\nExplanation here.", "1.1 First aspect\nExplanation here."},
		{"code fence", "```markdown\nHello there\n```", "Hello there"},
		{"script dropped", "Text\n\n<script>alert(1)</script>", "Text"},
		{"link text", "See [the docs](http://example.com).", "See the docs."},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := CleanText(tc.in); got != tc.want {
				t.Errorf("CleanText(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestCleanText_NoMarkupLeft(t *testing.T) {
	in := "# Title\n\n**Bold** text with `code` and <b>raw</b> html.\n\n* one\n* two"
	got := CleanText(in)
	for _, bad := range []string{"<", ">", "**", "`", "#"} {
		if strings.Contains(got, bad) {
			t.Errorf("cleaned text still contains %q: %q", bad, got)
		}
	}
}

func TestParseQuestions(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []string
	}{
		{"numbered dot", "1. What is current?\n\n2. How is it measured?", []string{"What is current?", "How is it measured?"}},
		{"numbered paren", "1) Define voltage.\n2) Compare AC and DC.", []string{"Define voltage.", "Compare AC and DC."}},
		{"q prefix", "Q1: Why?\nQuestion 2 - How?", []string{"Why?", "How?"}},
		{"fallback to question marks", "Consider these.\n• What is a diode?\nWhy use one?", []string{"What is a diode?", "Why use one?"}},
		{"none", "No questions at all.", nil},
		{"empty", "", nil},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := ParseQuestions(tc.in); !reflect.DeepEqual(got, tc.want) {
				t.Errorf("ParseQuestions(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}
