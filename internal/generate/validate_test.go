package generate

import (
	"errors"
	"strings"
	"testing"
)

func TestValidatePart(t *testing.T) {
	tests := []struct {
		name    string
		part    Part
		text    string
		wantErr bool
	}{
		{"intro ok", PartIntroduction, "Ohm's law relates voltage, current and resistance in a circuit.", false},
		{"intro empty", PartIntroduction, "   ", true},
		{"intro too short", PartIntroduction, "Too short.", true},
		{"body ok", PartBody, "Note: Resistors limit current.\n\n1.1 Colour codes\nBands encode value.", false},
		{"body echoes prompt", PartBody, "Follow this format EXACTLY: 1.1 something here that is long", true},
		{"body assistant voice", PartBody, "As an AI language model I cannot write this section.", true},
		{"questions numbered", PartQuestions, "1. What is current?\n2. Why?", false},
		{"questions plain", PartQuestions, "What is current?", false},
		{"questions none", PartQuestions, "There are no questions here.", true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidatePart(tc.part, tc.text)
			if tc.wantErr {
				if !errors.Is(err, ErrMalformed) {
					t.Errorf("expected ErrMalformed, got %v", err)
				}
				return
			}
			if err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestSlugify(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Hello World", "hello-world"},
		{"  Electronics Sylabuss  ", "electronics-sylabuss"},
		{"foo---bar", "foo-bar"},
		{"Chapter 1: Basics!", "chapter-1-basics"},
		{"", ""},
	}
	for _, tc := range tests {
		if got := Slugify(tc.in); got != tc.want {
			t.Errorf("Slugify(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestSlugify_Truncates(t *testing.T) {
	got := Slugify(strings.Repeat("a", 80))
	if len(got) != 50 {
		t.Errorf("expected 50 chars, got %d", len(got))
	}
}
