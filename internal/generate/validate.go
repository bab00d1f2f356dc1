package generate

import (
	"errors"
	"regexp"
	"strings"
)

// ErrMalformed marks a reply that came back but cannot be used as section text.
var ErrMalformed = errors.New("malformed generation output")

var injectionPattern = regexp.MustCompile(
	`(?i)(ignore\s+(previous|all|above)|system\s*prompt|you\s+are\s+now|` +
		`as\s+an\s+ai\s+(language\s+)?model|follow\s+this\s+format\s+exactly)`,
)

// minPartRunes is the shortest introduction or body accepted.
const minPartRunes = 20

// ValidatePart checks one cleaned part of a section. Questions are checked
// separately through ParseQuestions.
func ValidatePart(part Part, text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return ErrMalformed
	}
	if part == PartQuestions {
		if len(ParseQuestions(text)) == 0 {
			return ErrMalformed
		}
		return nil
	}
	if len([]rune(text)) < minPartRunes {
		return ErrMalformed
	}
	if injectionPattern.MatchString(text) {
		return ErrMalformed
	}
	return nil
}

// Slugify converts a string to a URL/path-safe slug.
func Slugify(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = slugInvalid.ReplaceAllString(s, "-")
	s = slugDashes.ReplaceAllString(s, "-")
	s = strings.Trim(s, "-")
	if len(s) > 50 {
		s = strings.TrimRight(s[:50], "-")
	}
	return s
}

var (
	slugInvalid = regexp.MustCompile(`[^a-z0-9-]`)
	slugDashes  = regexp.MustCompile(`-+`)
)
