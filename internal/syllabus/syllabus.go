// Package syllabus extracts ordered text segments from syllabus files.
package syllabus

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// ErrExtraction is matched by every extraction failure.
var ErrExtraction = errors.New("extraction error")

// ExtractionError reports an unreadable or unparseable syllabus.
type ExtractionError struct {
	Path string
	Err  error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("extract %s: %v", e.Path, e.Err)
}

func (e *ExtractionError) Unwrap() []error { return []error{ErrExtraction, e.Err} }

// Parser converts raw file bytes into ordered text segments.
type Parser interface {
	Parse(ctx context.Context, r io.Reader, filename string) ([]string, error)
}

// SupportedExtensions lists syllabus file extensions this tool can read.
var SupportedExtensions = map[string]bool{
	".pdf":      true,
	".txt":      true,
	".md":       true,
	".markdown": true,
	".docx":     true,
	".html":     true,
	".htm":      true,
}

// Extractor opens syllabus files and picks a parser by extension.
type Extractor struct {
	FallbackPdftotext bool
}

// ForFile returns the appropriate parser for a filename.
func (e *Extractor) ForFile(filename string) (Parser, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".pdf":
		return &PDFParser{FallbackPdftotext: e.FallbackPdftotext}, nil
	case ".txt":
		return &TextParser{}, nil
	case ".md", ".markdown":
		return &MarkdownParser{}, nil
	case ".docx":
		return &DOCXParser{}, nil
	case ".html", ".htm":
		return &HTMLParser{}, nil
	default:
		return nil, fmt.Errorf("unsupported file extension: %q", ext)
	}
}

// Extract reads path and returns its text segments in document order. A file
// with no text yields an empty slice, not an error.
func (e *Extractor) Extract(ctx context.Context, path string) ([]string, error) {
	p, err := e.ForFile(path)
	if err != nil {
		return nil, &ExtractionError{Path: path, Err: err}
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, &ExtractionError{Path: path, Err: err}
	}
	defer f.Close()

	segments, err := p.Parse(ctx, f, filepath.Base(path))
	if err != nil {
		return nil, &ExtractionError{Path: path, Err: err}
	}
	return segments, nil
}

// IsSupportedExtension checks if a file extension is supported.
func IsSupportedExtension(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	return SupportedExtensions[ext]
}

var chapterLeadRe = regexp.MustCompile(`(?i)^(chapter|unit|module|part)\b`)

// headingNormalizer rewrites styled headings from structured formats into the
// plain-line forms the outline builder recognises: level 1 becomes a numbered
// chapter line, deeper levels become "Topic:" lines.
type headingNormalizer struct {
	chapters int
}

func (h *headingNormalizer) segment(level int, text string) string {
	text = strings.TrimSpace(text)
	if text == "" || chapterLeadRe.MatchString(text) {
		return text
	}
	if level <= 1 {
		h.chapters++
		return fmt.Sprintf("Chapter %d: %s", h.chapters, text)
	}
	return "Topic: " + text
}
