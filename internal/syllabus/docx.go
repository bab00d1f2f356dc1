package syllabus

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/fumiama/go-docx"
)

// DOCXParser handles .docx syllabi. Paragraphs styled as headings are
// normalised to chapter/topic lines. "Title" paragraphs carry the course
// name, not a chapter, and are skipped.
type DOCXParser struct{}

func (p *DOCXParser) Parse(ctx context.Context, r io.Reader, filename string) ([]string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read docx: %w", err)
	}
	doc, err := docx.Parse(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("parse docx: %w", err)
	}

	var (
		segments []string
		headings headingNormalizer
	)
	for _, item := range doc.Document.Body.Items {
		para, ok := item.(*docx.Paragraph)
		if !ok {
			continue
		}
		text := docxParagraphText(para)
		if text == "" || docxStyle(para) == "title" {
			continue
		}
		if level := docxHeadingLevel(para); level > 0 {
			text = headings.segment(level, text)
		}
		segments = append(segments, text)
	}
	return segments, nil
}

// docxStyle returns the paragraph style id, lowercased with spaces removed.
func docxStyle(para *docx.Paragraph) string {
	if para.Properties == nil || para.Properties.Style == nil {
		return ""
	}
	return strings.ToLower(strings.ReplaceAll(para.Properties.Style.Val, " ", ""))
}

func docxHeadingLevel(para *docx.Paragraph) int {
	switch docxStyle(para) {
	case "heading1":
		return 1
	case "heading2":
		return 2
	case "heading3":
		return 3
	case "heading4":
		return 4
	case "heading5":
		return 5
	case "heading6":
		return 6
	}
	return 0
}

func docxParagraphText(para *docx.Paragraph) string {
	var buf strings.Builder
	for _, child := range para.Children {
		run, ok := child.(*docx.Run)
		if !ok {
			continue
		}
		for _, rc := range run.Children {
			if t, ok := rc.(*docx.Text); ok {
				buf.WriteString(t.Text)
			}
		}
	}
	return strings.TrimSpace(buf.String())
}
