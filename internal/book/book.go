// Package book assembles generated sections into a styled .docx document.
package book

import (
	"errors"
	"fmt"
	"strings"

	"github.com/dgallion1/syllabook/internal/generate"
	"github.com/dgallion1/syllabook/internal/outline"
)

// ErrIncompleteContent matches every *IncompleteContentError.
var ErrIncompleteContent = errors.New("incomplete book content")

// IncompleteContentError lists the outline topics that have no generated section.
type IncompleteContentError struct {
	Missing []outline.TopicKey
}

func (e *IncompleteContentError) Error() string {
	keys := make([]string, 0, len(e.Missing))
	for i, k := range e.Missing {
		if i == 5 {
			keys = append(keys, "...")
			break
		}
		keys = append(keys, fmt.Sprintf("%d.%d", k.Chapter+1, k.Topic+1))
	}
	return fmt.Sprintf("%d topic(s) missing content: %s", len(e.Missing), strings.Join(keys, ", "))
}

func (e *IncompleteContentError) Unwrap() error { return ErrIncompleteContent }

// TOCEntry is one line of the table of contents. Chapter entries have an
// empty Topic.
type TOCEntry struct {
	Chapter string `json:"chapter"`
	Topic   string `json:"topic,omitempty"`
}

// Path renders the entry as "Chapter > Topic", or just the chapter title.
func (e TOCEntry) Path() string {
	if e.Topic == "" {
		return e.Chapter
	}
	return e.Chapter + " > " + e.Topic
}

// IsChapter reports whether the entry names a chapter rather than a topic.
func (e TOCEntry) IsChapter() bool { return e.Topic == "" }

// RenderedTopic pairs a topic title with its generated content.
type RenderedTopic struct {
	Title   string
	Section generate.GeneratedSection
}

// RenderedChapter is a chapter ready for rendering.
type RenderedChapter struct {
	Title  string
	Topics []RenderedTopic
}

// Document is a fully assembled book. It is built once and written once.
type Document struct {
	Title    string
	TOC      []TOCEntry
	Chapters []RenderedChapter
	Style    Style
}

// Assemble pairs every outline topic with its section, in outline order.
// Every topic key of o must be present in sections; extra keys are ignored.
func Assemble(o outline.Outline, sections map[outline.TopicKey]generate.GeneratedSection) (*Document, error) {
	var missing []outline.TopicKey
	for _, key := range o.Keys() {
		if _, ok := sections[key]; !ok {
			missing = append(missing, key)
		}
	}
	if len(missing) > 0 {
		return nil, &IncompleteContentError{Missing: missing}
	}

	doc := &Document{
		Title: o.Title,
		Style: DefaultStyle,
	}
	if doc.Title == "" {
		doc.Title = "Untitled"
	}
	for ci, ch := range o.Chapters {
		doc.TOC = append(doc.TOC, TOCEntry{Chapter: ch.Title})
		rc := RenderedChapter{Title: ch.Title}
		for ti, t := range ch.Topics {
			doc.TOC = append(doc.TOC, TOCEntry{Chapter: ch.Title, Topic: t.Title})
			rc.Topics = append(rc.Topics, RenderedTopic{
				Title:   t.Title,
				Section: sections[outline.TopicKey{Chapter: ci, Topic: ti}],
			})
		}
		doc.Chapters = append(doc.Chapters, rc)
	}
	return doc, nil
}
