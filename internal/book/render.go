package book

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/fumiama/go-docx"
)

// ReviewQuestionsHeading introduces the question list of every topic.
const ReviewQuestionsHeading = "Review Questions"

var subsectionRe = regexp.MustCompile(`^\d+\.\d+\.?\s+\S`)

// WriteTo renders the document as .docx into w.
func (d *Document) WriteTo(w io.Writer) (int64, error) {
	return d.render().WriteTo(w)
}

// WriteFile renders the document to path. The file is written under a
// temporary name in the same directory and renamed into place, so path is
// either absent or complete.
func (d *Document) WriteFile(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".syllabook-*.docx")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath) // no-op after a successful rename

	if _, err := d.WriteTo(tmp); err != nil {
		tmp.Close()
		return fmt.Errorf("render docx: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("rename output: %w", err)
	}
	return nil
}

type renderer struct {
	w     *docx.Docx
	style Style
}

func (d *Document) render() *docx.Docx {
	r := &renderer{w: docx.New().WithDefaultTheme(), style: d.Style}

	// Title page.
	r.paragraph(r.style.Title, d.Title)
	r.pageBreak()

	// Table of contents.
	r.paragraph(r.style.TOCTitle, "Table of Contents")
	chapterNum := 0
	for _, e := range d.TOC {
		if e.IsChapter() {
			chapterNum++
			r.paragraph(r.style.TOCChapter, fmt.Sprintf("Chapter %d: %s", chapterNum, e.Chapter))
			continue
		}
		r.paragraph(r.style.TOCTopic, "    "+e.Topic)
	}

	for _, ch := range d.Chapters {
		r.paragraph(r.style.Chapter, ch.Title)
		for _, t := range ch.Topics {
			r.paragraph(r.style.Topic, t.Title)
			r.blocks(t.Section.Introduction)
			r.blocks(t.Section.Body)
			if len(t.Section.Questions) > 0 {
				r.paragraph(r.style.Subsection, ReviewQuestionsHeading)
				for i, q := range t.Section.Questions {
					r.paragraph(r.style.Content, strconv.Itoa(i+1)+". "+q)
				}
			}
		}
	}
	return r.w
}

// blocks renders cleaned text line by line. Numbered sub-section lines
// ("1.2 Title") become subsection headings and a leading "Note:" line is
// set in italics.
func (r *renderer) blocks(text string) {
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		switch {
		case line == "":
			continue
		case subsectionRe.MatchString(line):
			r.paragraph(r.style.Subsection, line)
		case strings.HasPrefix(line, "Note:"):
			r.paragraph(r.style.Note, line)
		default:
			r.paragraph(r.style.Content, line)
		}
	}
}

func (r *renderer) pageBreak() {
	r.w.AddParagraph().AddPageBreaks()
}

func (r *renderer) paragraph(s TextStyle, text string) {
	if s.PageBreakBefore {
		r.pageBreak()
	}
	p := r.w.AddParagraph()
	if s.Align != "" {
		p.Justification(s.Align)
	}
	if s.Heading != "" {
		if p.Properties == nil {
			p.Properties = &docx.ParagraphProperties{}
		}
		p.Properties.Style = &docx.Style{Val: s.Heading}
	}
	run := p.AddText(text)
	if s.SizePt > 0 {
		run.Size(strconv.Itoa(s.SizePt * 2)) // half-points
	}
	if s.Bold {
		run.Bold()
	}
	if s.Italic {
		run.Italic()
	}
}
