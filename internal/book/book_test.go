package book

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/fumiama/go-docx"

	"github.com/dgallion1/syllabook/internal/generate"
	"github.com/dgallion1/syllabook/internal/outline"
)

func testOutline() outline.Outline {
	return outline.Outline{
		Title: "Electronics",
		Chapters: []outline.Chapter{
			{Title: "Basics", Topics: []outline.Topic{{Title: "Intro"}, {Title: "Ohm's Law"}}},
			{Title: "Circuits", Topics: []outline.Topic{{Title: "Series"}}},
		},
	}
}

func section(name string) generate.GeneratedSection {
	return generate.GeneratedSection{
		Introduction: "Introduction to " + name + ".",
		Body:         "Note: About " + name + ".\n\n1.1 First aspect\nDetails on " + name + ".",
		Questions:    []string{"What is " + name + "?", "Why does " + name + " matter?"},
	}
}

func fullSections(o outline.Outline) map[outline.TopicKey]generate.GeneratedSection {
	sections := make(map[outline.TopicKey]generate.GeneratedSection)
	for _, k := range o.Keys() {
		_, t, _ := o.Lookup(k)
		sections[k] = section(t.Title)
	}
	return sections
}

func TestAssemble_TOCOrder(t *testing.T) {
	doc, err := Assemble(testOutline(), fullSections(testOutline()))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var paths []string
	for _, e := range doc.TOC {
		paths = append(paths, e.Path())
	}
	want := []string{"Basics", "Basics > Intro", "Basics > Ohm's Law", "Circuits", "Circuits > Series"}
	if !reflect.DeepEqual(paths, want) {
		t.Errorf("TOC = %q, want %q", paths, want)
	}
	if doc.Title != "Electronics" {
		t.Errorf("expected title Electronics, got %q", doc.Title)
	}
	if got := doc.Chapters[0].Topics[1].Section.Introduction; got != "Introduction to Ohm's Law." {
		t.Errorf("section paired with wrong topic: %q", got)
	}
}

func TestAssemble_MissingSections(t *testing.T) {
	o := testOutline()
	sections := fullSections(o)
	delete(sections, outline.TopicKey{Chapter: 1, Topic: 0})
	delete(sections, outline.TopicKey{Chapter: 0, Topic: 1})

	doc, err := Assemble(o, sections)
	if doc != nil {
		t.Error("expected no document")
	}
	if !errors.Is(err, ErrIncompleteContent) {
		t.Fatalf("expected ErrIncompleteContent, got %v", err)
	}
	var ie *IncompleteContentError
	if !errors.As(err, &ie) {
		t.Fatalf("expected *IncompleteContentError, got %T", err)
	}
	want := []outline.TopicKey{{Chapter: 0, Topic: 1}, {Chapter: 1, Topic: 0}}
	if !reflect.DeepEqual(ie.Missing, want) {
		t.Errorf("Missing = %v, want %v", ie.Missing, want)
	}
}

func TestAssemble_ExtraSectionsIgnored(t *testing.T) {
	o := testOutline()
	sections := fullSections(o)
	sections[outline.TopicKey{Chapter: 9, Topic: 9}] = section("stray")
	if _, err := Assemble(o, sections); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestAssemble_EmptyOutline(t *testing.T) {
	o := outline.Build(nil)
	doc, err := Assemble(o, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(doc.TOC) != 1 || doc.TOC[0].Chapter != outline.DefaultChapterTitle {
		t.Errorf("expected a single default chapter entry, got %+v", doc.TOC)
	}
}

func TestTOCEntry_Path(t *testing.T) {
	if got := (TOCEntry{Chapter: "A"}).Path(); got != "A" {
		t.Errorf("got %q", got)
	}
	if got := (TOCEntry{Chapter: "A", Topic: "B"}).Path(); got != "A > B" {
		t.Errorf("got %q", got)
	}
}

func paragraphs(t *testing.T, data []byte) []string {
	t.Helper()
	parsed, err := docx.Parse(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("parse rendered docx: %v", err)
	}
	var out []string
	for _, item := range parsed.Document.Body.Items {
		para, ok := item.(*docx.Paragraph)
		if !ok {
			continue
		}
		var buf strings.Builder
		for _, child := range para.Children {
			run, ok := child.(*docx.Run)
			if !ok {
				continue
			}
			for _, rc := range run.Children {
				if txt, ok := rc.(*docx.Text); ok {
					buf.WriteString(txt.Text)
				}
			}
		}
		if s := strings.TrimSpace(buf.String()); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func TestDocument_WriteTo(t *testing.T) {
	doc, err := Assemble(testOutline(), fullSections(testOutline()))
	if err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	if _, err := doc.WriteTo(&buf); err != nil {
		t.Fatalf("WriteTo: %v", err)
	}
	got := paragraphs(t, buf.Bytes())

	// Each of these must appear, in this order.
	want := []string{
		"Electronics",
		"Table of Contents",
		"Chapter 1: Basics",
		"Intro",
		"Ohm's Law",
		"Chapter 2: Circuits",
		"Series",
		"Basics",
		"Intro",
		"Introduction to Intro.",
		"Note: About Intro.",
		"1.1 First aspect",
		"Details on Intro.",
		ReviewQuestionsHeading,
		"1. What is Intro?",
		"2. Why does Intro matter?",
		"Circuits",
		"Series",
		"2. Why does Series matter?",
	}
	i := 0
	for _, p := range got {
		if i < len(want) && p == want[i] {
			i++
		}
	}
	if i != len(want) {
		t.Errorf("rendered paragraphs out of order; matched %d of %d, stuck at %q\ngot: %q", i, len(want), want[i], got)
	}
}

func TestDocument_WriteFile(t *testing.T) {
	doc, err := Assemble(testOutline(), fullSections(testOutline()))
	if err != nil {
		t.Fatal(err)
	}
	dir := t.TempDir()
	path := filepath.Join(dir, "out", "book.docx")
	if err := doc.WriteFile(path); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(paragraphs(t, data)) == 0 {
		t.Error("expected rendered paragraphs")
	}

	entries, err := os.ReadDir(filepath.Dir(path))
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Errorf("expected only the output file, found %d entries", len(entries))
	}
}

func TestDocument_WriteFileBadDir(t *testing.T) {
	doc, err := Assemble(testOutline(), fullSections(testOutline()))
	if err != nil {
		t.Fatal(err)
	}
	file := filepath.Join(t.TempDir(), "plain")
	if err := os.WriteFile(file, nil, 0o644); err != nil {
		t.Fatal(err)
	}
	target := filepath.Join(file, "book.docx")
	if err := doc.WriteFile(target); err == nil {
		t.Fatal("expected error writing below a regular file")
	}
	if _, err := os.Stat(target); err == nil {
		t.Error("expected no output file")
	}
	if data, err := os.ReadFile(file); err != nil || len(data) != 0 {
		t.Errorf("expected the blocking file untouched, got %d bytes (err %v)", len(data), err)
	}
}
