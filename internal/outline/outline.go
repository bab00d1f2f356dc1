package outline

import (
	"path/filepath"
	"strings"
	"unicode"
)

// DefaultChapterTitle names the chapter used when no chapter heading is found.
const DefaultChapterTitle = "General"

// DefaultTopicTitle names the single topic of a syllabus that has body text but no headings.
const DefaultTopicTitle = "Overview"

// Outline is the structured form of a syllabus. It always holds at least one chapter.
type Outline struct {
	Title    string    // Book title
	Chapters []Chapter // In source order
}

// Chapter groups the topics under one chapter heading.
type Chapter struct {
	Title  string
	Topics []Topic
}

// Topic is a single subject unit within a chapter.
type Topic struct {
	Title   string
	Snippet string // Source text that followed the topic heading (may be empty)
}

// TopicKey identifies a topic by its position in an outline.
type TopicKey struct {
	Chapter int
	Topic   int
}

// Keys returns every topic position in outline order.
func (o *Outline) Keys() []TopicKey {
	var keys []TopicKey
	for ci, ch := range o.Chapters {
		for ti := range ch.Topics {
			keys = append(keys, TopicKey{Chapter: ci, Topic: ti})
		}
	}
	return keys
}

// TopicCount returns the number of topics across all chapters.
func (o *Outline) TopicCount() int {
	n := 0
	for _, ch := range o.Chapters {
		n += len(ch.Topics)
	}
	return n
}

// Lookup returns the chapter and topic at key.
func (o *Outline) Lookup(key TopicKey) (Chapter, Topic, bool) {
	if key.Chapter < 0 || key.Chapter >= len(o.Chapters) {
		return Chapter{}, Topic{}, false
	}
	ch := o.Chapters[key.Chapter]
	if key.Topic < 0 || key.Topic >= len(ch.Topics) {
		return Chapter{}, Topic{}, false
	}
	return ch, ch.Topics[key.Topic], true
}

// TitleFromFilename derives a book title from a syllabus path:
// "electronics-syllabus.pdf" becomes "Electronics Syllabus".
func TitleFromFilename(path string) string {
	base := filepath.Base(path)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	base = strings.NewReplacer("-", " ", "_", " ").Replace(base)
	words := strings.Fields(base)
	for i, w := range words {
		r := []rune(strings.ToLower(w))
		r[0] = unicode.ToUpper(r[0])
		words[i] = string(r)
	}
	if len(words) == 0 {
		return "Untitled"
	}
	return strings.Join(words, " ")
}
