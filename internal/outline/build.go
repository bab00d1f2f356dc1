package outline

import (
	"regexp"
	"strings"
	"unicode"
)

// Heading detection rules, applied to each trimmed line in order:
//
//  1. Blank lines and bare "Topics:" headers are skipped.
//  2. "Chapter 3: Title", "Unit IV - Title", "Module 2 Title", "Part 1. Title" open a chapter
//     when the title is short (<= 80 runes, <= 10 words). Lowercase roman numerals need a
//     separator ("unit iv: Title"). A trailing parenthetical such as "(12 hours)" is dropped.
//  3. "3. Title" / "3) Title" opens a chapter when the syllabus has no keyword chapter
//     headings at all; otherwise it is a topic.
//  4. "Topic: Title", bullet lines and sub-numbered lines ("1.2 Title") are topics.
//  5. A short title-case line (<= 80 runes, <= 10 words, no trailing . , ; :) is a topic.
//  6. Anything else is body text for the nearest preceding topic.
var (
	keywordChapterRe = regexp.MustCompile(`^(?i:chapter|unit|module|part)\s+(\d+|[IVXLCDM]+|[ivxlcdm]+)\b(\s*[:.\-–—])?\s*(.*)$`)
	lowerRomanRe     = regexp.MustCompile(`^[ivxlcdm]+$`)
	numberedRe       = regexp.MustCompile(`^(\d+)[.)]\s+(\S.*)$`)
	subNumberedRe    = regexp.MustCompile(`^\d+\.\d+(?:\.\d+)*\.?\s+(\S.*)$`)
	topicPrefixRe    = regexp.MustCompile(`(?i)^topic\s*:\s*(.*)$`)
	bulletRe         = regexp.MustCompile(`^[●•▪◦‣\-\*–]\s*(.*)$`)
	topicsHeaderRe   = regexp.MustCompile(`(?i)^topics?\s*:?$`)
	parentheticalRe  = regexp.MustCompile(`\s*\([^)]*\)\s*$`)
)

const (
	maxHeadingRunes = 80
	maxHeadingWords = 10
)

var smallWords = map[string]bool{
	"a": true, "an": true, "and": true, "as": true, "at": true, "by": true,
	"for": true, "from": true, "in": true, "into": true, "of": true, "on": true,
	"or": true, "the": true, "to": true, "vs": true, "via": true, "with": true,
}

type lineKind int

const (
	lineSkip lineKind = iota
	lineChapter
	lineTopic
	lineBody
)

// Build turns extracted syllabus segments into an Outline. It never fails:
// empty input yields one placeholder chapter with no topics, and input without
// any recognisable heading collapses into one placeholder chapter holding a
// single topic with the whole text as its snippet.
func Build(segments []string) Outline {
	lines := splitLines(segments)
	keywordChapters := false
	for _, l := range lines {
		if _, ok := matchKeywordChapter(l); ok {
			keywordChapters = true
			break
		}
	}

	var (
		chapters  []Chapter
		body      []string // all body lines, for the headingless fallback
		snippet   []string
		headingOK bool
	)

	flushSnippet := func() {
		if len(chapters) == 0 || len(snippet) == 0 {
			snippet = nil
			return
		}
		ch := &chapters[len(chapters)-1]
		if n := len(ch.Topics); n > 0 {
			ch.Topics[n-1].Snippet = strings.Join(snippet, "\n")
		}
		snippet = nil
	}

	for _, line := range lines {
		kind, title := classify(line, keywordChapters)
		switch kind {
		case lineSkip:
			continue
		case lineChapter:
			flushSnippet()
			headingOK = true
			chapters = append(chapters, Chapter{Title: title})
		case lineTopic:
			flushSnippet()
			headingOK = true
			if len(chapters) == 0 {
				chapters = append(chapters, Chapter{Title: DefaultChapterTitle})
			}
			ch := &chapters[len(chapters)-1]
			ch.Topics = append(ch.Topics, Topic{Title: title})
		case lineBody:
			body = append(body, line)
			if len(chapters) > 0 && len(chapters[len(chapters)-1].Topics) > 0 {
				snippet = append(snippet, line)
			}
		}
	}
	flushSnippet()

	switch {
	case headingOK:
		return Outline{Chapters: chapters}
	case len(body) > 0:
		return Outline{Chapters: []Chapter{{
			Title:  DefaultChapterTitle,
			Topics: []Topic{{Title: DefaultTopicTitle, Snippet: strings.Join(body, "\n")}},
		}}}
	default:
		return Outline{Chapters: []Chapter{{Title: DefaultChapterTitle}}}
	}
}

// splitLines flattens segments into trimmed, non-empty lines.
func splitLines(segments []string) []string {
	var out []string
	for _, seg := range segments {
		for _, l := range strings.Split(seg, "\n") {
			l = strings.TrimSpace(strings.ReplaceAll(l, "\f", ""))
			if l != "" {
				out = append(out, l)
			}
		}
	}
	return out
}

func classify(line string, keywordChapters bool) (lineKind, string) {
	if topicsHeaderRe.MatchString(line) {
		return lineSkip, ""
	}

	if title, ok := matchKeywordChapter(line); ok {
		return lineChapter, title
	}

	if m := topicPrefixRe.FindStringSubmatch(line); m != nil {
		if t := cleanTitle(m[1]); t != "" {
			return lineTopic, t
		}
		return lineSkip, ""
	}

	if m := subNumberedRe.FindStringSubmatch(line); m != nil {
		return lineTopic, cleanTitle(m[1])
	}

	if m := numberedRe.FindStringSubmatch(line); m != nil {
		title := cleanTitle(parentheticalRe.ReplaceAllString(m[2], ""))
		if keywordChapters {
			return lineTopic, title
		}
		if isHeadingLike(title) {
			return lineChapter, title
		}
		return lineTopic, title
	}

	if m := bulletRe.FindStringSubmatch(line); m != nil {
		if t := cleanTitle(m[1]); t != "" {
			return lineTopic, t
		}
		return lineSkip, ""
	}

	if isHeadingLike(line) {
		return lineTopic, cleanTitle(line)
	}
	return lineBody, ""
}

// matchKeywordChapter reports whether line is a "Chapter N: Title" style
// heading and returns its title. Sentences that merely start with a keyword
// and a number are not headings.
func matchKeywordChapter(line string) (string, bool) {
	m := keywordChapterRe.FindStringSubmatch(line)
	if m == nil {
		return "", false
	}
	num, sep, rest := m[1], m[2], m[3]
	if sep == "" && lowerRomanRe.MatchString(num) {
		return "", false
	}
	rest = strings.TrimSpace(parentheticalRe.ReplaceAllString(rest, ""))
	if sep == "" && rest != "" {
		// "Module 2 covers loops" reads as a sentence.
		if first, ok := firstLetter(rest); ok && unicode.IsLower(first) {
			return "", false
		}
		if !withinHeadingLimits(rest) {
			return "", false
		}
	}
	title := cleanTitle(rest)
	if title != "" && !withinHeadingLimits(title) {
		return "", false
	}
	if title == "" {
		title = "Chapter " + strings.ToUpper(num)
	}
	return title, true
}

// withinHeadingLimits applies the length and sentence-punctuation checks of
// isHeadingLike without the title-case rule.
func withinHeadingLimits(s string) bool {
	r := []rune(s)
	if len(r) == 0 || len(r) > maxHeadingRunes {
		return false
	}
	if strings.ContainsRune(".,;:", r[len(r)-1]) {
		return false
	}
	return len(strings.Fields(s)) <= maxHeadingWords
}

func cleanTitle(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimRight(s, ".;,")
	return strings.TrimSpace(s)
}

// isHeadingLike reports whether s reads like a short title-case heading.
func isHeadingLike(s string) bool {
	if !withinHeadingLimits(s) {
		return false
	}
	words := strings.Fields(s)

	significant := 0
	for i, w := range words {
		first, ok := firstLetter(w)
		if !ok {
			continue
		}
		lw := strings.ToLower(strings.TrimFunc(w, func(r rune) bool { return !unicode.IsLetter(r) }))
		if i > 0 && smallWords[lw] {
			continue
		}
		if !unicode.IsUpper(first) {
			return false
		}
		significant++
	}
	return significant > 0
}

func firstLetter(w string) (rune, bool) {
	for _, r := range w {
		if unicode.IsLetter(r) {
			return r, true
		}
	}
	return 0, false
}
