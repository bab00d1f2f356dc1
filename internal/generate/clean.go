package generate

import (
	"bytes"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"golang.org/x/net/html"
)

var (
	markdown = goldmark.New()
	sanitize = bluemonday.UGCPolicy()
)

// CleanText flattens model output to plain text. The reply is rendered as
// markdown, sanitised, and its block elements are emitted one per line.
// Ordered list items keep their numbers; unordered items get a "• " prefix.
// Blocks are separated by a blank line.
func CleanText(s string) string {
	s = strings.TrimSpace(stripCodeFence(s))
	if s == "" {
		return ""
	}

	var rendered bytes.Buffer
	if err := markdown.Convert([]byte(s), &rendered); err != nil {
		return s
	}
	safe := sanitize.SanitizeBytes(rendered.Bytes())

	doc, err := html.Parse(bytes.NewReader(safe))
	if err != nil {
		return s
	}
	var blocks []string
	collectBlocks(doc, &blocks)
	return strings.Join(blocks, "\n\n")
}

var codeFenceRe = regexp.MustCompile("(?s)^```[a-zA-Z]*\\s*(.*?)\\s*```$")

// stripCodeFence unwraps a reply that arrived wrapped in a single code fence.
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if m := codeFenceRe.FindStringSubmatch(s); len(m) > 1 {
		return m[1]
	}
	return s
}

func collectBlocks(n *html.Node, out *[]string) {
	if n.Type == html.ElementNode {
		switch n.Data {
		case "script", "style":
			return
		case "p", "h1", "h2", "h3", "h4", "h5", "h6", "pre", "td", "th":
			if t := inlineText(n); t != "" {
				*out = append(*out, t)
			}
			return
		case "ol", "ul":
			collectList(n, out)
			return
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collectBlocks(c, out)
	}
}

func collectList(list *html.Node, out *[]string) {
	ordered := list.Data == "ol"
	num := 1
	if ordered {
		for _, a := range list.Attr {
			if a.Key == "start" {
				if n, err := strconv.Atoi(a.Val); err == nil {
					num = n
				}
			}
		}
	}
	for li := list.FirstChild; li != nil; li = li.NextSibling {
		if li.Type != html.ElementNode || li.Data != "li" {
			continue
		}
		if t := inlineText(li); t != "" {
			if ordered {
				*out = append(*out, fmt.Sprintf("%d. %s", num, t))
			} else {
				*out = append(*out, "• "+t)
			}
		}
		num++
		for c := li.FirstChild; c != nil; c = c.NextSibling {
			if c.Type == html.ElementNode && (c.Data == "ol" || c.Data == "ul") {
				collectList(c, out)
			}
		}
	}
}

// inlineText returns the text of n without nested lists. Line breaks are
// kept; runs of spaces within a line are collapsed.
func inlineText(n *html.Node) string {
	var buf strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		switch {
		case n.Type == html.TextNode:
			buf.WriteString(n.Data)
			return
		case n.Type == html.ElementNode && (n.Data == "ol" || n.Data == "ul"):
			return
		case n.Type == html.ElementNode && n.Data == "br":
			buf.WriteString("\n")
			return
		case n.Type == html.ElementNode && n.Data == "p" && buf.Len() > 0:
			buf.WriteString("\n")
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)

	var lines []string
	for _, l := range strings.Split(buf.String(), "\n") {
		if l = strings.Join(strings.Fields(l), " "); l != "" {
			lines = append(lines, l)
		}
	}
	return strings.Join(lines, "\n")
}

var (
	questionNumRe = regexp.MustCompile(`(?i)^(?:q(?:uestion)?\s*)?\d+\s*[.):\-]\s*(\S.*)$`)
	bulletPrefix  = regexp.MustCompile(`^[•\-\*]\s*`)
)

// ParseQuestions extracts review questions from cleaned text. Numbered lines
// ("1. ...", "2) ...", "Q3: ...") are preferred; without any, every line that
// ends in a question mark counts.
func ParseQuestions(text string) []string {
	var numbered, asked []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if m := questionNumRe.FindStringSubmatch(line); m != nil {
			numbered = append(numbered, strings.TrimSpace(m[1]))
			continue
		}
		if strings.HasSuffix(line, "?") {
			asked = append(asked, bulletPrefix.ReplaceAllString(line, ""))
		}
	}
	if len(numbered) > 0 {
		return numbered
	}
	return asked
}
