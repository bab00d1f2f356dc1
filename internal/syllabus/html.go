package syllabus

import (
	"context"
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"
)

// HTMLParser handles syllabi exported as web pages. Headings h1-h6 are
// normalised like Markdown headings; page chrome is skipped.
type HTMLParser struct{}

func (p *HTMLParser) Parse(ctx context.Context, r io.Reader, filename string) ([]string, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	var (
		segments []string
		headings headingNormalizer
	)
	emit := func(s string) {
		if s = strings.TrimSpace(s); s != "" {
			segments = append(segments, s)
		}
	}

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			if level := headingLevel(n.Data); level > 0 {
				emit(headings.segment(level, textContent(n)))
				return
			}
			switch n.Data {
			case "script", "style", "nav", "footer", "header", "head":
				return
			case "li":
				if t := textContent(n); t != "" {
					emit("• " + t)
				}
				return
			case "p", "td", "blockquote", "pre":
				emit(textContent(n))
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}

	if body := findBody(doc); body != nil {
		walk(body)
	} else {
		walk(doc)
	}
	return segments, ctx.Err()
}

func headingLevel(tag string) int {
	if len(tag) == 2 && tag[0] == 'h' && tag[1] >= '1' && tag[1] <= '6' {
		return int(tag[1] - '0')
	}
	return 0
}

// textContent joins the text under n with whitespace collapsed.
func textContent(n *html.Node) string {
	var buf strings.Builder
	var extract func(*html.Node)
	extract = func(n *html.Node) {
		if n.Type == html.TextNode {
			buf.WriteString(n.Data)
			buf.WriteByte(' ')
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			extract(c)
		}
	}
	extract(n)
	return strings.Join(strings.Fields(buf.String()), " ")
}

func findBody(n *html.Node) *html.Node {
	if n.Type == html.ElementNode && n.Data == "body" {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if b := findBody(c); b != nil {
			return b
		}
	}
	return nil
}
