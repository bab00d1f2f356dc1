package syllabus

import (
	"bytes"
	"context"
	"io"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// MarkdownParser handles Markdown syllabi using goldmark. Headings are
// normalised to chapter/topic lines, list items become bullet lines.
type MarkdownParser struct{}

func (p *MarkdownParser) Parse(ctx context.Context, r io.Reader, filename string) ([]string, error) {
	src, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	md := goldmark.New()
	doc := md.Parser().Parse(text.NewReader(src))

	var (
		segments []string
		headings headingNormalizer
	)
	emit := func(s string) {
		if s = strings.TrimSpace(s); s != "" {
			segments = append(segments, s)
		}
	}

	for n := doc.FirstChild(); n != nil; n = n.NextSibling() {
		switch node := n.(type) {
		case *ast.Heading:
			emit(headings.segment(node.Level, extractText(node, src)))
		case *ast.List:
			for item := node.FirstChild(); item != nil; item = item.NextSibling() {
				if t := extractText(item, src); t != "" {
					emit("• " + t)
				}
			}
		default:
			emit(extractText(n, src))
		}
	}
	return segments, nil
}

// extractText gets the text content of a goldmark AST node. Inline text is
// taken from the text segments; code blocks from their raw lines.
func extractText(n ast.Node, src []byte) string {
	var buf bytes.Buffer
	var walk func(ast.Node)
	walk = func(n ast.Node) {
		switch v := n.(type) {
		case *ast.Text:
			buf.Write(v.Segment.Value(src))
			if v.HardLineBreak() || v.SoftLineBreak() {
				buf.WriteByte('\n')
			}
			return
		case *ast.String:
			buf.Write(v.Value)
			return
		case *ast.CodeBlock, *ast.FencedCodeBlock:
			lines := n.Lines()
			for i := 0; i < lines.Len(); i++ {
				line := lines.At(i)
				buf.Write(line.Value(src))
			}
			return
		}
		for c := n.FirstChild(); c != nil; c = c.NextSibling() {
			if c.Type() == ast.TypeBlock && buf.Len() > 0 {
				buf.WriteByte('\n')
			}
			walk(c)
		}
	}
	walk(n)
	return strings.TrimSpace(buf.String())
}
