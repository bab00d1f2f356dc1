package syllabus

import (
	"bufio"
	"context"
	"io"
	"strings"
)

// TextParser handles plain text syllabi. Each blank-line separated paragraph
// becomes one segment.
type TextParser struct{}

func (p *TextParser) Parse(ctx context.Context, r io.Reader, filename string) ([]string, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var paragraphs []string
	var current strings.Builder

	for scanner.Scan() {
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			if current.Len() > 0 {
				paragraphs = append(paragraphs, current.String())
				current.Reset()
			}
		} else {
			if current.Len() > 0 {
				current.WriteString("\n")
			}
			current.WriteString(line)
		}
	}
	if current.Len() > 0 {
		paragraphs = append(paragraphs, current.String())
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return paragraphs, nil
}
