// Package chunker sizes syllabus text for prompts.
package chunker

import (
	"strings"
)

// Truncate returns the longest prefix of text that fits within maxTokens,
// cut at paragraph boundaries first and sentence boundaries second. Text that
// already fits is returned unchanged (trimmed).
func Truncate(text string, maxTokens int) string {
	text = strings.TrimSpace(text)
	if maxTokens <= 0 || EstimateTokens(text) <= maxTokens {
		return text
	}

	var out strings.Builder
	used := 0
	for _, para := range splitByParagraphs(text) {
		paraTokens := EstimateTokens(para)
		if used+paraTokens <= maxTokens {
			if out.Len() > 0 {
				out.WriteString("\n\n")
			}
			out.WriteString(para)
			used += paraTokens
			continue
		}

		// Fill the remaining budget sentence by sentence.
		for _, sent := range splitSentences(para) {
			sentTokens := EstimateTokens(sent)
			if used+sentTokens > maxTokens {
				break
			}
			if out.Len() > 0 {
				out.WriteString(" ")
			}
			out.WriteString(sent)
			used += sentTokens
		}
		break
	}

	if out.Len() == 0 {
		// A single oversized sentence: fall back to a word cut.
		return firstWords(text, int(float64(maxTokens)/1.33))
	}
	return out.String()
}

// splitByParagraphs splits on double-newlines.
func splitByParagraphs(text string) []string {
	parts := strings.Split(text, "\n\n")
	var result []string
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			result = append(result, p)
		}
	}
	return result
}

// splitSentences does basic sentence splitting.
func splitSentences(text string) []string {
	var sentences []string
	var current strings.Builder

	for i, r := range text {
		current.WriteRune(r)
		if (r == '.' || r == '!' || r == '?') && i+1 < len(text) && (text[i+1] == ' ' || text[i+1] == '\n') {
			sentences = append(sentences, strings.TrimSpace(current.String()))
			current.Reset()
		}
	}
	if s := strings.TrimSpace(current.String()); s != "" {
		sentences = append(sentences, s)
	}

	return sentences
}

func firstWords(text string, n int) string {
	words := strings.Fields(text)
	if n <= 0 {
		return ""
	}
	if len(words) > n {
		words = words[:n]
	}
	return strings.Join(words, " ")
}
