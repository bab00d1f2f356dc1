package chunker

import "strings"

// EstimateTokens gives a rough token count from the word count
// (about 1.33 tokens per English word). Exact tokenization is not needed to
// keep prompts under the model's context budget.
func EstimateTokens(text string) int {
	if text == "" {
		return 0
	}
	tokens := int(float64(len(strings.Fields(text))) * 1.33)
	if tokens < 1 {
		tokens = 1
	}
	return tokens
}
