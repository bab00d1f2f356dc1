package generate

import (
	"fmt"
	"strings"
)

// Part names one of the three generation requests made per topic.
type Part string

const (
	PartIntroduction Part = "introduction"
	PartBody         Part = "body"
	PartQuestions    Part = "questions"
)

// Parts lists the per-topic requests in the order they are issued.
var Parts = []Part{PartIntroduction, PartBody, PartQuestions}

const introductionRules = `Follow this format EXACTLY:
[Single paragraph introduction, no title, no headers, approximately 150 words]

Requirements:
1. Write in a clear, professional tone
2. Focus on practical relevance
3. Explain why the topic matters within the chapter
4. Do not use bullet points or lists
5. Do not repeat the topic title
6. No section headers or formatting marks`

const bodyRules = `Follow this format EXACTLY:

Note: [Single sentence overview of the topic]

1.1 [First aspect of the topic]
[Detailed explanation in paragraph form]

1.2 [Second aspect of the topic]
[Detailed explanation in paragraph form]

1.3 [Third aspect of the topic]
[Detailed explanation in paragraph form]

Requirements:
1. No topic title repetition
2. No bullet points or asterisks
3. Write paragraphs, not lists
4. Keep sub-section titles brief
5. Focus on the specific topic content
6. No introductory or concluding remarks`

const questionRules = `Follow this format EXACTLY:
1. [Conceptual question about the topic]
2. [Practical application question]
3. [Problem-solving scenario question]

Requirements:
1. Number the questions sequentially
2. One question per line
3. No bullet points, headers or answers
4. Keep questions clear and focused`

// PromptInput is the context shared by a topic's three prompts.
type PromptInput struct {
	BookTitle string
	Chapter   string
	Topic     string
	Snippet   string
	Syllabus  string // Syllabus text, already trimmed to the context budget
}

// BuildPrompt creates the full prompt for one part of a topic.
func BuildPrompt(part Part, in PromptInput) string {
	var sb strings.Builder
	switch part {
	case PartIntroduction:
		sb.WriteString(fmt.Sprintf("Write a brief introduction for the topic: %s\n", in.Topic))
	case PartBody:
		sb.WriteString(fmt.Sprintf("Write educational content for the topic: %s\n", in.Topic))
	case PartQuestions:
		sb.WriteString(fmt.Sprintf("Create three review questions for the topic: %s\n", in.Topic))
	}
	sb.WriteString(fmt.Sprintf("Chapter: %s\n", in.Chapter))
	if in.BookTitle != "" {
		sb.WriteString(fmt.Sprintf("Subject: %s\n", in.BookTitle))
	}
	if s := strings.TrimSpace(in.Snippet); s != "" {
		sb.WriteString("Topic notes from the syllabus:\n")
		sb.WriteString(s)
		sb.WriteString("\n")
	}
	if s := strings.TrimSpace(in.Syllabus); s != "" {
		sb.WriteString("\n---\nSyllabus context:\n")
		sb.WriteString(s)
		sb.WriteString("\n---\n")
	}
	sb.WriteString("\n")
	switch part {
	case PartIntroduction:
		sb.WriteString(introductionRules)
	case PartBody:
		sb.WriteString(bodyRules)
	case PartQuestions:
		sb.WriteString(questionRules)
	}
	return sb.String()
}
