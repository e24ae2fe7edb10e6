package translator

import (
	"context"
	"fmt"
	"strings"

	"github.com/yaaintmal/path-ai-sub000/internal/llm"
)

// llmTranslator is the LLM-backed implementation of both translation
// collaborators. One chat completion per call, no retries: retry policy
// belongs to the job queue, not here.
type llmTranslator struct {
	client *llm.Client
}

// NewLLMTranslator builds a translator over an OpenAI-compatible client.
func NewLLMTranslator(client *llm.Client) interface {
	LineTranslator
	TextTranslator
} {
	return &llmTranslator{client: client}
}

func (t *llmTranslator) TranslateLines(
	ctx context.Context,
	lines []string,
	targetLanguage string,
) ([]string, error) {
	systemPrompt := buildLinePrompt(len(lines), targetLanguage)
	payload := strings.Join(lines, "\n")

	content, err := t.client.SimpleChat(ctx, payload, systemPrompt)
	if err != nil {
		return nil, fmt.Errorf("line translation request failed: %w", err)
	}

	raw := strings.Split(strings.ReplaceAll(strings.TrimSpace(content), "\r\n", "\n"), "\n")
	ret := make([]string, len(raw))
	for i, line := range raw {
		ret[i] = strings.TrimSpace(line)
	}
	return ret, nil
}

func (t *llmTranslator) TranslateText(
	ctx context.Context,
	text string,
	targetLanguage string,
) (string, error) {
	systemPrompt := buildTextPrompt(targetLanguage)

	content, err := t.client.SimpleChat(ctx, text, systemPrompt)
	if err != nil {
		return "", fmt.Errorf("text translation request failed: %w", err)
	}
	return strings.TrimSpace(content), nil
}

// buildLinePrompt builds the system prompt for line-preserving subtitle
// translation.
func buildLinePrompt(lineCount int, targetLanguage string) string {
	var prompt strings.Builder

	prompt.WriteString("You are a professional subtitle translator for educational videos. Translate each input line into " + targetLanguage + ".\n\n")

	prompt.WriteString("=== RULES ===\n")
	prompt.WriteString(fmt.Sprintf("1. The input contains exactly %d lines. Return exactly %d lines in the same order.\n", lineCount, lineCount))
	prompt.WriteString("2. Translate each line independently; never merge or split lines.\n")
	prompt.WriteString("3. Return a blank line for a blank input line.\n")
	prompt.WriteString("4. Keep technical terms and proper nouns consistent across lines.\n")

	prompt.WriteString("\n=== OUTPUT FORMAT ===\n")
	prompt.WriteString("Return ONLY the translated lines, one per line.\n")
	prompt.WriteString("Do not add numbering, timestamps, explanations, or any other text.\n")

	return prompt.String()
}

// buildTextPrompt builds the system prompt for the plain-text fallback.
func buildTextPrompt(targetLanguage string) string {
	var prompt strings.Builder

	prompt.WriteString("You are a professional translator for educational content. Translate the user's text into " + targetLanguage + ".\n")
	prompt.WriteString("Return ONLY the translated text with no explanations or notes.\n")

	return prompt.String()
}
