// Package summarizer turns extracted page text into a short summary using an
// external text-generation model.
package summarizer

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

const (
	// DefaultModel is used when no model name is configured.
	DefaultModel = "gemini-1.5-flash-latest"

	// maxPromptChars caps the content embedded in a prompt.
	maxPromptChars = 30000
)

var (
	// ErrNotConfigured is returned when no API key was provided.
	ErrNotConfigured = errors.New("summarizer not configured")
	// ErrEmptyOutput is returned when the model produced no text.
	ErrEmptyOutput = errors.New("summarizer returned no text")
)

// Summarizer produces a summary of text.
type Summarizer interface {
	Summarize(ctx context.Context, text string) (string, error)
}

const promptTemplate = `Summarize the following web page content in a few short paragraphs.
Focus on the main points and leave out navigation text, boilerplate and advertising.
If the content is not meaningful, say so in one sentence.

Content:
%s`

// BuildPrompt wraps text in the summarization prompt, truncating it to
// maxPromptChars runes.
func BuildPrompt(text string) string {
	text = strings.TrimSpace(text)
	if runes := []rune(text); len(runes) > maxPromptChars {
		text = string(runes[:maxPromptChars])
	}
	return fmt.Sprintf(promptTemplate, text)
}

// Disabled is the Summarizer used when no API key is configured.
type Disabled struct{}

// Summarize always returns ErrNotConfigured.
func (Disabled) Summarize(context.Context, string) (string, error) {
	return "", ErrNotConfigured
}
