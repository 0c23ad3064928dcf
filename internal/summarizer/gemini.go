package summarizer

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

const (
	temperature     = 0.2
	maxOutputTokens = 1024
)

// Gemini summarizes text with a Google Gemini model.
type Gemini struct {
	client *genai.Client
	model  string
}

// NewGemini creates a Gemini summarizer. Extra client options are appended
// after the API key.
func NewGemini(ctx context.Context, apiKey, model string, opts ...option.ClientOption) (*Gemini, error) {
	if apiKey == "" {
		return nil, ErrNotConfigured
	}
	if model == "" {
		model = DefaultModel
	}

	opts = append([]option.ClientOption{option.WithAPIKey(apiKey)}, opts...)
	client, err := genai.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}

	return &Gemini{client: client, model: model}, nil
}

// Summarize sends text wrapped in the summary prompt. No retry.
func (g *Gemini) Summarize(ctx context.Context, text string) (string, error) {
	model := g.client.GenerativeModel(g.model)
	model.SetTemperature(temperature)
	model.SetMaxOutputTokens(maxOutputTokens)

	resp, err := model.GenerateContent(ctx, genai.Text(BuildPrompt(text)))
	if err != nil {
		return "", fmt.Errorf("gemini generate content: %w", err)
	}

	return responseText(resp)
}

// Close releases the underlying client.
func (g *Gemini) Close() error {
	return g.client.Close()
}

// responseText concatenates the text parts of the first candidate.
func responseText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", ErrEmptyOutput
	}

	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			b.WriteString(string(txt))
		}
	}

	out := strings.TrimSpace(b.String())
	if out == "" {
		return "", ErrEmptyOutput
	}
	return out, nil
}
