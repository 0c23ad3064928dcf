package model

import "time"

// PromptLog records one summarization request and its output.
type PromptLog struct {
	ID              string    `json:"id"`
	PromptText      string    `json:"prompt_text"`
	GeneratedOutput string    `json:"generated_output"`
	UserID          string    `json:"user_id"`
	CreatedAt       time.Time `json:"created_at"`
}
