// Package dto provides Data Transfer Objects for JSON responses.
package dto

import (
	"time"

	"github.com/pagescribe/pagescribe/internal/model"
)

// ErrorResponse represents an error.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// ScrapeResponse is returned by POST /scrape.
type ScrapeResponse struct {
	Message         string `json:"message"`
	ID              string `json:"id"`
	PromptLogID     string `json:"prompt_log_id,omitempty"`
	GeneratedOutput string `json:"generated_output,omitempty"`
	SummaryError    string `json:"summary_error,omitempty"`
}

// GenerateResponse is returned by POST /generate_prompt_response.
type GenerateResponse struct {
	Message         string `json:"message"`
	ID              string `json:"id"`
	GeneratedOutput string `json:"generated_output"`
}

// UserResponse represents the signed-in user.
type UserResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	AvatarURL string `json:"avatar_url,omitempty"`
}

// ScrapedRecordResponse represents a scraped record.
type ScrapedRecordResponse struct {
	ID          string            `json:"id"`
	URL         string            `json:"url"`
	Title       string            `json:"title"`
	Description string            `json:"description"`
	Content     string            `json:"content"`
	Metadata    map[string]string `json:"metadata"`
	CreatedAt   time.Time         `json:"created_at"`
}

// PromptLogResponse represents a prompt log.
type PromptLogResponse struct {
	ID              string    `json:"id"`
	PromptText      string    `json:"prompt_text"`
	GeneratedOutput string    `json:"generated_output"`
	CreatedAt       time.Time `json:"created_at"`
}

// DashboardResponse is the JSON form of the dashboard.
type DashboardResponse struct {
	User        UserResponse            `json:"user"`
	ScrapedData []ScrapedRecordResponse `json:"scraped_data"`
	PromptLogs  []PromptLogResponse     `json:"prompt_logs"`
}

// ToUserResponse converts a User model.
func ToUserResponse(user *model.User) UserResponse {
	return UserResponse{
		ID:        user.ID,
		Name:      user.Name,
		Email:     user.Email,
		AvatarURL: user.AvatarURL,
	}
}

// ToScrapedRecordResponse converts a ScrapedRecord model.
func ToScrapedRecordResponse(rec *model.ScrapedRecord) ScrapedRecordResponse {
	meta := make(map[string]string, len(rec.Metadata))
	for k, v := range rec.Metadata {
		meta[k] = v
	}
	return ScrapedRecordResponse{
		ID:          rec.ID,
		URL:         rec.URL,
		Title:       rec.Metadata.Title(),
		Description: rec.Metadata.Description(),
		Content:     rec.Content,
		Metadata:    meta,
		CreatedAt:   rec.CreatedAt,
	}
}

// ToPromptLogResponse converts a PromptLog model.
func ToPromptLogResponse(log *model.PromptLog) PromptLogResponse {
	return PromptLogResponse{
		ID:              log.ID,
		PromptText:      log.PromptText,
		GeneratedOutput: log.GeneratedOutput,
		CreatedAt:       log.CreatedAt,
	}
}

// ToDashboardResponse builds the dashboard payload. Lists are never null.
func ToDashboardResponse(user *model.User, records []*model.ScrapedRecord, logs []*model.PromptLog) *DashboardResponse {
	resp := &DashboardResponse{
		User:        ToUserResponse(user),
		ScrapedData: make([]ScrapedRecordResponse, 0, len(records)),
		PromptLogs:  make([]PromptLogResponse, 0, len(logs)),
	}
	for _, rec := range records {
		resp.ScrapedData = append(resp.ScrapedData, ToScrapedRecordResponse(rec))
	}
	for _, log := range logs {
		resp.PromptLogs = append(resp.PromptLogs, ToPromptLogResponse(log))
	}
	return resp
}
