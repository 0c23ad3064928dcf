package model

import "time"

// Metadata keys stored on a scraped record.
const (
	MetaTitle       = "title"
	MetaDescription = "description"
	MetaURL         = "url"
	MetaError       = "error"
)

// Fallbacks used when a page has no title or description.
const (
	NoTitle       = "No title"
	NoDescription = "No description"
)

// Metadata is the small string map attached to a scraped record.
type Metadata map[string]string

// Title returns the title, falling back to NoTitle.
func (m Metadata) Title() string {
	if v := m[MetaTitle]; v != "" {
		return v
	}
	return NoTitle
}

// Description returns the description, falling back to NoDescription.
func (m Metadata) Description() string {
	if v := m[MetaDescription]; v != "" {
		return v
	}
	return NoDescription
}

// Error returns the recorded fetch error, if any.
func (m Metadata) Error() string {
	return m[MetaError]
}

// ScrapedRecord is the persisted result of scraping one page.
type ScrapedRecord struct {
	ID        string    `json:"id"`
	URL       string    `json:"url"`
	Content   string    `json:"content"`
	Metadata  Metadata  `json:"metadata"`
	UserID    string    `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}

// Excerpt returns at most n runes of the content, with an ellipsis when cut.
func (r *ScrapedRecord) Excerpt(n int) string {
	runes := []rune(r.Content)
	if len(runes) <= n {
		return r.Content
	}
	return string(runes[:n]) + "..."
}
