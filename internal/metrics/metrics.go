// Package metrics provides lightweight hooks for instrumentation.
package metrics

import "time"

// Status labels shared by scrape and summary metrics.
const (
	StatusSuccess = "success"
	StatusFailed  = "failed"
	StatusInvalid = "invalid"
)

// Login result labels.
const (
	LoginSuccess      = "success"
	LoginInvalidState = "invalid_state"
	LoginRejected     = "rejected"
	LoginError        = "error"
)

// Recorder captures metric events for the application.
type Recorder interface {
	// Scrape metrics
	IncScrape(status string)
	ObserveFetchDuration(duration time.Duration)

	// Summarizer metrics
	IncSummary(status string)
	ObserveSummaryDuration(duration time.Duration)

	// Login metrics
	IncLogin(result string)
}
