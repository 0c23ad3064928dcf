package metrics

import "time"

// NoopRecorder implements Recorder with no-op methods.
type NoopRecorder struct{}

// NewNoop returns a Recorder that discards all metrics.
func NewNoop() Recorder {
	return &NoopRecorder{}
}

// IncScrape is a no-op.
func (n *NoopRecorder) IncScrape(status string) {}

// ObserveFetchDuration is a no-op.
func (n *NoopRecorder) ObserveFetchDuration(duration time.Duration) {}

// IncSummary is a no-op.
func (n *NoopRecorder) IncSummary(status string) {}

// ObserveSummaryDuration is a no-op.
func (n *NoopRecorder) ObserveSummaryDuration(duration time.Duration) {}

// IncLogin is a no-op.
func (n *NoopRecorder) IncLogin(result string) {}
