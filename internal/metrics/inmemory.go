package metrics

import (
	"sync"
	"sync/atomic"
	"time"
)

// Snapshot captures current in-memory counters.
type Snapshot struct {
	Scrapes              map[string]uint64
	FetchDurationCount   uint64
	FetchDurationTotalNs int64
	Summaries            map[string]uint64
	SummaryDurationCount uint64
	Logins               map[string]uint64
}

// InMemoryRecorder stores metrics in memory for tests.
type InMemoryRecorder struct {
	mu        sync.Mutex
	scrapes   map[string]uint64
	summaries map[string]uint64
	logins    map[string]uint64

	fetchDurationCount   uint64
	fetchDurationTotalNs int64
	summaryDurationCount uint64
}

// NewInMemory returns a Recorder that stores counters in memory.
func NewInMemory() *InMemoryRecorder {
	return &InMemoryRecorder{
		scrapes:   make(map[string]uint64),
		summaries: make(map[string]uint64),
		logins:    make(map[string]uint64),
	}
}

// Snapshot returns a copy of the counters.
func (m *InMemoryRecorder) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()

	return Snapshot{
		Scrapes:              copyCounts(m.scrapes),
		FetchDurationCount:   atomic.LoadUint64(&m.fetchDurationCount),
		FetchDurationTotalNs: atomic.LoadInt64(&m.fetchDurationTotalNs),
		Summaries:            copyCounts(m.summaries),
		SummaryDurationCount: atomic.LoadUint64(&m.summaryDurationCount),
		Logins:               copyCounts(m.logins),
	}
}

// IncScrape increments the scrape counter for status.
func (m *InMemoryRecorder) IncScrape(status string) {
	m.inc(m.scrapes, status)
}

// ObserveFetchDuration records page fetch duration.
func (m *InMemoryRecorder) ObserveFetchDuration(duration time.Duration) {
	atomic.AddUint64(&m.fetchDurationCount, 1)
	atomic.AddInt64(&m.fetchDurationTotalNs, duration.Nanoseconds())
}

// IncSummary increments the summary counter for status.
func (m *InMemoryRecorder) IncSummary(status string) {
	m.inc(m.summaries, status)
}

// ObserveSummaryDuration records summarizer call duration.
func (m *InMemoryRecorder) ObserveSummaryDuration(duration time.Duration) {
	atomic.AddUint64(&m.summaryDurationCount, 1)
}

// IncLogin increments the login counter for result.
func (m *InMemoryRecorder) IncLogin(result string) {
	m.inc(m.logins, result)
}

func (m *InMemoryRecorder) inc(counts map[string]uint64, label string) {
	m.mu.Lock()
	counts[label]++
	m.mu.Unlock()
}

func copyCounts(src map[string]uint64) map[string]uint64 {
	out := make(map[string]uint64, len(src))
	for k, v := range src {
		out[k] = v
	}
	return out
}
