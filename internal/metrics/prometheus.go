package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "pagescribe"

// PrometheusRecorder exports metrics through a dedicated registry.
type PrometheusRecorder struct {
	registry *prometheus.Registry

	scrapes         *prometheus.CounterVec
	fetchDuration   prometheus.Histogram
	summaries       *prometheus.CounterVec
	summaryDuration prometheus.Histogram
	logins          *prometheus.CounterVec
}

// NewPrometheus creates a recorder with its own registry, including Go
// runtime and process collectors.
func NewPrometheus() *PrometheusRecorder {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &PrometheusRecorder{
		registry: reg,
		scrapes: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "scrapes_total",
			Help:      "Scrape requests by outcome.",
		}, []string{"status"}),
		fetchDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "fetch_duration_seconds",
			Help:      "Time spent fetching and extracting a page.",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}),
		summaries: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "summaries_total",
			Help:      "Summarizer calls by outcome.",
		}, []string{"status"}),
		summaryDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "summary_duration_seconds",
			Help:      "Time spent waiting for the summarizer.",
			Buckets:   []float64{0.5, 1, 2, 5, 10, 20, 40},
		}),
		logins: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "logins_total",
			Help:      "Login callbacks by result.",
		}, []string{"result"}),
	}
}

// Handler serves the registry in the Prometheus exposition format.
func (p *PrometheusRecorder) Handler() http.Handler {
	return promhttp.HandlerFor(p.registry, promhttp.HandlerOpts{})
}

// IncScrape increments the scrape counter for status.
func (p *PrometheusRecorder) IncScrape(status string) {
	p.scrapes.WithLabelValues(status).Inc()
}

// ObserveFetchDuration records page fetch duration.
func (p *PrometheusRecorder) ObserveFetchDuration(duration time.Duration) {
	p.fetchDuration.Observe(duration.Seconds())
}

// IncSummary increments the summary counter for status.
func (p *PrometheusRecorder) IncSummary(status string) {
	p.summaries.WithLabelValues(status).Inc()
}

// ObserveSummaryDuration records summarizer call duration.
func (p *PrometheusRecorder) ObserveSummaryDuration(duration time.Duration) {
	p.summaryDuration.Observe(duration.Seconds())
}

// IncLogin increments the login counter for result.
func (p *PrometheusRecorder) IncLogin(result string) {
	p.logins.WithLabelValues(result).Inc()
}
