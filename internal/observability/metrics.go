package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the
// poller and the request path.
type Metrics struct {
	PollerRunning  prometheus.Gauge
	PollIterations prometheus.Counter

	// Download and publish metrics.
	Downloads        *prometheus.CounterVec   // labels: family, outcome={success,error,not_published}
	DownloadDuration *prometheus.HistogramVec // labels: family
	CyclesCompleted  prometheus.Counter
	DatasetSwaps     *prometheus.CounterVec // labels: family, outcome={success,error}

	// Request path metrics.
	Requests        *prometheus.CounterVec   // labels: product, outcome={success,not_ready,invalid,empty,error}
	RequestDuration *prometheus.HistogramVec // labels: product

	// Lookup caches.
	GazetteerCache    *prometheus.CounterVec // labels: result={hit,miss}
	ForecastTextCache *prometheus.CounterVec // labels: result={hit,miss}
}

// NewMetrics creates and registers all service metrics with the default
// Prometheus registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		PollerRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "windsvc",
			Name:      "poller_running",
			Help:      "1 when the cycle poller is active, 0 when shut down.",
		}),
		PollIterations: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "windsvc",
			Name:      "poll_iterations_total",
			Help:      "Total discovery iterations against the upstream tree.",
		}),
		Downloads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "windsvc",
			Name:      "downloads_total",
			Help:      "File download attempts by family and outcome.",
		}, []string{"family", "outcome"}),
		DownloadDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "windsvc",
			Name:      "download_duration_seconds",
			Help:      "Duration of successful file downloads.",
			Buckets:   []float64{1, 5, 15, 30, 60, 120, 300, 600},
		}, []string{"family"}),
		CyclesCompleted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "windsvc",
			Name:      "cycles_completed_total",
			Help:      "Forecast cycles for which every family's file was downloaded.",
		}),
		DatasetSwaps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "windsvc",
			Name:      "dataset_swaps_total",
			Help:      "Dataset handle reloads by family and outcome.",
		}, []string{"family", "outcome"}),
		Requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "windsvc",
			Name:      "requests_total",
			Help:      "Product requests by product and outcome.",
		}, []string{"product", "outcome"}),
		RequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "windsvc",
			Name:      "request_duration_seconds",
			Help:      "Duration of product request processing.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}, []string{"product"}),
		GazetteerCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "windsvc",
			Name:      "gazetteer_cache_total",
			Help:      "Name-to-box cache lookups by result.",
		}, []string{"result"}),
		ForecastTextCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "windsvc",
			Name:      "forecast_text_cache_total",
			Help:      "Marine forecast text cache lookups by result.",
		}, []string{"result"}),
	}

	prometheus.MustRegister(
		m.PollerRunning,
		m.PollIterations,
		m.Downloads,
		m.DownloadDuration,
		m.CyclesCompleted,
		m.DatasetSwaps,
		m.Requests,
		m.RequestDuration,
		m.GazetteerCache,
		m.ForecastTextCache,
	)

	return m
}

// NewMetricsForTesting creates Metrics without registering them, to
// avoid "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return &Metrics{
		PollerRunning:     prometheus.NewGauge(prometheus.GaugeOpts{Namespace: "windsvc", Name: "poller_running"}),
		PollIterations:    prometheus.NewCounter(prometheus.CounterOpts{Namespace: "windsvc", Name: "poll_iterations_total"}),
		Downloads:         prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "windsvc", Name: "downloads_total"}, []string{"family", "outcome"}),
		DownloadDuration:  prometheus.NewHistogramVec(prometheus.HistogramOpts{Namespace: "windsvc", Name: "download_duration_seconds"}, []string{"family"}),
		CyclesCompleted:   prometheus.NewCounter(prometheus.CounterOpts{Namespace: "windsvc", Name: "cycles_completed_total"}),
		DatasetSwaps:      prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "windsvc", Name: "dataset_swaps_total"}, []string{"family", "outcome"}),
		Requests:          prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "windsvc", Name: "requests_total"}, []string{"product", "outcome"}),
		RequestDuration:   prometheus.NewHistogramVec(prometheus.HistogramOpts{Namespace: "windsvc", Name: "request_duration_seconds"}, []string{"product"}),
		GazetteerCache:    prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "windsvc", Name: "gazetteer_cache_total"}, []string{"result"}),
		ForecastTextCache: prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "windsvc", Name: "forecast_text_cache_total"}, []string{"result"}),
	}
}
