package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the
// retrieval batch.
type Metrics struct {
	TimestepsProcessed prometheus.Counter
	TimestepsMissing   *prometheus.CounterVec // label: reason={fetch,extract,timeout,internal}
	RecordsExtracted   prometheus.Counter
	BatchRunning       prometheus.Gauge

	FetchDuration   prometheus.Histogram
	ExtractDuration prometheus.Histogram
	FetchBytes      prometheus.Histogram

	// Resolver metrics.
	ResolveRequests *prometheus.CounterVec // labels: outcome={success,error,empty}
	ResolveCache    *prometheus.CounterVec // labels: result={hit,miss}
}

// NewMetrics creates and registers all batch metrics with the default
// Prometheus registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		TimestepsProcessed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "nwm_retrieval",
			Name:      "timesteps_processed_total",
			Help:      "Total timestep tasks that produced flow records.",
		}),
		TimestepsMissing: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "nwm_retrieval",
			Name:      "timesteps_missing_total",
			Help:      "Total timestep tasks converted to missing records, by reason.",
		}, []string{"reason"}),
		RecordsExtracted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "nwm_retrieval",
			Name:      "records_extracted_total",
			Help:      "Total flow records matched to target feature IDs.",
		}),
		BatchRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "nwm_retrieval",
			Name:      "batch_running",
			Help:      "1 while the worker pool is draining the study period, 0 otherwise.",
		}),
		FetchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "nwm_retrieval",
			Name:      "fetch_duration_seconds",
			Help:      "Duration of one timestep file download.",
			Buckets:   []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
		}),
		ExtractDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "nwm_retrieval",
			Name:      "extract_duration_seconds",
			Help:      "Duration of one timestep NetCDF parse and filter.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}),
		FetchBytes: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "nwm_retrieval",
			Name:      "fetch_bytes",
			Help:      "Size of one downloaded timestep file.",
			Buckets:   prometheus.ExponentialBuckets(1<<20, 2, 10),
		}),
		ResolveRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "nwm_retrieval",
			Name:      "resolve_requests_total",
			Help:      "NLDI position lookups by outcome.",
		}, []string{"outcome"}),
		ResolveCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "nwm_retrieval",
			Name:      "resolve_cache_total",
			Help:      "Resolver cache lookups by result.",
		}, []string{"result"}),
	}

	prometheus.MustRegister(
		m.TimestepsProcessed,
		m.TimestepsMissing,
		m.RecordsExtracted,
		m.BatchRunning,
		m.FetchDuration,
		m.ExtractDuration,
		m.FetchBytes,
		m.ResolveRequests,
		m.ResolveCache,
	)

	return m
}

// NewMetricsForTesting creates Metrics without registering them, so tests can
// construct fresh instances without "already registered" panics.
func NewMetricsForTesting() *Metrics {
	return &Metrics{
		TimestepsProcessed: prometheus.NewCounter(prometheus.CounterOpts{Namespace: "nwm_retrieval", Name: "timesteps_processed_total"}),
		TimestepsMissing:   prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "nwm_retrieval", Name: "timesteps_missing_total"}, []string{"reason"}),
		RecordsExtracted:   prometheus.NewCounter(prometheus.CounterOpts{Namespace: "nwm_retrieval", Name: "records_extracted_total"}),
		BatchRunning:       prometheus.NewGauge(prometheus.GaugeOpts{Namespace: "nwm_retrieval", Name: "batch_running"}),
		FetchDuration:      prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: "nwm_retrieval", Name: "fetch_duration_seconds"}),
		ExtractDuration:    prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: "nwm_retrieval", Name: "extract_duration_seconds"}),
		FetchBytes:         prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: "nwm_retrieval", Name: "fetch_bytes"}),
		ResolveRequests:    prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "nwm_retrieval", Name: "resolve_requests_total"}, []string{"outcome"}),
		ResolveCache:       prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "nwm_retrieval", Name: "resolve_cache_total"}, []string{"result"}),
	}
}
