package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "reviewpulse"

// PrometheusRecorder exports metrics through a Prometheus registry.
type PrometheusRecorder struct {
	aggregations        *prometheus.CounterVec
	aggregationDuration prometheus.Histogram
	recordsAggregated   prometheus.Counter
	recordsSkipped      prometheus.Counter
	cacheResults        *prometheus.CounterVec
	sourceErrors        prometheus.Counter
}

// NewPrometheus creates a PrometheusRecorder and registers its collectors.
func NewPrometheus(reg prometheus.Registerer) (*PrometheusRecorder, error) {
	r := &PrometheusRecorder{
		aggregations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "aggregations_total",
			Help:      "Statistics snapshots computed, by dashboard surface.",
		}, []string{"surface"}),
		aggregationDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "aggregation_duration_seconds",
			Help:      "Time spent aggregating reviews into a snapshot.",
			Buckets:   []float64{.0005, .001, .005, .01, .025, .05, .1, .25, .5, 1},
		}),
		recordsAggregated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "records_aggregated_total",
			Help:      "Reviews with a valid rating that were aggregated.",
		}),
		recordsSkipped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "records_skipped_total",
			Help:      "Reviews excluded for an out-of-range rating.",
		}),
		cacheResults: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "snapshot_cache_requests_total",
			Help:      "Snapshot cache lookups, by result.",
		}, []string{"result"}),
		sourceErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "source_errors_total",
			Help:      "Failed review source queries.",
		}),
	}

	collectors := []prometheus.Collector{
		r.aggregations,
		r.aggregationDuration,
		r.recordsAggregated,
		r.recordsSkipped,
		r.cacheResults,
		r.sourceErrors,
	}
	for _, c := range collectors {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}

	return r, nil
}

// IncAggregation increments the aggregation counter for a surface.
func (r *PrometheusRecorder) IncAggregation(surface string) {
	r.aggregations.WithLabelValues(surface).Inc()
}

// ObserveAggregationDuration records aggregation duration.
func (r *PrometheusRecorder) ObserveAggregationDuration(duration time.Duration) {
	r.aggregationDuration.Observe(duration.Seconds())
}

// AddRecordsAggregated adds to the aggregated records counter.
func (r *PrometheusRecorder) AddRecordsAggregated(n int) {
	if n > 0 {
		r.recordsAggregated.Add(float64(n))
	}
}

// AddRecordsSkipped adds to the skipped records counter.
func (r *PrometheusRecorder) AddRecordsSkipped(n int) {
	if n > 0 {
		r.recordsSkipped.Add(float64(n))
	}
}

// IncSnapshotCacheHit increments cache hit counter.
func (r *PrometheusRecorder) IncSnapshotCacheHit() {
	r.cacheResults.WithLabelValues("hit").Inc()
}

// IncSnapshotCacheMiss increments cache miss counter.
func (r *PrometheusRecorder) IncSnapshotCacheMiss() {
	r.cacheResults.WithLabelValues("miss").Inc()
}

// IncSourceError increments review source error counter.
func (r *PrometheusRecorder) IncSourceError() {
	r.sourceErrors.Inc()
}
