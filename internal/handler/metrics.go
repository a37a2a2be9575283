package handler

import (
	"fmt"
	"net/http"
	"sort"

	"github.com/reviewpulse/reviewpulse/internal/metrics"
)

// MetricsHandler exposes in-memory metrics.
type MetricsHandler struct {
	snapshotter metrics.Snapshotter
}

// NewMetricsHandler creates a new MetricsHandler.
func NewMetricsHandler(snapshotter metrics.Snapshotter) *MetricsHandler {
	return &MetricsHandler{snapshotter: snapshotter}
}

// Metrics returns metrics in Prometheus exposition format.
func (h *MetricsHandler) Metrics(w http.ResponseWriter, r *http.Request) {
	if h.snapshotter == nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}

	snap := h.snapshotter.Snapshot()

	w.Header().Set("Content-Type", "text/plain; version=0.0.4")

	surfaces := make([]string, 0, len(snap.Aggregations))
	for surface := range snap.Aggregations {
		surfaces = append(surfaces, surface)
	}
	sort.Strings(surfaces)
	for _, surface := range surfaces {
		writeMetric(w, "reviewpulse_aggregations_total{surface=%q} %d\n", surface, snap.Aggregations[surface])
	}

	writeMetric(w, "reviewpulse_aggregation_duration_seconds_count %d\n", snap.AggregationDurationCount)
	writeMetric(w, "reviewpulse_aggregation_duration_seconds_sum %.6f\n", float64(snap.AggregationDurationTotalNs)/1e9)

	writeMetric(w, "reviewpulse_records_aggregated_total %d\n", snap.RecordsAggregated)
	writeMetric(w, "reviewpulse_records_skipped_total %d\n", snap.RecordsSkipped)

	writeMetric(w, "reviewpulse_snapshot_cache_requests_total{result=\"hit\"} %d\n", snap.SnapshotCacheHits)
	writeMetric(w, "reviewpulse_snapshot_cache_requests_total{result=\"miss\"} %d\n", snap.SnapshotCacheMisses)

	writeMetric(w, "reviewpulse_source_errors_total %d\n", snap.SourceErrors)
}

func writeMetric(w http.ResponseWriter, format string, args ...any) {
	_, _ = fmt.Fprintf(w, format, args...)
}
