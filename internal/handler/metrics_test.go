package handler

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/reviewpulse/reviewpulse/internal/metrics"
)

func TestMetricsHandler_InMemory(t *testing.T) {
	recorder := metrics.NewInMemory()
	recorder.IncAggregation("overview")
	recorder.IncAggregation("client")
	recorder.IncAggregation("client")
	recorder.ObserveAggregationDuration(1500 * time.Microsecond)
	recorder.AddRecordsAggregated(12)
	recorder.AddRecordsSkipped(2)
	recorder.IncSnapshotCacheHit()
	recorder.IncSnapshotCacheMiss()

	h := NewMetricsHandler(recorder)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()

	h.Metrics(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}

	body := rec.Body.String()
	for _, want := range []string{
		`reviewpulse_aggregations_total{surface="client"} 2`,
		`reviewpulse_aggregations_total{surface="overview"} 1`,
		"reviewpulse_aggregation_duration_seconds_count 1",
		"reviewpulse_aggregation_duration_seconds_sum 0.001500",
		"reviewpulse_records_aggregated_total 12",
		"reviewpulse_records_skipped_total 2",
		`reviewpulse_snapshot_cache_requests_total{result="hit"} 1`,
		`reviewpulse_snapshot_cache_requests_total{result="miss"} 1`,
		"reviewpulse_source_errors_total 0",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("expected metrics to contain %q\n%s", want, body)
		}
	}

	if strings.Index(body, `surface="client"`) > strings.Index(body, `surface="overview"`) {
		t.Error("expected surfaces in sorted order")
	}
}

func TestMetricsHandler_NoSnapshotter(t *testing.T) {
	h := NewMetricsHandler(nil)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()

	h.Metrics(rec, req)

	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("expected status 503, got %d", rec.Code)
	}
}
