// Package metrics provides lightweight hooks for instrumentation.
package metrics

import "time"

// Recorder captures metric events for the application.
// Implementations can expose these to Prometheus, StatsD, etc.
type Recorder interface {
	// Aggregation metrics
	IncAggregation(surface string) // surface: "overview", "client", "branch"
	ObserveAggregationDuration(duration time.Duration)
	AddRecordsAggregated(n int)
	AddRecordsSkipped(n int)

	// Snapshot cache metrics
	IncSnapshotCacheHit()
	IncSnapshotCacheMiss()

	// Review source metrics
	IncSourceError()
}

// Snapshotter exposes a snapshot of current metrics.
type Snapshotter interface {
	Snapshot() Snapshot
}
