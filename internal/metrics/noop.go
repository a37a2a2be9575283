package metrics

import "time"

// NoopRecorder implements Recorder with no-op methods.
type NoopRecorder struct{}

// NewNoop returns a Recorder that discards all metrics.
func NewNoop() Recorder {
	return &NoopRecorder{}
}

// IncAggregation is a no-op.
func (n *NoopRecorder) IncAggregation(surface string) {}

// ObserveAggregationDuration is a no-op.
func (n *NoopRecorder) ObserveAggregationDuration(duration time.Duration) {}

// AddRecordsAggregated is a no-op.
func (n *NoopRecorder) AddRecordsAggregated(count int) {}

// AddRecordsSkipped is a no-op.
func (n *NoopRecorder) AddRecordsSkipped(count int) {}

// IncSnapshotCacheHit is a no-op.
func (n *NoopRecorder) IncSnapshotCacheHit() {}

// IncSnapshotCacheMiss is a no-op.
func (n *NoopRecorder) IncSnapshotCacheMiss() {}

// IncSourceError is a no-op.
func (n *NoopRecorder) IncSourceError() {}
