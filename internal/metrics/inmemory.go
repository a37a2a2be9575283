package metrics

import (
	"sync"
	"sync/atomic"
	"time"
)

// Snapshot captures current in-memory counters.
type Snapshot struct {
	Aggregations               map[string]uint64
	AggregationDurationCount   uint64
	AggregationDurationTotalNs int64
	RecordsAggregated          uint64
	RecordsSkipped             uint64
	SnapshotCacheHits          uint64
	SnapshotCacheMisses        uint64
	SourceErrors               uint64
}

// InMemoryRecorder stores metrics in memory.
type InMemoryRecorder struct {
	mu           sync.Mutex
	aggregations map[string]uint64

	aggregationDurationCount   uint64
	aggregationDurationTotalNs int64
	recordsAggregated          uint64
	recordsSkipped             uint64
	snapshotCacheHits          uint64
	snapshotCacheMisses        uint64
	sourceErrors               uint64
}

// NewInMemory returns a Recorder that stores counters in memory.
func NewInMemory() *InMemoryRecorder {
	return &InMemoryRecorder{aggregations: make(map[string]uint64)}
}

// Snapshot returns a copy of the counters.
func (m *InMemoryRecorder) Snapshot() Snapshot {
	m.mu.Lock()
	aggregations := make(map[string]uint64, len(m.aggregations))
	for surface, count := range m.aggregations {
		aggregations[surface] = count
	}
	m.mu.Unlock()

	return Snapshot{
		Aggregations:               aggregations,
		AggregationDurationCount:   atomic.LoadUint64(&m.aggregationDurationCount),
		AggregationDurationTotalNs: atomic.LoadInt64(&m.aggregationDurationTotalNs),
		RecordsAggregated:          atomic.LoadUint64(&m.recordsAggregated),
		RecordsSkipped:             atomic.LoadUint64(&m.recordsSkipped),
		SnapshotCacheHits:          atomic.LoadUint64(&m.snapshotCacheHits),
		SnapshotCacheMisses:        atomic.LoadUint64(&m.snapshotCacheMisses),
		SourceErrors:               atomic.LoadUint64(&m.sourceErrors),
	}
}

// IncAggregation increments the aggregation counter for a surface.
func (m *InMemoryRecorder) IncAggregation(surface string) {
	m.mu.Lock()
	m.aggregations[surface]++
	m.mu.Unlock()
}

// ObserveAggregationDuration records aggregation duration.
func (m *InMemoryRecorder) ObserveAggregationDuration(duration time.Duration) {
	atomic.AddUint64(&m.aggregationDurationCount, 1)
	atomic.AddInt64(&m.aggregationDurationTotalNs, duration.Nanoseconds())
}

// AddRecordsAggregated adds to the aggregated records counter.
func (m *InMemoryRecorder) AddRecordsAggregated(n int) {
	if n > 0 {
		atomic.AddUint64(&m.recordsAggregated, uint64(n))
	}
}

// AddRecordsSkipped adds to the skipped records counter.
func (m *InMemoryRecorder) AddRecordsSkipped(n int) {
	if n > 0 {
		atomic.AddUint64(&m.recordsSkipped, uint64(n))
	}
}

// IncSnapshotCacheHit increments cache hit counter.
func (m *InMemoryRecorder) IncSnapshotCacheHit() {
	atomic.AddUint64(&m.snapshotCacheHits, 1)
}

// IncSnapshotCacheMiss increments cache miss counter.
func (m *InMemoryRecorder) IncSnapshotCacheMiss() {
	atomic.AddUint64(&m.snapshotCacheMisses, 1)
}

// IncSourceError increments review source error counter.
func (m *InMemoryRecorder) IncSourceError() {
	atomic.AddUint64(&m.sourceErrors, 1)
}
