// Package service provides business logic for the application.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/reviewpulse/reviewpulse/internal/cache"
	"github.com/reviewpulse/reviewpulse/internal/metrics"
	"github.com/reviewpulse/reviewpulse/internal/model"
	"github.com/reviewpulse/reviewpulse/internal/repository"
	"github.com/reviewpulse/reviewpulse/internal/stats"
)

// Service errors.
var (
	ErrInvalidQuery = errors.New("invalid statistics query")
)

// Dashboard surfaces that request statistics.
const (
	SurfaceOverview = "overview"
	SurfaceClient   = "client"
	SurfaceBranch   = "branch"
)

// ReviewSource loads the reviews a snapshot is computed from.
type ReviewSource interface {
	List(ctx context.Context, filter repository.ReviewFilter) ([]model.Review, error)
}

// SnapshotCache stores computed snapshots.
type SnapshotCache interface {
	GetSnapshot(ctx context.Context, key string) (*model.Snapshot, error)
	SetSnapshot(ctx context.Context, key string, snap *model.Snapshot, ttl time.Duration) error
}

// StatisticsConfig tunes the statistics service.
type StatisticsConfig struct {
	DefaultTimeZone string
	CacheTTL        time.Duration // 0 disables caching
	MaxRange        time.Duration // 0 means unbounded
}

// StatisticsResult is a snapshot together with the filter it was built from.
type StatisticsResult struct {
	Filter   model.StatisticsFilter
	Snapshot *model.Snapshot
	Cached   bool
}

// StatisticsService loads filtered reviews and aggregates them into snapshots.
type StatisticsService struct {
	source  ReviewSource
	cache   SnapshotCache
	cfg     StatisticsConfig
	metrics metrics.Recorder
	logger  *slog.Logger
}

// NewStatisticsService creates a new StatisticsService. A nil cache
// disables snapshot caching.
func NewStatisticsService(source ReviewSource, snapshots SnapshotCache, cfg StatisticsConfig, recorder metrics.Recorder, logger *slog.Logger) *StatisticsService {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &StatisticsService{
		source:  source,
		cache:   snapshots,
		cfg:     cfg,
		metrics: recorder,
		logger:  logger.With("component", "service.statistics"),
	}
}

// GetStatistics returns the snapshot for the reviews matching filter.
// Validation failures wrap ErrInvalidQuery.
func (s *StatisticsService) GetStatistics(ctx context.Context, surface string, filter model.StatisticsFilter) (*StatisticsResult, error) {
	if filter.TimeZone == "" {
		filter.TimeZone = s.cfg.DefaultTimeZone
	}
	if err := s.validateRange(filter); err != nil {
		return nil, err
	}

	aggregator, err := stats.New(stats.Config{TimeZone: filter.TimeZone})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidQuery, err)
	}
	filter.TimeZone = aggregator.Location().String()

	key := cache.SnapshotKey(filter)
	if snap, ok := s.lookup(ctx, key); ok {
		return &StatisticsResult{Filter: filter, Snapshot: snap, Cached: true}, nil
	}

	reviews, err := s.source.List(ctx, repository.ReviewFilter{
		ClientID:  filter.ClientID,
		BranchIDs: filter.BranchIDs,
		From:      filter.From,
		To:        filter.To,
	})
	if err != nil {
		s.metrics.IncSourceError()
		return nil, fmt.Errorf("load reviews: %w", err)
	}

	start := time.Now()
	snap := aggregator.Aggregate(reviews)
	s.metrics.ObserveAggregationDuration(time.Since(start))
	s.metrics.IncAggregation(surface)
	s.metrics.AddRecordsAggregated(snap.TotalReviews)
	s.metrics.AddRecordsSkipped(snap.SkippedCount)

	if snap.SkippedCount > 0 {
		s.logger.WarnContext(ctx, "reviews skipped for out-of-range rating",
			slog.String("surface", surface),
			slog.String("client_id", filter.ClientID),
			slog.Int("skipped", snap.SkippedCount),
		)
	}

	s.store(ctx, key, snap)

	s.logger.DebugContext(ctx, "statistics computed",
		slog.String("surface", surface),
		slog.Int("reviews", len(reviews)),
		slog.Int("total_reviews", snap.TotalReviews),
		slog.String("time_zone", filter.TimeZone),
	)

	return &StatisticsResult{Filter: filter, Snapshot: snap}, nil
}

func (s *StatisticsService) validateRange(filter model.StatisticsFilter) error {
	if filter.From == nil || filter.To == nil {
		return nil
	}
	if !filter.To.After(*filter.From) {
		return fmt.Errorf("%w: from must be before to", ErrInvalidQuery)
	}
	if s.cfg.MaxRange > 0 && filter.To.Sub(*filter.From) > s.cfg.MaxRange {
		return fmt.Errorf("%w: date range exceeds %s", ErrInvalidQuery, s.cfg.MaxRange)
	}
	return nil
}

func (s *StatisticsService) cacheEnabled() bool {
	return s.cache != nil && s.cfg.CacheTTL > 0
}

// lookup reads a cached snapshot. Cache failures are logged and treated
// as a miss.
func (s *StatisticsService) lookup(ctx context.Context, key string) (*model.Snapshot, bool) {
	if !s.cacheEnabled() {
		return nil, false
	}

	snap, err := s.cache.GetSnapshot(ctx, key)
	if err != nil {
		if !errors.Is(err, cache.ErrCacheMiss) {
			s.logger.WarnContext(ctx, "snapshot cache read failed", slog.String("error", err.Error()))
		}
		s.metrics.IncSnapshotCacheMiss()
		return nil, false
	}

	s.metrics.IncSnapshotCacheHit()
	return snap, true
}

func (s *StatisticsService) store(ctx context.Context, key string, snap *model.Snapshot) {
	if !s.cacheEnabled() {
		return
	}
	if err := s.cache.SetSnapshot(ctx, key, snap, s.cfg.CacheTTL); err != nil {
		s.logger.WarnContext(ctx, "snapshot cache write failed", slog.String("error", err.Error()))
	}
}
