//go:build integration

package handler

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/reviewpulse/reviewpulse/internal/cache"
	"github.com/reviewpulse/reviewpulse/internal/handler/dto"
	"github.com/reviewpulse/reviewpulse/internal/metrics"
	"github.com/reviewpulse/reviewpulse/internal/model"
	"github.com/reviewpulse/reviewpulse/internal/repository"
	"github.com/reviewpulse/reviewpulse/internal/service"
	"github.com/reviewpulse/reviewpulse/internal/testutil"
)

func TestStatisticsEndToEnd(t *testing.T) {
	ctx := context.Background()
	dbURL := testutil.RequireEnv(t, "DATABASE_URL")
	redisURL := testutil.RequireEnv(t, "REDIS_URL")

	repo, err := repository.New(ctx, dbURL)
	if err != nil {
		t.Fatalf("connect db: %v", err)
	}
	t.Cleanup(repo.Close)

	unlock, err := testutil.AcquireDBLock(ctx, repo.Pool())
	if err != nil {
		t.Fatalf("acquire db lock: %v", err)
	}
	t.Cleanup(func() {
		_ = unlock()
	})

	if err := testutil.ResetReviewsSchema(ctx, repo.Pool()); err != nil {
		t.Fatalf("reset reviews schema: %v", err)
	}

	cacheClient, err := cache.New(ctx, redisURL)
	if err != nil {
		t.Fatalf("connect redis: %v", err)
	}
	t.Cleanup(func() {
		_ = cacheClient.Close()
	})

	if err := testutil.FlushRedis(ctx, cacheClient.Client()); err != nil {
		t.Fatalf("flush redis: %v", err)
	}

	// Two reviews straddle midnight in Ho Chi Minh City (UTC+7).
	base := time.Date(2024, 5, 1, 20, 0, 0, 0, time.UTC)
	reviews := []model.Review{
		testutil.NewTestReview(t, "client-e2e", "branch-1", 10, base),
		testutil.NewTestReview(t, "client-e2e", "branch-1", 9, base.Add(-8*time.Hour)),
		testutil.NewTestReview(t, "client-e2e", "branch-2", 3, base.Add(-8*time.Hour)),
		testutil.NewTestReview(t, "client-e2e", "branch-2", 0, base),
		testutil.NewTestReview(t, "client-other", "branch-9", 1, base),
	}
	reviews[0].FeedbackType = model.FeedbackPositive
	reviews[2].FeedbackType = model.FeedbackNegative
	if err := repository.NewReviewRepository(repo).BulkInsert(ctx, reviews); err != nil {
		t.Fatalf("insert reviews: %v", err)
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	recorder := metrics.NewInMemory()
	svc := service.NewStatisticsService(
		repository.NewReviewRepository(repo),
		cacheClient,
		service.StatisticsConfig{DefaultTimeZone: "UTC", CacheTTL: time.Minute, MaxRange: 366 * 24 * time.Hour},
		recorder,
		logger,
	)
	h := NewStatisticsHandler(svc, "UTC", logger)

	router := chi.NewRouter()
	router.Get("/api/v1/clients/{clientID}/statistics", h.Client)
	router.Get("/api/v1/clients/{clientID}/branches/{branchID}/statistics", h.Branch)

	get := func(target string) dto.StatisticsResponse {
		t.Helper()
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
		if rec.Code != http.StatusOK {
			t.Fatalf("GET %s: status %d: %s", target, rec.Code, rec.Body.String())
		}
		var resp dto.StatisticsResponse
		if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
			t.Fatalf("decode response: %v", err)
		}
		return resp
	}

	target := "/api/v1/clients/client-e2e/statistics?from=2024-05-01&to=2024-05-02&tz=Asia/Ho_Chi_Minh"
	first := get(target)

	if first.Cached {
		t.Error("first request should not be served from cache")
	}
	snap := first.Statistics
	if snap.TotalReviews != 3 {
		t.Errorf("expected 3 valid reviews, got %d", snap.TotalReviews)
	}
	if snap.SkippedCount != 1 {
		t.Errorf("expected 1 skipped review, got %d", snap.SkippedCount)
	}
	if snap.AverageRating != 7.33 {
		t.Errorf("expected average 7.33, got %v", snap.AverageRating)
	}
	wantSeries := []model.DailyCount{{Date: "2024-05-01", Count: 2}, {Date: "2024-05-02", Count: 1}}
	if len(snap.TimeSeries) != len(wantSeries) {
		t.Fatalf("unexpected time series: %+v", snap.TimeSeries)
	}
	for i, want := range wantSeries {
		if snap.TimeSeries[i] != want {
			t.Errorf("time series[%d] = %+v, want %+v", i, snap.TimeSeries[i], want)
		}
	}
	if snap.TNPS.Score != 33.3 {
		t.Errorf("expected TNPS 33.3, got %v", snap.TNPS.Score)
	}

	second := get(target)
	if !second.Cached {
		t.Error("second request should be served from cache")
	}
	if second.Statistics.TotalReviews != snap.TotalReviews {
		t.Errorf("cached snapshot differs: %+v", second.Statistics)
	}

	branch := get("/api/v1/clients/client-e2e/branches/branch-2/statistics")
	if branch.Statistics.TotalReviews != 1 || branch.Statistics.TNPS.Score != -100 {
		t.Errorf("unexpected branch snapshot: %+v", branch.Statistics)
	}

	counters := recorder.Snapshot()
	if counters.SnapshotCacheHits != 1 {
		t.Errorf("expected 1 cache hit, got %d", counters.SnapshotCacheHits)
	}
	if counters.Aggregations[service.SurfaceClient] != 1 || counters.Aggregations[service.SurfaceBranch] != 1 {
		t.Errorf("unexpected aggregation counts: %v", counters.Aggregations)
	}
}
