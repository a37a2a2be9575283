// Package stats turns a list of reviews into the statistics snapshot shown
// on the dashboards. It performs no I/O; the same input and time zone always
// yield the same snapshot.
package stats

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/reviewpulse/reviewpulse/internal/model"
)

// DefaultTimeZone is used when Config.TimeZone is empty.
const DefaultTimeZone = "UTC"

// dayLayout is zero-padded so that string order equals calendar order.
const dayLayout = "2006-01-02"

// ErrInvalidTimeZone is returned when the configured zone cannot be loaded.
var ErrInvalidTimeZone = errors.New("invalid time zone")

// Config controls how reviews are aggregated.
type Config struct {
	// TimeZone is an IANA zone name used to bucket reviews into calendar days.
	TimeZone string
}

// LoadLocation resolves an IANA zone name. An empty name resolves to
// DefaultTimeZone. "Local" is rejected because it depends on the host.
func LoadLocation(name string) (*time.Location, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		name = DefaultTimeZone
	}
	if name == "Local" {
		return nil, fmt.Errorf("%w: %q depends on the host environment", ErrInvalidTimeZone, name)
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %v", ErrInvalidTimeZone, name, err)
	}
	return loc, nil
}

// Aggregator computes snapshots for a fixed time zone.
// It holds no mutable state and is safe for concurrent use.
type Aggregator struct {
	loc *time.Location
}

// New creates an Aggregator for the given configuration.
func New(cfg Config) (*Aggregator, error) {
	loc, err := LoadLocation(cfg.TimeZone)
	if err != nil {
		return nil, err
	}
	return &Aggregator{loc: loc}, nil
}

// Location returns the zone used for day bucketing.
func (a *Aggregator) Location() *time.Location {
	return a.loc
}

// Aggregate is a convenience wrapper around New and Aggregator.Aggregate.
func Aggregate(records []model.Review, cfg Config) (*model.Snapshot, error) {
	a, err := New(cfg)
	if err != nil {
		return nil, err
	}
	return a.Aggregate(records), nil
}

// Aggregate builds a snapshot from records. Records with an out-of-range
// rating are left out of every aggregate and counted in SkippedCount.
// The input slice is not modified.
func (a *Aggregator) Aggregate(records []model.Review) *model.Snapshot {
	valid := make([]*model.Review, 0, len(records))
	skipped := 0
	for i := range records {
		if !records[i].HasValidRating() {
			skipped++
			continue
		}
		valid = append(valid, &records[i])
	}

	snap := &model.Snapshot{
		TotalReviews: len(valid),
		SkippedCount: skipped,
	}
	snap.Diagnostics.InvalidRatings = skipped

	snap.RatingHistogram, snap.AverageRating = ratingHistogram(valid)
	snap.FeedbackDistribution, snap.Diagnostics.UnrecognizedFeedback = feedbackDistribution(valid)
	snap.TimeSeries, snap.Diagnostics.MissingTimestamps = timeSeries(valid, a.loc)
	snap.TNPS = tnps(valid)

	return snap
}

func ratingHistogram(reviews []*model.Review) ([]model.RatingBucket, float64) {
	var counts [model.MaxRating + 1]int
	sum := 0
	for _, r := range reviews {
		counts[r.Rating]++
		sum += r.Rating
	}

	buckets := make([]model.RatingBucket, 0, model.MaxRating)
	for rating := model.MinRating; rating <= model.MaxRating; rating++ {
		buckets = append(buckets, model.RatingBucket{Rating: rating, Count: counts[rating]})
	}

	return buckets, mean(sum, len(reviews), meanPrecision)
}

func feedbackDistribution(reviews []*model.Review) ([]model.FeedbackBreakdown, int) {
	counts := make(map[model.FeedbackType]int, len(model.FeedbackTypes))
	unrecognized := 0
	for _, r := range reviews {
		tag := r.FeedbackType.Normalize()
		if tag == "" {
			continue
		}
		if !tag.IsValid() {
			unrecognized++
			continue
		}
		counts[tag]++
	}

	dist := make([]model.FeedbackBreakdown, 0, len(model.FeedbackTypes))
	for _, tag := range model.FeedbackTypes {
		if counts[tag] == 0 {
			continue
		}
		dist = append(dist, model.FeedbackBreakdown{Category: tag.Label(), Count: counts[tag]})
	}
	return dist, unrecognized
}

func timeSeries(reviews []*model.Review, loc *time.Location) ([]model.DailyCount, int) {
	perDay := make(map[string]int)
	missing := 0
	for _, r := range reviews {
		if r.CreatedAt.IsZero() {
			missing++
			continue
		}
		perDay[DayKey(r.CreatedAt, loc)]++
	}

	days := make([]string, 0, len(perDay))
	for day := range perDay {
		days = append(days, day)
	}
	sort.Strings(days)

	series := make([]model.DailyCount, 0, len(days))
	for _, day := range days {
		series = append(series, model.DailyCount{Date: day, Count: perDay[day]})
	}
	return series, missing
}

// DayKey returns the YYYY-MM-DD calendar day of t in loc.
func DayKey(t time.Time, loc *time.Location) string {
	return t.In(loc).Format(dayLayout)
}
