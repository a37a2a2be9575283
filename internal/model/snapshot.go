package model

// Snapshot is the full set of statistics derived from one list of reviews.
// It is rebuilt on every aggregation and never shared between calls.
type Snapshot struct {
	TotalReviews         int                 `json:"total_reviews"`
	AverageRating        float64             `json:"average_rating"`
	RatingHistogram      []RatingBucket      `json:"rating_histogram"`
	FeedbackDistribution []FeedbackBreakdown `json:"feedback_distribution"`
	TimeSeries           []DailyCount        `json:"time_series"`
	TNPS                 TNPS                `json:"tnps"`

	// Records excluded for an out-of-range rating
	SkippedCount int         `json:"skipped_count"`
	Diagnostics  Diagnostics `json:"diagnostics"`
}

// RatingBucket is the number of reviews with a given rating.
type RatingBucket struct {
	Rating int `json:"rating"`
	Count  int `json:"count"`
}

// FeedbackBreakdown is the number of reviews with a given feedback type.
type FeedbackBreakdown struct {
	Category string `json:"category"` // Display label, e.g. "Positive"
	Count    int    `json:"count"`
}

// DailyCount is the number of reviews created on one calendar day.
type DailyCount struct {
	Date  string `json:"date"` // ISO date
	Count int    `json:"count"`
}

// TNPS is the transactional net promoter score breakdown.
type TNPS struct {
	Responders int         `json:"responders"`
	Promoters  SegmentStat `json:"promoters"`
	Detractors SegmentStat `json:"detractors"`
	Passives   SegmentStat `json:"passives"`
	Score      float64     `json:"score"` // -100..100
}

// SegmentStat is a TNPS segment size and its share of responders.
type SegmentStat struct {
	Count int     `json:"count"`
	Pct   float64 `json:"pct"` // 0..100
}

// Diagnostics counts data-quality conditions seen during aggregation.
type Diagnostics struct {
	InvalidRatings       int `json:"invalid_ratings"`
	UnrecognizedFeedback int `json:"unrecognized_feedback"`
	MissingTimestamps    int `json:"missing_timestamps"`
}
