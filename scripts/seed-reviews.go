package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/reviewpulse/reviewpulse/internal/model"
	"github.com/reviewpulse/reviewpulse/internal/repository"
)

type summary struct {
	Inserted       int      `json:"inserted"`
	Clients        []string `json:"clients"`
	BranchesPerCli int      `json:"branches_per_client"`
	From           string   `json:"from"`
	To             string   `json:"to"`
	InvalidRatings int      `json:"invalid_ratings"`
}

func main() {
	var (
		databaseURL  = flag.String("database-url", os.Getenv("DATABASE_URL"), "PostgreSQL connection string")
		count        = flag.Int("reviews", 500, "Number of reviews to generate")
		clients      = flag.Int("clients", 3, "Number of clients")
		branches     = flag.Int("branches", 4, "Branches per client")
		days         = flag.Int("days", 30, "Spread reviews over the last N days")
		invalidRatio = flag.Float64("invalid-ratio", 0, "Share of reviews with an out-of-range rating (0..1)")
		batchSize    = flag.Int("batch", 200, "Reviews per insert batch")
		seed         = flag.Int64("seed", time.Now().UnixNano(), "Random seed")
		format       = flag.String("format", "plain", "Output format: plain or json")
	)
	flag.Parse()

	if *databaseURL == "" {
		fmt.Fprintln(os.Stderr, "DATABASE_URL is required")
		os.Exit(1)
	}
	if *count < 1 || *clients < 1 || *branches < 1 || *days < 1 || *batchSize < 1 {
		fmt.Fprintln(os.Stderr, "reviews, clients, branches, days and batch must be positive")
		os.Exit(1)
	}
	if *invalidRatio < 0 || *invalidRatio > 1 {
		fmt.Fprintln(os.Stderr, "invalid-ratio must be between 0 and 1")
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	repo, err := repository.New(ctx, *databaseURL)
	if err != nil {
		fmt.Fprintln(os.Stderr, "connect database:", err)
		os.Exit(1)
	}
	defer repo.Close()

	now := time.Now().UTC()
	rng := rand.New(rand.NewSource(*seed))
	reviews, invalid := generateReviews(rng, now, *count, *clients, *branches, *days, *invalidRatio)

	reviewRepo := repository.NewReviewRepository(repo)
	for start := 0; start < len(reviews); start += *batchSize {
		end := min(start+*batchSize, len(reviews))
		if err := reviewRepo.BulkInsert(ctx, reviews[start:end]); err != nil {
			fmt.Fprintln(os.Stderr, "insert reviews:", err)
			os.Exit(1)
		}
	}

	out := summary{
		Inserted:       len(reviews),
		Clients:        clientIDs(*clients),
		BranchesPerCli: *branches,
		From:           now.AddDate(0, 0, -*days).Format("2006-01-02"),
		To:             now.Format("2006-01-02"),
		InvalidRatings: invalid,
	}

	switch strings.ToLower(*format) {
	case "plain":
		fmt.Printf("inserted %d reviews for %d clients (%d invalid ratings)\n", out.Inserted, *clients, out.InvalidRatings)
	case "json":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		_ = enc.Encode(out)
	default:
		fmt.Fprintln(os.Stderr, "invalid format; use plain or json")
		os.Exit(1)
	}
}

// ratingWeights skews generated ratings toward the top of the scale.
var ratingWeights = []int{1, 1, 1, 2, 2, 3, 5, 8, 10, 9}

func generateReviews(rng *rand.Rand, now time.Time, count, clients, branches, days int, invalidRatio float64) ([]model.Review, int) {
	entropy := ulid.Monotonic(rng, 0)
	clientList := clientIDs(clients)
	window := time.Duration(days) * 24 * time.Hour

	reviews := make([]model.Review, 0, count)
	invalid := 0
	for i := 0; i < count; i++ {
		createdAt := now.Add(-time.Duration(rng.Int63n(int64(window))))
		clientID := clientList[rng.Intn(len(clientList))]

		rating := weightedRating(rng)
		if rng.Float64() < invalidRatio {
			rating = []int{0, -1, 11}[rng.Intn(3)]
			invalid++
		}

		reviews = append(reviews, model.Review{
			ID:              ulid.MustNew(ulid.Timestamp(createdAt), entropy).String(),
			ClientID:        clientID,
			BranchID:        fmt.Sprintf("%s-branch-%02d", clientID, rng.Intn(branches)+1),
			Rating:          rating,
			FeedbackType:    feedbackFor(rating),
			CustomerName:    fmt.Sprintf("Customer %04d", rng.Intn(10000)),
			InvoiceNumber:   fmt.Sprintf("INV-%06d", rng.Intn(1000000)),
			AttachmentCount: rng.Intn(3),
			CreatedAt:       createdAt,
		})
	}

	return reviews, invalid
}

func weightedRating(rng *rand.Rand) int {
	total := 0
	for _, w := range ratingWeights {
		total += w
	}
	pick := rng.Intn(total)
	for i, w := range ratingWeights {
		if pick < w {
			return model.MinRating + i
		}
		pick -= w
	}
	return model.MaxRating
}

func feedbackFor(rating int) model.FeedbackType {
	switch {
	case rating >= 9:
		return model.FeedbackPositive
	case rating >= 7:
		return model.FeedbackNeutral
	case rating >= model.MinRating:
		return model.FeedbackNegative
	default:
		return ""
	}
}

func clientIDs(n int) []string {
	ids := make([]string, n)
	for i := range ids {
		ids[i] = fmt.Sprintf("client-%02d", i+1)
	}
	return ids
}
