package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/lib/pq"

	"github.com/reviewpulse/reviewpulse/internal/model"
)

// ReviewFilter narrows the reviews returned by List.
// Zero-valued fields are not applied.
type ReviewFilter struct {
	ClientID  string
	BranchIDs []string
	From      *time.Time // inclusive
	To        *time.Time // exclusive
}

// ReviewRepository provides database access for reviews.
type ReviewRepository struct {
	repo *Repository
}

// NewReviewRepository creates a new ReviewRepository.
func NewReviewRepository(repo *Repository) *ReviewRepository {
	return &ReviewRepository{repo: repo}
}

const reviewColumns = `
	id, client_id, branch_id, rating, COALESCE(feedback_type, ''),
	COALESCE(customer_name, ''), COALESCE(transcript, ''), COALESCE(invoice_number, ''),
	attachment_count, created_at`

// buildListQuery returns the SELECT statement and its arguments for a filter.
func buildListQuery(filter ReviewFilter) (string, []any) {
	var (
		conds []string
		args  []any
	)

	if filter.ClientID != "" {
		args = append(args, filter.ClientID)
		conds = append(conds, fmt.Sprintf("client_id = $%d", len(args)))
	}
	if len(filter.BranchIDs) > 0 {
		args = append(args, pq.Array(filter.BranchIDs))
		conds = append(conds, fmt.Sprintf("branch_id = ANY($%d)", len(args)))
	}
	if filter.From != nil {
		args = append(args, filter.From.UTC())
		conds = append(conds, fmt.Sprintf("created_at >= $%d", len(args)))
	}
	if filter.To != nil {
		args = append(args, filter.To.UTC())
		conds = append(conds, fmt.Sprintf("created_at < $%d", len(args)))
	}

	var b strings.Builder
	b.WriteString("SELECT")
	b.WriteString(reviewColumns)
	b.WriteString("\n\tFROM reviews")
	if len(conds) > 0 {
		b.WriteString("\n\tWHERE ")
		b.WriteString(strings.Join(conds, " AND "))
	}
	b.WriteString("\n\tORDER BY created_at, id")

	return b.String(), args
}

// List returns every review matching the filter, oldest first.
func (r *ReviewRepository) List(ctx context.Context, filter ReviewFilter) ([]model.Review, error) {
	query, args := buildListQuery(filter)

	rows, err := r.repo.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query reviews: %w", err)
	}
	defer rows.Close()

	reviews := make([]model.Review, 0)
	for rows.Next() {
		var (
			review       model.Review
			feedbackType string
		)
		if err := rows.Scan(
			&review.ID,
			&review.ClientID,
			&review.BranchID,
			&review.Rating,
			&feedbackType,
			&review.CustomerName,
			&review.Transcript,
			&review.InvoiceNumber,
			&review.AttachmentCount,
			&review.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan review: %w", err)
		}
		review.FeedbackType = model.FeedbackType(feedbackType)
		reviews = append(reviews, review)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate reviews: %w", err)
	}

	return reviews, nil
}

// BulkInsert inserts reviews with idempotency via ON CONFLICT DO NOTHING.
func (r *ReviewRepository) BulkInsert(ctx context.Context, reviews []model.Review) error {
	if len(reviews) == 0 {
		return nil
	}

	batch := &pgx.Batch{}

	query := `
		INSERT INTO reviews (
			id, client_id, branch_id, rating, feedback_type,
			customer_name, transcript, invoice_number, attachment_count, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (id) DO NOTHING
	`

	for _, review := range reviews {
		batch.Queue(query,
			review.ID,
			review.ClientID,
			review.BranchID,
			review.Rating,
			nullableString(string(review.FeedbackType)),
			nullableString(review.CustomerName),
			nullableString(review.Transcript),
			nullableString(review.InvoiceNumber),
			review.AttachmentCount,
			review.CreatedAt.UTC(),
		)
	}

	results := r.repo.pool.SendBatch(ctx, batch)
	defer results.Close()

	for i := 0; i < len(reviews); i++ {
		if _, err := results.Exec(); err != nil {
			return fmt.Errorf("batch insert review %d: %w", i, err)
		}
	}

	return nil
}

func nullableString(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
