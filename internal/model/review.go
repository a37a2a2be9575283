// Package model defines domain entities for the application.
package model

import (
	"strings"
	"time"
)

// Rating bounds for a review score.
const (
	MinRating = 1
	MaxRating = 10
)

// FeedbackType is the sentiment tag attached to a review.
type FeedbackType string

// Recognized feedback types, in display order.
const (
	FeedbackPositive FeedbackType = "positive"
	FeedbackNeutral  FeedbackType = "neutral"
	FeedbackNegative FeedbackType = "negative"
)

// FeedbackTypes lists the recognized feedback types in display order.
var FeedbackTypes = []FeedbackType{FeedbackPositive, FeedbackNeutral, FeedbackNegative}

// Normalize trims and lowercases the tag.
func (f FeedbackType) Normalize() FeedbackType {
	return FeedbackType(strings.ToLower(strings.TrimSpace(string(f))))
}

// IsValid reports whether the tag is one of the recognized feedback types.
func (f FeedbackType) IsValid() bool {
	switch f.Normalize() {
	case FeedbackPositive, FeedbackNeutral, FeedbackNegative:
		return true
	}
	return false
}

// Label returns the tag with its first character capitalized.
func (f FeedbackType) Label() string {
	s := string(f.Normalize())
	if s == "" {
		return ""
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// Review represents a single customer review as supplied by the review source.
type Review struct {
	ID       string `json:"id"`        // ULID (time-sortable)
	ClientID string `json:"client_id"` // Owning client
	BranchID string `json:"branch_id"` // Branch the review was collected at

	Rating       int          `json:"rating"`                  // 1-10
	FeedbackType FeedbackType `json:"feedback_type,omitempty"` // positive, neutral, negative

	// Passthrough payload, not read by the aggregator
	CustomerName    string `json:"customer_name,omitempty"`
	Transcript      string `json:"transcript,omitempty"`
	InvoiceNumber   string `json:"invoice_number,omitempty"`
	AttachmentCount int    `json:"attachment_count"`

	CreatedAt time.Time `json:"created_at"`
}

// HasValidRating reports whether the rating is usable for numeric aggregation.
func (r *Review) HasValidRating() bool {
	return r.Rating >= MinRating && r.Rating <= MaxRating
}
