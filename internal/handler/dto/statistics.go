// Package dto provides Data Transfer Objects for API requests and responses.
package dto

import (
	"time"

	"github.com/reviewpulse/reviewpulse/internal/model"
)

// StatisticsQuery represents query parameters for the statistics endpoints.
// Dates are calendar days in TimeZone; To is inclusive.
type StatisticsQuery struct {
	ClientID  string   `validate:"omitempty,max=64"`
	BranchIDs []string `validate:"max=100,dive,required,max=64"`
	From      string   `validate:"omitempty,datetime=2006-01-02"`
	To        string   `validate:"omitempty,datetime=2006-01-02"`
	TimeZone  string   `validate:"omitempty,max=64"`
}

// StatisticsFilterResponse echoes the filter a snapshot was computed for.
type StatisticsFilterResponse struct {
	ClientID  string   `json:"client_id,omitempty"`
	BranchIDs []string `json:"branch_ids,omitempty"`
	From      string   `json:"from,omitempty"`
	To        string   `json:"to,omitempty"`
	TimeZone  string   `json:"time_zone"`
}

// StatisticsResponse represents a statistics snapshot in API responses.
type StatisticsResponse struct {
	Surface     string                   `json:"surface"`
	Filter      StatisticsFilterResponse `json:"filter"`
	Cached      bool                     `json:"cached"`
	GeneratedAt time.Time                `json:"generated_at"`
	Statistics  *model.Snapshot          `json:"statistics"`
}

// ErrorResponse represents an API error.
type ErrorResponse struct {
	Error  string            `json:"error"`
	Code   string            `json:"code"`
	Fields map[string]string `json:"fields,omitempty"`
}

// ToStatisticsResponse converts a computed snapshot to StatisticsResponse.
// The filter dates are echoed as the query supplied them.
func ToStatisticsResponse(surface string, query StatisticsQuery, filter model.StatisticsFilter, snap *model.Snapshot, cached bool) *StatisticsResponse {
	return &StatisticsResponse{
		Surface: surface,
		Filter: StatisticsFilterResponse{
			ClientID:  filter.ClientID,
			BranchIDs: filter.BranchIDs,
			From:      query.From,
			To:        query.To,
			TimeZone:  filter.TimeZone,
		},
		Cached:      cached,
		GeneratedAt: time.Now().UTC(),
		Statistics:  snap,
	}
}
