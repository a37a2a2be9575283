package model

import "time"

// StatisticsFilter selects the reviews a snapshot is computed from and the
// zone used to bucket them into days.
type StatisticsFilter struct {
	ClientID  string     `json:"client_id,omitempty"`
	BranchIDs []string   `json:"branch_ids,omitempty"`
	From      *time.Time `json:"from,omitempty"` // inclusive
	To        *time.Time `json:"to,omitempty"`   // exclusive
	TimeZone  string     `json:"time_zone"`
}
