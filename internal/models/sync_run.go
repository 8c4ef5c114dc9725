package models

import (
	"time"

	"github.com/google/uuid"
)

// SyncRunStatus represents the state of one vendor reconciliation run.
type SyncRunStatus string

const (
	SyncRunStatusRunning   SyncRunStatus = "running"
	SyncRunStatusCompleted SyncRunStatus = "completed"
	SyncRunStatusFailed    SyncRunStatus = "failed"
)

// SyncRun records one reconciliation pass for a single vendor: when it ran,
// how it ended, and what it changed.
type SyncRun struct {
	ID          uuid.UUID     `json:"id"`
	VendorID    uuid.UUID     `json:"vendor_id"`
	Status      SyncRunStatus `json:"status"`
	StartedAt   time.Time     `json:"started_at"`
	CompletedAt *time.Time    `json:"completed_at,omitempty"`

	Created     int `json:"created"`
	Updated     int `json:"updated"`
	Expired     int `json:"expired"`
	NeedsReview int `json:"needs_review"`
	Skipped     int `json:"skipped"`

	ErrorMessage string    `json:"error_message,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// NewSyncRun creates a running SyncRun for the given vendor.
func NewSyncRun(vendorID uuid.UUID) *SyncRun {
	now := time.Now()
	return &SyncRun{
		ID:        uuid.New(),
		VendorID:  vendorID,
		Status:    SyncRunStatusRunning,
		StartedAt: now,
		CreatedAt: now,
	}
}

// Complete marks the run as finished with the given counters.
func (r *SyncRun) Complete(created, updated, expired, needsReview, skipped int) {
	now := time.Now()
	r.Status = SyncRunStatusCompleted
	r.CompletedAt = &now
	r.Created = created
	r.Updated = updated
	r.Expired = expired
	r.NeedsReview = needsReview
	r.Skipped = skipped
}

// Fail marks the run as failed with an error message.
func (r *SyncRun) Fail(errMsg string) {
	now := time.Now()
	r.Status = SyncRunStatusFailed
	r.CompletedAt = &now
	r.ErrorMessage = errMsg
}

// Duration returns how long the run took, or zero if still running.
func (r *SyncRun) Duration() time.Duration {
	return durationSince(r.StartedAt, r.CompletedAt)
}

func durationSince(start time.Time, end *time.Time) time.Duration {
	if end == nil {
		return 0
	}
	return end.Sub(start)
}
