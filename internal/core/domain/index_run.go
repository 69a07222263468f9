package domain

import (
	"time"

	"github.com/google/uuid"
)

// IndexRunMode says whether a run scraped and built a new index or reopened the persisted one
type IndexRunMode string

const (
	IndexRunModeBuilt    IndexRunMode = "built"
	IndexRunModeReopened IndexRunMode = "reopened"
)

// IndexRunStatus represents the current state of an index run
type IndexRunStatus string

const (
	IndexRunStatusRunning   IndexRunStatus = "running"
	IndexRunStatusCompleted IndexRunStatus = "completed"
	IndexRunStatusFailed    IndexRunStatus = "failed"
)

// IndexRun records one load of the vector index
type IndexRun struct {
	ID            string         `json:"id"`
	Mode          IndexRunMode   `json:"mode"`
	Status        IndexRunStatus `json:"status"`
	DocumentCount int            `json:"document_count"`
	Error         string         `json:"error,omitempty"`
	StartedAt     time.Time      `json:"started_at"`
	CompletedAt   *time.Time     `json:"completed_at,omitempty"`
}

// NewIndexRun starts a run in the running state
func NewIndexRun(mode IndexRunMode) *IndexRun {
	return &IndexRun{
		ID:        uuid.NewString(),
		Mode:      mode,
		Status:    IndexRunStatusRunning,
		StartedAt: time.Now(),
	}
}

// Complete marks the run as successful
func (r *IndexRun) Complete(documentCount int) {
	now := time.Now()
	r.Status = IndexRunStatusCompleted
	r.DocumentCount = documentCount
	r.CompletedAt = &now
}

// Fail marks the run as failed with the given error
func (r *IndexRun) Fail(err error) {
	now := time.Now()
	r.Status = IndexRunStatusFailed
	if err != nil {
		r.Error = err.Error()
	}
	r.CompletedAt = &now
}

// Duration returns how long the run took, or has taken so far
func (r *IndexRun) Duration() time.Duration {
	if r.CompletedAt == nil {
		return time.Since(r.StartedAt)
	}
	return r.CompletedAt.Sub(r.StartedAt)
}
