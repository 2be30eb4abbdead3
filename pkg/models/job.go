// Package models contains shared data models used across the mediascribe codebase.
package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	JobStatusPending    = "pending"
	JobStatusProcessing = "processing"
	JobStatusCompleted  = "completed"
	JobStatusFailed     = "failed"
)

// Sentinel values written when the summarizer fails or returns nothing usable.
// The job still completes; these mark the summary as absent rather than failing it.
const (
	NoSummary = "No Summary"
	NoTitle   = "No Title"
)

// Job tracks one submitted media file through the pipeline. A row is created at
// admission with status pending, claimed by exactly one worker (the processing
// transition is the mutual-exclusion token), and finished as completed or failed.
// Title, Transcription and Summary stay nil until the terminal transition writes
// them atomically.
type Job struct {
	ID            uuid.UUID `db:"id"            json:"id"`
	Filename      string    `db:"filename"      json:"filename"`
	Title         *string   `db:"title"         json:"title,omitempty"`
	Transcription *string   `db:"transcription" json:"transcription,omitempty"`
	Summary       *string   `db:"summary"       json:"summary,omitempty"`
	Status        string    `db:"status"        json:"status"`
	CreatedAt     time.Time `db:"created_at"    json:"created_at"`
}
