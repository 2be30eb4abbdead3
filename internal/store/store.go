package store

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"mediascribe/pkg/models"
)

var ErrNotFound = errors.New("resource not found")
var ErrJobProcessing = errors.New("job is currently processing")

// AdmitOutcome reports what the admission transaction decided for a filename.
type AdmitOutcome int

const (
	// AdmitNew means no job existed for the filename; a fresh pending row was inserted.
	AdmitNew AdmitOutcome = iota
	// AdmitRetry means a failed job existed; its row was reset to pending, id reused.
	AdmitRetry
	// AdmitDuplicate means a pending, processing or completed job already exists.
	AdmitDuplicate
)

// Store is the data access interface. All database operations go through here.
// Every method is one atomic operation; no connection or transaction ever
// crosses a concurrency boundary.
type Store interface {
	Ping(ctx context.Context) error

	// AdmitJob runs the check-then-insert admission rule in a single
	// transaction, serializing concurrent submissions of the same filename.
	AdmitJob(ctx context.Context, id uuid.UUID, filename string) (AdmitOutcome, *models.Job, error)

	GetJob(ctx context.Context, id uuid.UUID) (*models.Job, error)
	GetJobByFilename(ctx context.Context, filename string) (*models.Job, error)
	ListJobs(ctx context.Context, filter JobFilter) ([]*models.Job, error)

	// ClaimPendingJob atomically flips the oldest pending job to processing
	// and returns it. The flip is the worker's mutual-exclusion token.
	// Returns ErrNotFound when nothing is pending.
	ClaimPendingJob(ctx context.Context) (*models.Job, error)

	// CompleteJob writes title, transcription, summary and the completed
	// status in one statement, so the feed surface never sees a partial result.
	CompleteJob(ctx context.Context, id uuid.UUID, title, transcription, summary string) error

	// FailJob marks a processing job failed; result columns are left untouched.
	FailJob(ctx context.Context, id uuid.UUID) error

	// ResetProcessingJobs is the startup recovery sweep: anything left in
	// processing by a crashed run goes back to pending. Returns the number of
	// jobs reset.
	ResetProcessingJobs(ctx context.Context) (int64, error)

	// DeleteJob removes a job by id. Refuses with ErrJobProcessing while a
	// worker holds the job.
	DeleteJob(ctx context.Context, id uuid.UUID) error
}

// JobFilter narrows ListJobs. Zero value lists everything, newest first.
type JobFilter struct {
	Status string
	Limit  int
}
