// Package pipeline holds the asynchronous job-processing core: the admission
// gate that dedups submissions, the dispatcher that bounds concurrent
// execution, and the worker that runs one job to a terminal state.
package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"mediascribe/internal/cache"
	"mediascribe/internal/store"
	"mediascribe/pkg/models"
)

// StatusTTL bounds how long a cached job status outlives its last transition.
const StatusTTL = 30 * time.Minute

// Gate is the admission and dedup gate. Every producer (the upload handler,
// the directory scanner, the filesystem watcher) goes through Admit; nothing
// writes pending jobs behind its back.
type Gate struct {
	store  store.Store
	cache  cache.Cache
	notify func()
}

// NewGate creates a Gate. notify is called after a job is queued so the
// dispatcher can skip the rest of its poll interval; pass nil if no one listens.
func NewGate(st store.Store, ca cache.Cache, notify func()) *Gate {
	if notify == nil {
		notify = func() {}
	}
	return &Gate{store: st, cache: ca, notify: notify}
}

// Admission is what the gate decided for one submitted filename.
type Admission struct {
	Outcome store.AdmitOutcome
	Job     *models.Job
}

// Admit runs the dedup rule for a stored file and queues a job when warranted.
// Duplicate submissions are an informational outcome, not an error.
func (g *Gate) Admit(ctx context.Context, filename string) (*Admission, error) {
	outcome, job, err := g.store.AdmitJob(ctx, uuid.New(), filename)
	if err != nil {
		return nil, err
	}

	switch outcome {
	case store.AdmitNew:
		slog.Info("job queued", "job_id", job.ID, "filename", filename)
	case store.AdmitRetry:
		slog.Info("failed job requeued", "job_id", job.ID, "filename", filename)
	case store.AdmitDuplicate:
		slog.Info("duplicate submission ignored",
			"job_id", job.ID, "filename", filename, "status", job.Status)
	}

	if outcome == store.AdmitNew || outcome == store.AdmitRetry {
		_ = g.cache.SetJobStatus(ctx, job.Filename, models.JobStatusPending, StatusTTL)
		g.notify()
	}

	return &Admission{Outcome: outcome, Job: job}, nil
}
