package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"mediascribe/internal/cache"
	"mediascribe/internal/store"
	"mediascribe/pkg/models"
)

// Dispatcher turns pending jobs into bounded concurrent execution. It is the
// only component that moves jobs from pending to processing; the flip is the
// mutual-exclusion token, so no two workers ever run the same job.
type Dispatcher struct {
	store        store.Store
	cache        cache.Cache
	worker       *Worker
	sem          *semaphore
	pollInterval time.Duration
	wake         chan struct{}
	wg           sync.WaitGroup
}

func NewDispatcher(st store.Store, ca cache.Cache, w *Worker, maxWorkers int, pollInterval time.Duration) *Dispatcher {
	if maxWorkers < 1 {
		maxWorkers = 1
	}
	return &Dispatcher{
		store:        st,
		cache:        ca,
		worker:       w,
		sem:          newSemaphore(maxWorkers),
		pollInterval: pollInterval,
		wake:         make(chan struct{}, 1),
	}
}

// Notify nudges the dispatcher to rescan immediately instead of waiting out
// the poll interval. Safe to call from any goroutine; extra nudges coalesce.
func (d *Dispatcher) Notify() {
	select {
	case d.wake <- struct{}{}:
	default:
	}
}

// Run executes the recovery sweep and then the dispatch loop until ctx is
// cancelled. On return all in-flight workers have finished.
func (d *Dispatcher) Run(ctx context.Context) error {
	n, err := d.store.ResetProcessingJobs(ctx)
	if err != nil {
		return fmt.Errorf("recovery sweep: %w", err)
	}
	if n > 0 {
		slog.Info("reset orphaned processing jobs to pending", "count", n)
	}

	ticker := time.NewTicker(d.pollInterval)
	defer ticker.Stop()
	defer d.wg.Wait()

	for {
		// The slot is taken before claiming, so the bound caps executing
		// pipelines, not merely dispatched ones.
		if err := d.sem.acquire(ctx); err != nil {
			return err
		}

		job, err := d.store.ClaimPendingJob(ctx)
		if err != nil {
			d.sem.release()

			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return ctx.Err()
			}
			if !errors.Is(err, store.ErrNotFound) {
				// Infrastructure failure: log and retry next cycle, never crash the loop.
				slog.Error("claiming pending job", "error", err)
			}

			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-d.wake:
			case <-ticker.C:
			}
			continue
		}

		_ = d.cache.SetJobStatus(ctx, job.Filename, models.JobStatusProcessing, StatusTTL)
		slog.Info("job dispatched", "job_id", job.ID, "filename", job.Filename)

		d.wg.Add(1)
		go func(job *models.Job) {
			defer d.wg.Done()
			defer d.sem.release()
			d.worker.Run(ctx, job)
		}(job)
	}
}
