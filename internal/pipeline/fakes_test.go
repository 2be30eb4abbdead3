package pipeline_test

import (
	"context"
	"fmt"
	"os"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"mediascribe/internal/store"
	"mediascribe/pkg/models"
)

// fakeStore is an in-memory Store with the same transition semantics as the
// Postgres implementation. It also records the high-water mark of jobs
// simultaneously in processing, which the concurrency tests assert on.
type fakeStore struct {
	mu            sync.Mutex
	jobs          map[uuid.UUID]*models.Job
	seq           int
	claimErr      error
	maxProcessing int
}

func newFakeStore() *fakeStore {
	return &fakeStore{jobs: map[uuid.UUID]*models.Job{}}
}

func (s *fakeStore) Ping(context.Context) error { return nil }

func (s *fakeStore) setClaimErr(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.claimErr = err
}

func (s *fakeStore) byFilename(filename string) *models.Job {
	for _, j := range s.jobs {
		if j.Filename == filename {
			return j
		}
	}
	return nil
}

func copyJob(j *models.Job) *models.Job {
	c := *j
	return &c
}

func (s *fakeStore) AdmitJob(_ context.Context, id uuid.UUID, filename string) (store.AdmitOutcome, *models.Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if existing := s.byFilename(filename); existing != nil {
		if existing.Status == models.JobStatusFailed {
			existing.Status = models.JobStatusPending
			return store.AdmitRetry, copyJob(existing), nil
		}
		return store.AdmitDuplicate, copyJob(existing), nil
	}

	s.seq++
	job := &models.Job{
		ID:        id,
		Filename:  filename,
		Status:    models.JobStatusPending,
		CreatedAt: time.Unix(0, int64(s.seq)),
	}
	s.jobs[id] = job
	return store.AdmitNew, copyJob(job), nil
}

func (s *fakeStore) GetJob(_ context.Context, id uuid.UUID) (*models.Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	j, ok := s.jobs[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return copyJob(j), nil
}

func (s *fakeStore) GetJobByFilename(_ context.Context, filename string) (*models.Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if j := s.byFilename(filename); j != nil {
		return copyJob(j), nil
	}
	return nil, store.ErrNotFound
}

func (s *fakeStore) ListJobs(_ context.Context, filter store.JobFilter) ([]*models.Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var jobs []*models.Job
	for _, j := range s.jobs {
		if filter.Status == "" || j.Status == filter.Status {
			jobs = append(jobs, copyJob(j))
		}
	}
	sort.Slice(jobs, func(i, k int) bool { return jobs[i].CreatedAt.After(jobs[k].CreatedAt) })
	if filter.Limit > 0 && len(jobs) > filter.Limit {
		jobs = jobs[:filter.Limit]
	}
	return jobs, nil
}

func (s *fakeStore) ClaimPendingJob(context.Context) (*models.Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.claimErr != nil {
		return nil, s.claimErr
	}

	var oldest *models.Job
	for _, j := range s.jobs {
		if j.Status != models.JobStatusPending {
			continue
		}
		if oldest == nil || j.CreatedAt.Before(oldest.CreatedAt) {
			oldest = j
		}
	}
	if oldest == nil {
		return nil, store.ErrNotFound
	}

	oldest.Status = models.JobStatusProcessing
	if n := s.processingLocked(); n > s.maxProcessing {
		s.maxProcessing = n
	}
	return copyJob(oldest), nil
}

func (s *fakeStore) processingLocked() int {
	n := 0
	for _, j := range s.jobs {
		if j.Status == models.JobStatusProcessing {
			n++
		}
	}
	return n
}

func (s *fakeStore) CompleteJob(_ context.Context, id uuid.UUID, title, transcription, summary string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	j, ok := s.jobs[id]
	if !ok || j.Status != models.JobStatusProcessing {
		return fmt.Errorf("complete job %s: %w (not processing)", id, store.ErrNotFound)
	}
	j.Title = &title
	j.Transcription = &transcription
	j.Summary = &summary
	j.Status = models.JobStatusCompleted
	return nil
}

func (s *fakeStore) FailJob(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	j, ok := s.jobs[id]
	if !ok || j.Status != models.JobStatusProcessing {
		return fmt.Errorf("fail job %s: %w (not processing)", id, store.ErrNotFound)
	}
	j.Status = models.JobStatusFailed
	return nil
}

func (s *fakeStore) ResetProcessingJobs(context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for _, j := range s.jobs {
		if j.Status == models.JobStatusProcessing {
			j.Status = models.JobStatusPending
			n++
		}
	}
	return n, nil
}

func (s *fakeStore) DeleteJob(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	j, ok := s.jobs[id]
	if !ok {
		return store.ErrNotFound
	}
	if j.Status == models.JobStatusProcessing {
		return store.ErrJobProcessing
	}
	delete(s.jobs, id)
	return nil
}

var _ store.Store = (*fakeStore)(nil)

// fakeCache is an in-memory cache.Cache.
type fakeCache struct {
	mu       sync.Mutex
	statuses map[string]string
	counters map[string]int64
}

func newFakeCache() *fakeCache {
	return &fakeCache{statuses: map[string]string{}, counters: map[string]int64{}}
}

func (c *fakeCache) Ping(context.Context) error { return nil }

func (c *fakeCache) SetJobStatus(_ context.Context, filename, status string, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.statuses[filename] = status
	return nil
}

func (c *fakeCache) GetJobStatus(_ context.Context, filename string) (string, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	status, ok := c.statuses[filename]
	return status, ok, nil
}

func (c *fakeCache) DeleteJobStatus(_ context.Context, filename string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.statuses, filename)
	return nil
}

func (c *fakeCache) IncrWithExpiry(_ context.Context, key string, _ time.Duration) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.counters[key]++
	return c.counters[key], nil
}

// stubDecoder writes a placeholder artifact unless told to fail.
type stubDecoder struct {
	err error
}

func (d *stubDecoder) ExtractAudio(_ context.Context, _, audioPath string) error {
	if d.err != nil {
		return d.err
	}
	return os.WriteFile(audioPath, []byte("RIFF fake wav"), 0o644)
}

// stubTranscriber returns fixed segments. When gate is non-nil, each call
// signals entered and then blocks until gate is closed, letting tests hold
// workers mid-pipeline.
type stubTranscriber struct {
	segments []models.Segment
	err      error
	entered  chan struct{}
	gate     chan struct{}
}

func (t *stubTranscriber) Transcribe(context.Context, string) ([]models.Segment, error) {
	if t.entered != nil {
		t.entered <- struct{}{}
	}
	if t.gate != nil {
		<-t.gate
	}
	return t.segments, t.err
}
