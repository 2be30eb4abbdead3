package handler

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"

	"mediascribe/internal/pipeline"
	"mediascribe/internal/store"
	"mediascribe/pkg/models"
)

// --- mock store ---

type mockStore struct {
	jobs       map[string]*models.Job // keyed by filename
	list       []*models.Job
	listErr    error
	lastFilter store.JobFilter

	deleteErr error
	deleted   []uuid.UUID
}

func newMockStore(jobs ...*models.Job) *mockStore {
	m := &mockStore{jobs: map[string]*models.Job{}}
	for _, j := range jobs {
		m.jobs[j.Filename] = j
		m.list = append(m.list, j)
	}
	return m
}

func (m *mockStore) Ping(context.Context) error { return nil }

func (m *mockStore) AdmitJob(_ context.Context, id uuid.UUID, filename string) (store.AdmitOutcome, *models.Job, error) {
	job := &models.Job{ID: id, Filename: filename, Status: models.JobStatusPending, CreatedAt: time.Now()}
	m.jobs[filename] = job
	return store.AdmitNew, job, nil
}

func (m *mockStore) GetJob(_ context.Context, id uuid.UUID) (*models.Job, error) {
	for _, j := range m.jobs {
		if j.ID == id {
			return j, nil
		}
	}
	return nil, store.ErrNotFound
}

func (m *mockStore) GetJobByFilename(_ context.Context, filename string) (*models.Job, error) {
	if j, ok := m.jobs[filename]; ok {
		return j, nil
	}
	return nil, store.ErrNotFound
}

func (m *mockStore) ListJobs(_ context.Context, filter store.JobFilter) ([]*models.Job, error) {
	m.lastFilter = filter
	if m.listErr != nil {
		return nil, m.listErr
	}
	return m.list, nil
}

func (m *mockStore) ClaimPendingJob(context.Context) (*models.Job, error) {
	return nil, store.ErrNotFound
}

func (m *mockStore) CompleteJob(context.Context, uuid.UUID, string, string, string) error {
	return nil
}

func (m *mockStore) FailJob(context.Context, uuid.UUID) error { return nil }

func (m *mockStore) ResetProcessingJobs(context.Context) (int64, error) { return 0, nil }

func (m *mockStore) DeleteJob(_ context.Context, id uuid.UUID) error {
	if m.deleteErr != nil {
		return m.deleteErr
	}
	m.deleted = append(m.deleted, id)
	for filename, j := range m.jobs {
		if j.ID == id {
			delete(m.jobs, filename)
		}
	}
	return nil
}

var _ store.Store = (*mockStore)(nil)

// --- mock cache ---

type mockCache struct {
	statuses map[string]string
	deleted  []string
}

func newMockCache() *mockCache {
	return &mockCache{statuses: map[string]string{}}
}

func (c *mockCache) Ping(context.Context) error { return nil }

func (c *mockCache) SetJobStatus(_ context.Context, filename, status string, _ time.Duration) error {
	c.statuses[filename] = status
	return nil
}

func (c *mockCache) GetJobStatus(_ context.Context, filename string) (string, bool, error) {
	status, ok := c.statuses[filename]
	return status, ok, nil
}

func (c *mockCache) DeleteJobStatus(_ context.Context, filename string) error {
	c.deleted = append(c.deleted, filename)
	delete(c.statuses, filename)
	return nil
}

func (c *mockCache) IncrWithExpiry(context.Context, string, time.Duration) (int64, error) {
	return 1, nil
}

// --- mock gate ---

type mockGate struct {
	outcome  store.AdmitOutcome
	err      error
	admitted []string
}

func (g *mockGate) Admit(_ context.Context, filename string) (*pipeline.Admission, error) {
	if g.err != nil {
		return nil, g.err
	}
	g.admitted = append(g.admitted, filename)
	return &pipeline.Admission{
		Outcome: g.outcome,
		Job: &models.Job{
			ID:       uuid.New(),
			Filename: filename,
			Status:   models.JobStatusPending,
		},
	}, nil
}

// --- helpers ---

func strPtr(s string) *string { return &s }

func parseEnvelope(t *testing.T, rec *httptest.ResponseRecorder, wantStatus int) map[string]any {
	t.Helper()
	if rec.Code != wantStatus {
		t.Fatalf("expected %d, got %d: %s", wantStatus, rec.Code, rec.Body.String())
	}
	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid JSON response: %v", err)
	}
	return body
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder, wantStatus int) string {
	t.Helper()
	body := parseEnvelope(t, rec, wantStatus)
	errObj, ok := body["error"].(map[string]any)
	if !ok {
		t.Fatalf("response has no error object: %s", rec.Body.String())
	}
	return errObj["code"].(string)
}
