package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"mediascribe/internal/api/response"
	"mediascribe/internal/cache"
	"mediascribe/internal/pipeline"
	"mediascribe/internal/store"
	"mediascribe/pkg/models"
)

const (
	defaultListLimit = 50
	maxListLimit     = 200
)

// jobSummaryView is the listing projection. Transcripts can run to megabytes,
// so listings leave them out; the detail endpoint carries the full record.
type jobSummaryView struct {
	ID        uuid.UUID `json:"id"`
	Filename  string    `json:"filename"`
	Title     *string   `json:"title,omitempty"`
	Summary   *string   `json:"summary,omitempty"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

func toSummaryView(j *models.Job) jobSummaryView {
	return jobSummaryView{
		ID:        j.ID,
		Filename:  j.Filename,
		Title:     j.Title,
		Summary:   j.Summary,
		Status:    j.Status,
		CreatedAt: j.CreatedAt,
	}
}

func validStatus(s string) bool {
	switch s {
	case models.JobStatusPending, models.JobStatusProcessing,
		models.JobStatusCompleted, models.JobStatusFailed:
		return true
	}
	return false
}

// NewListJobsHandler returns an http.HandlerFunc for GET /api/v1/jobs.
// Optional query params: status (lifecycle filter) and limit.
func NewListJobsHandler(st store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status := r.URL.Query().Get("status")
		if status != "" && !validStatus(status) {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST",
				"status must be one of pending, processing, completed, failed", nil)
			return
		}

		limit := defaultListLimit
		if raw := r.URL.Query().Get("limit"); raw != "" {
			n, err := strconv.Atoi(raw)
			if err != nil || n < 1 {
				response.Error(w, http.StatusBadRequest, "INVALID_REQUEST",
					"limit must be a positive integer", nil)
				return
			}
			limit = n
		}
		if limit > maxListLimit {
			limit = maxListLimit
		}

		jobs, err := st.ListJobs(r.Context(), store.JobFilter{Status: status, Limit: limit})
		if err != nil {
			response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR",
				"could not list jobs", nil)
			return
		}

		views := make([]jobSummaryView, 0, len(jobs))
		for _, j := range jobs {
			views = append(views, toSummaryView(j))
		}
		response.Collection(w, views, response.ListMeta{Count: len(views), Limit: limit})
	}
}

// NewGetJobHandler returns an http.HandlerFunc for GET /api/v1/jobs/{filename}.
func NewGetJobHandler(st store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		filename := chi.URLParam(r, "filename")

		job, err := st.GetJobByFilename(r.Context(), filename)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				response.Error(w, http.StatusNotFound, "JOB_NOT_FOUND",
					"no job exists for that filename", nil)
				return
			}
			response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR",
				"could not fetch job", nil)
			return
		}

		response.JSON(w, job)
	}
}

type statusResponse struct {
	Filename string `json:"filename"`
	Status   string `json:"status"`
	Source   string `json:"source"`
}

// NewJobStatusHandler returns an http.HandlerFunc for GET /api/v1/jobs/{filename}/status.
// The cache answers most polls; misses fall through to the store and re-prime it.
func NewJobStatusHandler(st store.Store, ca cache.Cache) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		filename := chi.URLParam(r, "filename")

		if status, ok, err := ca.GetJobStatus(r.Context(), filename); err == nil && ok {
			response.JSON(w, statusResponse{Filename: filename, Status: status, Source: "cache"})
			return
		}

		job, err := st.GetJobByFilename(r.Context(), filename)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				response.Error(w, http.StatusNotFound, "JOB_NOT_FOUND",
					"no job exists for that filename", nil)
				return
			}
			response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR",
				"could not fetch job status", nil)
			return
		}

		_ = ca.SetJobStatus(r.Context(), filename, job.Status, pipeline.StatusTTL)
		response.JSON(w, statusResponse{Filename: filename, Status: job.Status, Source: "store"})
	}
}
