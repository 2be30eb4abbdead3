package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"mediascribe/internal/api/response"
	"mediascribe/internal/cache"
	"mediascribe/internal/store"
)

type deleteResponse struct {
	JobID    uuid.UUID `json:"job_id"`
	Filename string    `json:"filename"`
	Deleted  bool      `json:"deleted"`
}

// NewDeleteJobHandler returns an http.HandlerFunc for DELETE /api/v1/jobs/{filename}.
// The filename resolves to the job id and the deletion is keyed by id. Jobs in
// processing are refused; the worker holding them owns the row and the source
// file until it finishes.
func NewDeleteJobHandler(st store.Store, ca cache.Cache, uploadDir string) http.HandlerFunc {
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
				"could not delete job", nil)
			return
		}

		if err := st.DeleteJob(r.Context(), job.ID); err != nil {
			switch {
			case errors.Is(err, store.ErrJobProcessing):
				response.Error(w, http.StatusConflict, "JOB_PROCESSING",
					"job is currently processing and cannot be deleted", nil)
			case errors.Is(err, store.ErrNotFound):
				response.Error(w, http.StatusNotFound, "JOB_NOT_FOUND",
					"no job exists for that filename", nil)
			default:
				response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR",
					"could not delete job", nil)
			}
			return
		}

		if err := os.Remove(filepath.Join(uploadDir, filename)); err != nil && !os.IsNotExist(err) {
			slog.Error("removing source file after delete", "filename", filename, "error", err)
		}
		_ = ca.DeleteJobStatus(r.Context(), filename)

		response.JSON(w, deleteResponse{JobID: job.ID, Filename: filename, Deleted: true})
	}
}
