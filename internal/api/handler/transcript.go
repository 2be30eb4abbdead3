package handler

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"

	"mediascribe/internal/api/response"
	"mediascribe/internal/store"
	"mediascribe/pkg/models"
)

// NewTranscriptHandler returns an http.HandlerFunc for GET /transcriptions/{filename}.
// It serves the stored transcript as a plain-text download.
func NewTranscriptHandler(st store.Store) http.HandlerFunc {
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
				"could not fetch transcript", nil)
			return
		}

		if job.Status != models.JobStatusCompleted || job.Transcription == nil {
			response.Error(w, http.StatusNotFound, "TRANSCRIPT_NOT_READY",
				"transcription has not completed for that file", nil)
			return
		}

		attachment := transcriptFilename(job.Filename)
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", attachment))
		io.WriteString(w, *job.Transcription)
	}
}

func transcriptFilename(mediaFilename string) string {
	ext := filepath.Ext(mediaFilename)
	return strings.TrimSuffix(mediaFilename, ext) + ".txt"
}
