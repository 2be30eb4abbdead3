package handler

import (
	"bytes"
	"net/http"

	"mediascribe/internal/api/response"
	"mediascribe/internal/feed"
	"mediascribe/internal/store"
	"mediascribe/pkg/models"
)

// NewRSSHandler returns an http.HandlerFunc for GET /rss.
func NewRSSHandler(st store.Store, builder *feed.Builder) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		jobs, err := st.ListJobs(r.Context(), store.JobFilter{Status: models.JobStatusCompleted})
		if err != nil {
			response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR",
				"could not build feed", nil)
			return
		}

		var buf bytes.Buffer
		if err := builder.Render(&buf, jobs); err != nil {
			response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR",
				"could not build feed", nil)
			return
		}

		w.Header().Set("Content-Type", "application/rss+xml; charset=utf-8")
		w.Write(buf.Bytes())
	}
}
