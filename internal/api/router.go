package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	mw "mediascribe/internal/api/middleware"
	"mediascribe/internal/api/response"
)

// Dependencies holds all handler and middleware dependencies for the router.
type Dependencies struct {
	RateLimit *mw.RateLimit

	HealthHandler     http.HandlerFunc
	UploadHandler     http.HandlerFunc
	ListJobsHandler   http.HandlerFunc
	GetJobHandler     http.HandlerFunc
	JobStatusHandler  http.HandlerFunc
	DeleteJobHandler  http.HandlerFunc
	TranscriptHandler http.HandlerFunc
	RSSHandler        http.HandlerFunc
}

// NewRouter builds the Chi router with middleware stack and all routes.
func NewRouter(deps Dependencies) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimw.RequestID)
	r.Use(mw.Logger)
	r.Use(mw.Recovery)

	r.Get("/api/v1/health", orNotImplemented(deps.HealthHandler))

	// Uploads are the only write-heavy surface and carry the rate limit.
	r.Group(func(r chi.Router) {
		if deps.RateLimit != nil {
			r.Use(deps.RateLimit.Limit)
		}
		r.Post("/api/v1/uploads", orNotImplemented(deps.UploadHandler))
	})

	r.Get("/api/v1/jobs", orNotImplemented(deps.ListJobsHandler))
	r.Get("/api/v1/jobs/{filename}", orNotImplemented(deps.GetJobHandler))
	r.Get("/api/v1/jobs/{filename}/status", orNotImplemented(deps.JobStatusHandler))
	r.Delete("/api/v1/jobs/{filename}", orNotImplemented(deps.DeleteJobHandler))

	r.Get("/transcriptions/{filename}", orNotImplemented(deps.TranscriptHandler))
	r.Get("/rss", orNotImplemented(deps.RSSHandler))

	return r
}

// orNotImplemented returns the handler if non-nil, or a 501 placeholder.
func orNotImplemented(h http.HandlerFunc) http.HandlerFunc {
	if h != nil {
		return h
	}
	return func(w http.ResponseWriter, r *http.Request) {
		response.Error(w, http.StatusNotImplemented, "NOT_IMPLEMENTED", "Endpoint not yet implemented", nil)
	}
}
