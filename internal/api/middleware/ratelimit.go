package middleware

import (
	"net"
	"net/http"
	"strconv"
	"time"

	"mediascribe/internal/api/response"
	"mediascribe/internal/cache"
)

const defaultUploadsPerMinute = 10

// RateLimit bounds uploads per client IP using a one-minute Redis counter.
type RateLimit struct {
	cache         cache.Cache
	uploadsPerMin int
}

// NewRateLimit creates a new RateLimit middleware.
func NewRateLimit(c cache.Cache, uploadsPerMin int) *RateLimit {
	if uploadsPerMin <= 0 {
		uploadsPerMin = defaultUploadsPerMinute
	}
	return &RateLimit{cache: c, uploadsPerMin: uploadsPerMin}
}

// Limit applies rate limiting keyed by the requester's IP address.
func (rl *RateLimit) Limit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := cache.UploadRateKey(clientIP(r))
		count, err := rl.cache.IncrWithExpiry(r.Context(), key, 60*time.Second)
		if err != nil {
			// On Redis error, allow the request (fail open)
			next.ServeHTTP(w, r)
			return
		}

		remaining := rl.uploadsPerMin - int(count)
		if remaining < 0 {
			remaining = 0
		}

		w.Header().Set("X-RateLimit-Limit", strconv.Itoa(rl.uploadsPerMin))
		w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(remaining))
		w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(time.Now().Add(60*time.Second).Unix(), 10))

		if count > int64(rl.uploadsPerMin) {
			w.Header().Set("Retry-After", "60")
			response.Error(w, http.StatusTooManyRequests,
				"RATE_LIMIT_EXCEEDED", "Too many uploads", nil)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
