package http

import (
	"net/http"
	"time"

	"github.com/MKhiriev/go-secret-keeper/internal/logger"
)

// withLogging writes one access log line per request. Share ids are part
// of the path but are useless without the fragment key, so the path is
// logged as is.
func (h *Handler) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		log := logger.FromRequest(r)

		start := time.Now()
		lw := &responseWriter{ResponseWriter: w}

		next.ServeHTTP(lw, r)

		log.Info().
			Str("uri", r.URL.Path).
			Str("method", r.Method).
			Int("status", lw.Status()).
			Dur("duration", time.Since(start)).
			Int("size", lw.size).
			Send()
	})
}
