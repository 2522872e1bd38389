package spanhttp

import (
	"net/http"

	"github.com/felixge/httpsnoop"
	"github.com/rs/zerolog"
)

// AccessLog logs one line per request with the response code, duration and bytes
// written.
func AccessLog(logger zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			metrics := httpsnoop.CaptureMetrics(next, w, r)
			logger.Info().
				Int("response_code", metrics.Code).
				Dur("duration", metrics.Duration).
				Int64("bytes_sent", metrics.Written).
				Str("remote_addr", r.RemoteAddr).
				Msgf("%s %s", r.Method, r.URL)
		})
	}
}
