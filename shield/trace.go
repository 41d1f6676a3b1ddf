package shield

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"log/slog"
	"net/http"
)

// TraceID assigns a random trace ID to each request, echoes it in the
// X-Trace-ID response header, and stores a request-scoped logger under
// LoggerKey.
func TraceID(base *slog.Logger) func(http.Handler) http.Handler {
	if base == nil {
		base = slog.Default()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := make([]byte, 4)
			rand.Read(id)
			traceID := hex.EncodeToString(id)
			w.Header().Set("X-Trace-ID", traceID)

			logger := base.With(
				"trace_id", traceID,
				"method", r.Method,
				"path", r.URL.Path,
			)
			logger.Debug("request")
			ctx := context.WithValue(r.Context(), LoggerKey, logger)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
