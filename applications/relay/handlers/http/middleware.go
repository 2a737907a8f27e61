package http

import (
	"context"
	"net/http"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/google/uuid"
)

const CorrelationIDHeader = "X-Correlation-ID"

type correlationIDKey struct{}

var correlationHeaders = []string{CorrelationIDHeader, "X-Request-ID", "X-Trace-ID"}

// CorrelationID tags every request with an id taken from the first known
// tracing header, or a fresh UUID, and echoes it on the response.
func CorrelationID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := ""
		for _, h := range correlationHeaders {
			if id = r.Header.Get(h); id != "" {
				break
			}
		}
		if id == "" {
			id = uuid.New().String()
		}

		w.Header().Set(CorrelationIDHeader, id)
		ctx := context.WithValue(r.Context(), correlationIDKey{}, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func CorrelationIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(correlationIDKey{}).(string)
	return id
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(status int) {
	s.status = status
	s.ResponseWriter.WriteHeader(status)
}

func RequestLogger(logger log.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

			next.ServeHTTP(rec, r)

			size := "unknown"
			if r.ContentLength >= 0 {
				size = humanize.Bytes(uint64(r.ContentLength))
			}

			level.Info(logger).Log("msg", "request handled",
				"method", r.Method,
				"path", r.URL.Path,
				"status", rec.status,
				"size", size,
				"took", time.Since(start),
				"correlation_id", CorrelationIDFromContext(r.Context()),
			)
		})
	}
}
