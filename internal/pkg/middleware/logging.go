package middleware

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// statusWriter captures the status code written by downstream handlers so
// RequestLogger can log it after the fact.
type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

// RequestLogger logs one line per request with the chi request ID, method,
// path, status and duration.
func RequestLogger(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}

			next.ServeHTTP(sw, r)

			logger.Info("request completed",
				zap.String("request_id", middleware.GetReqID(r.Context())),
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", sw.status),
				zap.Duration("duration", time.Since(start)),
			)
		})
	}
}

// ErrorHandler recovers from panics in downstream handlers and responds
// with the standard error envelope instead of crashing the connection.
func ErrorHandler(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					logger.Error("panic recovered",
						zap.Any("error", rec),
						zap.String("path", r.URL.Path),
						zap.String("method", r.Method),
					)
					RespondError(w, errPanic(rec))
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

func errPanic(rec interface{}) error {
	if err, ok := rec.(error); ok {
		return err
	}
	return errPanicValue{rec}
}

type errPanicValue struct{ v interface{} }

func (e errPanicValue) Error() string { return "panic: " + toString(e.v) }

func toString(v interface{}) string {
	if s, ok := v.(string); ok {
		return s
	}
	return "unknown panic"
}
