package middleware

import (
	apperrors "agendo/pkg/errors"
	httputil "agendo/pkg/http"
	"agendo/pkg/logger"
	"context"
	"net/http"
	"sync"
	"time"
)

// deadlineWriter lets either the handler or the timeout path answer, never
// both. The first one to claim it owns the response.
type deadlineWriter struct {
	http.ResponseWriter
	mu      sync.Mutex
	claimed bool
	expired bool
}

func (dw *deadlineWriter) claim() bool {
	if dw.expired {
		return false
	}
	dw.claimed = true
	return true
}

func (dw *deadlineWriter) WriteHeader(code int) {
	dw.mu.Lock()
	defer dw.mu.Unlock()
	if dw.claimed || !dw.claim() {
		return
	}
	dw.ResponseWriter.WriteHeader(code)
}

func (dw *deadlineWriter) Write(b []byte) (int, error) {
	dw.mu.Lock()
	defer dw.mu.Unlock()
	if !dw.claimed && !dw.claim() {
		return 0, http.ErrHandlerTimeout
	}
	if dw.expired {
		return 0, http.ErrHandlerTimeout
	}
	return dw.ResponseWriter.Write(b)
}

// expire marks the writer dead and reports whether the handler had not
// answered yet.
func (dw *deadlineWriter) expire() bool {
	dw.mu.Lock()
	defer dw.mu.Unlock()
	dw.expired = true
	return !dw.claimed
}

// RequestTimeout bounds every request by timeout. Handlers see the deadline
// through r.Context(); if they have not answered by then the client gets a
// TIMEOUT error and later writes are dropped.
func RequestTimeout(timeout time.Duration, log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, cancel := context.WithTimeout(r.Context(), timeout)
			defer cancel()

			dw := &deadlineWriter{ResponseWriter: w}
			done := make(chan struct{})
			go func() {
				defer close(done)
				next.ServeHTTP(dw, r.WithContext(ctx))
			}()

			select {
			case <-done:
			case <-ctx.Done():
				if !dw.expire() {
					return
				}
				log.Warn("Request timed out",
					"request_id", logger.RequestIDFromContext(ctx),
					"method", r.Method,
					"path", r.URL.Path,
					"timeout", timeout,
				)
				_ = httputil.WriteError(w, apperrors.New(apperrors.CodeTimeout, "Request timeout", http.StatusServiceUnavailable))
			}
		})
	}
}
