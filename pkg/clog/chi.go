package clog

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
)

type ChiOption func(*chiConfig)

type chiConfig struct {
	skip func(r *http.Request) bool
}

// WithChiFilter logs only the requests for which keep returns true.
func WithChiFilter(keep func(r *http.Request) bool) ChiOption {
	return func(c *chiConfig) {
		c.skip = func(r *http.Request) bool { return !keep(r) }
	}
}

// SlogChiMiddleware prepares a request-scoped attribute bag and writes one
// access log line per request once the handler returns.
func SlogChiMiddleware(opts ...ChiOption) func(http.Handler) http.Handler {
	var cfg chiConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			ctx := ContextWithSlog(r.Context())
			AddAttributes(ctx, map[string]any{
				"method": r.Method,
				"path":   r.URL.Path,
			})
			if id := middleware.GetReqID(ctx); id != "" {
				AddAttribute(ctx, "request_id", id)
			}

			next.ServeHTTP(ww, r.WithContext(ctx))

			if cfg.skip != nil && cfg.skip(r) {
				return
			}
			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			AddAttributes(ctx, map[string]any{
				"status":   status,
				"bytes":    ww.BytesWritten(),
				"duration": time.Since(start),
			})
			slog.Log(ctx, LevelForStatus(status), http.StatusText(status))
		})
	}
}
