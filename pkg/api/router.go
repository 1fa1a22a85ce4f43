// Package api provides the kioskd HTTP control surface: a GET-only router
// over the reconciliation core plus the server lifecycle around it.
package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/marmos91/kioskd/internal/logger"
	"github.com/marmos91/kioskd/pkg/api/handlers"
	"github.com/marmos91/kioskd/pkg/config"
	"github.com/marmos91/kioskd/pkg/metrics"
)

// NewRouter creates the chi router with all middleware and routes.
//
// Route aliases mirror what toolbar clients already call:
//   - GET /, /debug, /mode     - status snapshot, no mutation
//   - GET /kiosk, /hide        - converge on kiosk mode (?force=1)
//   - GET /show, /desktop      - converge on normal mode (?force=1)
//   - GET /restart, /reset     - unconditional stack restart
//   - GET /metrics             - Prometheus exposition (when enabled)
func NewRouter(ctrl handlers.SessionController, clientLog config.ClientLogConfig, exposeMetrics bool) http.Handler {
	r := chi.NewRouter()

	// Middleware stack - order matters.
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(jsonRecoverer)
	r.Use(newClientLogger(clientLog).middleware)

	h := handlers.NewSessionHandler(ctrl)

	for _, path := range []string{"/", "/debug", "/mode"} {
		r.Get(path, h.Status)
	}
	for _, path := range []string{"/kiosk", "/hide"} {
		r.Get(path, h.Kiosk)
	}
	for _, path := range []string{"/show", "/desktop"} {
		r.Get(path, h.Show)
	}
	for _, path := range []string{"/restart", "/reset"} {
		r.Get(path, h.Restart)
	}

	if exposeMetrics {
		if reg := metrics.GetRegistry(); reg != nil {
			r.Get("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}).ServeHTTP)
		}
	}

	r.NotFound(h.NotFound)
	return r
}

// requestLogger logs request start (debug) and completion (info) with the
// structured logger.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		requestID := middleware.GetReqID(r.Context())

		logger.Debug("request started",
			"request_id", requestID,
			"method", r.Method,
			"path", r.URL.Path,
			"remote_addr", r.RemoteAddr,
		)

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		logger.Info("request completed",
			"request_id", requestID,
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration_ms", logger.Duration(start),
		)
	})
}

// jsonRecoverer catches panics at the request boundary and reports them as
// a generic JSON failure. No error ever escapes to terminate the server.
func jsonRecoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				logger.Error("panic in request handler",
					"path", r.URL.Path, "panic", rec)
				handlers.WriteInternalError(w, "internal error")
			}
		}()
		next.ServeHTTP(w, r)
	})
}
