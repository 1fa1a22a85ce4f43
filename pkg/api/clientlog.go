package api

import (
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/marmos91/kioskd/internal/logger"
	"github.com/marmos91/kioskd/pkg/config"
)

// seenTablePruneThreshold bounds the dedup table; above it, expired
// entries are dropped opportunistically on the next insert.
const seenTablePruneThreshold = 2000

// clientLogger logs one line per (client IP, User-Agent) signature per TTL
// window, so browser identity shows up in the logs without /mode polling
// flooding them.
type clientLogger struct {
	cfg config.ClientLogConfig

	mu   sync.Mutex
	seen map[string]time.Time
}

func newClientLogger(cfg config.ClientLogConfig) *clientLogger {
	return &clientLogger{
		cfg:  cfg,
		seen: make(map[string]time.Time),
	}
}

// middleware wraps next with client-identity logging. Disabled config
// returns next unchanged.
func (c *clientLogger) middleware(next http.Handler) http.Handler {
	if !c.cfg.Enabled {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c.maybeLog(r)
		next.ServeHTTP(w, r)
	})
}

func (c *clientLogger) maybeLog(r *http.Request) {
	ip := clientIP(r)
	ua := r.Header.Get("User-Agent")
	key := ip + "|" + ua
	now := time.Now()

	c.mu.Lock()
	if last, ok := c.seen[key]; ok && now.Sub(last) < c.cfg.TTL {
		c.mu.Unlock()
		return
	}
	c.seen[key] = now
	if len(c.seen) > seenTablePruneThreshold {
		cutoff := now.Add(-c.cfg.TTL)
		for k, ts := range c.seen {
			if ts.Before(cutoff) {
				delete(c.seen, k)
			}
		}
	}
	c.mu.Unlock()

	referer := r.Header.Get("Referer")
	if referer == "" {
		referer = r.Header.Get("Referrer")
	}

	logger.Info("client seen",
		"ip", ip,
		"path", r.URL.Path,
		"force", r.URL.Query().Get("force") == "1",
		"host", clip(r.Host, 120),
		"user_agent", clip(ua, c.cfg.MaxUserAgent),
		"accept_language", clip(r.Header.Get("Accept-Language"), 120),
		"origin", clip(r.Header.Get("Origin"), 200),
		"referer", clip(referer, c.cfg.MaxReferer),
	)
}

// clientIP prefers the forwarding headers set by the fronting proxy. The
// RemoteAddr fallback drops the ephemeral port: the dedup key must be
// stable across connections from the same client.
func clientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		return strings.TrimSpace(strings.Split(xff, ",")[0])
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return strings.TrimSpace(xri)
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}

func clip(s string, n int) string {
	if len(s) <= n {
		return s
	}
	if n <= 3 {
		return s[:n]
	}
	return s[:n-3] + "..."
}
