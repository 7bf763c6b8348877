package api

import (
	"net"
	"net/http"
	"sync"

	"stolik/internal/config"

	"golang.org/x/time/rate"
)

// sessionToken pulls the opaque staff token from the configured header.
func (s *HTTPServer) sessionToken(r *http.Request) string {
	return r.Header.Get(s.cfg.SessionHeader)
}

func clientIP(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		return forwarded
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// ipLimiter throttles unauthenticated endpoints per client IP. Limiters are
// created lazily and kept for the process lifetime; the key space is bounded
// by the client population, not the request volume.
type ipLimiter struct {
	rps      rate.Limit
	burst    int
	limiters sync.Map // ip -> *rate.Limiter
}

func newIPLimiter(cfg config.APIRateLimitConfig) *ipLimiter {
	rps := rate.Limit(cfg.RPS)
	if rps <= 0 {
		rps = 5
	}
	burst := cfg.Burst
	if burst <= 0 {
		burst = 10
	}
	return &ipLimiter{rps: rps, burst: burst}
}

func (l *ipLimiter) Allow(ip string) bool {
	value, ok := l.limiters.Load(ip)
	if !ok {
		value, _ = l.limiters.LoadOrStore(ip, rate.NewLimiter(l.rps, l.burst))
	}
	return value.(*rate.Limiter).Allow()
}
