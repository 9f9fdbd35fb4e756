package server

import (
	"fmt"
	"math"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// ipRateLimiter keeps one token bucket per client IP. Each bucket holds
// limit tokens and refills at limit per window. Buckets idle for a full
// window are dropped.
type ipRateLimiter struct {
	mu        sync.Mutex
	limit     int
	window    time.Duration
	visitors  map[string]*visitor
	lastSweep time.Time
	now       func() time.Time
}

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// newIPRateLimiter returns nil when limit is not positive, which disables
// rate limiting.
func newIPRateLimiter(limit int, window time.Duration) *ipRateLimiter {
	if limit <= 0 || window <= 0 {
		return nil
	}
	return &ipRateLimiter{
		limit:    limit,
		window:   window,
		visitors: make(map[string]*visitor),
		now:      time.Now,
	}
}

// allow reports whether ip may start another request now. When it may not,
// it also returns how long until the next token.
func (l *ipRateLimiter) allow(ip string) (bool, time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if now.Sub(l.lastSweep) >= l.window {
		for key, v := range l.visitors {
			if now.Sub(v.lastSeen) >= l.window {
				delete(l.visitors, key)
			}
		}
		l.lastSweep = now
	}

	v, ok := l.visitors[ip]
	if !ok {
		v = &visitor{
			limiter: rate.NewLimiter(rate.Every(l.window/time.Duration(l.limit)), l.limit),
		}
		l.visitors[ip] = v
	}
	v.lastSeen = now

	r := v.limiter.ReserveN(now, 1)
	if !r.OK() {
		return false, l.window
	}
	if delay := r.DelayFrom(now); delay > 0 {
		r.CancelAt(now)
		return false, delay
	}
	return true, 0
}

// describe renders the limit the way it is reported to clients.
func (l *ipRateLimiter) describe() string {
	if l.window == time.Hour {
		return fmt.Sprintf("%d per 1 hour", l.limit)
	}
	return fmt.Sprintf("%d per %s", l.limit, l.window)
}

// rateLimit rejects requests beyond the per-IP limit with 429.
func (s *Server) rateLimit(next http.Handler) http.Handler {
	if s.limiter == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := clientIP(r)
		ok, retryAfter := s.limiter.allow(ip)
		if !ok {
			s.metrics.rateLimited.Inc()
			s.logger.Info("rate limit exceeded",
				"request_id", requestIDFrom(r.Context()),
				"client", ip,
			)
			w.Header().Set("Retry-After", strconv.Itoa(int(math.Ceil(retryAfter.Seconds()))))
			writeJSON(w, http.StatusTooManyRequests, map[string]string{
				"error": "Rate limit exceeded: " + s.limiter.describe(),
			})
			return
		}
		next.ServeHTTP(w, r)
	})
}

// clientIP is the remote address of the connection. Forwarding headers are
// not trusted.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
