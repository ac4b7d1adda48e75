package httpx

import (
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// RateLimitConfig defines token-bucket parameters for a route.
type RateLimitConfig struct {
	// RequestsPerWindow is the number of requests allowed per Window.
	RequestsPerWindow int
	// Window is the time window for rate limiting.
	Window time.Duration
	// Burst allows temporary bursts above the sustained rate.
	Burst int
}

// Rate limit profiles for the different endpoint classes.
var (
	// StrictLimit for the public redemption/validation endpoints
	// (token guessing prevention).
	StrictLimit = RateLimitConfig{RequestsPerWindow: 10, Window: time.Minute, Burst: 10}

	// ModerateLimit for authenticated administrator operations.
	ModerateLimit = RateLimitConfig{RequestsPerWindow: 30, Window: time.Minute, Burst: 30}

	// LenientLimit for health endpoints polled by monitoring.
	LenientLimit = RateLimitConfig{RequestsPerWindow: 120, Window: time.Minute, Burst: 120}
)

// clientIP extracts the caller address, honouring proxy headers.
func clientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		if first, _, ok := strings.Cut(xff, ","); ok {
			return strings.TrimSpace(first)
		}
		return strings.TrimSpace(xff)
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return strings.TrimSpace(xri)
	}
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

// limiterPool keeps one rate.Limiter per key with lazy eviction of idle
// entries so unbounded distinct callers don't leak memory.
type limiterPool struct {
	mu       sync.Mutex
	limiters map[string]*pooledLimiter
	cfg      RateLimitConfig
}

type pooledLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

const limiterIdleTTL = 10 * time.Minute

func newLimiterPool(cfg RateLimitConfig) *limiterPool {
	return &limiterPool{
		limiters: make(map[string]*pooledLimiter),
		cfg:      cfg,
	}
}

func (p *limiterPool) get(key string) *rate.Limiter {
	p.mu.Lock()
	defer p.mu.Unlock()

	now := time.Now()
	if len(p.limiters) > 1024 {
		for k, pl := range p.limiters {
			if now.Sub(pl.lastSeen) > limiterIdleTTL {
				delete(p.limiters, k)
			}
		}
	}

	pl, ok := p.limiters[key]
	if !ok {
		every := p.cfg.Window / time.Duration(p.cfg.RequestsPerWindow)
		pl = &pooledLimiter{limiter: rate.NewLimiter(rate.Every(every), p.cfg.Burst)}
		p.limiters[key] = pl
	}
	pl.lastSeen = now
	return pl.limiter
}

// RateLimitByIP limits requests per client IP using a token bucket.
func RateLimitByIP(cfg RateLimitConfig) Middleware {
	pool := newLimiterPool(cfg)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !pool.get(clientIP(r)).Allow() {
				w.Header().Set("Retry-After", "60")
				WriteError(w, http.StatusTooManyRequests, "rate_limited", "Too many requests")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
