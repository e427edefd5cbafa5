package mw

import (
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/MrSnakeDoc/jot/internal/utils"
)

type RateLimitConfig struct {
	Burst         int // requests allowed at once per client, 0 disables the limiter
	PerMinute     int // sustained requests per minute per client
	SweepInterval time.Duration
	IdleTTL       time.Duration
	TrustProxy    bool // resolve the client IP from proxy headers
}

type client struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

type limiter struct {
	cfg       RateLimitConfig
	limit     rate.Limit
	mu        sync.Mutex
	clients   map[string]*client
	lastSweep time.Time
}

func newLimiter(cfg RateLimitConfig) *limiter {
	if cfg.SweepInterval <= 0 {
		cfg.SweepInterval = time.Minute
	}
	if cfg.IdleTTL <= 0 {
		cfg.IdleTTL = 15 * time.Minute
	}
	if cfg.PerMinute < 1 {
		cfg.PerMinute = 1
	}
	return &limiter{
		cfg:       cfg,
		limit:     rate.Limit(float64(cfg.PerMinute) / 60.0),
		clients:   make(map[string]*client, 64),
		lastSweep: time.Now(),
	}
}

func (l *limiter) get(key string, now time.Time) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	if now.Sub(l.lastSweep) >= l.cfg.SweepInterval {
		for k, c := range l.clients {
			if now.Sub(c.lastSeen) > l.cfg.IdleTTL {
				delete(l.clients, k)
			}
		}
		l.lastSweep = now
	}

	c := l.clients[key]
	if c == nil {
		c = &client{limiter: rate.NewLimiter(l.limit, l.cfg.Burst)}
		l.clients[key] = c
	}
	c.lastSeen = now
	return c.limiter
}

// RateLimit throttles each client IP with a token bucket. A zero Burst
// turns the middleware into a passthrough.
func RateLimit(cfg RateLimitConfig) func(http.Handler) http.Handler {
	if cfg.Burst <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}

	l := newLimiter(cfg)
	limitStr := strconv.Itoa(cfg.Burst)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			now := time.Now()
			lim := l.get(utils.ClientIP(r, l.cfg.TrustProxy), now)

			res := lim.ReserveN(now, 1)
			if delay := res.DelayFrom(now); delay > 0 {
				res.CancelAt(now)
				w.Header().Set("Retry-After", strconv.Itoa(int(math.Ceil(delay.Seconds()))))
				w.Header().Set("X-RateLimit-Limit", limitStr)
				w.Header().Set("X-RateLimit-Remaining", "0")
				http.Error(w, http.StatusText(http.StatusTooManyRequests), http.StatusTooManyRequests)
				return
			}

			remaining := int(math.Floor(lim.TokensAt(now)))
			if remaining < 0 {
				remaining = 0
			}
			w.Header().Set("X-RateLimit-Limit", limitStr)
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(remaining))

			next.ServeHTTP(w, r)
		})
	}
}
