package http

import (
	"context"
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

const rateLimiterSweepInterval = 5 * time.Minute

// RateLimiter decides whether the caller identified by key may proceed.
type RateLimiter interface {
	Allow(ctx context.Context, key string) rateDecision
	Close() error
}

type rateDecision struct {
	allowed    bool
	limit      int
	retryAfter time.Duration
}

type memoryRateLimiter struct {
	mu      sync.Mutex
	entries map[string]*limiterEntry
	rate    rate.Limit
	burst   int
	stopCh  chan struct{}
	once    sync.Once
}

type limiterEntry struct {
	limiter    *rate.Limiter
	lastAccess time.Time
}

// NewMemoryRateLimiter allows requests per window for each key, refilling
// continuously. A non-positive requests value disables limiting.
func NewMemoryRateLimiter(requests int, window time.Duration) RateLimiter {
	if window <= 0 {
		window = time.Minute
	}
	rl := &memoryRateLimiter{
		entries: make(map[string]*limiterEntry),
		rate:    rate.Limit(float64(requests) / window.Seconds()),
		burst:   requests,
		stopCh:  make(chan struct{}),
	}
	go rl.sweepLoop()
	return rl
}

func (rl *memoryRateLimiter) Allow(_ context.Context, key string) rateDecision {
	if rl.burst <= 0 {
		return rateDecision{allowed: true}
	}
	now := time.Now()

	rl.mu.Lock()
	entry, ok := rl.entries[key]
	if !ok {
		entry = &limiterEntry{limiter: rate.NewLimiter(rl.rate, rl.burst)}
		rl.entries[key] = entry
	}
	entry.lastAccess = now
	limiter := entry.limiter
	rl.mu.Unlock()

	r := limiter.ReserveN(now, 1)
	if delay := r.DelayFrom(now); delay > 0 {
		r.CancelAt(now)
		return rateDecision{allowed: false, limit: rl.burst, retryAfter: delay}
	}
	return rateDecision{allowed: true, limit: rl.burst}
}

func (rl *memoryRateLimiter) sweepLoop() {
	ticker := time.NewTicker(rateLimiterSweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			rl.cleanup(time.Now().Add(-time.Hour))
		case <-rl.stopCh:
			return
		}
	}
}

func (rl *memoryRateLimiter) cleanup(threshold time.Time) {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	for key, entry := range rl.entries {
		if entry.lastAccess.Before(threshold) {
			delete(rl.entries, key)
		}
	}
}

func (rl *memoryRateLimiter) Close() error {
	rl.once.Do(func() {
		close(rl.stopCh)
	})
	return nil
}

// rateLimit throttles every route except health checks and metrics scrapes, keyed by client IP.
func (h *Handler) rateLimit() gin.HandlerFunc {
	return func(c *gin.Context) {
		if h.limiter == nil {
			c.Next()
			return
		}
		switch c.Request.URL.Path {
		case "/health", "/metrics":
			c.Next()
			return
		}

		decision := h.limiter.Allow(c.Request.Context(), "ip:"+c.ClientIP())
		if decision.limit > 0 {
			c.Header("X-RateLimit-Limit", strconv.Itoa(decision.limit))
		}
		if !decision.allowed {
			route := c.FullPath()
			if route == "" {
				route = c.Request.URL.Path
			}
			h.metrics.recordRateLimitHit(route)
			if decision.retryAfter > 0 {
				c.Header("Retry-After", strconv.Itoa(int(math.Ceil(decision.retryAfter.Seconds()))))
			}
			respondError(c, http.StatusTooManyRequests, codeRateLimited, "rate limit exceeded")
			return
		}
		c.Next()
	}
}
