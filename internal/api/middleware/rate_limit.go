package middleware

import (
	"net"
	"net/http"
	"sync"
	"time"

	apperrors "linkr/internal/pkg/errors"
)

// RateLimiter is a token-bucket limiter keyed by client IP, refilled at
// limit/60 tokens per second. It guards the public redirect route.
type RateLimiter struct {
	store *sync.Map // map[string]*bucket
	limit int
}

type bucket struct {
	tokens     int
	lastRefill time.Time
	lastAccess time.Time
	mu         sync.Mutex
}

func NewRateLimiter(perMinute int) *RateLimiter {
	if perMinute < 1 {
		perMinute = 60
	}

	rl := &RateLimiter{
		store: &sync.Map{},
		limit: perMinute,
	}

	go rl.cleanupLoop()

	return rl
}

func (rl *RateLimiter) cleanupLoop() {
	ticker := time.NewTicker(10 * time.Minute)
	defer ticker.Stop()

	for range ticker.C {
		now := time.Now()
		rl.store.Range(func(key, value interface{}) bool {
			b := value.(*bucket)
			b.mu.Lock()
			if now.Sub(b.lastAccess) > 10*time.Minute {
				rl.store.Delete(key)
			}
			b.mu.Unlock()
			return true
		})
	}
}

func (rl *RateLimiter) Allow(key string) bool {
	now := time.Now()

	val, _ := rl.store.LoadOrStore(key, &bucket{
		tokens:     rl.limit,
		lastRefill: now,
		lastAccess: now,
	})

	b := val.(*bucket)
	b.mu.Lock()
	defer b.mu.Unlock()

	b.lastAccess = now

	elapsed := now.Sub(b.lastRefill)
	refillRate := float64(rl.limit) / 60.0
	refillTokens := int(elapsed.Seconds() * refillRate)

	if refillTokens > 0 {
		if b.tokens+refillTokens > rl.limit {
			b.tokens = rl.limit
		} else {
			b.tokens += refillTokens
		}
		b.lastRefill = now
	}

	if b.tokens > 0 {
		b.tokens--
		return true
	}

	return false
}

func (rl *RateLimiter) Handle(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ip := clientIP(r)

		if !rl.Allow(ip) {
			w.Header().Set("Retry-After", "60")
			apperrors.WriteError(w, http.StatusTooManyRequests, apperrors.ErrCodeRateLimitExceeded, "Rate limit exceeded", nil)
			return
		}

		next(w, r)
	}
}

func clientIP(r *http.Request) string {
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
