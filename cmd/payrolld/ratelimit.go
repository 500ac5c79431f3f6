// ratelimit.go - Per-client request rate limiting.

package main

import (
	"net"
	"net/http"
	"sync"
	"time"
)

// tokenBucket is a simple token bucket refilled at a fixed rate.
type tokenBucket struct {
	mu           sync.Mutex
	tokens       int
	maxTokens    int
	refillRate   int
	refillPeriod time.Duration
	lastRefill   time.Time
}

func newTokenBucket(maxTokens, refillRate int, refillPeriod time.Duration) *tokenBucket {
	return &tokenBucket{
		tokens:       maxTokens,
		maxTokens:    maxTokens,
		refillRate:   refillRate,
		refillPeriod: refillPeriod,
		lastRefill:   time.Now(),
	}
}

// allow consumes a token if one is available.
func (tb *tokenBucket) allow() bool {
	tb.mu.Lock()
	defer tb.mu.Unlock()

	now := time.Now()
	refills := int(now.Sub(tb.lastRefill) / tb.refillPeriod)
	if refills > 0 {
		tb.tokens += refills * tb.refillRate
		if tb.tokens > tb.maxTokens {
			tb.tokens = tb.maxTokens
		}
		tb.lastRefill = now
	}

	if tb.tokens > 0 {
		tb.tokens--
		return true
	}
	return false
}

// ClientRateLimiter keeps one token bucket per client address.
type ClientRateLimiter struct {
	mu           sync.Mutex
	buckets      map[string]*tokenBucket
	maxTokens    int
	refillRate   int
	refillPeriod time.Duration
}

// NewClientRateLimiter builds a limiter allowing `burst` immediate requests
// and `perMinute` sustained requests per client.
func NewClientRateLimiter(burst, perMinute int) *ClientRateLimiter {
	return &ClientRateLimiter{
		buckets:      make(map[string]*tokenBucket),
		maxTokens:    burst,
		refillRate:   1,
		refillPeriod: time.Minute / time.Duration(perMinute),
	}
}

// Allow reports whether a request from the given client may proceed.
func (rl *ClientRateLimiter) Allow(client string) bool {
	rl.mu.Lock()
	bucket, ok := rl.buckets[client]
	if !ok {
		bucket = newTokenBucket(rl.maxTokens, rl.refillRate, rl.refillPeriod)
		rl.buckets[client] = bucket
	}
	rl.mu.Unlock()

	return bucket.allow()
}

// Middleware rejects over-limit requests with 429 before they reach the
// ledger. Clients are keyed by remote IP.
func (rl *ClientRateLimiter) Middleware(metrics *Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			host, _, err := net.SplitHostPort(r.RemoteAddr)
			if err != nil {
				host = r.RemoteAddr
			}
			if !rl.Allow(host) {
				metrics.RateLimited.Inc()
				http.Error(w, `{"error":"rate limit exceeded"}`, http.StatusTooManyRequests)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
