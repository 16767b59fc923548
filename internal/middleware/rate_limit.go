package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/ecochain/token-catalog/internal/utils"

	"github.com/gin-gonic/gin"
)

// sweepInterval is how often idle buckets are dropped
const sweepInterval = time.Minute

// RateLimiter implements a token bucket per caller. A caller is the session
// wallet when one is present and the client IP otherwise.
type RateLimiter struct {
	requestsPerMinute int
	burstSize         int
	buckets           map[string]*TokenBucket
	lastSweep         time.Time
	mu                sync.Mutex
	now               func() time.Time
}

// TokenBucket implements a token bucket for rate limiting
type TokenBucket struct {
	tokens       float64
	lastRefill   time.Time
	tokensPerSec float64
	maxTokens    float64
}

// NewRateLimiter creates a new rate limiter
func NewRateLimiter(requestsPerMinute, burstSize int) *RateLimiter {
	if burstSize < 1 {
		burstSize = 1
	}
	return &RateLimiter{
		requestsPerMinute: requestsPerMinute,
		burstSize:         burstSize,
		buckets:           make(map[string]*TokenBucket),
		now:               time.Now,
	}
}

// Allow takes one token from the bucket of key
func (r *RateLimiter) Allow(key string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	r.sweep(now)

	bucket, exists := r.buckets[key]
	if !exists {
		bucket = &TokenBucket{
			tokens:       float64(r.burstSize),
			lastRefill:   now,
			tokensPerSec: float64(r.requestsPerMinute) / 60.0,
			maxTokens:    float64(r.burstSize),
		}
		r.buckets[key] = bucket
	}

	// Refill tokens based on time elapsed
	elapsed := now.Sub(bucket.lastRefill).Seconds()
	bucket.lastRefill = now
	bucket.tokens += elapsed * bucket.tokensPerSec
	if bucket.tokens > bucket.maxTokens {
		bucket.tokens = bucket.maxTokens
	}

	if bucket.tokens >= 1.0 {
		bucket.tokens -= 1.0
		return true
	}
	return false
}

// Tracked returns the number of callers with a live bucket
func (r *RateLimiter) Tracked() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.buckets)
}

// sweep drops buckets that have been idle long enough to be full again
func (r *RateLimiter) sweep(now time.Time) {
	if now.Sub(r.lastSweep) < sweepInterval {
		return
	}
	r.lastSweep = now

	idle := sweepInterval
	if r.requestsPerMinute > 0 {
		if full := time.Duration(float64(r.burstSize) / float64(r.requestsPerMinute) * float64(time.Minute)); full > idle {
			idle = full
		}
	}
	for key, b := range r.buckets {
		if now.Sub(b.lastRefill) >= idle {
			delete(r.buckets, key)
		}
	}
}

// rateKey names the caller of c: the session wallet, or the client IP for
// anonymous requests
func rateKey(c *gin.Context) string {
	if address := CallerAddress(c); address != "" {
		return "wallet:" + address
	}
	return "ip:" + c.ClientIP()
}

// RateLimit creates middleware for rate limiting requests per caller. It must
// run after OptionalAuth for sessions to be keyed by wallet.
func RateLimit(requestsPerMinute, burstSize int) gin.HandlerFunc {
	return RateLimitWith(NewRateLimiter(requestsPerMinute, burstSize))
}

// RateLimitWith creates rate limiting middleware around limiter
func RateLimitWith(limiter *RateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !limiter.Allow(rateKey(c)) {
			utils.SendErrorResponse(c, http.StatusTooManyRequests, "Rate limit exceeded. Try again later.")
			c.Abort()
			return
		}
		c.Next()
	}
}
