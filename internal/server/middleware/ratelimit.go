// file: internal/server/middleware/ratelimit.go
// version: 1.0.0
// guid: e495d6e7-f809-1021-3243-5465768798a9

package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// SubjectRateLimiter is a per-subject token bucket limiter. Limiting by
// subject rather than IP protects the upstream exchange endpoint: one user
// spread across many clients still gets one budget.
type SubjectRateLimiter struct {
	mu             sync.Mutex
	entries        map[string]*limiterEntry
	requestsPerMin int
	burst          int
	idleTTL        time.Duration
}

func NewSubjectRateLimiter(requestsPerMinute int, burst int) *SubjectRateLimiter {
	if requestsPerMinute < 1 {
		requestsPerMinute = 1
	}
	if burst < 1 {
		burst = 1
	}
	return &SubjectRateLimiter{
		entries:        make(map[string]*limiterEntry),
		requestsPerMin: requestsPerMinute,
		burst:          burst,
		idleTTL:        15 * time.Minute,
	}
}

func (r *SubjectRateLimiter) limiterForSubject(subject string) *rate.Limiter {
	now := time.Now()

	r.mu.Lock()
	defer r.mu.Unlock()

	for key, entry := range r.entries {
		if now.Sub(entry.lastSeen) > r.idleTTL {
			delete(r.entries, key)
		}
	}

	entry, ok := r.entries[subject]
	if !ok {
		perSecond := float64(r.requestsPerMin) / 60.0
		entry = &limiterEntry{
			limiter:  rate.NewLimiter(rate.Limit(perSecond), r.burst),
			lastSeen: now,
		}
		r.entries[subject] = entry
		return entry.limiter
	}

	entry.lastSeen = now
	return entry.limiter
}

// Middleware enforces the limit keyed by the given subject extractor.
// Requests with no extractable subject fall back to the client IP so
// unauthenticated noise cannot share one unlimited bucket.
func (r *SubjectRateLimiter) Middleware(subjectOf func(*gin.Context) string) gin.HandlerFunc {
	return func(c *gin.Context) {
		subject := ""
		if subjectOf != nil {
			subject = subjectOf(c)
		}
		if subject == "" {
			subject = "ip:" + c.ClientIP()
		}
		if !r.limiterForSubject(subject).Allow() {
			c.JSON(http.StatusTooManyRequests, gin.H{
				"error": "rate limit exceeded",
			})
			c.Abort()
			return
		}
		c.Next()
	}
}
