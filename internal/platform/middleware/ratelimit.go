package middleware

import (
	"net/http"
	"sync"
	"time"

	dErrors "geovault/pkg/domain-errors"
	"geovault/pkg/platform/httputil"
	"geovault/pkg/requestcontext"
)

// SubmitRateLimit bounds analysis request submission per actor with a simple
// token bucket. It protects the approval queue from a runaway researcher
// script; it is not a fairness mechanism.
func SubmitRateLimit(perMinute int) func(http.Handler) http.Handler {
	limiter := &bucketLimiter{
		capacity: float64(perMinute),
		refill:   float64(perMinute) / 60.0,
		buckets:  make(map[string]*bucket),
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			actor := requestcontext.Actor(r.Context())
			if actor == "" {
				actor = r.RemoteAddr
			}
			if !limiter.allow(actor, time.Now()) {
				httputil.WriteError(w, dErrors.New(dErrors.CodeRateLimited, "submission rate exceeded"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

type bucket struct {
	tokens   float64
	lastSeen time.Time
}

type bucketLimiter struct {
	mu       sync.Mutex
	capacity float64
	refill   float64 // tokens per second
	buckets  map[string]*bucket
}

func (l *bucketLimiter) allow(key string, now time.Time) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.evict(now)

	b, ok := l.buckets[key]
	if !ok {
		b = &bucket{tokens: l.capacity, lastSeen: now}
		l.buckets[key] = b
	}

	elapsed := now.Sub(b.lastSeen).Seconds()
	b.tokens = min(l.capacity, b.tokens+elapsed*l.refill)
	b.lastSeen = now

	if b.tokens < 1 {
		return false
	}
	b.tokens--
	return true
}

// evict drops buckets idle for longer than a full refill window. Such a
// bucket is back at capacity, so forgetting it changes nothing for the
// actor and keeps the map from growing with every address ever seen.
// Callers hold l.mu.
func (l *bucketLimiter) evict(now time.Time) {
	idle := time.Duration(l.capacity/l.refill) * time.Second
	for key, b := range l.buckets {
		if now.Sub(b.lastSeen) > idle {
			delete(l.buckets, key)
		}
	}
}
