package middleware

import (
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/cmlabs-hris/hris-attendance-payroll/internal/handler/http/response"
	"github.com/go-chi/chi/v5"
	"golang.org/x/time/rate"
)

// idleLimiterTTL is how long an unused per-key limiter is kept.
const idleLimiterTTL = 10 * time.Minute

type keyedEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// KeyedRateLimiter keeps one token bucket per key.
type KeyedRateLimiter struct {
	mu        sync.Mutex
	entries   map[string]*keyedEntry
	limit     rate.Limit
	burst     int
	lastSweep time.Time
	now       func() time.Time
}

// NewKeyedRateLimiter allows perMinute requests per key with the given burst.
func NewKeyedRateLimiter(perMinute, burst int) *KeyedRateLimiter {
	return &KeyedRateLimiter{
		entries: make(map[string]*keyedEntry),
		limit:   rate.Limit(float64(perMinute) / 60),
		burst:   burst,
		now:     time.Now,
	}
}

// Reserve takes a token for key. When none is available it returns false and
// the delay until the next one.
func (l *KeyedRateLimiter) Reserve(key string) (bool, time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	l.sweep(now)

	entry, exists := l.entries[key]
	if !exists {
		entry = &keyedEntry{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.entries[key] = entry
	}
	entry.lastSeen = now

	reservation := entry.limiter.ReserveN(now, 1)
	if !reservation.OK() {
		return false, time.Minute
	}
	delay := reservation.DelayFrom(now)
	if delay > 0 {
		reservation.CancelAt(now)
		return false, delay
	}
	return true, 0
}

func (l *KeyedRateLimiter) sweep(now time.Time) {
	if now.Sub(l.lastSweep) < idleLimiterTTL {
		return
	}
	for key, entry := range l.entries {
		if now.Sub(entry.lastSeen) > idleLimiterTTL {
			delete(l.entries, key)
		}
	}
	l.lastSweep = now
}

// ByURLParam limits requests per value of a chi URL parameter. Requests
// without the parameter pass through.
func (l *KeyedRateLimiter) ByURLParam(param string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := chi.URLParam(r, param)
			if key == "" {
				next.ServeHTTP(w, r)
				return
			}

			if ok, retryAfter := l.Reserve(key); !ok {
				seconds := int(math.Ceil(retryAfter.Seconds()))
				w.Header().Set("Retry-After", strconv.Itoa(max(seconds, 1)))
				response.TooManyRequests(w, "Too many requests, slow down polling")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
