package middleware

import (
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/nkiryanov/starterkit/internal/handlers/render"
)

const (
	defaultRateLimitHits   = 10
	defaultRateLimitWindow = time.Minute

	// Forget idle clients when tracking more than this
	rateLimitMaxClients = 5000
)

// RateLimiter is sliding window limiter of requests per client IP
type RateLimiter struct {
	mu      sync.Mutex
	maxHits int
	window  time.Duration
	hits    map[string][]time.Time
	now     func() time.Time

	// Proxies allowed to name the client in X-Forwarded-For
	proxies TrustedProxies
}

// Not positive values mean defaults: 10 hits per minute
func NewRateLimiter(maxHits int, window time.Duration) *RateLimiter {
	if maxHits <= 0 {
		maxHits = defaultRateLimitHits
	}
	if window <= 0 {
		window = defaultRateLimitWindow
	}

	return &RateLimiter{
		maxHits: maxHits,
		window:  window,
		hits:    make(map[string][]time.Time),
		now:     time.Now,
	}
}

// TrustProxies makes the limiter key clients behind the proxies by X-Forwarded-For
func (l *RateLimiter) TrustProxies(proxies TrustedProxies) *RateLimiter {
	l.proxies = proxies
	return l
}

func (l *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		allowed, retryAfter := l.allow(l.proxies.ClientIP(r))
		if !allowed {
			w.Header().Set("Retry-After", strconv.Itoa(int(math.Ceil(retryAfter.Seconds()))))
			render.ServiceError(w, "Too many attempts, try again later", http.StatusTooManyRequests)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (l *RateLimiter) allow(ip string) (bool, time.Duration) {
	now := l.now()
	threshold := now.Add(-l.window)

	l.mu.Lock()
	defer l.mu.Unlock()

	hits := l.hits[ip]
	recent := make([]time.Time, 0, len(hits)+1)
	for _, hit := range hits {
		if hit.After(threshold) {
			recent = append(recent, hit)
		}
	}

	if len(recent) >= l.maxHits {
		l.hits[ip] = recent
		retryAfter := max(recent[0].Add(l.window).Sub(now), time.Second)
		return false, retryAfter
	}

	l.hits[ip] = append(recent, now)

	if len(l.hits) > rateLimitMaxClients {
		for key, value := range l.hits {
			if len(value) == 0 || value[len(value)-1].Before(threshold) {
				delete(l.hits, key)
			}
		}
	}

	return true, 0
}
