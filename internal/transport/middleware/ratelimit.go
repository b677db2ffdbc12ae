package middleware

import (
	"math"
	"net"
	"net/http"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"
)

// idleTTL is how long a client limiter survives without requests.
const idleTTL = 10 * time.Minute

// RateLimiter implements per-IP token bucket rate limiting.
type RateLimiter struct {
	clients  sync.Map // map[string]*client
	stop     chan struct{}
	stopOnce sync.Once
}

type client struct {
	limiter  *rate.Limiter
	lastSeen atomic.Int64 // unix nanos
}

// NewRateLimiter creates a rate limiter with background cleanup.
// Call Stop() on shutdown.
func NewRateLimiter(cleanupInterval time.Duration) *RateLimiter {
	rl := &RateLimiter{stop: make(chan struct{})}
	go rl.cleanup(cleanupInterval)
	return rl
}

// Stop terminates the background cleanup goroutine. It is safe to call twice.
func (rl *RateLimiter) Stop() {
	rl.stopOnce.Do(func() { close(rl.stop) })
}

// Limit returns middleware that rate-limits requests to maxPerMinute per IP.
// A non-positive limit disables limiting.
func (rl *RateLimiter) Limit(maxPerMinute int) Middleware {
	return func(next http.Handler) http.Handler {
		if maxPerMinute <= 0 {
			return next
		}
		retryAfter := strconv.Itoa(int(math.Ceil(60.0 / float64(maxPerMinute))))

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			c := rl.client(clientIP(r), maxPerMinute)
			if !c.limiter.Allow() {
				w.Header().Set("Retry-After", retryAfter)
				writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func (rl *RateLimiter) client(key string, maxPerMinute int) *client {
	if v, ok := rl.clients.Load(key); ok {
		c := v.(*client)
		c.lastSeen.Store(time.Now().UnixNano())
		return c
	}

	fresh := &client{
		limiter: rate.NewLimiter(rate.Every(time.Minute/time.Duration(maxPerMinute)), maxPerMinute),
	}
	fresh.lastSeen.Store(time.Now().UnixNano())
	v, _ := rl.clients.LoadOrStore(key, fresh)
	return v.(*client)
}

func (rl *RateLimiter) cleanup(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-rl.stop:
			return
		case <-ticker.C:
			cutoff := time.Now().Add(-idleTTL).UnixNano()
			rl.clients.Range(func(key, value any) bool {
				if value.(*client).lastSeen.Load() < cutoff {
					rl.clients.Delete(key)
				}
				return true
			})
		}
	}
}

// clientIP strips the port from RemoteAddr. Addresses without a port are
// used as-is.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
