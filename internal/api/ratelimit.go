package api

import (
	"net"
	"net/http"
	"strings"
	"sync"
	"time"
)

// RateLimitConfig controls one limiter's window.
type RateLimitConfig struct {
	RequestsPerMinute int
	BurstSize         int
}

// DefaultRateLimitConfig returns the limit applied to paths without
// a specific override.
func DefaultRateLimitConfig() RateLimitConfig {
	return RateLimitConfig{
		RequestsPerMinute: 60,
		BurstSize:         10,
	}
}

// RateLimiter is a sliding-window limiter keyed by client ID.
type RateLimiter struct {
	mu      sync.Mutex
	cfg     RateLimitConfig
	clients map[string][]time.Time
}

// NewRateLimiter creates a limiter with the given config.
func NewRateLimiter(cfg RateLimitConfig) *RateLimiter {
	return &RateLimiter{
		cfg:     cfg,
		clients: make(map[string][]time.Time),
	}
}

// Allow reports whether the client may make another request now.
func (rl *RateLimiter) Allow(clientID string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	cutoff := now.Add(-time.Minute)

	window := rl.clients[clientID]
	kept := window[:0]
	for _, t := range window {
		if t.After(cutoff) {
			kept = append(kept, t)
		}
	}

	limit := rl.cfg.RequestsPerMinute + rl.cfg.BurstSize
	if len(kept) >= limit {
		rl.clients[clientID] = kept
		return false
	}

	rl.clients[clientID] = append(kept, now)
	return true
}

// prune drops clients whose whole window has expired.
func (rl *RateLimiter) prune() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	cutoff := time.Now().Add(-time.Minute)
	for id, window := range rl.clients {
		if len(window) == 0 || !window[len(window)-1].After(cutoff) {
			delete(rl.clients, id)
		}
	}
}

// PathRateLimiter applies per-path-prefix limits with a default
// fallback limiter.
type PathRateLimiter struct {
	mu          sync.RWMutex
	fallback    *RateLimiter
	perPath     map[string]*RateLimiter
	stopCleanup chan struct{}
}

// NewPathRateLimiter creates a path-aware limiter and starts its
// cleanup loop.
func NewPathRateLimiter(defaultCfg RateLimitConfig) *PathRateLimiter {
	prl := &PathRateLimiter{
		fallback:    NewRateLimiter(defaultCfg),
		perPath:     make(map[string]*RateLimiter),
		stopCleanup: make(chan struct{}),
	}
	go prl.cleanupLoop()
	return prl
}

// SetPathLimit installs a dedicated limit for a path prefix.
func (prl *PathRateLimiter) SetPathLimit(pathPrefix string, cfg RateLimitConfig) {
	prl.mu.Lock()
	defer prl.mu.Unlock()
	prl.perPath[pathPrefix] = NewRateLimiter(cfg)
}

// Allow picks the most specific limiter for path and consults it.
func (prl *PathRateLimiter) Allow(clientID, path string) bool {
	prl.mu.RLock()
	limiter := prl.fallback
	longest := 0
	for prefix, l := range prl.perPath {
		if strings.HasPrefix(path, prefix) && len(prefix) > longest {
			limiter = l
			longest = len(prefix)
		}
	}
	prl.mu.RUnlock()

	return limiter.Allow(clientID)
}

// Stop halts the cleanup loop.
func (prl *PathRateLimiter) Stop() {
	close(prl.stopCleanup)
}

func (prl *PathRateLimiter) cleanupLoop() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-prl.stopCleanup:
			return
		case <-ticker.C:
			prl.mu.RLock()
			limiters := make([]*RateLimiter, 0, len(prl.perPath)+1)
			limiters = append(limiters, prl.fallback)
			for _, l := range prl.perPath {
				limiters = append(limiters, l)
			}
			prl.mu.RUnlock()

			for _, l := range limiters {
				l.prune()
			}
		}
	}
}

// PathRateLimitMiddleware rejects over-limit requests with 429.
func PathRateLimitMiddleware(prl *PathRateLimiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !prl.Allow(getClientIP(r), r.URL.Path) {
				w.Header().Set("Retry-After", "60")
				http.Error(w, "rate limit exceeded", http.StatusTooManyRequests)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// getClientIP extracts the client address, honoring proxy headers.
func getClientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		if idx := strings.Index(fwd, ","); idx > 0 {
			return strings.TrimSpace(fwd[:idx])
		}
		return strings.TrimSpace(fwd)
	}
	if real := r.Header.Get("X-Real-IP"); real != "" {
		return real
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
