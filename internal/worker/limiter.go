package worker

import (
	"context"
	"path/filepath"
	"sync"

	"golang.org/x/time/rate"
)

// Limiter throttles file reads per directory so a scan over a network mount
// or a slow disk does not hammer a single folder
type Limiter struct {
	limiters     map[string]*rate.Limiter
	mu           sync.RWMutex
	defaultRate  rate.Limit
	defaultBurst int
}

// NewLimiter creates a limiter. readsPerSecond <= 0 disables throttling.
func NewLimiter(readsPerSecond float64, burst int) *Limiter {
	if burst <= 0 {
		burst = 5
	}

	limit := rate.Inf
	if readsPerSecond > 0 {
		limit = rate.Limit(readsPerSecond)
	}

	return &Limiter{
		limiters:     make(map[string]*rate.Limiter),
		defaultRate:  limit,
		defaultBurst: burst,
	}
}

// Wait blocks until a read of path is allowed or ctx is done
func (l *Limiter) Wait(ctx context.Context, path string) error {
	return l.getLimiter(directoryOf(path)).Wait(ctx)
}

// Allow reports whether a read of path may happen now, consuming a token if so
func (l *Limiter) Allow(path string) bool {
	return l.getLimiter(directoryOf(path)).Allow()
}

func (l *Limiter) getLimiter(dir string) *rate.Limiter {
	l.mu.RLock()
	limiter, exists := l.limiters[dir]
	l.mu.RUnlock()

	if exists {
		return limiter
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if limiter, exists := l.limiters[dir]; exists {
		return limiter
	}

	limiter = rate.NewLimiter(l.defaultRate, l.defaultBurst)
	l.limiters[dir] = limiter

	return limiter
}

// SetDirectoryRate overrides the rate for one directory
func (l *Limiter) SetDirectoryRate(dir string, readsPerSecond float64, burst int) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if burst <= 0 {
		burst = l.defaultBurst
	}

	l.limiters[filepath.Clean(dir)] = rate.NewLimiter(rate.Limit(readsPerSecond), burst)
}

func directoryOf(path string) string {
	return filepath.Dir(filepath.Clean(path))
}
