package ratelimit

import (
	"sync"
	"time"
)

// memoryLimiter implements an in-memory fixed window rate limiter.
// Each key owns a counter that is reset when its window elapses.
type memoryLimiter struct {
	mu      sync.Mutex
	windows map[string]*window
	config  Config
	now     func() time.Time

	cleanupT *time.Ticker
	stopCh   chan struct{}
	stopOnce sync.Once
}

type window struct {
	count int
	reset time.Time
}

// NewMemoryLimiter creates a new in-memory fixed window rate limiter.
func NewMemoryLimiter(cfg Config) Limiter {
	return newMemoryLimiter(cfg, time.Now)
}

func newMemoryLimiter(cfg Config, now func() time.Time) *memoryLimiter {
	if cfg.Window <= 0 {
		cfg.Window = DefaultConfig().Window
	}
	l := &memoryLimiter{
		windows: make(map[string]*window),
		config:  cfg,
		now:     now,
		stopCh:  make(chan struct{}),
	}

	l.cleanupT = time.NewTicker(cfg.Window * 2)
	go l.cleanup()

	return l
}

// Allow counts a request for key in its current window.
func (l *memoryLimiter) Allow(key string) Decision {
	now := l.now()
	if !l.config.Enabled {
		return Decision{
			Allowed:   true,
			Limit:     l.config.Requests,
			Remaining: l.config.Requests,
			Reset:     now.Add(l.config.Window),
		}
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	w, exists := l.windows[key]
	if !exists || !now.Before(w.reset) {
		w = &window{reset: now.Add(l.config.Window)}
		l.windows[key] = w
	}

	w.count++
	remaining := l.config.Requests - w.count
	if remaining < 0 {
		remaining = 0
	}

	return Decision{
		Allowed:   w.count <= l.config.Requests,
		Limit:     l.config.Requests,
		Remaining: remaining,
		Reset:     w.reset,
	}
}

// Reset clears the rate limit counter for the given key.
func (l *memoryLimiter) Reset(key string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.windows, key)
}

func (l *memoryLimiter) cleanup() {
	for {
		select {
		case <-l.cleanupT.C:
			l.cleanupExpired()
		case <-l.stopCh:
			l.cleanupT.Stop()
			return
		}
	}
}

// cleanupExpired drops windows that have already ended.
func (l *memoryLimiter) cleanupExpired() {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	for key, w := range l.windows {
		if !now.Before(w.reset) {
			delete(l.windows, key)
		}
	}
}

// Stop stops the cleanup goroutine. Safe to call more than once.
func (l *memoryLimiter) Stop() {
	l.stopOnce.Do(func() { close(l.stopCh) })
}

// Stoppable extends Limiter with a Stop method for cleanup.
type Stoppable interface {
	Limiter
	Stop()
}

var _ Stoppable = (*memoryLimiter)(nil)
