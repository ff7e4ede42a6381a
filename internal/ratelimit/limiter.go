// Package ratelimit provides per-user rate limiting at the event boundary.
package ratelimit

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Config defines the rate limiting configuration.
type Config struct {
	EventsPerSecond float64       // Sustained events per second per user
	Burst           int           // Burst size per user
	CleanupInterval time.Duration // How often to clean up idle limiters
}

// DefaultConfig provides sensible defaults for a chat workload.
var DefaultConfig = Config{
	EventsPerSecond: 5,
	Burst:           10,
	CleanupInterval: time.Hour,
}

// limiterEntry holds a rate limiter and tracks its last usage.
type limiterEntry struct {
	limiter  *rate.Limiter
	lastUsed time.Time
}

// Limiter manages per-user rate limiting.
type Limiter struct {
	limiters map[string]*limiterEntry
	mu       sync.RWMutex
	config   Config

	stopCh chan struct{}
	wg     sync.WaitGroup
}

// New creates a limiter with the given configuration and starts its
// background cleanup goroutine.
func New(config Config) *Limiter {
	l := &Limiter{
		limiters: make(map[string]*limiterEntry),
		config:   config,
		stopCh:   make(chan struct{}),
	}

	l.wg.Add(1)
	go l.cleanupLoop()

	return l
}

// Allow reports whether an event from the given user is within rate limits.
func (l *Limiter) Allow(userID string) bool {
	return l.getLimiter(userID).Allow()
}

// getLimiter returns the rate limiter for the given user, creating one if
// necessary.
func (l *Limiter) getLimiter(userID string) *rate.Limiter {
	// Fast path: check if limiter exists with read lock
	l.mu.RLock()
	entry, exists := l.limiters[userID]
	if exists {
		entry.lastUsed = time.Now()
		l.mu.RUnlock()
		return entry.limiter
	}
	l.mu.RUnlock()

	// Slow path: create limiter with write lock
	l.mu.Lock()
	defer l.mu.Unlock()

	// Double-check after acquiring write lock
	entry, exists = l.limiters[userID]
	if exists {
		entry.lastUsed = time.Now()
		return entry.limiter
	}

	limiter := rate.NewLimiter(rate.Limit(l.config.EventsPerSecond), l.config.Burst)
	l.limiters[userID] = &limiterEntry{
		limiter:  limiter,
		lastUsed: time.Now(),
	}

	return limiter
}

// Cleanup removes rate limiters that have been idle for longer than the
// cleanup interval. Called periodically by the background goroutine.
func (l *Limiter) Cleanup() {
	l.mu.Lock()
	defer l.mu.Unlock()

	cutoff := time.Now().Add(-l.config.CleanupInterval)
	for userID, entry := range l.limiters {
		if entry.lastUsed.Before(cutoff) {
			delete(l.limiters, userID)
		}
	}
}

func (l *Limiter) cleanupLoop() {
	defer l.wg.Done()

	ticker := time.NewTicker(l.config.CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			l.Cleanup()
		case <-l.stopCh:
			return
		}
	}
}

// Stop stops the cleanup goroutine and waits for it to finish.
func (l *Limiter) Stop() {
	close(l.stopCh)
	l.wg.Wait()
}

// Len returns the number of active rate limiters, for tests and monitoring.
func (l *Limiter) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.limiters)
}
