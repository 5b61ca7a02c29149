// Package ratelimit provides per-client admission control for the generation
// routes. Every generation costs a whole external process, so the limits are
// deliberately small.
package ratelimit

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const (
	bucketCleanupThreshold = 1 * time.Hour
	cleanupInterval        = 30 * time.Minute
)

// Limiter decides whether the client identified by key may make another
// request. An error means the decision could not be made; callers choose
// whether to fail open.
type Limiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

// ─── IN-MEMORY ────────────────────────────────────────────────────────────────

type clientBucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// MemoryLimiter gives each client a token bucket holding capacity requests
// that refills at capacity per window. It is local to one process; use
// RedisLimiter when running several replicas.
type MemoryLimiter struct {
	mu          sync.Mutex
	capacity    int
	every       rate.Limit
	clients     map[string]*clientBucket
	now         func() time.Time
	stopCleanup chan struct{}
	stopOnce    sync.Once
}

// NewMemoryLimiter starts a limiter and its background cleanup loop. Call
// Stop when done.
func NewMemoryLimiter(capacity int, window time.Duration) *MemoryLimiter {
	l := &MemoryLimiter{
		capacity:    capacity,
		every:       rate.Every(window / time.Duration(max(capacity, 1))),
		clients:     make(map[string]*clientBucket),
		now:         time.Now,
		stopCleanup: make(chan struct{}),
	}
	go l.cleanupLoop()
	return l
}

func (l *MemoryLimiter) cleanupLoop() {
	ticker := time.NewTicker(cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			l.cleanup()
		case <-l.stopCleanup:
			return
		}
	}
}

func (l *MemoryLimiter) cleanup() {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	for key, bucket := range l.clients {
		if now.Sub(bucket.lastSeen) > bucketCleanupThreshold {
			delete(l.clients, key)
		}
	}
}

// Stop ends the cleanup loop. It is safe to call more than once.
func (l *MemoryLimiter) Stop() {
	l.stopOnce.Do(func() { close(l.stopCleanup) })
}

func (l *MemoryLimiter) Allow(_ context.Context, key string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	bucket, exists := l.clients[key]
	if !exists {
		bucket = &clientBucket{limiter: rate.NewLimiter(l.every, l.capacity)}
		l.clients[key] = bucket
	}
	bucket.lastSeen = now

	return bucket.limiter.AllowN(now, 1), nil
}
