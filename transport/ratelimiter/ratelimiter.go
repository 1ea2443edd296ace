package ratelimiter

import (
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// PerUserLimiter applies a token bucket per user id and periodically
// evicts buckets that went idle, so the map does not grow with every
// user that ever connected.
type PerUserLimiter struct {
	limit   rate.Limit
	burst   int
	mu      sync.Mutex
	byUser  map[string]*bucket
	hits    uint64
	idleTTL time.Duration
}

type bucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// New creates a per-user limiter; returns nil if args are invalid. A nil
// limiter allows everything, which lets callers disable limiting via config.
func New(rps float64, burst int, idleTTL time.Duration) *PerUserLimiter {
	if rps <= 0 || burst <= 0 {
		return nil
	}
	if idleTTL <= 0 {
		idleTTL = 10 * time.Minute
	}
	return &PerUserLimiter{
		limit:   rate.Limit(rps),
		burst:   burst,
		byUser:  make(map[string]*bucket),
		idleTTL: idleTTL,
	}
}

// Allow reports whether one token can be consumed for the user at now.
func (l *PerUserLimiter) Allow(userID string, now time.Time) bool {
	if l == nil {
		return true
	}
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return true
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	b, ok := l.byUser[userID]
	if !ok {
		b = &bucket{
			limiter:  rate.NewLimiter(l.limit, l.burst),
			lastSeen: now,
		}
		l.byUser[userID] = b
	}
	b.lastSeen = now
	allowed := b.limiter.AllowN(now, 1)

	l.hits++
	if l.hits%512 == 0 {
		cutoff := now.Add(-l.idleTTL)
		for id, stale := range l.byUser {
			if stale.lastSeen.Before(cutoff) {
				delete(l.byUser, id)
			}
		}
	}

	return allowed
}
