package ratelimiter

import (
	"sync"
	"time"
)

// bucket is a token bucket refilled continuously at rate tokens per second.
type bucket struct {
	mu         sync.Mutex
	tokens     float64
	lastRefill time.Time
	lastSeen   time.Time
}

func (b *bucket) allow(now time.Time, rate, capacity float64) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.tokens += now.Sub(b.lastRefill).Seconds() * rate
	if b.tokens > capacity {
		b.tokens = capacity
	}
	b.lastRefill = now
	b.lastSeen = now

	if b.tokens >= 1 {
		b.tokens--
		return true
	}
	return false
}

// KeyedLimiter keeps one bucket per key (client IP, visitor id).
// Buckets unused for expiration are forgotten on the next Prune.
type KeyedLimiter struct {
	rate       float64
	capacity   float64
	expiration time.Duration
	now        func() time.Time

	mu      sync.Mutex
	buckets map[string]*bucket
}

func New(rate, capacity float64, expiration time.Duration) *KeyedLimiter {
	return &KeyedLimiter{
		rate:       rate,
		capacity:   capacity,
		expiration: expiration,
		now:        time.Now,
		buckets:    make(map[string]*bucket),
	}
}

func (l *KeyedLimiter) Allow(key string) bool {
	now := l.now()

	l.mu.Lock()
	b, ok := l.buckets[key]
	if !ok {
		b = &bucket{tokens: l.capacity, lastRefill: now}
		l.buckets[key] = b
	}
	l.mu.Unlock()

	return b.allow(now, l.rate, l.capacity)
}

// Prune drops buckets idle for longer than the expiration.
func (l *KeyedLimiter) Prune() int {
	cutoff := l.now().Add(-l.expiration)

	l.mu.Lock()
	defer l.mu.Unlock()
	removed := 0
	for key, b := range l.buckets {
		b.mu.Lock()
		idle := b.lastSeen.Before(cutoff)
		b.mu.Unlock()
		if idle {
			delete(l.buckets, key)
			removed++
		}
	}
	return removed
}

func (l *KeyedLimiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.buckets)
}

// FormSubmissions allows a burst of 5 form posts, then one every 2 seconds.
func FormSubmissions() *KeyedLimiter {
	return New(0.5, 5, time.Hour)
}
