package rate

import (
	"context"
	"strconv"
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// MemoryLimiter es la versión in-process de RedisLimiter.
type MemoryLimiter struct {
	c      *gocache.Cache
	mu     sync.Mutex
	max    int64
	window time.Duration
	now    func() time.Time
}

// NewMemoryLimiter crea un limiter con max requests por window y clave.
func NewMemoryLimiter(max int, window time.Duration) *MemoryLimiter {
	if window <= 0 {
		window = time.Minute
	}
	return &MemoryLimiter{
		c:      gocache.New(window, 2*window),
		max:    int64(max),
		window: window,
		now:    time.Now,
	}
}

func (l *MemoryLimiter) Allow(_ context.Context, key string) (Result, error) {
	now := l.now().UTC()
	winStart := now.Truncate(l.window)
	k := key + ":" + strconv.FormatInt(winStart.Unix(), 10)
	ttl := winStart.Add(l.window).Sub(now)

	l.mu.Lock()
	defer l.mu.Unlock()

	// Add falla si la clave ya existe: en ese caso incrementamos.
	if err := l.c.Add(k, int64(1), ttl); err == nil {
		return evaluate(1, l.max, ttl, l.window), nil
	}
	hits, err := l.c.IncrementInt64(k, 1)
	if err != nil {
		// expiró entre Add e Increment
		l.c.Set(k, int64(1), ttl)
		hits = 1
	}
	return evaluate(hits, l.max, ttl, l.window), nil
}
