package storage

import (
	"context"
	"sync"
	"time"
)

// MemoryGuard is the single-process stand-in for RedisGuard.
type MemoryGuard struct {
	mu   sync.Mutex
	ttl  time.Duration
	now  func() time.Time
	seen map[string]time.Time
}

func NewMemoryGuard(ttl time.Duration) *MemoryGuard {
	if ttl <= 0 {
		ttl = defaultClaimTTL
	}
	return &MemoryGuard{
		ttl:  ttl,
		now:  time.Now,
		seen: make(map[string]time.Time),
	}
}

func (m *MemoryGuard) Claim(ctx context.Context, key string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	if expires, ok := m.seen[key]; ok && now.Before(expires) {
		return false, nil
	}

	// drop expired claims while the lock is held anyway
	for k, expires := range m.seen {
		if !now.Before(expires) {
			delete(m.seen, k)
		}
	}

	m.seen[key] = now.Add(m.ttl)
	return true, nil
}
