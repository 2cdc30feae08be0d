package ratelimit

import (
	"context"
	"sync"
	"time"
)

// bucket состояние одного ключа
type bucket struct {
	tokens     int
	lastRefill time.Time
}

// MemoryStore token bucket в памяти процесса
// Подходит для единственного экземпляра сервиса и для тестов;
// при горизонтальном масштабировании используется RedisStore
type MemoryStore struct {
	capacity int
	refill   time.Duration

	mu      sync.Mutex
	buckets map[string]*bucket
	now     func() time.Time
}

// NewMemoryStore создает in-memory хранилище лимитов
// capacity токенов на ключ, один токен восстанавливается за refill
func NewMemoryStore(capacity int, refill time.Duration) *MemoryStore {
	return &MemoryStore{
		capacity: capacity,
		refill:   refill,
		buckets:  make(map[string]*bucket),
		now:      time.Now,
	}
}

// Allow списывает токен с ключа, если он есть
func (s *MemoryStore) Allow(_ context.Context, key string) (Decision, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()

	b, ok := s.buckets[key]
	if !ok {
		b = &bucket{tokens: s.capacity, lastRefill: now}
		s.buckets[key] = b
	}

	// Доначисляем токены за прошедшие интервалы
	if elapsed := now.Sub(b.lastRefill); elapsed >= s.refill {
		intervals := int(elapsed / s.refill)
		b.tokens += intervals
		if b.tokens > s.capacity {
			b.tokens = s.capacity
		}
		b.lastRefill = b.lastRefill.Add(time.Duration(intervals) * s.refill)
	}

	if b.tokens <= 0 {
		retryAfter := s.refill - now.Sub(b.lastRefill)
		if retryAfter < 0 {
			retryAfter = 0
		}
		return Decision{Allowed: false, Remaining: 0, RetryAfter: retryAfter}, nil
	}

	b.tokens--
	return Decision{Allowed: true, Remaining: b.tokens}, nil
}
