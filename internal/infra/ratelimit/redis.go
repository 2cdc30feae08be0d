package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Скрипт выполняет доначисление и списание токена атомарно,
// поэтому несколько экземпляров сервиса делят один лимит корректно
var tokenBucketScript = redis.NewScript(`
	local key = KEYS[1]
	local now_ms = tonumber(ARGV[1])
	local capacity = tonumber(ARGV[2])
	local interval_ms = tonumber(ARGV[3])
	local ttl_seconds = tonumber(ARGV[4])

	local state = redis.call('HMGET', key, 'tokens', 'last_refill_ms')
	local tokens = tonumber(state[1])
	local last_refill = tonumber(state[2])

	if tokens == nil or last_refill == nil then
		tokens = capacity
		last_refill = now_ms
	end

	local elapsed = math.max(0, now_ms - last_refill)
	local intervals = math.floor(elapsed / interval_ms)
	if intervals > 0 then
		tokens = math.min(capacity, tokens + intervals)
		last_refill = last_refill + (intervals * interval_ms)
	end

	local allowed = 0
	local retry_after_ms = 0
	if tokens > 0 then
		allowed = 1
		tokens = tokens - 1
	else
		retry_after_ms = math.max(0, interval_ms - (now_ms - last_refill))
	end

	redis.call('HMSET', key, 'tokens', tokens, 'last_refill_ms', last_refill)
	redis.call('EXPIRE', key, ttl_seconds)

	return { allowed, tokens, retry_after_ms }
`)

// RedisStore token bucket в Redis, общий для всех экземпляров сервиса
type RedisStore struct {
	client   *redis.Client
	capacity int
	refill   time.Duration
	ttl      time.Duration
}

// NewRedisStore создает хранилище лимитов в Redis
// capacity токенов на ключ, один токен восстанавливается за refill
func NewRedisStore(client *redis.Client, capacity int, refill time.Duration) *RedisStore {
	// Ключ без обращений живёт достаточно, чтобы дособрать bucket
	ttl := 10 * refill
	if ttl < time.Minute {
		ttl = time.Minute
	}

	return &RedisStore{
		client:   client,
		capacity: capacity,
		refill:   refill,
		ttl:      ttl,
	}
}

// Allow списывает токен с ключа, если он есть
func (s *RedisStore) Allow(ctx context.Context, key string) (Decision, error) {
	args := []interface{}{
		time.Now().UnixMilli(),
		s.capacity,
		s.refill.Milliseconds(),
		int64(s.ttl / time.Second),
	}

	vals, err := tokenBucketScript.Run(ctx, s.client, []string{key}, args...).Int64Slice()
	if err != nil {
		return Decision{}, fmt.Errorf("ratelimit: run token bucket script: %w", err)
	}

	if len(vals) != 3 {
		return Decision{}, fmt.Errorf("ratelimit: unexpected script result of length %d", len(vals))
	}

	return Decision{
		Allowed:    vals[0] == 1,
		Remaining:  int(vals[1]),
		RetryAfter: time.Duration(vals[2]) * time.Millisecond,
	}, nil
}
