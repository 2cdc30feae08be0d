package ratelimit

import (
	"context"
	"time"
)

// Decision результат проверки лимита для одного ключа
type Decision struct {
	Allowed    bool
	Remaining  int
	RetryAfter time.Duration // сколько ждать до следующего токена, если отказано
}

// Store хранилище состояния token bucket
// Реализации: Redis для нескольких экземпляров сервиса, память для одного
type Store interface {
	Allow(ctx context.Context, key string) (Decision, error)
}
