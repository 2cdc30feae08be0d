package generate_slots

import (
	"context"
	"time"

	"github.com/m04kA/MTB-ReservationService/internal/domain"
)

// TimeSlotRepository интерфейс репозитория слотов
type TimeSlotRepository interface {
	CreateBatch(ctx context.Context, slots []*domain.TimeSlot) (int, error)
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
}

// TimeProvider интерфейс для получения текущего времени (для тестирования)
type TimeProvider interface {
	Now() time.Time
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// RealTimeProvider реальный провайдер времени для production
type RealTimeProvider struct{}

// Now возвращает текущее время
func (p *RealTimeProvider) Now() time.Time {
	return time.Now()
}
