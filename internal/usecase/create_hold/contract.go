package create_hold

import (
	"context"
	"time"

	"github.com/m04kA/MTB-ReservationService/internal/domain"
)

// TimeSlotRepository интерфейс репозитория слотов
type TimeSlotRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.TimeSlot, error)
}

// HoldRepository интерфейс репозитория холдов
type HoldRepository interface {
	Create(ctx context.Context, hold *domain.Hold) (*domain.Hold, error)
	SumActiveQuantity(ctx context.Context, timeSlotID int64, now time.Time) (int, error)
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error
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
