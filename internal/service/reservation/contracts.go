package reservation

import (
	"context"
	"time"

	"github.com/m04kA/MTB-ReservationService/internal/domain"
)

// TimeSlotRepository интерфейс репозитория слотов (Inventory Store)
type TimeSlotRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.TimeSlot, error)
	GetAvailableCapacity(ctx context.Context, id int64) (int, error)
	ListByDate(ctx context.Context, filter domain.SlotListFilter) ([]*domain.SlotAvailability, error)
	Deactivate(ctx context.Context, id int64) error
}

// HoldRepository интерфейс репозитория холдов (Reservation Ledger)
type HoldRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Hold, error)
	FindActiveByTimeSlot(ctx context.Context, timeSlotID int64) ([]*domain.Hold, error)
	FindActiveBySession(ctx context.Context, sessionID string) ([]*domain.Hold, error)
	SumActiveQuantity(ctx context.Context, timeSlotID int64, now time.Time) (int, error)
	MarkConverting(ctx context.Context, id int64, token string, now time.Time) error
	MarkReleased(ctx context.Context, id int64) error
	MarkExpired(ctx context.Context, id int64, now time.Time, grace time.Duration) error
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
	DoReadOnly(ctx context.Context, fn func(ctx context.Context) error) error
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
