package bookings

import (
	"context"

	"github.com/m04kA/MTB-ReservationService/internal/domain"
)

// BookingRepository интерфейс репозитория броней
type BookingRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Booking, error)
	GetByReference(ctx context.Context, reference string) (*domain.Booking, error)
	ListBySession(ctx context.Context, sessionID string) ([]*domain.Booking, error)
	Cancel(ctx context.Context, id int64, reason string) error
}

// TimeSlotRepository интерфейс репозитория слотов
// Нужен для возврата ёмкости при отмене брони
type TimeSlotRepository interface {
	DecrementConfirmed(ctx context.Context, id int64, quantity int) error
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
	DoReadOnly(ctx context.Context, fn func(ctx context.Context) error) error
	DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
