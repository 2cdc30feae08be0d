package finalize_booking

import (
	"context"
	"time"

	"github.com/m04kA/MTB-ReservationService/internal/domain"
	"github.com/m04kA/MTB-ReservationService/internal/integrations/notifier"
)

// HoldRepository интерфейс репозитория холдов
type HoldRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Hold, error)
	MarkConverted(ctx context.Context, id int64) error
}

// TimeSlotRepository интерфейс репозитория слотов
type TimeSlotRepository interface {
	IncrementConfirmed(ctx context.Context, id int64, quantity int) error
}

// BookingRepository интерфейс репозитория броней
type BookingRepository interface {
	Create(ctx context.Context, booking *domain.Booking) (*domain.Booking, error)
}

// NotificationPublisher интерфейс публикации событий подтверждения
type NotificationPublisher interface {
	PublishBookingConfirmed(ctx context.Context, event *notifier.BookingConfirmedEvent) error
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
