package get_booking

import (
	"context"

	"github.com/m04kA/MTB-ReservationService/internal/service/bookings/models"
)

type BookingService interface {
	GetByID(ctx context.Context, id int64, sessionID string) (*models.BookingResponse, error)
	GetByReference(ctx context.Context, reference string) (*models.BookingResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
