package get_session_bookings

import (
	"context"

	"github.com/m04kA/MTB-ReservationService/internal/service/bookings/models"
)

type BookingService interface {
	ListBySession(ctx context.Context, sessionID string) (*models.BookingListResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
