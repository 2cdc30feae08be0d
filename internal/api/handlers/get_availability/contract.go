package get_availability

import (
	"context"

	"github.com/m04kA/MTB-ReservationService/internal/service/reservation/models"
)

type ReservationService interface {
	CheckAvailability(ctx context.Context, timeSlotID int64) (*models.AvailabilityResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
