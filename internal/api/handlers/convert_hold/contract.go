package convert_hold

import (
	"context"

	"github.com/m04kA/MTB-ReservationService/internal/service/reservation/models"
)

type ReservationService interface {
	ConvertHold(ctx context.Context, holdID int64, sessionID string) (*models.ConversionResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
