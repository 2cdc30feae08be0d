package get_session_holds

import (
	"context"

	"github.com/m04kA/MTB-ReservationService/internal/service/reservation/models"
)

type ReservationService interface {
	ListSessionHolds(ctx context.Context, sessionID string) (*models.HoldListResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
