package list_timeslots

import (
	"context"

	"github.com/m04kA/MTB-ReservationService/internal/domain"
	"github.com/m04kA/MTB-ReservationService/internal/service/reservation/models"
)

type ReservationService interface {
	ListSlots(ctx context.Context, filter domain.SlotListFilter) (*models.SlotListResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
