package deactivate_slot

import "context"

type ReservationService interface {
	DeactivateSlot(ctx context.Context, timeSlotID int64) (int, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
