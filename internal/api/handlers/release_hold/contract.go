package release_hold

import "context"

type ReservationService interface {
	ReleaseHold(ctx context.Context, holdID int64, sessionID string) error
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
