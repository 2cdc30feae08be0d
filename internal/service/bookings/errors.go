package bookings

import "errors"

var (
	// ErrBookingNotFound возвращается, когда бронь не найдена
	// или принадлежит другой сессии
	ErrBookingNotFound = errors.New("bookings: booking not found")

	// ErrCannotCancel возвращается при попытке отменить бронь
	// в терминальном статусе
	ErrCannotCancel = errors.New("bookings: booking cannot be cancelled")

	// ErrInternal возвращается при внутренних ошибках сервиса
	ErrInternal = errors.New("bookings: internal error")
)
