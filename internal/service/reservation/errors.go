package reservation

import "errors"

var (
	// ErrSlotNotFound возвращается, когда слот не найден
	ErrSlotNotFound = errors.New("reservation: time slot not found")

	// ErrHoldNotFound возвращается, когда холд не найден
	ErrHoldNotFound = errors.New("reservation: hold not found")

	// ErrHoldExpired возвращается при попытке конвертировать просроченный холд
	// Покупатель должен начать бронирование заново
	ErrHoldExpired = errors.New("reservation: hold has expired")

	// ErrInvalidHoldState возвращается, когда холд не в том статусе,
	// из которого возможна запрошенная операция
	ErrInvalidHoldState = errors.New("reservation: invalid hold state")

	// ErrInternal возвращается при внутренних ошибках сервиса
	ErrInternal = errors.New("reservation: internal error")
)
