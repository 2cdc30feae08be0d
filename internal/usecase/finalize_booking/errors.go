package finalize_booking

import "errors"

var (
	// ErrHoldNotFound возвращается, когда холд не найден
	// или принадлежит другой сессии
	ErrHoldNotFound = errors.New("finalize_booking: hold not found")

	// ErrHoldExpired возвращается, когда TTL холда истёк до финализации
	// Покупатель должен начать бронирование заново
	ErrHoldExpired = errors.New("finalize_booking: hold has expired")

	// ErrHoldAlreadyConverted возвращается при повторной финализации холда
	ErrHoldAlreadyConverted = errors.New("finalize_booking: hold already converted")

	// ErrInvalidHoldState возвращается, когда холд освобождён или реклеймлен
	ErrInvalidHoldState = errors.New("finalize_booking: hold is not convertible")

	// ErrPaymentNotConfirmed возвращается, когда оплата не подтверждена
	// Бесплатные брони проходят с нулевой суммой и подтверждённой "оплатой"
	ErrPaymentNotConfirmed = errors.New("finalize_booking: payment is not confirmed")

	// ErrCapacityInvariant возвращается, когда инкремент подтверждённой
	// ёмкости превысил бы вместимость слота. При корректном учёте холдов
	// такого быть не может - ошибка сигнализирует о повреждении данных
	ErrCapacityInvariant = errors.New("finalize_booking: capacity invariant violation")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("finalize_booking: invalid input data")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("finalize_booking: internal error")
)
