package generate_slots

import "errors"

var (
	// ErrInvalidDateRange возвращается при некорректном диапазоне дат
	ErrInvalidDateRange = errors.New("generate_slots: invalid date range")

	// ErrRangeTooLarge возвращается, когда диапазон превышает лимит генерации
	ErrRangeTooLarge = errors.New("generate_slots: date range is too large")

	// ErrInvalidSchedule возвращается при некорректном расписании дня
	ErrInvalidSchedule = errors.New("generate_slots: invalid daily schedule")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("generate_slots: invalid input data")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("generate_slots: internal error")
)
