package timeslot

import "errors"

var (
	// ErrSlotNotFound возвращается, когда слот не найден
	ErrSlotNotFound = errors.New("timeslot.repository: time slot not found")

	// ErrCapacityExceeded возвращается, когда подтверждение превысило бы продаваемую ёмкость
	ErrCapacityExceeded = errors.New("timeslot.repository: capacity exceeded")

	// ErrInvalidQuantity возвращается, когда уменьшение счётчика увело бы его в минус
	ErrInvalidQuantity = errors.New("timeslot.repository: invalid quantity")

	// ErrBuildQuery возвращается при ошибке построения SQL запроса
	ErrBuildQuery = errors.New("timeslot.repository: failed to build query")

	// ErrExecQuery возвращается при ошибке выполнения SQL запроса
	ErrExecQuery = errors.New("timeslot.repository: failed to execute query")

	// ErrScanRow возвращается при ошибке сканирования результата запроса
	ErrScanRow = errors.New("timeslot.repository: failed to scan row")
)
