package hold

import "errors"

var (
	// ErrHoldNotFound возвращается, когда холд не найден
	ErrHoldNotFound = errors.New("hold.repository: hold not found")

	// ErrDuplicateHold возвращается при попытке создать второй активный холд
	// той же сессии на тот же слот (защита от двойной отправки формы)
	ErrDuplicateHold = errors.New("hold.repository: duplicate active hold")

	// ErrInvalidHoldState возвращается, когда переход статуса невозможен:
	// условие перехода не выполнено или холд уже в терминальном статусе
	ErrInvalidHoldState = errors.New("hold.repository: invalid hold state")

	// ErrBuildQuery возвращается при ошибке построения SQL запроса
	ErrBuildQuery = errors.New("hold.repository: failed to build query")

	// ErrExecQuery возвращается при ошибке выполнения SQL запроса
	ErrExecQuery = errors.New("hold.repository: failed to execute query")

	// ErrScanRow возвращается при ошибке сканирования результата запроса
	ErrScanRow = errors.New("hold.repository: failed to scan row")
)
