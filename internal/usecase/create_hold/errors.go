package create_hold

import (
	"errors"
	"fmt"
)

var (
	// ErrSlotNotFound возвращается, когда слот не найден
	ErrSlotNotFound = errors.New("create_hold: time slot not found")

	// ErrSlotInactive возвращается, когда слот снят с продажи
	ErrSlotInactive = errors.New("create_hold: time slot is not active")

	// ErrSlotInPast возвращается, когда слот уже начался или прошёл
	ErrSlotInPast = errors.New("create_hold: time slot is in the past")

	// ErrSlotFull возвращается, когда доступной ёмкости меньше запрошенной
	ErrSlotFull = errors.New("create_hold: not enough capacity in time slot")

	// ErrDuplicateHold возвращается, когда у сессии уже есть активный холд
	// на этот слот
	ErrDuplicateHold = errors.New("create_hold: session already holds this time slot")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("create_hold: invalid input data")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("create_hold: internal error")
)

// SlotFullError ошибка нехватки ёмкости с количеством оставшихся мест
// Остаток нужен покупателю, чтобы скорректировать запрос
type SlotFullError struct {
	Requested int
	Remaining int
}

func (e *SlotFullError) Error() string {
	return fmt.Sprintf("create_hold: requested %d tickets, only %d available", e.Requested, e.Remaining)
}

// Is позволяет проверять ошибку через errors.Is(err, ErrSlotFull)
func (e *SlotFullError) Is(target error) bool {
	return target == ErrSlotFull
}
