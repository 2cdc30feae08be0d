package generate_slots

import (
	"time"

	"github.com/m04kA/MTB-ReservationService/pkg/types"
)

// Request модель запроса на генерацию сетки слотов
type Request struct {
	ExhibitID           *int64           // ID выставки, nil для общего входа
	StartDate           time.Time        // первая дата диапазона
	EndDate             time.Time        // последняя дата диапазона (включительно)
	OpenTime            types.TimeString // время открытия (например, "10:00")
	CloseTime           types.TimeString // время закрытия
	SlotDurationMinutes int              // длительность одного слота
	TotalCapacity       int              // вместимость каждого слота
	Buffer              int              // резерв, не поступающий в продажу
}

// Response модель ответа с результатом генерации
type Response struct {
	SlotsCreated int // создано новых слотов
	SlotsSkipped int // пропущено уже существующих
}
