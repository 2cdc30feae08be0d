package domain

import (
	"time"

	"github.com/m04kA/MTB-ReservationService/pkg/types"
)

// TimeSlot represents one bookable unit of capacity: a date plus a start/end
// time, optionally tied to a specific exhibition. Capacity accounting lives
// on the row itself: total capacity, a confirmed-booking counter and a
// safety buffer withheld from sale.
type TimeSlot struct {
	ID             int64
	ExhibitID      *int64 // nil = общий входной слот музея
	SlotDate       time.Time
	StartTime      types.TimeString
	EndTime        types.TimeString
	TotalCapacity  int
	ConfirmedCount int
	Buffer         int // места, намеренно изъятые из продажи
	IsActive       bool

	CreatedAt time.Time
	UpdatedAt time.Time
}

// SellableCapacity returns the capacity available for sale: total minus buffer.
func (s *TimeSlot) SellableCapacity() int {
	return s.TotalCapacity - s.Buffer
}

// IsInPast returns true if the slot's start is before the given moment.
func (s *TimeSlot) IsInPast(now time.Time) bool {
	start, err := s.StartTime.OnDate(s.SlotDate)
	if err != nil {
		// Некорректное время трактуем как прошедший слот, чтобы не продавать его
		return true
	}
	return start.Before(now)
}

// IsBookable returns true if the slot is active and has not started yet.
func (s *TimeSlot) IsBookable(now time.Time) bool {
	return s.IsActive && !s.IsInPast(now)
}

// SlotAvailability is a TimeSlot together with its computed available
// capacity (total - buffer - confirmed - active held units).
type SlotAvailability struct {
	Slot              TimeSlot
	AvailableCapacity int
}

// IsFull returns true if the slot has no capacity left for sale.
func (a *SlotAvailability) IsFull() bool {
	return a.AvailableCapacity <= 0
}

// SlotListFilter фильтр для выборки слотов
type SlotListFilter struct {
	Date       time.Time // Обязательный параметр
	ExhibitID  *int64    // Фильтр по выставке (nil - все слоты на дату)
	OnlyActive bool      // Только активные слоты
}
