package models

import (
	"time"

	"github.com/m04kA/MTB-ReservationService/internal/domain"
)

// AvailabilityResponse доступная ёмкость одного слота
type AvailabilityResponse struct {
	TimeSlotID        int64  `json:"timeSlotId"`
	Date              string `json:"date"`      // "2026-09-14"
	StartTime         string `json:"startTime"` // "10:00"
	EndTime           string `json:"endTime"`   // "11:00"
	AvailableCapacity int    `json:"availableCapacity"`
	IsActive          bool   `json:"isActive"`
}

// SlotListResponse список слотов на дату с доступной ёмкостью
type SlotListResponse struct {
	Slots []AvailabilityResponse `json:"slots"`
}

// HoldResponse данные холда для покупателя
type HoldResponse struct {
	ID         int64     `json:"holdId"`
	TimeSlotID int64     `json:"timeSlotId"`
	Quantity   int       `json:"quantity"`
	Status     string    `json:"status"`
	CreatedAt  time.Time `json:"createdAt"`
	ExpiresAt  time.Time `json:"expiresAt"` // для отрисовки обратного отсчёта
}

// HoldListResponse активные холды сессии
type HoldListResponse struct {
	Holds []HoldResponse `json:"holds"`
}

// ConversionResponse результат перевода холда в конвертацию
type ConversionResponse struct {
	HoldID          int64  `json:"holdId"`
	ConversionToken string `json:"conversionToken"`
}

// FromDomainSlotAvailability конвертирует domain модель в DTO
func FromDomainSlotAvailability(a *domain.SlotAvailability) *AvailabilityResponse {
	if a == nil {
		return nil
	}
	return &AvailabilityResponse{
		TimeSlotID:        a.Slot.ID,
		Date:              a.Slot.SlotDate.Format(domain.DateFormat),
		StartTime:         a.Slot.StartTime.String(),
		EndTime:           a.Slot.EndTime.String(),
		AvailableCapacity: a.AvailableCapacity,
		IsActive:          a.Slot.IsActive,
	}
}

// FromDomainSlotAvailabilityList конвертирует список domain моделей в DTO
func FromDomainSlotAvailabilityList(items []*domain.SlotAvailability) *SlotListResponse {
	resp := &SlotListResponse{
		Slots: make([]AvailabilityResponse, 0, len(items)),
	}
	for _, item := range items {
		if dto := FromDomainSlotAvailability(item); dto != nil {
			resp.Slots = append(resp.Slots, *dto)
		}
	}
	return resp
}

// FromDomainHold конвертирует domain модель холда в DTO
func FromDomainHold(h *domain.Hold) *HoldResponse {
	if h == nil {
		return nil
	}
	return &HoldResponse{
		ID:         h.ID,
		TimeSlotID: h.TimeSlotID,
		Quantity:   h.Quantity,
		Status:     string(h.Status),
		CreatedAt:  h.CreatedAt,
		ExpiresAt:  h.ExpiresAt,
	}
}

// FromDomainHoldList конвертирует список холдов в DTO
func FromDomainHoldList(holds []*domain.Hold) *HoldListResponse {
	resp := &HoldListResponse{
		Holds: make([]HoldResponse, 0, len(holds)),
	}
	for _, h := range holds {
		if dto := FromDomainHold(h); dto != nil {
			resp.Holds = append(resp.Holds, *dto)
		}
	}
	return resp
}
