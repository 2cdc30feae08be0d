package generate_slots

import (
	"time"

	"github.com/m04kA/MTB-ReservationService/internal/domain"
	generateSlots "github.com/m04kA/MTB-ReservationService/internal/usecase/generate_slots"
	"github.com/m04kA/MTB-ReservationService/pkg/types"
)

// GenerateSlotsRequest HTTP request model
type GenerateSlotsRequest struct {
	ExhibitID           *int64 `json:"exhibitId,omitempty"`
	StartDate           string `json:"startDate"` // "2026-10-01"
	EndDate             string `json:"endDate"`
	OpenTime            string `json:"openTime"` // "10:00"
	CloseTime           string `json:"closeTime"`
	SlotDurationMinutes int    `json:"slotDurationMinutes"`
	TotalCapacity       int    `json:"totalCapacity"`
	Buffer              int    `json:"buffer"`
}

// GenerateSlotsResponse HTTP response model
type GenerateSlotsResponse struct {
	SlotsCreated int `json:"slotsCreated"`
	SlotsSkipped int `json:"slotsSkipped"`
}

// ToUseCaseRequest конвертирует HTTP запрос в модель use case
func (r *GenerateSlotsRequest) ToUseCaseRequest() (*generateSlots.Request, error) {
	startDate, err := time.Parse(domain.DateFormat, r.StartDate)
	if err != nil {
		return nil, err
	}

	endDate, err := time.Parse(domain.DateFormat, r.EndDate)
	if err != nil {
		return nil, err
	}

	openTime, err := types.NewTimeStringFromString(r.OpenTime)
	if err != nil {
		return nil, err
	}

	closeTime, err := types.NewTimeStringFromString(r.CloseTime)
	if err != nil {
		return nil, err
	}

	return &generateSlots.Request{
		ExhibitID:           r.ExhibitID,
		StartDate:           startDate,
		EndDate:             endDate,
		OpenTime:            openTime,
		CloseTime:           closeTime,
		SlotDurationMinutes: r.SlotDurationMinutes,
		TotalCapacity:       r.TotalCapacity,
		Buffer:              r.Buffer,
	}, nil
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *generateSlots.Response) *GenerateSlotsResponse {
	return &GenerateSlotsResponse{
		SlotsCreated: resp.SlotsCreated,
		SlotsSkipped: resp.SlotsSkipped,
	}
}
