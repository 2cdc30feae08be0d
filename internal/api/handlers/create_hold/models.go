package create_hold

import (
	"time"

	createHold "github.com/m04kA/MTB-ReservationService/internal/usecase/create_hold"
)

// CreateHoldRequest HTTP request model
type CreateHoldRequest struct {
	TimeSlotID int64 `json:"timeSlotId"`
	Quantity   int   `json:"quantity"`
}

// HoldResponse HTTP response model
type HoldResponse struct {
	HoldID     int64  `json:"holdId"`
	TimeSlotID int64  `json:"timeSlotId"`
	Quantity   int    `json:"quantity"`
	Status     string `json:"status"`
	ExpiresAt  string `json:"expiresAt"`
	CreatedAt  string `json:"createdAt"`
}

// ToUseCaseRequest конвертирует HTTP запрос в модель use case
func (r *CreateHoldRequest) ToUseCaseRequest(sessionID string) *createHold.Request {
	return &createHold.Request{
		TimeSlotID: r.TimeSlotID,
		SessionID:  sessionID,
		Quantity:   r.Quantity,
	}
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *createHold.Response) *HoldResponse {
	return &HoldResponse{
		HoldID:     resp.HoldID,
		TimeSlotID: resp.TimeSlotID,
		Quantity:   resp.Quantity,
		Status:     resp.Status,
		ExpiresAt:  resp.ExpiresAt.Format(time.RFC3339),
		CreatedAt:  resp.CreatedAt.Format(time.RFC3339),
	}
}
