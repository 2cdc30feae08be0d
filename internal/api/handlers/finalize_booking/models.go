package finalize_booking

import (
	"time"

	finalizeBooking "github.com/m04kA/MTB-ReservationService/internal/usecase/finalize_booking"
)

// FinalizeRequest HTTP request model
type FinalizeRequest struct {
	Visitor VisitorRequest `json:"visitor"`
	Payment PaymentRequest `json:"payment"`

	// Токен, выданный на POST /holds/{holdId}/convert (опционально)
	ConversionToken string `json:"conversionToken,omitempty"`
}

// VisitorRequest данные посетителя
type VisitorRequest struct {
	Name  string  `json:"name"`
	Email string  `json:"email"`
	Phone *string `json:"phone,omitempty"`
}

// PaymentRequest результат оплаты
type PaymentRequest struct {
	Confirmed bool    `json:"confirmed"`
	Amount    float64 `json:"amount"`
	Currency  string  `json:"currency"`
}

// BookingResponse HTTP response model
type BookingResponse struct {
	BookingID        int64   `json:"bookingId"`
	BookingReference string  `json:"bookingReference"`
	TimeSlotID       int64   `json:"timeSlotId"`
	Quantity         int     `json:"quantity"`
	TotalAmount      float64 `json:"totalAmount"`
	Currency         string  `json:"currency"`
	PaymentStatus    string  `json:"paymentStatus"`
	Status           string  `json:"status"`
	CreatedAt        string  `json:"createdAt"`
}

// ToUseCaseRequest конвертирует HTTP запрос в модель use case
func (r *FinalizeRequest) ToUseCaseRequest(holdID int64, sessionID string) *finalizeBooking.Request {
	return &finalizeBooking.Request{
		HoldID:    holdID,
		SessionID: sessionID,
		Visitor: finalizeBooking.Visitor{
			Name:  r.Visitor.Name,
			Email: r.Visitor.Email,
			Phone: r.Visitor.Phone,
		},
		Payment: finalizeBooking.Payment{
			Confirmed: r.Payment.Confirmed,
			Amount:    r.Payment.Amount,
			Currency:  r.Payment.Currency,
		},
		ConversionToken: r.ConversionToken,
	}
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *finalizeBooking.Response) *BookingResponse {
	return &BookingResponse{
		BookingID:        resp.BookingID,
		BookingReference: resp.Reference,
		TimeSlotID:       resp.TimeSlotID,
		Quantity:         resp.Quantity,
		TotalAmount:      resp.TotalAmount,
		Currency:         resp.Currency,
		PaymentStatus:    resp.PaymentStatus,
		Status:           resp.Status,
		CreatedAt:        resp.CreatedAt.Format(time.RFC3339),
	}
}
