package models

import (
	"time"

	"github.com/m04kA/MTB-ReservationService/internal/domain"
)

// BookingResponse данные брони для покупателя
type BookingResponse struct {
	ID                 int64      `json:"bookingId"`
	Reference          string     `json:"reference"`
	TimeSlotID         int64      `json:"timeSlotId"`
	VisitorName        string     `json:"visitorName"`
	VisitorEmail       string     `json:"visitorEmail"`
	VisitorPhone       *string    `json:"visitorPhone,omitempty"`
	Quantity           int        `json:"quantity"`
	TotalAmount        float64    `json:"totalAmount"`
	Currency           string     `json:"currency"`
	PaymentStatus      string     `json:"paymentStatus"`
	Status             string     `json:"status"`
	CancellationReason *string    `json:"cancellationReason,omitempty"`
	CancelledAt        *time.Time `json:"cancelledAt,omitempty"`
	CreatedAt          time.Time  `json:"createdAt"`
}

// BookingListResponse список броней сессии
type BookingListResponse struct {
	Bookings []BookingResponse `json:"bookings"`
}

// FromDomainBooking конвертирует domain модель в DTO
func FromDomainBooking(b *domain.Booking) *BookingResponse {
	if b == nil {
		return nil
	}
	return &BookingResponse{
		ID:                 b.ID,
		Reference:          b.Reference,
		TimeSlotID:         b.TimeSlotID,
		VisitorName:        b.VisitorName,
		VisitorEmail:       b.VisitorEmail,
		VisitorPhone:       b.VisitorPhone,
		Quantity:           b.Quantity,
		TotalAmount:        b.TotalAmount,
		Currency:           b.Currency,
		PaymentStatus:      string(b.PaymentStatus),
		Status:             string(b.Status),
		CancellationReason: b.CancellationReason,
		CancelledAt:        b.CancelledAt,
		CreatedAt:          b.CreatedAt,
	}
}

// FromDomainBookingList конвертирует список броней в DTO
func FromDomainBookingList(items []*domain.Booking) *BookingListResponse {
	resp := &BookingListResponse{
		Bookings: make([]BookingResponse, 0, len(items)),
	}
	for _, item := range items {
		if dto := FromDomainBooking(item); dto != nil {
			resp.Bookings = append(resp.Bookings, *dto)
		}
	}
	return resp
}
