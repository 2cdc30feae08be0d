package notifier

import "time"

// BookingConfirmedEvent событие подтверждения брони
// Публикуется после коммита транзакции финализации, потребители -
// сервис email-уведомлений и выгрузка в кассовую систему
type BookingConfirmedEvent struct {
	BookingID    int64     `json:"bookingId"`
	Reference    string    `json:"reference"`
	TimeSlotID   int64     `json:"timeSlotId"`
	SessionID    string    `json:"sessionId"`
	VisitorName  string    `json:"visitorName"`
	VisitorEmail string    `json:"visitorEmail"`
	Quantity     int       `json:"quantity"`
	TotalAmount  float64   `json:"totalAmount"`
	Currency     string    `json:"currency"`
	ConfirmedAt  time.Time `json:"confirmedAt"`
}
