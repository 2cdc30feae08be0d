package domain

import "time"

// BookingStatus represents the status of a booking
type BookingStatus string

const (
	StatusPending   BookingStatus = "pending"
	StatusConfirmed BookingStatus = "confirmed"
	StatusCancelled BookingStatus = "cancelled"
	StatusCompleted BookingStatus = "completed"
	StatusNoShow    BookingStatus = "no_show"
)

// PaymentStatus represents how the booking was paid for
type PaymentStatus string

const (
	PaymentStatusPaid PaymentStatus = "paid"
	PaymentStatusFree PaymentStatus = "free"
)

// Booking represents a confirmed, paid (or free) reservation created from a
// converted hold. The quantity always equals the quantity of the hold it was
// converted from.
type Booking struct {
	ID         int64
	Reference  string // человекочитаемый код брони (MTB-XXXXXXXX)
	TimeSlotID int64
	HoldID     *int64 // исходный холд, nil после очистки леджера retention-джобой
	SessionID  string

	VisitorName  string
	VisitorEmail string
	VisitorPhone *string

	Quantity      int
	TotalAmount   float64
	Currency      string
	PaymentStatus PaymentStatus
	Status        BookingStatus

	CancellationReason *string
	CancelledAt        *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsActive returns true if the booking still occupies confirmed capacity.
func (b *Booking) IsActive() bool {
	for _, s := range ActiveBookingStatuses {
		if b.Status == s {
			return true
		}
	}
	return false
}

// CanBeCancelled returns true if the booking can be cancelled.
func (b *Booking) CanBeCancelled() bool {
	return b.Status == StatusPending || b.Status == StatusConfirmed
}

// IsCancelled returns true if the booking has been cancelled.
func (b *Booking) IsCancelled() bool {
	return b.Status == StatusCancelled
}
