package domain

import "time"

// HoldStatus represents the lifecycle state of a hold
type HoldStatus string

const (
	HoldStatusActive     HoldStatus = "active"
	HoldStatusConverting HoldStatus = "converting"
	HoldStatusConverted  HoldStatus = "converted"
	HoldStatusReleased   HoldStatus = "released"
	HoldStatusExpired    HoldStatus = "expired"
)

// Hold represents a tentative, time-bounded claim on capacity units of a
// TimeSlot by one shopping session. While a hold is active and unexpired its
// quantity counts against the slot's available capacity; every other status
// is terminal except "converting", which marks a finalize in flight.
type Hold struct {
	ID         int64
	SessionID  string
	TimeSlotID int64
	Quantity   int
	Status     HoldStatus

	// ConversionToken выдается при переходе в converting и предъявляется финализатору
	ConversionToken *string

	CreatedAt time.Time
	ExpiresAt time.Time
}

// IsActive returns true if the hold still claims capacity (pending conversion counts).
func (h *Hold) IsActive() bool {
	for _, s := range ActiveHoldStatuses {
		if h.Status == s {
			return true
		}
	}
	return false
}

// IsExpired returns true if the hold's TTL has elapsed at the given moment.
func (h *Hold) IsExpired(now time.Time) bool {
	return !h.ExpiresAt.After(now)
}

// CanConvert returns true if the hold may enter conversion: it must be
// active and unexpired, or already converting (finalize retry).
func (h *Hold) CanConvert(now time.Time) bool {
	if h.Status == HoldStatusConverting {
		return true
	}
	return h.Status == HoldStatusActive && !h.IsExpired(now)
}

// CanRelease returns true if releasing the hold would change its state.
// Releasing a non-active hold is a no-op, not an error.
func (h *Hold) CanRelease() bool {
	return h.Status == HoldStatusActive
}
