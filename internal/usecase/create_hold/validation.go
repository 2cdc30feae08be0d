package create_hold

import (
	"fmt"
	"strings"
	"time"

	"github.com/m04kA/MTB-ReservationService/internal/domain"
)

// validateRequest валидирует входные данные запроса
func validateRequest(req *Request, maxTicketsPerHold int) error {
	if req.TimeSlotID <= 0 {
		return fmt.Errorf("%w: timeSlotID must be positive", ErrInvalidInput)
	}

	if strings.TrimSpace(req.SessionID) == "" {
		return fmt.Errorf("%w: sessionID is required", ErrInvalidInput)
	}

	if req.Quantity < domain.MinHoldQuantity {
		return fmt.Errorf("%w: quantity must be at least %d", ErrInvalidInput, domain.MinHoldQuantity)
	}

	if req.Quantity > maxTicketsPerHold {
		return fmt.Errorf("%w: quantity must not exceed %d", ErrInvalidInput, maxTicketsPerHold)
	}

	return nil
}

// validateSlotBookable проверяет, что слот активен и ещё не начался
func validateSlotBookable(slot *domain.TimeSlot, now time.Time) error {
	if !slot.IsActive {
		return ErrSlotInactive
	}

	if slot.IsInPast(now) {
		return ErrSlotInPast
	}

	return nil
}
