package generate_slots

import (
	"fmt"

	"github.com/m04kA/MTB-ReservationService/internal/domain"
)

// validateRequest валидирует входные данные запроса
func validateRequest(req *Request) error {
	if req.StartDate.IsZero() || req.EndDate.IsZero() {
		return fmt.Errorf("%w: startDate and endDate are required", ErrInvalidInput)
	}

	if req.EndDate.Before(req.StartDate) {
		return fmt.Errorf("%w: endDate is before startDate", ErrInvalidDateRange)
	}

	days := int(req.EndDate.Sub(req.StartDate).Hours()/24) + 1
	if days > domain.MaxGenerateRangeDays {
		return fmt.Errorf("%w: range of %d days exceeds limit of %d",
			ErrRangeTooLarge, days, domain.MaxGenerateRangeDays)
	}

	if err := req.OpenTime.Validate(); err != nil {
		return fmt.Errorf("%w: invalid openTime: %v", ErrInvalidSchedule, err)
	}

	if err := req.CloseTime.Validate(); err != nil {
		return fmt.Errorf("%w: invalid closeTime: %v", ErrInvalidSchedule, err)
	}

	if !req.OpenTime.IsBefore(req.CloseTime) {
		return fmt.Errorf("%w: openTime must be before closeTime", ErrInvalidSchedule)
	}

	if req.SlotDurationMinutes < domain.MinSlotDuration ||
		req.SlotDurationMinutes > domain.MaxSlotDuration {
		return fmt.Errorf("%w: slot duration must be between %d and %d minutes",
			ErrInvalidSchedule, domain.MinSlotDuration, domain.MaxSlotDuration)
	}

	if req.TotalCapacity <= 0 {
		return fmt.Errorf("%w: totalCapacity must be positive", ErrInvalidInput)
	}

	if req.Buffer < 0 {
		return fmt.Errorf("%w: buffer must not be negative", ErrInvalidInput)
	}

	if req.Buffer >= req.TotalCapacity {
		return fmt.Errorf("%w: buffer must be less than totalCapacity", ErrInvalidInput)
	}

	return nil
}
