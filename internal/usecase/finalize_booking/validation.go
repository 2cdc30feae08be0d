package finalize_booking

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/m04kA/MTB-ReservationService/internal/domain"
)

// validateRequest валидирует входные данные запроса
func validateRequest(req *Request) error {
	if req.HoldID <= 0 {
		return fmt.Errorf("%w: holdID must be positive", ErrInvalidInput)
	}

	if strings.TrimSpace(req.SessionID) == "" {
		return fmt.Errorf("%w: sessionID is required", ErrInvalidInput)
	}

	if strings.TrimSpace(req.Visitor.Name) == "" {
		return fmt.Errorf("%w: visitor name is required", ErrInvalidInput)
	}

	if utf8.RuneCountInString(req.Visitor.Name) > domain.MaxVisitorNameLength {
		return fmt.Errorf("%w: visitor name exceeds %d characters",
			ErrInvalidInput, domain.MaxVisitorNameLength)
	}

	if !strings.Contains(req.Visitor.Email, "@") {
		return fmt.Errorf("%w: visitor email is invalid", ErrInvalidInput)
	}

	if req.Payment.Amount < 0 {
		return fmt.Errorf("%w: payment amount must not be negative", ErrInvalidInput)
	}

	if strings.TrimSpace(req.Payment.Currency) == "" && req.Payment.Amount > 0 {
		return fmt.Errorf("%w: payment currency is required", ErrInvalidInput)
	}

	return nil
}
