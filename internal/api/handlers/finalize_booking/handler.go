package finalize_booking

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/m04kA/MTB-ReservationService/internal/api/handlers"
	"github.com/m04kA/MTB-ReservationService/internal/api/middleware"
	finalizeBooking "github.com/m04kA/MTB-ReservationService/internal/usecase/finalize_booking"
)

const (
	msgInvalidRequestBody   = "некорректное тело запроса"
	msgInvalidHoldID        = "некорректный ID брони"
	msgInvalidInput         = "некорректные параметры запроса"
	msgHoldNotFound         = "бронь не найдена"
	msgHoldExpired          = "время брони истекло, начните бронирование заново"
	msgHoldAlreadyConverted = "бронь уже подтверждена"
	msgInvalidHoldState     = "бронь нельзя подтвердить"
	msgPaymentNotConfirmed  = "оплата не подтверждена"
)

type Handler struct {
	useCase FinalizeBookingUseCase
	logger  Logger
}

func NewHandler(useCase FinalizeBookingUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle POST /api/v1/holds/{holdId}/finalize
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	holdID, err := strconv.ParseInt(vars["holdId"], 10, 64)
	if err != nil {
		h.logger.Warn("POST /holds/{id}/finalize - Invalid hold ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidHoldID)
		return
	}

	var req FinalizeRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /holds/{id}/finalize - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	sessionID := middleware.SessionID(r.Context())

	result, err := h.useCase.Execute(r.Context(), req.ToUseCaseRequest(holdID, sessionID))
	if err != nil {
		switch {
		case errors.Is(err, finalizeBooking.ErrHoldExpired):
			h.logger.Warn("POST /holds/{id}/finalize - Hold expired: hold_id=%d", holdID)
			handlers.RespondErrorCode(w, http.StatusConflict, handlers.CodeHoldExpired, msgHoldExpired)

		case errors.Is(err, finalizeBooking.ErrHoldAlreadyConverted):
			h.logger.Warn("POST /holds/{id}/finalize - Hold already converted: hold_id=%d", holdID)
			handlers.RespondError(w, http.StatusConflict, msgHoldAlreadyConverted)

		case errors.Is(err, finalizeBooking.ErrInvalidHoldState):
			h.logger.Warn("POST /holds/{id}/finalize - Invalid hold state: hold_id=%d", holdID)
			handlers.RespondError(w, http.StatusConflict, msgInvalidHoldState)

		case errors.Is(err, finalizeBooking.ErrHoldNotFound):
			h.logger.Warn("POST /holds/{id}/finalize - Hold not found: hold_id=%d, session=%s", holdID, sessionID)
			handlers.RespondNotFound(w, msgHoldNotFound)

		case errors.Is(err, finalizeBooking.ErrPaymentNotConfirmed):
			h.logger.Warn("POST /holds/{id}/finalize - Payment not confirmed: hold_id=%d", holdID)
			handlers.RespondError(w, http.StatusPaymentRequired, msgPaymentNotConfirmed)

		case errors.Is(err, finalizeBooking.ErrInvalidInput):
			h.logger.Warn("POST /holds/{id}/finalize - Invalid input: %v", err)
			handlers.RespondBadRequest(w, msgInvalidInput)

		case errors.Is(err, finalizeBooking.ErrCapacityInvariant):
			// Повреждение учёта ёмкости, требует ручного вмешательства
			h.logger.Error("POST /holds/{id}/finalize - Capacity invariant violated: hold_id=%d", holdID)
			handlers.RespondInternalError(w)

		default:
			h.logger.Error("POST /holds/{id}/finalize - Failed: hold_id=%d, error=%v", holdID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /holds/{id}/finalize - Booking confirmed: booking_id=%d, reference=%s",
		result.BookingID, result.Reference)
	handlers.RespondJSON(w, http.StatusCreated, FromUseCaseResponse(result))
}
