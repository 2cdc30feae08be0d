package cancel_booking

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/m04kA/MTB-ReservationService/internal/api/handlers"
	"github.com/m04kA/MTB-ReservationService/internal/api/middleware"
	"github.com/m04kA/MTB-ReservationService/internal/domain"
	"github.com/m04kA/MTB-ReservationService/internal/service/bookings"
)

const (
	msgInvalidBookingID = "некорректный ID брони"
	msgInvalidBody      = "некорректное тело запроса"
	msgReasonTooLong    = "слишком длинная причина отмены"
	msgNotFound         = "бронь не найдена"
	msgCannotCancel     = "бронь нельзя отменить"
)

type Handler struct {
	service BookingService
	logger  Logger
}

func NewHandler(service BookingService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Handle PATCH /api/v1/bookings/{bookingId}/cancel
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	bookingID, err := strconv.ParseInt(vars["bookingId"], 10, 64)
	if err != nil {
		h.logger.Warn("PATCH /bookings/{id}/cancel - Invalid booking ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidBookingID)
		return
	}

	// Тело с причиной опционально
	var req CancelRequest
	if err := handlers.DecodeJSON(r, &req); err != nil && !errors.Is(err, io.EOF) {
		h.logger.Warn("PATCH /bookings/{id}/cancel - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidBody)
		return
	}

	if len(req.Reason) > domain.MaxCancellationReasonLength {
		h.logger.Warn("PATCH /bookings/{id}/cancel - Cancellation reason too long: %d chars", len(req.Reason))
		handlers.RespondBadRequest(w, msgReasonTooLong)
		return
	}

	sessionID := middleware.SessionID(r.Context())

	if err := h.service.Cancel(r.Context(), bookingID, sessionID, req.Reason); err != nil {
		switch {
		case errors.Is(err, bookings.ErrBookingNotFound):
			h.logger.Warn("PATCH /bookings/{id}/cancel - Booking not found: booking_id=%d", bookingID)
			handlers.RespondNotFound(w, msgNotFound)

		case errors.Is(err, bookings.ErrCannotCancel):
			h.logger.Warn("PATCH /bookings/{id}/cancel - Cannot cancel: booking_id=%d", bookingID)
			handlers.RespondError(w, http.StatusConflict, msgCannotCancel)

		default:
			h.logger.Error("PATCH /bookings/{id}/cancel - Failed: booking_id=%d, error=%v", bookingID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("PATCH /bookings/{id}/cancel - Booking cancelled: booking_id=%d, session=%s",
		bookingID, sessionID)
	handlers.RespondJSON(w, http.StatusOK, CancelResponse{Cancelled: true})
}
