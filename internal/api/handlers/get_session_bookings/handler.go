package get_session_bookings

import (
	"net/http"

	"github.com/m04kA/MTB-ReservationService/internal/api/handlers"
	"github.com/m04kA/MTB-ReservationService/internal/api/middleware"
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

// Handle GET /api/v1/bookings
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	sessionID := middleware.SessionID(r.Context())

	result, err := h.service.ListBySession(r.Context(), sessionID)
	if err != nil {
		h.logger.Error("GET /bookings - Failed to list bookings: session=%s, error=%v", sessionID, err)
		handlers.RespondInternalError(w)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}
