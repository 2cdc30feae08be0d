package get_availability

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/m04kA/MTB-ReservationService/internal/api/handlers"
	"github.com/m04kA/MTB-ReservationService/internal/service/reservation"
)

const (
	msgInvalidSlotID = "некорректный ID слота"
	msgSlotNotFound  = "временной слот не найден"
)

type Handler struct {
	service ReservationService
	logger  Logger
}

func NewHandler(service ReservationService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Handle GET /api/v1/timeslots/{timeSlotId}/availability
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	timeSlotID, err := strconv.ParseInt(vars["timeSlotId"], 10, 64)
	if err != nil {
		h.logger.Warn("GET /timeslots/{id}/availability - Invalid slot ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidSlotID)
		return
	}

	result, err := h.service.CheckAvailability(r.Context(), timeSlotID)
	if err != nil {
		switch {
		case errors.Is(err, reservation.ErrSlotNotFound):
			h.logger.Warn("GET /timeslots/{id}/availability - Slot not found: slot_id=%d", timeSlotID)
			handlers.RespondNotFound(w, msgSlotNotFound)

		default:
			h.logger.Error("GET /timeslots/{id}/availability - Failed: slot_id=%d, error=%v", timeSlotID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}
