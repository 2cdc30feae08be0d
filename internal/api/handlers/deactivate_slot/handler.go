package deactivate_slot

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
	msgSlotNotFound  = "слот не найден"
)

type DeactivateResponse struct {
	Deactivated   bool `json:"deactivated"`
	HoldsReleased int  `json:"holdsReleased"`
}

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

// Handle PATCH /api/v1/admin/timeslots/{timeSlotId}/deactivate
// Снимает слот с продажи и освобождает его активные холды
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	timeSlotID, err := strconv.ParseInt(vars["timeSlotId"], 10, 64)
	if err != nil {
		h.logger.Warn("PATCH /admin/timeslots/{id}/deactivate - Invalid slot ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidSlotID)
		return
	}

	released, err := h.service.DeactivateSlot(r.Context(), timeSlotID)
	if err != nil {
		switch {
		case errors.Is(err, reservation.ErrSlotNotFound):
			h.logger.Warn("PATCH /admin/timeslots/{id}/deactivate - Slot not found: slot_id=%d", timeSlotID)
			handlers.RespondNotFound(w, msgSlotNotFound)

		default:
			h.logger.Error("PATCH /admin/timeslots/{id}/deactivate - Failed: slot_id=%d, error=%v", timeSlotID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("PATCH /admin/timeslots/{id}/deactivate - Slot deactivated: slot_id=%d, holds_released=%d",
		timeSlotID, released)
	handlers.RespondJSON(w, http.StatusOK, DeactivateResponse{Deactivated: true, HoldsReleased: released})
}
