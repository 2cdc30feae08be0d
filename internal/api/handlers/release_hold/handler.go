package release_hold

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/m04kA/MTB-ReservationService/internal/api/handlers"
	"github.com/m04kA/MTB-ReservationService/internal/api/middleware"
	"github.com/m04kA/MTB-ReservationService/internal/service/reservation"
)

const (
	msgInvalidHoldID = "некорректный ID брони"
	msgHoldNotFound  = "бронь не найдена"
)

type ReleaseResponse struct {
	Released bool `json:"released"`
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

// Handle DELETE /api/v1/holds/{holdId}
// Идемпотентен: повторное освобождение возвращает тот же успешный ответ
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	holdID, err := strconv.ParseInt(vars["holdId"], 10, 64)
	if err != nil {
		h.logger.Warn("DELETE /holds/{id} - Invalid hold ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidHoldID)
		return
	}

	sessionID := middleware.SessionID(r.Context())

	if err := h.service.ReleaseHold(r.Context(), holdID, sessionID); err != nil {
		switch {
		case errors.Is(err, reservation.ErrHoldNotFound):
			h.logger.Warn("DELETE /holds/{id} - Hold not found: hold_id=%d, session=%s", holdID, sessionID)
			handlers.RespondNotFound(w, msgHoldNotFound)

		default:
			h.logger.Error("DELETE /holds/{id} - Failed to release hold: hold_id=%d, error=%v", holdID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("DELETE /holds/{id} - Hold released: hold_id=%d, session=%s", holdID, sessionID)
	handlers.RespondJSON(w, http.StatusOK, ReleaseResponse{Released: true})
}
