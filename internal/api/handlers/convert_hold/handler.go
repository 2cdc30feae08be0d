package convert_hold

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
	msgInvalidHoldID    = "некорректный ID брони"
	msgHoldNotFound     = "бронь не найдена"
	msgHoldExpired      = "время брони истекло, начните бронирование заново"
	msgInvalidHoldState = "бронь нельзя перевести в оплату"
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

// Handle POST /api/v1/holds/{holdId}/convert
// Вызывается витриной при старте оплаты: холд перестаёт истекать по TTL,
// а возвращённый токен предъявляется при финализации
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	holdID, err := strconv.ParseInt(vars["holdId"], 10, 64)
	if err != nil {
		h.logger.Warn("POST /holds/{id}/convert - Invalid hold ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidHoldID)
		return
	}

	sessionID := middleware.SessionID(r.Context())

	result, err := h.service.ConvertHold(r.Context(), holdID, sessionID)
	if err != nil {
		switch {
		case errors.Is(err, reservation.ErrHoldNotFound):
			h.logger.Warn("POST /holds/{id}/convert - Hold not found: hold_id=%d, session=%s", holdID, sessionID)
			handlers.RespondNotFound(w, msgHoldNotFound)

		case errors.Is(err, reservation.ErrHoldExpired):
			h.logger.Warn("POST /holds/{id}/convert - Hold expired: hold_id=%d", holdID)
			handlers.RespondErrorCode(w, http.StatusConflict, handlers.CodeHoldExpired, msgHoldExpired)

		case errors.Is(err, reservation.ErrInvalidHoldState):
			h.logger.Warn("POST /holds/{id}/convert - Invalid hold state: hold_id=%d", holdID)
			handlers.RespondError(w, http.StatusConflict, msgInvalidHoldState)

		default:
			h.logger.Error("POST /holds/{id}/convert - Failed: hold_id=%d, error=%v", holdID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /holds/{id}/convert - Hold entered conversion: hold_id=%d", holdID)
	handlers.RespondJSON(w, http.StatusOK, result)
}
