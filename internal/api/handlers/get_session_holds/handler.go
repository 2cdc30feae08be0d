package get_session_holds

import (
	"net/http"

	"github.com/m04kA/MTB-ReservationService/internal/api/handlers"
	"github.com/m04kA/MTB-ReservationService/internal/api/middleware"
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

// Handle GET /api/v1/holds
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	sessionID := middleware.SessionID(r.Context())

	result, err := h.service.ListSessionHolds(r.Context(), sessionID)
	if err != nil {
		h.logger.Error("GET /holds - Failed to list holds: session=%s, error=%v", sessionID, err)
		handlers.RespondInternalError(w)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}
