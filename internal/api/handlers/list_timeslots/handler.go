package list_timeslots

import (
	"net/http"
	"strconv"
	"time"

	"github.com/m04kA/MTB-ReservationService/internal/api/handlers"
	"github.com/m04kA/MTB-ReservationService/internal/domain"
)

const (
	msgMissingDate      = "требуется параметр date в формате YYYY-MM-DD"
	msgInvalidDate      = "некорректный формат даты, ожидается YYYY-MM-DD"
	msgInvalidExhibitID = "некорректный ID выставки"
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

// Handle GET /api/v1/timeslots?date=YYYY-MM-DD&exhibitId=N
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	dateStr := r.URL.Query().Get("date")
	if dateStr == "" {
		handlers.RespondBadRequest(w, msgMissingDate)
		return
	}

	date, err := time.Parse(domain.DateFormat, dateStr)
	if err != nil {
		h.logger.Warn("GET /timeslots - Invalid date %q: %v", dateStr, err)
		handlers.RespondBadRequest(w, msgInvalidDate)
		return
	}

	filter := domain.SlotListFilter{
		Date:       date,
		OnlyActive: true,
	}

	if exhibitStr := r.URL.Query().Get("exhibitId"); exhibitStr != "" {
		exhibitID, err := strconv.ParseInt(exhibitStr, 10, 64)
		if err != nil || exhibitID <= 0 {
			h.logger.Warn("GET /timeslots - Invalid exhibit ID %q", exhibitStr)
			handlers.RespondBadRequest(w, msgInvalidExhibitID)
			return
		}
		filter.ExhibitID = &exhibitID
	}

	result, err := h.service.ListSlots(r.Context(), filter)
	if err != nil {
		h.logger.Error("GET /timeslots - Failed to list slots: date=%s, error=%v", dateStr, err)
		handlers.RespondInternalError(w)
		return
	}

	h.logger.Info("GET /timeslots - Listed %d slots for date=%s", len(result.Slots), dateStr)
	handlers.RespondJSON(w, http.StatusOK, result)
}
