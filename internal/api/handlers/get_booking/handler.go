package get_booking

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"

	"github.com/m04kA/MTB-ReservationService/internal/api/handlers"
	"github.com/m04kA/MTB-ReservationService/internal/api/middleware"
	"github.com/m04kA/MTB-ReservationService/internal/domain"
	"github.com/m04kA/MTB-ReservationService/internal/service/bookings"
)

const (
	msgInvalidBookingID = "некорректный ID брони"
	msgNotFound         = "бронь не найдена"
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

// Handle GET /api/v1/bookings/{bookingId}
// Вместо числового ID принимает и код брони (MTB-XXXXXXXX) -
// путь для проверки на входе по распечатке
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	idStr := vars["bookingId"]

	var err error
	var result interface{}

	if strings.HasPrefix(idStr, domain.BookingReferencePrefix+"-") {
		result, err = h.service.GetByReference(r.Context(), idStr)
	} else {
		bookingID, parseErr := strconv.ParseInt(idStr, 10, 64)
		if parseErr != nil {
			h.logger.Warn("GET /bookings/{id} - Invalid booking ID %q", idStr)
			handlers.RespondBadRequest(w, msgInvalidBookingID)
			return
		}

		sessionID := middleware.SessionID(r.Context())
		result, err = h.service.GetByID(r.Context(), bookingID, sessionID)
	}

	if err != nil {
		switch {
		case errors.Is(err, bookings.ErrBookingNotFound):
			h.logger.Warn("GET /bookings/{id} - Booking not found: id=%s", idStr)
			handlers.RespondNotFound(w, msgNotFound)

		default:
			h.logger.Error("GET /bookings/{id} - Failed to get booking: id=%s, error=%v", idStr, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}
