package generate_slots

import (
	"errors"
	"net/http"

	"github.com/m04kA/MTB-ReservationService/internal/api/handlers"
	generateSlots "github.com/m04kA/MTB-ReservationService/internal/usecase/generate_slots"
)

const (
	msgInvalidRequestBody = "некорректное тело запроса"
	msgInvalidDateOrTime  = "некорректный формат даты или времени"
	msgInvalidDateRange   = "некорректный диапазон дат"
	msgRangeTooLarge      = "диапазон дат превышает лимит генерации"
	msgInvalidSchedule    = "некорректное расписание дня"
	msgInvalidInput       = "некорректные параметры генерации"
)

type Handler struct {
	useCase GenerateSlotsUseCase
	logger  Logger
}

func NewHandler(useCase GenerateSlotsUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle POST /api/v1/admin/timeslots/generate
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	var req GenerateSlotsRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /admin/timeslots/generate - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	useCaseReq, err := req.ToUseCaseRequest()
	if err != nil {
		h.logger.Warn("POST /admin/timeslots/generate - Failed to parse request: %v", err)
		handlers.RespondBadRequest(w, msgInvalidDateOrTime)
		return
	}

	result, err := h.useCase.Execute(r.Context(), useCaseReq)
	if err != nil {
		switch {
		case errors.Is(err, generateSlots.ErrInvalidDateRange):
			h.logger.Warn("POST /admin/timeslots/generate - Invalid date range: %v", err)
			handlers.RespondBadRequest(w, msgInvalidDateRange)

		case errors.Is(err, generateSlots.ErrRangeTooLarge):
			h.logger.Warn("POST /admin/timeslots/generate - Range too large: %v", err)
			handlers.RespondBadRequest(w, msgRangeTooLarge)

		case errors.Is(err, generateSlots.ErrInvalidSchedule):
			h.logger.Warn("POST /admin/timeslots/generate - Invalid schedule: %v", err)
			handlers.RespondBadRequest(w, msgInvalidSchedule)

		case errors.Is(err, generateSlots.ErrInvalidInput):
			h.logger.Warn("POST /admin/timeslots/generate - Invalid input: %v", err)
			handlers.RespondBadRequest(w, msgInvalidInput)

		default:
			h.logger.Error("POST /admin/timeslots/generate - Failed: %v", err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /admin/timeslots/generate - Generated %d slots, skipped %d",
		result.SlotsCreated, result.SlotsSkipped)
	handlers.RespondJSON(w, http.StatusCreated, FromUseCaseResponse(result))
}
