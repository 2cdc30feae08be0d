package create_hold

import (
	"errors"
	"net/http"

	"github.com/m04kA/MTB-ReservationService/internal/api/handlers"
	"github.com/m04kA/MTB-ReservationService/internal/api/middleware"
	createHold "github.com/m04kA/MTB-ReservationService/internal/usecase/create_hold"
)

const (
	msgInvalidRequestBody = "некорректное тело запроса"
	msgInvalidInput       = "некорректные параметры запроса"
	msgSlotNotFound       = "временной слот не найден"
	msgSlotInactive       = "временной слот снят с продажи"
	msgSlotInPast         = "временной слот уже прошёл"
	msgSlotFull           = "недостаточно свободных мест в слоте"
	msgDuplicateHold      = "у вас уже есть активная бронь на этот слот"
)

type Handler struct {
	useCase CreateHoldUseCase
	logger  Logger
}

func NewHandler(useCase CreateHoldUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle POST /api/v1/holds
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	var req CreateHoldRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /holds - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	sessionID := middleware.SessionID(r.Context())

	result, err := h.useCase.Execute(r.Context(), req.ToUseCaseRequest(sessionID))
	if err != nil {
		var slotFull *createHold.SlotFullError

		switch {
		case errors.As(err, &slotFull):
			h.logger.Warn("POST /holds - Slot full: slot_id=%d, requested=%d, remaining=%d",
				req.TimeSlotID, slotFull.Requested, slotFull.Remaining)
			handlers.RespondSlotFull(w, slotFull.Remaining, msgSlotFull)

		case errors.Is(err, createHold.ErrDuplicateHold):
			h.logger.Warn("POST /holds - Duplicate hold: slot_id=%d, session=%s", req.TimeSlotID, sessionID)
			handlers.RespondErrorCode(w, http.StatusConflict, handlers.CodeDuplicateHold, msgDuplicateHold)

		case errors.Is(err, createHold.ErrSlotNotFound):
			h.logger.Warn("POST /holds - Slot not found: slot_id=%d", req.TimeSlotID)
			handlers.RespondNotFound(w, msgSlotNotFound)

		case errors.Is(err, createHold.ErrSlotInactive):
			h.logger.Warn("POST /holds - Slot inactive: slot_id=%d", req.TimeSlotID)
			handlers.RespondErrorCode(w, http.StatusUnprocessableEntity, handlers.CodeSlotInactive, msgSlotInactive)

		case errors.Is(err, createHold.ErrSlotInPast):
			h.logger.Warn("POST /holds - Slot in past: slot_id=%d", req.TimeSlotID)
			handlers.RespondErrorCode(w, http.StatusUnprocessableEntity, handlers.CodeSlotInactive, msgSlotInPast)

		case errors.Is(err, createHold.ErrInvalidInput):
			h.logger.Warn("POST /holds - Invalid input: %v", err)
			handlers.RespondBadRequest(w, msgInvalidInput)

		default:
			h.logger.Error("POST /holds - Failed to create hold: slot_id=%d, error=%v", req.TimeSlotID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /holds - Hold created: hold_id=%d, slot_id=%d, quantity=%d",
		result.HoldID, result.TimeSlotID, result.Quantity)
	handlers.RespondJSON(w, http.StatusCreated, FromUseCaseResponse(result))
}
