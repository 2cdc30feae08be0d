package generate_slots

import (
	"context"
	"fmt"
	"time"

	"github.com/m04kA/MTB-ReservationService/internal/domain"
)

// UseCase use case генерации сетки слотов на диапазон дат
type UseCase struct {
	slotRepo     TimeSlotRepository
	txManager    TransactionManager
	timeProvider TimeProvider
	logger       Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	slotRepo TimeSlotRepository,
	txManager TransactionManager,
	logger Logger,
) *UseCase {
	return &UseCase{
		slotRepo:     slotRepo,
		txManager:    txManager,
		timeProvider: &RealTimeProvider{},
		logger:       logger,
	}
}

// Execute выполняет use case генерации слотов
// Повторный запуск на тот же диапазон идемпотентен: существующие слоты
// пропускаются на уровне вставки (ON CONFLICT DO NOTHING)
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("GenerateSlots: range %s..%s, open=%s, close=%s, duration=%d",
		req.StartDate.Format(domain.DateFormat), req.EndDate.Format(domain.DateFormat),
		req.OpenTime, req.CloseTime, req.SlotDurationMinutes)

	// 1. Валидация входных данных
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("GenerateSlots: validation failed: %v", err)
		return nil, err
	}

	// 2. Диапазон, целиком лежащий в прошлом, не генерируется
	today := truncateToDay(uc.timeProvider.Now())
	if req.EndDate.Before(today) {
		uc.logger.Warn("GenerateSlots: range ends in the past (%s)", req.EndDate.Format(domain.DateFormat))
		return nil, fmt.Errorf("%w: range ends in the past", ErrInvalidDateRange)
	}

	// 3. Строим сетку слотов по дням
	slots, err := buildSlots(req)
	if err != nil {
		uc.logger.Warn("GenerateSlots: failed to build slot grid: %v", err)
		return nil, err
	}

	if len(slots) == 0 {
		uc.logger.Warn("GenerateSlots: schedule produced no slots")
		return nil, fmt.Errorf("%w: schedule produces no slots", ErrInvalidSchedule)
	}

	// 4. Вставляем батч в транзакции
	var created int
	err = uc.txManager.Do(ctx, func(txCtx context.Context) error {
		n, err := uc.slotRepo.CreateBatch(txCtx, slots)
		if err != nil {
			uc.logger.Error("GenerateSlots: failed to create batch: %v", err)
			return fmt.Errorf("%w: failed to create batch: %v", ErrInternal, err)
		}
		created = n
		return nil
	})

	if err != nil {
		return nil, err
	}

	skipped := len(slots) - created
	uc.logger.Info("GenerateSlots: created %d slots, skipped %d existing", created, skipped)

	return &Response{
		SlotsCreated: created,
		SlotsSkipped: skipped,
	}, nil
}

// buildSlots разворачивает дневное расписание в слоты на каждый день диапазона
// Последний слот, не помещающийся до закрытия целиком, не создаётся
func buildSlots(req *Request) ([]*domain.TimeSlot, error) {
	var slots []*domain.TimeSlot

	for date := req.StartDate; !date.After(req.EndDate); date = date.AddDate(0, 0, 1) {
		start := req.OpenTime

		for {
			end, err := start.AddMinutes(req.SlotDurationMinutes)
			if err != nil {
				// Слот уехал за полночь - день закончился
				break
			}
			if end.IsAfter(req.CloseTime) {
				break
			}

			slots = append(slots, &domain.TimeSlot{
				ExhibitID:     req.ExhibitID,
				SlotDate:      truncateToDay(date),
				StartTime:     start,
				EndTime:       end,
				TotalCapacity: req.TotalCapacity,
				Buffer:        req.Buffer,
				IsActive:      true,
			})

			start = end
		}
	}

	return slots, nil
}

// truncateToDay обнуляет время, оставляя только дату
func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
