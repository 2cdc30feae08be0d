package create_hold

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/m04kA/MTB-ReservationService/internal/domain"
	holdRepo "github.com/m04kA/MTB-ReservationService/internal/infra/storage/hold"
	slotRepo "github.com/m04kA/MTB-ReservationService/internal/infra/storage/timeslot"
)

// UseCase use case для создания холда на билеты
type UseCase struct {
	slotRepo          TimeSlotRepository
	holdRepo          HoldRepository
	txManager         TransactionManager
	timeProvider      TimeProvider
	holdTTL           time.Duration
	maxTicketsPerHold int
	logger            Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	slotRepo TimeSlotRepository,
	holdRepo HoldRepository,
	txManager TransactionManager,
	holdTTL time.Duration,
	maxTicketsPerHold int,
	logger Logger,
) *UseCase {
	return &UseCase{
		slotRepo:          slotRepo,
		holdRepo:          holdRepo,
		txManager:         txManager,
		timeProvider:      &RealTimeProvider{},
		holdTTL:           holdTTL,
		maxTicketsPerHold: maxTicketsPerHold,
		logger:            logger,
	}
}

// Execute выполняет use case создания холда
// Проверка ёмкости и вставка холда выполняются в одной сериализуемой
// транзакции со слотом под блокировкой - два конкурентных холда на последние
// места не могут пройти оба
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("CreateHold: session=%s, slot=%d, quantity=%d",
		req.SessionID, req.TimeSlotID, req.Quantity)

	// 1. Валидация входных данных
	if err := validateRequest(req, uc.maxTicketsPerHold); err != nil {
		uc.logger.Warn("CreateHold: validation failed: %v", err)
		return nil, err
	}

	// 2. Получаем текущее время
	now := uc.timeProvider.Now()

	// Переменная для хранения результата
	var result *domain.Hold

	// 3. Выполняем операции с БД в сериализуемой транзакции
	err := uc.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		// 3.1. Получаем слот с блокировкой (FOR UPDATE)
		slot, err := uc.slotRepo.GetByID(txCtx, req.TimeSlotID)
		if err != nil {
			if errors.Is(err, slotRepo.ErrSlotNotFound) {
				uc.logger.Warn("CreateHold: slot id=%d not found", req.TimeSlotID)
				return ErrSlotNotFound
			}
			uc.logger.Error("CreateHold: failed to get slot id=%d: %v", req.TimeSlotID, err)
			return fmt.Errorf("%w: failed to get slot: %v", ErrInternal, err)
		}

		// 3.2. Слот должен быть активен и ещё не начаться
		if err := validateSlotBookable(slot, now); err != nil {
			uc.logger.Warn("CreateHold: slot id=%d not bookable: %v", req.TimeSlotID, err)
			return err
		}

		// 3.3. Считаем занятую холдами ёмкость
		// Просроченные холды тут не учитываются независимо от того,
		// успел ли их обработать sweeper
		held, err := uc.holdRepo.SumActiveQuantity(txCtx, req.TimeSlotID, now)
		if err != nil {
			uc.logger.Error("CreateHold: failed to sum active holds for slot id=%d: %v", req.TimeSlotID, err)
			return fmt.Errorf("%w: failed to sum active holds: %v", ErrInternal, err)
		}

		// 3.4. Проверяем инвариант ёмкости:
		// confirmed + held + requested <= total - buffer
		available := slot.SellableCapacity() - slot.ConfirmedCount - held
		if available < req.Quantity {
			if available < 0 {
				available = 0
			}
			uc.logger.Warn("CreateHold: slot id=%d full, requested=%d, available=%d",
				req.TimeSlotID, req.Quantity, available)
			return &SlotFullError{Requested: req.Quantity, Remaining: available}
		}

		uc.logger.Info("CreateHold: slot id=%d has capacity, requested=%d, available=%d",
			req.TimeSlotID, req.Quantity, available)

		// 3.5. Создаем холд
		hold := &domain.Hold{
			SessionID:  req.SessionID,
			TimeSlotID: req.TimeSlotID,
			Quantity:   req.Quantity,
			Status:     domain.HoldStatusActive,
			ExpiresAt:  now.Add(uc.holdTTL),
		}

		created, err := uc.holdRepo.Create(txCtx, hold)
		if err != nil {
			if errors.Is(err, holdRepo.ErrDuplicateHold) {
				uc.logger.Warn("CreateHold: session=%s already holds slot id=%d",
					req.SessionID, req.TimeSlotID)
				return ErrDuplicateHold
			}
			uc.logger.Error("CreateHold: failed to create hold: %v", err)
			return fmt.Errorf("%w: failed to create hold: %v", ErrInternal, err)
		}

		result = created
		return nil
	})

	if err != nil {
		return nil, err
	}

	uc.logger.Info("CreateHold: successfully created hold id=%d, expires at %s",
		result.ID, result.ExpiresAt.Format(time.RFC3339))

	// Конвертируем в response
	return &Response{
		HoldID:     result.ID,
		TimeSlotID: result.TimeSlotID,
		Quantity:   result.Quantity,
		Status:     string(result.Status),
		ExpiresAt:  result.ExpiresAt,
		CreatedAt:  result.CreatedAt,
	}, nil
}
