package reservation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/m04kA/MTB-ReservationService/internal/domain"
	holdRepo "github.com/m04kA/MTB-ReservationService/internal/infra/storage/hold"
	slotRepo "github.com/m04kA/MTB-ReservationService/internal/infra/storage/timeslot"
	"github.com/m04kA/MTB-ReservationService/internal/service/reservation/models"
)

// Service сервис жизненного цикла холдов
// Единственный компонент, которому разрешено переводить холды между статусами
// и тем самым менять "занятую" часть ёмкости слота
type Service struct {
	slotRepo     TimeSlotRepository
	holdRepo     HoldRepository
	txManager    TransactionManager
	timeProvider TimeProvider
	sweepGrace   time.Duration
	logger       Logger
}

// NewService создает новый экземпляр сервиса резервирования
func NewService(
	slotRepo TimeSlotRepository,
	holdRepo HoldRepository,
	txManager TransactionManager,
	sweepGrace time.Duration,
	logger Logger,
) *Service {
	return &Service{
		slotRepo:     slotRepo,
		holdRepo:     holdRepo,
		txManager:    txManager,
		timeProvider: &RealTimeProvider{},
		sweepGrace:   sweepGrace,
		logger:       logger,
	}
}

// CheckAvailability возвращает доступную ёмкость слота
// Читает актуальное состояние БД: total - buffer - confirmed - активные холды
func (s *Service) CheckAvailability(ctx context.Context, timeSlotID int64) (*models.AvailabilityResponse, error) {
	var result *models.AvailabilityResponse

	err := s.txManager.DoReadOnly(ctx, func(txCtx context.Context) error {
		slot, err := s.slotRepo.GetByID(txCtx, timeSlotID)
		if err != nil {
			if errors.Is(err, slotRepo.ErrSlotNotFound) {
				return ErrSlotNotFound
			}
			return fmt.Errorf("%w: CheckAvailability - get slot: %v", ErrInternal, err)
		}

		available, err := s.slotRepo.GetAvailableCapacity(txCtx, timeSlotID)
		if err != nil {
			return fmt.Errorf("%w: CheckAvailability - get capacity: %v", ErrInternal, err)
		}

		result = &models.AvailabilityResponse{
			TimeSlotID:        slot.ID,
			Date:              slot.SlotDate.Format(domain.DateFormat),
			StartTime:         slot.StartTime.String(),
			EndTime:           slot.EndTime.String(),
			AvailableCapacity: available,
			IsActive:          slot.IsActive,
		}
		return nil
	})

	if err != nil {
		return nil, err
	}

	s.logger.Info("CheckAvailability: slot=%d available=%d", timeSlotID, result.AvailableCapacity)
	return result, nil
}

// ListSlots возвращает слоты на дату с доступной ёмкостью
func (s *Service) ListSlots(ctx context.Context, filter domain.SlotListFilter) (*models.SlotListResponse, error) {
	items, err := s.slotRepo.ListByDate(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("%w: ListSlots - repository error: %v", ErrInternal, err)
	}

	return models.FromDomainSlotAvailabilityList(items), nil
}

// ListSessionHolds возвращает активные холды сессии
func (s *Service) ListSessionHolds(ctx context.Context, sessionID string) (*models.HoldListResponse, error) {
	holds, err := s.holdRepo.FindActiveBySession(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("%w: ListSessionHolds - repository error: %v", ErrInternal, err)
	}

	return models.FromDomainHoldList(holds), nil
}

// ReleaseHold освобождает холд по инициативе сессии или таймауту оплаты
// Идемпотентен: повторное освобождение, освобождение конвертированного или
// уже реклеймленного sweeper'ом холда - no-op с успешным результатом,
// потому что клиентская отмена и sweeper могут гоняться друг с другом
func (s *Service) ReleaseHold(ctx context.Context, holdID int64, sessionID string) error {
	return s.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		h, err := s.holdRepo.GetByID(txCtx, holdID)
		if err != nil {
			if errors.Is(err, holdRepo.ErrHoldNotFound) {
				return ErrHoldNotFound
			}
			return fmt.Errorf("%w: ReleaseHold - get hold: %v", ErrInternal, err)
		}

		// Чужой холд нельзя трогать, но и раскрывать его существование не нужно
		if sessionID != "" && h.SessionID != sessionID {
			return ErrHoldNotFound
		}

		if !h.CanRelease() {
			s.logger.Info("ReleaseHold: hold=%d already in status=%s, no-op", holdID, h.Status)
			return nil
		}

		if err := s.holdRepo.MarkReleased(txCtx, holdID); err != nil {
			if errors.Is(err, holdRepo.ErrInvalidHoldState) {
				// Проигранная гонка со sweeper'ом - считаем успехом
				s.logger.Info("ReleaseHold: hold=%d lost race to concurrent transition, no-op", holdID)
				return nil
			}
			return fmt.Errorf("%w: ReleaseHold - mark released: %v", ErrInternal, err)
		}

		s.logger.Info("ReleaseHold: hold=%d released, %d units returned to slot=%d",
			holdID, h.Quantity, h.TimeSlotID)
		return nil
	})
}

// ConvertHold переводит холд в состояние конвертации перед финализацией
// Возвращает токен, который предъявляется финализатору. Пока холд в
// converting, sweeper его не реклеймит - финализация защищена от гонки
func (s *Service) ConvertHold(ctx context.Context, holdID int64, sessionID string) (*models.ConversionResponse, error) {
	var result *models.ConversionResponse

	err := s.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		now := s.timeProvider.Now()

		h, err := s.holdRepo.GetByID(txCtx, holdID)
		if err != nil {
			if errors.Is(err, holdRepo.ErrHoldNotFound) {
				return ErrHoldNotFound
			}
			return fmt.Errorf("%w: ConvertHold - get hold: %v", ErrInternal, err)
		}

		if sessionID != "" && h.SessionID != sessionID {
			return ErrHoldNotFound
		}

		// Повторный вызов для холда в конвертации возвращает прежний токен
		if h.Status == domain.HoldStatusConverting && h.ConversionToken != nil {
			result = &models.ConversionResponse{HoldID: h.ID, ConversionToken: *h.ConversionToken}
			return nil
		}

		if h.Status != domain.HoldStatusActive {
			return ErrInvalidHoldState
		}

		if h.IsExpired(now) {
			return ErrHoldExpired
		}

		token := uuid.NewString()
		if err := s.holdRepo.MarkConverting(txCtx, holdID, token, now); err != nil {
			if errors.Is(err, holdRepo.ErrInvalidHoldState) {
				// Между чтением и переходом холд успел просрочиться
				return ErrHoldExpired
			}
			return fmt.Errorf("%w: ConvertHold - mark converting: %v", ErrInternal, err)
		}

		result = &models.ConversionResponse{HoldID: h.ID, ConversionToken: token}
		return nil
	})

	if err != nil {
		return nil, err
	}

	s.logger.Info("ConvertHold: hold=%d entered conversion", holdID)
	return result, nil
}

// DeactivateSlot снимает слот с продажи и освобождает его активные холды,
// чтобы посетители не держали места закрытого сеанса
// Возвращает количество освобождённых холдов
func (s *Service) DeactivateSlot(ctx context.Context, timeSlotID int64) (int, error) {
	released := 0

	err := s.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		if err := s.slotRepo.Deactivate(txCtx, timeSlotID); err != nil {
			if errors.Is(err, slotRepo.ErrSlotNotFound) {
				return ErrSlotNotFound
			}
			return fmt.Errorf("%w: DeactivateSlot - deactivate slot: %v", ErrInternal, err)
		}

		holds, err := s.holdRepo.FindActiveByTimeSlot(txCtx, timeSlotID)
		if err != nil {
			return fmt.Errorf("%w: DeactivateSlot - find active holds: %v", ErrInternal, err)
		}

		for _, h := range holds {
			if err := s.holdRepo.MarkReleased(txCtx, h.ID); err != nil {
				if errors.Is(err, holdRepo.ErrInvalidHoldState) {
					// Холд успел перейти в другой статус внутри той же выборки - пропускаем
					continue
				}
				return fmt.Errorf("%w: DeactivateSlot - release hold %d: %v", ErrInternal, h.ID, err)
			}
			released++
		}

		return nil
	})

	if err != nil {
		return 0, err
	}

	s.logger.Info("DeactivateSlot: slot=%d deactivated, %d holds released", timeSlotID, released)
	return released, nil
}

// ExpireHold реклеймит один просроченный холд (путь sweeper'а)
// Условный переход в репозитории делает операцию идемпотентной: если холд
// успели освободить, конвертировать или обработать другим экземпляром
// sweeper'а - это no-op
func (s *Service) ExpireHold(ctx context.Context, holdID int64) error {
	return s.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		now := s.timeProvider.Now()

		err := s.holdRepo.MarkExpired(txCtx, holdID, now, s.sweepGrace)
		if err != nil {
			if errors.Is(err, holdRepo.ErrInvalidHoldState) {
				s.logger.Info("ExpireHold: hold=%d no longer reclaimable, no-op", holdID)
				return nil
			}
			return fmt.Errorf("%w: ExpireHold - mark expired: %v", ErrInternal, err)
		}

		s.logger.Info("ExpireHold: hold=%d expired and capacity reclaimed", holdID)
		return nil
	})
}
