package bookings

import (
	"context"
	"errors"
	"fmt"

	bookingRepo "github.com/m04kA/MTB-ReservationService/internal/infra/storage/booking"
	slotRepo "github.com/m04kA/MTB-ReservationService/internal/infra/storage/timeslot"
	"github.com/m04kA/MTB-ReservationService/internal/service/bookings/models"
)

// Service сервис для работы с подтверждёнными бронями
type Service struct {
	bookingRepo BookingRepository
	slotRepo    TimeSlotRepository
	txManager   TransactionManager
	logger      Logger
}

// NewService создает новый экземпляр сервиса броней
func NewService(
	bookingRepo BookingRepository,
	slotRepo TimeSlotRepository,
	txManager TransactionManager,
	logger Logger,
) *Service {
	return &Service{
		bookingRepo: bookingRepo,
		slotRepo:    slotRepo,
		txManager:   txManager,
		logger:      logger,
	}
}

// GetByID получает бронь по ID с проверкой принадлежности сессии
func (s *Service) GetByID(ctx context.Context, id int64, sessionID string) (*models.BookingResponse, error) {
	b, err := s.bookingRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, bookingRepo.ErrBookingNotFound) {
			return nil, ErrBookingNotFound
		}
		return nil, fmt.Errorf("%w: GetByID - repository error: %v", ErrInternal, err)
	}

	if sessionID != "" && b.SessionID != sessionID {
		return nil, ErrBookingNotFound
	}

	return models.FromDomainBooking(b), nil
}

// GetByReference получает бронь по человекочитаемому коду
// Код выдаётся только владельцу, поэтому сверки с сессией нет -
// это путь для проверки брони на входе по распечатке или письму
func (s *Service) GetByReference(ctx context.Context, reference string) (*models.BookingResponse, error) {
	b, err := s.bookingRepo.GetByReference(ctx, reference)
	if err != nil {
		if errors.Is(err, bookingRepo.ErrBookingNotFound) {
			return nil, ErrBookingNotFound
		}
		return nil, fmt.Errorf("%w: GetByReference - repository error: %v", ErrInternal, err)
	}

	return models.FromDomainBooking(b), nil
}

// ListBySession получает все брони сессии
func (s *Service) ListBySession(ctx context.Context, sessionID string) (*models.BookingListResponse, error) {
	items, err := s.bookingRepo.ListBySession(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("%w: ListBySession - repository error: %v", ErrInternal, err)
	}

	return models.FromDomainBookingList(items), nil
}

// Cancel отменяет бронь и возвращает её билеты в продажу
// Отмена и декремент подтверждённой ёмкости выполняются в одной транзакции,
// чтобы слот не остался с фантомными подтверждёнными билетами
func (s *Service) Cancel(ctx context.Context, id int64, sessionID string, reason string) error {
	err := s.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		b, err := s.bookingRepo.GetByID(txCtx, id)
		if err != nil {
			if errors.Is(err, bookingRepo.ErrBookingNotFound) {
				return ErrBookingNotFound
			}
			return fmt.Errorf("%w: Cancel - get booking: %v", ErrInternal, err)
		}

		if sessionID != "" && b.SessionID != sessionID {
			return ErrBookingNotFound
		}

		if !b.CanBeCancelled() {
			return ErrCannotCancel
		}

		if err := s.bookingRepo.Cancel(txCtx, id, reason); err != nil {
			if errors.Is(err, bookingRepo.ErrCannotCancel) {
				return ErrCannotCancel
			}
			return fmt.Errorf("%w: Cancel - cancel booking: %v", ErrInternal, err)
		}

		if err := s.slotRepo.DecrementConfirmed(txCtx, b.TimeSlotID, b.Quantity); err != nil {
			if errors.Is(err, slotRepo.ErrSlotNotFound) || errors.Is(err, slotRepo.ErrInvalidQuantity) {
				// Слот в несогласованном состоянии - откатываем отмену целиком
				return fmt.Errorf("%w: Cancel - decrement confirmed for slot=%d: %v",
					ErrInternal, b.TimeSlotID, err)
			}
			return fmt.Errorf("%w: Cancel - decrement confirmed: %v", ErrInternal, err)
		}

		s.logger.Info("Cancel: booking=%d cancelled, %d units returned to slot=%d",
			id, b.Quantity, b.TimeSlotID)
		return nil
	})

	return err
}
