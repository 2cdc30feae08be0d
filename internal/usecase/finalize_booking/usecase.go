package finalize_booking

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/m04kA/MTB-ReservationService/internal/domain"
	holdRepo "github.com/m04kA/MTB-ReservationService/internal/infra/storage/hold"
	slotRepo "github.com/m04kA/MTB-ReservationService/internal/infra/storage/timeslot"
	"github.com/m04kA/MTB-ReservationService/internal/integrations/notifier"
	"github.com/m04kA/MTB-ReservationService/pkg/ptr"
)

// UseCase use case финализации брони из холда
type UseCase struct {
	holdRepo     HoldRepository
	slotRepo     TimeSlotRepository
	bookingRepo  BookingRepository
	publisher    NotificationPublisher
	txManager    TransactionManager
	timeProvider TimeProvider
	logger       Logger
}

// NewUseCase создает новый экземпляр use case
// publisher может быть nil - тогда события подтверждения не публикуются
func NewUseCase(
	holdRepo HoldRepository,
	slotRepo TimeSlotRepository,
	bookingRepo BookingRepository,
	publisher NotificationPublisher,
	txManager TransactionManager,
	logger Logger,
) *UseCase {
	return &UseCase{
		holdRepo:     holdRepo,
		slotRepo:     slotRepo,
		bookingRepo:  bookingRepo,
		publisher:    publisher,
		txManager:    txManager,
		timeProvider: &RealTimeProvider{},
		logger:       logger,
	}
}

// Execute выполняет use case финализации брони
// Создание брони, инкремент подтверждённой ёмкости и перевод холда в
// converted выполняются в одной сериализуемой транзакции - либо всё,
// либо ничего. Слот никогда не остаётся с бронью без учтённой ёмкости
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("FinalizeBooking: hold=%d, session=%s", req.HoldID, req.SessionID)

	// 1. Валидация входных данных
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("FinalizeBooking: validation failed: %v", err)
		return nil, err
	}

	// 2. Оплата должна быть подтверждена до любых операций с БД
	if !req.Payment.Confirmed {
		uc.logger.Warn("FinalizeBooking: payment not confirmed for hold=%d", req.HoldID)
		return nil, ErrPaymentNotConfirmed
	}

	// 3. Получаем текущее время
	now := uc.timeProvider.Now()

	// Переменная для хранения результата
	var result *domain.Booking

	// 4. Выполняем операции с БД в сериализуемой транзакции
	err := uc.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		// 4.1. Получаем холд с блокировкой (FOR UPDATE)
		hold, err := uc.holdRepo.GetByID(txCtx, req.HoldID)
		if err != nil {
			if errors.Is(err, holdRepo.ErrHoldNotFound) {
				uc.logger.Warn("FinalizeBooking: hold id=%d not found", req.HoldID)
				return ErrHoldNotFound
			}
			uc.logger.Error("FinalizeBooking: failed to get hold id=%d: %v", req.HoldID, err)
			return fmt.Errorf("%w: failed to get hold: %v", ErrInternal, err)
		}

		// 4.2. Чужой холд финализировать нельзя
		if hold.SessionID != req.SessionID {
			uc.logger.Warn("FinalizeBooking: hold id=%d belongs to another session", req.HoldID)
			return ErrHoldNotFound
		}

		// 4.3. Проверяем состояние холда
		// converting допустим: это ретрай финализации после обрыва
		switch hold.Status {
		case domain.HoldStatusConverted:
			return ErrHoldAlreadyConverted
		case domain.HoldStatusReleased, domain.HoldStatusExpired:
			return ErrInvalidHoldState
		}

		// 4.4. Предъявленный токен конвертации обязан совпадать с выданным
		if req.ConversionToken != "" {
			if hold.ConversionToken == nil || *hold.ConversionToken != req.ConversionToken {
				uc.logger.Warn("FinalizeBooking: conversion token mismatch for hold=%d", req.HoldID)
				return ErrInvalidHoldState
			}
		}

		if !hold.CanConvert(now) {
			uc.logger.Warn("FinalizeBooking: hold id=%d expired at %s", req.HoldID, hold.ExpiresAt)
			return ErrHoldExpired
		}

		// 4.5. Создаем бронь
		booking := &domain.Booking{
			Reference:     generateReference(),
			TimeSlotID:    hold.TimeSlotID,
			HoldID:        ptr.Ptr(hold.ID),
			SessionID:     req.SessionID,
			VisitorName:   req.Visitor.Name,
			VisitorEmail:  req.Visitor.Email,
			VisitorPhone:  req.Visitor.Phone,
			Quantity:      hold.Quantity,
			TotalAmount:   req.Payment.Amount,
			Currency:      req.Payment.Currency,
			PaymentStatus: paymentStatus(req.Payment),
			Status:        domain.StatusConfirmed,
		}

		created, err := uc.bookingRepo.Create(txCtx, booking)
		if err != nil {
			uc.logger.Error("FinalizeBooking: failed to create booking: %v", err)
			return fmt.Errorf("%w: failed to create booking: %v", ErrInternal, err)
		}

		// 4.6. Переносим количество холда в подтверждённую ёмкость
		// Условие в запросе повторно проверяет инвариант на стороне БД
		if err := uc.slotRepo.IncrementConfirmed(txCtx, hold.TimeSlotID, hold.Quantity); err != nil {
			if errors.Is(err, slotRepo.ErrCapacityExceeded) {
				// Холд учитывался в доступной ёмкости, его конвертация не может
				// её превысить. Сюда попадаем только при повреждении данных
				uc.logger.Error("FinalizeBooking: capacity invariant violated for slot=%d, hold=%d",
					hold.TimeSlotID, hold.ID)
				return ErrCapacityInvariant
			}
			uc.logger.Error("FinalizeBooking: failed to increment confirmed: %v", err)
			return fmt.Errorf("%w: failed to increment confirmed: %v", ErrInternal, err)
		}

		// 4.7. Переводим холд в converted - его количество больше не
		// считается среди активных холдов
		if err := uc.holdRepo.MarkConverted(txCtx, hold.ID); err != nil {
			uc.logger.Error("FinalizeBooking: failed to mark hold converted: %v", err)
			return fmt.Errorf("%w: failed to mark hold converted: %v", ErrInternal, err)
		}

		result = created
		return nil
	})

	if err != nil {
		return nil, err
	}

	uc.logger.Info("FinalizeBooking: successfully created booking id=%d, reference=%s",
		result.ID, result.Reference)

	// 5. Публикуем событие подтверждения после коммита
	// Ошибка публикации не откатывает бронь
	if uc.publisher != nil {
		event := &notifier.BookingConfirmedEvent{
			BookingID:    result.ID,
			Reference:    result.Reference,
			TimeSlotID:   result.TimeSlotID,
			SessionID:    result.SessionID,
			VisitorName:  result.VisitorName,
			VisitorEmail: result.VisitorEmail,
			Quantity:     result.Quantity,
			TotalAmount:  result.TotalAmount,
			Currency:     result.Currency,
			ConfirmedAt:  result.CreatedAt,
		}
		if err := uc.publisher.PublishBookingConfirmed(ctx, event); err != nil {
			uc.logger.Warn("FinalizeBooking: failed to publish confirmation for booking=%d: %v",
				result.ID, err)
		}
	}

	// Конвертируем в response
	return &Response{
		BookingID:     result.ID,
		Reference:     result.Reference,
		TimeSlotID:    result.TimeSlotID,
		Quantity:      result.Quantity,
		TotalAmount:   result.TotalAmount,
		Currency:      result.Currency,
		PaymentStatus: string(result.PaymentStatus),
		Status:        string(result.Status),
		CreatedAt:     result.CreatedAt,
	}, nil
}

// generateReference генерирует человекочитаемый код брони вида MTB-3F9A21C4
func generateReference() string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))[:8]
	return fmt.Sprintf("%s-%s", domain.BookingReferencePrefix, suffix)
}

// paymentStatus определяет статус оплаты по сумме
// Бесплатные сеансы проходят тот же поток с нулевой суммой
func paymentStatus(p Payment) domain.PaymentStatus {
	if p.Amount == 0 {
		return domain.PaymentStatusFree
	}
	return domain.PaymentStatusPaid
}
