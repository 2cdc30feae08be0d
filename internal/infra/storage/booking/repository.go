package booking

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Masterminds/squirrel"

	"github.com/m04kA/MTB-ReservationService/internal/domain"
	"github.com/m04kA/MTB-ReservationService/pkg/dbmetrics"
	"github.com/m04kA/MTB-ReservationService/pkg/psqlbuilder"
)

var bookingColumns = []string{
	"id",
	"reference",
	"time_slot_id",
	"hold_id",
	"session_id",
	"visitor_name",
	"visitor_email",
	"visitor_phone",
	"quantity",
	"total_amount",
	"currency",
	"payment_status",
	"status",
	"cancellation_reason",
	"cancelled_at",
	"created_at",
	"updated_at",
}

// Repository репозиторий для работы с бронями
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория броней
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// Create создает новую бронь
// Вызывается только внутри транзакции финализации - вместе с инкрементом
// подтверждённой ёмкости слота и переводом холда в converted
func (r *Repository) Create(ctx context.Context, b *domain.Booking) (*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert("bookings").
		Columns(
			"reference",
			"time_slot_id",
			"hold_id",
			"session_id",
			"visitor_name",
			"visitor_email",
			"visitor_phone",
			"quantity",
			"total_amount",
			"currency",
			"payment_status",
			"status",
		).
		Values(
			b.Reference,
			b.TimeSlotID,
			b.HoldID,
			b.SessionID,
			b.VisitorName,
			b.VisitorEmail,
			b.VisitorPhone,
			b.Quantity,
			b.TotalAmount,
			b.Currency,
			b.PaymentStatus,
			b.Status,
		).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: Create - build insert query: %v", ErrBuildQuery, err)
	}

	var createdAt, updatedAt sql.NullTime
	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&b.ID,
		&createdAt,
		&updatedAt,
	)

	if err != nil {
		return nil, fmt.Errorf("%w: Create - execute insert: %v", ErrExecQuery, err)
	}

	b.CreatedAt = createdAt.Time
	b.UpdatedAt = updatedAt.Time

	return b, nil
}

// GetByID получает бронь по ID
// Внутри транзакции строка блокируется (FOR UPDATE) - для отмены брони
func (r *Repository) GetByID(ctx context.Context, id int64) (*domain.Booking, error) {
	selectBuilder := psqlbuilder.Select(bookingColumns...).
		From("bookings").
		Where(squirrel.Eq{"id": id})

	if dbmetrics.IsInTransaction(ctx) {
		selectBuilder = selectBuilder.Suffix("FOR UPDATE")
	}

	return r.queryBooking(ctx, selectBuilder, "GetByID")
}

// GetByReference получает бронь по человекочитаемому коду
func (r *Repository) GetByReference(ctx context.Context, reference string) (*domain.Booking, error) {
	selectBuilder := psqlbuilder.Select(bookingColumns...).
		From("bookings").
		Where(squirrel.Eq{"reference": reference})

	return r.queryBooking(ctx, selectBuilder, "GetByReference")
}

// ListBySession получает брони сессии, сначала свежие
func (r *Repository) ListBySession(ctx context.Context, sessionID string) ([]*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(bookingColumns...).
		From("bookings").
		Where(squirrel.Eq{"session_id": sessionID}).
		OrderBy("created_at DESC").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: ListBySession - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: ListBySession - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	return r.scanBookings(rows)
}

// Cancel отменяет бронь с указанием причины
// Условие по статусу гарантирует, что отменить можно только отменяемую бронь,
// и что параллельная отмена не выполнится дважды
func (r *Repository) Cancel(ctx context.Context, id int64, reason string) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("bookings").
		Set("status", domain.StatusCancelled).
		Set("cancellation_reason", reason).
		Set("cancelled_at", squirrel.Expr("NOW()")).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id}).
		Where(squirrel.Eq{"status": []domain.BookingStatus{
			domain.StatusPending,
			domain.StatusConfirmed,
		}}).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: Cancel - build update query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: Cancel - execute update: %v", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: Cancel - get rows affected: %v", ErrExecQuery, err)
	}

	if rowsAffected == 0 {
		return ErrCannotCancel
	}

	return nil
}

// queryBooking выполняет SELECT одной брони
func (r *Repository) queryBooking(ctx context.Context, selectBuilder squirrel.SelectBuilder, method string) (*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: %s - build select query: %v", ErrBuildQuery, method, err)
	}

	var b domain.Booking
	var createdAt, updatedAt sql.NullTime

	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&b.ID,
		&b.Reference,
		&b.TimeSlotID,
		&b.HoldID,
		&b.SessionID,
		&b.VisitorName,
		&b.VisitorEmail,
		&b.VisitorPhone,
		&b.Quantity,
		&b.TotalAmount,
		&b.Currency,
		&b.PaymentStatus,
		&b.Status,
		&b.CancellationReason,
		&b.CancelledAt,
		&createdAt,
		&updatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, ErrBookingNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s - scan booking: %v", ErrScanRow, method, err)
	}

	b.CreatedAt = createdAt.Time
	b.UpdatedAt = updatedAt.Time

	return &b, nil
}

// scanBookings сканирует результаты запроса в слайс броней
func (r *Repository) scanBookings(rows *sql.Rows) ([]*domain.Booking, error) {
	bookings := make([]*domain.Booking, 0)

	for rows.Next() {
		var b domain.Booking
		var createdAt, updatedAt sql.NullTime

		err := rows.Scan(
			&b.ID,
			&b.Reference,
			&b.TimeSlotID,
			&b.HoldID,
			&b.SessionID,
			&b.VisitorName,
			&b.VisitorEmail,
			&b.VisitorPhone,
			&b.Quantity,
			&b.TotalAmount,
			&b.Currency,
			&b.PaymentStatus,
			&b.Status,
			&b.CancellationReason,
			&b.CancelledAt,
			&createdAt,
			&updatedAt,
		)

		if err != nil {
			return nil, fmt.Errorf("%w: scanBookings - scan row: %v", ErrScanRow, err)
		}

		b.CreatedAt = createdAt.Time
		b.UpdatedAt = updatedAt.Time

		bookings = append(bookings, &b)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: scanBookings - rows error: %v", ErrScanRow, err)
	}

	return bookings, nil
}
