package hold

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/lib/pq"

	"github.com/m04kA/MTB-ReservationService/internal/domain"
	"github.com/m04kA/MTB-ReservationService/pkg/dbmetrics"
	"github.com/m04kA/MTB-ReservationService/pkg/psqlbuilder"
)

// pgUniqueViolation код ошибки postgres при нарушении уникального индекса
const pgUniqueViolation = "23505"

// Repository репозиторий леджера холдов
// Все переходы статусов - условные UPDATE'ы: проигравший гонку получает
// ErrInvalidHoldState, состояние при этом не меняется
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория холдов
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// Create создает новый активный холд
// Частичный уникальный индекс (session_id, time_slot_id) WHERE status='active'
// защищает от двойной отправки - в этом случае ErrDuplicateHold
func (r *Repository) Create(ctx context.Context, h *domain.Hold) (*domain.Hold, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert("holds").
		Columns(
			"session_id",
			"time_slot_id",
			"quantity",
			"status",
			"expires_at",
		).
		Values(
			h.SessionID,
			h.TimeSlotID,
			h.Quantity,
			h.Status,
			h.ExpiresAt,
		).
		Suffix("RETURNING id, created_at").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: Create - build insert query: %v", ErrBuildQuery, err)
	}

	var createdAt sql.NullTime
	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&h.ID,
		&createdAt,
	)

	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && string(pqErr.Code) == pgUniqueViolation {
			return nil, ErrDuplicateHold
		}
		return nil, fmt.Errorf("%w: Create - execute insert: %v", ErrExecQuery, err)
	}

	h.CreatedAt = createdAt.Time

	return h, nil
}

// GetByID получает холд по ID
// Внутри транзакции строка блокируется (FOR UPDATE)
func (r *Repository) GetByID(ctx context.Context, id int64) (*domain.Hold, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := r.selectHolds().
		Where(squirrel.Eq{"id": id})

	if dbmetrics.IsInTransaction(ctx) {
		selectBuilder = selectBuilder.Suffix("FOR UPDATE")
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - build select query: %v", ErrBuildQuery, err)
	}

	var h domain.Hold
	var createdAt sql.NullTime

	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&h.ID,
		&h.SessionID,
		&h.TimeSlotID,
		&h.Quantity,
		&h.Status,
		&h.ConversionToken,
		&createdAt,
		&h.ExpiresAt,
	)

	if err == sql.ErrNoRows {
		return nil, ErrHoldNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - scan hold: %v", ErrScanRow, err)
	}

	h.CreatedAt = createdAt.Time

	return &h, nil
}

// FindActiveByTimeSlot получает холды слота, занимающие его ёмкость
// (активные и находящиеся в конвертации)
func (r *Repository) FindActiveByTimeSlot(ctx context.Context, timeSlotID int64) ([]*domain.Hold, error) {
	selectBuilder := r.selectHolds().
		Where(squirrel.Eq{"time_slot_id": timeSlotID}).
		Where(squirrel.Eq{"status": domain.ActiveHoldStatuses}).
		OrderBy("created_at ASC")

	return r.queryHolds(ctx, selectBuilder, "FindActiveByTimeSlot")
}

// FindActiveBySession получает занимающие ёмкость холды сессии (корзина покупателя)
func (r *Repository) FindActiveBySession(ctx context.Context, sessionID string) ([]*domain.Hold, error) {
	selectBuilder := r.selectHolds().
		Where(squirrel.Eq{"session_id": sessionID}).
		Where(squirrel.Eq{"status": domain.ActiveHoldStatuses}).
		OrderBy("created_at ASC")

	return r.queryHolds(ctx, selectBuilder, "FindActiveBySession")
}

// SumActiveQuantity возвращает суммарное количество мест, занятых холдами слота:
// активные непросроченные плюс находящиеся в конвертации
func (r *Repository) SumActiveQuantity(ctx context.Context, timeSlotID int64, now time.Time) (int, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select("COALESCE(SUM(quantity), 0)").
		From("holds").
		Where(squirrel.Eq{"time_slot_id": timeSlotID}).
		Where(squirrel.Or{
			squirrel.And{
				squirrel.Eq{"status": domain.HoldStatusActive},
				squirrel.Gt{"expires_at": now},
			},
			squirrel.Eq{"status": domain.HoldStatusConverting},
		}).
		ToSql()

	if err != nil {
		return 0, fmt.Errorf("%w: SumActiveQuantity - build select query: %v", ErrBuildQuery, err)
	}

	var sum int
	if err := executor.QueryRowContext(ctx, query, args...).Scan(&sum); err != nil {
		return 0, fmt.Errorf("%w: SumActiveQuantity - scan: %v", ErrScanRow, err)
	}

	return sum, nil
}

// FindExpiredIDs возвращает ID холдов, подлежащих реклейму sweeper'ом:
// активные с истёкшим TTL и зависшие converting-холды (истёкшие больше
// чем на grace - финализация по ним явно не завершится)
func (r *Repository) FindExpiredIDs(ctx context.Context, now time.Time, grace time.Duration, limit int) ([]int64, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select("id").
		From("holds").
		Where(squirrel.Or{
			squirrel.And{
				squirrel.Eq{"status": domain.HoldStatusActive},
				squirrel.LtOrEq{"expires_at": now},
			},
			squirrel.And{
				squirrel.Eq{"status": domain.HoldStatusConverting},
				squirrel.LtOrEq{"expires_at": now.Add(-grace)},
			},
		}).
		OrderBy("expires_at ASC").
		Limit(uint64(limit)).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: FindExpiredIDs - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: FindExpiredIDs - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	ids := make([]int64, 0)
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("%w: FindExpiredIDs - scan id: %v", ErrScanRow, err)
		}
		ids = append(ids, id)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: FindExpiredIDs - rows error: %v", ErrScanRow, err)
	}

	return ids, nil
}

// MarkConverting переводит холд active -> converting и проставляет токен конвертации
// Переход возможен только для непросроченного активного холда
func (r *Repository) MarkConverting(ctx context.Context, id int64, token string, now time.Time) error {
	updateBuilder := psqlbuilder.Update("holds").
		Set("status", domain.HoldStatusConverting).
		Set("conversion_token", token).
		Where(squirrel.Eq{"id": id}).
		Where(squirrel.Eq{"status": domain.HoldStatusActive}).
		Where(squirrel.Gt{"expires_at": now})

	return r.execTransition(ctx, updateBuilder, "MarkConverting")
}

// MarkConverted переводит холд converting -> converted (финализация успешна)
func (r *Repository) MarkConverted(ctx context.Context, id int64) error {
	updateBuilder := psqlbuilder.Update("holds").
		Set("status", domain.HoldStatusConverted).
		Where(squirrel.Eq{"id": id}).
		Where(squirrel.Eq{"status": []domain.HoldStatus{
			domain.HoldStatusActive,
			domain.HoldStatusConverting,
		}})

	return r.execTransition(ctx, updateBuilder, "MarkConverted")
}

// MarkReleased переводит холд active -> released (отмена сессией или таймаут оплаты)
func (r *Repository) MarkReleased(ctx context.Context, id int64) error {
	updateBuilder := psqlbuilder.Update("holds").
		Set("status", domain.HoldStatusReleased).
		Where(squirrel.Eq{"id": id}).
		Where(squirrel.Eq{"status": domain.HoldStatusActive})

	return r.execTransition(ctx, updateBuilder, "MarkReleased")
}

// MarkExpired переводит холд в expired (реклейм sweeper'ом)
// Условие повторяет FindExpiredIDs, поэтому конкурирующие экземпляры
// sweeper'а и параллельный release не могут обработать холд дважды
func (r *Repository) MarkExpired(ctx context.Context, id int64, now time.Time, grace time.Duration) error {
	updateBuilder := psqlbuilder.Update("holds").
		Set("status", domain.HoldStatusExpired).
		Where(squirrel.Eq{"id": id}).
		Where(squirrel.Or{
			squirrel.And{
				squirrel.Eq{"status": domain.HoldStatusActive},
				squirrel.LtOrEq{"expires_at": now},
			},
			squirrel.And{
				squirrel.Eq{"status": domain.HoldStatusConverting},
				squirrel.LtOrEq{"expires_at": now.Add(-grace)},
			},
		})

	return r.execTransition(ctx, updateBuilder, "MarkExpired")
}

// execTransition выполняет условный переход статуса
// 0 затронутых строк означает, что условие перехода не выполнено
func (r *Repository) execTransition(ctx context.Context, updateBuilder squirrel.UpdateBuilder, method string) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := updateBuilder.ToSql()
	if err != nil {
		return fmt.Errorf("%w: %s - build update query: %v", ErrBuildQuery, method, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: %s - execute update: %v", ErrExecQuery, method, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: %s - get rows affected: %v", ErrExecQuery, method, err)
	}

	if rowsAffected == 0 {
		return ErrInvalidHoldState
	}

	return nil
}

// selectHolds базовый SELECT всех колонок холда
func (r *Repository) selectHolds() squirrel.SelectBuilder {
	return psqlbuilder.Select(
		"id",
		"session_id",
		"time_slot_id",
		"quantity",
		"status",
		"conversion_token",
		"created_at",
		"expires_at",
	).From("holds")
}

// queryHolds выполняет SELECT и сканирует список холдов
func (r *Repository) queryHolds(ctx context.Context, selectBuilder squirrel.SelectBuilder, method string) ([]*domain.Hold, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: %s - build select query: %v", ErrBuildQuery, method, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: %s - execute query: %v", ErrExecQuery, method, err)
	}
	defer rows.Close()

	holds := make([]*domain.Hold, 0)
	for rows.Next() {
		var h domain.Hold
		var createdAt sql.NullTime

		err := rows.Scan(
			&h.ID,
			&h.SessionID,
			&h.TimeSlotID,
			&h.Quantity,
			&h.Status,
			&h.ConversionToken,
			&createdAt,
			&h.ExpiresAt,
		)
		if err != nil {
			return nil, fmt.Errorf("%w: %s - scan row: %v", ErrScanRow, method, err)
		}

		h.CreatedAt = createdAt.Time
		holds = append(holds, &h)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %s - rows error: %v", ErrScanRow, method, err)
	}

	return holds, nil
}
