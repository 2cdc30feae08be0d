package timeslot

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Masterminds/squirrel"

	"github.com/m04kA/MTB-ReservationService/internal/domain"
	"github.com/m04kA/MTB-ReservationService/pkg/dbmetrics"
	"github.com/m04kA/MTB-ReservationService/pkg/psqlbuilder"
)

// heldQuantityJoin условие учёта холдов при подсчёте доступной ёмкости:
// активные и непросроченные холды плюс холды в процессе конвертации
const heldQuantityJoin = "holds h ON h.time_slot_id = ts.id AND " +
	"((h.status = 'active' AND h.expires_at > NOW()) OR h.status = 'converting')"

// Repository репозиторий ёмкости слотов (Inventory Store)
// Единственное место, где меняется счётчик подтверждённых броней
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория слотов
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// CreateBatch создает пачку слотов (административная генерация на диапазон дат)
// Конфликтующие слоты (та же дата/время/выставка) пропускаются, поэтому
// повторный запуск генерации безопасен. Возвращает количество созданных строк.
func (r *Repository) CreateBatch(ctx context.Context, slots []*domain.TimeSlot) (int, error) {
	if len(slots) == 0 {
		return 0, nil
	}

	executor := dbmetrics.GetExecutor(ctx, r.db)

	insertBuilder := psqlbuilder.Insert("time_slots").
		Columns(
			"exhibit_id",
			"slot_date",
			"start_time",
			"end_time",
			"total_capacity",
			"confirmed_count",
			"buffer",
			"is_active",
		)

	for _, slot := range slots {
		insertBuilder = insertBuilder.Values(
			slot.ExhibitID,
			slot.SlotDate,
			slot.StartTime,
			slot.EndTime,
			slot.TotalCapacity,
			slot.ConfirmedCount,
			slot.Buffer,
			slot.IsActive,
		)
	}

	query, args, err := insertBuilder.
		Suffix("ON CONFLICT (slot_date, start_time, exhibit_key) DO NOTHING").
		ToSql()

	if err != nil {
		return 0, fmt.Errorf("%w: CreateBatch - build insert query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("%w: CreateBatch - execute insert: %v", ErrExecQuery, err)
	}

	inserted, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%w: CreateBatch - get rows affected: %v", ErrExecQuery, err)
	}

	return int(inserted), nil
}

// GetByID получает слот по ID
// Внутри транзакции строка блокируется (FOR UPDATE) - это точка сериализации
// всех операций над ёмкостью одного слота
func (r *Repository) GetByID(ctx context.Context, id int64) (*domain.TimeSlot, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(
		"id",
		"exhibit_id",
		"slot_date",
		"start_time",
		"end_time",
		"total_capacity",
		"confirmed_count",
		"buffer",
		"is_active",
		"created_at",
		"updated_at",
	).
		From("time_slots").
		Where(squirrel.Eq{"id": id})

	if dbmetrics.IsInTransaction(ctx) {
		selectBuilder = selectBuilder.Suffix("FOR UPDATE")
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - build select query: %v", ErrBuildQuery, err)
	}

	return r.scanSlot(executor.QueryRowContext(ctx, query, args...), "GetByID")
}

// GetAvailableCapacity возвращает доступную ёмкость слота:
// total_capacity - buffer - confirmed_count - сумма активных холдов
// Значение всегда читается из актуального состояния БД, без кеширования
func (r *Repository) GetAvailableCapacity(ctx context.Context, id int64) (int, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(
		"ts.total_capacity - ts.buffer - ts.confirmed_count - COALESCE(SUM(h.quantity), 0)",
	).
		From("time_slots ts").
		LeftJoin(heldQuantityJoin).
		Where(squirrel.Eq{"ts.id": id}).
		GroupBy("ts.id").
		ToSql()

	if err != nil {
		return 0, fmt.Errorf("%w: GetAvailableCapacity - build select query: %v", ErrBuildQuery, err)
	}

	var available int
	err = executor.QueryRowContext(ctx, query, args...).Scan(&available)
	if err == sql.ErrNoRows {
		return 0, ErrSlotNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("%w: GetAvailableCapacity - scan: %v", ErrScanRow, err)
	}

	return available, nil
}

// ListByDate получает слоты на дату с подсчитанной доступной ёмкостью
func (r *Repository) ListByDate(ctx context.Context, filter domain.SlotListFilter) ([]*domain.SlotAvailability, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(
		"ts.id",
		"ts.exhibit_id",
		"ts.slot_date",
		"ts.start_time",
		"ts.end_time",
		"ts.total_capacity",
		"ts.confirmed_count",
		"ts.buffer",
		"ts.is_active",
		"ts.created_at",
		"ts.updated_at",
		"ts.total_capacity - ts.buffer - ts.confirmed_count - COALESCE(SUM(h.quantity), 0) AS available",
	).
		From("time_slots ts").
		LeftJoin(heldQuantityJoin).
		Where(squirrel.Eq{"ts.slot_date": filter.Date}).
		GroupBy("ts.id").
		OrderBy("ts.start_time ASC")

	// Фильтрация по выставке, если указана
	if filter.ExhibitID != nil {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"ts.exhibit_id": *filter.ExhibitID})
	}
	if filter.OnlyActive {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"ts.is_active": true})
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: ListByDate - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: ListByDate - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	result := make([]*domain.SlotAvailability, 0)
	for rows.Next() {
		var item domain.SlotAvailability
		var createdAt, updatedAt sql.NullTime

		err := rows.Scan(
			&item.Slot.ID,
			&item.Slot.ExhibitID,
			&item.Slot.SlotDate,
			&item.Slot.StartTime,
			&item.Slot.EndTime,
			&item.Slot.TotalCapacity,
			&item.Slot.ConfirmedCount,
			&item.Slot.Buffer,
			&item.Slot.IsActive,
			&createdAt,
			&updatedAt,
			&item.AvailableCapacity,
		)
		if err != nil {
			return nil, fmt.Errorf("%w: ListByDate - scan row: %v", ErrScanRow, err)
		}

		item.Slot.CreatedAt = createdAt.Time
		item.Slot.UpdatedAt = updatedAt.Time
		result = append(result, &item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: ListByDate - rows error: %v", ErrScanRow, err)
	}

	return result, nil
}

// IncrementConfirmed увеличивает счётчик подтверждённых броней на quantity
// Условие в WHERE гарантирует, что подтверждение не выйдет за продаваемую
// ёмкость (total - buffer) даже при гонке - в этом случае ErrCapacityExceeded
func (r *Repository) IncrementConfirmed(ctx context.Context, id int64, quantity int) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("time_slots").
		Set("confirmed_count", squirrel.Expr("confirmed_count + ?", quantity)).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id}).
		Where(squirrel.Expr("confirmed_count + ? <= total_capacity - buffer", quantity)).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: IncrementConfirmed - build update query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: IncrementConfirmed - execute update: %v", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: IncrementConfirmed - get rows affected: %v", ErrExecQuery, err)
	}

	if rowsAffected == 0 {
		// Отличаем отсутствующий слот от нехватки ёмкости
		exists, err := r.exists(ctx, executor, id)
		if err != nil {
			return err
		}
		if !exists {
			return ErrSlotNotFound
		}
		return ErrCapacityExceeded
	}

	return nil
}

// DecrementConfirmed уменьшает счётчик подтверждённых броней (отмена брони)
// Условие в WHERE не даёт счётчику уйти в минус
func (r *Repository) DecrementConfirmed(ctx context.Context, id int64, quantity int) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("time_slots").
		Set("confirmed_count", squirrel.Expr("confirmed_count - ?", quantity)).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id}).
		Where(squirrel.GtOrEq{"confirmed_count": quantity}).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: DecrementConfirmed - build update query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: DecrementConfirmed - execute update: %v", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: DecrementConfirmed - get rows affected: %v", ErrExecQuery, err)
	}

	if rowsAffected == 0 {
		exists, err := r.exists(ctx, executor, id)
		if err != nil {
			return err
		}
		if !exists {
			return ErrSlotNotFound
		}
		return ErrInvalidQuantity
	}

	return nil
}

// Deactivate выключает слот из продажи (слоты не удаляются, пока на них
// ссылаются брони - только деактивируются)
func (r *Repository) Deactivate(ctx context.Context, id int64) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("time_slots").
		Set("is_active", false).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id}).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: Deactivate - build update query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: Deactivate - execute update: %v", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: Deactivate - get rows affected: %v", ErrExecQuery, err)
	}

	if rowsAffected == 0 {
		return ErrSlotNotFound
	}

	return nil
}

// exists проверяет наличие слота (для различения NotFound от нарушения условия)
func (r *Repository) exists(ctx context.Context, executor DBExecutor, id int64) (bool, error) {
	query, args, err := psqlbuilder.Select("1").
		From("time_slots").
		Where(squirrel.Eq{"id": id}).
		ToSql()

	if err != nil {
		return false, fmt.Errorf("%w: exists - build select query: %v", ErrBuildQuery, err)
	}

	var one int
	err = executor.QueryRowContext(ctx, query, args...).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("%w: exists - scan: %v", ErrScanRow, err)
	}

	return true, nil
}

// scanSlot сканирует одну строку слота
func (r *Repository) scanSlot(row *sql.Row, method string) (*domain.TimeSlot, error) {
	var slot domain.TimeSlot
	var createdAt, updatedAt sql.NullTime

	err := row.Scan(
		&slot.ID,
		&slot.ExhibitID,
		&slot.SlotDate,
		&slot.StartTime,
		&slot.EndTime,
		&slot.TotalCapacity,
		&slot.ConfirmedCount,
		&slot.Buffer,
		&slot.IsActive,
		&createdAt,
		&updatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, ErrSlotNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s - scan slot: %v", ErrScanRow, method, err)
	}

	slot.CreatedAt = createdAt.Time
	slot.UpdatedAt = updatedAt.Time

	return &slot, nil
}
