package snapshot

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"

	"github.com/m04kA/SMC-AvailabilityService/internal/domain"
	"github.com/m04kA/SMC-AvailabilityService/pkg/psqlbuilder"
)

const tableName = "availability_snapshots"

// Repository хранит последний успешный ответ EMS за каждую дату.
// Это не состояние бронирований, а резервная копия кэша на случай перезапуска
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория снимков
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// Save создает или заменяет снимок за дату
func (r *Repository) Save(ctx context.Context, day *domain.DayAvailability) error {
	query, args, err := buildUpsert(day)
	if err != nil {
		return err
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("%w: Save - execute upsert: %v", ErrExecQuery, err)
	}

	return nil
}

// Load возвращает снимок за дату. Если снимка нет - (nil, nil):
// для кэша отсутствие снимка не ошибка
func (r *Repository) Load(ctx context.Context, date time.Time) (*domain.DayAvailability, error) {
	day, err := r.Get(ctx, date)
	if errors.Is(err, ErrSnapshotNotFound) {
		return nil, nil
	}
	return day, err
}

// Get возвращает снимок за дату или ErrSnapshotNotFound
func (r *Repository) Get(ctx context.Context, date time.Time) (*domain.DayAvailability, error) {
	query, args, err := psqlbuilder.Select("payload", "fetched_at").
		From(tableName).
		Where(squirrel.Eq{"date": domain.FormatDate(date)}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: Get - build select query: %v", ErrBuildQuery, err)
	}

	var (
		raw       []byte
		fetchedAt time.Time
	)
	err = r.db.QueryRowContext(ctx, query, args...).Scan(&raw, &fetchedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSnapshotNotFound
		}
		return nil, fmt.Errorf("%w: Get - scan: %v", ErrScanRow, err)
	}

	var p payload
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, fmt.Errorf("%w: Get - decode: %v", ErrPayload, err)
	}

	return &domain.DayAvailability{
		Date:         domain.DateOf(date),
		Rooms:        p.toDomainRooms(),
		FetchedAt:    fetchedAt,
		SourceStatus: domain.SourceFresh,
	}, nil
}

// DeleteOlderThan удаляет снимки за даты раньше before
func (r *Repository) DeleteOlderThan(ctx context.Context, before time.Time) (int64, error) {
	query, args, err := psqlbuilder.Delete(tableName).
		Where(squirrel.Lt{"date": domain.FormatDate(before)}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("%w: DeleteOlderThan - build delete query: %v", ErrBuildQuery, err)
	}

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("%w: DeleteOlderThan - execute delete: %v", ErrExecQuery, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%w: DeleteOlderThan - rows affected: %v", ErrExecQuery, err)
	}
	return affected, nil
}

func buildUpsert(day *domain.DayAvailability) (string, []interface{}, error) {
	raw, err := json.Marshal(toPayload(day))
	if err != nil {
		return "", nil, fmt.Errorf("%w: Save - encode: %v", ErrPayload, err)
	}

	query, args, err := psqlbuilder.Insert(tableName).
		Columns("date", "payload", "fetched_at").
		Values(domain.FormatDate(day.Date), raw, day.FetchedAt).
		Suffix("ON CONFLICT (date) DO UPDATE SET payload = EXCLUDED.payload, " +
			"fetched_at = EXCLUDED.fetched_at, updated_at = NOW()").
		ToSql()
	if err != nil {
		return "", nil, fmt.Errorf("%w: Save - build upsert query: %v", ErrBuildQuery, err)
	}

	return query, args, nil
}
