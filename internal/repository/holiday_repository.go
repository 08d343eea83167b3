package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/Freeeeeet/faculty_scheduler/internal/model"
)

type HolidayRepository interface {
	Create(ctx context.Context, holiday *model.Holiday) error
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context) ([]*model.Holiday, error)
	// ListForRange returns exact holidays inside rng and every recurring holiday.
	ListForRange(ctx context.Context, rng model.DateRange) ([]*model.Holiday, error)
}

type HolidayPostgresRepository struct {
	db Execer
}

func NewHolidayPostgresRepository(db Execer) *HolidayPostgresRepository {
	return &HolidayPostgresRepository{db: db}
}

func scanHoliday(row interface{ Scan(dest ...any) error }) (*model.Holiday, error) {
	var (
		h    model.Holiday
		date time.Time
	)
	if err := row.Scan(&h.ID, &h.Name, &date, &h.IsRecurring, &h.CreatedAt); err != nil {
		return nil, err
	}
	h.Date = model.DateOf(date)
	return &h, nil
}

func (r *HolidayPostgresRepository) Create(ctx context.Context, h *model.Holiday) error {
	query := `
		INSERT INTO holidays (name, date, is_recurring)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`

	if err := r.db.QueryRow(ctx, query, h.Name, dateValue(h.Date), h.IsRecurring).Scan(&h.ID, &h.CreatedAt); err != nil {
		return fmt.Errorf("create holiday: %w", err)
	}

	return nil
}

func (r *HolidayPostgresRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.db.Exec(ctx, `DELETE FROM holidays WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete holiday: %w", err)
	}

	if result.RowsAffected() == 0 {
		return model.NotFoundError(model.EntityHoliday, id)
	}

	return nil
}

func (r *HolidayPostgresRepository) List(ctx context.Context) ([]*model.Holiday, error) {
	return r.list(ctx, `SELECT id, name, date, is_recurring, created_at FROM holidays ORDER BY date, id`)
}

// ListForRange получает праздники, которые могут выпасть на даты диапазона
func (r *HolidayPostgresRepository) ListForRange(ctx context.Context, rng model.DateRange) ([]*model.Holiday, error) {
	query := `
		SELECT id, name, date, is_recurring, created_at
		FROM holidays
		WHERE is_recurring OR date BETWEEN $1 AND $2
		ORDER BY id
	`
	return r.list(ctx, query, dateValue(rng.From), dateValue(rng.To))
}

func (r *HolidayPostgresRepository) list(ctx context.Context, query string, args ...any) ([]*model.Holiday, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list holidays: %w", err)
	}
	defer rows.Close()

	var holidays []*model.Holiday
	for rows.Next() {
		h, err := scanHoliday(rows)
		if err != nil {
			return nil, fmt.Errorf("scan holiday: %w", err)
		}
		holidays = append(holidays, h)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate holidays: %w", err)
	}

	return holidays, nil
}
