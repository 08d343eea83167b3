package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/Freeeeeet/faculty_scheduler/internal/model"
)

type WeeklySlotRepository interface {
	Upsert(ctx context.Context, slot *model.WeeklySlot) error
	GetByID(ctx context.Context, id int64) (*model.WeeklySlot, error)
	ListByFaculty(ctx context.Context, facultyID int64) ([]*model.WeeklySlot, error)
	Delete(ctx context.Context, id int64) error
}

// WeeklySlotPostgresRepository хранит недельное расписание преподавателей
type WeeklySlotPostgresRepository struct {
	db Execer
}

func NewWeeklySlotPostgresRepository(db Execer) *WeeklySlotPostgresRepository {
	return &WeeklySlotPostgresRepository{db: db}
}

const weeklySlotColumns = `id, faculty_id, weekday, start_hour, start_minute, duration_hours, subject, group_id, created_at, updated_at`

func scanWeeklySlot(row interface{ Scan(dest ...any) error }) (*model.WeeklySlot, error) {
	var (
		slot    model.WeeklySlot
		weekday int
	)
	err := row.Scan(
		&slot.ID,
		&slot.FacultyID,
		&weekday,
		&slot.StartHour,
		&slot.StartMinute,
		&slot.DurationHours,
		&slot.Subject,
		&slot.GroupID,
		&slot.CreatedAt,
		&slot.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	slot.Weekday = time.Weekday(weekday)
	return &slot, nil
}

// Upsert создаёт слот или перезаписывает существующий с тем же днём недели и временем начала
func (r *WeeklySlotPostgresRepository) Upsert(ctx context.Context, slot *model.WeeklySlot) error {
	query := `
		INSERT INTO weekly_slots (faculty_id, weekday, start_hour, start_minute, duration_hours, subject, group_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (faculty_id, weekday, start_hour, start_minute)
		DO UPDATE SET
			duration_hours = EXCLUDED.duration_hours,
			subject = EXCLUDED.subject,
			group_id = EXCLUDED.group_id,
			updated_at = now()
		RETURNING id, created_at, updated_at
	`

	err := r.db.QueryRow(
		ctx, query,
		slot.FacultyID,
		int(slot.Weekday),
		slot.StartHour,
		slot.StartMinute,
		slot.DurationHours,
		slot.Subject,
		slot.GroupID,
	).Scan(&slot.ID, &slot.CreatedAt, &slot.UpdatedAt)

	if err != nil {
		return fmt.Errorf("upsert weekly slot: %w", err)
	}

	return nil
}

// GetByID получает слот по ID
func (r *WeeklySlotPostgresRepository) GetByID(ctx context.Context, id int64) (*model.WeeklySlot, error) {
	slot, err := scanWeeklySlot(r.db.QueryRow(ctx, `SELECT `+weeklySlotColumns+` FROM weekly_slots WHERE id = $1`, id))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get weekly slot by id: %w", err)
	}
	return slot, nil
}

// ListByFaculty возвращает недельное расписание преподавателя, упорядоченное по дню и времени
func (r *WeeklySlotPostgresRepository) ListByFaculty(ctx context.Context, facultyID int64) ([]*model.WeeklySlot, error) {
	query := `SELECT ` + weeklySlotColumns + `
		FROM weekly_slots
		WHERE faculty_id = $1
		ORDER BY weekday, start_hour, start_minute`

	rows, err := r.db.Query(ctx, query, facultyID)
	if err != nil {
		return nil, fmt.Errorf("list weekly slots: %w", err)
	}
	defer rows.Close()

	var slots []*model.WeeklySlot
	for rows.Next() {
		slot, err := scanWeeklySlot(rows)
		if err != nil {
			return nil, fmt.Errorf("scan weekly slot: %w", err)
		}
		slots = append(slots, slot)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate weekly slots: %w", err)
	}

	return slots, nil
}

// Delete удаляет слот; уже созданные занятия остаются
func (r *WeeklySlotPostgresRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.db.Exec(ctx, `DELETE FROM weekly_slots WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete weekly slot: %w", err)
	}

	if result.RowsAffected() == 0 {
		return model.NotFoundError(model.EntityWeeklySlot, id)
	}

	return nil
}
