package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/Freeeeeet/faculty_scheduler/internal/model"
)

type ActivityRepository interface {
	Create(ctx context.Context, activity *model.Activity) error
	GetByID(ctx context.Context, id int64) (*model.Activity, error)
	ListByFaculty(ctx context.Context, facultyID int64, from, to time.Time) ([]*model.Activity, error)
	Update(ctx context.Context, activity *model.Activity) error
	Delete(ctx context.Context, id int64) error
}

type ActivityPostgresRepository struct {
	db Execer
}

func NewActivityPostgresRepository(db Execer) *ActivityPostgresRepository {
	return &ActivityPostgresRepository{db: db}
}

const activityColumns = `id, faculty_id, title, activity_type, description, start_time, end_time, created_at, updated_at`

func scanActivity(row interface{ Scan(dest ...any) error }) (*model.Activity, error) {
	var a model.Activity
	err := row.Scan(
		&a.ID,
		&a.FacultyID,
		&a.Title,
		&a.ActivityType,
		&a.Description,
		&a.StartTime,
		&a.EndTime,
		&a.CreatedAt,
		&a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *ActivityPostgresRepository) Create(ctx context.Context, a *model.Activity) error {
	query := `
		INSERT INTO activities (faculty_id, title, activity_type, description, start_time, end_time)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at
	`

	err := r.db.QueryRow(ctx, query, a.FacultyID, a.Title, a.ActivityType, a.Description, a.StartTime, a.EndTime).
		Scan(&a.ID, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create activity: %w", err)
	}

	return nil
}

func (r *ActivityPostgresRepository) GetByID(ctx context.Context, id int64) (*model.Activity, error) {
	a, err := scanActivity(r.db.QueryRow(ctx, `SELECT `+activityColumns+` FROM activities WHERE id = $1`, id))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get activity by id: %w", err)
	}
	return a, nil
}

// ListByFaculty получает активности преподавателя, пересекающие [from, to)
func (r *ActivityPostgresRepository) ListByFaculty(ctx context.Context, facultyID int64, from, to time.Time) ([]*model.Activity, error) {
	query := `SELECT ` + activityColumns + `
		FROM activities
		WHERE faculty_id = $1 AND start_time < $3 AND end_time > $2
		ORDER BY start_time, id`

	rows, err := r.db.Query(ctx, query, facultyID, from, to)
	if err != nil {
		return nil, fmt.Errorf("list activities: %w", err)
	}
	defer rows.Close()

	var activities []*model.Activity
	for rows.Next() {
		a, err := scanActivity(rows)
		if err != nil {
			return nil, fmt.Errorf("scan activity: %w", err)
		}
		activities = append(activities, a)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate activities: %w", err)
	}

	return activities, nil
}

func (r *ActivityPostgresRepository) Update(ctx context.Context, a *model.Activity) error {
	query := `
		UPDATE activities
		SET title = $1, activity_type = $2, description = $3, start_time = $4, end_time = $5, updated_at = now()
		WHERE id = $6
		RETURNING updated_at
	`

	err := r.db.QueryRow(ctx, query, a.Title, a.ActivityType, a.Description, a.StartTime, a.EndTime, a.ID).Scan(&a.UpdatedAt)
	if err != nil {
		if isNoRows(err) {
			return model.NotFoundError(model.EntityActivity, a.ID)
		}
		return fmt.Errorf("update activity: %w", err)
	}

	return nil
}

func (r *ActivityPostgresRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.db.Exec(ctx, `DELETE FROM activities WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete activity: %w", err)
	}

	if result.RowsAffected() == 0 {
		return model.NotFoundError(model.EntityActivity, id)
	}

	return nil
}
