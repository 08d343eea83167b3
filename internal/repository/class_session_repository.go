package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/Freeeeeet/faculty_scheduler/internal/model"
)

type ClassSessionRepository interface {
	Create(ctx context.Context, session *model.ClassSession) error
	// InsertGenerated inserts sessions materialised from weekly slots and
	// skips those already present. It returns the number inserted.
	InsertGenerated(ctx context.Context, sessions []*model.ClassSession) (int64, error)
	GetByID(ctx context.Context, id int64) (*model.ClassSession, error)
	// ListByFaculty returns sessions whose original or rescheduled interval overlaps [from, to).
	ListByFaculty(ctx context.Context, facultyID int64, from, to time.Time) ([]*model.ClassSession, error)
	// ListByGroup returns a student group's sessions overlapping [from, to), any faculty.
	ListByGroup(ctx context.Context, groupID uuid.UUID, from, to time.Time) ([]*model.ClassSession, error)
	// ListGrouped returns non-cancelled sessions that belong to a group and overlap [from, to).
	ListGrouped(ctx context.Context, from, to time.Time) ([]*model.ClassSession, error)
	// UpdateStatus writes status, rescheduled_to and notes only if the stored
	// status still equals from, and returns model.ErrStaleState otherwise.
	UpdateStatus(ctx context.Context, session *model.ClassSession, from model.ClassStatus) error
}

type ClassSessionPostgresRepository struct {
	db Execer
}

func NewClassSessionPostgresRepository(db Execer) *ClassSessionPostgresRepository {
	return &ClassSessionPostgresRepository{db: db}
}

const classSessionColumns = `id, faculty_id, weekly_slot_id, group_id, subject, start_time, duration_hours, status, rescheduled_to, topic, notes, created_at, updated_at`

func scanClassSession(row interface{ Scan(dest ...any) error }) (*model.ClassSession, error) {
	var s model.ClassSession
	err := row.Scan(
		&s.ID,
		&s.FacultyID,
		&s.WeeklySlotID,
		&s.GroupID,
		&s.Subject,
		&s.StartTime,
		&s.DurationHours,
		&s.Status,
		&s.RescheduledTo,
		&s.Topic,
		&s.Notes,
		&s.CreatedAt,
		&s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// Create создаёт разовое занятие
func (r *ClassSessionPostgresRepository) Create(ctx context.Context, s *model.ClassSession) error {
	query := `
		INSERT INTO class_sessions (faculty_id, weekly_slot_id, group_id, subject, start_time, duration_hours, status, topic, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at, updated_at
	`

	err := r.db.QueryRow(
		ctx, query,
		s.FacultyID,
		s.WeeklySlotID,
		s.GroupID,
		s.Subject,
		s.StartTime,
		s.DurationHours,
		s.Status,
		s.Topic,
		s.Notes,
	).Scan(&s.ID, &s.CreatedAt, &s.UpdatedAt)

	if err != nil {
		return fmt.Errorf("create class session: %w", err)
	}

	return nil
}

// InsertGenerated вставляет занятия пачкой; повторная генерация того же периода ничего не меняет
func (r *ClassSessionPostgresRepository) InsertGenerated(ctx context.Context, sessions []*model.ClassSession) (int64, error) {
	if len(sessions) == 0 {
		return 0, nil
	}

	query := `
		INSERT INTO class_sessions (faculty_id, weekly_slot_id, group_id, subject, start_time, duration_hours, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (faculty_id, weekly_slot_id, start_time) DO NOTHING
	`

	batch := &pgx.Batch{}
	for _, s := range sessions {
		batch.Queue(query, s.FacultyID, s.WeeklySlotID, s.GroupID, s.Subject, s.StartTime, s.DurationHours, s.Status)
	}

	br := r.db.SendBatch(ctx, batch)
	var inserted int64
	for i := range sessions {
		tag, err := br.Exec()
		if err != nil {
			br.Close()
			return 0, fmt.Errorf("insert generated session %d: %w", i, err)
		}
		inserted += tag.RowsAffected()
	}

	if err := br.Close(); err != nil {
		return 0, fmt.Errorf("close generation batch: %w", err)
	}

	return inserted, nil
}

// GetByID получает занятие по ID
func (r *ClassSessionPostgresRepository) GetByID(ctx context.Context, id int64) (*model.ClassSession, error) {
	s, err := scanClassSession(r.db.QueryRow(ctx, `SELECT `+classSessionColumns+` FROM class_sessions WHERE id = $1`, id))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get class session by id: %w", err)
	}
	return s, nil
}

// overlapFilter отбирает занятия, исходное или перенесённое время которых пересекает [$1, $2)
const overlapFilter = `(
	(start_time < $2 AND start_time + make_interval(hours => duration_hours) > $1)
	OR (rescheduled_to IS NOT NULL AND rescheduled_to < $2 AND rescheduled_to + make_interval(hours => duration_hours) > $1)
)`

// ListByFaculty получает занятия преподавателя, пересекающие интервал
func (r *ClassSessionPostgresRepository) ListByFaculty(ctx context.Context, facultyID int64, from, to time.Time) ([]*model.ClassSession, error) {
	return r.list(ctx, "list class sessions", `faculty_id = $3`, from, to, facultyID)
}

// ListByGroup получает занятия учебной группы у всех преподавателей
func (r *ClassSessionPostgresRepository) ListByGroup(ctx context.Context, groupID uuid.UUID, from, to time.Time) ([]*model.ClassSession, error) {
	return r.list(ctx, "list group class sessions", `group_id = $3`, from, to, groupID)
}

// ListGrouped получает неотменённые групповые занятия для отчёта о накладках
func (r *ClassSessionPostgresRepository) ListGrouped(ctx context.Context, from, to time.Time) ([]*model.ClassSession, error) {
	return r.list(ctx, "list grouped class sessions", `group_id <> $3 AND status <> $4`, from, to, uuid.Nil, model.ClassStatusCancelled)
}

func (r *ClassSessionPostgresRepository) list(ctx context.Context, op, cond string, from, to time.Time, args ...any) ([]*model.ClassSession, error) {
	query := `SELECT ` + classSessionColumns + `
		FROM class_sessions
		WHERE ` + cond + ` AND ` + overlapFilter + `
		ORDER BY start_time, id`

	rows, err := r.db.Query(ctx, query, append([]any{from, to}, args...)...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var sessions []*model.ClassSession
	for rows.Next() {
		s, err := scanClassSession(rows)
		if err != nil {
			return nil, fmt.Errorf("scan class session: %w", err)
		}
		sessions = append(sessions, s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate class sessions: %w", err)
	}

	return sessions, nil
}

// UpdateStatus переводит занятие в новый статус, если его никто не изменил раньше
func (r *ClassSessionPostgresRepository) UpdateStatus(ctx context.Context, s *model.ClassSession, from model.ClassStatus) error {
	query := `
		UPDATE class_sessions
		SET status = $1, rescheduled_to = $2, notes = $3, updated_at = now()
		WHERE id = $4 AND status = $5
		RETURNING updated_at
	`

	err := r.db.QueryRow(ctx, query, s.Status, s.RescheduledTo, s.Notes, s.ID, from).Scan(&s.UpdatedAt)
	if err != nil {
		if isNoRows(err) {
			return fmt.Errorf("update class session %d: %w", s.ID, model.ErrStaleState)
		}
		return fmt.Errorf("update class session status: %w", err)
	}

	return nil
}
