package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/Freeeeeet/faculty_scheduler/internal/model"
)

type MeetingRepository interface {
	Create(ctx context.Context, meeting *model.MeetingRequest) error
	GetByID(ctx context.Context, id int64) (*model.MeetingRequest, error)
	// ListOccupying returns approved and completed meetings overlapping [from, to).
	ListOccupying(ctx context.Context, facultyID int64, from, to time.Time) ([]*model.MeetingRequest, error)
	ListByFaculty(ctx context.Context, facultyID int64, statuses ...model.MeetingStatus) ([]*model.MeetingRequest, error)
	ListByStudent(ctx context.Context, studentID int64) ([]*model.MeetingRequest, error)
	// UpdateStatus writes status and response message only if the stored
	// status still equals from, and returns model.ErrStaleState otherwise.
	UpdateStatus(ctx context.Context, meeting *model.MeetingRequest, from model.MeetingStatus) error
}

type MeetingPostgresRepository struct {
	db Execer
}

func NewMeetingPostgresRepository(db Execer) *MeetingPostgresRepository {
	return &MeetingPostgresRepository{db: db}
}

const meetingColumns = `id, faculty_id, student_id, preferred_time, duration_minutes, purpose, status, response_message, created_at, updated_at`

func scanMeeting(row interface{ Scan(dest ...any) error }) (*model.MeetingRequest, error) {
	var m model.MeetingRequest
	err := row.Scan(
		&m.ID,
		&m.FacultyID,
		&m.StudentID,
		&m.PreferredTime,
		&m.DurationMinutes,
		&m.Purpose,
		&m.Status,
		&m.ResponseMessage,
		&m.CreatedAt,
		&m.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// Create создаёт новую заявку на встречу
func (r *MeetingPostgresRepository) Create(ctx context.Context, m *model.MeetingRequest) error {
	query := `
		INSERT INTO meeting_requests (faculty_id, student_id, preferred_time, duration_minutes, purpose, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at
	`

	err := r.db.QueryRow(
		ctx, query,
		m.FacultyID,
		m.StudentID,
		m.PreferredTime,
		m.DurationMinutes,
		m.Purpose,
		m.Status,
	).Scan(&m.ID, &m.CreatedAt, &m.UpdatedAt)

	if err != nil {
		return fmt.Errorf("create meeting request: %w", err)
	}

	return nil
}

// GetByID получает заявку по ID
func (r *MeetingPostgresRepository) GetByID(ctx context.Context, id int64) (*model.MeetingRequest, error) {
	m, err := scanMeeting(r.db.QueryRow(ctx, `SELECT `+meetingColumns+` FROM meeting_requests WHERE id = $1`, id))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get meeting request by id: %w", err)
	}
	return m, nil
}

// ListOccupying получает встречи, которые занимают время преподавателя в интервале
func (r *MeetingPostgresRepository) ListOccupying(ctx context.Context, facultyID int64, from, to time.Time) ([]*model.MeetingRequest, error) {
	query := `SELECT ` + meetingColumns + `
		FROM meeting_requests
		WHERE faculty_id = $1
		  AND status = ANY($2)
		  AND preferred_time < $4
		  AND preferred_time + make_interval(mins => duration_minutes) > $3
		ORDER BY preferred_time, id`

	statuses := []string{string(model.MeetingStatusApproved), string(model.MeetingStatusCompleted)}
	return r.list(ctx, "list occupying meetings", query, facultyID, statuses, from, to)
}

// ListByFaculty получает заявки преподавателю, при необходимости только в указанных статусах
func (r *MeetingPostgresRepository) ListByFaculty(ctx context.Context, facultyID int64, statuses ...model.MeetingStatus) ([]*model.MeetingRequest, error) {
	if len(statuses) == 0 {
		query := `SELECT ` + meetingColumns + ` FROM meeting_requests WHERE faculty_id = $1 ORDER BY preferred_time DESC, id`
		return r.list(ctx, "list faculty meetings", query, facultyID)
	}

	names := make([]string, len(statuses))
	for i, s := range statuses {
		names[i] = string(s)
	}
	query := `SELECT ` + meetingColumns + ` FROM meeting_requests WHERE faculty_id = $1 AND status = ANY($2) ORDER BY preferred_time, id`
	return r.list(ctx, "list faculty meetings", query, facultyID, names)
}

// ListByStudent получает заявки студента
func (r *MeetingPostgresRepository) ListByStudent(ctx context.Context, studentID int64) ([]*model.MeetingRequest, error) {
	query := `SELECT ` + meetingColumns + ` FROM meeting_requests WHERE student_id = $1 ORDER BY preferred_time DESC, id`
	return r.list(ctx, "list student meetings", query, studentID)
}

func (r *MeetingPostgresRepository) list(ctx context.Context, op, query string, args ...any) ([]*model.MeetingRequest, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var meetings []*model.MeetingRequest
	for rows.Next() {
		m, err := scanMeeting(rows)
		if err != nil {
			return nil, fmt.Errorf("scan meeting request: %w", err)
		}
		meetings = append(meetings, m)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate meeting requests: %w", err)
	}

	return meetings, nil
}

// UpdateStatus переводит заявку в новый статус, если её статус не изменился с момента чтения
func (r *MeetingPostgresRepository) UpdateStatus(ctx context.Context, m *model.MeetingRequest, from model.MeetingStatus) error {
	query := `
		UPDATE meeting_requests
		SET status = $1, response_message = $2, updated_at = now()
		WHERE id = $3 AND status = $4
		RETURNING updated_at
	`

	err := r.db.QueryRow(ctx, query, m.Status, m.ResponseMessage, m.ID, from).Scan(&m.UpdatedAt)
	if err != nil {
		if isNoRows(err) {
			return fmt.Errorf("update meeting request %d: %w", m.ID, model.ErrStaleState)
		}
		return fmt.Errorf("update meeting request status: %w", err)
	}

	return nil
}
