package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/Freeeeeet/faculty_scheduler/internal/model"
)

// Execer is satisfied by both *pgxpool.Pool and pgx.Tx, so every repository
// works inside and outside a transaction.
type Execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults
}

// Repositories groups the repositories bound to one Execer.
type Repositories struct {
	Users         UserRepository
	WeeklySlots   WeeklySlotRepository
	ClassSessions ClassSessionRepository
	Meetings      MeetingRepository
	Activities    ActivityRepository
	Holidays      HolidayRepository
	Outbox        OutboxRepository
}

// NewRepositories создаёт набор postgres-репозиториев поверх пула или транзакции
func NewRepositories(db Execer) Repositories {
	return Repositories{
		Users:         NewUserPostgresRepository(db),
		WeeklySlots:   NewWeeklySlotPostgresRepository(db),
		ClassSessions: NewClassSessionPostgresRepository(db),
		Meetings:      NewMeetingPostgresRepository(db),
		Activities:    NewActivityPostgresRepository(db),
		Holidays:      NewHolidayPostgresRepository(db),
		Outbox:        NewOutboxPostgresRepository(db),
	}
}

// Repositories feed the availability engine directly.

func (r Repositories) FetchWeeklySlots(ctx context.Context, facultyID int64) ([]*model.WeeklySlot, error) {
	return r.WeeklySlots.ListByFaculty(ctx, facultyID)
}

func (r Repositories) FetchClassSessions(ctx context.Context, facultyID int64, from, to time.Time) ([]*model.ClassSession, error) {
	return r.ClassSessions.ListByFaculty(ctx, facultyID, from, to)
}

func (r Repositories) FetchApprovedMeetings(ctx context.Context, facultyID int64, from, to time.Time) ([]*model.MeetingRequest, error) {
	return r.Meetings.ListOccupying(ctx, facultyID, from, to)
}

func (r Repositories) FetchActivities(ctx context.Context, facultyID int64, from, to time.Time) ([]*model.Activity, error) {
	return r.Activities.ListByFaculty(ctx, facultyID, from, to)
}

func (r Repositories) FetchHolidays(ctx context.Context, rng model.DateRange) ([]*model.Holiday, error) {
	return r.Holidays.ListForRange(ctx, rng)
}

func isNoRows(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}

// dateValue stores a civil date as a DATE parameter.
func dateValue(d model.Date) time.Time {
	return d.In(time.UTC)
}
