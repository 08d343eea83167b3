package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/Freeeeeet/faculty_scheduler/internal/model"
)

type testEnv struct {
	db         *memDB
	txm        *memTxManager
	settings   Settings
	scheduling *SchedulingService
	meetings   *MeetingService
	classes    *ClassService
	activities *ActivityService
	timetable  *TimetableService
	holidays   *HolidayService
	users      *UserService

	telegramSeq int64
}

func newTestEnv(t *testing.T, now time.Time) *testEnv {
	t.Helper()
	db := newMemDB()
	txm := &memTxManager{db: db}
	repos := db.repos()
	logger := zaptest.NewLogger(t)
	settings := Settings{
		Location:     time.UTC,
		SlotStep:     15 * time.Minute,
		WorkdayStart: 9 * time.Hour,
		WorkdayEnd:   17 * time.Hour,
		MaxQueryDays: 31,
		Now:          func() time.Time { return now },
	}

	scheduling := NewSchedulingService(repos, txm, settings, logger)
	return &testEnv{
		db:         db,
		txm:        txm,
		settings:   settings,
		scheduling: scheduling,
		meetings:   NewMeetingService(repos, txm, scheduling, settings, logger),
		classes:    NewClassService(repos, txm, scheduling, settings, logger),
		activities: NewActivityService(repos, scheduling, settings, logger),
		timetable:  NewTimetableService(repos, txm, logger),
		holidays:   NewHolidayService(repos, logger),
		users:      NewUserService(repos.Users, logger),
	}
}

func (e *testEnv) addUser(t *testing.T, role model.Role) *model.User {
	t.Helper()
	e.telegramSeq++
	u := &model.User{TelegramID: 1000 + e.telegramSeq, FirstName: string(role), Role: role}
	require.NoError(t, memUsers{e.db}.Create(context.Background(), u))
	return u
}

func (e *testEnv) addWeeklySlot(t *testing.T, facultyID int64, weekday time.Weekday, hour, hours int, groupID uuid.UUID) *model.WeeklySlot {
	t.Helper()
	slot := &model.WeeklySlot{FacultyID: facultyID, Weekday: weekday, StartHour: hour, DurationHours: hours, Subject: "Algorithms", GroupID: groupID}
	require.NoError(t, memWeeklySlots{e.db}.Upsert(context.Background(), slot))
	return slot
}

func (e *testEnv) addMeeting(t *testing.T, facultyID, studentID int64, start time.Time, minutes int, status model.MeetingStatus) *model.MeetingRequest {
	t.Helper()
	m := &model.MeetingRequest{FacultyID: facultyID, StudentID: studentID, PreferredTime: start, DurationMinutes: minutes, Status: status}
	require.NoError(t, memMeetings{e.db}.Create(context.Background(), m))
	return m
}

func (e *testEnv) addSession(t *testing.T, s *model.ClassSession) *model.ClassSession {
	t.Helper()
	require.NoError(t, memClassSessions{e.db}.Create(context.Background(), s))
	return s
}

func (e *testEnv) addHoliday(t *testing.T, date model.Date, recurring bool) *model.Holiday {
	t.Helper()
	h := &model.Holiday{Name: "Holiday", Date: date, IsRecurring: recurring}
	require.NoError(t, memHolidays{e.db}.Create(context.Background(), h))
	return h
}

func mustDate(t *testing.T, s string) model.Date {
	t.Helper()
	d, err := model.ParseDate(s)
	require.NoError(t, err)
	return d
}

func at(d model.Date, hour, minute int) time.Time {
	return d.At(hour, minute, time.UTC)
}
