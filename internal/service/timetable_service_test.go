package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Freeeeeet/faculty_scheduler/internal/model"
)

func TestTimetableService_SetWeeklySlot(t *testing.T) {
	env := newTestEnv(t, saturdayMorning)
	faculty := env.addUser(t, model.RoleFaculty)
	other := env.addUser(t, model.RoleFaculty)
	student := env.addUser(t, model.RoleStudent)
	ctx := context.Background()

	monday, err := env.timetable.SetWeeklySlot(ctx, faculty.ID, &model.WeeklySlot{Weekday: time.Monday, StartHour: 9, DurationHours: 2, Subject: "Databases"})
	require.NoError(t, err)

	_, err = env.timetable.SetWeeklySlot(ctx, faculty.ID, &model.WeeklySlot{Weekday: time.Monday, StartHour: 10, DurationHours: 1, Subject: "Databases"})
	var conflict *model.ConflictError
	require.True(t, errors.As(err, &conflict), "got %v", err)
	assert.Equal(t, model.EntityRef{Type: model.EntityWeeklySlot, ID: monday.ID}, conflict.Entity)

	replaced, err := env.timetable.SetWeeklySlot(ctx, faculty.ID, &model.WeeklySlot{Weekday: time.Monday, StartHour: 9, DurationHours: 1, Subject: "Operating systems", GroupID: uuid.New()})
	require.NoError(t, err)
	assert.Equal(t, monday.ID, replaced.ID)

	_, err = env.timetable.SetWeeklySlot(ctx, faculty.ID, &model.WeeklySlot{Weekday: time.Monday, StartHour: 10, DurationHours: 1})
	require.NoError(t, err)

	_, err = env.timetable.SetWeeklySlot(ctx, other.ID, &model.WeeklySlot{Weekday: time.Monday, StartHour: 9, DurationHours: 1})
	require.NoError(t, err)

	slots, err := env.timetable.GetWeeklySlots(ctx, faculty.ID)
	require.NoError(t, err)
	require.Len(t, slots, 2)
	assert.Equal(t, "Operating systems", slots[0].Subject)

	_, err = env.timetable.SetWeeklySlot(ctx, faculty.ID, &model.WeeklySlot{Weekday: time.Sunday, StartHour: 9, DurationHours: 1})
	assert.ErrorIs(t, err, model.ErrInvalidInterval)

	_, err = env.timetable.SetWeeklySlot(ctx, student.ID, &model.WeeklySlot{Weekday: time.Tuesday, StartHour: 9, DurationHours: 1})
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestTimetableService_RemoveWeeklySlot(t *testing.T) {
	env := newTestEnv(t, saturdayMorning)
	faculty := env.addUser(t, model.RoleFaculty)
	other := env.addUser(t, model.RoleFaculty)
	slot := env.addWeeklySlot(t, faculty.ID, time.Thursday, 12, 1, uuid.Nil)
	ctx := context.Background()

	assert.ErrorIs(t, env.timetable.RemoveWeeklySlot(ctx, other.ID, slot.ID), model.ErrForbidden)
	require.NoError(t, env.timetable.RemoveWeeklySlot(ctx, faculty.ID, slot.ID))
	assert.ErrorIs(t, env.timetable.RemoveWeeklySlot(ctx, faculty.ID, slot.ID), model.ErrNotFound)
}

func TestHolidayService(t *testing.T) {
	env := newTestEnv(t, saturdayMorning)
	admin := env.addUser(t, model.RoleAdmin)
	faculty := env.addUser(t, model.RoleFaculty)
	ctx := context.Background()

	_, err := env.holidays.Create(ctx, faculty.ID, &model.Holiday{Name: "Day off", Date: mustDate(t, "2025-03-10")})
	assert.ErrorIs(t, err, model.ErrForbidden)

	_, err = env.holidays.Create(ctx, admin.ID, &model.Holiday{Name: "No date"})
	assert.ErrorIs(t, err, model.ErrInvalidInterval)

	h, err := env.holidays.Create(ctx, admin.ID, &model.Holiday{Name: "Day off", Date: mustDate(t, "2025-03-10")})
	require.NoError(t, err)

	// Праздник сразу влияет на доступность
	rng := model.DateRange{From: h.Date, To: h.Date}
	slots, err := env.scheduling.GetAvailableSlots(ctx, faculty.ID, rng, 15)
	require.NoError(t, err)
	assert.Empty(t, slots)

	all, err := env.holidays.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)

	require.NoError(t, env.holidays.Delete(ctx, admin.ID, h.ID))
	slots, err = env.scheduling.GetAvailableSlots(ctx, faculty.ID, rng, 15)
	require.NoError(t, err)
	assert.Len(t, slots, 32)
}

func TestUserService(t *testing.T) {
	env := newTestEnv(t, saturdayMorning)
	ctx := context.Background()

	user, err := env.users.RegisterUser(ctx, 42, "ivan", "Ivan", "", "ru")
	require.NoError(t, err)
	assert.Equal(t, model.RoleStudent, user.Role)

	again, err := env.users.RegisterUser(ctx, 42, "ivan_p", "Ivan", "Petrov", "ru")
	require.NoError(t, err)
	assert.Equal(t, user.ID, again.ID)
	assert.Equal(t, "Ivan Petrov", again.DisplayName())

	require.NoError(t, env.users.MakeFaculty(ctx, user.ID))
	stored, err := env.users.GetByTelegramID(ctx, 42)
	require.NoError(t, err)
	assert.True(t, stored.IsFaculty())

	group := uuid.New()
	require.NoError(t, env.users.JoinGroup(ctx, user.ID, group))
	stored, err = env.users.GetByID(ctx, user.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.GroupID)
	assert.Equal(t, group, *stored.GroupID)

	assert.Error(t, env.users.JoinGroup(ctx, user.ID, uuid.Nil))
	assert.ErrorIs(t, env.users.MakeFaculty(ctx, 999), model.ErrNotFound)

	env.addUser(t, model.RoleStudent)
	env.addUser(t, model.RoleAdmin)
	other := env.addUser(t, model.RoleFaculty)
	faculty, err := env.users.ListFaculty(ctx)
	require.NoError(t, err)
	require.Len(t, faculty, 2)
	assert.Equal(t, user.ID, faculty[0].ID)
	assert.Equal(t, other.ID, faculty[1].ID)
}
