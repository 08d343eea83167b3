package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Freeeeeet/faculty_scheduler/internal/model"
)

var saturdayMorning = time.Date(2025, time.March, 1, 8, 0, 0, 0, time.UTC)

func TestGetAvailableSlots_HolidayMonday(t *testing.T) {
	env := newTestEnv(t, saturdayMorning)
	faculty := env.addUser(t, model.RoleFaculty)
	env.addWeeklySlot(t, faculty.ID, time.Monday, 9, 1, uuid.Nil)
	env.addHoliday(t, mustDate(t, "2025-03-10"), false)

	rng := model.DateRange{From: mustDate(t, "2025-03-03"), To: mustDate(t, "2025-03-10")}
	slots, err := env.scheduling.GetAvailableSlots(context.Background(), faculty.ID, rng, 60)
	require.NoError(t, err)

	perDay := map[string]int{}
	for _, s := range slots {
		perDay[s.Date.String()]++
		if s.Date == mustDate(t, "2025-03-03") {
			assert.False(t, s.Start.Before(at(s.Date, 10, 0)), "class hour offered: %s", s.Start)
		}
	}

	assert.Equal(t, map[string]int{
		"2025-03-03": 25,
		"2025-03-04": 29,
		"2025-03-05": 29,
		"2025-03-06": 29,
		"2025-03-07": 29,
		"2025-03-08": 29,
		"2025-03-09": 29,
	}, perDay)
}

func TestGetAvailableSlots_SkipsPast(t *testing.T) {
	mon := mustDate(t, "2025-03-03")
	env := newTestEnv(t, at(mon, 12, 5))
	faculty := env.addUser(t, model.RoleFaculty)

	slots, err := env.scheduling.GetAvailableSlots(context.Background(), faculty.ID, model.DateRange{From: mon, To: mon}, 30)
	require.NoError(t, err)
	require.Len(t, slots, 18)
	assert.Equal(t, at(mon, 12, 15), slots[0].Start)
	assert.Equal(t, at(mon, 16, 30), slots[len(slots)-1].Start)
}

func TestGetAvailableSlots_Errors(t *testing.T) {
	env := newTestEnv(t, saturdayMorning)
	faculty := env.addUser(t, model.RoleFaculty)
	student := env.addUser(t, model.RoleStudent)
	week := model.DateRange{From: mustDate(t, "2025-03-03"), To: mustDate(t, "2025-03-09")}

	tests := []struct {
		name      string
		facultyID int64
		rng       model.DateRange
		minutes   int
		wantErr   error
	}{
		{name: "unsupported duration", facultyID: faculty.ID, rng: week, minutes: 20, wantErr: model.ErrInvalidInterval},
		{name: "inverted range", facultyID: faculty.ID, rng: model.DateRange{From: week.To, To: week.From}, minutes: 30, wantErr: model.ErrInvalidInterval},
		{name: "range too long", facultyID: faculty.ID, rng: model.DateRange{From: week.From, To: week.From.AddDays(40)}, minutes: 30, wantErr: model.ErrInvalidInterval},
		{name: "unknown faculty", facultyID: 999, rng: week, minutes: 30, wantErr: model.ErrNotFound},
		{name: "student is not faculty", facultyID: student.ID, rng: week, minutes: 30, wantErr: model.ErrNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.scheduling.GetAvailableSlots(context.Background(), tt.facultyID, tt.rng, tt.minutes)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestValidateAndCommit_ConcurrentApprovals(t *testing.T) {
	tue := mustDate(t, "2025-03-04")

	for i := 0; i < 20; i++ {
		env := newTestEnv(t, saturdayMorning)
		faculty := env.addUser(t, model.RoleFaculty)
		student := env.addUser(t, model.RoleStudent)
		a := env.addMeeting(t, faculty.ID, student.ID, at(tue, 10, 0), 30, model.MeetingStatusPending)
		b := env.addMeeting(t, faculty.ID, student.ID, at(tue, 10, 15), 30, model.MeetingStatusPending)

		var (
			wg    sync.WaitGroup
			start = make(chan struct{})
			errs  = make([]error, 2)
		)
		for j, m := range []*model.MeetingRequest{a, b} {
			wg.Add(1)
			go func(j int, id int64) {
				defer wg.Done()
				<-start
				_, errs[j] = env.meetings.Approve(context.Background(), faculty.ID, id, "")
			}(j, m.ID)
		}
		close(start)
		wg.Wait()

		var (
			winner, loser *model.MeetingRequest
			loserErr      error
		)
		switch {
		case errs[0] == nil && errs[1] != nil:
			winner, loser, loserErr = a, b, errs[1]
		case errs[1] == nil && errs[0] != nil:
			winner, loser, loserErr = b, a, errs[0]
		default:
			t.Fatalf("exactly one approval must succeed, got %v and %v", errs[0], errs[1])
		}

		var conflict *model.ConflictError
		require.True(t, errors.As(loserErr, &conflict), "loser error: %v", loserErr)
		assert.Equal(t, winner.Ref(), conflict.Entity)

		stored, err := memMeetings{env.db}.GetByID(context.Background(), loser.ID)
		require.NoError(t, err)
		assert.Equal(t, model.MeetingStatusPending, stored.Status)
		assert.Len(t, env.db.eventsOfType(model.EventMeetingApproved), 1)
	}
}

func TestValidateAndCommit_RescheduleFreesOriginalTime(t *testing.T) {
	env := newTestEnv(t, saturdayMorning)
	group := uuid.New()
	faculty := env.addUser(t, model.RoleFaculty)
	env.addWeeklySlot(t, faculty.ID, time.Tuesday, 9, 1, group)

	tue := mustDate(t, "2025-03-04")
	wed := mustDate(t, "2025-03-05")
	ctx := context.Background()

	created, err := env.classes.GenerateSessions(ctx, faculty.ID, model.DateRange{From: mustDate(t, "2025-03-03"), To: mustDate(t, "2025-03-09")})
	require.NoError(t, err)
	require.Equal(t, int64(1), created)

	sessions, err := env.classes.List(ctx, faculty.ID, model.DateRange{From: tue, To: tue})
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	session := sessions[0]

	moved, err := env.classes.Reschedule(ctx, faculty.ID, session.ID, at(wed, 14, 0))
	require.NoError(t, err)
	assert.Equal(t, model.ClassStatusRescheduled, moved.Status)
	require.NotNil(t, moved.RescheduledTo)
	assert.Equal(t, at(wed, 14, 0), *moved.RescheduledTo)

	slots, err := env.scheduling.GetAvailableSlots(ctx, faculty.ID, model.DateRange{From: tue, To: wed}, 60)
	require.NoError(t, err)

	busyWed := model.TimeInterval{Start: at(wed, 14, 0), End: at(wed, 15, 0)}
	var tueNine bool
	for _, s := range slots {
		if s.Start.Equal(at(tue, 9, 0)) {
			tueNine = true
		}
		assert.False(t, s.Interval().Overlaps(busyWed), "slot %s overlaps rescheduled class", s.Interval())
	}
	assert.True(t, tueNine, "Tuesday 09:00 should be free after the reschedule")

	events := env.db.eventsOfType(model.EventClassRescheduled)
	require.Len(t, events, 1)
	payload, err := events[0].Notification()
	require.NoError(t, err)
	require.NotNil(t, payload.GroupID)
	assert.Equal(t, group, *payload.GroupID)

	_, err = env.classes.Reschedule(ctx, faculty.ID, session.ID, at(wed, 16, 0))
	assert.ErrorIs(t, err, model.ErrInvalidTransition)
}

func TestValidateAndCommit_RescheduleRejected(t *testing.T) {
	env := newTestEnv(t, saturdayMorning)
	faculty := env.addUser(t, model.RoleFaculty)
	tue := mustDate(t, "2025-03-04")
	wed := mustDate(t, "2025-03-05")
	ctx := context.Background()

	session := env.addSession(t, &model.ClassSession{
		FacultyID: faculty.ID, Subject: "Networks", StartTime: at(tue, 9, 0), DurationHours: 2, Status: model.ClassStatusScheduled,
	})
	activity, err := env.activities.Create(ctx, faculty.ID, &model.Activity{Title: "Committee", StartTime: at(wed, 14, 0), EndTime: at(wed, 15, 0)})
	require.NoError(t, err)

	tests := []struct {
		name    string
		target  time.Time
		wantErr error
		wantRef *model.EntityRef
	}{
		{name: "busy target", target: at(wed, 13, 30), wantRef: &model.EntityRef{Type: model.EntityActivity, ID: activity.ID}},
		{name: "past target", target: at(mustDate(t, "2025-02-20"), 9, 0), wantErr: model.ErrInvalidInterval},
		{name: "missing target", wantErr: model.ErrInvalidInterval},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.classes.Reschedule(ctx, faculty.ID, session.ID, tt.target)
			if tt.wantRef != nil {
				var conflict *model.ConflictError
				require.True(t, errors.As(err, &conflict), "got %v", err)
				assert.Equal(t, *tt.wantRef, conflict.Entity)
			} else {
				assert.ErrorIs(t, err, tt.wantErr)
			}

			stored, err := memClassSessions{env.db}.GetByID(ctx, session.ID)
			require.NoError(t, err)
			assert.Equal(t, model.ClassStatusScheduled, stored.Status)
			assert.Nil(t, stored.RescheduledTo)
		})
	}

	t.Run("overlapping own original time", func(t *testing.T) {
		moved, err := env.classes.Reschedule(ctx, faculty.ID, session.ID, at(tue, 10, 0))
		require.NoError(t, err)
		assert.Equal(t, model.ClassStatusRescheduled, moved.Status)
	})
}

func TestValidateAndCommit_InvalidTransitions(t *testing.T) {
	env := newTestEnv(t, saturdayMorning)
	faculty := env.addUser(t, model.RoleFaculty)
	student := env.addUser(t, model.RoleStudent)
	tue := mustDate(t, "2025-03-04")

	rejected := env.addMeeting(t, faculty.ID, student.ID, at(tue, 10, 0), 30, model.MeetingStatusRejected)
	pending := env.addMeeting(t, faculty.ID, student.ID, at(tue, 11, 0), 30, model.MeetingStatusPending)
	approved := env.addMeeting(t, faculty.ID, student.ID, at(tue, 12, 0), 30, model.MeetingStatusApproved)
	completedClass := env.addSession(t, &model.ClassSession{FacultyID: faculty.ID, StartTime: at(tue, 14, 0), DurationHours: 1, Status: model.ClassStatusCompleted})
	cancelledClass := env.addSession(t, &model.ClassSession{FacultyID: faculty.ID, StartTime: at(tue, 15, 0), DurationHours: 1, Status: model.ClassStatusCancelled})

	tests := []struct {
		name string
		req  MutationRequest
	}{
		{name: "approve rejected meeting", req: MutationRequest{Kind: MutationApproveMeeting, EntityID: rejected.ID}},
		{name: "complete pending meeting", req: MutationRequest{Kind: MutationCompleteMeeting, EntityID: pending.ID}},
		{name: "reject approved meeting", req: MutationRequest{Kind: MutationRejectMeeting, EntityID: approved.ID}},
		{name: "cancel approved meeting", req: MutationRequest{Kind: MutationCancelMeeting, ActorID: student.ID, EntityID: approved.ID}},
		{name: "cancel completed class", req: MutationRequest{Kind: MutationCancelClass, EntityID: completedClass.ID}},
		{name: "complete cancelled class", req: MutationRequest{Kind: MutationCompleteClass, EntityID: cancelledClass.ID}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.req.ActorID == 0 {
				tt.req.ActorID = faculty.ID
			}
			_, err := env.scheduling.ValidateAndCommit(context.Background(), tt.req)
			require.ErrorIs(t, err, model.ErrInvalidTransition)

			var transition *model.TransitionError
			assert.True(t, errors.As(err, &transition))
		})
	}
}

func TestValidateAndCommit_Permissions(t *testing.T) {
	env := newTestEnv(t, saturdayMorning)
	faculty := env.addUser(t, model.RoleFaculty)
	other := env.addUser(t, model.RoleFaculty)
	student := env.addUser(t, model.RoleStudent)
	tue := mustDate(t, "2025-03-04")
	ctx := context.Background()

	meeting := env.addMeeting(t, faculty.ID, student.ID, at(tue, 10, 0), 30, model.MeetingStatusPending)
	session := env.addSession(t, &model.ClassSession{FacultyID: faculty.ID, StartTime: at(tue, 14, 0), DurationHours: 1, Status: model.ClassStatusScheduled})

	tests := []struct {
		name    string
		req     MutationRequest
		wantErr error
	}{
		{name: "other faculty approves", req: MutationRequest{Kind: MutationApproveMeeting, ActorID: other.ID, EntityID: meeting.ID}, wantErr: model.ErrForbidden},
		{name: "student approves", req: MutationRequest{Kind: MutationApproveMeeting, ActorID: student.ID, EntityID: meeting.ID}, wantErr: model.ErrForbidden},
		{name: "faculty cancels request", req: MutationRequest{Kind: MutationCancelMeeting, ActorID: faculty.ID, EntityID: meeting.ID}, wantErr: model.ErrForbidden},
		{name: "another user cancels request", req: MutationRequest{Kind: MutationCancelMeeting, ActorID: other.ID, EntityID: meeting.ID}, wantErr: model.ErrForbidden},
		{name: "other faculty cancels class", req: MutationRequest{Kind: MutationCancelClass, ActorID: other.ID, EntityID: session.ID}, wantErr: model.ErrForbidden},
		{name: "student creates activity", req: MutationRequest{Kind: MutationCreateActivity, ActorID: student.ID, Activity: &model.Activity{}}, wantErr: model.ErrForbidden},
		{name: "unknown meeting", req: MutationRequest{Kind: MutationApproveMeeting, ActorID: faculty.ID, EntityID: 999}, wantErr: model.ErrNotFound},
		{name: "unknown actor", req: MutationRequest{Kind: MutationApproveMeeting, ActorID: 999, EntityID: meeting.ID}, wantErr: model.ErrNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.scheduling.ValidateAndCommit(ctx, tt.req)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}

	t.Run("student cancels own request", func(t *testing.T) {
		cancelled, err := env.meetings.Cancel(ctx, student.ID, meeting.ID)
		require.NoError(t, err)
		assert.Equal(t, model.MeetingStatusCancelled, cancelled.Status)

		events := env.db.eventsOfType(model.EventMeetingCancelled)
		require.Len(t, events, 1)
		payload, err := events[0].Notification()
		require.NoError(t, err)
		assert.Equal(t, []int64{faculty.ID}, payload.UserIDs)
	})
}

func TestValidateAndCommit_CreateClass(t *testing.T) {
	env := newTestEnv(t, saturdayMorning)
	group := uuid.New()
	faculty := env.addUser(t, model.RoleFaculty)
	slot := env.addWeeklySlot(t, faculty.ID, time.Monday, 9, 1, group)
	mon := mustDate(t, "2025-03-03")
	ctx := context.Background()

	t.Run("one-off in free time", func(t *testing.T) {
		cs, err := env.classes.CreateOneOff(ctx, faculty.ID, &model.ClassSession{Subject: "Extra", GroupID: group, StartTime: at(mon, 12, 0), DurationHours: 2})
		require.NoError(t, err)
		assert.Equal(t, model.ClassStatusScheduled, cs.Status)
		assert.Equal(t, faculty.ID, cs.FacultyID)
		assert.Len(t, env.db.eventsOfType(model.EventClassCreated), 1)
	})

	t.Run("one-off over template occurrence", func(t *testing.T) {
		_, err := env.classes.CreateOneOff(ctx, faculty.ID, &model.ClassSession{Subject: "Extra", StartTime: at(mon, 9, 30), DurationHours: 1})
		var conflict *model.ConflictError
		require.True(t, errors.As(err, &conflict), "got %v", err)
		assert.Equal(t, model.EntityRef{Type: model.EntityWeeklySlot, ID: slot.ID}, conflict.Entity)
	})

	t.Run("override of template occurrence", func(t *testing.T) {
		slotID := slot.ID
		cs, err := env.classes.CreateOneOff(ctx, faculty.ID, &model.ClassSession{WeeklySlotID: &slotID, Subject: "Algorithms", StartTime: at(mon, 9, 0), DurationHours: 1})
		require.NoError(t, err)
		assert.Equal(t, &slotID, cs.WeeklySlotID)
	})

	t.Run("duration out of range", func(t *testing.T) {
		_, err := env.classes.CreateOneOff(ctx, faculty.ID, &model.ClassSession{StartTime: at(mon, 15, 0), DurationHours: 4})
		assert.ErrorIs(t, err, model.ErrInvalidInterval)
	})
}

func TestValidateAndCommit_Activities(t *testing.T) {
	env := newTestEnv(t, saturdayMorning)
	faculty := env.addUser(t, model.RoleFaculty)
	other := env.addUser(t, model.RoleFaculty)
	student := env.addUser(t, model.RoleStudent)
	thu := mustDate(t, "2025-03-06")
	ctx := context.Background()

	meeting := env.addMeeting(t, faculty.ID, student.ID, at(thu, 10, 0), 60, model.MeetingStatusApproved)

	_, err := env.activities.Create(ctx, faculty.ID, &model.Activity{Title: "Seminar", StartTime: at(thu, 10, 30), EndTime: at(thu, 12, 0)})
	var conflict *model.ConflictError
	require.True(t, errors.As(err, &conflict), "got %v", err)
	assert.Equal(t, meeting.Ref(), conflict.Entity)

	seminar, err := env.activities.Create(ctx, faculty.ID, &model.Activity{Title: "Seminar", StartTime: at(thu, 11, 0), EndTime: at(thu, 12, 0)})
	require.NoError(t, err)

	seminar.StartTime, seminar.EndTime = at(thu, 11, 30), at(thu, 12, 30)
	updated, err := env.activities.Update(ctx, faculty.ID, seminar)
	require.NoError(t, err)
	assert.Equal(t, at(thu, 11, 30), updated.StartTime)

	seminar.StartTime = at(thu, 10, 45)
	_, err = env.activities.Update(ctx, faculty.ID, seminar)
	assert.ErrorIs(t, err, model.ErrConflict)

	assert.ErrorIs(t, env.activities.Delete(ctx, other.ID, seminar.ID), model.ErrForbidden)
	require.NoError(t, env.activities.Delete(ctx, faculty.ID, seminar.ID))
	assert.ErrorIs(t, env.activities.Delete(ctx, faculty.ID, seminar.ID), model.ErrNotFound)

	list, err := env.activities.List(ctx, faculty.ID, model.DateRange{From: thu, To: thu})
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestStaleStateReportedAsTransition(t *testing.T) {
	err := staleAsTransition(model.ErrStaleState)
	assert.ErrorIs(t, err, model.ErrInvalidTransition)
	assert.ErrorIs(t, err, model.ErrStaleState)

	other := errors.New("boom")
	assert.Equal(t, other, staleAsTransition(other))
}
