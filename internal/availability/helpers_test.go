package availability

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Freeeeeet/faculty_scheduler/internal/model"
)

func mustDate(t *testing.T, s string) model.Date {
	t.Helper()
	d, err := model.ParseDate(s)
	require.NoError(t, err)
	return d
}

func clock(d model.Date, hour, minute int) time.Time {
	return d.At(hour, minute, time.UTC)
}

func span(d model.Date, fromH, fromM, toH, toM int) model.TimeInterval {
	return model.TimeInterval{Start: clock(d, fromH, fromM), End: clock(d, toH, toM)}
}

func int64Ptr(v int64) *int64 {
	return &v
}

func timePtr(t time.Time) *time.Time {
	return &t
}

// staticSource serves fixed entities, filtering them the way a store would.
type staticSource struct {
	in TimelineInputs
}

func (s *staticSource) FetchWeeklySlots(_ context.Context, facultyID int64) ([]*model.WeeklySlot, error) {
	var out []*model.WeeklySlot
	for _, ws := range s.in.WeeklySlots {
		if ws.FacultyID == facultyID {
			out = append(out, ws)
		}
	}
	return out, nil
}

func (s *staticSource) FetchClassSessions(_ context.Context, facultyID int64, from, to time.Time) ([]*model.ClassSession, error) {
	window := model.TimeInterval{Start: from, End: to}
	var out []*model.ClassSession
	for _, cs := range s.in.ClassSessions {
		if cs.FacultyID != facultyID {
			continue
		}
		busy, ok := cs.BusyInterval()
		if cs.Interval().Overlaps(window) || (ok && busy.Overlaps(window)) {
			out = append(out, cs)
		}
	}
	return out, nil
}

func (s *staticSource) FetchApprovedMeetings(_ context.Context, facultyID int64, from, to time.Time) ([]*model.MeetingRequest, error) {
	window := model.TimeInterval{Start: from, End: to}
	var out []*model.MeetingRequest
	for _, m := range s.in.Meetings {
		if m.FacultyID == facultyID && m.Status.OccupiesTime() && m.Interval().Overlaps(window) {
			out = append(out, m)
		}
	}
	return out, nil
}

func (s *staticSource) FetchActivities(_ context.Context, facultyID int64, from, to time.Time) ([]*model.Activity, error) {
	window := model.TimeInterval{Start: from, End: to}
	var out []*model.Activity
	for _, a := range s.in.Activities {
		if a.FacultyID == facultyID && a.Interval().Overlaps(window) {
			out = append(out, a)
		}
	}
	return out, nil
}

func (s *staticSource) FetchHolidays(_ context.Context, rng model.DateRange) ([]*model.Holiday, error) {
	var out []*model.Holiday
	for _, h := range s.in.Holidays {
		if h.IsRecurring || rng.Contains(h.Date) {
			out = append(out, h)
		}
	}
	return out, nil
}
