package availability

import (
	"context"
	"fmt"
	"time"

	"github.com/Freeeeeet/faculty_scheduler/internal/model"
)

// Source fetches the entities a timeline is built from. Implementations must
// return fresh data on every call.
type Source interface {
	FetchWeeklySlots(ctx context.Context, facultyID int64) ([]*model.WeeklySlot, error)
	// FetchClassSessions returns sessions whose original or rescheduled
	// interval overlaps [from, to).
	FetchClassSessions(ctx context.Context, facultyID int64, from, to time.Time) ([]*model.ClassSession, error)
	// FetchApprovedMeetings returns approved and completed meetings overlapping [from, to).
	FetchApprovedMeetings(ctx context.Context, facultyID int64, from, to time.Time) ([]*model.MeetingRequest, error)
	FetchActivities(ctx context.Context, facultyID int64, from, to time.Time) ([]*model.Activity, error)
	// FetchHolidays returns exact holidays inside the range and every recurring holiday.
	FetchHolidays(ctx context.Context, rng model.DateRange) ([]*model.Holiday, error)
}

// TimelineBuilder builds timelines from a Source.
type TimelineBuilder struct {
	src Source
	loc *time.Location
}

func NewTimelineBuilder(src Source, loc *time.Location) *TimelineBuilder {
	return &TimelineBuilder{src: src, loc: loc}
}

func (b *TimelineBuilder) Location() *time.Location {
	return b.loc
}

// Build fetches the faculty's entities for rng and aggregates them.
func (b *TimelineBuilder) Build(ctx context.Context, facultyID int64, rng model.DateRange) (*Timeline, error) {
	if err := rng.Validate(); err != nil {
		return nil, err
	}
	from, to := rng.Bounds(b.loc)

	in := TimelineInputs{FacultyID: facultyID}
	var err error

	if in.WeeklySlots, err = b.src.FetchWeeklySlots(ctx, facultyID); err != nil {
		return nil, fmt.Errorf("fetch weekly slots: %w", err)
	}
	if in.ClassSessions, err = b.src.FetchClassSessions(ctx, facultyID, from, to); err != nil {
		return nil, fmt.Errorf("fetch class sessions: %w", err)
	}
	if in.Meetings, err = b.src.FetchApprovedMeetings(ctx, facultyID, from, to); err != nil {
		return nil, fmt.Errorf("fetch approved meetings: %w", err)
	}
	if in.Activities, err = b.src.FetchActivities(ctx, facultyID, from, to); err != nil {
		return nil, fmt.Errorf("fetch activities: %w", err)
	}
	if in.Holidays, err = b.src.FetchHolidays(ctx, rng); err != nil {
		return nil, fmt.Errorf("fetch holidays: %w", err)
	}

	return BuildTimeline(in, rng, b.loc)
}
