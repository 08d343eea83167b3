package availability

import (
	"fmt"
	"sort"
	"time"

	"github.com/Freeeeeet/faculty_scheduler/internal/model"
)

// BusyEntry is one busy interval together with the entity that produced it.
type BusyEntry struct {
	Source   model.EntityRef
	Interval model.TimeInterval
}

// DayTimeline is the busy time of one faculty member on one date.
type DayTimeline struct {
	Date    model.Date
	Start   time.Time // local midnight
	End     time.Time // next local midnight
	Holiday *model.Holiday
	Busy    *IntervalSet
	Entries []BusyEntry
}

func (d *DayTimeline) IsHoliday() bool {
	return d.Holiday != nil
}

// Timeline maps each date of a range to its busy intervals.
type Timeline struct {
	FacultyID int64
	Range     model.DateRange
	loc       *time.Location
	days      map[model.Date]*DayTimeline
}

// Day returns the timeline of d, or false when d is outside the range.
func (t *Timeline) Day(d model.Date) (*DayTimeline, bool) {
	day, ok := t.days[d]
	return day, ok
}

// Days returns the day timelines in date order.
func (t *Timeline) Days() []*DayTimeline {
	days := make([]*DayTimeline, 0, len(t.days))
	for _, d := range t.Range.Days() {
		days = append(days, t.days[d])
	}
	return days
}

func (t *Timeline) Location() *time.Location {
	return t.loc
}

// TimelineInputs is everything a timeline is built from, already fetched for
// one faculty member.
type TimelineInputs struct {
	FacultyID     int64
	WeeklySlots   []*model.WeeklySlot
	ClassSessions []*model.ClassSession
	Meetings      []*model.MeetingRequest
	Activities    []*model.Activity
	Holidays      []*model.Holiday
}

type occurrenceKey struct {
	slotID int64
	date   model.Date
}

type wallClockKey struct {
	date   model.Date
	hour   int
	minute int
}

// BuildTimeline aggregates the inputs into one busy set per date of rng.
//
// A dated class session overrides the weekly template occurrence it was
// generated from (matched by slot ID, or by date and start time for sessions
// without one), so a cancelled or rescheduled session frees its template
// time. Holiday dates are busy for the whole day regardless of bookings.
func BuildTimeline(in TimelineInputs, rng model.DateRange, loc *time.Location) (*Timeline, error) {
	if err := rng.Validate(); err != nil {
		return nil, err
	}

	calendar := NewHolidayCalendar(in.Holidays)
	t := &Timeline{
		FacultyID: in.FacultyID,
		Range:     rng,
		loc:       loc,
		days:      make(map[model.Date]*DayTimeline, rng.Len()),
	}
	for _, d := range rng.Days() {
		start, end := d.In(loc), d.AddDays(1).In(loc)
		day := &DayTimeline{Date: d, Start: start, End: end, Busy: &IntervalSet{}}
		if h, ok := calendar.HolidayOn(d); ok {
			full := model.TimeInterval{Start: start, End: end}
			day.Holiday = h
			day.Busy, _ = NewIntervalSet(full)
			day.Entries = []BusyEntry{{Source: h.Ref(), Interval: full}}
		}
		t.days[d] = day
	}

	overridden := make(map[occurrenceKey]bool)
	overriddenWallClock := make(map[wallClockKey]bool)
	for _, cs := range in.ClassSessions {
		start := cs.StartTime.In(loc)
		date := model.DateOf(start)
		if cs.WeeklySlotID != nil {
			overridden[occurrenceKey{slotID: *cs.WeeklySlotID, date: date}] = true
		}
		overriddenWallClock[wallClockKey{date: date, hour: start.Hour(), minute: start.Minute()}] = true
	}

	occurrences, err := Expand(in.WeeklySlots, rng, in.Holidays, loc)
	if err != nil {
		return nil, fmt.Errorf("expand weekly slots: %w", err)
	}
	for _, occ := range occurrences {
		start := occ.Interval.Start
		if overridden[occurrenceKey{slotID: occ.SlotID, date: occ.Date}] ||
			overriddenWallClock[wallClockKey{date: occ.Date, hour: start.Hour(), minute: start.Minute()}] {
			continue
		}
		if err := t.add(occ.Ref(), occ.Interval); err != nil {
			return nil, err
		}
	}

	for _, cs := range in.ClassSessions {
		iv, busy := cs.BusyInterval()
		if !busy {
			continue
		}
		if err := t.add(cs.Ref(), iv); err != nil {
			return nil, err
		}
	}

	for _, m := range in.Meetings {
		if !m.Status.OccupiesTime() {
			continue
		}
		if err := t.add(m.Ref(), m.Interval()); err != nil {
			return nil, err
		}
	}

	for _, a := range in.Activities {
		if err := t.add(a.Ref(), a.Interval()); err != nil {
			return nil, err
		}
	}

	for _, day := range t.days {
		sortEntries(day.Entries)
	}
	return t, nil
}

// add records iv for ref on every non-holiday date of the range it touches.
func (t *Timeline) add(ref model.EntityRef, iv model.TimeInterval) error {
	if err := iv.Validate(); err != nil {
		return fmt.Errorf("%s: %w", ref, err)
	}
	for _, piece := range splitByDay(iv, t.loc) {
		day, ok := t.days[model.DateOf(piece.Start)]
		if !ok || day.IsHoliday() {
			continue
		}
		if err := day.Busy.Add(piece); err != nil {
			return fmt.Errorf("%s: %w", ref, err)
		}
		day.Entries = append(day.Entries, BusyEntry{Source: ref, Interval: piece})
	}
	return nil
}

// splitByDay cuts iv at every local midnight it crosses.
func splitByDay(iv model.TimeInterval, loc *time.Location) []model.TimeInterval {
	var pieces []model.TimeInterval
	cur := iv.Start.In(loc)
	end := iv.End.In(loc)
	for cur.Before(end) {
		next := model.DateOf(cur).AddDays(1).In(loc)
		if next.After(end) {
			next = end
		}
		pieces = append(pieces, model.TimeInterval{Start: cur, End: next})
		cur = next
	}
	return pieces
}

func sortEntries(entries []BusyEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if !a.Interval.Start.Equal(b.Interval.Start) {
			return a.Interval.Start.Before(b.Interval.Start)
		}
		if a.Source.Type != b.Source.Type {
			return a.Source.Type < b.Source.Type
		}
		return a.Source.ID < b.Source.ID
	})
}
