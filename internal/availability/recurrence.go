package availability

import (
	"fmt"
	"sort"
	"time"

	"github.com/Freeeeeet/faculty_scheduler/internal/model"
)

// Occurrence is a weekly slot placed on a concrete date.
type Occurrence struct {
	Date     model.Date
	SlotID   int64
	Interval model.TimeInterval
}

func (o Occurrence) Ref() model.EntityRef {
	return model.EntityRef{Type: model.EntityWeeklySlot, ID: o.SlotID}
}

// HolidayCalendar answers whether a date is a holiday.
type HolidayCalendar struct {
	exact     map[model.Date]*model.Holiday
	recurring map[monthDay]*model.Holiday
}

type monthDay struct {
	month time.Month
	day   int
}

// NewHolidayCalendar indexes holidays; the first holiday listed for a date wins.
func NewHolidayCalendar(holidays []*model.Holiday) *HolidayCalendar {
	c := &HolidayCalendar{
		exact:     make(map[model.Date]*model.Holiday),
		recurring: make(map[monthDay]*model.Holiday),
	}
	for _, h := range holidays {
		if h.IsRecurring {
			key := monthDay{month: h.Date.Month, day: h.Date.Day}
			if _, ok := c.recurring[key]; !ok {
				c.recurring[key] = h
			}
			continue
		}
		if _, ok := c.exact[h.Date]; !ok {
			c.exact[h.Date] = h
		}
	}
	return c
}

// HolidayOn returns the holiday falling on d, exact dates first.
func (c *HolidayCalendar) HolidayOn(d model.Date) (*model.Holiday, bool) {
	if h, ok := c.exact[d]; ok {
		return h, true
	}
	h, ok := c.recurring[monthDay{month: d.Month, day: d.Day}]
	return h, ok
}

// Expand places every weekly slot on each matching date of rng, skipping
// holidays. The result is ordered by date, then start time. When two slots
// share a (weekday, start) key the later one in slots wins.
func Expand(slots []*model.WeeklySlot, rng model.DateRange, holidays []*model.Holiday, loc *time.Location) ([]Occurrence, error) {
	if err := rng.Validate(); err != nil {
		return nil, err
	}

	byWeekday, err := templatesByWeekday(slots)
	if err != nil {
		return nil, err
	}

	calendar := NewHolidayCalendar(holidays)
	var occurrences []Occurrence
	for _, d := range rng.Days() {
		if _, ok := calendar.HolidayOn(d); ok {
			continue
		}
		for _, slot := range byWeekday[d.Weekday()] {
			occurrences = append(occurrences, Occurrence{
				Date:     d,
				SlotID:   slot.ID,
				Interval: slot.Occurrence(d, loc),
			})
		}
	}
	return occurrences, nil
}

func templatesByWeekday(slots []*model.WeeklySlot) (map[time.Weekday][]*model.WeeklySlot, error) {
	latest := make(map[model.WeeklySlotKey]*model.WeeklySlot, len(slots))
	for _, slot := range slots {
		if err := slot.Validate(); err != nil {
			return nil, fmt.Errorf("weekly slot %d: %w", slot.ID, err)
		}
		latest[slot.Key()] = slot
	}

	byWeekday := make(map[time.Weekday][]*model.WeeklySlot)
	for _, slot := range latest {
		byWeekday[slot.Weekday] = append(byWeekday[slot.Weekday], slot)
	}
	for _, daySlots := range byWeekday {
		sort.Slice(daySlots, func(i, j int) bool {
			a, b := daySlots[i], daySlots[j]
			if a.StartHour != b.StartHour {
				return a.StartHour < b.StartHour
			}
			return a.StartMinute < b.StartMinute
		})
	}
	return byWeekday, nil
}
