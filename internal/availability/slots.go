package availability

import (
	"fmt"
	"time"

	"github.com/Freeeeeet/faculty_scheduler/internal/model"
)

// DefaultStep is the granularity at which candidate start times are offered.
const DefaultStep = 15 * time.Minute

// Slot is a free candidate meeting interval.
type Slot struct {
	Date  model.Date `json:"date"`
	Start time.Time  `json:"start"`
	End   time.Time  `json:"end"`
}

func (s Slot) Interval() model.TimeInterval {
	return model.TimeInterval{Start: s.Start, End: s.End}
}

// SlotOptions controls slot generation. WindowStart and WindowEnd are offsets
// from local midnight bounding the offered hours of each day.
type SlotOptions struct {
	Duration    time.Duration
	Step        time.Duration
	WindowStart time.Duration
	WindowEnd   time.Duration
}

// DefaultSlotOptions offers slots of the given length between 09:00 and 17:00,
// stepping 15 minutes between candidate starts.
func DefaultSlotOptions(duration time.Duration) SlotOptions {
	return SlotOptions{
		Duration:    duration,
		Step:        DefaultStep,
		WindowStart: 9 * time.Hour,
		WindowEnd:   17 * time.Hour,
	}
}

func (o SlotOptions) Validate() error {
	if o.Duration <= 0 {
		return fmt.Errorf("%w: slot duration %s", model.ErrInvalidInterval, o.Duration)
	}
	if o.Step <= 0 {
		return fmt.Errorf("%w: slot step %s", model.ErrInvalidInterval, o.Step)
	}
	if o.WindowStart < 0 || o.WindowEnd > 24*time.Hour || o.WindowStart >= o.WindowEnd {
		return fmt.Errorf("%w: day window %s-%s", model.ErrInvalidInterval, o.WindowStart, o.WindowEnd)
	}
	return nil
}

// GenerateSlots concatenates the slots of every day of the timeline.
func GenerateSlots(tl *Timeline, opts SlotOptions) ([]Slot, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	var slots []Slot
	for _, day := range tl.Days() {
		daySlots, err := GenerateDaySlots(day, opts, tl.loc)
		if err != nil {
			return nil, err
		}
		slots = append(slots, daySlots...)
	}
	return slots, nil
}

// GenerateDaySlots walks each free interval of the day window from its start
// and emits a slot wherever the whole duration fits. Starts advance by the
// step, so consecutive slots may overlap each other.
func GenerateDaySlots(day *DayTimeline, opts SlotOptions, loc *time.Location) ([]Slot, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	windowStart := atOffset(day.Date, opts.WindowStart, loc)
	windowEnd := atOffset(day.Date, opts.WindowEnd, loc)
	free, err := day.Busy.FreeWithinDayBounds(windowStart, windowEnd)
	if err != nil {
		return nil, err
	}

	var slots []Slot
	for _, iv := range free {
		for cursor := iv.Start; !cursor.Add(opts.Duration).After(iv.End); cursor = cursor.Add(opts.Step) {
			slots = append(slots, Slot{Date: day.Date, Start: cursor, End: cursor.Add(opts.Duration)})
		}
	}
	return slots, nil
}

// atOffset returns the wall-clock time offset after midnight of d.
func atOffset(d model.Date, offset time.Duration, loc *time.Location) time.Time {
	if offset >= 24*time.Hour {
		return d.AddDays(1).In(loc)
	}
	hours := int(offset / time.Hour)
	minutes := int(offset % time.Hour / time.Minute)
	return d.At(hours, minutes, loc)
}
