package availability

import (
	"sort"
	"time"

	"github.com/Freeeeeet/faculty_scheduler/internal/model"
)

// IntervalSet is a sorted sequence of disjoint, non-touching intervals.
// The zero value is an empty set ready to use.
type IntervalSet struct {
	intervals []model.TimeInterval
}

// NewIntervalSet returns a set holding the union of ivs.
func NewIntervalSet(ivs ...model.TimeInterval) (*IntervalSet, error) {
	s := &IntervalSet{}
	for _, iv := range ivs {
		if err := s.Add(iv); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Add inserts iv and coalesces it with every member it overlaps or touches.
func (s *IntervalSet) Add(iv model.TimeInterval) error {
	if err := iv.Validate(); err != nil {
		return err
	}

	merged := iv
	out := make([]model.TimeInterval, 0, len(s.intervals)+1)
	inserted := false
	for _, cur := range s.intervals {
		switch {
		case cur.End.Before(merged.Start):
			out = append(out, cur)
		case merged.End.Before(cur.Start):
			if !inserted {
				out = append(out, merged)
				inserted = true
			}
			out = append(out, cur)
		default:
			merged = union(cur, merged)
		}
	}
	if !inserted {
		out = append(out, merged)
	}
	s.intervals = out
	return nil
}

// Subtract removes iv from the set, splitting members it partially covers.
func (s *IntervalSet) Subtract(iv model.TimeInterval) error {
	if err := iv.Validate(); err != nil {
		return err
	}

	out := make([]model.TimeInterval, 0, len(s.intervals)+1)
	for _, cur := range s.intervals {
		if !cur.Overlaps(iv) {
			out = append(out, cur)
			continue
		}
		if cur.Start.Before(iv.Start) {
			out = append(out, model.TimeInterval{Start: cur.Start, End: iv.Start})
		}
		if iv.End.Before(cur.End) {
			out = append(out, model.TimeInterval{Start: iv.End, End: cur.End})
		}
	}
	s.intervals = out
	return nil
}

// FreeWithinDayBounds returns the complement of the set inside [dayStart, dayEnd).
func (s *IntervalSet) FreeWithinDayBounds(dayStart, dayEnd time.Time) ([]model.TimeInterval, error) {
	if _, err := model.NewTimeInterval(dayStart, dayEnd); err != nil {
		return nil, err
	}

	var free []model.TimeInterval
	cursor := dayStart
	for _, cur := range s.intervals {
		if !cur.End.After(dayStart) {
			continue
		}
		if !cur.Start.Before(dayEnd) {
			break
		}
		if cur.Start.After(cursor) {
			free = append(free, model.TimeInterval{Start: cursor, End: cur.Start})
		}
		if cur.End.After(cursor) {
			cursor = cur.End
		}
	}
	if cursor.Before(dayEnd) {
		free = append(free, model.TimeInterval{Start: cursor, End: dayEnd})
	}
	return free, nil
}

// Overlaps reports whether any member shares an instant with iv.
func (s *IntervalSet) Overlaps(iv model.TimeInterval) bool {
	i := sort.Search(len(s.intervals), func(i int) bool {
		return s.intervals[i].End.After(iv.Start)
	})
	return i < len(s.intervals) && s.intervals[i].Start.Before(iv.End)
}

// Intervals returns a copy of the members in order.
func (s *IntervalSet) Intervals() []model.TimeInterval {
	out := make([]model.TimeInterval, len(s.intervals))
	copy(out, s.intervals)
	return out
}

// Covered returns the total duration of the members.
func (s *IntervalSet) Covered() time.Duration {
	var total time.Duration
	for _, iv := range s.intervals {
		total += iv.Duration()
	}
	return total
}

func (s *IntervalSet) Len() int {
	return len(s.intervals)
}

func union(a, b model.TimeInterval) model.TimeInterval {
	out := a
	if b.Start.Before(out.Start) {
		out.Start = b.Start
	}
	if b.End.After(out.End) {
		out.End = b.End
	}
	return out
}
