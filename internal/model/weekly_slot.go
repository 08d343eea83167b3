package model

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

const (
	MinSlotHours = 1
	MaxSlotHours = 3
)

// WeeklySlot is one period of a faculty member's recurring weekly timetable.
// At most one slot exists per (faculty, weekday, start) key.
type WeeklySlot struct {
	ID            int64        `json:"id"`
	FacultyID     int64        `json:"faculty_id"`
	Weekday       time.Weekday `json:"weekday"`      // Monday..Saturday
	StartHour     int          `json:"start_hour"`   // 0-23
	StartMinute   int          `json:"start_minute"` // 0-59
	DurationHours int          `json:"duration_hours"`
	Subject       string       `json:"subject"`
	GroupID       uuid.UUID    `json:"group_id"` // student group attending the class
	CreatedAt     time.Time    `json:"created_at"`
	UpdatedAt     time.Time    `json:"updated_at"`
}

// Validate checks the template fields.
func (s *WeeklySlot) Validate() error {
	if s.Weekday < time.Monday || s.Weekday > time.Saturday {
		return fmt.Errorf("%w: weekday %s outside Monday..Saturday", ErrInvalidInterval, s.Weekday)
	}
	if s.StartHour < 0 || s.StartHour > 23 || s.StartMinute < 0 || s.StartMinute > 59 {
		return fmt.Errorf("%w: period start %02d:%02d", ErrInvalidInterval, s.StartHour, s.StartMinute)
	}
	if s.DurationHours < MinSlotHours || s.DurationHours > MaxSlotHours {
		return fmt.Errorf("%w: duration %dh outside %d..%d", ErrInvalidInterval, s.DurationHours, MinSlotHours, MaxSlotHours)
	}
	return nil
}

// Key returns the template identity used for last-write-wins upserts.
func (s *WeeklySlot) Key() WeeklySlotKey {
	return WeeklySlotKey{Weekday: s.Weekday, StartHour: s.StartHour, StartMinute: s.StartMinute}
}

// Occurrence returns the concrete interval of the slot on date d.
func (s *WeeklySlot) Occurrence(d Date, loc *time.Location) TimeInterval {
	start := d.At(s.StartHour, s.StartMinute, loc)
	return TimeInterval{Start: start, End: start.Add(time.Duration(s.DurationHours) * time.Hour)}
}

type WeeklySlotKey struct {
	Weekday     time.Weekday
	StartHour   int
	StartMinute int
}
