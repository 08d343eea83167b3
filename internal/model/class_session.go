package model

import (
	"time"

	"github.com/google/uuid"
)

type ClassStatus string

const (
	ClassStatusScheduled   ClassStatus = "scheduled"
	ClassStatusCompleted   ClassStatus = "completed"
	ClassStatusCancelled   ClassStatus = "cancelled"
	ClassStatusRescheduled ClassStatus = "rescheduled"
)

type ClassEvent string

const (
	ClassEventComplete   ClassEvent = "complete"
	ClassEventCancel     ClassEvent = "cancel"
	ClassEventReschedule ClassEvent = "reschedule"
)

var classTransitions = map[ClassStatus]map[ClassEvent]ClassStatus{
	ClassStatusScheduled: {
		ClassEventComplete:   ClassStatusCompleted,
		ClassEventCancel:     ClassStatusCancelled,
		ClassEventReschedule: ClassStatusRescheduled,
	},
}

// Apply returns the status reached from s through ev.
func (s ClassStatus) Apply(ev ClassEvent) (ClassStatus, error) {
	next, ok := classTransitions[s][ev]
	if !ok {
		return s, &TransitionError{Entity: EntityClassSession, From: string(s), Event: string(ev)}
	}
	return next, nil
}

func (s ClassStatus) IsTerminal() bool {
	return s == ClassStatusCompleted || s == ClassStatusCancelled
}

func (s ClassStatus) Valid() bool {
	switch s {
	case ClassStatusScheduled, ClassStatusCompleted, ClassStatusCancelled, ClassStatusRescheduled:
		return true
	}
	return false
}

// ClassSession is a concrete, dated class. Sessions generated from a
// WeeklySlot carry its ID and take precedence over the template on their date.
type ClassSession struct {
	ID            int64       `json:"id"`
	FacultyID     int64       `json:"faculty_id"`
	WeeklySlotID  *int64      `json:"weekly_slot_id"`
	GroupID       uuid.UUID   `json:"group_id"`
	Subject       string      `json:"subject"`
	StartTime     time.Time   `json:"start_time"`
	DurationHours int         `json:"duration_hours"`
	Status        ClassStatus `json:"status"`
	RescheduledTo *time.Time  `json:"rescheduled_to"`
	Topic         string      `json:"topic"`
	Notes         string      `json:"notes"`
	CreatedAt     time.Time   `json:"created_at"`
	UpdatedAt     time.Time   `json:"updated_at"`
}

func (c *ClassSession) Duration() time.Duration {
	return time.Duration(c.DurationHours) * time.Hour
}

// Interval is the originally scheduled span.
func (c *ClassSession) Interval() TimeInterval {
	return TimeInterval{Start: c.StartTime, End: c.StartTime.Add(c.Duration())}
}

// BusyInterval returns the span the session currently occupies, if any.
// Cancelled and completed sessions occupy nothing going forward; a
// rescheduled session occupies its destination only.
func (c *ClassSession) BusyInterval() (TimeInterval, bool) {
	switch c.Status {
	case ClassStatusScheduled:
		return c.Interval(), true
	case ClassStatusRescheduled:
		if c.RescheduledTo == nil {
			return TimeInterval{}, false
		}
		return TimeInterval{Start: *c.RescheduledTo, End: c.RescheduledTo.Add(c.Duration())}, true
	}
	return TimeInterval{}, false
}

// HeldInterval returns the span the session takes place in, including
// completed ones. Cancelled sessions are never held.
func (c *ClassSession) HeldInterval() (TimeInterval, bool) {
	if c.Status == ClassStatusCompleted {
		return c.Interval(), true
	}
	return c.BusyInterval()
}

func (c *ClassSession) Ref() EntityRef {
	return EntityRef{Type: EntityClassSession, ID: c.ID}
}
