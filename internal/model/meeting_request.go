package model

import (
	"fmt"
	"time"
)

type MeetingStatus string

const (
	MeetingStatusPending   MeetingStatus = "pending"   // ждёт ответа преподавателя
	MeetingStatusApproved  MeetingStatus = "approved"  // подтверждена
	MeetingStatusRejected  MeetingStatus = "rejected"  // отклонена преподавателем
	MeetingStatusCompleted MeetingStatus = "completed" // состоялась
	MeetingStatusCancelled MeetingStatus = "cancelled" // отменена студентом
)

type MeetingEvent string

const (
	MeetingEventApprove  MeetingEvent = "approve"
	MeetingEventReject   MeetingEvent = "reject"
	MeetingEventComplete MeetingEvent = "complete"
	MeetingEventCancel   MeetingEvent = "cancel"
)

var meetingTransitions = map[MeetingStatus]map[MeetingEvent]MeetingStatus{
	MeetingStatusPending: {
		MeetingEventApprove: MeetingStatusApproved,
		MeetingEventReject:  MeetingStatusRejected,
		MeetingEventCancel:  MeetingStatusCancelled,
	},
	MeetingStatusApproved: {
		MeetingEventComplete: MeetingStatusCompleted,
	},
}

// Apply returns the status reached from s through ev.
func (s MeetingStatus) Apply(ev MeetingEvent) (MeetingStatus, error) {
	next, ok := meetingTransitions[s][ev]
	if !ok {
		return s, &TransitionError{Entity: EntityMeetingRequest, From: string(s), Event: string(ev)}
	}
	return next, nil
}

// OccupiesTime reports whether a meeting in this status blocks the faculty's time.
func (s MeetingStatus) OccupiesTime() bool {
	return s == MeetingStatusApproved || s == MeetingStatusCompleted
}

func (s MeetingStatus) IsTerminal() bool {
	return s == MeetingStatusCompleted || s == MeetingStatusCancelled || s == MeetingStatusRejected
}

// AllowedMeetingDurations lists the durations a meeting may be requested for, in minutes.
var AllowedMeetingDurations = []int{15, 30, 45, 60}

func ValidateMeetingDuration(minutes int) error {
	for _, d := range AllowedMeetingDurations {
		if d == minutes {
			return nil
		}
	}
	return fmt.Errorf("%w: meeting duration %d minutes, allowed %v", ErrInvalidInterval, minutes, AllowedMeetingDurations)
}

type MeetingRequest struct {
	ID              int64         `json:"id"`
	FacultyID       int64         `json:"faculty_id"`
	StudentID       int64         `json:"student_id"`
	PreferredTime   time.Time     `json:"preferred_time"`
	DurationMinutes int           `json:"duration_minutes"`
	Purpose         string        `json:"purpose"`
	Status          MeetingStatus `json:"status"`
	ResponseMessage string        `json:"response_message"`
	CreatedAt       time.Time     `json:"created_at"`
	UpdatedAt       time.Time     `json:"updated_at"`
}

func (m *MeetingRequest) Interval() TimeInterval {
	return TimeInterval{
		Start: m.PreferredTime,
		End:   m.PreferredTime.Add(time.Duration(m.DurationMinutes) * time.Minute),
	}
}

func (m *MeetingRequest) Ref() EntityRef {
	return EntityRef{Type: EntityMeetingRequest, ID: m.ID}
}
