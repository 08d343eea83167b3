package model

import "fmt"

type EntityType string

const (
	EntityWeeklySlot     EntityType = "weekly_slot"
	EntityClassSession   EntityType = "class_session"
	EntityMeetingRequest EntityType = "meeting_request"
	EntityActivity       EntityType = "activity"
	EntityHoliday        EntityType = "holiday"
)

// EntityRef identifies the entity that produced a busy interval.
type EntityRef struct {
	Type EntityType `json:"type"`
	ID   int64      `json:"id"`
}

func (r EntityRef) String() string {
	return fmt.Sprintf("%s #%d", r.Type, r.ID)
}
