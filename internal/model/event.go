package model

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type EventType string

const (
	EventMeetingRequested  EventType = "meeting_requested"
	EventMeetingApproved   EventType = "meeting_approved"
	EventMeetingRejected   EventType = "meeting_rejected"
	EventMeetingCancelled  EventType = "meeting_cancelled"
	EventClassCancelled    EventType = "class_cancelled"
	EventClassRescheduled  EventType = "class_rescheduled"
	EventClassCreated      EventType = "class_created"
	EventSessionsGenerated EventType = "sessions_generated"
)

// Event is an outbox record written in the same transaction as the mutation it describes.
type Event struct {
	ID          uuid.UUID       `json:"id"`
	Type        EventType       `json:"type"`
	Payload     json.RawMessage `json:"payload"`
	CreatedAt   time.Time       `json:"created_at"`
	PublishedAt *time.Time      `json:"published_at"`
}

// NotificationPayload names who should hear about an event and what to tell them.
type NotificationPayload struct {
	Entity  EntityRef  `json:"entity"`
	UserIDs []int64    `json:"user_ids,omitempty"`
	GroupID *uuid.UUID `json:"group_id,omitempty"`
	Message string     `json:"message"`
}

// NewEvent builds an unpublished event with a marshalled payload.
func NewEvent(eventType EventType, payload NotificationPayload) (Event, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return Event{}, err
	}
	return Event{ID: uuid.New(), Type: eventType, Payload: raw}, nil
}

func (e Event) Notification() (NotificationPayload, error) {
	var p NotificationPayload
	err := json.Unmarshal(e.Payload, &p)
	return p, err
}
