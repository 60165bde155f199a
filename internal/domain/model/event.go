package model

import "time"

// EventType names a meeting lifecycle change. It doubles as the subject
// suffix when events are published.
type EventType string

const (
	EventMeetingCreated EventType = "meetings.created"
	EventMeetingDeleted EventType = "meetings.deleted"
)

// Event announces a meeting lifecycle change to outside consumers.
type Event struct {
	ID           string    `json:"id"`
	Type         EventType `json:"type"`
	MeetingID    string    `json:"meetingId"`
	Title        string    `json:"title,omitempty"`
	Date         string    `json:"date,omitempty"`
	Participants int       `json:"participants,omitempty"`
	OccurredAt   time.Time `json:"occurredAt"`
}
