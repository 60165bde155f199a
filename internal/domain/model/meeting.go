package model

import "time"

// DateLayout is the calendar-date format used in meeting IDs and records.
const DateLayout = "2006-01-02"

// Meeting is an immutable session record. It references participants by
// member ID only.
type Meeting struct {
	ID             string    `json:"id" validate:"required"`
	Title          string    `json:"title" validate:"required"`
	Date           string    `json:"date" validate:"required,datetime=2006-01-02"`
	ParticipantIDs []string  `json:"participantIds" validate:"dive,required"`
	CreatedAt      time.Time `json:"createdAt"`
}

// Summary is the short form of a meeting attached to computed views.
type Summary struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Date  string `json:"date"`
}

// Summary returns the meeting's identifying fields.
func (m Meeting) Summary() Summary {
	return Summary{ID: m.ID, Title: m.Title, Date: m.Date}
}
