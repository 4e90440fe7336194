package model

import (
	"time"
)

type Registration struct {
	ID          string     `json:"id"`
	UserID      string     `json:"user_id"`
	EventID     string     `json:"event_id"`
	CheckedIn   bool       `json:"checked_in"`
	CheckedInAt *time.Time `json:"checked_in_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

// UserRegistration is a registration joined with its event, as returned to the
// owning user.
type UserRegistration struct {
	Registration
	Event EventSummary `json:"event"`
}

// EventRegistration is a registration joined with the registrant, as returned
// to admins listing an event's attendees.
type EventRegistration struct {
	Registration
	UserFirstName string `json:"user_first_name"`
	UserLastName  string `json:"user_last_name"`
	UserEmail     string `json:"user_email"`
}
