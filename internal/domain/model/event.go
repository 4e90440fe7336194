package model

import (
	"time"
)

type EventStatus string

const (
	StatusUpcoming EventStatus = "upcoming"
	StatusActive   EventStatus = "active"
	StatusPast     EventStatus = "past"
)

const DefaultEventCapacity = 50

type Event struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Slug        string     `json:"slug"`
	Description string     `json:"description"`
	Location    string     `json:"location"`
	StartsAt    time.Time  `json:"starts_at"`
	EndsAt      *time.Time `json:"ends_at,omitempty"` // Some events only track a single instant
	Capacity    int        `json:"capacity"`
	ImageURL    *string    `json:"image_url,omitempty"`
	CreatedByID *string    `json:"created_by_id,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`

	// Status is derived from the clock at read time, never stored.
	Status EventStatus `json:"status,omitempty"`
	// Registered is the current registration count, filled on detail/list reads.
	Registered int `json:"registered"`
}

// StatusAt derives the event's temporal status relative to now. An event
// without an end time is treated as ending at its start instant.
func (e *Event) StatusAt(now time.Time) EventStatus {
	if now.Before(e.StartsAt) {
		return StatusUpcoming
	}
	end := e.StartsAt
	if e.EndsAt != nil {
		end = *e.EndsAt
	}
	if now.After(end) {
		return StatusPast
	}
	return StatusActive
}

// EventSummary is the slice of an event joined onto registration listings.
type EventSummary struct {
	ID       string      `json:"id"`
	Title    string      `json:"title"`
	Slug     string      `json:"slug"`
	Location string      `json:"location"`
	StartsAt time.Time   `json:"starts_at"`
	EndsAt   *time.Time  `json:"ends_at,omitempty"`
	Status   EventStatus `json:"status,omitempty"`
}

func (e *EventSummary) StatusAt(now time.Time) EventStatus {
	full := Event{StartsAt: e.StartsAt, EndsAt: e.EndsAt}
	return full.StatusAt(now)
}
