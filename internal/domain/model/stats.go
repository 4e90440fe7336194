package model

// PopularEvent is the event with the most registrations. Absent from stats
// responses when no registrations exist at all.
type PopularEvent struct {
	Event         EventSummary `json:"event"`
	Registrations int          `json:"registrations"`
}

// RecentRegistration is a registration joined with both its user and event,
// for the admin dashboard feed.
type RecentRegistration struct {
	Registration
	UserFirstName string       `json:"user_first_name"`
	UserLastName  string       `json:"user_last_name"`
	UserEmail     string       `json:"user_email"`
	Event         EventSummary `json:"event"`
}

type Stats struct {
	TotalUsers          int                  `json:"total_users"`
	TotalEvents         int                  `json:"total_events"`
	TotalRegistrations  int                  `json:"total_registrations"`
	CheckInRate         int                  `json:"check_in_rate"` // percentage, rounded
	UpcomingEvents      int                  `json:"upcoming_events"`
	ActiveEvents        int                  `json:"active_events"`
	PastEvents          int                  `json:"past_events"`
	MostPopularEvent    *PopularEvent        `json:"most_popular_event,omitempty"`
	RecentRegistrations []RecentRegistration `json:"recent_registrations"`
}
