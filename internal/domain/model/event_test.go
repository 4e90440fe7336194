package model

import (
	"testing"
	"time"
)

func TestEventStatusAt(t *testing.T) {
	start := time.Date(2025, 6, 1, 18, 0, 0, 0, time.UTC)
	end := start.Add(2 * time.Hour)

	tests := []struct {
		name   string
		endsAt *time.Time
		now    time.Time
		want   EventStatus
	}{
		{"before start", &end, start.Add(-time.Minute), StatusUpcoming},
		{"at start", &end, start, StatusActive},
		{"between start and end", &end, start.Add(time.Hour), StatusActive},
		{"at end", &end, end, StatusActive},
		{"after end", &end, end.Add(time.Second), StatusPast},
		{"no end, before start", nil, start.Add(-time.Hour), StatusUpcoming},
		{"no end, at start", nil, start, StatusActive},
		{"no end, after start", nil, start.Add(time.Second), StatusPast},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			event := Event{StartsAt: start, EndsAt: tt.endsAt}
			if got := event.StatusAt(tt.now); got != tt.want {
				t.Fatalf("StatusAt(%v) = %s, want %s", tt.now, got, tt.want)
			}

			summary := EventSummary{StartsAt: start, EndsAt: tt.endsAt}
			if got := summary.StatusAt(tt.now); got != tt.want {
				t.Fatalf("summary StatusAt(%v) = %s, want %s", tt.now, got, tt.want)
			}
		})
	}
}
