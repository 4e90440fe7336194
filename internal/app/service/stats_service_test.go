package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"eventhub/internal/clock"
	"eventhub/internal/common"
	"eventhub/internal/domain/model"
)

func TestStatsService_Compute(t *testing.T) {
	ctx := context.Background()

	t.Run("non-admin is forbidden", func(t *testing.T) {
		svc := NewStatsService(newFakeUserRepo(), newFakeEventRepo(), newFakeRegRepo(), clock.NewFixed(testNow))
		if _, err := svc.Compute(ctx, userAlice); !errors.Is(err, common.ErrForbidden) {
			t.Fatalf("expected ErrForbidden, got %v", err)
		}
	})

	t.Run("empty state reports zeros and no popular event", func(t *testing.T) {
		svc := NewStatsService(newFakeUserRepo(), newFakeEventRepo(), newFakeRegRepo(), clock.NewFixed(testNow))
		stats, err := svc.Compute(ctx, adminIdent)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if stats.TotalUsers != 0 || stats.TotalEvents != 0 || stats.TotalRegistrations != 0 {
			t.Fatalf("expected zero totals, got %+v", stats)
		}
		if stats.CheckInRate != 0 {
			t.Fatalf("expected check-in rate 0, got %d", stats.CheckInRate)
		}
		if stats.MostPopularEvent != nil {
			t.Fatal("expected no popular event for empty state")
		}
	})

	t.Run("full fixture", func(t *testing.T) {
		// 3 events (one past, one active, one upcoming), 5 registrations
		// with 2 checked in: check-in rate 40%.
		past := pastEvent("old")
		past.CreatedAt = testNow.Add(-72 * time.Hour)

		active := upcomingEvent("live", 20)
		active.StartsAt = testNow.Add(-time.Hour)
		end := testNow.Add(time.Hour)
		active.EndsAt = &end
		active.CreatedAt = testNow.Add(-48 * time.Hour)

		soon := upcomingEvent("soon", 20)
		soon.CreatedAt = testNow.Add(-24 * time.Hour)

		users := []*model.User{
			{ID: "u1", FirstName: "Alice", LastName: "Rossi", Email: "alice@example.com"},
			{ID: "u2", FirstName: "Bruno", LastName: "Bianchi", Email: "bruno@example.com"},
			{ID: "u3", FirstName: "Carla", LastName: "Verdi", Email: "carla@example.com"},
		}

		regRepo := newFakeRegRepo()
		for _, e := range []*model.Event{past, active, soon} {
			regRepo.addEvent(e)
		}
		for _, u := range users {
			regRepo.addUser(u)
		}
		checkedAt := testNow.Add(-time.Hour)
		regs := []*model.Registration{
			{ID: "r1", UserID: "u1", EventID: "live", CheckedIn: true, CheckedInAt: &checkedAt, CreatedAt: testNow.Add(-5 * time.Hour)},
			{ID: "r2", UserID: "u2", EventID: "live", CheckedIn: true, CheckedInAt: &checkedAt, CreatedAt: testNow.Add(-4 * time.Hour)},
			{ID: "r3", UserID: "u3", EventID: "live", CreatedAt: testNow.Add(-3 * time.Hour)},
			{ID: "r4", UserID: "u1", EventID: "soon", CreatedAt: testNow.Add(-2 * time.Hour)},
			{ID: "r5", UserID: "u2", EventID: "soon", CreatedAt: testNow.Add(-time.Hour)},
		}
		for _, reg := range regs {
			regRepo.addRegistration(reg)
		}

		svc := NewStatsService(
			newFakeUserRepo(users...),
			newFakeEventRepo(past, active, soon),
			regRepo,
			clock.NewFixed(testNow),
		)

		stats, err := svc.Compute(ctx, adminIdent)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if stats.TotalUsers != 3 {
			t.Fatalf("expected 3 users, got %d", stats.TotalUsers)
		}
		if stats.TotalEvents != 3 {
			t.Fatalf("expected 3 events, got %d", stats.TotalEvents)
		}
		if stats.TotalRegistrations != 5 {
			t.Fatalf("expected 5 registrations, got %d", stats.TotalRegistrations)
		}
		if stats.CheckInRate != 40 {
			t.Fatalf("expected check-in rate 40, got %d", stats.CheckInRate)
		}
		if stats.UpcomingEvents != 1 || stats.ActiveEvents != 1 || stats.PastEvents != 1 {
			t.Fatalf("expected 1/1/1 status split, got %d/%d/%d",
				stats.UpcomingEvents, stats.ActiveEvents, stats.PastEvents)
		}
		if stats.MostPopularEvent == nil {
			t.Fatal("expected a popular event")
		}
		if stats.MostPopularEvent.Event.ID != "live" || stats.MostPopularEvent.Registrations != 3 {
			t.Fatalf("expected live with 3 registrations, got %s with %d",
				stats.MostPopularEvent.Event.ID, stats.MostPopularEvent.Registrations)
		}
		if len(stats.RecentRegistrations) != 5 {
			t.Fatalf("expected 5 recent registrations, got %d", len(stats.RecentRegistrations))
		}
		if stats.RecentRegistrations[0].ID != "r5" {
			t.Fatalf("expected newest registration first, got %s", stats.RecentRegistrations[0].ID)
		}
		if stats.RecentRegistrations[0].UserEmail != "bruno@example.com" {
			t.Fatalf("expected joined user details, got %+v", stats.RecentRegistrations[0])
		}
	})

	t.Run("popular event ties break by earliest event creation", func(t *testing.T) {
		older := upcomingEvent("older", 20)
		older.CreatedAt = testNow.Add(-48 * time.Hour)
		newer := upcomingEvent("newer", 20)
		newer.CreatedAt = testNow.Add(-24 * time.Hour)

		regRepo := newFakeRegRepo()
		regRepo.addEvent(older)
		regRepo.addEvent(newer)
		regRepo.addRegistration(&model.Registration{ID: "r1", UserID: "u1", EventID: "older", CreatedAt: testNow})
		regRepo.addRegistration(&model.Registration{ID: "r2", UserID: "u1", EventID: "newer", CreatedAt: testNow})

		svc := NewStatsService(newFakeUserRepo(), newFakeEventRepo(older, newer), regRepo, clock.NewFixed(testNow))
		stats, err := svc.Compute(ctx, adminIdent)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if stats.MostPopularEvent == nil || stats.MostPopularEvent.Event.ID != "older" {
			t.Fatalf("expected tie broken by earliest creation, got %+v", stats.MostPopularEvent)
		}
	})

	t.Run("rate rounds to nearest integer", func(t *testing.T) {
		e := upcomingEvent("e1", 20)
		regRepo := newFakeRegRepo()
		regRepo.addEvent(e)
		checkedAt := testNow
		regRepo.addRegistration(&model.Registration{ID: "r1", UserID: "u1", EventID: "e1", CheckedIn: true, CheckedInAt: &checkedAt, CreatedAt: testNow})
		regRepo.addRegistration(&model.Registration{ID: "r2", UserID: "u2", EventID: "e1", CreatedAt: testNow})
		regRepo.addRegistration(&model.Registration{ID: "r3", UserID: "u3", EventID: "e1", CreatedAt: testNow})

		svc := NewStatsService(newFakeUserRepo(), newFakeEventRepo(e), regRepo, clock.NewFixed(testNow))
		stats, err := svc.Compute(ctx, adminIdent)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if stats.CheckInRate != 33 { // 1/3 rounds to 33
			t.Fatalf("expected check-in rate 33, got %d", stats.CheckInRate)
		}
	})
}
