package service

import (
	"context"
	"math"

	"eventhub/internal/clock"
	"eventhub/internal/common"
	"eventhub/internal/domain/model"
	"eventhub/internal/domain/repository"
)

const recentRegistrationsLimit = 5

// StatsService derives read-only metrics from current user, event and
// registration state. It holds no state of its own; every call is a full
// recompute at the current instant.
type StatsService struct {
	userRepo  repository.UserRepository
	eventRepo repository.EventRepository
	regRepo   repository.RegistrationRepository
	clk       clock.Clock
}

func NewStatsService(
	userRepo repository.UserRepository,
	eventRepo repository.EventRepository,
	regRepo repository.RegistrationRepository,
	clk clock.Clock,
) *StatsService {
	return &StatsService{
		userRepo:  userRepo,
		eventRepo: eventRepo,
		regRepo:   regRepo,
		clk:       clk,
	}
}

func (s *StatsService) Compute(ctx context.Context, identity model.Identity) (*model.Stats, error) {
	if !identity.IsAdmin() {
		return nil, common.ErrForbidden
	}

	stats := &model.Stats{}
	var err error

	if stats.TotalUsers, err = s.userRepo.Count(ctx); err != nil {
		return nil, err
	}
	if stats.TotalRegistrations, err = s.regRepo.Count(ctx); err != nil {
		return nil, err
	}

	checkedIn, err := s.regRepo.CountCheckedIn(ctx)
	if err != nil {
		return nil, err
	}
	if stats.TotalRegistrations > 0 {
		stats.CheckInRate = int(math.Round(float64(checkedIn) / float64(stats.TotalRegistrations) * 100))
	}

	events, err := s.eventRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	stats.TotalEvents = len(events)
	now := s.clk.Now()
	for i := range events {
		switch events[i].StatusAt(now) {
		case model.StatusUpcoming:
			stats.UpcomingEvents++
		case model.StatusActive:
			stats.ActiveEvents++
		case model.StatusPast:
			stats.PastEvents++
		}
	}

	popular, err := s.regRepo.MostPopularEvent(ctx)
	if err != nil {
		return nil, err
	}
	if popular != nil {
		popular.Event.Status = popular.Event.StatusAt(now)
		stats.MostPopularEvent = popular
	}

	recent, err := s.regRepo.ListRecent(ctx, recentRegistrationsLimit)
	if err != nil {
		return nil, err
	}
	for i := range recent {
		recent[i].Event.Status = recent[i].Event.StatusAt(now)
	}
	stats.RecentRegistrations = recent

	return stats, nil
}
