package service

import (
	"context"
	"time"

	"eventhub/internal/clock"
	"eventhub/internal/common"
	"eventhub/internal/domain/model"
	"eventhub/internal/domain/repository"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
)

type EventService struct {
	eventRepo       repository.EventRepository
	clk             clock.Clock
	defaultCapacity int
}

func NewEventService(eventRepo repository.EventRepository, clk clock.Clock, defaultCapacity int) *EventService {
	if defaultCapacity <= 0 {
		defaultCapacity = model.DefaultEventCapacity
	}
	return &EventService{
		eventRepo:       eventRepo,
		clk:             clk,
		defaultCapacity: defaultCapacity,
	}
}

type CreateEventRequest struct {
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Location    string     `json:"location"`
	StartsAt    time.Time  `json:"starts_at"`
	EndsAt      *time.Time `json:"ends_at,omitempty"`
	Capacity    int        `json:"capacity"`
	ImageURL    *string    `json:"image_url,omitempty"`
}

type UpdateEventRequest struct {
	Title       *string    `json:"title,omitempty"`
	Description *string    `json:"description,omitempty"`
	Location    *string    `json:"location,omitempty"`
	StartsAt    *time.Time `json:"starts_at,omitempty"`
	EndsAt      *time.Time `json:"ends_at,omitempty"`
	Capacity    *int       `json:"capacity,omitempty"`
	ImageURL    *string    `json:"image_url,omitempty"`
}

func (s *EventService) Create(ctx context.Context, identity model.Identity, req CreateEventRequest) (*model.Event, error) {
	if !identity.IsAdmin() {
		return nil, common.ErrForbidden
	}

	now := s.clk.Now()
	if req.Title == "" || req.Description == "" || req.Location == "" || req.StartsAt.IsZero() {
		return nil, common.Errorf("title, description, location and starts_at are required: %w", common.ErrValidation)
	}
	if !req.StartsAt.After(now) {
		return nil, common.Errorf("starts_at must be in the future: %w", common.ErrValidation)
	}
	if req.EndsAt != nil && req.EndsAt.Before(req.StartsAt) {
		return nil, common.Errorf("ends_at must not precede starts_at: %w", common.ErrValidation)
	}
	if req.Capacity < 0 {
		return nil, common.Errorf("capacity must be positive: %w", common.ErrValidation)
	}

	capacity := req.Capacity
	if capacity == 0 {
		capacity = s.defaultCapacity
	}

	createdBy := identity.UserID
	event := &model.Event{
		ID:          uuid.NewString(),
		Title:       req.Title,
		Slug:        slug.Make(req.Title),
		Description: req.Description,
		Location:    req.Location,
		StartsAt:    req.StartsAt,
		EndsAt:      req.EndsAt,
		Capacity:    capacity,
		ImageURL:    req.ImageURL,
		CreatedByID: &createdBy,
	}

	if err := s.eventRepo.Create(ctx, event); err != nil {
		return nil, common.Errorf("failed to create event: %w", err)
	}
	event.Status = event.StatusAt(now)
	return event, nil
}

func (s *EventService) Update(ctx context.Context, identity model.Identity, id string, req UpdateEventRequest) (*model.Event, error) {
	if !identity.IsAdmin() {
		return nil, common.ErrForbidden
	}

	event, err := s.eventRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	now := s.clk.Now()
	if req.Title != nil {
		if *req.Title == "" {
			return nil, common.Errorf("title must not be empty: %w", common.ErrValidation)
		}
		event.Title = *req.Title
		event.Slug = slug.Make(*req.Title)
	}
	if req.Description != nil {
		if *req.Description == "" {
			return nil, common.Errorf("description must not be empty: %w", common.ErrValidation)
		}
		event.Description = *req.Description
	}
	if req.Location != nil {
		if *req.Location == "" {
			return nil, common.Errorf("location must not be empty: %w", common.ErrValidation)
		}
		event.Location = *req.Location
	}
	if req.StartsAt != nil {
		if !req.StartsAt.After(now) {
			return nil, common.Errorf("starts_at must be in the future: %w", common.ErrValidation)
		}
		event.StartsAt = *req.StartsAt
	}
	if req.EndsAt != nil {
		event.EndsAt = req.EndsAt
	}
	if event.EndsAt != nil && event.EndsAt.Before(event.StartsAt) {
		return nil, common.Errorf("ends_at must not precede starts_at: %w", common.ErrValidation)
	}
	if req.Capacity != nil {
		if *req.Capacity <= 0 {
			return nil, common.Errorf("capacity must be positive: %w", common.ErrValidation)
		}
		event.Capacity = *req.Capacity
	}
	if req.ImageURL != nil {
		event.ImageURL = req.ImageURL
	}

	if err := s.eventRepo.Update(ctx, event); err != nil {
		return nil, common.Errorf("failed to update event: %w", err)
	}
	event.Status = event.StatusAt(now)
	return event, nil
}

// Delete removes an event. Its registrations are cascade-deleted by the
// store, so no dangling registration can survive the event.
func (s *EventService) Delete(ctx context.Context, identity model.Identity, id string) error {
	if !identity.IsAdmin() {
		return common.ErrForbidden
	}
	return s.eventRepo.Delete(ctx, id)
}

// Get looks an event up by id or slug. Public, no identity required.
func (s *EventService) Get(ctx context.Context, idOrSlug string) (*model.Event, error) {
	event, err := s.eventRepo.FindByID(ctx, idOrSlug)
	if err != nil {
		event, err = s.eventRepo.FindBySlug(ctx, idOrSlug)
	}
	if err != nil {
		return nil, err
	}
	event.Status = event.StatusAt(s.clk.Now())
	return event, nil
}

// List returns all events in insertion order with their derived status.
// Public; callers filter by status themselves.
func (s *EventService) List(ctx context.Context) ([]model.Event, error) {
	events, err := s.eventRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	now := s.clk.Now()
	for i := range events {
		events[i].Status = events[i].StatusAt(now)
	}
	return events, nil
}
