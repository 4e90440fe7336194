package service

import (
	"context"

	"eventhub/internal/clock"
	"eventhub/internal/common"
	"eventhub/internal/domain/model"
	"eventhub/internal/domain/repository"

	"github.com/google/uuid"
)

// RegistrationService enforces the registration invariants: one registration
// per (user, event), never more registrations than event capacity, and
// check-in/check-out only while the event has not ended. Every
// read-then-write runs inside a single repository transaction so concurrent
// requests cannot invalidate a passed check.
type RegistrationService struct {
	regRepo   repository.RegistrationRepository
	eventRepo repository.EventRepository
	clk       clock.Clock
}

func NewRegistrationService(regRepo repository.RegistrationRepository, eventRepo repository.EventRepository, clk clock.Clock) *RegistrationService {
	return &RegistrationService{
		regRepo:   regRepo,
		eventRepo: eventRepo,
		clk:       clk,
	}
}

func (s *RegistrationService) Register(ctx context.Context, identity model.Identity, eventID string) (*model.Registration, error) {
	if eventID == "" {
		return nil, common.Errorf("event_id is required: %w", common.ErrValidation)
	}

	now := s.clk.Now()
	reg := &model.Registration{
		ID:        uuid.NewString(),
		UserID:    identity.UserID,
		EventID:   eventID,
		CheckedIn: false,
		CreatedAt: now,
	}

	err := s.regRepo.WithTx(ctx, func(txCtx context.Context) error {
		// Lock the event row: the capacity check and the insert must not be
		// separated by a window another registration can slip through.
		event, err := s.regRepo.FindEventForUpdate(txCtx, eventID)
		if err != nil {
			return err
		}

		count, err := s.regRepo.CountForEvent(txCtx, eventID)
		if err != nil {
			return err
		}
		if count >= event.Capacity {
			return common.Errorf("event %s is full: %w", eventID, common.ErrCapacityExceeded)
		}

		// The (user_id, event_id) unique constraint backstops duplicates.
		return s.regRepo.Create(txCtx, reg)
	})
	if err != nil {
		return nil, err
	}
	return reg, nil
}

// Cancel hard-deletes a registration. Allowed for the owning user or any
// admin.
func (s *RegistrationService) Cancel(ctx context.Context, identity model.Identity, registrationID string) error {
	return s.regRepo.WithTx(ctx, func(txCtx context.Context) error {
		reg, _, err := s.regRepo.FindByIDForUpdate(txCtx, registrationID)
		if err != nil {
			return err
		}
		if reg.UserID != identity.UserID && !identity.IsAdmin() {
			return common.ErrForbidden
		}
		return s.regRepo.Delete(txCtx, registrationID)
	})
}

func (s *RegistrationService) CheckIn(ctx context.Context, identity model.Identity, registrationID string) (*model.Registration, error) {
	return s.setCheckIn(ctx, identity, registrationID, true)
}

func (s *RegistrationService) CheckOut(ctx context.Context, identity model.Identity, registrationID string) (*model.Registration, error) {
	return s.setCheckIn(ctx, identity, registrationID, false)
}

func (s *RegistrationService) setCheckIn(ctx context.Context, identity model.Identity, registrationID string, checkIn bool) (*model.Registration, error) {
	if !identity.IsAdmin() {
		return nil, common.ErrForbidden
	}

	now := s.clk.Now()
	var result *model.Registration

	err := s.regRepo.WithTx(ctx, func(txCtx context.Context) error {
		reg, event, err := s.regRepo.FindByIDForUpdate(txCtx, registrationID)
		if err != nil {
			return err
		}

		if event.StatusAt(now) == model.StatusPast {
			return common.Errorf("event %s has ended: %w", event.ID, common.ErrEventExpired)
		}
		if reg.CheckedIn == checkIn {
			if checkIn {
				return common.Errorf("registration already checked in: %w", common.ErrConflict)
			}
			return common.Errorf("registration not checked in: %w", common.ErrConflict)
		}

		if checkIn {
			reg.CheckedIn = true
			reg.CheckedInAt = &now
		} else {
			reg.CheckedIn = false
			reg.CheckedInAt = nil
		}
		if err := s.regRepo.SetCheckIn(txCtx, registrationID, reg.CheckedIn, reg.CheckedInAt); err != nil {
			return err
		}
		result = reg
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// ListForUser returns the caller's registrations joined with their events,
// newest first.
func (s *RegistrationService) ListForUser(ctx context.Context, identity model.Identity) ([]model.UserRegistration, error) {
	regs, err := s.regRepo.ListByUser(ctx, identity.UserID)
	if err != nil {
		return nil, err
	}
	now := s.clk.Now()
	for i := range regs {
		regs[i].Event.Status = regs[i].Event.StatusAt(now)
	}
	return regs, nil
}

// ListForEvent returns all registrations for an event joined with the
// registrant's name and email. Admin only.
func (s *RegistrationService) ListForEvent(ctx context.Context, identity model.Identity, eventID string) ([]model.EventRegistration, error) {
	if !identity.IsAdmin() {
		return nil, common.ErrForbidden
	}
	if _, err := s.eventRepo.FindByID(ctx, eventID); err != nil {
		return nil, err
	}
	return s.regRepo.ListByEvent(ctx, eventID)
}
