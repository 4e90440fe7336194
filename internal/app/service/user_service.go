package service

import (
	"context"
	"fmt"

	"eventhub/internal/common"
	"eventhub/internal/common/security"
	"eventhub/internal/domain/model"
	"eventhub/internal/domain/repository"

	"github.com/google/uuid"
)

// UserService covers the administrative user operations. Self-service signup
// lives in AuthService; everything here requires the admin role.
type UserService struct {
	userRepo repository.UserRepository
}

func NewUserService(userRepo repository.UserRepository) *UserService {
	return &UserService{userRepo: userRepo}
}

type CreateUserRequest struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	Role      string `json:"role"`
}

type UpdateUserRequest struct {
	FirstName *string `json:"first_name,omitempty"`
	LastName  *string `json:"last_name,omitempty"`
	Email     *string `json:"email,omitempty"`
	Password  *string `json:"password,omitempty"`
	Role      *string `json:"role,omitempty"`
}

func validRole(role string) bool {
	return role == model.RoleUser || role == model.RoleAdmin
}

func (s *UserService) List(ctx context.Context, identity model.Identity) ([]model.User, error) {
	if !identity.IsAdmin() {
		return nil, common.ErrForbidden
	}
	users, err := s.userRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	for i := range users {
		users[i].HashedPassword = ""
	}
	return users, nil
}

func (s *UserService) Count(ctx context.Context, identity model.Identity) (int, error) {
	if !identity.IsAdmin() {
		return 0, common.ErrForbidden
	}
	return s.userRepo.Count(ctx)
}

func (s *UserService) Create(ctx context.Context, identity model.Identity, req CreateUserRequest) (*model.User, error) {
	if !identity.IsAdmin() {
		return nil, common.ErrForbidden
	}
	if req.FirstName == "" || req.LastName == "" || req.Email == "" || req.Password == "" {
		return nil, common.Errorf("first name, last name, email and password are required: %w", common.ErrValidation)
	}
	role := req.Role
	if role == "" {
		role = model.RoleUser
	}
	if !validRole(role) {
		return nil, common.Errorf("unknown role %q: %w", req.Role, common.ErrValidation)
	}

	hashedPassword, err := security.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &model.User{
		ID:             uuid.NewString(),
		FirstName:      req.FirstName,
		LastName:       req.LastName,
		Email:          req.Email,
		HashedPassword: hashedPassword,
		Role:           role,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	user.HashedPassword = ""
	return user, nil
}

func (s *UserService) Update(ctx context.Context, identity model.Identity, id string, req UpdateUserRequest) (*model.User, error) {
	if !identity.IsAdmin() {
		return nil, common.ErrForbidden
	}

	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.FirstName != nil {
		if *req.FirstName == "" {
			return nil, common.Errorf("first name must not be empty: %w", common.ErrValidation)
		}
		user.FirstName = *req.FirstName
	}
	if req.LastName != nil {
		if *req.LastName == "" {
			return nil, common.Errorf("last name must not be empty: %w", common.ErrValidation)
		}
		user.LastName = *req.LastName
	}
	if req.Email != nil {
		if *req.Email == "" {
			return nil, common.Errorf("email must not be empty: %w", common.ErrValidation)
		}
		user.Email = *req.Email
	}
	if req.Password != nil {
		hashedPassword, err := security.HashPassword(*req.Password)
		if err != nil {
			return nil, fmt.Errorf("failed to hash password: %w", err)
		}
		user.HashedPassword = hashedPassword
	}
	if req.Role != nil {
		if !validRole(*req.Role) {
			return nil, common.Errorf("unknown role %q: %w", *req.Role, common.ErrValidation)
		}
		user.Role = *req.Role
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}
	user.HashedPassword = ""
	return user, nil
}

// Delete removes a user; their registrations are cascade-deleted by the
// store.
func (s *UserService) Delete(ctx context.Context, identity model.Identity, id string) error {
	if !identity.IsAdmin() {
		return common.ErrForbidden
	}
	return s.userRepo.Delete(ctx, id)
}
