package service

import (
	"context"

	"blogicum/internal/models"
	"blogicum/internal/observability"
	"blogicum/internal/repository"
)

type UserService struct {
	users repository.UserRepository
}

type UpdateProfileInput struct {
	UserID uint
	Form   ProfileForm
}

func NewUserService(users repository.UserRepository) *UserService {
	return &UserService{users: users}
}

// GetUser loads the requester's own record.
func (s *UserService) GetUser(ctx context.Context, id uint) (*models.User, error) {
	return s.users.GetByID(ctx, id)
}

// GetProfile loads a public profile by username.
func (s *UserService) GetProfile(ctx context.Context, username string) (*models.User, error) {
	return s.users.GetByUsername(ctx, username)
}

// UpdateProfile saves the requester's profile fields. Usernames and emails
// held by another user are field errors.
func (s *UserService) UpdateProfile(ctx context.Context, in UpdateProfileInput) (*models.User, error) {
	ctx, span := observability.StartServiceSpan(ctx, "UserService", "UpdateProfile")
	var err error
	defer func() { observability.EndSpan(span, err) }()

	in.Form.Normalize()
	if err = validateForm(&in.Form); err != nil {
		return nil, err
	}

	user, err := s.users.GetByID(ctx, in.UserID)
	if err != nil {
		return nil, err
	}

	conflicts := map[string]string{}
	for column, value := range map[string]string{"username": in.Form.Username, "email": in.Form.Email} {
		taken, takenErr := s.users.Taken(ctx, column, value, user.ID)
		if takenErr != nil {
			err = takenErr
			return nil, err
		}
		if taken {
			conflicts[column] = "A user with that " + column + " already exists."
		}
	}
	if len(conflicts) > 0 {
		err = models.NewFieldValidationError(conflicts)
		return nil, err
	}

	previous := user.Username
	user.Username = in.Form.Username
	user.FirstName = in.Form.FirstName
	user.LastName = in.Form.LastName
	user.Email = in.Form.Email

	if err = s.users.UpdateProfile(ctx, user, previous); err != nil {
		return nil, err
	}
	return user, nil
}
