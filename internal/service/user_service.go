package service

import (
	"context"
	"errors"

	"soundbite/internal/events"
	"soundbite/internal/models"
	"soundbite/internal/repository"

	"gorm.io/gorm"
)

type UserService struct {
	userRepo  repository.UserRepository
	publisher Publisher
}

type UpdateProfileInput struct {
	Handle   string
	ImageURL *string
	Bio      *string
	Location *string
	Website  *string
}

func NewUserService(userRepo repository.UserRepository, publisher Publisher) *UserService {
	return &UserService{userRepo: userRepo, publisher: publisher}
}

func (s *UserService) GetProfile(ctx context.Context, handle string) (*models.User, error) {
	user, err := s.userRepo.GetByHandle(ctx, handle)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, models.NewNotFoundError("User", handle)
	}
	if err != nil {
		return nil, err
	}
	return user, nil
}

// UpdateProfile applies the given fields to the user's profile. Pointer
// fields distinguish "leave unchanged" (nil) from "set to empty". An image
// change is announced so the denormalized owner image on the user's snippets
// gets rewritten.
func (s *UserService) UpdateProfile(ctx context.Context, in UpdateProfileInput) (*models.User, error) {
	user, err := s.GetProfile(ctx, in.Handle)
	if err != nil {
		return nil, err
	}

	beforeImage := user.ImageURL
	if in.ImageURL != nil {
		user.ImageURL = *in.ImageURL
	}
	if in.Bio != nil {
		user.Bio = *in.Bio
	}
	if in.Location != nil {
		user.Location = *in.Location
	}
	if in.Website != nil {
		user.Website = *in.Website
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}

	if user.ImageURL != beforeImage {
		publish(ctx, s.publisher, events.TypeUserUpdated, events.UserUpdated{
			Handle:         user.Handle,
			BeforeImageURL: beforeImage,
			AfterImageURL:  user.ImageURL,
		})
	}
	return user, nil
}
