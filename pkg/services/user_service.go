package services

import (
	"errors"

	"festivelo/pkg/models"
	"festivelo/pkg/repository"

	"golang.org/x/crypto/bcrypt"
)

type UserService interface {
	ChangeName(email, newName string) (models.User, error)
	ChangePassword(email, oldPassword, newPassword string) error
	Delete(userID int) error
}

type userService struct {
	users   repository.UserRepository
	trips   repository.TripRepository
	reviews repository.ReviewRepository
}

func NewUserService(users repository.UserRepository, trips repository.TripRepository, reviews repository.ReviewRepository) UserService {
	return &userService{users: users, trips: trips, reviews: reviews}
}

func (s *userService) ChangeName(email, newName string) (models.User, error) {
	if email == "" || newName == "" {
		return models.User{}, invalid("invalid_input", "email and newName are required")
	}
	u, err := s.users.GetByEmail(email)
	if errors.Is(err, repository.ErrNotFound) {
		return models.User{}, notFound("user_not_found", "User not found")
	}
	if err != nil {
		return models.User{}, err
	}
	return s.users.UpdateName(u.ID, newName)
}

func (s *userService) ChangePassword(email, oldPassword, newPassword string) error {
	if len(newPassword) < 8 {
		return invalid("invalid_input", "new password must have at least 8 characters")
	}
	u, hash, err := s.users.GetCredentials(email)
	if errors.Is(err, repository.ErrNotFound) {
		return notFound("user_not_found", "User not found")
	}
	if err != nil {
		return err
	}
	if bcrypt.CompareHashAndPassword([]byte(hash), []byte(oldPassword)) != nil {
		return invalid("invalid_input", "old password does not match")
	}
	newHash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	return s.users.UpdatePassword(u.ID, string(newHash))
}

// Delete removes the user and cascades: the user is pulled from every trip's
// collaborator set, trips they own and reviews they wrote are deleted. The
// collaborator pull and the trip deletions go through the trip repository so
// each affected trip emits a change-feed event.
func (s *userService) Delete(userID int) error {
	if _, err := s.users.GetByID(userID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return notFound("user_not_found", "User not found")
		}
		return err
	}

	if _, err := s.trips.RemoveCollaborator(userID); err != nil {
		return err
	}
	if _, err := s.trips.DeleteOwnedBy(userID); err != nil {
		return err
	}
	if err := s.reviews.DeleteByUser(userID); err != nil {
		return err
	}
	return s.users.Delete(userID)
}
