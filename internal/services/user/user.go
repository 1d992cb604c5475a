// Package services содержит операции над учётными записями пользователей.
package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/magabrotheeeer/subscription-manager/internal/lib/password"
	"github.com/magabrotheeeer/subscription-manager/internal/models"
)

// Repository определяет методы хранилища пользователей.
type Repository interface {
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	ListUsers(ctx context.Context, limit, offset int) ([]*models.User, error)
	UpdateUser(ctx context.Context, user *models.User) error
	DeleteUser(ctx context.Context, username string) error
}

// UserService управляет пользователями по username.
type UserService struct {
	repo Repository
	log  *slog.Logger
}

// NewUserService создает новый экземпляр UserService.
func NewUserService(repo Repository, log *slog.Logger) *UserService {
	return &UserService{repo: repo, log: log}
}

// Get возвращает пользователя по username.
func (s *UserService) Get(ctx context.Context, username string) (*models.User, error) {
	const op = "services.user.Get"
	user, err := s.repo.GetUserByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return user, nil
}

// List возвращает страницу пользователей.
func (s *UserService) List(ctx context.Context, limit, offset int) ([]*models.User, error) {
	const op = "services.user.List"
	users, err := s.repo.ListUsers(ctx, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return users, nil
}

// Update меняет email, имя и пароль. Новый пароль хэшируется.
func (s *UserService) Update(ctx context.Context, username string, patch models.UserPatch) (*models.User, error) {
	const op = "services.user.Update"

	user, err := s.repo.GetUserByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if patch.Email != nil {
		user.Email = *patch.Email
	}
	if patch.FirstName != nil {
		user.FirstName = *patch.FirstName
	}
	if patch.LastName != nil {
		user.LastName = *patch.LastName
	}
	if patch.Password != nil {
		hashed, err := password.GetHash(*patch.Password)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		user.PasswordHash = hashed
	}
	if err := s.repo.UpdateUser(ctx, user); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	s.log.Info("updated user", slog.String("username", username))
	return user, nil
}

// Delete удаляет пользователя.
func (s *UserService) Delete(ctx context.Context, username string) error {
	const op = "services.user.Delete"
	if err := s.repo.DeleteUser(ctx, username); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	s.log.Info("deleted user", slog.String("username", username))
	return nil
}
