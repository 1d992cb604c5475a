// Package services содержит операции над уведомлениями пользователей.
package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/magabrotheeeer/subscription-manager/internal/models"
)

// Repository определяет методы хранилища уведомлений.
type Repository interface {
	CreateNotification(ctx context.Context, n *models.Notification) error
	ListNotificationsByUser(ctx context.Context, userID string) ([]*models.Notification, error)
	MarkNotificationSent(ctx context.Context, id string) error
}

// NotificationService управляет уведомлениями.
type NotificationService struct {
	repo Repository
	log  *slog.Logger
}

// NewNotificationService создает новый экземпляр NotificationService.
func NewNotificationService(repo Repository, log *slog.Logger) *NotificationService {
	return &NotificationService{repo: repo, log: log}
}

// Create сохраняет уведомление в статусе pending.
func (s *NotificationService) Create(ctx context.Context, req models.DummyNotification) (*models.Notification, error) {
	const op = "services.notification.Create"

	n := &models.Notification{
		ID:             uuid.NewString(),
		UserID:         req.UserID,
		SubscriptionID: req.SubscriptionID,
		Message:        req.Message,
		DeliveryDate:   req.DeliveryDate.UTC(),
		Status:         models.NotificationPending,
	}
	if err := s.repo.CreateNotification(ctx, n); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	s.log.Info("created notification", slog.String("id", n.ID), slog.String("user_id", n.UserID))
	return n, nil
}

// ListByUser возвращает уведомления пользователя, новые первыми.
func (s *NotificationService) ListByUser(ctx context.Context, userID string) ([]*models.Notification, error) {
	const op = "services.notification.ListByUser"
	list, err := s.repo.ListNotificationsByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return list, nil
}

// MarkSent помечает уведомление отправленным.
func (s *NotificationService) MarkSent(ctx context.Context, id string) error {
	const op = "services.notification.MarkSent"
	if err := s.repo.MarkNotificationSent(ctx, id); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
