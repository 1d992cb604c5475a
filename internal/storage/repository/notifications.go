package repository

import (
	"context"
	"fmt"

	"github.com/magabrotheeeer/subscription-manager/internal/models"
)

// CreateNotification сохраняет уведомление.
func (s *Storage) CreateNotification(ctx context.Context, n *models.Notification) error {
	const op = "storage.CreateNotification"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO notifications (id, user_id, subscription_id, message, delivery_date, status)
			  VALUES ($1, $2, $3, $4, $5, $6)
			  RETURNING created_at, updated_at`
	err := s.DB.QueryRowContext(ctx, query,
		n.ID, n.UserID, n.SubscriptionID, n.Message, n.DeliveryDate, n.Status).
		Scan(&n.CreatedAt, &n.UpdatedAt)
	if err != nil {
		return fmt.Errorf("%s: %w", op, mapError(err))
	}
	return nil
}

// ListNotificationsByUser возвращает уведомления пользователя, новые первыми.
func (s *Storage) ListNotificationsByUser(ctx context.Context, userID string) ([]*models.Notification, error) {
	const op = "storage.ListNotificationsByUser"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, user_id, subscription_id, message, delivery_date, status, created_at, updated_at
			  FROM notifications
			  WHERE user_id = $1
			  ORDER BY created_at DESC`
	rows, err := s.DB.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, mapError(err))
	}
	defer rows.Close()

	var res []*models.Notification
	for rows.Next() {
		var n models.Notification
		if err := rows.Scan(&n.ID, &n.UserID, &n.SubscriptionID, &n.Message, &n.DeliveryDate,
			&n.Status, &n.CreatedAt, &n.UpdatedAt); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		res = append(res, &n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return res, nil
}

// MarkNotificationSent переводит уведомление в статус sent.
func (s *Storage) MarkNotificationSent(ctx context.Context, id string) error {
	const op = "storage.MarkNotificationSent"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE notifications SET status = $1, updated_at = NOW() WHERE id = $2`
	result, err := s.DB.ExecContext(ctx, query, models.NotificationSent, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, mapError(err))
	}
	if err := affected(result); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
