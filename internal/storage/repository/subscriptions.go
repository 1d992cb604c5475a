package repository

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/magabrotheeeer/subscription-manager/internal/models"
	"github.com/magabrotheeeer/subscription-manager/internal/subscription"
)

const subscriptionColumns = `id, service_name, user_id, plan_id, payment_method_id, start_date,
	end_date, status, notification_sent, version, created_at, updated_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanSubscription(row scanner) (*models.Subscription, error) {
	var sub models.Subscription
	if err := row.Scan(&sub.ID, &sub.ServiceName, &sub.UserID, &sub.PlanID, &sub.PaymentMethodID,
		&sub.StartDate, &sub.EndDate, &sub.Status, &sub.NotificationSent, &sub.Version,
		&sub.CreatedAt, &sub.UpdatedAt); err != nil {
		return nil, err
	}
	return &sub, nil
}

// CreateSubscription вставляет подписку. ID и даты заполняет вызывающий,
// версия и метки времени возвращаются из базы.
func (s *Storage) CreateSubscription(ctx context.Context, sub *models.Subscription) error {
	const op = "storage.CreateSubscription"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO subscriptions (id, service_name, user_id, plan_id, payment_method_id,
				start_date, end_date, status, notification_sent)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
			  RETURNING version, created_at, updated_at`
	err := s.DB.QueryRowContext(ctx, query,
		sub.ID, sub.ServiceName, sub.UserID, sub.PlanID, sub.PaymentMethodID,
		sub.StartDate, sub.EndDate, sub.Status, sub.NotificationSent).
		Scan(&sub.Version, &sub.CreatedAt, &sub.UpdatedAt)
	if err != nil {
		return fmt.Errorf("%s: %w", op, mapError(err))
	}
	return nil
}

// GetSubscription возвращает подписку по ID в том виде, в каком она хранится.
func (s *Storage) GetSubscription(ctx context.Context, id string) (*models.Subscription, error) {
	const op = "storage.GetSubscription"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + subscriptionColumns + ` FROM subscriptions WHERE id = $1`
	sub, err := scanSubscription(s.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, mapError(err))
	}
	return sub, nil
}

// ListSubscriptions возвращает подписки с учётом фильтра, от новых к старым.
func (s *Storage) ListSubscriptions(ctx context.Context, filter models.SubscriptionFilter) ([]*models.Subscription, error) {
	const op = "storage.ListSubscriptions"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	var (
		where []string
		args  []any
	)
	if filter.UserID != nil {
		args = append(args, *filter.UserID)
		where = append(where, "user_id = $"+strconv.Itoa(len(args)))
	}
	if filter.Status != nil {
		var cond string
		cond, args = statusCondition(*filter.Status, filter.Now, args)
		where = append(where, cond)
	}

	var b strings.Builder
	b.WriteString(`SELECT ` + subscriptionColumns + ` FROM subscriptions`)
	if len(where) > 0 {
		b.WriteString(" WHERE " + strings.Join(where, " AND "))
	}
	b.WriteString(" ORDER BY created_at DESC, id")
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		b.WriteString(" LIMIT $" + strconv.Itoa(len(args)))
	}
	if filter.Offset > 0 {
		args = append(args, filter.Offset)
		b.WriteString(" OFFSET $" + strconv.Itoa(len(args)))
	}

	rows, err := s.DB.QueryContext(ctx, b.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, mapError(err))
	}
	defer rows.Close()

	var res []*models.Subscription
	for rows.Next() {
		sub, err := scanSubscription(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		res = append(res, sub)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return res, nil
}

// statusCondition строит условие по статусу, который клиент увидит в момент now:
// активная или пробная подписка с прошедшей датой окончания считается истёкшей.
func statusCondition(status subscription.Status, now time.Time, args []any) (string, []any) {
	if now.IsZero() {
		now = time.Now()
	}
	switch status {
	case subscription.StatusExpired:
		args = append(args, now)
		return "(status = 'expired' OR (status IN ('active', 'trial') AND end_date < $" +
			strconv.Itoa(len(args)) + "))", args
	case subscription.StatusActive, subscription.StatusTrial:
		args = append(args, status, now)
		return "(status = $" + strconv.Itoa(len(args)-1) +
			" AND (end_date IS NULL OR end_date >= $" + strconv.Itoa(len(args)) + "))", args
	default:
		args = append(args, status)
		return "status = $" + strconv.Itoa(len(args)), args
	}
}

// UpdateSubscription перезаписывает изменяемые поля подписки и увеличивает версию.
// Новые версия и updated_at записываются обратно в sub.
func (s *Storage) UpdateSubscription(ctx context.Context, sub *models.Subscription) error {
	const op = "storage.UpdateSubscription"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE subscriptions
			  SET service_name = $1, plan_id = $2, payment_method_id = $3, end_date = $4,
			      status = $5, notification_sent = $6, version = version + 1, updated_at = NOW()
			  WHERE id = $7
			  RETURNING version, updated_at`
	err := s.DB.QueryRowContext(ctx, query,
		sub.ServiceName, sub.PlanID, sub.PaymentMethodID, sub.EndDate,
		sub.Status, sub.NotificationSent, sub.ID).
		Scan(&sub.Version, &sub.UpdatedAt)
	if err != nil {
		return fmt.Errorf("%s: %w", op, mapError(err))
	}
	return nil
}

// CompareAndSwapStatus применяет change, только если статус и версия записи
// совпадают с ожидаемыми. Возвращает false, если условие не выполнено.
func (s *Storage) CompareAndSwapStatus(ctx context.Context, change models.StatusChange) (bool, error) {
	const op = "storage.CompareAndSwapStatus"
	select {
	case <-ctx.Done():
		return false, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE subscriptions
			  SET status = $1,
			      end_date = COALESCE($2, end_date),
			      notification_sent = CASE WHEN $2::timestamptz IS NULL THEN notification_sent ELSE FALSE END,
			      version = version + 1,
			      updated_at = NOW()
			  WHERE id = $3 AND status = $4 AND version = $5`
	result, err := s.DB.ExecContext(ctx, query,
		change.To, change.EndDate, change.ID, change.From, change.Version)
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, mapError(err))
	}
	if err := affected(result); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("%s: %w", op, err)
	}
	return true, nil
}

// DeleteSubscription удаляет подписку. ErrNotFound, если записи не было.
func (s *Storage) DeleteSubscription(ctx context.Context, id string) error {
	const op = "storage.DeleteSubscription"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	result, err := s.DB.ExecContext(ctx, `DELETE FROM subscriptions WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, mapError(err))
	}
	if err := affected(result); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// FindExpiringSubscriptions возвращает подписки без отправленного напоминания,
// у которых end_date лежит в (from, until]. Статус не учитывается.
// Email пустой, если у владельца он не указан.
func (s *Storage) FindExpiringSubscriptions(ctx context.Context, from, until time.Time) ([]models.ExpiringSubscription, error) {
	const op = "storage.FindExpiringSubscriptions"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT s.id, s.service_name, s.user_id, COALESCE(u.email, ''), s.end_date
			  FROM subscriptions s
			  LEFT JOIN users u ON u.id = s.user_id
			  WHERE s.notification_sent = FALSE
			    AND s.end_date > $1
			    AND s.end_date <= $2
			  ORDER BY s.end_date`
	rows, err := s.DB.QueryContext(ctx, query, from, until)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var res []models.ExpiringSubscription
	for rows.Next() {
		var e models.ExpiringSubscription
		if err := rows.Scan(&e.ID, &e.ServiceName, &e.UserID, &e.Email, &e.EndDate); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		res = append(res, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return res, nil
}

// ClaimReminder атомарно помечает напоминание отправленным.
// false означает, что флаг уже был установлен другим исполнителем.
func (s *Storage) ClaimReminder(ctx context.Context, id string) (bool, error) {
	const op = "storage.ClaimReminder"
	select {
	case <-ctx.Done():
		return false, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE subscriptions SET notification_sent = TRUE, updated_at = NOW()
			  WHERE id = $1 AND notification_sent = FALSE`
	return s.execFlag(ctx, op, query, id)
}

// ReleaseReminder снимает флаг после неудачной отправки.
func (s *Storage) ReleaseReminder(ctx context.Context, id string) error {
	const op = "storage.ReleaseReminder"

	query := `UPDATE subscriptions SET notification_sent = FALSE, updated_at = NOW()
			  WHERE id = $1`
	if _, err := s.execFlag(ctx, op, query, id); err != nil {
		return err
	}
	return nil
}

func (s *Storage) execFlag(ctx context.Context, op, query, id string) (bool, error) {
	result, err := s.DB.ExecContext(ctx, query, id)
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	return n > 0, nil
}
