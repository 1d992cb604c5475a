package repository

import (
	"context"
	"fmt"

	"github.com/magabrotheeeer/subscription-manager/internal/models"
)

const paymentMethodColumns = `id, user_id, type, last_four, created_at, updated_at`

func scanPaymentMethod(row scanner) (*models.PaymentMethod, error) {
	var pm models.PaymentMethod
	if err := row.Scan(&pm.ID, &pm.UserID, &pm.Type, &pm.LastFour, &pm.CreatedAt, &pm.UpdatedAt); err != nil {
		return nil, err
	}
	return &pm, nil
}

// CreatePaymentMethod сохраняет платёжный метод пользователя.
func (s *Storage) CreatePaymentMethod(ctx context.Context, pm *models.PaymentMethod) error {
	const op = "storage.CreatePaymentMethod"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO payment_methods (id, user_id, type, last_four)
			  VALUES ($1, $2, $3, $4)
			  RETURNING created_at, updated_at`
	err := s.DB.QueryRowContext(ctx, query, pm.ID, pm.UserID, pm.Type, pm.LastFour).
		Scan(&pm.CreatedAt, &pm.UpdatedAt)
	if err != nil {
		return fmt.Errorf("%s: %w", op, mapError(err))
	}
	return nil
}

// GetPaymentMethod возвращает платёжный метод по ID.
func (s *Storage) GetPaymentMethod(ctx context.Context, id string) (*models.PaymentMethod, error) {
	const op = "storage.GetPaymentMethod"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + paymentMethodColumns + ` FROM payment_methods WHERE id = $1`
	pm, err := scanPaymentMethod(s.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, mapError(err))
	}
	return pm, nil
}

// ListPaymentMethods возвращает платёжные методы. Пустой userID означает все методы.
func (s *Storage) ListPaymentMethods(ctx context.Context, userID string) ([]*models.PaymentMethod, error) {
	const op = "storage.ListPaymentMethods"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + paymentMethodColumns + ` FROM payment_methods
			  WHERE ($1 = '' OR user_id::text = $1)
			  ORDER BY created_at DESC`
	rows, err := s.DB.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var res []*models.PaymentMethod
	for rows.Next() {
		pm, err := scanPaymentMethod(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		res = append(res, pm)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return res, nil
}

// UpdatePaymentMethod перезаписывает тип и последние цифры.
func (s *Storage) UpdatePaymentMethod(ctx context.Context, pm *models.PaymentMethod) error {
	const op = "storage.UpdatePaymentMethod"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE payment_methods SET type = $1, last_four = $2, updated_at = NOW()
			  WHERE id = $3
			  RETURNING updated_at`
	err := s.DB.QueryRowContext(ctx, query, pm.Type, pm.LastFour, pm.ID).Scan(&pm.UpdatedAt)
	if err != nil {
		return fmt.Errorf("%s: %w", op, mapError(err))
	}
	return nil
}

// DeletePaymentMethod удаляет платёжный метод; у подписок ссылка обнуляется.
func (s *Storage) DeletePaymentMethod(ctx context.Context, id string) error {
	const op = "storage.DeletePaymentMethod"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	result, err := s.DB.ExecContext(ctx, `DELETE FROM payment_methods WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, mapError(err))
	}
	if err := affected(result); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
