package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/magabrotheeeer/subscription-manager/internal/models"
)

const planColumns = `id, name, description, price::float8, interval, features, trial_days, created_at, updated_at`

func (s *Storage) scanPlan(row scanner) (*models.Plan, error) {
	var p models.Plan
	if err := row.Scan(&p.ID, &p.Name, &p.Description, &p.Price, &p.Interval,
		s.typeMap.SQLScanner(&p.Features), &p.TrialDays, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	return &p, nil
}

// CreatePlan сохраняет тарифный план.
func (s *Storage) CreatePlan(ctx context.Context, plan *models.Plan) error {
	const op = "storage.CreatePlan"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO plans (id, name, description, price, interval, features, trial_days)
			  VALUES ($1, $2, $3, $4, $5, $6, $7)
			  RETURNING created_at, updated_at`
	err := s.DB.QueryRowContext(ctx, query,
		plan.ID, plan.Name, plan.Description, plan.Price, plan.Interval, plan.Features, plan.TrialDays).
		Scan(&plan.CreatedAt, &plan.UpdatedAt)
	if err != nil {
		return fmt.Errorf("%s: %w", op, mapError(err))
	}
	return nil
}

// GetPlan возвращает тариф по ID.
func (s *Storage) GetPlan(ctx context.Context, id string) (*models.Plan, error) {
	const op = "storage.GetPlan"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + planColumns + ` FROM plans WHERE id = $1`
	p, err := s.scanPlan(s.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, mapError(err))
	}
	return p, nil
}

// ListPlans возвращает все тарифы, отсортированные по цене.
func (s *Storage) ListPlans(ctx context.Context) ([]*models.Plan, error) {
	const op = "storage.ListPlans"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	rows, err := s.DB.QueryContext(ctx, `SELECT `+planColumns+` FROM plans ORDER BY price, name`)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var res []*models.Plan
	for rows.Next() {
		p, err := s.scanPlan(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		res = append(res, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return res, nil
}

// UpdatePlan перезаписывает поля тарифа.
func (s *Storage) UpdatePlan(ctx context.Context, plan *models.Plan) error {
	const op = "storage.UpdatePlan"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE plans
			  SET name = $1, description = $2, price = $3, interval = $4, features = $5,
			      trial_days = $6, updated_at = NOW()
			  WHERE id = $7
			  RETURNING updated_at`
	err := s.DB.QueryRowContext(ctx, query,
		plan.Name, plan.Description, plan.Price, plan.Interval, plan.Features, plan.TrialDays, plan.ID).
		Scan(&plan.UpdatedAt)
	if err != nil {
		return fmt.Errorf("%s: %w", op, mapError(err))
	}
	return nil
}

// DeletePlan удаляет тариф. Тариф с подписками удалить нельзя.
func (s *Storage) DeletePlan(ctx context.Context, id string) error {
	const op = "storage.DeletePlan"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	result, err := s.DB.ExecContext(ctx, `DELETE FROM plans WHERE id = $1`, id)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.ForeignKeyViolation {
		return fmt.Errorf("%s: plan has subscriptions: %w", op, models.ErrConflict)
	}
	if err != nil {
		return fmt.Errorf("%s: %w", op, mapError(err))
	}
	if err := affected(result); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
