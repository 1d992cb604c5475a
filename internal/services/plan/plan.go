// Package services содержит операции над тарифными планами.
package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/magabrotheeeer/subscription-manager/internal/models"
)

// Repository определяет методы хранилища тарифов.
type Repository interface {
	CreatePlan(ctx context.Context, plan *models.Plan) error
	GetPlan(ctx context.Context, id string) (*models.Plan, error)
	ListPlans(ctx context.Context) ([]*models.Plan, error)
	UpdatePlan(ctx context.Context, plan *models.Plan) error
	DeletePlan(ctx context.Context, id string) error
}

// PlanService управляет тарифами.
type PlanService struct {
	repo Repository
	log  *slog.Logger
}

// NewPlanService создает новый экземпляр PlanService.
func NewPlanService(repo Repository, log *slog.Logger) *PlanService {
	return &PlanService{repo: repo, log: log}
}

// Create сохраняет новый тариф.
func (s *PlanService) Create(ctx context.Context, req models.DummyPlan) (*models.Plan, error) {
	const op = "services.plan.Create"

	features := req.Features
	if features == nil {
		features = []string{}
	}
	plan := &models.Plan{
		ID:          uuid.NewString(),
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Interval:    req.Interval,
		Features:    features,
		TrialDays:   req.TrialDays,
	}
	if err := s.repo.CreatePlan(ctx, plan); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	s.log.Info("created plan", slog.String("id", plan.ID), slog.String("name", plan.Name))
	return plan, nil
}

// Get возвращает тариф по id.
func (s *PlanService) Get(ctx context.Context, id string) (*models.Plan, error) {
	const op = "services.plan.Get"
	plan, err := s.repo.GetPlan(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return plan, nil
}

// List возвращает все тарифы.
func (s *PlanService) List(ctx context.Context) ([]*models.Plan, error) {
	const op = "services.plan.List"
	plans, err := s.repo.ListPlans(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return plans, nil
}

// Update применяет частичное изменение тарифа.
func (s *PlanService) Update(ctx context.Context, id string, patch models.PlanPatch) (*models.Plan, error) {
	const op = "services.plan.Update"

	plan, err := s.repo.GetPlan(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	patch.Apply(plan)
	if err := s.repo.UpdatePlan(ctx, plan); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	s.log.Info("updated plan", slog.String("id", id))
	return plan, nil
}

// Delete удаляет тариф. Тариф с подписками удалить нельзя: ErrConflict.
func (s *PlanService) Delete(ctx context.Context, id string) error {
	const op = "services.plan.Delete"
	if err := s.repo.DeletePlan(ctx, id); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	s.log.Info("deleted plan", slog.String("id", id))
	return nil
}
