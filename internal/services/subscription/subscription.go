// Package services содержит Lifecycle Manager подписок: создание, чтение
// с выводом статуса, административное изменение и переходы статусов.
package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/magabrotheeeer/subscription-manager/internal/cache"
	"github.com/magabrotheeeer/subscription-manager/internal/lib/month"
	"github.com/magabrotheeeer/subscription-manager/internal/lib/sl"
	"github.com/magabrotheeeer/subscription-manager/internal/metrics"
	"github.com/magabrotheeeer/subscription-manager/internal/models"
	"github.com/magabrotheeeer/subscription-manager/internal/subscription"
)

// Repository определяет методы хранилища подписок.
type Repository interface {
	CreateSubscription(ctx context.Context, sub *models.Subscription) error
	GetSubscription(ctx context.Context, id string) (*models.Subscription, error)
	ListSubscriptions(ctx context.Context, filter models.SubscriptionFilter) ([]*models.Subscription, error)
	UpdateSubscription(ctx context.Context, sub *models.Subscription) error
	CompareAndSwapStatus(ctx context.Context, change models.StatusChange) (bool, error)
	DeleteSubscription(ctx context.Context, id string) error
}

// PlanReader читает тарифы.
type PlanReader interface {
	GetPlan(ctx context.Context, id string) (*models.Plan, error)
}

// UserReader читает пользователей.
type UserReader interface {
	GetUserByID(ctx context.Context, id string) (*models.User, error)
}

// Cache описывает методы для кэширования данных.
type Cache interface {
	Get(ctx context.Context, key string, result any) (bool, error)
	Set(ctx context.Context, key string, value any, expiration time.Duration) error
	Invalidate(ctx context.Context, key string) error
}

// SubscriptionService управляет жизненным циклом подписок.
// Все записи статуса выполняются как compare-and-swap по (status, version).
type SubscriptionService struct {
	repo     Repository
	plans    PlanReader
	users    UserReader
	cache    Cache
	cacheTTL time.Duration
	log      *slog.Logger
	now      func() time.Time
}

// NewSubscriptionService создаёт сервис. cache может быть nil, тогда кэш не используется.
func NewSubscriptionService(repo Repository, plans PlanReader, users UserReader, cache Cache,
	cacheTTL time.Duration, log *slog.Logger) *SubscriptionService {
	return &SubscriptionService{
		repo:     repo,
		plans:    plans,
		users:    users,
		cache:    cache,
		cacheTTL: cacheTTL,
		log:      log,
		now:      time.Now,
	}
}

// Create создаёт подписку в статусе active, либо trial, если он запрошен и
// тариф предусматривает пробный период.
func (s *SubscriptionService) Create(ctx context.Context, req models.DummySubscription) (*models.Subscription, error) {
	const op = "services.subscription.Create"

	if _, err := s.users.GetUserByID(ctx, req.UserID); err != nil {
		return nil, fmt.Errorf("%s: user %s: %w", op, req.UserID, err)
	}
	plan, err := s.plans.GetPlan(ctx, req.PlanID)
	if err != nil {
		return nil, fmt.Errorf("%s: plan %s: %w", op, req.PlanID, err)
	}

	now := s.now().UTC()
	sub := &models.Subscription{
		ID:              uuid.NewString(),
		ServiceName:     req.ServiceName,
		UserID:          req.UserID,
		PlanID:          req.PlanID,
		PaymentMethodID: req.PaymentMethodID,
		StartDate:       now,
		EndDate:         req.EndDate,
		Status:          subscription.StatusActive,
	}
	if req.StartTrial {
		if plan.TrialDays <= 0 {
			return nil, fmt.Errorf("%s: plan %s has no trial period: %w", op, plan.ID, models.ErrValidation)
		}
		sub.Status = subscription.StatusTrial
		if sub.EndDate == nil {
			end := now.AddDate(0, 0, plan.TrialDays)
			sub.EndDate = &end
		}
	}

	if err := s.repo.CreateSubscription(ctx, sub); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	s.log.Info("created subscription",
		slog.String("id", sub.ID), slog.String("status", sub.Status.String()))

	s.cacheSet(ctx, sub)
	return sub, nil
}

// Read возвращает подписку с выведенным статусом. Если активная подписка уже
// истекла, статус expired сохраняется в хранилище без гарантии успеха.
func (s *SubscriptionService) Read(ctx context.Context, id string) (*models.Subscription, error) {
	const op = "services.subscription.Read"

	sub, err := s.load(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	derived := subscription.Derive(sub.Status, sub.EndDate, s.now())
	if derived == sub.Status {
		return sub, nil
	}

	ok, err := s.repo.CompareAndSwapStatus(ctx, models.StatusChange{
		ID:      sub.ID,
		From:    sub.Status,
		Version: sub.Version,
		To:      derived,
	})
	switch {
	case err != nil:
		s.log.Warn("failed to persist derived status", slog.String("id", id), sl.Err(err))
	case ok:
		sub.Version++
		s.log.Info("subscription expired", slog.String("id", id))
	}
	s.cacheInvalidate(ctx, id)

	sub.Status = derived
	return sub, nil
}

// List возвращает подписки по фильтру с выведенным статусом. Хранилище не меняется.
func (s *SubscriptionService) List(ctx context.Context, filter models.SubscriptionFilter) ([]*models.Subscription, error) {
	const op = "services.subscription.List"

	now := s.now()
	filter.Now = now
	subs, err := s.repo.ListSubscriptions(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	for _, sub := range subs {
		sub.Status = subscription.Derive(sub.Status, sub.EndDate, now)
	}
	return subs, nil
}

// Patch применяет административное изменение полей. Правила переходов не
// проверяются, но статус должен быть одним из допустимых значений.
func (s *SubscriptionService) Patch(ctx context.Context, id string, patch models.SubscriptionPatch) (*models.Subscription, error) {
	const op = "services.subscription.Patch"

	if patch.Status != nil && !patch.Status.Valid() {
		return nil, fmt.Errorf("%s: unknown status %q: %w", op, *patch.Status, models.ErrValidation)
	}
	if patch.PlanID != nil {
		if _, err := s.plans.GetPlan(ctx, *patch.PlanID); err != nil {
			return nil, fmt.Errorf("%s: plan %s: %w", op, *patch.PlanID, err)
		}
	}

	sub, err := s.repo.GetSubscription(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	patch.Apply(sub)
	if err := s.repo.UpdateSubscription(ctx, sub); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	s.cacheInvalidate(ctx, id)
	s.log.Info("patched subscription", slog.String("id", id))

	sub.Status = subscription.Derive(sub.Status, sub.EndDate, s.now())
	return sub, nil
}

// Cancel переводит активную подписку в canceled.
func (s *SubscriptionService) Cancel(ctx context.Context, id string) (*models.Subscription, error) {
	return s.transition(ctx, id, subscription.ActionCancel)
}

// Renew возвращает отменённую или истёкшую подписку в active.
func (s *SubscriptionService) Renew(ctx context.Context, id string) (*models.Subscription, error) {
	return s.transition(ctx, id, subscription.ActionRenew)
}

// Inactivate переводит активную подписку в inactive.
func (s *SubscriptionService) Inactivate(ctx context.Context, id string) (*models.Subscription, error) {
	return s.transition(ctx, id, subscription.ActionInactivate)
}

// Activate переводит неактивную или пробную подписку в active.
func (s *SubscriptionService) Activate(ctx context.Context, id string) (*models.Subscription, error) {
	return s.transition(ctx, id, subscription.ActionActivate)
}

// Transition выполняет переход action. Используется обработчиками, получающими действие из маршрута.
func (s *SubscriptionService) Transition(ctx context.Context, id string, action subscription.Action) (*models.Subscription, error) {
	if !action.Valid() {
		return nil, fmt.Errorf("services.subscription.Transition: unknown action %q: %w", action, models.ErrValidation)
	}
	return s.transition(ctx, id, action)
}

func (s *SubscriptionService) transition(ctx context.Context, id string, action subscription.Action) (*models.Subscription, error) {
	op := "services.subscription." + string(action)

	sub, err := s.repo.GetSubscription(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	now := s.now()
	current := subscription.Derive(sub.Status, sub.EndDate, now)
	to, err := subscription.Apply(action, current)
	if err != nil {
		metrics.Transitions.WithLabelValues(string(action), "invalid").Inc()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	change := models.StatusChange{
		ID:      sub.ID,
		From:    sub.Status,
		Version: sub.Version,
		To:      to,
	}
	if action == subscription.ActionRenew && sub.EndDate != nil && !sub.EndDate.After(now) {
		end, err := s.nextPeriodEnd(ctx, sub.PlanID, now)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		change.EndDate = &end
	}

	ok, err := s.repo.CompareAndSwapStatus(ctx, change)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	s.cacheInvalidate(ctx, id)
	if !ok {
		metrics.Transitions.WithLabelValues(string(action), "conflict").Inc()
		if _, err := s.repo.GetSubscription(ctx, id); errors.Is(err, models.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", op, models.ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, models.ErrConflict)
	}
	metrics.Transitions.WithLabelValues(string(action), "ok").Inc()

	sub.Status = to
	sub.Version++
	sub.UpdatedAt = now.UTC()
	if change.EndDate != nil {
		sub.EndDate = change.EndDate
		sub.NotificationSent = false
	}
	s.log.Info("subscription transition",
		slog.String("id", id),
		slog.String("action", string(action)),
		slog.String("from", current.String()),
		slog.String("to", to.String()))
	return sub, nil
}

// nextPeriodEnd — конец нового расчётного периода тарифа, начиная с from.
func (s *SubscriptionService) nextPeriodEnd(ctx context.Context, planID string, from time.Time) (time.Time, error) {
	plan, err := s.plans.GetPlan(ctx, planID)
	if err != nil {
		return time.Time{}, fmt.Errorf("plan %s: %w", planID, err)
	}
	return month.Add(from.UTC(), month.Months(plan.Interval)), nil
}

// Delete удаляет подписку.
func (s *SubscriptionService) Delete(ctx context.Context, id string) error {
	const op = "services.subscription.Delete"

	if err := s.repo.DeleteSubscription(ctx, id); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	s.cacheInvalidate(ctx, id)
	s.log.Info("deleted subscription", slog.String("id", id))
	return nil
}

// load читает подписку из кэша, при промахе из хранилища.
func (s *SubscriptionService) load(ctx context.Context, id string) (*models.Subscription, error) {
	if s.cache != nil {
		var cached models.Subscription
		found, err := s.cache.Get(ctx, cache.SubscriptionKey(id), &cached)
		if err != nil {
			s.log.Warn("failed to read from cache", slog.String("key", cache.SubscriptionKey(id)), sl.Err(err))
		}
		if found {
			return &cached, nil
		}
	}

	sub, err := s.repo.GetSubscription(ctx, id)
	if err != nil {
		return nil, err
	}
	s.cacheSet(ctx, sub)
	return sub, nil
}

func (s *SubscriptionService) cacheSet(ctx context.Context, sub *models.Subscription) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Set(ctx, cache.SubscriptionKey(sub.ID), sub, s.cacheTTL); err != nil {
		s.log.Warn("failed to cache subscription", slog.String("key", cache.SubscriptionKey(sub.ID)), sl.Err(err))
	}
}

func (s *SubscriptionService) cacheInvalidate(ctx context.Context, id string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, cache.SubscriptionKey(id)); err != nil {
		s.log.Warn("failed to invalidate cache", slog.String("key", cache.SubscriptionKey(id)), sl.Err(err))
	}
}
