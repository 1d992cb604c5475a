// Package services содержит рассылку напоминаний об окончании подписок.
package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/magabrotheeeer/subscription-manager/internal/cache"
	"github.com/magabrotheeeer/subscription-manager/internal/lib/mail"
	"github.com/magabrotheeeer/subscription-manager/internal/lib/sl"
	"github.com/magabrotheeeer/subscription-manager/internal/metrics"
	"github.com/magabrotheeeer/subscription-manager/internal/models"
)

// DefaultWindow — горизонт напоминаний по умолчанию.
const DefaultWindow = 72 * time.Hour

// DefaultWorkers — число параллельных отправок по умолчанию.
const DefaultWorkers = 4

// dateLayout повторяет формат даты в тексте письма: "Tue Mar 11 2025".
const dateLayout = "Mon Jan 02 2006"

// SubscriptionRepository определяет методы хранилища, нужные рассылке.
type SubscriptionRepository interface {
	FindExpiringSubscriptions(ctx context.Context, from, until time.Time) ([]models.ExpiringSubscription, error)
	ClaimReminder(ctx context.Context, id string) (bool, error)
	ReleaseReminder(ctx context.Context, id string) error
}

// NotificationRecorder сохраняет отправленные напоминания.
type NotificationRecorder interface {
	CreateNotification(ctx context.Context, n *models.Notification) error
}

// Invalidator сбрасывает закэшированную подписку после смены флага напоминания.
type Invalidator interface {
	Invalidate(ctx context.Context, key string) error
}

// Report — итог одного прогона рассылки.
type Report struct {
	Candidates int `json:"candidates"`
	Sent       int `json:"sent"`
	Failed     int `json:"failed"`
	Skipped    int `json:"skipped"`
}

// SweepService находит подписки, истекающие в пределах окна, и отправляет
// владельцам по одному напоминанию.
type SweepService struct {
	repo     SubscriptionRepository
	mailer   mail.Mailer
	recorder NotificationRecorder
	cache    Invalidator
	window   time.Duration
	workers  int
	log      *slog.Logger
	now      func() time.Time
}

// Option настраивает SweepService.
type Option func(*SweepService)

// WithWindow задаёт горизонт напоминаний.
func WithWindow(window time.Duration) Option {
	return func(s *SweepService) {
		if window > 0 {
			s.window = window
		}
	}
}

// WithWorkers задаёт число параллельных отправок.
func WithWorkers(workers int) Option {
	return func(s *SweepService) {
		if workers > 0 {
			s.workers = workers
		}
	}
}

// WithRecorder включает сохранение отправленных напоминаний в уведомления пользователя.
func WithRecorder(recorder NotificationRecorder) Option {
	return func(s *SweepService) {
		s.recorder = recorder
	}
}

// WithCache включает сброс кэша подписки при захвате и освобождении напоминания.
func WithCache(cache Invalidator) Option {
	return func(s *SweepService) {
		s.cache = cache
	}
}

// WithClock подменяет источник текущего времени.
func WithClock(now func() time.Time) Option {
	return func(s *SweepService) {
		s.now = now
	}
}

// NewSweepService создаёт новый экземпляр SweepService.
func NewSweepService(repo SubscriptionRepository, mailer mail.Mailer, log *slog.Logger, opts ...Option) *SweepService {
	s := &SweepService{
		repo:    repo,
		mailer:  mailer,
		window:  DefaultWindow,
		workers: DefaultWorkers,
		log:     log,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ReminderMessage формирует письмо-напоминание для подписки.
func ReminderMessage(sub models.ExpiringSubscription) mail.Message {
	return mail.Message{
		To:      sub.Email,
		Subject: fmt.Sprintf("Reminder: Your %s subscription is expiring soon", sub.ServiceName),
		Text: fmt.Sprintf("Hi, your subscription for %s will expire on %s. "+
			"Please take action to renew or cancel as necessary.",
			sub.ServiceName, sub.EndDate.Format(dateLayout)),
	}
}

// Run выполняет один прогон. Ошибка возвращается, только если не удалось
// загрузить кандидатов; сбой отправки одному получателю на остальных не влияет.
func (s *SweepService) Run(ctx context.Context) (Report, error) {
	const op = "services.reminder.Run"

	log := s.log.With(slog.String("op", op))
	timer := metrics.NewTimer()
	defer timer.ObserveDuration(metrics.SweepDuration)

	now := s.now().UTC()
	candidates, err := s.repo.FindExpiringSubscriptions(ctx, now, now.Add(s.window))
	if err != nil {
		metrics.SweepErrors.Inc()
		return Report{}, fmt.Errorf("%s: %w", op, err)
	}
	log.Info("starting reminder sweep", slog.Int("candidates", len(candidates)))

	var sent, failed, skipped atomic.Int64
	g := new(errgroup.Group)
	g.SetLimit(s.workers)
	for _, sub := range candidates {
		if ctx.Err() != nil {
			break
		}
		g.Go(func() error {
			switch s.remind(ctx, log, sub) {
			case metrics.OutcomeSent:
				sent.Add(1)
			case metrics.OutcomeFailed:
				failed.Add(1)
			default:
				skipped.Add(1)
			}
			return nil
		})
	}
	_ = g.Wait()

	report := Report{
		Candidates: len(candidates),
		Sent:       int(sent.Load()),
		Failed:     int(failed.Load()),
		Skipped:    int(skipped.Load()),
	}
	// Кандидаты, до которых не дошли из-за отмены контекста, считаются пропущенными.
	report.Skipped += report.Candidates - report.Sent - report.Failed - report.Skipped
	log.Info("reminder sweep finished",
		slog.Int("sent", report.Sent),
		slog.Int("failed", report.Failed),
		slog.Int("skipped", report.Skipped))
	return report, nil
}

// remind обрабатывает одну подписку и возвращает исход.
func (s *SweepService) remind(ctx context.Context, log *slog.Logger, sub models.ExpiringSubscription) string {
	log = log.With(slog.String("subscription_id", sub.ID))

	if sub.Email == "" {
		log.Warn("owner has no email, skipping reminder", slog.String("user_id", sub.UserID))
		return s.outcome(metrics.OutcomeSkipped)
	}

	claimed, err := s.repo.ClaimReminder(ctx, sub.ID)
	if err != nil {
		log.Error("failed to claim reminder", sl.Err(err))
		return s.outcome(metrics.OutcomeFailed)
	}
	if !claimed {
		log.Info("reminder already claimed")
		return s.outcome(metrics.OutcomeSkipped)
	}
	s.invalidate(ctx, log, sub.ID)

	if err := s.mailer.Send(ctx, ReminderMessage(sub)); err != nil {
		log.Error("failed to send reminder", slog.String("to", sub.Email), sl.Err(err))
		if err := s.repo.ReleaseReminder(context.WithoutCancel(ctx), sub.ID); err != nil {
			log.Error("failed to release reminder claim", sl.Err(err))
		}
		s.invalidate(context.WithoutCancel(ctx), log, sub.ID)
		return s.outcome(metrics.OutcomeFailed)
	}
	log.Info("reminder sent", slog.String("to", sub.Email))

	s.record(ctx, log, sub)
	return s.outcome(metrics.OutcomeSent)
}

func (s *SweepService) invalidate(ctx context.Context, log *slog.Logger, id string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, cache.SubscriptionKey(id)); err != nil {
		log.Warn("failed to invalidate cache", slog.String("key", cache.SubscriptionKey(id)), sl.Err(err))
	}
}

// record сохраняет уведомление об отправленном письме. Ошибка только логируется:
// письмо уже ушло, и флаг подписки выставлен.
func (s *SweepService) record(ctx context.Context, log *slog.Logger, sub models.ExpiringSubscription) {
	if s.recorder == nil {
		return
	}
	subID := sub.ID
	n := &models.Notification{
		ID:             uuid.NewString(),
		UserID:         sub.UserID,
		SubscriptionID: &subID,
		Message:        ReminderMessage(sub).Subject,
		DeliveryDate:   s.now().UTC(),
		Status:         models.NotificationSent,
	}
	if err := s.recorder.CreateNotification(ctx, n); err != nil {
		log.Warn("failed to record notification", sl.Err(err))
	}
}

func (s *SweepService) outcome(outcome string) string {
	metrics.ReminderOutcomes.WithLabelValues(outcome).Inc()
	return outcome
}
