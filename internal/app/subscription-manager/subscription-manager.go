package subscriptionmanager

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"
	"github.com/robfig/cron/v3"
	"github.com/streadway/amqp"
	"golang.org/x/time/rate"

	"github.com/magabrotheeeer/subscription-manager/internal/cache"
	"github.com/magabrotheeeer/subscription-manager/internal/config"
	"github.com/magabrotheeeer/subscription-manager/internal/lib/jwt"
	"github.com/magabrotheeeer/subscription-manager/internal/lib/mail"
	"github.com/magabrotheeeer/subscription-manager/internal/lib/sl"
	"github.com/magabrotheeeer/subscription-manager/internal/migrations"
	"github.com/magabrotheeeer/subscription-manager/internal/rabbitmq"
	authservice "github.com/magabrotheeeer/subscription-manager/internal/services/auth"
	notificationservice "github.com/magabrotheeeer/subscription-manager/internal/services/notification"
	paymentmethods "github.com/magabrotheeeer/subscription-manager/internal/services/payment-methods"
	planservice "github.com/magabrotheeeer/subscription-manager/internal/services/plan"
	reminderservice "github.com/magabrotheeeer/subscription-manager/internal/services/reminder"
	subservice "github.com/magabrotheeeer/subscription-manager/internal/services/subscription"
	userservice "github.com/magabrotheeeer/subscription-manager/internal/services/user"
	"github.com/magabrotheeeer/subscription-manager/internal/storage/repository"
)

// App — HTTP API и периодическая рассылка напоминаний.
type App struct {
	server *http.Server
	logger *slog.Logger
	db     *repository.Storage
	cache  *cache.Cache
	cron   *cron.Cron
	conn   *amqp.Connection
	ch     *amqp.Channel
}

// New подключает хранилища, применяет миграции и собирает сервисы.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	db, err := repository.New(cfg.StorageConnectionString)
	if err != nil {
		return nil, err
	}
	if err = migrations.Run(db.DB, cfg.MigrationsPath); err != nil {
		db.Close()
		return nil, err
	}

	app := &App{
		logger: logger,
		db:     db,
	}

	var subCache subservice.Cache
	cacheRedis, err := cache.InitServer(ctx, cfg.RedisConnection)
	if err != nil {
		logger.Warn("redis is unavailable, subscription cache disabled", sl.Err(err))
	} else {
		subCache = cacheRedis
		app.cache = cacheRedis
	}

	mailer, err := app.newMailer(ctx, cfg)
	if err != nil {
		app.close()
		return nil, err
	}

	jwtMaker := jwt.NewMaker(cfg.JWTSecretKey, cfg.TokenTTL)
	svc := Services{
		Auth:           authservice.NewAuthService(db, jwtMaker),
		Subscriptions:  subservice.NewSubscriptionService(db, db, db, subCache, cfg.CacheTTL, logger),
		Users:          userservice.NewUserService(db, logger),
		Plans:          planservice.NewPlanService(db, logger),
		PaymentMethods: paymentmethods.NewPaymentMethodsService(db, logger),
		Notifications:  notificationservice.NewNotificationService(db, logger),
		Sweep: reminderservice.NewSweepService(db, mailer, logger,
			reminderservice.WithWindow(cfg.Reminder.Window),
			reminderservice.WithWorkers(cfg.Reminder.Workers),
			reminderservice.WithRecorder(db),
			reminderservice.WithCache(subCache),
		),
		DB: db.DB,
	}

	app.cron = cron.New(cron.WithChain(
		cron.Recover(cron.PrintfLogger(slog.NewLogLogger(logger.Handler(), slog.LevelError))),
		cron.SkipIfStillRunning(cron.PrintfLogger(slog.NewLogLogger(logger.Handler(), slog.LevelInfo))),
	))
	if _, err = app.cron.AddFunc(cfg.Reminder.Schedule, func() { app.sweep(ctx, svc.Sweep) }); err != nil {
		app.close()
		return nil, fmt.Errorf("invalid reminder schedule %q: %w", cfg.Reminder.Schedule, err)
	}

	router := chi.NewRouter()
	RegisterRoutes(router, logger, svc, rate.NewLimiter(rate.Limit(cfg.RateLimit), cfg.RateBurst))

	app.server = &http.Server{
		Addr:         cfg.AddressHTTP,
		Handler:      router,
		ReadTimeout:  cfg.TimeoutHTTP,
		WriteTimeout: cfg.TimeoutHTTP,
		IdleTimeout:  cfg.IdleTimeout,
	}
	return app, nil
}

// newMailer создаёт отправителя писем. Для провайдера queue открывает соединение с RabbitMQ.
func (a *App) newMailer(ctx context.Context, cfg *config.Config) (mail.Mailer, error) {
	if cfg.Provider != config.MailProviderQueue {
		return mail.New(cfg.Provider, cfg.Mail, a.logger, nil)
	}

	conn, err := rabbitmq.Connect(ctx, cfg.RabbitMQURL, cfg.RabbitMQMaxRetries, cfg.RabbitMQRetryDelay)
	if err != nil {
		return nil, fmt.Errorf("failed to connect RabbitMQ: %w", err)
	}
	a.conn = conn

	ch, err := rabbitmq.SetupChannel(conn, rabbitmq.NotificationQueues())
	if err != nil {
		return nil, fmt.Errorf("failed to setup RabbitMQ channel: %w", err)
	}
	a.ch = ch
	return mail.New(cfg.Provider, cfg.Mail, a.logger, rabbitmq.NewPublisher(ch))
}

func (a *App) sweep(ctx context.Context, s *reminderservice.SweepService) {
	report, err := s.Run(ctx)
	if err != nil {
		a.logger.Error("scheduled reminder sweep failed", sl.Err(err))
		return
	}
	a.logger.Info("scheduled reminder sweep completed",
		slog.Int("candidates", report.Candidates),
		slog.Int("sent", report.Sent),
		slog.Int("failed", report.Failed),
		slog.Int("skipped", report.Skipped),
	)
}

// Run запускает HTTP-сервер и планировщик и блокируется до отмены ctx.
func (a *App) Run(ctx context.Context) error {
	a.cron.Start()

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("HTTP server starting on", slog.String("address", a.server.Addr))
		err := a.server.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			errCh <- nil
		} else {
			errCh <- err
		}
	}()

	var err error
	select {
	case err = <-errCh:
	case <-ctx.Done():
		timeoutCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		a.logger.Info("shutting down HTTP server gracefully")
		err = a.server.Shutdown(timeoutCtx)
	}

	<-a.cron.Stop().Done()
	a.close()
	return err
}

func (a *App) close() {
	if a.ch != nil {
		if err := a.ch.Close(); err != nil {
			a.logger.Error("failed to close channel", sl.Err(err))
		}
	}
	if a.conn != nil {
		if err := a.conn.Close(); err != nil {
			a.logger.Error("failed to close connection", sl.Err(err))
		}
	}
	if a.cache != nil {
		if err := a.cache.Close(); err != nil {
			a.logger.Error("failed to close redis", sl.Err(err))
		}
	}
	if err := a.db.Close(); err != nil {
		a.logger.Error("failed to close database", sl.Err(err))
	}
}
