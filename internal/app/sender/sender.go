// Package sender собирает приложение reminder-sender: потребитель очереди
// напоминаний, доставляющий письма через SMTP или SendGrid.
package sender

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/streadway/amqp"

	"github.com/magabrotheeeer/subscription-manager/internal/config"
	"github.com/magabrotheeeer/subscription-manager/internal/lib/mail"
	"github.com/magabrotheeeer/subscription-manager/internal/lib/sl"
	"github.com/magabrotheeeer/subscription-manager/internal/rabbitmq"
	senderservice "github.com/magabrotheeeer/subscription-manager/internal/services/sender"
)

// App читает очередь напоминаний и отправляет письма.
type App struct {
	conn          *amqp.Connection
	ch            *amqp.Channel
	senderService *senderservice.SenderService
	logger        *slog.Logger
}

// New подключается к RabbitMQ и создаёт отправителя писем.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	mailer, err := mail.New(cfg.DeliveryProvider, cfg.Mail, logger, nil)
	if err != nil {
		return nil, err
	}

	conn, err := rabbitmq.Connect(ctx, cfg.RabbitMQURL, cfg.RabbitMQMaxRetries, cfg.RabbitMQRetryDelay)
	if err != nil {
		return nil, fmt.Errorf("failed to connect RabbitMQ: %w", err)
	}

	ch, err := rabbitmq.SetupChannel(conn, rabbitmq.NotificationQueues())
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to setup RabbitMQ channel: %w", err)
	}

	return &App{
		conn:          conn,
		ch:            ch,
		senderService: senderservice.NewSenderService(mailer, logger),
		logger:        logger,
	}, nil
}

// Run обрабатывает очередь до отмены ctx и дожидается завершения начатых отправок.
func (a *App) Run(ctx context.Context) error {
	done, err := rabbitmq.ConsumerMessage(ctx, a.logger, a.ch, rabbitmq.ReminderQueue, a.senderService.Handle)
	if err != nil {
		a.logger.Error("failed to start reminder queue consumer", sl.Err(err))
		return err
	}

	<-done
	a.logger.Info("Sender service shutting down gracefully")

	if err := a.ch.Close(); err != nil {
		a.logger.Error("failed to close channel", sl.Err(err))
	}

	if err := a.conn.Close(); err != nil {
		a.logger.Error("failed to close connection", sl.Err(err))
	}

	return nil
}
