// Package services содержит доставку писем, поступающих из очереди напоминаний.
package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/magabrotheeeer/subscription-manager/internal/lib/mail"
	"github.com/magabrotheeeer/subscription-manager/internal/lib/sl"
)

// SenderService доставляет письма из очереди через настоящий почтовый транспорт.
type SenderService struct {
	mailer mail.Mailer
	log    *slog.Logger
}

// NewSenderService создает новый экземпляр SenderService.
func NewSenderService(mailer mail.Mailer, log *slog.Logger) *SenderService {
	return &SenderService{
		mailer: mailer,
		log:    log,
	}
}

// Handle обрабатывает тело сообщения очереди. Ошибка доставки возвращается,
// и сообщение уходит обратно в очередь. Нечитаемые сообщения и сообщения без
// получателя отбрасываются: повтор их не исправит.
func (s *SenderService) Handle(ctx context.Context, body []byte) error {
	const op = "services.sender.Handle"
	log := s.log.With(slog.String("op", op))

	var msg mail.Message
	if err := json.Unmarshal(body, &msg); err != nil {
		log.Error("failed to unmarshal message body, dropping", sl.Err(err))
		return nil
	}
	if msg.To == "" {
		log.Error("message has no recipient, dropping", slog.String("subject", msg.Subject))
		return nil
	}

	if err := s.mailer.Send(ctx, msg); err != nil {
		log.Error("failed to deliver email", slog.String("to", msg.To), sl.Err(err))
		return fmt.Errorf("%s: %w", op, err)
	}
	log.Info("email sent successfully", slog.String("to", msg.To))
	return nil
}
