// Package mail отправляет письма через SMTP, HTTP API SendGrid или очередь RabbitMQ.
package mail

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/magabrotheeeer/subscription-manager/internal/config"
)

// Message — текстовое письмо одному получателю.
type Message struct {
	To      string `json:"to"`
	From    string `json:"from,omitempty"`
	Subject string `json:"subject"`
	Text    string `json:"text"`
}

// Mailer отправляет письмо. Реализации должны быть безопасны для параллельного вызова.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// ErrNoRecipient возвращается при пустом адресе получателя.
var ErrNoRecipient = errors.New("mail: empty recipient")

// New создаёт Mailer для провайдера provider. Для провайдера queue нужен publisher.
func New(provider string, cfg config.Mail, log *slog.Logger, publisher Publisher) (Mailer, error) {
	switch provider {
	case config.MailProviderSMTP:
		return NewSMTPMailer(NewSMTPTransport(cfg, log), cfg.From, log), nil
	case config.MailProviderSendGrid:
		if cfg.SendGridAPIKey == "" {
			return nil, errors.New("mail: sendgrid api key is empty")
		}
		return NewSendGridMailer(cfg.SendGridAPIKey, cfg.SendGridURL, cfg.From), nil
	case config.MailProviderQueue:
		if publisher == nil {
			return nil, errors.New("mail: queue provider requires a publisher")
		}
		return NewQueueMailer(publisher), nil
	default:
		return nil, fmt.Errorf("mail: unknown provider %q", provider)
	}
}
