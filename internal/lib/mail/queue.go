package mail

import (
	"context"
	"fmt"

	"github.com/magabrotheeeer/subscription-manager/internal/rabbitmq"
)

// Publisher публикует сообщение в брокер.
type Publisher interface {
	Publish(ctx context.Context, routingKey string, message any) error
}

// QueueMailer ставит письмо в очередь напоминаний. Доставку выполняет reminder-sender.
type QueueMailer struct {
	publisher  Publisher
	routingKey string
}

// NewQueueMailer создаёт QueueMailer, публикующий с ключом rabbitmq.ReminderRoutingKey.
func NewQueueMailer(publisher Publisher) *QueueMailer {
	return &QueueMailer{publisher: publisher, routingKey: rabbitmq.ReminderRoutingKey}
}

// Send публикует msg. Успех означает, что брокер принял сообщение.
func (m *QueueMailer) Send(ctx context.Context, msg Message) error {
	const op = "mail.QueueMailer.Send"
	if msg.To == "" {
		return fmt.Errorf("%s: %w", op, ErrNoRecipient)
	}
	if err := m.publisher.Publish(ctx, m.routingKey, msg); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
