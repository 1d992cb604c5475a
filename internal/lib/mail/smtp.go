package mail

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net"
	"net/smtp"
	"strings"
	"time"

	"github.com/magabrotheeeer/subscription-manager/internal/config"
	"github.com/magabrotheeeer/subscription-manager/internal/lib/sl"
)

// Client — часть *smtp.Client, нужная для отправки письма.
type Client interface {
	Mail(from string) error
	Rcpt(to string) error
	Data() (io.WriteCloser, error)
	Quit() error
	Close() error
}

// Transport открывает авторизованную SMTP-сессию.
type Transport interface {
	Connect(ctx context.Context) (Client, error)
	User() string
}

// SMTPTransport подключается к SMTP-серверу с STARTTLS и PLAIN-авторизацией.
type SMTPTransport struct {
	cfg config.Mail
	log *slog.Logger
}

// NewSMTPTransport создаёт транспорт по настройкам cfg.
func NewSMTPTransport(cfg config.Mail, log *slog.Logger) *SMTPTransport {
	return &SMTPTransport{cfg: cfg, log: log}
}

// User возвращает имя пользователя SMTP.
func (t *SMTPTransport) User() string {
	return t.cfg.SMTPUser
}

// Connect устанавливает соединение с SMTP-сервером.
func (t *SMTPTransport) Connect(ctx context.Context) (Client, error) {
	const op = "mail.SMTPTransport.Connect"
	addr := net.JoinHostPort(t.cfg.SMTPHost, t.cfg.SMTPPort)

	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to dial SMTP server: %w", op, err)
	}

	client, err := smtp.NewClient(conn, t.cfg.SMTPHost)
	if err != nil {
		t.closeQuietly(conn)
		return nil, fmt.Errorf("%s: failed to create SMTP client: %w", op, err)
	}

	if ok, _ := client.Extension("STARTTLS"); !ok {
		t.closeQuietly(client)
		return nil, fmt.Errorf("%s: smtp server does not support STARTTLS", op)
	}
	tlsConfig := &tls.Config{
		ServerName: t.cfg.SMTPHost,
		MinVersion: tls.VersionTLS12,
	}
	if err = client.StartTLS(tlsConfig); err != nil {
		t.closeQuietly(client)
		return nil, fmt.Errorf("%s: failed to start TLS: %w", op, err)
	}

	auth := smtp.PlainAuth("", t.cfg.SMTPUser, t.cfg.SMTPPass, t.cfg.SMTPHost)
	if err = client.Auth(auth); err != nil {
		t.closeQuietly(client)
		return nil, fmt.Errorf("%s: smtp auth failed: %w", op, err)
	}
	return client, nil
}

func (t *SMTPTransport) closeQuietly(c io.Closer) {
	if err := c.Close(); err != nil {
		t.log.Error("failed to close smtp connection", sl.Err(err))
	}
}

// SMTPMailer отправляет письма через Transport, открывая сессию на каждое письмо.
type SMTPMailer struct {
	transport Transport
	from      string
	log       *slog.Logger
}

// NewSMTPMailer создаёт SMTPMailer. Пустой from заменяется пользователем SMTP.
func NewSMTPMailer(transport Transport, from string, log *slog.Logger) *SMTPMailer {
	return &SMTPMailer{transport: transport, from: from, log: log}
}

// Send отправляет письмо msg.
func (m *SMTPMailer) Send(ctx context.Context, msg Message) error {
	const op = "mail.SMTPMailer.Send"
	if msg.To == "" {
		return fmt.Errorf("%s: %w", op, ErrNoRecipient)
	}
	from := firstNonEmpty(msg.From, m.from, m.transport.User())

	client, err := m.transport.Connect(ctx)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		if err := client.Close(); err != nil && !errors.Is(err, net.ErrClosed) {
			m.log.Debug("smtp close", sl.Err(err))
		}
	}()

	if err := client.Mail(from); err != nil {
		return fmt.Errorf("%s: MAIL FROM %s: %w", op, from, err)
	}
	if err := client.Rcpt(msg.To); err != nil {
		return fmt.Errorf("%s: RCPT TO %s: %w", op, msg.To, err)
	}
	wc, err := client.Data()
	if err != nil {
		return fmt.Errorf("%s: DATA: %w", op, err)
	}
	if _, err = io.WriteString(wc, compose(from, msg, time.Now())); err != nil {
		return fmt.Errorf("%s: write body: %w", op, err)
	}
	if err = wc.Close(); err != nil {
		return fmt.Errorf("%s: close body: %w", op, err)
	}
	if err = client.Quit(); err != nil {
		return fmt.Errorf("%s: QUIT: %w", op, err)
	}

	m.log.Info("email sent", slog.String("to", msg.To))
	return nil
}

// headerBreaks убирает переводы строк, чтобы значение не могло начать новый заголовок.
var headerBreaks = strings.NewReplacer("\r\n", " ", "\r", " ", "\n", " ")

// compose собирает RFC 5322 письмо с текстовым телом.
// Тема кодируется по RFC 2047, если содержит не-ASCII символы.
func compose(from string, msg Message, now time.Time) string {
	return strings.Join([]string{
		"From: " + headerBreaks.Replace(from),
		"To: " + headerBreaks.Replace(msg.To),
		"Subject: " + mime.QEncoding.Encode("utf-8", headerBreaks.Replace(msg.Subject)),
		"Date: " + now.Format(time.RFC1123Z),
		"MIME-Version: 1.0",
		"Content-Type: text/plain; charset=\"UTF-8\"",
		"",
		msg.Text,
	}, "\r\n")
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
