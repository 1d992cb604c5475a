package mail

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/subscription-manager/internal/config"
	"github.com/magabrotheeeer/subscription-manager/internal/lib/sl"
	"github.com/magabrotheeeer/subscription-manager/internal/rabbitmq"
)

type MockTransport struct {
	mock.Mock
}

func (m *MockTransport) Connect(ctx context.Context) (Client, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(Client), args.Error(1)
}

func (m *MockTransport) User() string {
	return m.Called().String(0)
}

type MockClient struct {
	mock.Mock
}

func (m *MockClient) Mail(from string) error { return m.Called(from).Error(0) }
func (m *MockClient) Rcpt(to string) error   { return m.Called(to).Error(0) }
func (m *MockClient) Quit() error            { return m.Called().Error(0) }
func (m *MockClient) Close() error           { return m.Called().Error(0) }

func (m *MockClient) Data() (io.WriteCloser, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(io.WriteCloser), args.Error(1)
}

type bufferCloser struct {
	bytes.Buffer
	closed bool
}

func (b *bufferCloser) Close() error {
	b.closed = true
	return nil
}

type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Publish(ctx context.Context, routingKey string, message any) error {
	return m.Called(ctx, routingKey, message).Error(0)
}

var testMessage = Message{
	To:      "alice@example.com",
	Subject: "Reminder: Your Netflix subscription is expiring soon",
	Text:    "Hi, your subscription for Netflix will expire on Mon Mar 3 2025.",
}

func TestSMTPMailer_Send(t *testing.T) {
	ctx := context.Background()
	client := new(MockClient)
	transport := new(MockTransport)
	body := &bufferCloser{}

	transport.On("User").Return("smtp-user@example.com")
	transport.On("Connect", ctx).Return(client, nil)
	client.On("Mail", "noreply@example.com").Return(nil)
	client.On("Rcpt", "alice@example.com").Return(nil)
	client.On("Data").Return(body, nil)
	client.On("Quit").Return(nil)
	client.On("Close").Return(nil)

	m := NewSMTPMailer(transport, "noreply@example.com", sl.Discard())
	require.NoError(t, m.Send(ctx, testMessage))

	assert.True(t, body.closed)
	assert.Contains(t, body.String(), "To: alice@example.com\r\n")
	assert.Contains(t, body.String(), "Subject: "+testMessage.Subject+"\r\n")
	assert.Contains(t, body.String(), "\r\n\r\n"+testMessage.Text)
	client.AssertExpectations(t)
}

func TestSMTPMailer_FallsBackToTransportUser(t *testing.T) {
	ctx := context.Background()
	client := new(MockClient)
	transport := new(MockTransport)

	transport.On("User").Return("smtp-user@example.com")
	transport.On("Connect", ctx).Return(client, nil)
	client.On("Mail", "smtp-user@example.com").Return(nil)
	client.On("Rcpt", mock.Anything).Return(nil)
	client.On("Data").Return(&bufferCloser{}, nil)
	client.On("Quit").Return(nil)
	client.On("Close").Return(nil)

	require.NoError(t, NewSMTPMailer(transport, "", sl.Discard()).Send(ctx, testMessage))
	client.AssertCalled(t, "Mail", "smtp-user@example.com")
}

func TestSMTPMailer_Errors(t *testing.T) {
	ctx := context.Background()
	errSMTP := errors.New("smtp failure")

	tests := []struct {
		name  string
		msg   Message
		setup func(tr *MockTransport, c *MockClient)
		want  error
	}{
		{
			name:  "empty recipient",
			msg:   Message{Subject: "x"},
			setup: func(_ *MockTransport, _ *MockClient) {},
			want:  ErrNoRecipient,
		},
		{
			name: "connect fails",
			msg:  testMessage,
			setup: func(tr *MockTransport, _ *MockClient) {
				tr.On("Connect", ctx).Return(nil, errSMTP)
			},
			want: errSMTP,
		},
		{
			name: "rcpt rejected",
			msg:  testMessage,
			setup: func(tr *MockTransport, c *MockClient) {
				tr.On("Connect", ctx).Return(c, nil)
				c.On("Mail", mock.Anything).Return(nil)
				c.On("Rcpt", mock.Anything).Return(errSMTP)
				c.On("Close").Return(nil)
			},
			want: errSMTP,
		},
		{
			name: "data fails",
			msg:  testMessage,
			setup: func(tr *MockTransport, c *MockClient) {
				tr.On("Connect", ctx).Return(c, nil)
				c.On("Mail", mock.Anything).Return(nil)
				c.On("Rcpt", mock.Anything).Return(nil)
				c.On("Data").Return(nil, errSMTP)
				c.On("Close").Return(nil)
			},
			want: errSMTP,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := new(MockTransport)
			c := new(MockClient)
			tr.On("User").Return("smtp-user@example.com").Maybe()
			tt.setup(tr, c)

			err := NewSMTPMailer(tr, "noreply@example.com", sl.Discard()).Send(ctx, tt.msg)
			require.ErrorIs(t, err, tt.want)
		})
	}
}

func TestCompose(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	got := compose("noreply@example.com", testMessage, now)

	assert.Contains(t, got, "From: noreply@example.com\r\n")
	assert.Contains(t, got, "Date: Sat, 01 Mar 2025 12:00:00 +0000\r\n")
	assert.Contains(t, got, "Content-Type: text/plain; charset=\"UTF-8\"\r\n")
}

func TestCompose_HeaderBreaks(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	msg := Message{
		To:      "alice@example.com\r\nCc: victim@example.com",
		Subject: "Reminder: Your Spotify\r\nBcc: attacker@evil.test\r\n subscription is expiring soon",
		Text:    "body line\r\nsecond line",
	}
	got := compose("noreply@example.com\nReply-To: x@evil.test", msg, now)

	headers, body, ok := strings.Cut(got, "\r\n\r\n")
	require.True(t, ok)
	lines := strings.Split(headers, "\r\n")
	require.Len(t, lines, 6)
	for _, line := range lines {
		assert.NotRegexp(t, `^(Bcc|Cc|Reply-To):`, line)
	}
	assert.True(t, strings.HasPrefix(lines[2], "Subject: Reminder: Your Spotify Bcc: attacker@evil.test"))
	assert.Equal(t, "body line\r\nsecond line", body)
}

func TestCompose_EncodesNonASCIISubject(t *testing.T) {
	msg := testMessage
	msg.Subject = "Напоминание о подписке"
	got := compose("noreply@example.com", msg, time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC))

	assert.Contains(t, got, "Subject: =?utf-8?q?")
	assert.NotContains(t, got, "Напоминание")
}

func TestSendGridMailer_Send(t *testing.T) {
	var got sendGridRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v3/mail/send", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	m := NewSendGridMailer("test-key", srv.URL+"/", "noreply@example.com")
	require.NoError(t, m.Send(context.Background(), testMessage))

	require.Len(t, got.Personalizations, 1)
	assert.Equal(t, "alice@example.com", got.Personalizations[0].To[0].Email)
	assert.Equal(t, "noreply@example.com", got.From.Email)
	assert.Equal(t, testMessage.Subject, got.Subject)
	assert.Equal(t, []sendGridContent{{Type: "text/plain", Value: testMessage.Text}}, got.Content)
}

func TestSendGridMailer_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"errors":[{"message":"invalid api key"}]}`))
	}))
	defer srv.Close()

	err := NewSendGridMailer("bad", srv.URL, "noreply@example.com").Send(context.Background(), testMessage)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "401")
	assert.Contains(t, err.Error(), "invalid api key")
}

func TestSendGridMailer_ContextCanceled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := NewSendGridMailer("k", srv.URL, "noreply@example.com").Send(ctx, testMessage)
	require.ErrorIs(t, err, context.Canceled)
}

func TestQueueMailer_Send(t *testing.T) {
	ctx := context.Background()
	pub := new(MockPublisher)
	pub.On("Publish", ctx, rabbitmq.ReminderRoutingKey, testMessage).Return(nil).Once()

	require.NoError(t, NewQueueMailer(pub).Send(ctx, testMessage))
	pub.AssertExpectations(t)
}

func TestQueueMailer_PublishError(t *testing.T) {
	ctx := context.Background()
	pub := new(MockPublisher)
	pub.On("Publish", ctx, rabbitmq.ReminderRoutingKey, testMessage).Return(errors.New("channel closed"))

	require.Error(t, NewQueueMailer(pub).Send(ctx, testMessage))
	require.ErrorIs(t, NewQueueMailer(pub).Send(ctx, Message{}), ErrNoRecipient)
}

func TestNew(t *testing.T) {
	cfg := config.Mail{From: "noreply@example.com", SendGridAPIKey: "k", SendGridURL: "https://api.sendgrid.com"}

	tests := []struct {
		name      string
		provider  string
		cfg       config.Mail
		publisher Publisher
		wantType  Mailer
		wantErr   bool
	}{
		{name: "smtp", provider: config.MailProviderSMTP, cfg: cfg, wantType: &SMTPMailer{}},
		{name: "sendgrid", provider: config.MailProviderSendGrid, cfg: cfg, wantType: &SendGridMailer{}},
		{name: "sendgrid without key", provider: config.MailProviderSendGrid, cfg: config.Mail{}, wantErr: true},
		{name: "queue", provider: config.MailProviderQueue, cfg: cfg, publisher: new(MockPublisher), wantType: &QueueMailer{}},
		{name: "queue without publisher", provider: config.MailProviderQueue, cfg: cfg, wantErr: true},
		{name: "unknown", provider: "pigeon", cfg: cfg, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := New(tt.provider, tt.cfg, sl.Discard(), tt.publisher)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.IsType(t, tt.wantType, m)
		})
	}
}
