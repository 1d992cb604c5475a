package services

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/subscription-manager/internal/lib/mail"
	"github.com/magabrotheeeer/subscription-manager/internal/lib/sl"
)

type MockMailer struct {
	mock.Mock
}

func (m *MockMailer) Send(ctx context.Context, msg mail.Message) error {
	return m.Called(ctx, msg).Error(0)
}

func body(t *testing.T, msg mail.Message) []byte {
	t.Helper()
	b, err := json.Marshal(msg)
	require.NoError(t, err)
	return b
}

func TestSenderService_Handle(t *testing.T) {
	ctx := context.Background()
	msg := mail.Message{
		To:      "ann@example.com",
		Subject: "Reminder: Your Netflix subscription is expiring soon",
		Text:    "Hi, your subscription for Netflix will expire on Tue Mar 04 2025.",
	}

	tests := []struct {
		name       string
		body       func(t *testing.T) []byte
		setupMocks func(m *MockMailer)
		wantErr    bool
		wantSend   bool
	}{
		{
			name: "delivered",
			body: func(t *testing.T) []byte { return body(t, msg) },
			setupMocks: func(m *MockMailer) {
				m.On("Send", ctx, msg).Return(nil).Once()
			},
			wantSend: true,
		},
		{
			name: "transport failure requeues",
			body: func(t *testing.T) []byte { return body(t, msg) },
			setupMocks: func(m *MockMailer) {
				m.On("Send", ctx, msg).Return(errors.New("connection refused")).Once()
			},
			wantErr:  true,
			wantSend: true,
		},
		{
			name:       "malformed body dropped",
			body:       func(*testing.T) []byte { return []byte("{not json") },
			setupMocks: func(*MockMailer) {},
		},
		{
			name:       "empty recipient dropped",
			body:       func(t *testing.T) []byte { return body(t, mail.Message{Subject: "x"}) },
			setupMocks: func(*MockMailer) {},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mailer := new(MockMailer)
			tt.setupMocks(mailer)

			err := NewSenderService(mailer, sl.Discard()).Handle(ctx, tt.body(t))
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
			if tt.wantSend {
				mailer.AssertExpectations(t)
			} else {
				mailer.AssertNotCalled(t, "Send", mock.Anything, mock.Anything)
			}
		})
	}
}
