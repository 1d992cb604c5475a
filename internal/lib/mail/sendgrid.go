package mail

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// SendGridMailer отправляет письма через HTTP API SendGrid (v3 mail/send).
type SendGridMailer struct {
	apiKey     string
	apiURL     string
	from       string
	httpClient *http.Client
}

// NewSendGridMailer создаёт клиента SendGrid. apiURL без завершающего слэша.
func NewSendGridMailer(apiKey, apiURL, from string) *SendGridMailer {
	return &SendGridMailer{
		apiKey:     apiKey,
		apiURL:     strings.TrimRight(apiURL, "/"),
		from:       from,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

type sendGridAddress struct {
	Email string `json:"email"`
}

type sendGridContent struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

type sendGridPersonalization struct {
	To []sendGridAddress `json:"to"`
}

type sendGridRequest struct {
	Personalizations []sendGridPersonalization `json:"personalizations"`
	From             sendGridAddress           `json:"from"`
	Subject          string                    `json:"subject"`
	Content          []sendGridContent         `json:"content"`
}

// Send отправляет письмо msg. Любой ответ кроме 2xx считается ошибкой.
func (m *SendGridMailer) Send(ctx context.Context, msg Message) error {
	const op = "mail.SendGridMailer.Send"
	if msg.To == "" {
		return fmt.Errorf("%s: %w", op, ErrNoRecipient)
	}

	body := sendGridRequest{
		Personalizations: []sendGridPersonalization{{To: []sendGridAddress{{Email: msg.To}}}},
		From:             sendGridAddress{Email: firstNonEmpty(msg.From, m.from)},
		Subject:          msg.Subject,
		Content:          []sendGridContent{{Type: "text/plain", Value: msg.Text}},
	}
	req, err := m.newRequest(ctx, http.MethodPost, "/v3/mail/send", body)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	resp, err := m.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("%s: unexpected status %s: %s", op, resp.Status, bytes.TrimSpace(detail))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

func (m *SendGridMailer) newRequest(ctx context.Context, method, path string, body any) (*http.Request, error) {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return nil, err
		}
	}
	req, err := http.NewRequestWithContext(ctx, method, m.apiURL+path, &buf)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+m.apiKey)
	req.Header.Set("Content-Type", "application/json")
	return req, nil
}
