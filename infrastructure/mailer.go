package infrastructure

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	log "github.com/sirupsen/logrus"
)

// HTTPMailer delivers notifications through an HTTP mail provider
type HTTPMailer struct {
	baseURL string
	apiKey  string
	from    string
	client  *http.Client
}

// NewHTTPMailer creates a mailer that posts messages to the provider API
func NewHTTPMailer(baseURL, apiKey, from string) *HTTPMailer {
	return &HTTPMailer{
		baseURL: baseURL,
		apiKey:  apiKey,
		from:    from,
		client: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

type mailRequest struct {
	From    string `json:"from"`
	To      string `json:"to"`
	Subject string `json:"subject"`
	Text    string `json:"text"`
}

// Send delivers a single message to the recipient
func (m *HTTPMailer) Send(ctx context.Context, to, subject, body string) error {
	payload, err := json.Marshal(mailRequest{
		From:    m.from,
		To:      to,
		Subject: subject,
		Text:    body,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal mail request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.baseURL+"/messages", bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create mail request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+m.apiKey)

	resp, err := m.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send mail: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("mail provider returned status %d: %s", resp.StatusCode, string(respBody))
	}

	log.WithFields(log.Fields{
		"to":      to,
		"subject": subject,
	}).Debug("Mail delivered")
	return nil
}

// LogMailer writes messages to the log instead of delivering them.
// Used when no mail provider is configured.
type LogMailer struct{}

// NewLogMailer creates a mailer that only logs
func NewLogMailer() *LogMailer {
	return &LogMailer{}
}

// Send logs the message and reports success
func (m *LogMailer) Send(ctx context.Context, to, subject, body string) error {
	log.WithFields(log.Fields{
		"to":      to,
		"subject": subject,
		"size":    len(body),
	}).Info("Mail delivery skipped, no provider configured")
	return nil
}
