package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Email is one outbound message. HTML and Text are alternative bodies.
type Email struct {
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	HTML    string   `json:"html,omitempty"`
	Text    string   `json:"text,omitempty"`
}

type ResendConfig struct {
	APIKey    string
	FromEmail string
	FromName  string
	BaseURL   string // defaults to the public API, overridable for tests
}

// ResendMailer sends mail through the Resend HTTP API.
type ResendMailer struct {
	config  ResendConfig
	client  *http.Client
	baseURL string
}

func NewResendMailer(config ResendConfig) *ResendMailer {
	baseURL := config.BaseURL
	if baseURL == "" {
		baseURL = "https://api.resend.com"
	}

	return &ResendMailer{
		config:  config,
		client:  &http.Client{Timeout: 30 * time.Second},
		baseURL: baseURL,
	}
}

type resendRequest struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	HTML    string   `json:"html,omitempty"`
	Text    string   `json:"text,omitempty"`
}

type resendError struct {
	Name    string `json:"name"`
	Message string `json:"message"`
}

func (m *ResendMailer) fromField() string {
	if m.config.FromName != "" {
		return fmt.Sprintf("%s <%s>", m.config.FromName, m.config.FromEmail)
	}
	return m.config.FromEmail
}

func (m *ResendMailer) Send(ctx context.Context, email Email) error {
	payload, err := json.Marshal(resendRequest{
		From:    m.fromField(),
		To:      email.To,
		Subject: email.Subject,
		HTML:    email.HTML,
		Text:    email.Text,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal email request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.baseURL+"/emails", bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create email request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+m.config.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := m.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(resp.Body)
		var apiErr resendError
		if err := json.Unmarshal(body, &apiErr); err == nil && apiErr.Message != "" {
			return fmt.Errorf("resend API error (status %d): %s", resp.StatusCode, apiErr.Message)
		}
		return fmt.Errorf("resend API error (status %d): %s", resp.StatusCode, string(body))
	}
	return nil
}
