package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

type webhookPayload struct {
	Content string    `json:"content"`
	SentAt  time.Time `json:"sentAt"`
}

// WebhookSink posts {"content": message} as JSON, which chat webhooks such as
// Discord accept as is.
type WebhookSink struct {
	url        string
	httpClient *http.Client
}

func NewWebhookSink(url string, httpClient *http.Client) *WebhookSink {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &WebhookSink{url: url, httpClient: httpClient}
}

func (s *WebhookSink) Publish(ctx context.Context, message string) error {
	body, err := json.Marshal(webhookPayload{Content: message, SentAt: time.Now().UTC()})
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("webhook request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}
	return nil
}
