package slack

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// ErrNoWebhookURL is returned by NewWebhook when no endpoint is configured.
var ErrNoWebhookURL = errors.New("slack: webhook URL is required")

// DefaultTimeout bounds a single post when Config.Timeout is zero.
const DefaultTimeout = 10 * time.Second

// Config holds webhook client settings.
type Config struct {
	// WebhookURL is the full incoming-webhook endpoint issued by Slack.
	// Treat it as a secret: the path segments embed the auth token.
	WebhookURL string

	// Timeout bounds a single post. Zero means DefaultTimeout.
	Timeout time.Duration
}

// Webhook posts payloads to a single Slack incoming-webhook endpoint.
type Webhook struct {
	url  string
	http *http.Client
}

// NewWebhook validates cfg and returns a ready client.
func NewWebhook(cfg Config) (*Webhook, error) {
	url := strings.TrimSpace(cfg.WebhookURL)
	if url == "" {
		return nil, ErrNoWebhookURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Webhook{
		url:  url,
		http: &http.Client{Timeout: timeout},
	}, nil
}

// Post sends one payload. A non-2xx response is an error; Slack replies with
// a short plain-text reason ("invalid_payload", "channel_not_found", ...)
// which is included in the error message.
func (w *Webhook) Post(ctx context.Context, p Payload) error {
	b, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("slack: encode payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.url, bytes.NewReader(b))
	if err != nil {
		return fmt.Errorf("slack: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := w.http.Do(req)
	if err != nil {
		return fmt.Errorf("slack: post: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		reason, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		if s := strings.TrimSpace(string(reason)); s != "" {
			return fmt.Errorf("slack: post failed: %s (http=%d)", s, resp.StatusCode)
		}
		return fmt.Errorf("slack: post failed: http=%d", resp.StatusCode)
	}
	return nil
}
