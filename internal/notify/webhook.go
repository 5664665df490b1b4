package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/vk/taskflowgo/internal/ctxlog"
)

// Webhook delivers events as JSON POST requests over a pooled HTTP client.
type Webhook struct {
	url    string
	client *http.Client
}

// NewWebhook returns a Webhook notifier posting to url. A nil client gets a
// pooled default with a 10s timeout.
func NewWebhook(url string, client *http.Client) *Webhook {
	if client == nil {
		client = &http.Client{
			Timeout: 10 * time.Second,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		}
	}
	return &Webhook{url: url, client: client}
}

// Notify implements Notifier.
func (n *Webhook) Notify(ctx context.Context, event Event) error {
	logger := ctxlog.With(ctx, "notifier", "webhook", "url", n.url, "event", event.Name, "task", event.Task)

	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to encode event: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to deliver event: %w", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode >= 300 {
		return fmt.Errorf("webhook responded with status %s", resp.Status)
	}
	logger.Debug("Event delivered.", "status", resp.Status)
	return nil
}
