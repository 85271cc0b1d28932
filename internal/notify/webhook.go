package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// WebhookSink POSTs each notice as JSON. 5xx and transport errors are
// retried with exponential backoff; 4xx is final.
type WebhookSink struct {
	URL          string
	MaxRetryTime time.Duration
	client       *http.Client
}

func NewWebhookSink(url string) *WebhookSink {
	return &WebhookSink{
		URL:          url,
		MaxRetryTime: 15 * time.Second,
		client:       &http.Client{Timeout: 5 * time.Second},
	}
}

func (*WebhookSink) Name() string { return "webhook" }

func (w *WebhookSink) Notify(ctx context.Context, n Notice) error {
	data, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("encode notice: %w", err)
	}

	op := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.URL, bytes.NewReader(data))
		if err != nil {
			return backoff.Permanent(err)
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := w.client.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		if resp.StatusCode >= 400 && resp.StatusCode < 500 {
			body, _ := io.ReadAll(resp.Body)
			return backoff.Permanent(fmt.Errorf("webhook status %d: %s", resp.StatusCode, string(body)))
		}
		if resp.StatusCode >= 500 {
			return fmt.Errorf("webhook status %d", resp.StatusCode)
		}
		return nil
	}

	b := backoff.NewExponentialBackOff()
	b.MaxElapsedTime = w.MaxRetryTime
	if err := backoff.Retry(op, backoff.WithContext(b, ctx)); err != nil {
		return fmt.Errorf("webhook notify %s: %w", n.CallID, err)
	}
	return nil
}
