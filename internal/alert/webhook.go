// Package alert posts new-submission events to an operator webhook (chat
// incoming webhook, automation endpoint).
package alert

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// Event is the JSON body posted to the webhook.
type Event struct {
	Type   string            `json:"type"` // lead.created | contact.created
	ID     string            `json:"id"`
	Text   string            `json:"text"`
	Fields map[string]string `json:"fields,omitempty"`
	SentAt time.Time         `json:"sent_at"`
}

type Webhook struct {
	URL    string
	Client *http.Client
	Log    *zap.Logger
	// Timeout bounds a single background delivery.
	Timeout time.Duration
}

func NewWebhook(url string, log *zap.Logger) *Webhook {
	return &Webhook{
		URL:     url,
		Client:  &http.Client{Timeout: 10 * time.Second},
		Log:     log,
		Timeout: 10 * time.Second,
	}
}

// Enabled reports whether a URL is configured; a nil Webhook is disabled.
func (w *Webhook) Enabled() bool {
	return w != nil && w.URL != ""
}

func (w *Webhook) Send(ctx context.Context, e Event) error {
	if !w.Enabled() {
		return nil
	}
	if e.SentAt.IsZero() {
		e.SentAt = time.Now().UTC()
	}

	b, err := json.Marshal(e)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.URL, bytes.NewReader(b))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := w.Client.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(res.Body, 1024))
		return &HTTPError{Status: res.StatusCode, Body: string(body)}
	}
	_, _ = io.Copy(io.Discard, res.Body)
	return nil
}

// Notify delivers e in the background and logs failures. The request that
// triggered it never waits on the webhook.
func (w *Webhook) Notify(e Event) {
	if !w.Enabled() {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), w.Timeout)
		defer cancel()
		if err := w.Send(ctx, e); err != nil && w.Log != nil {
			w.Log.Warn("alert webhook failed", zap.String("type", e.Type), zap.String("id", e.ID), zap.Error(err))
		}
	}()
}

type HTTPError struct {
	Status int
	Body   string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("webhook returned %d", e.Status)
}
