package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/sugarstop/sugarstop/models"
)

// Notifier delivers a text to a user through whatever chat transport fronts
// the service. The scheduler fans reminder sends out over it.
type Notifier interface {
	Notify(ctx context.Context, user *models.User, text string) error
}

// WebhookNotifier posts messages to the chat gateway, which owns the actual
// bot session and maps (provider, provider_id) back to a chat.
type WebhookNotifier struct {
	url    string
	token  string
	client *http.Client
}

// NewWebhookNotifier targets the gateway at url; token is sent as a bearer
// credential when non-empty.
func NewWebhookNotifier(url, token string) *WebhookNotifier {
	return &WebhookNotifier{
		url:    url,
		token:  token,
		client: &http.Client{Timeout: 10 * time.Second},
	}
}

type notifyPayload struct {
	Provider   string `json:"provider"`
	ProviderID string `json:"provider_id"`
	Text       string `json:"text"`
}

func (n *WebhookNotifier) Notify(ctx context.Context, user *models.User, text string) error {
	body, err := json.Marshal(notifyPayload{
		Provider:   user.Provider,
		ProviderID: user.ProviderID,
		Text:       text,
	})
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if n.token != "" {
		req.Header.Set("Authorization", "Bearer "+n.token)
	}
	resp, err := n.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("notify gateway returned %d", resp.StatusCode)
	}
	return nil
}

// NopNotifier drops every message; used when no gateway is configured.
type NopNotifier struct{}

func (NopNotifier) Notify(ctx context.Context, user *models.User, text string) error { return nil }
