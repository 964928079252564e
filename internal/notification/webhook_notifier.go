package notification

import (
	"context"
	"fmt"

	"resty.dev/v3"
)

// WebhookNotifier POSTs notifications to the notification service's intake
// endpoint.
type WebhookNotifier struct {
	client *resty.Client
	url    string
}

func NewWebhookNotifier(client *resty.Client, url string) *WebhookNotifier {
	return &WebhookNotifier{
		client: client,
		url:    url,
	}
}

func (n *WebhookNotifier) Send(ctx context.Context, notification *Notification) error {
	resp, err := n.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(notification).
		Post(n.url)
	if err != nil {
		return fmt.Errorf("failed to post notification: %w", err)
	}

	if resp.IsError() {
		return fmt.Errorf("notification service returned status %s", resp.Status())
	}

	return nil
}
