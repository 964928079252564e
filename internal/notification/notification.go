package notification

import (
	"context"
	"time"
)

// Notification is the payload handed to the external notification service.
// Rendering and delivery (email, SMS, push) happen on the other side of this
// boundary.
type Notification struct {
	RecipientID string    `json:"recipient_id"`
	Title       string    `json:"title"`
	Message     string    `json:"message"`
	Type        string    `json:"type"`
	ReferenceID string    `json:"reference_id"`
	CreatedAt   time.Time `json:"created_at"`
}

// Notifier dispatches bid-lifecycle notifications to the external
// collaborator.
type Notifier interface {
	Send(ctx context.Context, notification *Notification) error
}

// NopNotifier discards notifications. Used when no sink is configured.
type NopNotifier struct{}

func (NopNotifier) Send(ctx context.Context, notification *Notification) error {
	return nil
}
