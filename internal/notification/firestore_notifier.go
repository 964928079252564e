package notification

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	firebase "firebase.google.com/go/v4"
)

// FirestoreNotifier writes notification documents into the Firestore
// collection the mobile clients subscribe to.
type FirestoreNotifier struct {
	client *firestore.Client
}

func NewFirestoreNotifier(ctx context.Context, firebaseApp *firebase.App) (*FirestoreNotifier, error) {
	firestoreClient, err := firebaseApp.Firestore(ctx)
	if err != nil {
		return nil, err
	}

	return &FirestoreNotifier{client: firestoreClient}, nil
}

func (n *FirestoreNotifier) Send(ctx context.Context, notification *Notification) error {
	_, _, err := n.client.Collection("notifications").Add(ctx, map[string]interface{}{
		"recipientID": notification.RecipientID,
		"title":       notification.Title,
		"message":     notification.Message,
		"type":        notification.Type,
		"referenceID": notification.ReferenceID,
		"isRead":      false,
		"createdAt":   time.Now(),
	})
	return err
}

func (n *FirestoreNotifier) Close() error {
	return n.client.Close()
}
