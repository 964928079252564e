package worker

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/require"

	"github.com/Captain-Vikram/Live-Bidding-sub000/internal/notification"
)

type captureNotifier struct {
	sent []*notification.Notification
	err  error
}

func (n *captureNotifier) Send(ctx context.Context, notif *notification.Notification) error {
	if n.err != nil {
		return n.err
	}
	n.sent = append(n.sent, notif)
	return nil
}

func TestProcessTaskSendNotification(t *testing.T) {
	notifier := &captureNotifier{}
	processor := &RedisTaskProcessor{notifier: notifier}

	payload := &PayloadSendNotification{
		RecipientID: "farmer-owner",
		Title:       "New bid received",
		Message:     "Someone bid ₹2,500 on your listing Organic Wheat.",
		Type:        "new_bid",
		ReferenceID: "bid-1",
	}
	jsonPayload, err := json.Marshal(payload)
	require.NoError(t, err)

	task := asynq.NewTask(TaskSendNotification, jsonPayload)
	require.NoError(t, processor.ProcessTaskSendNotification(context.Background(), task))

	require.Len(t, notifier.sent, 1)
	require.Equal(t, "farmer-owner", notifier.sent[0].RecipientID)
	require.Equal(t, "new_bid", notifier.sent[0].Type)
	require.False(t, notifier.sent[0].CreatedAt.IsZero())
}

func TestProcessTaskSendNotificationBadPayload(t *testing.T) {
	processor := &RedisTaskProcessor{notifier: &captureNotifier{}}

	task := asynq.NewTask(TaskSendNotification, []byte("not json"))
	err := processor.ProcessTaskSendNotification(context.Background(), task)
	require.ErrorIs(t, err, asynq.SkipRetry)
}

func TestProcessTaskSendNotificationSinkFailure(t *testing.T) {
	sinkErr := errors.New("sink unreachable")
	processor := &RedisTaskProcessor{notifier: &captureNotifier{err: sinkErr}}

	jsonPayload, err := json.Marshal(&PayloadSendNotification{RecipientID: "farmer-owner"})
	require.NoError(t, err)

	task := asynq.NewTask(TaskSendNotification, jsonPayload)
	err = processor.ProcessTaskSendNotification(context.Background(), task)
	require.ErrorIs(t, err, sinkErr)
}
