package event

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// RedisBus fans events out over one redis pub/sub channel per auction room,
// so every server instance with viewers of a room sees every event no matter
// which instance committed the bid.
type RedisBus struct {
	client *redis.Client
}

func NewRedisBus(client *redis.Client) *RedisBus {
	return &RedisBus{client: client}
}

func channelName(roomID string) string {
	return fmt.Sprintf("auction:%s", roomID)
}

// Publish marshals and publishes the envelope. Errors are logged and
// dropped; viewers that miss an event recover from the snapshot they fetch
// at connect time.
func (b *RedisBus) Publish(ctx context.Context, roomID string, ev Envelope) {
	payload, err := json.Marshal(ev)
	if err != nil {
		log.Error().Err(err).Str("room_id", roomID).Str("event_type", string(ev.Type)).
			Msg("failed to marshal room event")
		return
	}

	if err = b.client.Publish(ctx, channelName(roomID), payload).Err(); err != nil {
		log.Error().Err(err).Str("room_id", roomID).Str("event_type", string(ev.Type)).
			Msg("failed to publish room event")
	}
}

// Subscribe bridges one room's pub/sub channel into a Go channel. The
// goroutine behind it exits and closes the channel when ctx is cancelled.
func (b *RedisBus) Subscribe(ctx context.Context, roomID string) (<-chan []byte, error) {
	pubsub := b.client.Subscribe(ctx, channelName(roomID))

	// Force the SUBSCRIBE round trip so a dead broker surfaces here instead
	// of as a silently empty channel.
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, fmt.Errorf("failed to subscribe to room %s: %w", roomID, err)
	}

	out := make(chan []byte, 32)
	go func() {
		defer close(out)
		defer pubsub.Close()

		ch := pubsub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				select {
				case out <- []byte(msg.Payload):
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return out, nil
}
