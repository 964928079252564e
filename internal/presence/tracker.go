package presence

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// participantTTL caps how long a room's membership set outlives its last
// join, so sets from crashed instances eventually disappear.
const participantTTL = time.Hour

// Tracker keeps the set of users currently viewing each auction room in
// redis. Membership is a set, never a counter, so the count can neither
// drift below zero nor above true membership. Presence is advisory: every
// read degrades to zero instead of failing the caller.
type Tracker struct {
	client *redis.Client
}

func NewTracker(client *redis.Client) *Tracker {
	return &Tracker{client: client}
}

func participantsKey(roomID string) string {
	return fmt.Sprintf("auction_participants:%s", roomID)
}

// AddParticipant records a user as viewing a room. Adding an existing member
// is a no-op.
func (t *Tracker) AddParticipant(ctx context.Context, roomID, userID string) {
	key := participantsKey(roomID)
	pipe := t.client.Pipeline()
	pipe.SAdd(ctx, key, userID)
	pipe.Expire(ctx, key, participantTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		log.Warn().Err(err).Str("room_id", roomID).Str("user_id", userID).
			Msg("failed to add participant")
	}
}

// RemoveParticipant is idempotent; removing an absent member is a no-op.
func (t *Tracker) RemoveParticipant(ctx context.Context, roomID, userID string) {
	if err := t.client.SRem(ctx, participantsKey(roomID), userID).Err(); err != nil {
		log.Warn().Err(err).Str("room_id", roomID).Str("user_id", userID).
			Msg("failed to remove participant")
	}
}

// GetCount returns the room's set cardinality, or 0 when the backing store
// is unreachable.
func (t *Tracker) GetCount(ctx context.Context, roomID string) int64 {
	count, err := t.client.SCard(ctx, participantsKey(roomID)).Result()
	if err != nil {
		log.Warn().Err(err).Str("room_id", roomID).Msg("failed to get participant count")
		return 0
	}
	return count
}

// GetParticipants returns the user IDs currently in the room, or nil on
// store failure.
func (t *Tracker) GetParticipants(ctx context.Context, roomID string) []string {
	members, err := t.client.SMembers(ctx, participantsKey(roomID)).Result()
	if err != nil {
		log.Warn().Err(err).Str("room_id", roomID).Msg("failed to get participants")
		return nil
	}
	return members
}
