package event

import (
	"time"
)

// Type discriminates the event envelopes pushed to auction room viewers.
type Type string

const (
	TypeWelcome            Type = "welcome"
	TypeRecentBids         Type = "recent_bids"
	TypeNewBid             Type = "new_bid"
	TypeBidUpdate          Type = "bid_update"
	TypeUserActivity       Type = "user_activity"
	TypePing               Type = "ping"
	TypePong               Type = "pong"
	TypeParticipantsUpdate Type = "participants_update"
)

// Envelope is the wire format every room event travels in, both over redis
// pub/sub and down each WebSocket.
type Envelope struct {
	Type      Type        `json:"type"`
	Data      interface{} `json:"data"`
	Timestamp time.Time   `json:"timestamp"`
}

func New(t Type, data interface{}) Envelope {
	return Envelope{
		Type:      t,
		Data:      data,
		Timestamp: time.Now().UTC(),
	}
}

// Welcome is the first envelope a viewer receives after joining a room.
type Welcome struct {
	CommodityID       string `json:"commodity_id"`
	CommodityName     string `json:"commodity_name"`
	CurrentHighestBid *int64 `json:"current_highest_bid"`
	ParticipantCount  int64  `json:"participant_count"`
}

// NewBid announces a freshly committed bid.
type NewBid struct {
	BidID       string  `json:"bid_id"`
	CommodityID string  `json:"commodity_id"`
	BidderID    string  `json:"bidder_id"`
	Amount      int64   `json:"amount"`
	Message     *string `json:"message,omitempty"`
	BidTime     string  `json:"bid_time"`
}

// BidUpdate announces a lifecycle transition of an existing bid. Action is
// one of withdrawn, accepted, rejected, expired.
type BidUpdate struct {
	BidID             string `json:"bid_id"`
	CommodityID       string `json:"commodity_id"`
	Action            string `json:"action"`
	CurrentHighestBid *int64 `json:"current_highest_bid"`
}

// UserActivity announces joins, leaves and typing indicators.
type UserActivity struct {
	UserID           string `json:"user_id"`
	Action           string `json:"action"`
	ParticipantCount int64  `json:"participant_count"`
}

// ParticipantsUpdate carries the current presence count of a room.
type ParticipantsUpdate struct {
	Count int64 `json:"count"`
}
