package db

import (
	"time"

	"github.com/google/uuid"
)

type BidStatus string

const (
	BidStatusActive    BidStatus = "active"
	BidStatusWithdrawn BidStatus = "withdrawn"
	BidStatusAccepted  BidStatus = "accepted"
	BidStatusRejected  BidStatus = "rejected"
	BidStatusExpired   BidStatus = "expired"
)

// IsTerminal reports whether a status can never transition again.
func (s BidStatus) IsTerminal() bool {
	return s == BidStatusWithdrawn || s == BidStatusAccepted || s == BidStatusRejected || s == BidStatusExpired
}

// Valid reports whether s is one of the known bid statuses.
func (s BidStatus) Valid() bool {
	return s == BidStatusActive || s.IsTerminal()
}

// Bid is one entry of the append-only bid ledger. Rows are never deleted;
// only the status column moves, from active into exactly one terminal state.
type Bid struct {
	ID          uuid.UUID `json:"id"`
	CommodityID uuid.UUID `json:"commodity_id"`
	BidderID    string    `json:"bidder_id"`
	Amount      int64     `json:"amount"`
	Message     *string   `json:"message"`
	Status      BidStatus `json:"status"`
	BidTime     time.Time `json:"bid_time"`
	ExpiresAt   time.Time `json:"expires_at"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// AuctionRoom is the read-optimized per-commodity bidding summary. It is
// mutated only from within ledger transactions.
type AuctionRoom struct {
	ID                     uuid.UUID  `json:"id"`
	CommodityID            uuid.UUID  `json:"commodity_id"`
	CurrentHighestBid      *int64     `json:"current_highest_bid"`
	CurrentHighestBidderID *string    `json:"current_highest_bidder_id"`
	TotalBids              int64      `json:"total_bids"`
	IsActive               bool       `json:"is_active"`
	StartTime              time.Time  `json:"start_time"`
	EndTime                *time.Time `json:"end_time"`
	CreatedAt              time.Time  `json:"created_at"`
	UpdatedAt              time.Time  `json:"updated_at"`
}

// Commodity carries the slice of the listing the bidding engine needs.
// Listing CRUD and approval live in another service; the engine only reads
// these columns and flips is_active when a bid is accepted.
type Commodity struct {
	ID            uuid.UUID `json:"id"`
	OwnerID       string    `json:"owner_id"`
	CommodityName string    `json:"commodity_name"`
	MinPrice      int64     `json:"min_price"`
	IsActive      bool      `json:"is_active"`
	IsApproved    bool      `json:"is_approved"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}
