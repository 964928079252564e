package db

import (
	"context"

	"github.com/google/uuid"
)

const roomColumns = "id, commodity_id, current_highest_bid, current_highest_bidder_id, total_bids, is_active, start_time, end_time, created_at, updated_at"

func scanAuctionRoom(row interface {
	Scan(dest ...interface{}) error
}) (AuctionRoom, error) {
	var r AuctionRoom
	err := row.Scan(
		&r.ID,
		&r.CommodityID,
		&r.CurrentHighestBid,
		&r.CurrentHighestBidderID,
		&r.TotalBids,
		&r.IsActive,
		&r.StartTime,
		&r.EndTime,
		&r.CreatedAt,
		&r.UpdatedAt,
	)
	return r, err
}

type EnsureAuctionRoomParams struct {
	ID          uuid.UUID `json:"id"`
	CommodityID uuid.UUID `json:"commodity_id"`
}

const ensureAuctionRoom = `
INSERT INTO auction_rooms (id, commodity_id)
VALUES ($1, $2)
ON CONFLICT (commodity_id) DO NOTHING
`

// EnsureAuctionRoom lazily creates the room for a commodity. Concurrent
// callers race on the unique commodity_id and both proceed to lock the same
// row afterwards.
func (q *Queries) EnsureAuctionRoom(ctx context.Context, arg EnsureAuctionRoomParams) error {
	_, err := q.db.Exec(ctx, ensureAuctionRoom, arg.ID, arg.CommodityID)
	return err
}

const getAuctionRoomByCommodityID = `
SELECT ` + roomColumns + ` FROM auction_rooms WHERE commodity_id = $1
`

func (q *Queries) GetAuctionRoomByCommodityID(ctx context.Context, commodityID uuid.UUID) (AuctionRoom, error) {
	return scanAuctionRoom(q.db.QueryRow(ctx, getAuctionRoomByCommodityID, commodityID))
}

const getAuctionRoomForUpdate = `
SELECT ` + roomColumns + ` FROM auction_rooms WHERE commodity_id = $1 FOR UPDATE
`

// GetAuctionRoomForUpdate takes the row lock that serializes the
// read-highest/write-bid critical section.
func (q *Queries) GetAuctionRoomForUpdate(ctx context.Context, commodityID uuid.UUID) (AuctionRoom, error) {
	return scanAuctionRoom(q.db.QueryRow(ctx, getAuctionRoomForUpdate, commodityID))
}

type UpdateAuctionRoomOnBidParams struct {
	CommodityID            uuid.UUID `json:"commodity_id"`
	CurrentHighestBid      int64     `json:"current_highest_bid"`
	CurrentHighestBidderID string    `json:"current_highest_bidder_id"`
}

const updateAuctionRoomOnBid = `
UPDATE auction_rooms
SET current_highest_bid = $2,
    current_highest_bidder_id = $3,
    total_bids = total_bids + 1,
    updated_at = now()
WHERE commodity_id = $1
RETURNING ` + roomColumns

func (q *Queries) UpdateAuctionRoomOnBid(ctx context.Context, arg UpdateAuctionRoomOnBidParams) (AuctionRoom, error) {
	row := q.db.QueryRow(ctx, updateAuctionRoomOnBid, arg.CommodityID, arg.CurrentHighestBid, arg.CurrentHighestBidderID)
	return scanAuctionRoom(row)
}

type SetAuctionRoomHighestParams struct {
	CommodityID            uuid.UUID `json:"commodity_id"`
	CurrentHighestBid      *int64    `json:"current_highest_bid"`
	CurrentHighestBidderID *string   `json:"current_highest_bidder_id"`
}

const setAuctionRoomHighest = `
UPDATE auction_rooms
SET current_highest_bid = $2,
    current_highest_bidder_id = $3,
    updated_at = now()
WHERE commodity_id = $1
RETURNING ` + roomColumns

// SetAuctionRoomHighest rewrites the highest-bid columns after a recompute.
// The bid counter is untouched; withdrawn and expired bids stay counted.
func (q *Queries) SetAuctionRoomHighest(ctx context.Context, arg SetAuctionRoomHighestParams) (AuctionRoom, error) {
	row := q.db.QueryRow(ctx, setAuctionRoomHighest, arg.CommodityID, arg.CurrentHighestBid, arg.CurrentHighestBidderID)
	return scanAuctionRoom(row)
}

const deactivateAuctionRoom = `
UPDATE auction_rooms
SET is_active = false,
    end_time = now(),
    updated_at = now()
WHERE commodity_id = $1
RETURNING ` + roomColumns

func (q *Queries) DeactivateAuctionRoom(ctx context.Context, commodityID uuid.UUID) (AuctionRoom, error) {
	return scanAuctionRoom(q.db.QueryRow(ctx, deactivateAuctionRoom, commodityID))
}

const listActiveAuctionRooms = `
SELECT ` + roomColumns + `
FROM auction_rooms
WHERE is_active = true
ORDER BY total_bids DESC
LIMIT $1
`

func (q *Queries) ListActiveAuctionRooms(ctx context.Context, limit int32) ([]AuctionRoom, error) {
	rows, err := q.db.Query(ctx, listActiveAuctionRooms, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []AuctionRoom
	for rows.Next() {
		r, err := scanAuctionRoom(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, r)
	}
	return items, rows.Err()
}
