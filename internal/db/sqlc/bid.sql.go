package db

import (
	"context"
	"time"

	"github.com/google/uuid"
)

const bidColumns = "id, commodity_id, bidder_id, amount, message, status, bid_time, expires_at, created_at, updated_at"

func scanBid(row interface {
	Scan(dest ...interface{}) error
}) (Bid, error) {
	var b Bid
	err := row.Scan(
		&b.ID,
		&b.CommodityID,
		&b.BidderID,
		&b.Amount,
		&b.Message,
		&b.Status,
		&b.BidTime,
		&b.ExpiresAt,
		&b.CreatedAt,
		&b.UpdatedAt,
	)
	return b, err
}

type CreateBidParams struct {
	ID          uuid.UUID `json:"id"`
	CommodityID uuid.UUID `json:"commodity_id"`
	BidderID    string    `json:"bidder_id"`
	Amount      int64     `json:"amount"`
	Message     *string   `json:"message"`
	ExpiresAt   time.Time `json:"expires_at"`
}

const createBid = `
INSERT INTO bids (id, commodity_id, bidder_id, amount, message, status, bid_time, expires_at)
VALUES ($1, $2, $3, $4, $5, 'active', now(), $6)
RETURNING ` + bidColumns

func (q *Queries) CreateBid(ctx context.Context, arg CreateBidParams) (Bid, error) {
	row := q.db.QueryRow(ctx, createBid,
		arg.ID,
		arg.CommodityID,
		arg.BidderID,
		arg.Amount,
		arg.Message,
		arg.ExpiresAt,
	)
	return scanBid(row)
}

const getBidByID = `
SELECT ` + bidColumns + ` FROM bids WHERE id = $1
`

func (q *Queries) GetBidByID(ctx context.Context, id uuid.UUID) (Bid, error) {
	return scanBid(q.db.QueryRow(ctx, getBidByID, id))
}

const getBidByIDForUpdate = `
SELECT ` + bidColumns + ` FROM bids WHERE id = $1 FOR UPDATE
`

func (q *Queries) GetBidByIDForUpdate(ctx context.Context, id uuid.UUID) (Bid, error) {
	return scanBid(q.db.QueryRow(ctx, getBidByIDForUpdate, id))
}

type UpdateBidStatusParams struct {
	ID     uuid.UUID `json:"id"`
	Status BidStatus `json:"status"`
}

const updateBidStatus = `
UPDATE bids
SET status = $2, updated_at = now()
WHERE id = $1
RETURNING ` + bidColumns

func (q *Queries) UpdateBidStatus(ctx context.Context, arg UpdateBidStatusParams) (Bid, error) {
	return scanBid(q.db.QueryRow(ctx, updateBidStatus, arg.ID, arg.Status))
}

type ListBidsForCommodityParams struct {
	CommodityID uuid.UUID `json:"commodity_id"`
	Limit       int32     `json:"limit"`
	Offset      int32     `json:"offset"`
}

const listBidsForCommodity = `
SELECT ` + bidColumns + `
FROM bids
WHERE commodity_id = $1
ORDER BY amount DESC, created_at DESC
LIMIT $2 OFFSET $3
`

func (q *Queries) ListBidsForCommodity(ctx context.Context, arg ListBidsForCommodityParams) ([]Bid, error) {
	rows, err := q.db.Query(ctx, listBidsForCommodity, arg.CommodityID, arg.Limit, arg.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []Bid
	for rows.Next() {
		b, err := scanBid(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, b)
	}
	return items, rows.Err()
}

type ListUserBidsParams struct {
	BidderID string     `json:"bidder_id"`
	Status   *BidStatus `json:"status"`
	Limit    int32      `json:"limit"`
	Offset   int32      `json:"offset"`
}

const listUserBids = `
SELECT ` + bidColumns + `
FROM bids
WHERE bidder_id = $1
  AND ($2::text IS NULL OR status = $2)
ORDER BY created_at DESC
LIMIT $3 OFFSET $4
`

func (q *Queries) ListUserBids(ctx context.Context, arg ListUserBidsParams) ([]Bid, error) {
	rows, err := q.db.Query(ctx, listUserBids, arg.BidderID, arg.Status, arg.Limit, arg.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []Bid
	for rows.Next() {
		b, err := scanBid(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, b)
	}
	return items, rows.Err()
}

const listActiveBidsForCommodity = `
SELECT ` + bidColumns + `
FROM bids
WHERE commodity_id = $1
  AND status = 'active'
  AND expires_at > now()
ORDER BY amount DESC
`

// ListActiveBidsForCommodity returns the bids that still count toward the
// room's highest, best first.
func (q *Queries) ListActiveBidsForCommodity(ctx context.Context, commodityID uuid.UUID) ([]Bid, error) {
	rows, err := q.db.Query(ctx, listActiveBidsForCommodity, commodityID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []Bid
	for rows.Next() {
		b, err := scanBid(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, b)
	}
	return items, rows.Err()
}

type RejectOtherActiveBidsParams struct {
	CommodityID  uuid.UUID `json:"commodity_id"`
	ExcludeBidID uuid.UUID `json:"exclude_bid_id"`
}

const rejectOtherActiveBids = `
UPDATE bids
SET status = 'rejected', updated_at = now()
WHERE commodity_id = $1
  AND status = 'active'
  AND id != $2
RETURNING ` + bidColumns

func (q *Queries) RejectOtherActiveBids(ctx context.Context, arg RejectOtherActiveBidsParams) ([]Bid, error) {
	rows, err := q.db.Query(ctx, rejectOtherActiveBids, arg.CommodityID, arg.ExcludeBidID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []Bid
	for rows.Next() {
		b, err := scanBid(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, b)
	}
	return items, rows.Err()
}

const listExpiredActiveBidsForUpdate = `
SELECT ` + bidColumns + `
FROM bids
WHERE status = 'active'
  AND expires_at <= now()
FOR UPDATE SKIP LOCKED
`

// ListExpiredActiveBidsForUpdate locks timed-out active bids so concurrent
// sweepers on other instances skip them instead of blocking.
func (q *Queries) ListExpiredActiveBidsForUpdate(ctx context.Context) ([]Bid, error) {
	rows, err := q.db.Query(ctx, listExpiredActiveBidsForUpdate)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []Bid
	for rows.Next() {
		b, err := scanBid(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, b)
	}
	return items, rows.Err()
}

type UserBidStats struct {
	TotalBids        int64    `json:"total_bids"`
	ActiveBids       int64    `json:"active_bids"`
	AcceptedBids     int64    `json:"accepted_bids"`
	WithdrawnBids    int64    `json:"withdrawn_bids"`
	AverageBidAmount *float64 `json:"average_bid_amount"`
	HighestBidAmount *int64   `json:"highest_bid_amount"`
}

const getUserBidStats = `
SELECT count(*),
       count(*) FILTER (WHERE status = 'active'),
       count(*) FILTER (WHERE status = 'accepted'),
       count(*) FILTER (WHERE status = 'withdrawn'),
       avg(amount)::float8,
       max(amount)
FROM bids
WHERE bidder_id = $1
`

func (q *Queries) GetUserBidStats(ctx context.Context, bidderID string) (UserBidStats, error) {
	var s UserBidStats
	err := q.db.QueryRow(ctx, getUserBidStats, bidderID).Scan(
		&s.TotalBids,
		&s.ActiveBids,
		&s.AcceptedBids,
		&s.WithdrawnBids,
		&s.AverageBidAmount,
		&s.HighestBidAmount,
	)
	return s, err
}

type UserMostActiveCommodity struct {
	CommodityID   uuid.UUID `json:"commodity_id"`
	CommodityName string    `json:"commodity_name"`
	BidCount      int64     `json:"bid_count"`
}

const getUserMostActiveCommodity = `
SELECT b.commodity_id, c.commodity_name, count(*) AS bid_count
FROM bids b
JOIN commodities c ON c.id = b.commodity_id
WHERE b.bidder_id = $1
GROUP BY b.commodity_id, c.commodity_name
ORDER BY bid_count DESC, c.commodity_name
LIMIT 1
`

func (q *Queries) GetUserMostActiveCommodity(ctx context.Context, bidderID string) (UserMostActiveCommodity, error) {
	var m UserMostActiveCommodity
	err := q.db.QueryRow(ctx, getUserMostActiveCommodity, bidderID).Scan(
		&m.CommodityID,
		&m.CommodityName,
		&m.BidCount,
	)
	return m, err
}
