package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type WithdrawBidTxParams struct {
	BidID       uuid.UUID
	RequesterID string
}

type WithdrawBidTxResult struct {
	Bid         Bid         `json:"bid"`
	AuctionRoom AuctionRoom `json:"auction_room"`
	// WasHighest is true when the withdrawn bid backed the room aggregate
	// and a recompute ran.
	WasHighest bool `json:"was_highest"`
}

// WithdrawBidTx moves an active bid to withdrawn. When the withdrawn bid was
// the room's current highest, the aggregate is recomputed from the remaining
// active, non-expired bids.
func (store *SQLStore) WithdrawBidTx(ctx context.Context, arg WithdrawBidTxParams) (WithdrawBidTxResult, error) {
	var result WithdrawBidTxResult

	err := store.ExecTx(ctx, func(qTx *Queries) error {
		var err error
		result, err = withdrawBid(ctx, qTx, arg)
		return err
	})

	return result, err
}

func withdrawBid(ctx context.Context, q Querier, arg WithdrawBidTxParams) (WithdrawBidTxResult, error) {
	var result WithdrawBidTxResult

	bid, err := q.GetBidByIDForUpdate(ctx, arg.BidID)
	if err != nil {
		if errors.Is(err, ErrRecordNotFound) {
			return result, ErrRecordNotFound
		}
		return result, fmt.Errorf("failed to lock bid: %w", err)
	}

	if bid.BidderID != arg.RequesterID {
		return result, ErrNotBidOwner
	}
	if !CanTransition(bid.Status, BidStatusWithdrawn) {
		return result, ErrBidNotActive
	}

	room, err := q.GetAuctionRoomForUpdate(ctx, bid.CommodityID)
	if err != nil {
		return result, fmt.Errorf("failed to lock auction room: %w", err)
	}

	withdrawn, err := q.UpdateBidStatus(ctx, UpdateBidStatusParams{ID: bid.ID, Status: BidStatusWithdrawn})
	if err != nil {
		return result, fmt.Errorf("failed to update bid status: %w", err)
	}
	result.Bid = withdrawn

	// Strict > ordering means amounts are unique per commodity, so an
	// amount match identifies the room's backing bid.
	wasHighest := room.CurrentHighestBid != nil && *room.CurrentHighestBid == bid.Amount
	result.WasHighest = wasHighest

	if wasHighest {
		updatedRoom, err := recomputeAuctionRoom(ctx, q, bid.CommodityID, time.Now())
		if err != nil {
			return result, err
		}
		result.AuctionRoom = updatedRoom
	} else {
		result.AuctionRoom = room
	}

	return result, nil
}
