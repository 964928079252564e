package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

type AcceptBidTxParams struct {
	BidID   uuid.UUID
	OwnerID string
}

type AcceptBidTxResult struct {
	AcceptedBid  Bid         `json:"accepted_bid"`
	RejectedBids []Bid       `json:"rejected_bids"`
	Commodity    Commodity   `json:"commodity"`
	AuctionRoom  AuctionRoom `json:"auction_room"`
}

// AcceptBidTx settles an auction in one transaction: the target bid becomes
// accepted, every other active bid on the commodity becomes rejected, and
// both the commodity and its room are deactivated. At most one accepted bid
// can ever exist per commodity because acceptance requires the active status
// and rejects all other active bids atomically.
func (store *SQLStore) AcceptBidTx(ctx context.Context, arg AcceptBidTxParams) (AcceptBidTxResult, error) {
	var result AcceptBidTxResult

	err := store.ExecTx(ctx, func(qTx *Queries) error {
		var err error
		result, err = acceptBid(ctx, qTx, arg)
		return err
	})

	return result, err
}

func acceptBid(ctx context.Context, q Querier, arg AcceptBidTxParams) (AcceptBidTxResult, error) {
	var result AcceptBidTxResult

	bid, err := q.GetBidByIDForUpdate(ctx, arg.BidID)
	if err != nil {
		if errors.Is(err, ErrRecordNotFound) {
			return result, ErrRecordNotFound
		}
		return result, fmt.Errorf("failed to lock bid: %w", err)
	}

	commodity, err := q.GetCommodityByID(ctx, bid.CommodityID)
	if err != nil {
		return result, fmt.Errorf("failed to get commodity: %w", err)
	}
	if commodity.OwnerID != arg.OwnerID {
		return result, ErrNotCommodityOwner
	}
	if !CanTransition(bid.Status, BidStatusAccepted) {
		return result, ErrBidNotActive
	}

	if _, err = q.GetAuctionRoomForUpdate(ctx, bid.CommodityID); err != nil {
		return result, fmt.Errorf("failed to lock auction room: %w", err)
	}

	accepted, err := q.UpdateBidStatus(ctx, UpdateBidStatusParams{ID: bid.ID, Status: BidStatusAccepted})
	if err != nil {
		return result, fmt.Errorf("failed to accept bid: %w", err)
	}
	result.AcceptedBid = accepted

	rejected, err := q.RejectOtherActiveBids(ctx, RejectOtherActiveBidsParams{
		CommodityID:  bid.CommodityID,
		ExcludeBidID: bid.ID,
	})
	if err != nil {
		return result, fmt.Errorf("failed to reject competing bids: %w", err)
	}
	result.RejectedBids = rejected

	updatedCommodity, err := q.DeactivateCommodity(ctx, bid.CommodityID)
	if err != nil {
		return result, fmt.Errorf("failed to deactivate commodity: %w", err)
	}
	result.Commodity = updatedCommodity

	// Pin the final snapshot to the winning bid before closing the room.
	if _, err = q.SetAuctionRoomHighest(ctx, SetAuctionRoomHighestParams{
		CommodityID:            bid.CommodityID,
		CurrentHighestBid:      &accepted.Amount,
		CurrentHighestBidderID: &accepted.BidderID,
	}); err != nil {
		return result, fmt.Errorf("failed to pin winning bid on auction room: %w", err)
	}

	room, err := q.DeactivateAuctionRoom(ctx, bid.CommodityID)
	if err != nil {
		return result, fmt.Errorf("failed to deactivate auction room: %w", err)
	}
	result.AuctionRoom = room

	return result, nil
}
