package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type PlaceBidTxParams struct {
	CommodityID uuid.UUID
	BidderID    string
	Amount      int64
	Message     *string
	TTLMinutes  int64
	// ObservedHighest is the highest bid the caller validated against before
	// entering the transaction. When the locked row disagrees, the bid lost a
	// race and the caller gets ErrHighestBidChanged instead of ErrBidTooLow.
	ObservedHighest *int64
}

type PlaceBidTxResult struct {
	Bid              Bid         `json:"bid"`
	AuctionRoom      AuctionRoom `json:"auction_room"`
	Commodity        Commodity   `json:"commodity"`
	PreviousBidderID *string     `json:"previous_bidder_id"`
}

// PlaceBidTx validates and commits a new bid in one transaction. The auction
// room row is locked before the current highest is read, so concurrent
// bidders on the same commodity are strictly ordered by the database.
func (store *SQLStore) PlaceBidTx(ctx context.Context, arg PlaceBidTxParams) (PlaceBidTxResult, error) {
	var result PlaceBidTxResult

	if err := ValidateBidTTL(arg.TTLMinutes); err != nil {
		return result, err
	}

	err := store.ExecTx(ctx, func(qTx *Queries) error {
		var err error
		result, err = placeBid(ctx, qTx, arg)
		return err
	})

	return result, err
}

func placeBid(ctx context.Context, q Querier, arg PlaceBidTxParams) (PlaceBidTxResult, error) {
	var result PlaceBidTxResult

	// 1. Re-read the commodity inside the transaction.
	commodity, err := q.GetCommodityByID(ctx, arg.CommodityID)
	if err != nil {
		if errors.Is(err, ErrRecordNotFound) {
			return result, ErrCommodityNotAvailable
		}
		return result, fmt.Errorf("failed to get commodity: %w", err)
	}
	if !commodity.IsActive || !commodity.IsApproved {
		return result, ErrCommodityNotAvailable
	}
	if commodity.OwnerID == arg.BidderID {
		return result, ErrSelfBid
	}
	result.Commodity = commodity

	// 2. Create the room lazily on first bid, then take the row lock.
	roomID, err := uuid.NewV7()
	if err != nil {
		return result, fmt.Errorf("failed to generate auction room ID: %w", err)
	}
	if err = q.EnsureAuctionRoom(ctx, EnsureAuctionRoomParams{ID: roomID, CommodityID: commodity.ID}); err != nil {
		return result, fmt.Errorf("failed to ensure auction room: %w", err)
	}

	room, err := q.GetAuctionRoomForUpdate(ctx, commodity.ID)
	if err != nil {
		return result, fmt.Errorf("failed to lock auction room: %w", err)
	}
	if !room.IsActive {
		return result, ErrCommodityNotAvailable
	}

	// 3. Revalidate the amount against the locked row.
	if err = ValidateBidAmount(room.CurrentHighestBid, commodity.MinPrice, arg.Amount); err != nil {
		if !int64PtrEqual(room.CurrentHighestBid, arg.ObservedHighest) {
			return result, ErrHighestBidChanged
		}
		return result, err
	}

	// 4. Insert the ledger entry.
	bidID, err := uuid.NewV7()
	if err != nil {
		return result, fmt.Errorf("failed to generate bid ID: %w", err)
	}

	bid, err := q.CreateBid(ctx, CreateBidParams{
		ID:          bidID,
		CommodityID: commodity.ID,
		BidderID:    arg.BidderID,
		Amount:      arg.Amount,
		Message:     arg.Message,
		ExpiresAt:   time.Now().Add(time.Duration(arg.TTLMinutes) * time.Minute),
	})
	if err != nil {
		return result, fmt.Errorf("failed to create bid: %w", err)
	}
	result.Bid = bid

	// The bidder being outbid, if any, is notified after commit.
	if room.CurrentHighestBidderID != nil && *room.CurrentHighestBidderID != arg.BidderID {
		result.PreviousBidderID = room.CurrentHighestBidderID
	}

	// 5. Move the aggregate forward.
	updatedRoom, err := q.UpdateAuctionRoomOnBid(ctx, UpdateAuctionRoomOnBidParams{
		CommodityID:            commodity.ID,
		CurrentHighestBid:      bid.Amount,
		CurrentHighestBidderID: bid.BidderID,
	})
	if err != nil {
		return result, fmt.Errorf("failed to update auction room: %w", err)
	}
	result.AuctionRoom = updatedRoom

	return result, nil
}

func int64PtrEqual(a, b *int64) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
