package db

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// recomputeAuctionRoom rewrites a room's highest bid/bidder from a full scan
// of the commodity's active, non-expired bids. O(n), acceptable because live
// bids per commodity are bounded. Callers must already hold the room lock.
func recomputeAuctionRoom(ctx context.Context, q Querier, commodityID uuid.UUID, now time.Time) (AuctionRoom, error) {
	bids, err := q.ListActiveBidsForCommodity(ctx, commodityID)
	if err != nil {
		return AuctionRoom{}, fmt.Errorf("failed to list active bids: %w", err)
	}

	params := SetAuctionRoomHighestParams{CommodityID: commodityID}
	if best := HighestActiveBid(bids, now); best != nil {
		params.CurrentHighestBid = &best.Amount
		params.CurrentHighestBidderID = &best.BidderID
	}

	room, err := q.SetAuctionRoomHighest(ctx, params)
	if err != nil {
		return AuctionRoom{}, fmt.Errorf("failed to recompute auction room: %w", err)
	}
	return room, nil
}
