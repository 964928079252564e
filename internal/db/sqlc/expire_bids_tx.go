package db

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type ExpireBidsTxResult struct {
	ExpiredBids []Bid `json:"expired_bids"`
	// RecomputedRooms holds the post-recompute aggregate for every commodity
	// that lost at least one bid in this sweep.
	RecomputedRooms map[uuid.UUID]AuctionRoom `json:"recomputed_rooms"`
}

// ExpireBidsTx is the periodic sweep: every active bid past its expires_at
// moves to expired and each affected room is recomputed. Rows are taken with
// SKIP LOCKED so sweepers on other instances divide the work instead of
// serializing on it.
func (store *SQLStore) ExpireBidsTx(ctx context.Context) (ExpireBidsTxResult, error) {
	var result ExpireBidsTxResult

	err := store.ExecTx(ctx, func(qTx *Queries) error {
		var err error
		result, err = expireBids(ctx, qTx)
		return err
	})

	return result, err
}

func expireBids(ctx context.Context, q Querier) (ExpireBidsTxResult, error) {
	result := ExpireBidsTxResult{
		RecomputedRooms: make(map[uuid.UUID]AuctionRoom),
	}

	expired, err := q.ListExpiredActiveBidsForUpdate(ctx)
	if err != nil {
		return result, fmt.Errorf("failed to list expired bids: %w", err)
	}
	if len(expired) == 0 {
		return result, nil
	}

	affected := make(map[uuid.UUID]struct{})
	for _, bid := range expired {
		marked, err := q.UpdateBidStatus(ctx, UpdateBidStatusParams{ID: bid.ID, Status: BidStatusExpired})
		if err != nil {
			return result, fmt.Errorf("failed to expire bid %s: %w", bid.ID, err)
		}
		result.ExpiredBids = append(result.ExpiredBids, marked)
		affected[bid.CommodityID] = struct{}{}
	}

	now := time.Now()
	for commodityID := range affected {
		if _, err := q.GetAuctionRoomForUpdate(ctx, commodityID); err != nil {
			return result, fmt.Errorf("failed to lock auction room %s: %w", commodityID, err)
		}
		room, err := recomputeAuctionRoom(ctx, q, commodityID, now)
		if err != nil {
			return result, err
		}
		result.RecomputedRooms[commodityID] = room
	}

	return result, nil
}
