package db

import (
	"fmt"
	"time"

	"github.com/Captain-Vikram/Live-Bidding-sub000/internal/util"
)

const (
	MinBidTTLMinutes = 1
	MaxBidTTLMinutes = 1440
)

// ValidateBidTTL bounds the bid lifetime to one minute through one day.
func ValidateBidTTL(ttlMinutes int64) error {
	if ttlMinutes < MinBidTTLMinutes || ttlMinutes > MaxBidTTLMinutes {
		return fmt.Errorf("%w, provided: %d", ErrInvalidBidTTL, ttlMinutes)
	}
	return nil
}

// ValidateBidAmount enforces the monotonic-highest-bid rule: a new bid must
// strictly exceed the current highest, or the commodity's minimum price when
// no bid stands yet. Equal amounts always lose.
func ValidateBidAmount(currentHighest *int64, minPrice int64, amount int64) error {
	if currentHighest != nil {
		if amount <= *currentHighest {
			return fmt.Errorf("%w of %s, provided: %s",
				ErrBidTooLow, util.FormatMoney(*currentHighest), util.FormatMoney(amount))
		}
		return nil
	}

	if amount < minPrice {
		return fmt.Errorf("bid amount must be at least %s, provided: %s: %w",
			util.FormatMoney(minPrice), util.FormatMoney(amount), ErrBidTooLow)
	}
	return nil
}

// CanTransition reports whether a bid may move from one status to another.
// The only legal moves are out of active into a terminal state.
func CanTransition(from, to BidStatus) bool {
	return from == BidStatusActive && to.IsTerminal()
}

// HighestActiveBid picks the bid that should back the room aggregate out of a
// candidate slice: the largest amount among active, non-expired bids. Returns
// nil when none qualify.
func HighestActiveBid(bids []Bid, now time.Time) *Bid {
	var best *Bid
	for i := range bids {
		b := &bids[i]
		if b.Status != BidStatusActive || !b.ExpiresAt.After(now) {
			continue
		}
		if best == nil || b.Amount > best.Amount {
			best = b
		}
	}
	return best
}
