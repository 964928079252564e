package db

import (
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const (
	UniqueViolationCode = "23505"
)

var ErrRecordNotFound = pgx.ErrNoRows

// Domain errors returned by ledger transactions. Handlers map each of them
// to an HTTP status.
var (
	ErrCommodityNotAvailable = errors.New("commodity listing not found or not available for bidding")
	ErrSelfBid               = errors.New("you cannot bid on your own commodity")
	ErrBidTooLow             = errors.New("bid amount must be higher than the current highest bid")
	ErrInvalidBidTTL         = errors.New("expires_in_minutes must be between 1 and 1440")
	ErrBidNotActive          = errors.New("bid is no longer active")
	ErrNotBidOwner           = errors.New("bid does not belong to the requester")
	ErrNotCommodityOwner     = errors.New("only the commodity owner can accept bids")
	ErrHighestBidChanged     = errors.New("current highest bid changed, re-check the price and bid again")
)

// ErrorDescription returns the error code and constraint name from a Postgres error.
func ErrorDescription(err error) (errCode string, constraintName string) {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code, pgErr.ConstraintName
	}

	return
}
