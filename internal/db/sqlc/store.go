package db

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Store provides all functions to execute db queries and transactions.
type Store interface {
	Querier

	PlaceBidTx(ctx context.Context, arg PlaceBidTxParams) (PlaceBidTxResult, error)
	WithdrawBidTx(ctx context.Context, arg WithdrawBidTxParams) (WithdrawBidTxResult, error)
	AcceptBidTx(ctx context.Context, arg AcceptBidTxParams) (AcceptBidTxResult, error)
	ExpireBidsTx(ctx context.Context) (ExpireBidsTxResult, error)
}

// Querier lists the single-statement queries of the bid ledger.
type Querier interface {
	GetCommodityByID(ctx context.Context, id uuid.UUID) (Commodity, error)
	DeactivateCommodity(ctx context.Context, id uuid.UUID) (Commodity, error)

	CreateBid(ctx context.Context, arg CreateBidParams) (Bid, error)
	GetBidByID(ctx context.Context, id uuid.UUID) (Bid, error)
	GetBidByIDForUpdate(ctx context.Context, id uuid.UUID) (Bid, error)
	UpdateBidStatus(ctx context.Context, arg UpdateBidStatusParams) (Bid, error)
	ListBidsForCommodity(ctx context.Context, arg ListBidsForCommodityParams) ([]Bid, error)
	ListUserBids(ctx context.Context, arg ListUserBidsParams) ([]Bid, error)
	ListActiveBidsForCommodity(ctx context.Context, commodityID uuid.UUID) ([]Bid, error)
	RejectOtherActiveBids(ctx context.Context, arg RejectOtherActiveBidsParams) ([]Bid, error)
	ListExpiredActiveBidsForUpdate(ctx context.Context) ([]Bid, error)
	GetUserBidStats(ctx context.Context, bidderID string) (UserBidStats, error)
	GetUserMostActiveCommodity(ctx context.Context, bidderID string) (UserMostActiveCommodity, error)

	EnsureAuctionRoom(ctx context.Context, arg EnsureAuctionRoomParams) error
	GetAuctionRoomByCommodityID(ctx context.Context, commodityID uuid.UUID) (AuctionRoom, error)
	GetAuctionRoomForUpdate(ctx context.Context, commodityID uuid.UUID) (AuctionRoom, error)
	UpdateAuctionRoomOnBid(ctx context.Context, arg UpdateAuctionRoomOnBidParams) (AuctionRoom, error)
	SetAuctionRoomHighest(ctx context.Context, arg SetAuctionRoomHighestParams) (AuctionRoom, error)
	DeactivateAuctionRoom(ctx context.Context, commodityID uuid.UUID) (AuctionRoom, error)
	ListActiveAuctionRooms(ctx context.Context, limit int32) ([]AuctionRoom, error)
}

type SQLStore struct {
	*Queries
	connPool *pgxpool.Pool
}

// NewStore creates a new Store.
func NewStore(db *pgxpool.Pool) Store {
	return &SQLStore{
		Queries:  New(db),
		connPool: db,
	}
}

// Ping checks if the database connection is alive.
func (store *SQLStore) Ping(ctx context.Context) error {
	return store.connPool.Ping(ctx)
}

// ExecTx executes a function within a database transaction.
func (store *SQLStore) ExecTx(ctx context.Context, fn func(qTx *Queries) error) error {
	tx, err := store.connPool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	if err = fn(New(tx)); err != nil {
		if rbErr := tx.Rollback(ctx); rbErr != nil {
			return fmt.Errorf("tx error: %v, rollback error: %v", err, rbErr)
		}
		return err
	}

	return tx.Commit(ctx)
}
