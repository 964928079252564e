package api

import (
	"context"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	db "github.com/Captain-Vikram/Live-Bidding-sub000/internal/db/sqlc"
	"github.com/Captain-Vikram/Live-Bidding-sub000/internal/event"
	"github.com/Captain-Vikram/Live-Bidding-sub000/internal/presence"
	"github.com/Captain-Vikram/Live-Bidding-sub000/internal/util"
	"github.com/Captain-Vikram/Live-Bidding-sub000/internal/worker"
	"github.com/Captain-Vikram/Live-Bidding-sub000/internal/ws"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

// stubStore lets each test plug in just the queries its handler touches.
// Unset getters behave like an empty database.
type stubStore struct {
	getCommodityByIDFn       func(ctx context.Context, id uuid.UUID) (db.Commodity, error)
	getAuctionRoomFn         func(ctx context.Context, commodityID uuid.UUID) (db.AuctionRoom, error)
	listBidsForCommodityFn   func(ctx context.Context, arg db.ListBidsForCommodityParams) ([]db.Bid, error)
	listUserBidsFn           func(ctx context.Context, arg db.ListUserBidsParams) ([]db.Bid, error)
	listActiveAuctionRoomsFn func(ctx context.Context, limit int32) ([]db.AuctionRoom, error)
	placeBidTxFn             func(ctx context.Context, arg db.PlaceBidTxParams) (db.PlaceBidTxResult, error)
	withdrawBidTxFn          func(ctx context.Context, arg db.WithdrawBidTxParams) (db.WithdrawBidTxResult, error)
	acceptBidTxFn            func(ctx context.Context, arg db.AcceptBidTxParams) (db.AcceptBidTxResult, error)
	getUserBidStatsFn        func(ctx context.Context, bidderID string) (db.UserBidStats, error)
	getMostActiveFn          func(ctx context.Context, bidderID string) (db.UserMostActiveCommodity, error)
}

func (s *stubStore) GetCommodityByID(ctx context.Context, id uuid.UUID) (db.Commodity, error) {
	if s.getCommodityByIDFn != nil {
		return s.getCommodityByIDFn(ctx, id)
	}
	return db.Commodity{}, db.ErrRecordNotFound
}

func (s *stubStore) DeactivateCommodity(ctx context.Context, id uuid.UUID) (db.Commodity, error) {
	return db.Commodity{}, db.ErrRecordNotFound
}

func (s *stubStore) CreateBid(ctx context.Context, arg db.CreateBidParams) (db.Bid, error) {
	return db.Bid{}, nil
}

func (s *stubStore) GetBidByID(ctx context.Context, id uuid.UUID) (db.Bid, error) {
	return db.Bid{}, db.ErrRecordNotFound
}

func (s *stubStore) GetBidByIDForUpdate(ctx context.Context, id uuid.UUID) (db.Bid, error) {
	return db.Bid{}, db.ErrRecordNotFound
}

func (s *stubStore) UpdateBidStatus(ctx context.Context, arg db.UpdateBidStatusParams) (db.Bid, error) {
	return db.Bid{}, db.ErrRecordNotFound
}

func (s *stubStore) ListBidsForCommodity(ctx context.Context, arg db.ListBidsForCommodityParams) ([]db.Bid, error) {
	if s.listBidsForCommodityFn != nil {
		return s.listBidsForCommodityFn(ctx, arg)
	}
	return []db.Bid{}, nil
}

func (s *stubStore) ListUserBids(ctx context.Context, arg db.ListUserBidsParams) ([]db.Bid, error) {
	if s.listUserBidsFn != nil {
		return s.listUserBidsFn(ctx, arg)
	}
	return []db.Bid{}, nil
}

func (s *stubStore) ListActiveBidsForCommodity(ctx context.Context, commodityID uuid.UUID) ([]db.Bid, error) {
	return []db.Bid{}, nil
}

func (s *stubStore) RejectOtherActiveBids(ctx context.Context, arg db.RejectOtherActiveBidsParams) ([]db.Bid, error) {
	return []db.Bid{}, nil
}

func (s *stubStore) ListExpiredActiveBidsForUpdate(ctx context.Context) ([]db.Bid, error) {
	return []db.Bid{}, nil
}

func (s *stubStore) GetUserBidStats(ctx context.Context, bidderID string) (db.UserBidStats, error) {
	if s.getUserBidStatsFn != nil {
		return s.getUserBidStatsFn(ctx, bidderID)
	}
	return db.UserBidStats{}, nil
}

func (s *stubStore) GetUserMostActiveCommodity(ctx context.Context, bidderID string) (db.UserMostActiveCommodity, error) {
	if s.getMostActiveFn != nil {
		return s.getMostActiveFn(ctx, bidderID)
	}
	return db.UserMostActiveCommodity{}, db.ErrRecordNotFound
}

func (s *stubStore) EnsureAuctionRoom(ctx context.Context, arg db.EnsureAuctionRoomParams) error {
	return nil
}

func (s *stubStore) GetAuctionRoomByCommodityID(ctx context.Context, commodityID uuid.UUID) (db.AuctionRoom, error) {
	if s.getAuctionRoomFn != nil {
		return s.getAuctionRoomFn(ctx, commodityID)
	}
	return db.AuctionRoom{}, db.ErrRecordNotFound
}

func (s *stubStore) GetAuctionRoomForUpdate(ctx context.Context, commodityID uuid.UUID) (db.AuctionRoom, error) {
	return db.AuctionRoom{}, db.ErrRecordNotFound
}

func (s *stubStore) UpdateAuctionRoomOnBid(ctx context.Context, arg db.UpdateAuctionRoomOnBidParams) (db.AuctionRoom, error) {
	return db.AuctionRoom{}, db.ErrRecordNotFound
}

func (s *stubStore) SetAuctionRoomHighest(ctx context.Context, arg db.SetAuctionRoomHighestParams) (db.AuctionRoom, error) {
	return db.AuctionRoom{}, db.ErrRecordNotFound
}

func (s *stubStore) DeactivateAuctionRoom(ctx context.Context, commodityID uuid.UUID) (db.AuctionRoom, error) {
	return db.AuctionRoom{}, db.ErrRecordNotFound
}

func (s *stubStore) ListActiveAuctionRooms(ctx context.Context, limit int32) ([]db.AuctionRoom, error) {
	if s.listActiveAuctionRoomsFn != nil {
		return s.listActiveAuctionRoomsFn(ctx, limit)
	}
	return []db.AuctionRoom{}, nil
}

func (s *stubStore) PlaceBidTx(ctx context.Context, arg db.PlaceBidTxParams) (db.PlaceBidTxResult, error) {
	if s.placeBidTxFn != nil {
		return s.placeBidTxFn(ctx, arg)
	}
	return db.PlaceBidTxResult{}, db.ErrCommodityNotAvailable
}

func (s *stubStore) WithdrawBidTx(ctx context.Context, arg db.WithdrawBidTxParams) (db.WithdrawBidTxResult, error) {
	if s.withdrawBidTxFn != nil {
		return s.withdrawBidTxFn(ctx, arg)
	}
	return db.WithdrawBidTxResult{}, db.ErrRecordNotFound
}

func (s *stubStore) AcceptBidTx(ctx context.Context, arg db.AcceptBidTxParams) (db.AcceptBidTxResult, error) {
	if s.acceptBidTxFn != nil {
		return s.acceptBidTxFn(ctx, arg)
	}
	return db.AcceptBidTxResult{}, db.ErrRecordNotFound
}

func (s *stubStore) ExpireBidsTx(ctx context.Context) (db.ExpireBidsTxResult, error) {
	return db.ExpireBidsTxResult{}, nil
}

// recordingDistributor captures notification payloads instead of touching a
// real queue.
type recordingDistributor struct {
	mu       sync.Mutex
	payloads []*worker.PayloadSendNotification
}

func (d *recordingDistributor) DistributeTaskSendNotification(ctx context.Context, payload *worker.PayloadSendNotification, opts ...asynq.Option) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.payloads = append(d.payloads, payload)
	return nil
}

func (d *recordingDistributor) Close() error {
	return nil
}

func (d *recordingDistributor) recorded() []*worker.PayloadSendNotification {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]*worker.PayloadSendNotification, len(d.payloads))
	copy(out, d.payloads)
	return out
}

const testTokenSecret = "01234567890123456789012345678901"

type testServer struct {
	*Server
	distributor *recordingDistributor
	tracker     *presence.Tracker
}

func newTestServer(t *testing.T, store db.Store) *testServer {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	bus := event.NewRedisBus(client)
	tracker := presence.NewTracker(client)
	hub := ws.NewHub(bus, tracker)
	t.Cleanup(hub.Stop)

	distributor := &recordingDistributor{}

	config := &util.Config{
		AllowedOrigins:       []string{"http://localhost:3000"},
		TokenSecretKey:       testTokenSecret,
		AccessTokenDuration:  time.Hour,
		DefaultBidTTLMinutes: 60,
	}

	server, err := NewServer(store, config, hub, bus, tracker, distributor)
	require.NoError(t, err)

	return &testServer{Server: server, distributor: distributor, tracker: tracker}
}

func (ts *testServer) bearerToken(t *testing.T, userID string) string {
	t.Helper()

	tokenString, _, err := ts.tokenMaker.CreateToken(userID, time.Hour)
	require.NoError(t, err)
	return "Bearer " + tokenString
}

func (ts *testServer) accessToken(t *testing.T, userID string) string {
	t.Helper()

	tokenString, _, err := ts.tokenMaker.CreateToken(userID, time.Hour)
	require.NoError(t, err)
	return tokenString
}
