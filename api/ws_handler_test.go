package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"

	db "github.com/Captain-Vikram/Live-Bidding-sub000/internal/db/sqlc"
	"github.com/Captain-Vikram/Live-Bidding-sub000/internal/event"
)

func activeCommodityStore(commodityID uuid.UUID) *stubStore {
	return &stubStore{
		getCommodityByIDFn: func(ctx context.Context, id uuid.UUID) (db.Commodity, error) {
			if id != commodityID {
				return db.Commodity{}, db.ErrRecordNotFound
			}
			return db.Commodity{
				ID:            commodityID,
				OwnerID:       "farmer-owner",
				CommodityName: "Organic Wheat",
				MinPrice:      1000,
				IsActive:      true,
				IsApproved:    true,
			}, nil
		},
	}
}

func wsURL(serverURL, commodityID, token string) string {
	url := "ws" + strings.TrimPrefix(serverURL, "http")
	return url + "/v1/ws/auction/" + commodityID + "?token=" + token
}

func readWSEnvelope(t *testing.T, conn *websocket.Conn) event.Envelope {
	t.Helper()

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, payload, err := conn.ReadMessage()
	require.NoError(t, err)

	var ev event.Envelope
	require.NoError(t, json.Unmarshal(payload, &ev))
	return ev
}

func TestServeAuctionRoomRejectsInvalidToken(t *testing.T) {
	commodityID := uuid.New()
	server := newTestServer(t, activeCommodityStore(commodityID))

	httpServer := httptest.NewServer(server.router)
	defer httpServer.Close()

	conn, _, err := websocket.DefaultDialer.Dial(wsURL(httpServer.URL, commodityID.String(), "garbage"), nil)
	require.NoError(t, err)
	defer conn.Close()

	// The socket is accepted, then closed with a policy violation before
	// the viewer is registered anywhere.
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, _, err = conn.ReadMessage()
	require.True(t, websocket.IsCloseError(err, websocket.ClosePolicyViolation), "got: %v", err)

	require.EqualValues(t, 0, server.tracker.GetCount(context.Background(), commodityID.String()))
	require.Equal(t, 0, server.hub.LocalConnectionCount(commodityID.String()))
}

func TestServeAuctionRoomUnknownCommodity(t *testing.T) {
	server := newTestServer(t, &stubStore{})

	httpServer := httptest.NewServer(server.router)
	defer httpServer.Close()

	resp, err := http.Get(httpServer.URL + "/v1/ws/auction/" + uuid.NewString() + "?token=whatever")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestServeAuctionRoomWelcomeFlow(t *testing.T) {
	commodityID := uuid.New()
	store := activeCommodityStore(commodityID)
	store.listBidsForCommodityFn = func(ctx context.Context, arg db.ListBidsForCommodityParams) ([]db.Bid, error) {
		require.EqualValues(t, recentBidsLimit, arg.Limit)
		return []db.Bid{
			{ID: uuid.New(), CommodityID: commodityID, BidderID: "trader-1", Amount: 2500, Status: db.BidStatusActive},
		}, nil
	}
	server := newTestServer(t, store)

	httpServer := httptest.NewServer(server.router)
	defer httpServer.Close()

	token := server.accessToken(t, "trader-2")
	conn, _, err := websocket.DefaultDialer.Dial(wsURL(httpServer.URL, commodityID.String(), token), nil)
	require.NoError(t, err)
	defer conn.Close()

	welcome := readWSEnvelope(t, conn)
	require.Equal(t, event.TypeWelcome, welcome.Type)

	data, err := json.Marshal(welcome.Data)
	require.NoError(t, err)
	var w event.Welcome
	require.NoError(t, json.Unmarshal(data, &w))
	require.Equal(t, commodityID.String(), w.CommodityID)
	require.Equal(t, "Organic Wheat", w.CommodityName)
	require.EqualValues(t, 1, w.ParticipantCount)

	recent := readWSEnvelope(t, conn)
	require.Equal(t, event.TypeRecentBids, recent.Type)

	require.EqualValues(t, 1, server.tracker.GetCount(context.Background(), commodityID.String()))
}

func TestServeAuctionRoomClientMessages(t *testing.T) {
	commodityID := uuid.New()
	server := newTestServer(t, activeCommodityStore(commodityID))

	httpServer := httptest.NewServer(server.router)
	defer httpServer.Close()

	token := server.accessToken(t, "trader-2")
	conn, _, err := websocket.DefaultDialer.Dial(wsURL(httpServer.URL, commodityID.String(), token), nil)
	require.NoError(t, err)
	defer conn.Close()

	// Skip the welcome and recent bids envelopes.
	readWSEnvelope(t, conn)
	readWSEnvelope(t, conn)

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"ping"}`)))
	ev := readWSEnvelope(t, conn)
	require.Equal(t, event.TypePong, ev.Type)

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"get_participants"}`)))
	ev = readWSEnvelope(t, conn)
	require.Equal(t, event.TypeParticipantsUpdate, ev.Type)

	// Garbage input is ignored, the connection stays up.
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("not json")))
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"ping"}`)))
	ev = readWSEnvelope(t, conn)
	require.Equal(t, event.TypePong, ev.Type)
}

func TestServeAuctionRoomReconnectKeepsNewSession(t *testing.T) {
	commodityID := uuid.New()
	server := newTestServer(t, activeCommodityStore(commodityID))

	httpServer := httptest.NewServer(server.router)
	defer httpServer.Close()

	token := server.accessToken(t, "trader-2")

	first, _, err := websocket.DefaultDialer.Dial(wsURL(httpServer.URL, commodityID.String(), token), nil)
	require.NoError(t, err)
	defer first.Close()
	readWSEnvelope(t, first)
	readWSEnvelope(t, first)

	// Reconnect as the same user, as a page refresh would.
	second, _, err := websocket.DefaultDialer.Dial(wsURL(httpServer.URL, commodityID.String(), token), nil)
	require.NoError(t, err)
	defer second.Close()
	readWSEnvelope(t, second)
	readWSEnvelope(t, second)

	// The first socket is closed underneath its dialer, and its handler
	// runs the usual cleanup on the way out.
	first.SetReadDeadline(time.Now().Add(2 * time.Second))
	for {
		if _, _, err := first.ReadMessage(); err != nil {
			break
		}
	}

	// That cleanup must not evict the fresh session or wipe its presence.
	time.Sleep(300 * time.Millisecond)
	require.Equal(t, 1, server.hub.LocalConnectionCount(commodityID.String()),
		"stale cleanup of the replaced connection must not evict the live replacement")
	require.EqualValues(t, 1, server.tracker.GetCount(context.Background(), commodityID.String()))

	require.NoError(t, second.WriteMessage(websocket.TextMessage, []byte(`{"type":"ping"}`)))
	ev := readWSEnvelope(t, second)
	require.Equal(t, event.TypePong, ev.Type)
}

func TestServeAuctionRoomDisconnectCleansPresence(t *testing.T) {
	commodityID := uuid.New()
	server := newTestServer(t, activeCommodityStore(commodityID))

	httpServer := httptest.NewServer(server.router)
	defer httpServer.Close()

	token := server.accessToken(t, "trader-2")
	conn, _, err := websocket.DefaultDialer.Dial(wsURL(httpServer.URL, commodityID.String(), token), nil)
	require.NoError(t, err)

	readWSEnvelope(t, conn)
	readWSEnvelope(t, conn)
	require.EqualValues(t, 1, server.tracker.GetCount(context.Background(), commodityID.String()))

	conn.Close()

	require.Eventually(t, func() bool {
		return server.tracker.GetCount(context.Background(), commodityID.String()) == 0
	}, 2*time.Second, 10*time.Millisecond)
	require.Equal(t, 0, server.hub.LocalConnectionCount(commodityID.String()))
}
