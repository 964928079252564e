package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/Captain-Vikram/Live-Bidding-sub000/internal/event"
	"github.com/Captain-Vikram/Live-Bidding-sub000/internal/presence"
)

var testUpgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// newTestHub wires a hub against miniredis-backed bus and presence.
func newTestHub(t *testing.T) *Hub {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	hub := NewHub(event.NewRedisBus(client), presence.NewTracker(client))
	t.Cleanup(hub.Stop)
	return hub
}

// dialTestClient opens a real WebSocket pair and registers the server side
// with the hub under the given user ID.
func dialTestClient(t *testing.T, hub *Hub, roomID, userID string) (*websocket.Conn, *Client) {
	t.Helper()

	registered := make(chan *Client, 1)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := testUpgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		registered <- hub.Connect(r.Context(), roomID, userID, conn)
	}))
	t.Cleanup(server.Close)

	url := "ws" + strings.TrimPrefix(server.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	select {
	case client := <-registered:
		return conn, client
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for hub registration")
	}
	return conn, nil
}

func readEnvelope(t *testing.T, conn *websocket.Conn) event.Envelope {
	t.Helper()

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, payload, err := conn.ReadMessage()
	require.NoError(t, err)

	var ev event.Envelope
	require.NoError(t, json.Unmarshal(payload, &ev))
	return ev
}

func TestHubJoinAnnouncedToPeersOnly(t *testing.T) {
	hub := newTestHub(t)

	first, _ := dialTestClient(t, hub, "room1", "farmer1")
	_, _ = dialTestClient(t, hub, "room1", "trader2")

	// The existing viewer sees the join; the joining user does not hear
	// about themselves.
	ev := readEnvelope(t, first)
	require.Equal(t, event.TypeUserActivity, ev.Type)

	data, err := json.Marshal(ev.Data)
	require.NoError(t, err)
	var activity event.UserActivity
	require.NoError(t, json.Unmarshal(data, &activity))
	require.Equal(t, "trader2", activity.UserID)
	require.Equal(t, "joined", activity.Action)
	require.EqualValues(t, 2, activity.ParticipantCount)
}

func TestHubBroadcastReachesAllViewers(t *testing.T) {
	hub := newTestHub(t)
	ctx := context.Background()

	first, _ := dialTestClient(t, hub, "room1", "farmer1")
	second, _ := dialTestClient(t, hub, "room1", "trader2")

	// Drain the join announcement the first viewer received.
	readEnvelope(t, first)

	// The room forwarder subscribes asynchronously; give it a moment before
	// the first publish.
	time.Sleep(100 * time.Millisecond)

	hub.BroadcastEvent(ctx, "room1", event.New(event.TypeNewBid, event.NewBid{
		BidID:       "b1",
		CommodityID: "room1",
		BidderID:    "trader2",
		Amount:      4200,
	}))

	for _, conn := range []*websocket.Conn{first, second} {
		ev := readEnvelope(t, conn)
		require.Equal(t, event.TypeNewBid, ev.Type)
	}
}

func TestHubDisconnectIsIdempotent(t *testing.T) {
	hub := newTestHub(t)
	ctx := context.Background()

	_, client := dialTestClient(t, hub, "room1", "farmer1")
	require.Equal(t, 1, hub.LocalConnectionCount("room1"))

	hub.Disconnect(ctx, client)
	require.Equal(t, 0, hub.LocalConnectionCount("room1"))

	// Second disconnect, and one for a client whose room no longer exists,
	// are no-ops.
	hub.Disconnect(ctx, client)
	hub.Disconnect(ctx, &Client{RoomID: "ghost-room", UserID: "farmer1"})
	require.Equal(t, 0, hub.LocalConnectionCount("room1"))
}

func TestHubSecondConnectionReplacesFirst(t *testing.T) {
	hub := newTestHub(t)

	first, _ := dialTestClient(t, hub, "room1", "farmer1")
	_, _ = dialTestClient(t, hub, "room1", "farmer1")

	require.Equal(t, 1, hub.LocalConnectionCount("room1"))

	// The replaced connection's write pump shuts down, which closes the
	// socket underneath the first dialer.
	first.SetReadDeadline(time.Now().Add(2 * time.Second))
	for {
		if _, _, err := first.ReadMessage(); err != nil {
			break
		}
	}
}

func TestHubStaleDisconnectKeepsReplacement(t *testing.T) {
	hub := newTestHub(t)
	ctx := context.Background()

	_, replaced := dialTestClient(t, hub, "room1", "farmer1")
	second, live := dialTestClient(t, hub, "room1", "farmer1")
	require.Equal(t, 1, hub.LocalConnectionCount("room1"))

	// The replaced connection's read loop unwinds and runs its cleanup.
	// That cleanup must not tear down the live replacement.
	hub.Disconnect(ctx, replaced)
	require.Equal(t, 1, hub.LocalConnectionCount("room1"),
		"stale cleanup of the replaced connection must not evict the live replacement")
	require.EqualValues(t, 1, hub.tracker.GetCount(ctx, "room1"))

	// The replacement still receives deliveries.
	time.Sleep(100 * time.Millisecond)
	hub.BroadcastEvent(ctx, "room1", event.New(event.TypePing, nil))
	ev := readEnvelope(t, second)
	require.Equal(t, event.TypePing, ev.Type)

	// Disconnecting the live client still works.
	hub.Disconnect(ctx, live)
	require.Equal(t, 0, hub.LocalConnectionCount("room1"))
	require.EqualValues(t, 0, hub.tracker.GetCount(ctx, "room1"))
}

func TestHubRoomsAreIsolated(t *testing.T) {
	hub := newTestHub(t)
	ctx := context.Background()

	first, _ := dialTestClient(t, hub, "room1", "farmer1")
	second, _ := dialTestClient(t, hub, "room2", "trader2")

	time.Sleep(100 * time.Millisecond)

	hub.BroadcastEvent(ctx, "room1", event.New(event.TypePing, nil))

	ev := readEnvelope(t, first)
	require.Equal(t, event.TypePing, ev.Type)

	second.SetReadDeadline(time.Now().Add(300 * time.Millisecond))
	_, _, err := second.ReadMessage()
	require.Error(t, err, "viewer of another room must not receive the event")
}
