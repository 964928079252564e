package ws

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/lithammer/shortuuid/v4"
	"github.com/rs/zerolog/log"

	"github.com/Captain-Vikram/Live-Bidding-sub000/internal/event"
	"github.com/Captain-Vikram/Live-Bidding-sub000/internal/presence"
)

// room is the per-process view of one auction room: the local connections
// plus the cancel handle of the goroutine forwarding bus events to them.
type room struct {
	clients map[string]*Client // keyed by user ID
	cancel  context.CancelFunc
}

// Hub is the per-process connection registry. It admits authenticated
// connections into rooms, mirrors membership into the presence tracker, and
// rebroadcasts every bus event for a room to the local connections.
type Hub struct {
	bus     event.Bus
	tracker *presence.Tracker

	mu    sync.Mutex
	rooms map[string]*room

	// base context for room forwarders, cancelled by Stop
	ctx     context.Context
	stopAll context.CancelFunc
	stopped bool
}

func NewHub(bus event.Bus, tracker *presence.Tracker) *Hub {
	ctx, cancel := context.WithCancel(context.Background())
	return &Hub{
		bus:     bus,
		tracker: tracker,
		rooms:   make(map[string]*room),
		ctx:     ctx,
		stopAll: cancel,
	}
}

// Connect registers an already-authenticated connection, adds the user to
// the room's presence set, and announces the join to the other viewers.
// A second connection of the same user to the same room replaces the first.
func (h *Hub) Connect(ctx context.Context, roomID, userID string, conn *websocket.Conn) *Client {
	client := &Client{
		ID:     shortuuid.New(),
		RoomID: roomID,
		UserID: userID,
		Conn:   conn,
		Send:   make(chan []byte, sendBufferSize),
	}

	h.mu.Lock()
	r, ok := h.rooms[roomID]
	if !ok {
		forwardCtx, cancel := context.WithCancel(h.ctx)
		r = &room{clients: make(map[string]*Client), cancel: cancel}
		h.rooms[roomID] = r
		go h.forwardRoomEvents(forwardCtx, roomID)
	}
	if previous, ok := r.clients[userID]; ok {
		close(previous.Send)
	}
	r.clients[userID] = client
	h.mu.Unlock()

	go client.writePump()

	h.tracker.AddParticipant(ctx, roomID, userID)

	log.Info().Str("room_id", roomID).Str("user_id", userID).Str("connection_id", client.ID).
		Msg("user connected to auction room")

	h.broadcastUserActivity(ctx, roomID, userID, "joined")

	return client
}

// Disconnect removes a connection from its room, drops the presence entry,
// and announces the leave. Removal is keyed by the client itself, not just
// the user ID: after a reconnect replaced this client, the stale cleanup of
// the old connection must not evict the live replacement. It is idempotent:
// repeated calls and calls from error-recovery paths are no-ops after the
// first.
func (h *Hub) Disconnect(ctx context.Context, client *Client) {
	h.mu.Lock()
	r, ok := h.rooms[client.RoomID]
	if !ok || r.clients[client.UserID] != client {
		h.mu.Unlock()
		return
	}
	delete(r.clients, client.UserID)
	close(client.Send)
	if len(r.clients) == 0 {
		r.cancel()
		delete(h.rooms, client.RoomID)
	}
	h.mu.Unlock()

	h.tracker.RemoveParticipant(ctx, client.RoomID, client.UserID)

	log.Info().Str("room_id", client.RoomID).Str("user_id", client.UserID).
		Msg("user disconnected from auction room")

	h.broadcastUserActivity(ctx, client.RoomID, client.UserID, "left")
}

// SendToUser delivers a payload to one user's connection. A connection with
// a full send buffer is evicted instead of blocking the caller.
func (h *Hub) SendToUser(ctx context.Context, roomID, userID string, payload []byte) {
	var evicted *Client

	h.mu.Lock()
	if r, ok := h.rooms[roomID]; ok {
		if client, ok := r.clients[userID]; ok {
			select {
			case client.Send <- payload:
			default:
				evicted = client
			}
		}
	}
	h.mu.Unlock()

	if evicted != nil {
		log.Warn().Str("room_id", roomID).Str("user_id", userID).
			Msg("send buffer full, evicting connection")
		h.Disconnect(ctx, evicted)
	}
}

// BroadcastToRoom delivers a payload to every local connection in a room,
// optionally excluding one user. A failed delivery evicts that connection
// without aborting delivery to the rest.
func (h *Hub) BroadcastToRoom(ctx context.Context, roomID string, payload []byte, excludeUser string) {
	var evicted []*Client

	h.mu.Lock()
	if r, ok := h.rooms[roomID]; ok {
		for userID, client := range r.clients {
			if excludeUser != "" && userID == excludeUser {
				continue
			}
			select {
			case client.Send <- payload:
			default:
				evicted = append(evicted, client)
			}
		}
	}
	h.mu.Unlock()

	for _, client := range evicted {
		log.Warn().Str("room_id", roomID).Str("user_id", client.UserID).
			Msg("send buffer full, evicting connection")
		h.Disconnect(ctx, client)
	}
}

// BroadcastEvent publishes an envelope to the bus; every process with
// viewers of the room, this one included, rebroadcasts it locally.
func (h *Hub) BroadcastEvent(ctx context.Context, roomID string, ev event.Envelope) {
	h.bus.Publish(ctx, roomID, ev)
}

// LocalConnectionCount returns the number of connections this process holds
// for a room.
func (h *Hub) LocalConnectionCount(roomID string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	if r, ok := h.rooms[roomID]; ok {
		return len(r.clients)
	}
	return 0
}

// Stop cancels every room forwarder and closes all connections.
func (h *Hub) Stop() {
	h.mu.Lock()
	if h.stopped {
		h.mu.Unlock()
		return
	}
	h.stopped = true
	rooms := h.rooms
	h.rooms = make(map[string]*room)
	for _, r := range rooms {
		for _, client := range r.clients {
			close(client.Send)
		}
	}
	h.mu.Unlock()

	h.stopAll()
}

// forwardRoomEvents subscribes to the room's bus channel and rebroadcasts
// every payload to the local connections. It ends when the last local
// viewer leaves or the hub stops.
func (h *Hub) forwardRoomEvents(ctx context.Context, roomID string) {
	events, err := h.bus.Subscribe(ctx, roomID)
	if err != nil {
		log.Error().Err(err).Str("room_id", roomID).
			Msg("failed to subscribe to room events, live push degraded")
		return
	}

	for payload := range events {
		h.BroadcastToRoom(ctx, roomID, payload, "")
	}
}

func (h *Hub) broadcastUserActivity(ctx context.Context, roomID, userID, action string) {
	ev := event.New(event.TypeUserActivity, event.UserActivity{
		UserID:           userID,
		Action:           action,
		ParticipantCount: h.tracker.GetCount(ctx, roomID),
	})

	payload, err := json.Marshal(ev)
	if err != nil {
		log.Error().Err(err).Str("room_id", roomID).Msg("failed to marshal user activity event")
		return
	}

	// Joins and leaves only concern the peers on this instance; other
	// instances announce their own connections.
	h.BroadcastToRoom(ctx, roomID, payload, userID)
}
