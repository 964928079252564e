package ws

import (
	"time"

	"github.com/gorilla/websocket"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = 54 * time.Second

	// sendBufferSize bounds the per-client outbound queue. A client that
	// cannot drain it in time is evicted rather than allowed to stall the room.
	sendBufferSize = 256
)

// Client is one live WebSocket connection inside an auction room.
type Client struct {
	ID     string
	RoomID string
	UserID string
	Conn   *websocket.Conn
	Send   chan []byte
}

// ConfigureRead installs the read deadline and pong handler. Callers own the
// read loop; the deadline is refreshed on every pong.
func (c *Client) ConfigureRead() {
	c.Conn.SetReadLimit(4096)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		return c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	})
}

// writePump pumps messages from the Send channel to the websocket
// connection and keeps the connection alive with periodic pings. It exits
// when Send is closed or a write fails.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
