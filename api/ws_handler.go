package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	db "github.com/Captain-Vikram/Live-Bidding-sub000/internal/db/sqlc"
	"github.com/Captain-Vikram/Live-Bidding-sub000/internal/event"
)

// recentBidsLimit is how many of the latest bids a viewer sees on join.
const recentBidsLimit = 10

var wsUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// clientMessage is what viewers are allowed to send upstream.
type clientMessage struct {
	Type string `json:"type"`
}

//	@Summary		Join an auction room over WebSocket
//	@Description	Upgrades to a WebSocket connection. Requires a valid access token in the token query parameter; an invalid token closes the socket with code 1008 before the viewer is registered anywhere.
//	@Tags			auction-rooms
//	@Param			commodityID	path	string	true	"Commodity ID"
//	@Param			token		query	string	true	"Access token"
//	@Success		101
//	@Router			/ws/auction/{commodityID} [get]
func (server *Server) serveAuctionRoom(c *gin.Context) {
	commodityID, err := uuid.Parse(c.Param("commodityID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(ErrInvalidCommodityID))
		return
	}

	commodity, err := server.dbStore.GetCommodityByID(c, commodityID)
	if err != nil {
		if errors.Is(err, db.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, errorResponse(fmt.Errorf("commodity ID %s not found", commodityID)))
			return
		}

		c.JSON(http.StatusInternalServerError, errorResponse(fmt.Errorf("failed to get commodity: %w", err)))
		return
	}

	conn, err := wsUpgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}

	// The token is checked after the upgrade so the viewer receives a proper
	// close frame. Nothing is registered before this point, so a rejected
	// token leaves no trace in presence or the hub.
	payload, err := server.tokenMaker.VerifyToken(c.Query("token"))
	if err != nil {
		closeMsg := websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "invalid or expired token")
		conn.WriteControl(websocket.CloseMessage, closeMsg, time.Now().Add(time.Second))
		conn.Close()
		return
	}
	userID := payload.Subject

	roomID := commodityID.String()
	ctx := c.Request.Context()

	client := server.hub.Connect(ctx, roomID, userID, conn)
	defer server.hub.Disconnect(ctx, client)

	room, err := server.dbStore.GetAuctionRoomByCommodityID(ctx, commodityID)
	var currentHighest *int64
	if err == nil {
		currentHighest = room.CurrentHighestBid
	}

	server.sendEnvelope(ctx, roomID, userID, event.New(event.TypeWelcome, event.Welcome{
		CommodityID:       roomID,
		CommodityName:     commodity.CommodityName,
		CurrentHighestBid: currentHighest,
		ParticipantCount:  server.tracker.GetCount(ctx, roomID),
	}))

	recentBids, err := server.dbStore.ListBidsForCommodity(ctx, db.ListBidsForCommodityParams{
		CommodityID: commodityID,
		Limit:       recentBidsLimit,
	})
	if err != nil {
		log.Warn().Err(err).Str("commodity_id", roomID).Msg("failed to load recent bids for new viewer")
	} else {
		server.sendEnvelope(ctx, roomID, userID, event.New(event.TypeRecentBids, gin.H{"bids": recentBids}))
	}

	client.ConfigureRead()
	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Debug().Err(err).Str("user_id", userID).Str("commodity_id", roomID).Msg("websocket closed unexpectedly")
			}
			return
		}

		var msg clientMessage
		if err = json.Unmarshal(raw, &msg); err != nil {
			continue
		}

		switch event.Type(msg.Type) {
		case event.TypePing:
			server.sendEnvelope(ctx, roomID, userID, event.New(event.TypePong, nil))

		case "get_participants":
			server.sendEnvelope(ctx, roomID, userID, event.New(event.TypeParticipantsUpdate, event.ParticipantsUpdate{
				Count: server.tracker.GetCount(ctx, roomID),
			}))

		case "typing":
			data, err := json.Marshal(event.New(event.TypeUserActivity, event.UserActivity{
				UserID:           userID,
				Action:           "typing",
				ParticipantCount: server.tracker.GetCount(ctx, roomID),
			}))
			if err != nil {
				continue
			}
			server.hub.BroadcastToRoom(ctx, roomID, data, userID)
		}
	}
}

func (server *Server) sendEnvelope(ctx context.Context, roomID, userID string, ev event.Envelope) {
	payload, err := json.Marshal(ev)
	if err != nil {
		log.Error().Err(err).Str("type", string(ev.Type)).Msg("failed to marshal envelope")
		return
	}
	server.hub.SendToUser(ctx, roomID, userID, payload)
}
