package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	db "github.com/Captain-Vikram/Live-Bidding-sub000/internal/db/sqlc"
)

type auctionRoomResponse struct {
	db.AuctionRoom
	CommodityName    string `json:"commodity_name"`
	ParticipantCount int64  `json:"participant_count"`
}

type auctionRoomDetailResponse struct {
	auctionRoomResponse
	RecentBids   []db.Bid `json:"recent_bids"`
	Participants []string `json:"participants"`
}

//	@Summary	List active auction rooms
//	@Tags		auction-rooms
//	@Produce	json
//	@Param		limit	query	int	false	"Maximum number of rooms"	default(20)
//	@Success	200	{array}	auctionRoomResponse
//	@Router		/auction-rooms [get]
func (server *Server) listAuctionRooms(c *gin.Context) {
	limit, _ := paginationParams(c)

	rooms, err := server.dbStore.ListActiveAuctionRooms(c, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, errorResponse(fmt.Errorf("failed to list auction rooms: %w", err)))
		return
	}

	resp := make([]auctionRoomResponse, 0, len(rooms))
	for _, room := range rooms {
		item := auctionRoomResponse{
			AuctionRoom:      room,
			ParticipantCount: server.tracker.GetCount(c, room.CommodityID.String()),
		}
		if commodity, err := server.dbStore.GetCommodityByID(c, room.CommodityID); err == nil {
			item.CommodityName = commodity.CommodityName
		}
		resp = append(resp, item)
	}

	c.JSON(http.StatusOK, resp)
}

//	@Summary	Get one auction room with its recent bids and participants
//	@Tags		auction-rooms
//	@Produce	json
//	@Param		commodityID	path	string	true	"Commodity ID"
//	@Success	200	{object}	auctionRoomDetailResponse
//	@Router		/auction-rooms/{commodityID} [get]
func (server *Server) getAuctionRoom(c *gin.Context) {
	commodityID, err := uuid.Parse(c.Param("commodityID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(ErrInvalidCommodityID))
		return
	}

	room, err := server.dbStore.GetAuctionRoomByCommodityID(c, commodityID)
	if err != nil {
		if errors.Is(err, db.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, errorResponse(fmt.Errorf("auction room for commodity %s not found", commodityID)))
			return
		}

		c.JSON(http.StatusInternalServerError, errorResponse(fmt.Errorf("failed to get auction room: %w", err)))
		return
	}

	recentBids, err := server.dbStore.ListBidsForCommodity(c, db.ListBidsForCommodityParams{
		CommodityID: commodityID,
		Limit:       recentBidsLimit,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, errorResponse(fmt.Errorf("failed to list recent bids: %w", err)))
		return
	}

	resp := auctionRoomDetailResponse{
		auctionRoomResponse: auctionRoomResponse{
			AuctionRoom:      room,
			ParticipantCount: server.tracker.GetCount(c, commodityID.String()),
		},
		RecentBids:   recentBids,
		Participants: server.tracker.GetParticipants(c, commodityID.String()),
	}
	if commodity, err := server.dbStore.GetCommodityByID(c, commodityID); err == nil {
		resp.CommodityName = commodity.CommodityName
	}

	c.JSON(http.StatusOK, resp)
}
