package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/rs/zerolog/log"

	db "github.com/Captain-Vikram/Live-Bidding-sub000/internal/db/sqlc"
	"github.com/Captain-Vikram/Live-Bidding-sub000/internal/event"
	"github.com/Captain-Vikram/Live-Bidding-sub000/internal/token"
	"github.com/Captain-Vikram/Live-Bidding-sub000/internal/util"
	"github.com/Captain-Vikram/Live-Bidding-sub000/internal/worker"
)

type placeBidRequest struct {
	CommodityID      string  `json:"commodity_id" binding:"required"`
	Amount           int64   `json:"amount" binding:"required"`
	Message          *string `json:"message"`
	ExpiresInMinutes int64   `json:"expires_in_minutes"`
}

//	@Summary		Place a bid on a commodity listing
//	@Description	Buyer places a bid on an active, approved commodity. The bid must be strictly higher than the current highest bid.
//	@Tags			bids
//	@Accept			json
//	@Produce		json
//	@Param			request	body	placeBidRequest	true	"Bid details"
//	@Success		201		{object}	db.PlaceBidTxResult
//	@Security		accessToken
//	@Router			/bids [post]
func (server *Server) placeBid(c *gin.Context) {
	authPayload := c.MustGet(authorizationPayloadKey).(*token.Payload)
	bidderID := authPayload.Subject

	var req placeBidRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(fmt.Errorf("invalid request body: %w", err)))
		return
	}

	commodityID, err := uuid.Parse(req.CommodityID)
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(ErrInvalidCommodityID))
		return
	}

	if req.Amount <= 0 {
		err = fmt.Errorf("bid amount must be greater than 0, provided: %d", req.Amount)
		c.JSON(http.StatusBadRequest, failedValidationError([]*FieldViolation{
			fieldViolation("amount", err),
		}))
		return
	}

	ttlMinutes := req.ExpiresInMinutes
	if ttlMinutes == 0 {
		ttlMinutes = server.config.DefaultBidTTLMinutes
	}

	// Read the room before entering the transaction. The locked row is
	// re-checked inside PlaceBidTx, so a mismatch there means this bidder
	// lost a race rather than underbid on purpose.
	var observedHighest *int64
	room, err := server.dbStore.GetAuctionRoomByCommodityID(c, commodityID)
	if err == nil {
		observedHighest = room.CurrentHighestBid
	} else if !errors.Is(err, db.ErrRecordNotFound) {
		c.JSON(http.StatusInternalServerError, errorResponse(fmt.Errorf("failed to get auction room: %w", err)))
		return
	}

	result, err := server.dbStore.PlaceBidTx(c, db.PlaceBidTxParams{
		CommodityID:     commodityID,
		BidderID:        bidderID,
		Amount:          req.Amount,
		Message:         req.Message,
		TTLMinutes:      ttlMinutes,
		ObservedHighest: observedHighest,
	})
	if err != nil {
		switch {
		case errors.Is(err, db.ErrCommodityNotAvailable):
			c.JSON(http.StatusNotFound, errorResponse(err))
		case errors.Is(err, db.ErrSelfBid):
			c.JSON(http.StatusForbidden, errorResponse(err))
		case errors.Is(err, db.ErrBidTooLow), errors.Is(err, db.ErrInvalidBidTTL):
			c.JSON(http.StatusBadRequest, errorResponse(err))
		case errors.Is(err, db.ErrHighestBidChanged):
			c.JSON(http.StatusConflict, errorResponse(err))
		default:
			c.JSON(http.StatusInternalServerError, errorResponse(fmt.Errorf("failed to place bid: %w", err)))
		}
		return
	}

	log.Info().
		Str("commodity_id", commodityID.String()).
		Str("bidder_id", bidderID).
		Int64("amount", req.Amount).
		Int64("total_bids", result.AuctionRoom.TotalBids).
		Msg("bid placed successfully")

	// Fan-out and notifications run after the commit and never block the
	// response.
	go server.afterBidPlaced(result)

	c.JSON(http.StatusCreated, result)
}

func (server *Server) afterBidPlaced(result db.PlaceBidTxResult) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	roomID := result.Bid.CommodityID.String()

	server.bus.Publish(ctx, roomID, event.New(event.TypeNewBid, event.NewBid{
		BidID:       result.Bid.ID.String(),
		CommodityID: roomID,
		BidderID:    result.Bid.BidderID,
		Amount:      result.Bid.Amount,
		Message:     result.Bid.Message,
		BidTime:     result.Bid.BidTime.Format(time.RFC3339),
	}))

	opts := []asynq.Option{
		asynq.MaxRetry(3),
		asynq.Queue(worker.QueueCritical),
	}

	err := server.taskDistributor.DistributeTaskSendNotification(
		ctx,
		&worker.PayloadSendNotification{
			RecipientID: result.Bid.BidderID,
			Title:       "Bid placed",
			Message: fmt.Sprintf("Your bid of %s on %s is now the highest.",
				util.FormatMoney(result.Bid.Amount),
				result.Commodity.CommodityName),
			Type:        "bid_placed",
			ReferenceID: result.Bid.ID.String(),
		},
		asynq.MaxRetry(3),
		asynq.Queue(worker.QueueDefault),
	)
	if err != nil {
		log.Err(err).
			Str("recipient_id", result.Bid.BidderID).
			Str("bid_id", result.Bid.ID.String()).
			Msg("failed to send bid confirmation")
	}

	err = server.taskDistributor.DistributeTaskSendNotification(
		ctx,
		&worker.PayloadSendNotification{
			RecipientID: result.Commodity.OwnerID,
			Title:       "New bid received",
			Message: fmt.Sprintf("Someone bid %s on your listing %s.",
				util.FormatMoney(result.Bid.Amount),
				result.Commodity.CommodityName),
			Type:        "new_bid",
			ReferenceID: result.Bid.ID.String(),
		},
		opts...,
	)
	if err != nil {
		log.Err(err).
			Str("recipient_id", result.Commodity.OwnerID).
			Str("bid_id", result.Bid.ID.String()).
			Msg("failed to send notification to commodity owner")
	}

	if result.PreviousBidderID != nil {
		err = server.taskDistributor.DistributeTaskSendNotification(
			ctx,
			&worker.PayloadSendNotification{
				RecipientID: *result.PreviousBidderID,
				Title:       "You have been outbid",
				Message: fmt.Sprintf("Your bid on %s was surpassed. The new highest bid is %s.",
					result.Commodity.CommodityName,
					util.FormatMoney(result.Bid.Amount)),
				Type:        "outbid",
				ReferenceID: result.Bid.ID.String(),
			},
			opts...,
		)
		if err != nil {
			log.Err(err).
				Str("recipient_id", *result.PreviousBidderID).
				Str("bid_id", result.Bid.ID.String()).
				Msg("failed to send notification to outbid user")
		}
	}
}

type updateBidRequest struct {
	Action string `json:"action" binding:"required,oneof=withdraw accept"`
}

//	@Summary		Withdraw or accept a bid
//	@Description	The bidder can withdraw their own active bid. The commodity owner can accept an active bid, which rejects all other active bids and deactivates the listing.
//	@Tags			bids
//	@Accept			json
//	@Produce		json
//	@Param			bidID	path	string				true	"Bid ID"
//	@Param			request	body	updateBidRequest	true	"Action to perform"
//	@Success		200
//	@Security		accessToken
//	@Router			/bids/{bidID} [patch]
func (server *Server) updateBid(c *gin.Context) {
	authPayload := c.MustGet(authorizationPayloadKey).(*token.Payload)
	userID := authPayload.Subject

	bidID, err := uuid.Parse(c.Param("bidID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(ErrInvalidBidID))
		return
	}

	var req updateBidRequest
	if err = c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(ErrUnsupportedAction))
		return
	}

	switch req.Action {
	case "withdraw":
		server.withdrawBid(c, bidID, userID)
	case "accept":
		server.acceptBid(c, bidID, userID)
	default:
		c.JSON(http.StatusBadRequest, errorResponse(ErrUnsupportedAction))
	}
}

func (server *Server) withdrawBid(c *gin.Context, bidID uuid.UUID, userID string) {
	result, err := server.dbStore.WithdrawBidTx(c, db.WithdrawBidTxParams{
		BidID:       bidID,
		RequesterID: userID,
	})
	if err != nil {
		switch {
		case errors.Is(err, db.ErrRecordNotFound):
			c.JSON(http.StatusNotFound, errorResponse(fmt.Errorf("bid ID %s not found", bidID)))
		case errors.Is(err, db.ErrNotBidOwner):
			c.JSON(http.StatusForbidden, errorResponse(err))
		case errors.Is(err, db.ErrBidNotActive):
			c.JSON(http.StatusConflict, errorResponse(err))
		default:
			c.JSON(http.StatusInternalServerError, errorResponse(fmt.Errorf("failed to withdraw bid: %w", err)))
		}
		return
	}

	log.Info().
		Str("bid_id", bidID.String()).
		Str("bidder_id", userID).
		Bool("was_highest", result.WasHighest).
		Msg("bid withdrawn")

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		server.bus.Publish(ctx, result.Bid.CommodityID.String(), event.New(event.TypeBidUpdate, event.BidUpdate{
			BidID:             result.Bid.ID.String(),
			CommodityID:       result.Bid.CommodityID.String(),
			Action:            "withdrawn",
			CurrentHighestBid: result.AuctionRoom.CurrentHighestBid,
		}))
	}()

	c.JSON(http.StatusOK, result)
}

func (server *Server) acceptBid(c *gin.Context, bidID uuid.UUID, userID string) {
	result, err := server.dbStore.AcceptBidTx(c, db.AcceptBidTxParams{
		BidID:   bidID,
		OwnerID: userID,
	})
	if err != nil {
		switch {
		case errors.Is(err, db.ErrRecordNotFound):
			c.JSON(http.StatusNotFound, errorResponse(fmt.Errorf("bid ID %s not found", bidID)))
		case errors.Is(err, db.ErrNotCommodityOwner):
			c.JSON(http.StatusForbidden, errorResponse(err))
		case errors.Is(err, db.ErrBidNotActive):
			c.JSON(http.StatusConflict, errorResponse(err))
		default:
			c.JSON(http.StatusInternalServerError, errorResponse(fmt.Errorf("failed to accept bid: %w", err)))
		}
		return
	}

	log.Info().
		Str("bid_id", bidID.String()).
		Str("owner_id", userID).
		Int("rejected_bids", len(result.RejectedBids)).
		Msg("bid accepted")

	go server.afterBidAccepted(result)

	c.JSON(http.StatusOK, result)
}

func (server *Server) afterBidAccepted(result db.AcceptBidTxResult) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	roomID := result.AcceptedBid.CommodityID.String()

	server.bus.Publish(ctx, roomID, event.New(event.TypeBidUpdate, event.BidUpdate{
		BidID:             result.AcceptedBid.ID.String(),
		CommodityID:       roomID,
		Action:            "accepted",
		CurrentHighestBid: result.AuctionRoom.CurrentHighestBid,
	}))

	for _, rejected := range result.RejectedBids {
		server.bus.Publish(ctx, roomID, event.New(event.TypeBidUpdate, event.BidUpdate{
			BidID:             rejected.ID.String(),
			CommodityID:       roomID,
			Action:            "rejected",
			CurrentHighestBid: result.AuctionRoom.CurrentHighestBid,
		}))
	}

	opts := []asynq.Option{
		asynq.MaxRetry(3),
		asynq.Queue(worker.QueueCritical),
	}

	err := server.taskDistributor.DistributeTaskSendNotification(
		ctx,
		&worker.PayloadSendNotification{
			RecipientID: result.AcceptedBid.BidderID,
			Title:       "Your bid was accepted!",
			Message: fmt.Sprintf("Congratulations! Your bid of %s on %s was accepted.",
				util.FormatMoney(result.AcceptedBid.Amount),
				result.Commodity.CommodityName),
			Type:        "bid_accepted",
			ReferenceID: result.AcceptedBid.ID.String(),
		},
		opts...,
	)
	if err != nil {
		log.Err(err).
			Str("recipient_id", result.AcceptedBid.BidderID).
			Str("bid_id", result.AcceptedBid.ID.String()).
			Msg("failed to send acceptance notification")
	}

	for _, rejected := range result.RejectedBids {
		err = server.taskDistributor.DistributeTaskSendNotification(
			ctx,
			&worker.PayloadSendNotification{
				RecipientID: rejected.BidderID,
				Title:       "Bid not selected",
				Message: fmt.Sprintf("Your bid of %s on %s was not selected. The listing has been closed.",
					util.FormatMoney(rejected.Amount),
					result.Commodity.CommodityName),
				Type:        "bid_rejected",
				ReferenceID: rejected.ID.String(),
			},
			asynq.MaxRetry(3),
			asynq.Queue(worker.QueueDefault),
		)
		if err != nil {
			log.Err(err).
				Str("recipient_id", rejected.BidderID).
				Str("bid_id", rejected.ID.String()).
				Msg("failed to send rejection notification")
		}
	}
}

//	@Summary	List bids for a commodity
//	@Tags		bids
//	@Produce	json
//	@Param		commodityID	path	string	true	"Commodity ID"
//	@Param		limit		query	int		false	"Page size"	default(20)
//	@Param		offset		query	int		false	"Page offset"
//	@Success	200	{array}	db.Bid
//	@Router		/bids/commodity/{commodityID} [get]
func (server *Server) listCommodityBids(c *gin.Context) {
	commodityID, err := uuid.Parse(c.Param("commodityID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(ErrInvalidCommodityID))
		return
	}

	limit, offset := paginationParams(c)

	bids, err := server.dbStore.ListBidsForCommodity(c, db.ListBidsForCommodityParams{
		CommodityID: commodityID,
		Limit:       limit,
		Offset:      offset,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, errorResponse(fmt.Errorf("failed to list bids: %w", err)))
		return
	}

	c.JSON(http.StatusOK, bids)
}

//	@Summary	List the authenticated user's bids
//	@Tags		bids
//	@Produce	json
//	@Param		status	query	string	false	"Filter by bid status"	Enums(active, withdrawn, accepted, rejected, expired)
//	@Param		limit	query	int		false	"Page size"	default(20)
//	@Param		offset	query	int		false	"Page offset"
//	@Success	200	{array}	db.Bid
//	@Security	accessToken
//	@Router		/bids/my-bids [get]
func (server *Server) listMyBids(c *gin.Context) {
	authPayload := c.MustGet(authorizationPayloadKey).(*token.Payload)

	var status *db.BidStatus
	if raw := c.Query("status"); raw != "" {
		s := db.BidStatus(raw)
		if !s.Valid() {
			c.JSON(http.StatusBadRequest, errorResponse(fmt.Errorf("invalid bid status %q", raw)))
			return
		}
		status = &s
	}

	limit, offset := paginationParams(c)

	bids, err := server.dbStore.ListUserBids(c, db.ListUserBidsParams{
		BidderID: authPayload.Subject,
		Status:   status,
		Limit:    limit,
		Offset:   offset,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, errorResponse(fmt.Errorf("failed to list bids: %w", err)))
		return
	}

	c.JSON(http.StatusOK, bids)
}

type myBiddingStatsResponse struct {
	db.UserBidStats
	MostActiveCommodity *string `json:"most_active_commodity"`
}

//	@Summary	Bidding statistics for the authenticated user
//	@Description	Totals by status, average and highest bid amount, and the commodity the user has bid on most often.
//	@Tags		bids
//	@Produce	json
//	@Success	200	{object}	myBiddingStatsResponse
//	@Security	accessToken
//	@Router		/bids/stats/my-bidding [get]
func (server *Server) getMyBiddingStats(c *gin.Context) {
	authPayload := c.MustGet(authorizationPayloadKey).(*token.Payload)

	stats, err := server.dbStore.GetUserBidStats(c, authPayload.Subject)
	if err != nil {
		c.JSON(http.StatusInternalServerError, errorResponse(fmt.Errorf("failed to get bid stats: %w", err)))
		return
	}

	resp := myBiddingStatsResponse{UserBidStats: stats}

	if stats.TotalBids > 0 {
		mostActive, err := server.dbStore.GetUserMostActiveCommodity(c, authPayload.Subject)
		switch {
		case err == nil:
			resp.MostActiveCommodity = &mostActive.CommodityName
		case !errors.Is(err, db.ErrRecordNotFound):
			c.JSON(http.StatusInternalServerError, errorResponse(fmt.Errorf("failed to get most active commodity: %w", err)))
			return
		}
	}

	c.JSON(http.StatusOK, resp)
}

func paginationParams(c *gin.Context) (limit, offset int32) {
	limit = 20
	if raw := c.Query("limit"); raw != "" {
		if v, err := strconv.ParseInt(raw, 10, 32); err == nil && v > 0 && v <= 100 {
			limit = int32(v)
		}
	}
	if raw := c.Query("offset"); raw != "" {
		if v, err := strconv.ParseInt(raw, 10, 32); err == nil && v >= 0 {
			offset = int32(v)
		}
	}
	return limit, offset
}
