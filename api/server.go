package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	db "github.com/Captain-Vikram/Live-Bidding-sub000/internal/db/sqlc"
	"github.com/Captain-Vikram/Live-Bidding-sub000/internal/event"
	"github.com/Captain-Vikram/Live-Bidding-sub000/internal/presence"
	"github.com/Captain-Vikram/Live-Bidding-sub000/internal/token"
	"github.com/Captain-Vikram/Live-Bidding-sub000/internal/util"
	"github.com/Captain-Vikram/Live-Bidding-sub000/internal/worker"
	"github.com/Captain-Vikram/Live-Bidding-sub000/internal/ws"
)

type Server struct {
	router          *gin.Engine
	httpServer      *http.Server
	dbStore         db.Store
	tokenMaker      token.Maker
	config          *util.Config
	hub             *ws.Hub
	bus             event.Bus
	tracker         *presence.Tracker
	taskDistributor worker.TaskDistributor
}

// NewServer creates a new HTTP server and set up routing.
func NewServer(store db.Store, config *util.Config, hub *ws.Hub, bus event.Bus, tracker *presence.Tracker, taskDistributor worker.TaskDistributor) (*Server, error) {
	tokenMaker, err := token.NewJWTMaker(config.TokenSecretKey)
	if err != nil {
		return nil, fmt.Errorf("failed to create token maker: %w", err)
	}
	log.Info().Msg("Token maker created successfully ✅")

	server := &Server{
		dbStore:         store,
		tokenMaker:      tokenMaker,
		config:          config,
		hub:             hub,
		bus:             bus,
		tracker:         tracker,
		taskDistributor: taskDistributor,
	}

	server.setupRouter()
	return server, nil
}

// setupRouter configures the HTTP server routes.
func (server *Server) setupRouter() *gin.Engine {
	gin.ForceConsoleColor()
	router := gin.Default()
	router.Use(cors.New(cors.Config{
		AllowOrigins:     server.config.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE"},
		AllowHeaders:     []string{"Origin", "Content-Length", "Content-Type", "Authorization"},
		AllowCredentials: true,
	}))

	v1 := router.Group("/v1")

	v1.POST("/tokens/verify", server.verifyAccessToken)

	bidGroup := v1.Group("/bids")
	{
		bidGroup.GET("/commodity/:commodityID", server.listCommodityBids)

		bidGroup.Use(authMiddleware(server.tokenMaker))
		bidGroup.POST("", server.placeBid)
		bidGroup.PATCH(":bidID", server.updateBid)
		bidGroup.GET("/my-bids", server.listMyBids)
		bidGroup.GET("/stats/my-bidding", server.getMyBiddingStats)
	}

	roomGroup := v1.Group("/auction-rooms")
	{
		roomGroup.GET("", server.listAuctionRooms)
		roomGroup.GET(":commodityID", server.getAuctionRoom)
	}

	v1.GET("/ws/auction/:commodityID", server.serveAuctionRoom)

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	server.router = router
	return router
}

// Start runs the HTTP server on a specific address.
func (server *Server) Start(address string) error {
	server.httpServer = &http.Server{
		Addr:    address,
		Handler: server.router,
	}

	err := server.httpServer.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Shutdown stops accepting new connections and waits for in-flight requests
// until ctx expires.
func (server *Server) Shutdown(ctx context.Context) error {
	if server.httpServer == nil {
		return nil
	}
	return server.httpServer.Shutdown(ctx)
}
