package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	firebase "firebase.google.com/go/v4"
	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"google.golang.org/api/option"
	"resty.dev/v3"

	"github.com/Captain-Vikram/Live-Bidding-sub000/api"
	db "github.com/Captain-Vikram/Live-Bidding-sub000/internal/db/sqlc"
	"github.com/Captain-Vikram/Live-Bidding-sub000/internal/event"
	"github.com/Captain-Vikram/Live-Bidding-sub000/internal/notification"
	"github.com/Captain-Vikram/Live-Bidding-sub000/internal/presence"
	"github.com/Captain-Vikram/Live-Bidding-sub000/internal/sweeper"
	"github.com/Captain-Vikram/Live-Bidding-sub000/internal/util"
	"github.com/Captain-Vikram/Live-Bidding-sub000/internal/worker"
	"github.com/Captain-Vikram/Live-Bidding-sub000/internal/ws"

	_ "github.com/Captain-Vikram/Live-Bidding-sub000/docs"
)

//	@title			AgriBid Live Bidding API
//	@version		1.0.0
//	@description	Real-time bidding API for the agricultural commodity marketplace

//	@host		localhost:8080
//	@BasePath	/v1
//	@schemes	http https ws wss

//	@securityDefinitions.apikey	accessToken
//	@in							header
//	@name						Authorization
//	@description				Type "Bearer" followed by a space and JWT token.
func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	// Load configurations
	config, err := util.LoadConfig("./app.env")
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config file 😣")
	}

	log.Info().Msg("configurations loaded successfully ✅")

	// Create connection pool
	connPool, err := pgxpool.New(context.Background(), config.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to validate db connection string 😣")
	}

	pingErr := connPool.Ping(context.Background())
	if pingErr != nil {
		log.Fatal().Err(pingErr).Msg("failed to connect to db 😣")
	}
	log.Info().Msg("connected to db ✅")

	store := db.NewStore(connPool)

	redisDb := redis.NewClient(&redis.Options{
		Addr:     config.RedisServerAddress,
		Password: "", // no password set
		DB:       0,  // use default DB
	})

	redisOpt := asynq.RedisClientOpt{
		Addr: config.RedisServerAddress,
	}

	taskDistributor := worker.NewTaskDistributor(redisOpt)
	log.Info().Msg("task distributor created successfully ✅")

	notifier := buildNotifier(&config)

	bus := event.NewRedisBus(redisDb)
	tracker := presence.NewTracker(redisDb)
	hub := ws.NewHub(bus, tracker)

	bidSweeper, err := sweeper.NewBidSweeper(store, bus, taskDistributor, config.BidSweepInterval)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create bid sweeper 😣")
	}
	if err = bidSweeper.Start(); err != nil {
		log.Fatal().Err(err).Msg("failed to start bid sweeper 😣")
	}
	log.Info().Msg("bid sweeper started successfully ✅")

	taskProcessor := worker.NewRedisTaskProcessor(redisOpt, notifier)
	go func() {
		log.Info().Msg("task processor started successfully ✅")
		if err := taskProcessor.Start(); err != nil {
			log.Fatal().Err(err).Msg("failed to start task processor 😣")
		}
	}()

	httpServer, err := api.NewServer(store, &config, hub, bus, tracker, taskDistributor)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create HTTP server 😣")
	}
	go func() {
		if err := httpServer.Start(config.HTTPServerAddress); err != nil {
			log.Fatal().Err(err).Msg("failed to start HTTP server 😣")
		}
	}()

	// Block until an interrupt, then drain in-flight work before exiting.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("failed to shut down HTTP server gracefully")
	}
	if err := bidSweeper.Stop(); err != nil {
		log.Error().Err(err).Msg("failed to stop bid sweeper")
	}
	hub.Stop()
	taskProcessor.Shutdown()
	if err := taskDistributor.Close(); err != nil {
		log.Error().Err(err).Msg("failed to close task distributor")
	}
	connPool.Close()
	if err := redisDb.Close(); err != nil {
		log.Error().Err(err).Msg("failed to close redis client")
	}

	log.Info().Msg("server stopped gracefully ✅")
}

func buildNotifier(config *util.Config) notification.Notifier {
	switch config.NotificationSink {
	case "webhook":
		return notification.NewWebhookNotifier(resty.New(), config.NotificationWebhookURL)
	case "firestore":
		firebaseApp, err := firebase.NewApp(context.Background(), nil, option.WithCredentialsFile(config.FirebaseCredentialsFile))
		if err != nil {
			log.Fatal().Err(err).Msg("failed to initialize firebase app 😣")
		}
		notifier, err := notification.NewFirestoreNotifier(context.Background(), firebaseApp)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to create firestore notifier 😣")
		}
		return notifier
	default:
		log.Warn().Msg("no notification sink configured, notifications will be discarded")
		return notification.NopNotifier{}
	}
}
