package sweeper

import (
	"context"
	"fmt"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/hibiken/asynq"
	"github.com/rs/zerolog/log"

	db "github.com/Captain-Vikram/Live-Bidding-sub000/internal/db/sqlc"
	"github.com/Captain-Vikram/Live-Bidding-sub000/internal/event"
	"github.com/Captain-Vikram/Live-Bidding-sub000/internal/util"
	"github.com/Captain-Vikram/Live-Bidding-sub000/internal/worker"
)

// BidSweeper periodically transitions timed-out active bids to expired and
// recomputes the affected auction rooms.
type BidSweeper struct {
	store           db.Store
	bus             event.Bus
	taskDistributor worker.TaskDistributor
	scheduler       gocron.Scheduler
	interval        time.Duration
}

func NewBidSweeper(store db.Store, bus event.Bus, taskDistributor worker.TaskDistributor, interval time.Duration) (*BidSweeper, error) {
	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return nil, err
	}

	return &BidSweeper{
		store:           store,
		bus:             bus,
		taskDistributor: taskDistributor,
		scheduler:       scheduler,
		interval:        interval,
	}, nil
}

// Start schedules the sweep job and starts the scheduler.
func (s *BidSweeper) Start() error {
	_, err := s.scheduler.NewJob(
		gocron.DurationJob(s.interval),
		gocron.NewTask(
			func() {
				s.sweepExpiredBids()
			},
		),
	)
	if err != nil {
		return err
	}

	s.scheduler.Start()
	return nil
}

// Stop shuts the scheduler down.
func (s *BidSweeper) Stop() error {
	return s.scheduler.Shutdown()
}

func (s *BidSweeper) sweepExpiredBids() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	result, err := s.store.ExpireBidsTx(ctx)
	if err != nil {
		log.Error().Err(err).Msg("bid expire sweep failed")
		return
	}
	if len(result.ExpiredBids) == 0 {
		return
	}

	log.Info().Int("expired_bids", len(result.ExpiredBids)).
		Int("recomputed_rooms", len(result.RecomputedRooms)).
		Msg("bid expire sweep completed")

	// Fan-out and notifications happen after commit and are best-effort.
	for _, bid := range result.ExpiredBids {
		roomID := bid.CommodityID.String()

		var currentHighest *int64
		if room, ok := result.RecomputedRooms[bid.CommodityID]; ok {
			currentHighest = room.CurrentHighestBid
		}

		s.bus.Publish(ctx, roomID, event.New(event.TypeBidUpdate, event.BidUpdate{
			BidID:             bid.ID.String(),
			CommodityID:       roomID,
			Action:            "expired",
			CurrentHighestBid: currentHighest,
		}))

		err = s.taskDistributor.DistributeTaskSendNotification(ctx, &worker.PayloadSendNotification{
			RecipientID: bid.BidderID,
			Title:       "Bid expired",
			Message:     fmt.Sprintf("Your bid of %s expired without being accepted.", util.FormatMoney(bid.Amount)),
			Type:        "bid_expired",
			ReferenceID: bid.ID.String(),
		}, asynq.Queue(worker.QueueDefault))
		if err != nil {
			log.Warn().Err(err).Str("bid_id", bid.ID.String()).
				Msg("failed to enqueue expiry notification")
		}
	}
}
