package worker

import (
	"context"

	"github.com/hibiken/asynq"
)

const (
	TaskSendNotification = "notification:send"
)

/*
This file contains the code that creates tasks and distributes them to the Redis queue.
*/

type TaskDistributor interface {
	DistributeTaskSendNotification(ctx context.Context, payload *PayloadSendNotification, opts ...asynq.Option) error
	Close() error
}

type RedisTaskDistributor struct {
	client *asynq.Client // client sends tasks to redis queue.
}

func NewTaskDistributor(redisOpt asynq.RedisClientOpt) TaskDistributor {
	client := asynq.NewClient(redisOpt)

	return &RedisTaskDistributor{
		client: client,
	}
}

func (distributor *RedisTaskDistributor) Close() error {
	return distributor.client.Close()
}
