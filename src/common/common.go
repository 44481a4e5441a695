package common

import (
	"context"
	"log"
	"time"

	"taskhub/src/config"
	"taskhub/src/lib"
	awslib "taskhub/src/lib/aws"
	"taskhub/src/lib/jobs"
	"taskhub/src/types"

	"github.com/redis/go-redis/v9"
)

const redisPopTimeout = 5 * time.Second

// redisPop waits for one job on key. It reports false when nothing arrived before the timeout.
func redisPop(ctx context.Context, rdb *redis.Client, key string, handler types.Handler) (bool, error) {
	res, err := rdb.BRPop(ctx, redisPopTimeout, key).Result()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	// BRPOP replies with [key, value]
	handler(res[1])
	return true, nil
}

func redisConsumer(ctx context.Context, rdb *redis.Client, key string, handler types.Handler) {
	log.Printf("[redis] %s: waiting for messages...\n", key)
	for ctx.Err() == nil {
		if _, err := redisPop(ctx, rdb, key, handler); err != nil && ctx.Err() == nil {
			log.Printf("[redis] Error receiving messages: %s\n", err.Error())
			time.Sleep(time.Second)
		}
	}
}

// StartConsumers attaches handler to the notification queue of the configured driver.
func StartConsumers(ctx context.Context, cfg config.Config, handler types.Handler) error {
	switch cfg.QueueDriver {
	case jobs.DRIVER_REDIS:
		go redisConsumer(ctx, lib.GetRedisClient(cfg.RedisHost), cfg.NotificationQueue, handler)
	case jobs.DRIVER_KAFKA:
		return lib.KafkaConsumer(ctx, cfg.KafkaBroker, "taskhub-notifications", []string{cfg.NotificationQueue}, handler)
	case jobs.DRIVER_SNS:
		client, err := lib.AWSGetSNSClient(ctx)
		if err != nil {
			return err
		}
		if _, err := awslib.NewSNSSubscriber(client, cfg.NotificationQueue).Subscribe(ctx, "sqs", lib.GetQueueArn(cfg.NotificationQueue)); err != nil {
			return err
		}
		return listenSQS(ctx, cfg.NotificationQueue, handler)
	case jobs.DRIVER_SQS:
		return listenSQS(ctx, cfg.NotificationQueue, handler)
	}
	return nil
}

func listenSQS(ctx context.Context, queue string, handler types.Handler) error {
	client, err := lib.AWSGetSQSClient(ctx)
	if err != nil {
		return err
	}
	return awslib.NewSQSConsumer(client, queue, handler).Listen(ctx)
}
