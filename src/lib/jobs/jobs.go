// Package jobs delivers membership jobs to the configured queue after a commit.
package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"taskhub/src/config"
	"taskhub/src/lib"
	"taskhub/src/membership"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/confluentinc/confluent-kafka-go/kafka"
	"github.com/redis/go-redis/v9"
)

const (
	DRIVER_REDIS = "redis"
	DRIVER_KAFKA = "kafka"
	DRIVER_SQS   = "sqs"
	DRIVER_SNS   = "sns"
	DRIVER_LOG   = "log"
)

func encode(job membership.Job) ([]byte, error) {
	body, err := json.Marshal(job)
	if err != nil {
		return nil, fmt.Errorf("error encoding job %s: %w", job.Name, err)
	}
	return body, nil
}

type RedisQueue struct {
	rdb *redis.Client
	key string
}

func NewRedisQueue(rdb *redis.Client, key string) *RedisQueue {
	return &RedisQueue{rdb: rdb, key: key}
}

func (q *RedisQueue) Enqueue(ctx context.Context, job membership.Job) error {
	body, err := encode(job)
	if err != nil {
		return err
	}
	return q.rdb.LPush(ctx, q.key, string(body)).Err()
}

type KafkaQueue struct {
	producer *kafka.Producer
	topic    string
}

func NewKafkaQueue(producer *kafka.Producer, topic string) *KafkaQueue {
	return &KafkaQueue{producer: producer, topic: topic}
}

func (q *KafkaQueue) Enqueue(ctx context.Context, job membership.Job) error {
	body, err := encode(job)
	if err != nil {
		return err
	}
	return q.producer.Produce(&kafka.Message{
		TopicPartition: kafka.TopicPartition{Topic: &q.topic, Partition: kafka.PartitionAny},
		Key:            []byte(job.Scope.String()),
		Value:          body,
	}, nil)
}

type SQSSender interface {
	SendMessage(ctx context.Context, params *sqs.SendMessageInput, optFns ...func(*sqs.Options)) (*sqs.SendMessageOutput, error)
}

type SQSQueue struct {
	client   SQSSender
	queueURL string
}

func NewSQSQueue(client SQSSender, queueURL string) *SQSQueue {
	return &SQSQueue{client: client, queueURL: queueURL}
}

func (q *SQSQueue) Enqueue(ctx context.Context, job membership.Job) error {
	body, err := encode(job)
	if err != nil {
		return err
	}
	_, err = q.client.SendMessage(ctx, &sqs.SendMessageInput{
		QueueUrl:    aws.String(q.queueURL),
		MessageBody: aws.String(string(body)),
	})
	return err
}

type SNSPublisher interface {
	Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

type SNSQueue struct {
	client   SNSPublisher
	topicArn string
}

func NewSNSQueue(client SNSPublisher, topicArn string) *SNSQueue {
	return &SNSQueue{client: client, topicArn: topicArn}
}

func (q *SNSQueue) Enqueue(ctx context.Context, job membership.Job) error {
	body, err := encode(job)
	if err != nil {
		return err
	}
	_, err = q.client.Publish(ctx, &sns.PublishInput{
		TopicArn: aws.String(q.topicArn),
		Message:  aws.String(string(body)),
		Subject:  aws.String(job.Name),
	})
	return err
}

type LogQueue struct{}

func (LogQueue) Enqueue(ctx context.Context, job membership.Job) error {
	body, err := encode(job)
	if err != nil {
		return err
	}
	log.Printf("[jobs] %s\n", string(body))
	return nil
}

// New picks the enqueuer for cfg.QueueDriver. Unknown drivers fall back to logging.
func New(ctx context.Context, cfg config.Config) (membership.JobEnqueuer, error) {
	switch cfg.QueueDriver {
	case DRIVER_REDIS:
		rdb := lib.GetRedisClient(cfg.RedisHost)
		if rdb == nil {
			return nil, fmt.Errorf("redis is not configured")
		}
		return NewRedisQueue(rdb, cfg.NotificationQueue), nil
	case DRIVER_KAFKA:
		producer, err := lib.NewKafkaProducer(cfg.KafkaBroker, "taskhub-api")
		if err != nil {
			return nil, err
		}
		return NewKafkaQueue(producer, cfg.NotificationQueue), nil
	case DRIVER_SQS:
		client, err := lib.AWSGetSQSClient(ctx)
		if err != nil {
			return nil, err
		}
		qurl, err := lib.SQSGetQueueURL(ctx, client, cfg.NotificationQueue)
		if err != nil {
			return nil, err
		}
		return NewSQSQueue(client, aws.ToString(qurl)), nil
	case DRIVER_SNS:
		client, err := lib.AWSGetSNSClient(ctx)
		if err != nil {
			return nil, err
		}
		return NewSNSQueue(client, lib.GetTopicArn(cfg.NotificationQueue)), nil
	case DRIVER_LOG:
		return LogQueue{}, nil
	}
	log.Printf("Unknown queue driver %q, logging jobs instead\n", cfg.QueueDriver)
	return LogQueue{}, nil
}
