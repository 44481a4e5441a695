package lib

import (
	"context"
	"fmt"
	"log"
	"os"

	"taskhub/src/types"

	"github.com/confluentinc/confluent-kafka-go/kafka"
)

func GetKafkaProducerConfig(broker, clientId string) kafka.ConfigMap {
	return kafka.ConfigMap{
		"bootstrap.servers": broker,
		"client.id":         clientId,
		"acks":              "all",
	}
}

func GetKafkaConsumerConfig(broker, groupId string) kafka.ConfigMap {
	return kafka.ConfigMap{
		"bootstrap.servers": broker,
		"group.id":          groupId,
		"auto.offset.reset": "smallest",
		"retry.backoff.ms":  100,
	}
}

func NewKafkaProducer(broker, clientId string) (*kafka.Producer, error) {
	cfg := GetKafkaProducerConfig(broker, clientId)
	p, err := kafka.NewProducer(&cfg)
	if err != nil {
		log.Printf("Error on producer: %s\n", err.Error())
		return nil, err
	}
	go func() {
		for e := range p.Events() {
			if m, ok := e.(*kafka.Message); ok && m.TopicPartition.Error != nil {
				log.Printf("[kafka] delivery failed: %s\n", m.TopicPartition.Error.Error())
			}
		}
	}()
	return p, nil
}

// KafkaConsumer polls topics until ctx is done and hands each message value to handler.
func KafkaConsumer(ctx context.Context, broker, groupId string, topics []string, handler types.Handler) error {
	log.Println("Initializing kafka Consumer...")
	cfg := GetKafkaConsumerConfig(broker, groupId)
	c, err := kafka.NewConsumer(&cfg)
	if err != nil {
		log.Printf("Error on consumer: %s\n", err.Error())
		return err
	}
	if err := c.SubscribeTopics(topics, nil); err != nil {
		c.Close()
		return err
	}
	go func() {
		defer c.Close()
		log.Printf("[kafka] %s: waiting for messages...\n", groupId)
		for {
			select {
			case <-ctx.Done():
				return
			default:
			}
			switch e := c.Poll(100).(type) {
			case *kafka.Message:
				handler(string(e.Value))
			case kafka.Error:
				fmt.Fprintf(os.Stderr, "%% Error: %v\n", e)
				if e.IsFatal() {
					return
				}
			}
		}
	}()
	return nil
}

func KafkaCreateTopics(ctx context.Context, broker string, topics ...string) ([]kafka.TopicResult, error) {
	a, err := kafka.NewAdminClient(&kafka.ConfigMap{
		"bootstrap.servers": broker,
	})
	if err != nil {
		log.Printf("Error on AdminClient: %s\n", err.Error())
		return nil, err
	}
	defer a.Close()
	topicsDef := []kafka.TopicSpecification{}
	for _, topic := range topics {
		topicsDef = append(topicsDef, kafka.TopicSpecification{
			Topic:             topic,
			NumPartitions:     10,
			ReplicationFactor: 1,
		})
	}
	result, err := a.CreateTopics(ctx, topicsDef)
	if err != nil {
		log.Printf("Error creating topics: %s\n", err.Error())
		return nil, err
	}
	return result, nil
}
