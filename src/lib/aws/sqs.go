package aws

import (
	"context"
	"log"
	"strings"

	"taskhub/src/lib"
	"taskhub/src/types"

	"github.com/aws/aws-sdk-go-v2/service/sqs"
	sqstypes "github.com/aws/aws-sdk-go-v2/service/sqs/types"
)

type SQSConsumer struct {
	Name    string
	client  lib.SQSAPI
	handler types.Handler
}

func NewSQSConsumer(client lib.SQSAPI, queue string, handler types.Handler) *SQSConsumer {
	return &SQSConsumer{
		Name:    queue,
		client:  client,
		handler: handler,
	}
}

// Listen long-polls the queue until ctx is done. Messages are deleted after the handler returns.
func (s *SQSConsumer) Listen(ctx context.Context) error {
	qurl, err := lib.SQSGetQueueURL(ctx, s.client, s.Name)
	if err != nil {
		return err
	}
	log.Printf("%s: Listening for messages...", s.Name)
	go func() {
		for {
			if ctx.Err() != nil {
				return
			}
			n, err := s.poll(ctx, qurl)
			if err != nil {
				log.Printf("[SQS] Error receiving messages: %s\n", err.Error())
				return
			}
			if n > 0 {
				log.Printf("[SQS] %s: handled %d messages\n", s.Name, n)
			}
		}
	}()
	return nil
}

func (s *SQSConsumer) poll(ctx context.Context, qurl *string) (int, error) {
	output, err := s.client.ReceiveMessage(ctx, &sqs.ReceiveMessageInput{
		QueueUrl:            qurl,
		WaitTimeSeconds:     20,
		MaxNumberOfMessages: 10,
	})
	if err != nil {
		return 0, err
	}
	for i := range output.Messages {
		m := output.Messages[i]
		s.handle(ctx, qurl, &m)
	}
	return len(output.Messages), nil
}

func (s *SQSConsumer) handle(ctx context.Context, qurl *string, m *sqstypes.Message) {
	if m.Body == nil {
		return
	}
	s.handler(strings.Clone(*m.Body))
	lib.SQSDeleteMessage(ctx, s.client, qurl, m)
}
