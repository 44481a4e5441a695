package aws

import (
	"context"
	"log"

	"taskhub/src/lib"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"
)

type SNSAPI interface {
	Subscribe(ctx context.Context, params *sns.SubscribeInput, optFns ...func(*sns.Options)) (*sns.SubscribeOutput, error)
}

type SNSSubscriber struct {
	Name  string
	inner SNSAPI
}

func NewSNSSubscriber(client SNSAPI, topic string) *SNSSubscriber {
	return &SNSSubscriber{
		Name:  topic,
		inner: client,
	}
}

// Subscribe attaches endpoint to the topic with raw delivery, so queue consumers see the
// published body unchanged.
func (s *SNSSubscriber) Subscribe(ctx context.Context, proto string, endpoint string) (*string, error) {
	output, err := s.inner.Subscribe(ctx, &sns.SubscribeInput{
		Protocol: aws.String(proto),
		TopicArn: aws.String(lib.GetTopicArn(s.Name)),
		Endpoint: aws.String(endpoint),
		Attributes: map[string]string{
			"RawMessageDelivery": "true",
		},
	})
	if err != nil {
		log.Printf("Error subscribing to topic [%s]: %s\n", s.Name, err.Error())
		return nil, err
	}
	return output.SubscriptionArn, nil
}
