package aws

import (
	"context"
	"sync"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	sqstypes "github.com/aws/aws-sdk-go-v2/service/sqs/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSQS struct {
	mu       sync.Mutex
	messages []sqstypes.Message
	deleted  []string
}

func (f *fakeSQS) GetQueueUrl(ctx context.Context, params *sqs.GetQueueUrlInput, optFns ...func(*sqs.Options)) (*sqs.GetQueueUrlOutput, error) {
	return &sqs.GetQueueUrlOutput{QueueUrl: aws.String("https://sqs.local/" + aws.ToString(params.QueueName))}, nil
}

func (f *fakeSQS) SendMessage(ctx context.Context, params *sqs.SendMessageInput, optFns ...func(*sqs.Options)) (*sqs.SendMessageOutput, error) {
	return &sqs.SendMessageOutput{}, nil
}

func (f *fakeSQS) ReceiveMessage(ctx context.Context, params *sqs.ReceiveMessageInput, optFns ...func(*sqs.Options)) (*sqs.ReceiveMessageOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := f.messages
	f.messages = nil
	return &sqs.ReceiveMessageOutput{Messages: out}, nil
}

func (f *fakeSQS) DeleteMessage(ctx context.Context, params *sqs.DeleteMessageInput, optFns ...func(*sqs.Options)) (*sqs.DeleteMessageOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, aws.ToString(params.ReceiptHandle))
	return &sqs.DeleteMessageOutput{}, nil
}

func TestSQSConsumerPoll(t *testing.T) {
	client := &fakeSQS{messages: []sqstypes.Message{
		{Body: aws.String(`{"name":"member.added"}`), ReceiptHandle: aws.String("r1")},
		{Body: aws.String(`{"name":"member.removed"}`), ReceiptHandle: aws.String("r2")},
	}}
	var got []string
	consumer := NewSQSConsumer(client, "MembershipNotifications", func(payload string) {
		got = append(got, payload)
	})

	n, err := consumer.poll(context.Background(), aws.String("https://sqs.local/MembershipNotifications"))
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, []string{`{"name":"member.added"}`, `{"name":"member.removed"}`}, got)
	assert.Equal(t, []string{"r1", "r2"}, client.deleted)
}

type fakeSNS struct {
	input *sns.SubscribeInput
}

func (f *fakeSNS) Subscribe(ctx context.Context, params *sns.SubscribeInput, optFns ...func(*sns.Options)) (*sns.SubscribeOutput, error) {
	f.input = params
	return &sns.SubscribeOutput{SubscriptionArn: aws.String("arn:sub")}, nil
}

func TestSNSSubscribe(t *testing.T) {
	t.Setenv("AWS_REGION", "ap-southeast-1")
	t.Setenv("AWS_ACCOUNT_ID", "123456789012")
	client := &fakeSNS{}

	arn, err := NewSNSSubscriber(client, "MembershipEvents").Subscribe(context.Background(), "sqs", "arn:aws:sqs:ap-southeast-1:123456789012:MembershipNotifications")
	require.NoError(t, err)
	assert.Equal(t, "arn:sub", *arn)
	assert.Equal(t, "arn:aws:sns:ap-southeast-1:123456789012:MembershipEvents", *client.input.TopicArn)
	assert.Equal(t, "true", client.input.Attributes["RawMessageDelivery"])
}
