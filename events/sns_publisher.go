package events

import (
	"context"
	"fmt"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sns"
)

// Publisher is a minimal interface for publishing order events.
type Publisher interface {
	Publish(ctx context.Context, topicArn string, message []byte) error
}

type SNSPublisher struct {
	client *sns.Client
}

func NewSNSPublisher(ctx context.Context) (*SNSPublisher, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load aws config: %w", err)
	}
	return &SNSPublisher{client: sns.NewFromConfig(cfg)}, nil
}

func (p *SNSPublisher) Publish(ctx context.Context, topicArn string, message []byte) error {
	if topicArn == "" {
		return fmt.Errorf("empty topicArn")
	}
	msg := string(message)
	_, err := p.client.Publish(ctx, &sns.PublishInput{
		TopicArn: &topicArn,
		Message:  &msg,
	})
	if err != nil {
		return fmt.Errorf("sns publish failed for topic %s: %w", topicArn, err)
	}
	return nil
}
