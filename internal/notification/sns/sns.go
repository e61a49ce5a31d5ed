// Package sns publishes notifications to an SNS topic for out-of-app delivery.
package sns

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/aws/aws-sdk-go-v2/service/sns/types"

	"github.com/MrJamesThe3rd/payreminder/internal/notification"
)

// PublishAPI is the subset of the SNS client the publisher needs.
type PublishAPI interface {
	Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

func NewClient(awsCfg aws.Config, endpoint *string) *sns.Client {
	var opts []func(*sns.Options)
	if endpoint != nil {
		opts = append(opts, func(o *sns.Options) {
			o.BaseEndpoint = endpoint
		})
	}

	return sns.NewFromConfig(awsCfg, opts...)
}

// Publisher sends the notification as a JSON message. On FIFO topics the
// idempotency key becomes the deduplication id.
type Publisher struct {
	client   PublishAPI
	topicARN string
}

func NewPublisher(client PublishAPI, topicARN string) *Publisher {
	return &Publisher{client: client, topicARN: topicARN}
}

func (p *Publisher) Send(ctx context.Context, n notification.Notification) error {
	body, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("encoding notification: %w", err)
	}

	input := &sns.PublishInput{
		TopicArn: aws.String(p.topicARN),
		Subject:  aws.String(n.Title),
		Message:  aws.String(string(body)),
		MessageAttributes: map[string]types.MessageAttributeValue{
			"tenant_id": {DataType: aws.String("String"), StringValue: aws.String(n.TenantID.String())},
			"kind":      {DataType: aws.String("String"), StringValue: aws.String(n.Kind)},
		},
	}

	if strings.HasSuffix(p.topicARN, ".fifo") && n.IdempotencyKey != "" {
		sum := sha256.Sum256([]byte(n.TenantID.String() + "#" + n.IdempotencyKey))
		input.MessageGroupId = aws.String(n.TenantID.String())
		input.MessageDeduplicationId = aws.String(hex.EncodeToString(sum[:]))
	}

	if _, err := p.client.Publish(ctx, input); err != nil {
		return fmt.Errorf("publishing notification: %w", err)
	}

	return nil
}
