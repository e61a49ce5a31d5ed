// Package dynamo stores notifications in a DynamoDB table keyed by notification_id.
package dynamo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/payreminder/internal/notification"
)

// PutItemAPI is the subset of the DynamoDB client the sink needs.
type PutItemAPI interface {
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
}

type item struct {
	NotificationID string         `dynamodbav:"notification_id"`
	TenantID       string         `dynamodbav:"tenant_id"`
	Kind           string         `dynamodbav:"kind"`
	Title          string         `dynamodbav:"title"`
	Message        string         `dynamodbav:"message"`
	Metadata       map[string]any `dynamodbav:"metadata,omitempty"`
	IdempotencyKey string         `dynamodbav:"idempotency_key,omitempty"`
	Readed         int            `dynamodbav:"readed"`
	CreatedAt      string         `dynamodbav:"created_at"`
}

// Sink writes notifications with PutItem. When an IdempotencyKey is set the
// item key is derived from it and a repeated send is a no-op.
type Sink struct {
	client    PutItemAPI
	tableName string
	now       func() time.Time
}

func NewSink(client PutItemAPI, tableName string) *Sink {
	return &Sink{client: client, tableName: tableName, now: time.Now}
}

func itemKey(n notification.Notification) string {
	if n.IdempotencyKey != "" {
		return n.TenantID.String() + "#" + n.IdempotencyKey
	}

	if n.ID != uuid.Nil {
		return n.ID.String()
	}

	return uuid.NewString()
}

func (s *Sink) Send(ctx context.Context, n notification.Notification) error {
	createdAt := n.CreatedAt
	if createdAt.IsZero() {
		createdAt = s.now()
	}

	av, err := attributevalue.MarshalMap(item{
		NotificationID: itemKey(n),
		TenantID:       n.TenantID.String(),
		Kind:           n.Kind,
		Title:          n.Title,
		Message:        n.Message,
		Metadata:       n.Metadata,
		IdempotencyKey: n.IdempotencyKey,
		CreatedAt:      createdAt.UTC().Format(time.RFC3339),
	})
	if err != nil {
		return fmt.Errorf("marshal notification: %w", err)
	}

	input := &dynamodb.PutItemInput{
		TableName: aws.String(s.tableName),
		Item:      av,
	}

	if n.IdempotencyKey != "" {
		input.ConditionExpression = aws.String("attribute_not_exists(notification_id)")
	}

	if _, err := s.client.PutItem(ctx, input); err != nil {
		var conflict *types.ConditionalCheckFailedException
		if errors.As(err, &conflict) {
			return nil
		}

		return fmt.Errorf("put notification: %w", err)
	}

	return nil
}
