// Package notification is the in-app notification collaborator the scheduler
// writes to. Sinks deliver a Notification at most once per IdempotencyKey.
package notification

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

const KindPaymentReminder = "payment_reminder"

type Notification struct {
	ID             uuid.UUID      `json:"id"`
	TenantID       uuid.UUID      `json:"tenantId"`
	Kind           string         `json:"kind"`
	Title          string         `json:"title"`
	Message        string         `json:"message"`
	Metadata       map[string]any `json:"metadata,omitempty"`
	IdempotencyKey string         `json:"idempotencyKey,omitempty"`
	CreatedAt      time.Time      `json:"createdAt"`
}

type Sink interface {
	Send(ctx context.Context, n Notification) error
}

// Fanout sends to every sink in order and joins their errors. A sink that
// failed is retried by the caller together with the ones that succeeded, so
// each sink must tolerate a repeated IdempotencyKey.
type Fanout []Sink

func (f Fanout) Send(ctx context.Context, n Notification) error {
	var errs []error

	for _, s := range f {
		if err := s.Send(ctx, n); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}
