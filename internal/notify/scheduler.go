// Package notify emits one notification per reminder once its fire date is reached.
package notify

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/payreminder/internal/notification"
	"github.com/MrJamesThe3rd/payreminder/internal/reminder"
)

const DefaultClaimLease = 2 * time.Minute

//go:generate mockgen -source=scheduler.go -destination=ledger_mock.go -package=notify
type Ledger interface {
	// PendingNotifications returns unsent, unpaid reminders across all tenants.
	PendingNotifications(ctx context.Context) ([]*reminder.Reminder, error)
	Claim(ctx context.Context, id uuid.UUID, now, until time.Time) (bool, error)
	MarkSent(ctx context.Context, tenantID, id uuid.UUID, at time.Time) error
	Release(ctx context.Context, id uuid.UUID) error
}

// ItemError is the failure of a single reminder within a pass.
type ItemError struct {
	ReminderID uuid.UUID
	TenantID   uuid.UUID
	Err        error
}

func (e ItemError) Error() string {
	return fmt.Sprintf("reminder %s: %v", e.ReminderID, e.Err)
}

func (e ItemError) Unwrap() error { return e.Err }

type Result struct {
	Sent   int
	Errors []ItemError
}

type Scheduler struct {
	ledger   Ledger
	sink     notification.Sink
	renderer *Renderer
	lease    time.Duration
	now      func() time.Time
}

type Option func(*Scheduler)

func WithClock(now func() time.Time) Option {
	return func(s *Scheduler) { s.now = now }
}

func WithClaimLease(d time.Duration) Option {
	return func(s *Scheduler) {
		if d > 0 {
			s.lease = d
		}
	}
}

func WithRenderer(r *Renderer) Option {
	return func(s *Scheduler) { s.renderer = r }
}

func NewScheduler(ledger Ledger, sink notification.Sink, opts ...Option) *Scheduler {
	s := &Scheduler{
		ledger: ledger,
		sink:   sink,
		lease:  DefaultClaimLease,
		now:    time.Now,
	}

	for _, opt := range opts {
		opt(s)
	}

	if s.renderer == nil {
		s.renderer, _ = NewRenderer("en")
	}

	return s
}

// IdempotencyKey identifies the single notification a reminder may produce.
func IdempotencyKey(id uuid.UUID) string {
	return "reminder:" + id.String()
}

func (s *Scheduler) build(r *reminder.Reminder) notification.Notification {
	return notification.Notification{
		TenantID: r.TenantID,
		Kind:     notification.KindPaymentReminder,
		Title:    s.renderer.Title(),
		Message:  s.renderer.Message(r),
		Metadata: map[string]any{
			"reminderId": r.ID.String(),
			"type":       string(r.Type),
			"amount":     r.Amount,
			"currency":   r.Currency,
			"dueDate":    r.DueDate.Format(time.DateOnly),
		},
		IdempotencyKey: IdempotencyKey(r.ID),
	}
}

// Process runs one pass over all tenants. Only a failure to read the
// candidate set is returned as an error; per-reminder failures are collected
// in the result and the pass continues.
func (s *Scheduler) Process(ctx context.Context) (Result, error) {
	var res Result

	pending, err := s.ledger.PendingNotifications(ctx)
	if err != nil {
		return res, fmt.Errorf("listing pending reminders: %w", err)
	}

	now := s.now().UTC()

	for _, r := range pending {
		if r.FireDate().After(now) {
			continue
		}

		sent, err := s.emit(ctx, r, now)
		if err != nil {
			slog.Error("notification failed", "reminder_id", r.ID, "tenant_id", r.TenantID, "error", err)
			res.Errors = append(res.Errors, ItemError{ReminderID: r.ID, TenantID: r.TenantID, Err: err})

			continue
		}

		if sent {
			res.Sent++
		}
	}

	return res, nil
}

// emit sends and marks one reminder. It reports false without error when
// another worker holds the claim.
func (s *Scheduler) emit(ctx context.Context, r *reminder.Reminder, now time.Time) (bool, error) {
	claimed, err := s.ledger.Claim(ctx, r.ID, now, now.Add(s.lease))
	if err != nil {
		return false, fmt.Errorf("claiming: %w", err)
	}

	if !claimed {
		return false, nil
	}

	if err := s.sink.Send(ctx, s.build(r)); err != nil {
		if relErr := s.ledger.Release(ctx, r.ID); relErr != nil {
			slog.Warn("release claim failed", "reminder_id", r.ID, "error", relErr)
		}

		return false, fmt.Errorf("sending notification: %w", err)
	}

	// The notification is out; a failure here leaves the reminder pending and
	// the sink's idempotency key absorbs the retry.
	if err := s.ledger.MarkSent(ctx, r.TenantID, r.ID, now); err != nil {
		return false, fmt.Errorf("marking sent: %w", err)
	}

	return true, nil
}
