// Package reconcile keeps the reminder ledger consistent with the upstream
// invoices and negotiable instruments of a tenant.
package reconcile

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/payreminder/internal/reminder"
	"github.com/MrJamesThe3rd/payreminder/internal/source"
)

// ErrSyncInProgress is returned when another run holds the tenant's sync lock.
var ErrSyncInProgress = errors.New("sync already in progress for tenant")

//go:generate mockgen -source=reconcile.go -destination=ledger_mock.go -package=reconcile
type Ledger interface {
	LockTenant(ctx context.Context, tenantID uuid.UUID) (release func(), acquired bool, err error)
	FindBySource(ctx context.Context, tenantID uuid.UUID, ref reminder.SourceRef) (*reminder.Reminder, error)
	CreateReminder(ctx context.Context, r *reminder.Reminder) error
	UpdateSourceFields(ctx context.Context, tenantID, id uuid.UUID, amount int64, dueDate time.Time) error
}

type Options struct {
	// SyncInstruments applies drift correction to instrument-linked reminders.
	// When false an existing instrument reminder is never updated.
	SyncInstruments bool
}

type Result struct {
	Created int
	Updated int
}

// TenantResult is one tenant's outcome of RunAll.
type TenantResult struct {
	TenantID uuid.UUID
	Result   Result
	Err      error
}

type Reconciler struct {
	sources source.Reader
	ledger  Ledger
	opts    Options
}

func New(sources source.Reader, ledger Ledger, opts Options) *Reconciler {
	return &Reconciler{sources: sources, ledger: ledger, opts: opts}
}

// desired is the reminder a source record should have.
type desired struct {
	ref             reminder.SourceRef
	clientCompanyID *uuid.UUID
	typ             reminder.Type
	amount          int64
	currency        string
	dueDate         time.Time
	description     string
	syncExisting    bool
}

func (d desired) toReminder(tenantID uuid.UUID) *reminder.Reminder {
	r := &reminder.Reminder{
		TenantID:           tenantID,
		ClientCompanyID:    d.clientCompanyID,
		Type:               d.typ,
		DueDate:            d.dueDate,
		Amount:             d.amount,
		Currency:           d.currency,
		Description:        d.description,
		ReminderDaysBefore: reminder.DefaultDaysBefore,
	}

	id := d.ref.ID

	switch d.ref.Kind {
	case reminder.SourceInvoice:
		r.InvoiceID = &id
	case reminder.SourceCheckNote:
		r.CheckNoteID = &id
	}

	return r
}

func currencyOrDefault(c string) string {
	if c == "" {
		return reminder.DefaultCurrency
	}

	return c
}

func fromInvoice(inv *source.Invoice) desired {
	typ := reminder.TypeCollectionDue
	if inv.Direction == source.InvoicePayable {
		typ = reminder.TypePaymentDue
	}

	short := inv.ID.String()[:8]

	return desired{
		ref:             reminder.SourceRef{Kind: reminder.SourceInvoice, ID: inv.ID},
		clientCompanyID: inv.ClientCompanyID,
		typ:             typ,
		amount:          inv.Amount,
		currency:        currencyOrDefault(inv.Currency),
		dueDate:         reminder.DateOf(inv.DueDate),
		description:     fmt.Sprintf("%s - Invoice #%s", inv.CounterpartyName, short),
		syncExisting:    true,
	}
}

func instrumentType(ins *source.Instrument) reminder.Type {
	received := ins.Direction == source.InstrumentReceived

	switch {
	case ins.Kind == source.KindCheck && received:
		return reminder.TypeCheckCollection
	case ins.Kind == source.KindCheck:
		return reminder.TypeCheckPayment
	case received:
		return reminder.TypeNoteCollection
	default:
		return reminder.TypeNotePayment
	}
}

func (rc *Reconciler) fromInstrument(ins *source.Instrument) desired {
	label := "Check"
	if ins.Kind == source.KindPromissoryNote {
		label = "Promissory note"
	}

	return desired{
		ref:             reminder.SourceRef{Kind: reminder.SourceCheckNote, ID: ins.ID},
		clientCompanyID: ins.ClientCompanyID,
		typ:             instrumentType(ins),
		amount:          ins.Amount,
		currency:        currencyOrDefault(ins.Currency),
		dueDate:         reminder.DateOf(ins.DueDate),
		description:     fmt.Sprintf("%s #%s", label, ins.DocumentNumber),
		syncExisting:    rc.opts.SyncInstruments,
	}
}

// Run reconciles one tenant. Writes already made are kept when a later step
// fails; the next run picks up where this one stopped.
func (rc *Reconciler) Run(ctx context.Context, tenantID uuid.UUID) (Result, error) {
	var res Result

	release, acquired, err := rc.ledger.LockTenant(ctx, tenantID)
	if err != nil {
		return res, fmt.Errorf("locking tenant: %w", err)
	}

	if !acquired {
		return res, ErrSyncInProgress
	}
	defer release()

	invoices, err := rc.sources.OpenInvoices(ctx, tenantID)
	if err != nil {
		return res, fmt.Errorf("reading open invoices: %w", err)
	}

	for _, inv := range invoices {
		if inv.DueDate.IsZero() {
			continue
		}

		if err := rc.apply(ctx, tenantID, fromInvoice(inv), &res); err != nil {
			return res, fmt.Errorf("reconciling invoice %s: %w", inv.ID, err)
		}
	}

	instruments, err := rc.sources.OutstandingInstruments(ctx, tenantID)
	if err != nil {
		return res, fmt.Errorf("reading outstanding instruments: %w", err)
	}

	for _, ins := range instruments {
		if err := rc.apply(ctx, tenantID, rc.fromInstrument(ins), &res); err != nil {
			return res, fmt.Errorf("reconciling instrument %s: %w", ins.ID, err)
		}
	}

	return res, nil
}

func (rc *Reconciler) apply(ctx context.Context, tenantID uuid.UUID, d desired, res *Result) error {
	existing, err := rc.ledger.FindBySource(ctx, tenantID, d.ref)

	switch {
	case errors.Is(err, reminder.ErrNotFound):
		err = rc.ledger.CreateReminder(ctx, d.toReminder(tenantID))
		if err == nil {
			res.Created++
			return nil
		}

		if !errors.Is(err, reminder.ErrDuplicateSource) {
			return fmt.Errorf("creating reminder: %w", err)
		}

		// Another writer created it first; compare against the row that won.
		existing, err = rc.ledger.FindBySource(ctx, tenantID, d.ref)
		if err != nil {
			return fmt.Errorf("finding reminder after conflict: %w", err)
		}
	case err != nil:
		return fmt.Errorf("finding reminder: %w", err)
	}

	if !d.syncExisting {
		return nil
	}

	if existing.Amount == d.amount && existing.DueDate.Equal(d.dueDate) {
		return nil
	}

	if err := rc.ledger.UpdateSourceFields(ctx, tenantID, existing.ID, d.amount, d.dueDate); err != nil {
		return fmt.Errorf("updating reminder: %w", err)
	}

	res.Updated++

	return nil
}

// RunAll reconciles every tenant that has open source records. A failing
// tenant is logged and reported without stopping the others.
func (rc *Reconciler) RunAll(ctx context.Context) ([]TenantResult, error) {
	tenants, err := rc.sources.Tenants(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing tenants: %w", err)
	}

	results := make([]TenantResult, 0, len(tenants))

	for _, tenantID := range tenants {
		if err := ctx.Err(); err != nil {
			return results, err
		}

		res, err := rc.Run(ctx, tenantID)
		if err != nil {
			slog.Error("reconcile failed", "tenant_id", tenantID, "error", err)
		} else {
			slog.Info("reconciled tenant", "tenant_id", tenantID, "created", res.Created, "updated", res.Updated)
		}

		results = append(results, TenantResult{TenantID: tenantID, Result: res, Err: err})
	}

	return results, nil
}
