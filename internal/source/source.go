// Package source describes the upstream records an automated reminder mirrors:
// invoices and negotiable instruments (checks and promissory notes). Both
// collections are read-only from the reminder engine's point of view.
package source

import (
	"context"
	"slices"
	"time"

	"github.com/google/uuid"
)

// InvoiceDirection tells whether the tenant collects or pays an invoice.
type InvoiceDirection string

const (
	InvoiceReceivable InvoiceDirection = "receivable"
	InvoicePayable    InvoiceDirection = "payable"
)

// InvoiceStatus is the lifecycle state of an invoice upstream.
type InvoiceStatus string

const (
	InvoiceDraft     InvoiceStatus = "draft"
	InvoiceIssued    InvoiceStatus = "issued"
	InvoicePaid      InvoiceStatus = "paid"
	InvoiceCancelled InvoiceStatus = "cancelled"
)

// OpenInvoiceStatuses are the statuses that keep an invoice tracked.
var OpenInvoiceStatuses = []InvoiceStatus{InvoiceDraft, InvoiceIssued}

func (s InvoiceStatus) Open() bool {
	return slices.Contains(OpenInvoiceStatuses, s)
}

type Invoice struct {
	ID               uuid.UUID
	TenantID         uuid.UUID
	ClientCompanyID  *uuid.UUID
	Direction        InvoiceDirection
	Status           InvoiceStatus
	CounterpartyName string
	Amount           int64 // Amount in minor units
	Currency         string
	DueDate          time.Time
}

// InstrumentKind distinguishes checks from promissory notes.
type InstrumentKind string

const (
	KindCheck          InstrumentKind = "check"
	KindPromissoryNote InstrumentKind = "promissory_note"
)

// InstrumentDirection tells whether the tenant received or issued an instrument.
type InstrumentDirection string

const (
	InstrumentReceived InstrumentDirection = "received"
	InstrumentIssued   InstrumentDirection = "issued"
)

// InstrumentStatus is the portfolio lifecycle state of an instrument.
type InstrumentStatus string

const (
	InstrumentInPortfolio  InstrumentStatus = "in_portfolio"
	InstrumentInCollection InstrumentStatus = "in_collection"
	InstrumentCleared      InstrumentStatus = "cleared"
	InstrumentBounced      InstrumentStatus = "bounced"
	InstrumentEndorsed     InstrumentStatus = "endorsed"
)

// OutstandingInstrumentStatuses are the statuses that keep an instrument tracked.
var OutstandingInstrumentStatuses = []InstrumentStatus{InstrumentInPortfolio, InstrumentInCollection}

func (s InstrumentStatus) Outstanding() bool {
	return slices.Contains(OutstandingInstrumentStatuses, s)
}

// Instrument is a check or promissory note held in or issued from a portfolio.
type Instrument struct {
	ID              uuid.UUID
	TenantID        uuid.UUID
	ClientCompanyID *uuid.UUID
	Kind            InstrumentKind
	Direction       InstrumentDirection
	Status          InstrumentStatus
	DocumentNumber  string
	Amount          int64
	Currency        string
	DueDate         time.Time
}

//go:generate mockgen -source=source.go -destination=reader_mock.go -package=source
type Reader interface {
	// OpenInvoices returns the tenant's open invoices that carry a due date.
	OpenInvoices(ctx context.Context, tenantID uuid.UUID) ([]*Invoice, error)
	// OutstandingInstruments returns the tenant's instruments still in the portfolio or in collection.
	OutstandingInstruments(ctx context.Context, tenantID uuid.UUID) ([]*Instrument, error)
	// Tenants returns every tenant that owns at least one open source record.
	Tenants(ctx context.Context) ([]uuid.UUID, error)
}
