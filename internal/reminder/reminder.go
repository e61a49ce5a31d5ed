package reminder

import (
	"slices"
	"time"

	"github.com/google/uuid"
)

// Type is the categorical tag of a reminder.
type Type string

const (
	TypeCollectionDue   Type = "collection_due"
	TypePaymentDue      Type = "payment_due"
	TypeCheckCollection Type = "check_collection"
	TypeCheckPayment    Type = "check_payment"
	TypeNoteCollection  Type = "note_collection"
	TypeNotePayment     Type = "note_payment"
	TypeTaxDue          Type = "tax_due"
	TypeOther           Type = "other"
)

// Types lists the closed set of reminder types.
var Types = []Type{
	TypeCollectionDue,
	TypePaymentDue,
	TypeCheckCollection,
	TypeCheckPayment,
	TypeNoteCollection,
	TypeNotePayment,
	TypeTaxDue,
	TypeOther,
}

func (t Type) Valid() bool {
	return slices.Contains(Types, t)
}

const (
	DefaultDaysBefore = 3
	DefaultCurrency   = "TRY"
)

// SourceKind identifies which upstream collection an automated reminder mirrors.
type SourceKind string

const (
	SourceInvoice   SourceKind = "invoice"
	SourceCheckNote SourceKind = "check_note"
)

// SourceRef points at the source record of an automated reminder.
type SourceRef struct {
	Kind SourceKind
	ID   uuid.UUID
}

// Reminder is one row of the reminder ledger.
type Reminder struct {
	ID              uuid.UUID
	TenantID        uuid.UUID
	ClientCompanyID *uuid.UUID
	InvoiceID       *uuid.UUID
	CheckNoteID     *uuid.UUID

	Type               Type
	DueDate            time.Time // Date only, UTC midnight
	Amount             int64     // Amount in minor units
	Currency           string
	Description        string
	ReminderDaysBefore int

	IsPaid         bool
	PaidAt         *time.Time
	ReminderSent   bool
	ReminderSentAt *time.Time
	ClaimedUntil   *time.Time

	CreatedAt time.Time
	UpdatedAt *time.Time
}

// IsManual reports whether the reminder has no source link.
func (r *Reminder) IsManual() bool {
	return r.InvoiceID == nil && r.CheckNoteID == nil
}

// Source returns the source link of an automated reminder.
func (r *Reminder) Source() (SourceRef, bool) {
	switch {
	case r.InvoiceID != nil:
		return SourceRef{Kind: SourceInvoice, ID: *r.InvoiceID}, true
	case r.CheckNoteID != nil:
		return SourceRef{Kind: SourceCheckNote, ID: *r.CheckNoteID}, true
	}

	return SourceRef{}, false
}

// FireDate is the earliest moment the reminder is eligible for notification.
func (r *Reminder) FireDate() time.Time {
	return r.DueDate.AddDate(0, 0, -r.ReminderDaysBefore)
}

// DateOf truncates t to its calendar date, expressed as UTC midnight.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
