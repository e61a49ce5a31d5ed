package reconcile_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MrJamesThe3rd/payreminder/internal/reconcile"
	"github.com/MrJamesThe3rd/payreminder/internal/reminder"
	"github.com/MrJamesThe3rd/payreminder/internal/reminder/memstore"
	"github.com/MrJamesThe3rd/payreminder/internal/source"
)

var (
	tenantA = uuid.MustParse("0d6c8f7e-6a55-4c1e-8d0a-3f2b9e4c1a01")
	tenantB = uuid.MustParse("0d6c8f7e-6a55-4c1e-8d0a-3f2b9e4c1a02")
)

func date(y, m, d int) time.Time {
	return time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC)
}

// fakeSources filters by status the way the Postgres reader does.
type fakeSources struct {
	invoices    []*source.Invoice
	instruments []*source.Instrument
}

func (f *fakeSources) OpenInvoices(_ context.Context, tenantID uuid.UUID) ([]*source.Invoice, error) {
	var out []*source.Invoice

	for _, inv := range f.invoices {
		if inv.TenantID == tenantID && inv.Status.Open() && !inv.DueDate.IsZero() {
			c := *inv
			out = append(out, &c)
		}
	}

	return out, nil
}

func (f *fakeSources) OutstandingInstruments(_ context.Context, tenantID uuid.UUID) ([]*source.Instrument, error) {
	var out []*source.Instrument

	for _, ins := range f.instruments {
		if ins.TenantID == tenantID && ins.Status.Outstanding() {
			c := *ins
			out = append(out, &c)
		}
	}

	return out, nil
}

func (f *fakeSources) Tenants(context.Context) ([]uuid.UUID, error) {
	seen := map[uuid.UUID]bool{}

	var out []uuid.UUID

	add := func(id uuid.UUID) {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}

	for _, inv := range f.invoices {
		add(inv.TenantID)
	}

	for _, ins := range f.instruments {
		add(ins.TenantID)
	}

	return out, nil
}

func newInvoice(tenantID uuid.UUID, dir source.InvoiceDirection, amount int64, due time.Time) *source.Invoice {
	return &source.Invoice{
		ID:               uuid.New(),
		TenantID:         tenantID,
		Direction:        dir,
		Status:           source.InvoiceIssued,
		CounterpartyName: "Acme Ltd",
		Amount:           amount,
		Currency:         "TRY",
		DueDate:          due,
	}
}

func newInstrument(tenantID uuid.UUID, kind source.InstrumentKind, dir source.InstrumentDirection, doc string, amount int64, due time.Time) *source.Instrument {
	return &source.Instrument{
		ID:             uuid.New(),
		TenantID:       tenantID,
		Kind:           kind,
		Direction:      dir,
		Status:         source.InstrumentInPortfolio,
		DocumentNumber: doc,
		Amount:         amount,
		Currency:       "TRY",
		DueDate:        due,
	}
}

func fixture() *fakeSources {
	return &fakeSources{
		invoices: []*source.Invoice{
			newInvoice(tenantA, source.InvoiceReceivable, 150000, date(2026, 4, 1)),
			newInvoice(tenantA, source.InvoicePayable, 42000, date(2026, 4, 15)),
		},
		instruments: []*source.Instrument{
			newInstrument(tenantA, source.KindCheck, source.InstrumentReceived, "CHK-001", 99000, date(2026, 5, 1)),
			newInstrument(tenantA, source.KindPromissoryNote, source.InstrumentIssued, "PN-77", 12000, date(2026, 5, 20)),
		},
	}
}

func byRef(t *testing.T, store *memstore.Store, kind reminder.SourceKind, id uuid.UUID) *reminder.Reminder {
	t.Helper()

	r, err := store.FindBySource(context.Background(), tenantA, reminder.SourceRef{Kind: kind, ID: id})
	require.NoError(t, err)

	return r
}

func TestReconciler_Run_CreatesFromSources(t *testing.T) {
	src := fixture()
	store := memstore.New()
	rc := reconcile.New(src, store, reconcile.Options{SyncInstruments: true})

	res, err := rc.Run(context.Background(), tenantA)
	require.NoError(t, err)
	assert.Equal(t, reconcile.Result{Created: 4}, res)

	recv := byRef(t, store, reminder.SourceInvoice, src.invoices[0].ID)
	assert.Equal(t, reminder.TypeCollectionDue, recv.Type)
	assert.Equal(t, int64(150000), recv.Amount)
	assert.Equal(t, date(2026, 4, 1), recv.DueDate)
	assert.Equal(t, reminder.DefaultDaysBefore, recv.ReminderDaysBefore)
	assert.Equal(t, "Acme Ltd - Invoice #"+src.invoices[0].ID.String()[:8], recv.Description)
	assert.False(t, recv.IsManual())

	pay := byRef(t, store, reminder.SourceInvoice, src.invoices[1].ID)
	assert.Equal(t, reminder.TypePaymentDue, pay.Type)

	chk := byRef(t, store, reminder.SourceCheckNote, src.instruments[0].ID)
	assert.Equal(t, reminder.TypeCheckCollection, chk.Type)
	assert.Equal(t, "Check #CHK-001", chk.Description)

	note := byRef(t, store, reminder.SourceCheckNote, src.instruments[1].ID)
	assert.Equal(t, reminder.TypeNotePayment, note.Type)
	assert.Equal(t, "Promissory note #PN-77", note.Description)
}

func TestReconciler_Run_Idempotent(t *testing.T) {
	src := fixture()
	store := memstore.New()
	rc := reconcile.New(src, store, reconcile.Options{SyncInstruments: true})

	_, err := rc.Run(context.Background(), tenantA)
	require.NoError(t, err)

	before := store.Snapshot()
	writes := store.Writes

	res, err := rc.Run(context.Background(), tenantA)
	require.NoError(t, err)

	assert.Equal(t, reconcile.Result{}, res)
	assert.Equal(t, writes, store.Writes, "second run must not write")
	assert.Equal(t, before, store.Snapshot())
}

func TestReconciler_Run_NoDuplication(t *testing.T) {
	src := fixture()
	store := memstore.New()
	rc := reconcile.New(src, store, reconcile.Options{SyncInstruments: true})

	for range 3 {
		_, err := rc.Run(context.Background(), tenantA)
		require.NoError(t, err)
	}

	assert.Len(t, store.Snapshot(), len(src.invoices)+len(src.instruments))
}

func TestReconciler_Run_DriftCorrection(t *testing.T) {
	src := fixture()
	store := memstore.New()
	rc := reconcile.New(src, store, reconcile.Options{SyncInstruments: true})

	_, err := rc.Run(context.Background(), tenantA)
	require.NoError(t, err)

	inv := src.invoices[0]
	before := byRef(t, store, reminder.SourceInvoice, inv.ID)

	inv.Amount = 175000
	inv.DueDate = date(2026, 4, 10)

	res, err := rc.Run(context.Background(), tenantA)
	require.NoError(t, err)
	assert.Equal(t, reconcile.Result{Updated: 1}, res)

	after := byRef(t, store, reminder.SourceInvoice, inv.ID)
	assert.Equal(t, int64(175000), after.Amount)
	assert.Equal(t, date(2026, 4, 10), after.DueDate)
	assert.Equal(t, before.ID, after.ID)
	assert.Equal(t, before.Description, after.Description)
	assert.Equal(t, before.Type, after.Type)
	assert.Equal(t, before.ReminderDaysBefore, after.ReminderDaysBefore)
}

func TestReconciler_Run_InstrumentSync(t *testing.T) {
	tests := []struct {
		name        string
		sync        bool
		wantUpdated int
		wantAmount  int64
	}{
		{name: "Enabled", sync: true, wantUpdated: 1, wantAmount: 11000},
		{name: "Disabled", sync: false, wantUpdated: 0, wantAmount: 99000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := fixture()
			store := memstore.New()
			rc := reconcile.New(src, store, reconcile.Options{SyncInstruments: tt.sync})

			_, err := rc.Run(context.Background(), tenantA)
			require.NoError(t, err)

			src.instruments[0].Amount = 11000

			res, err := rc.Run(context.Background(), tenantA)
			require.NoError(t, err)
			assert.Equal(t, tt.wantUpdated, res.Updated)
			assert.Equal(t, 0, res.Created)

			got := byRef(t, store, reminder.SourceCheckNote, src.instruments[0].ID)
			assert.Equal(t, tt.wantAmount, got.Amount)
		})
	}
}

func TestReconciler_Run_SettledSourceUntouched(t *testing.T) {
	src := fixture()
	store := memstore.New()
	rc := reconcile.New(src, store, reconcile.Options{SyncInstruments: true})

	_, err := rc.Run(context.Background(), tenantA)
	require.NoError(t, err)

	before := store.Snapshot()
	writes := store.Writes

	src.invoices[0].Status = source.InvoicePaid
	src.invoices[0].Amount = 1
	src.instruments[0].Status = source.InstrumentCleared
	src.instruments[0].Amount = 1

	res, err := rc.Run(context.Background(), tenantA)
	require.NoError(t, err)
	assert.Equal(t, reconcile.Result{}, res)
	assert.Equal(t, writes, store.Writes)
	assert.Equal(t, before, store.Snapshot())
}

func TestReconciler_Run_TenantIsolation(t *testing.T) {
	src := fixture()
	src.invoices = append(src.invoices, newInvoice(tenantB, source.InvoiceReceivable, 500, date(2026, 4, 2)))

	store := memstore.New()
	rc := reconcile.New(src, store, reconcile.Options{SyncInstruments: true})

	res, err := rc.Run(context.Background(), tenantB)
	require.NoError(t, err)
	assert.Equal(t, reconcile.Result{Created: 1}, res)

	rows := store.Snapshot()
	require.Len(t, rows, 1)
	assert.Equal(t, tenantB, rows[0].TenantID)
}

func TestReconciler_Run_LockHeld(t *testing.T) {
	store := memstore.New()
	rc := reconcile.New(fixture(), store, reconcile.Options{})

	release, ok, err := store.LockTenant(context.Background(), tenantA)
	require.NoError(t, err)
	require.True(t, ok)

	_, err = rc.Run(context.Background(), tenantA)
	assert.ErrorIs(t, err, reconcile.ErrSyncInProgress)
	assert.Empty(t, store.Snapshot())

	release()

	res, err := rc.Run(context.Background(), tenantA)
	require.NoError(t, err)
	assert.Equal(t, 4, res.Created)
}

func TestReconciler_Run_DuplicateSourceFallsThrough(t *testing.T) {
	ctrl := gomock.NewController(t)
	sources := source.NewMockReader(ctrl)
	ledger := reconcile.NewMockLedger(ctrl)

	inv := newInvoice(tenantA, source.InvoiceReceivable, 2000, date(2026, 4, 1))
	ref := reminder.SourceRef{Kind: reminder.SourceInvoice, ID: inv.ID}
	winner := &reminder.Reminder{ID: uuid.New(), TenantID: tenantA, InvoiceID: &inv.ID, Amount: 1000, DueDate: date(2026, 4, 1)}

	ledger.EXPECT().LockTenant(gomock.Any(), tenantA).Return(func() {}, true, nil)
	sources.EXPECT().OpenInvoices(gomock.Any(), tenantA).Return([]*source.Invoice{inv}, nil)
	gomock.InOrder(
		ledger.EXPECT().FindBySource(gomock.Any(), tenantA, ref).Return(nil, reminder.ErrNotFound),
		ledger.EXPECT().CreateReminder(gomock.Any(), gomock.Any()).Return(reminder.ErrDuplicateSource),
		ledger.EXPECT().FindBySource(gomock.Any(), tenantA, ref).Return(winner, nil),
	)
	ledger.EXPECT().UpdateSourceFields(gomock.Any(), tenantA, winner.ID, int64(2000), date(2026, 4, 1)).Return(nil)
	sources.EXPECT().OutstandingInstruments(gomock.Any(), tenantA).Return(nil, nil)

	res, err := reconcile.New(sources, ledger, reconcile.Options{}).Run(context.Background(), tenantA)
	require.NoError(t, err)
	assert.Equal(t, reconcile.Result{Updated: 1}, res)
}

func TestReconciler_Run_Errors(t *testing.T) {
	errBoom := errors.New("boom")

	type testCase struct {
		name        string
		setup       func(s *source.MockReader, l *reconcile.MockLedger)
		wantResult  reconcile.Result
		wantErr     error
		wantMessage string
	}

	inv := newInvoice(tenantA, source.InvoiceReceivable, 100, date(2026, 4, 1))
	inv2 := newInvoice(tenantA, source.InvoicePayable, 200, date(2026, 4, 2))

	tests := []testCase{
		{
			name: "LockError",
			setup: func(_ *source.MockReader, l *reconcile.MockLedger) {
				l.EXPECT().LockTenant(gomock.Any(), tenantA).Return(nil, false, errBoom)
			},
			wantErr:     errBoom,
			wantMessage: "locking tenant",
		},
		{
			name: "InvoiceReadError",
			setup: func(s *source.MockReader, l *reconcile.MockLedger) {
				l.EXPECT().LockTenant(gomock.Any(), tenantA).Return(func() {}, true, nil)
				s.EXPECT().OpenInvoices(gomock.Any(), tenantA).Return(nil, errBoom)
			},
			wantErr:     errBoom,
			wantMessage: "reading open invoices",
		},
		{
			name: "InstrumentReadError",
			setup: func(s *source.MockReader, l *reconcile.MockLedger) {
				l.EXPECT().LockTenant(gomock.Any(), tenantA).Return(func() {}, true, nil)
				s.EXPECT().OpenInvoices(gomock.Any(), tenantA).Return(nil, nil)
				s.EXPECT().OutstandingInstruments(gomock.Any(), tenantA).Return(nil, errBoom)
			},
			wantErr:     errBoom,
			wantMessage: "reading outstanding instruments",
		},
		{
			name: "WriteErrorKeepsPartialProgress",
			setup: func(s *source.MockReader, l *reconcile.MockLedger) {
				l.EXPECT().LockTenant(gomock.Any(), tenantA).Return(func() {}, true, nil)
				s.EXPECT().OpenInvoices(gomock.Any(), tenantA).Return([]*source.Invoice{inv, inv2}, nil)
				l.EXPECT().FindBySource(gomock.Any(), tenantA, gomock.Any()).Return(nil, reminder.ErrNotFound).Times(2)
				gomock.InOrder(
					l.EXPECT().CreateReminder(gomock.Any(), gomock.Any()).Return(nil),
					l.EXPECT().CreateReminder(gomock.Any(), gomock.Any()).Return(errBoom),
				)
			},
			wantResult:  reconcile.Result{Created: 1},
			wantErr:     errBoom,
			wantMessage: "reconciling invoice " + inv2.ID.String(),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			sources := source.NewMockReader(ctrl)
			ledger := reconcile.NewMockLedger(ctrl)
			tt.setup(sources, ledger)

			res, err := reconcile.New(sources, ledger, reconcile.Options{}).Run(context.Background(), tenantA)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Contains(t, err.Error(), tt.wantMessage)
			assert.Equal(t, tt.wantResult, res)
		})
	}
}

func TestReconciler_RunAll(t *testing.T) {
	src := fixture()
	src.invoices = append(src.invoices, newInvoice(tenantB, source.InvoiceReceivable, 500, date(2026, 4, 2)))

	store := memstore.New()
	rc := reconcile.New(src, store, reconcile.Options{SyncInstruments: true})

	// Tenant A is busy; tenant B must still be reconciled.
	release, ok, err := store.LockTenant(context.Background(), tenantA)
	require.NoError(t, err)
	require.True(t, ok)

	defer release()

	results, err := rc.RunAll(context.Background())
	require.NoError(t, err)
	require.Len(t, results, 2)

	got := map[uuid.UUID]reconcile.TenantResult{}
	for _, r := range results {
		got[r.TenantID] = r
	}

	assert.ErrorIs(t, got[tenantA].Err, reconcile.ErrSyncInProgress)
	require.NoError(t, got[tenantB].Err)
	assert.Equal(t, reconcile.Result{Created: 1}, got[tenantB].Result)
}
