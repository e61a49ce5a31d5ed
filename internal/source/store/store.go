package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/payreminder/internal/source"
)

// Store reads the upstream invoice and check/note tables. It never writes.
type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

func invoiceStatuses() []string {
	out := make([]string, len(source.OpenInvoiceStatuses))
	for i, s := range source.OpenInvoiceStatuses {
		out[i] = string(s)
	}

	return out
}

func instrumentStatuses() []string {
	out := make([]string, len(source.OutstandingInstrumentStatuses))
	for i, s := range source.OutstandingInstrumentStatuses {
		out[i] = string(s)
	}

	return out
}

func (s *Store) OpenInvoices(ctx context.Context, tenantID uuid.UUID) ([]*source.Invoice, error) {
	query := `
		SELECT id, tenant_id, client_company_id, direction, status, counterparty_name, amount, currency, due_date
		FROM invoices
		WHERE tenant_id = $1 AND status = ANY($2) AND due_date IS NOT NULL
		ORDER BY due_date ASC, id ASC
	`

	rows, err := s.db.QueryContext(ctx, query, tenantID, invoiceStatuses())
	if err != nil {
		return nil, fmt.Errorf("listing open invoices: %w", err)
	}
	defer rows.Close()

	var invoices []*source.Invoice

	for rows.Next() {
		var (
			inv                         source.Invoice
			direction, status, currency string
		)

		if err := rows.Scan(
			&inv.ID, &inv.TenantID, &inv.ClientCompanyID, &direction, &status,
			&inv.CounterpartyName, &inv.Amount, &currency, &inv.DueDate,
		); err != nil {
			return nil, fmt.Errorf("scanning invoice: %w", err)
		}

		inv.Direction = source.InvoiceDirection(direction)
		inv.Status = source.InvoiceStatus(status)
		inv.Currency = currency
		invoices = append(invoices, &inv)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating invoice rows: %w", err)
	}

	return invoices, nil
}

func (s *Store) OutstandingInstruments(ctx context.Context, tenantID uuid.UUID) ([]*source.Instrument, error) {
	query := `
		SELECT id, tenant_id, client_company_id, kind, direction, status, document_number, amount, currency, due_date
		FROM check_notes
		WHERE tenant_id = $1 AND status = ANY($2)
		ORDER BY due_date ASC, id ASC
	`

	rows, err := s.db.QueryContext(ctx, query, tenantID, instrumentStatuses())
	if err != nil {
		return nil, fmt.Errorf("listing outstanding instruments: %w", err)
	}
	defer rows.Close()

	var instruments []*source.Instrument

	for rows.Next() {
		var (
			ins                     source.Instrument
			kind, direction, status string
		)

		if err := rows.Scan(
			&ins.ID, &ins.TenantID, &ins.ClientCompanyID, &kind, &direction, &status,
			&ins.DocumentNumber, &ins.Amount, &ins.Currency, &ins.DueDate,
		); err != nil {
			return nil, fmt.Errorf("scanning instrument: %w", err)
		}

		ins.Kind = source.InstrumentKind(kind)
		ins.Direction = source.InstrumentDirection(direction)
		ins.Status = source.InstrumentStatus(status)
		instruments = append(instruments, &ins)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating instrument rows: %w", err)
	}

	return instruments, nil
}

func (s *Store) Tenants(ctx context.Context) ([]uuid.UUID, error) {
	query := `
		SELECT tenant_id FROM invoices WHERE status = ANY($1) AND due_date IS NOT NULL
		UNION
		SELECT tenant_id FROM check_notes WHERE status = ANY($2)
		ORDER BY tenant_id
	`

	rows, err := s.db.QueryContext(ctx, query, invoiceStatuses(), instrumentStatuses())
	if err != nil {
		return nil, fmt.Errorf("listing tenants: %w", err)
	}
	defer rows.Close()

	var tenants []uuid.UUID

	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scanning tenant: %w", err)
		}

		tenants = append(tenants, id)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating tenant rows: %w", err)
	}

	return tenants, nil
}
