package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"hash/fnv"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/MrJamesThe3rd/payreminder/internal/reminder"
)

const uniqueViolation = "23505"

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

// queryRower is satisfied by both *sql.DB and *sql.Tx.
type queryRower interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

const selectReminderColumns = `
	id, tenant_id, client_company_id, invoice_id, check_note_id, type, due_date, amount, currency,
	description, reminder_days_before, is_paid, paid_at, reminder_sent, reminder_sent_at,
	claimed_until, created_at, updated_at
`

// scanReminder expects the column order of selectReminderColumns.
func scanReminder(s scanner) (*reminder.Reminder, error) {
	var (
		r       reminder.Reminder
		typeStr string
	)

	if err := s.Scan(
		&r.ID, &r.TenantID, &r.ClientCompanyID, &r.InvoiceID, &r.CheckNoteID, &typeStr, &r.DueDate,
		&r.Amount, &r.Currency, &r.Description, &r.ReminderDaysBefore, &r.IsPaid, &r.PaidAt,
		&r.ReminderSent, &r.ReminderSentAt, &r.ClaimedUntil, &r.CreatedAt, &r.UpdatedAt,
	); err != nil {
		return nil, err
	}

	r.Type = reminder.Type(typeStr)
	r.DueDate = reminder.DateOf(r.DueDate)

	return &r, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

func insertReminder(ctx context.Context, q queryRower, r *reminder.Reminder) error {
	query := `
		INSERT INTO payment_reminders (
			tenant_id, client_company_id, invoice_id, check_note_id, type, due_date, amount,
			currency, description, reminder_days_before, created_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, NOW())
		RETURNING id, created_at
	`

	err := q.QueryRowContext(ctx, query,
		r.TenantID,
		r.ClientCompanyID,
		r.InvoiceID,
		r.CheckNoteID,
		r.Type,
		r.DueDate,
		r.Amount,
		r.Currency,
		r.Description,
		r.ReminderDaysBefore,
	).Scan(&r.ID, &r.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return reminder.ErrDuplicateSource
		}

		return fmt.Errorf("creating reminder: %w", err)
	}

	return nil
}

func (s *Store) CreateReminder(ctx context.Context, r *reminder.Reminder) error {
	return insertReminder(ctx, s.db, r)
}

func (s *Store) CreateReminders(ctx context.Context, rs []*reminder.Reminder) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}

	for _, r := range rs {
		if err := insertReminder(ctx, tx, r); err != nil {
			tx.Rollback()
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing reminders: %w", err)
	}

	return nil
}

func (s *Store) GetReminder(ctx context.Context, tenantID, id uuid.UUID) (*reminder.Reminder, error) {
	query := `SELECT ` + selectReminderColumns + `
		FROM payment_reminders
		WHERE tenant_id = $1 AND id = $2`

	r, err := scanReminder(s.db.QueryRowContext(ctx, query, tenantID, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, reminder.ErrNotFound
		}

		return nil, fmt.Errorf("getting reminder: %w", err)
	}

	return r, nil
}

func (s *Store) UpdateReminder(ctx context.Context, r *reminder.Reminder) error {
	query := `
		UPDATE payment_reminders
		SET client_company_id = $3, type = $4, due_date = $5, amount = $6, currency = $7,
			description = $8, reminder_days_before = $9, updated_at = NOW()
		WHERE tenant_id = $1 AND id = $2
		RETURNING updated_at
	`

	err := s.db.QueryRowContext(ctx, query,
		r.TenantID,
		r.ID,
		r.ClientCompanyID,
		r.Type,
		r.DueDate,
		r.Amount,
		r.Currency,
		r.Description,
		r.ReminderDaysBefore,
	).Scan(&r.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return reminder.ErrNotFound
		}

		return fmt.Errorf("updating reminder: %w", err)
	}

	return nil
}

func (s *Store) DeleteReminder(ctx context.Context, tenantID, id uuid.UUID) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM payment_reminders WHERE tenant_id = $1 AND id = $2`, tenantID, id)
	if err != nil {
		return fmt.Errorf("deleting reminder: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking rows affected: %w", err)
	}

	if n == 0 {
		return reminder.ErrNotFound
	}

	return nil
}

func (s *Store) exists(ctx context.Context, tenantID, id uuid.UUID) (bool, error) {
	var ok bool

	err := s.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM payment_reminders WHERE tenant_id = $1 AND id = $2)`,
		tenantID, id,
	).Scan(&ok)
	if err != nil {
		return false, fmt.Errorf("checking reminder exists: %w", err)
	}

	return ok, nil
}

// MarkPaid sets is_paid only on the false-to-true transition.
func (s *Store) MarkPaid(ctx context.Context, tenantID, id uuid.UUID, at time.Time) error {
	query := `
		UPDATE payment_reminders
		SET is_paid = TRUE, paid_at = $3, updated_at = NOW()
		WHERE tenant_id = $1 AND id = $2 AND is_paid = FALSE
	`

	res, err := s.db.ExecContext(ctx, query, tenantID, id, at)
	if err != nil {
		return fmt.Errorf("marking reminder paid: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking rows affected: %w", err)
	}

	if n > 0 {
		return nil
	}

	ok, err := s.exists(ctx, tenantID, id)
	if err != nil {
		return err
	}

	if !ok {
		return reminder.ErrNotFound
	}

	return reminder.ErrAlreadyPaid
}

func (s *Store) ListReminders(ctx context.Context, tenantID uuid.UUID, q reminder.Query) ([]*reminder.Reminder, int, error) {
	where := " WHERE tenant_id = $1"
	args := []any{tenantID}
	argIdx := 2

	if q.Type != nil {
		where += fmt.Sprintf(" AND type = $%d", argIdx)

		args = append(args, *q.Type)
		argIdx++
	}

	if q.IsPaid != nil {
		where += fmt.Sprintf(" AND is_paid = $%d", argIdx)

		args = append(args, *q.IsPaid)
		argIdx++
	}

	if q.DueFrom != nil {
		where += fmt.Sprintf(" AND due_date >= $%d", argIdx)

		args = append(args, *q.DueFrom)
		argIdx++
	}

	if q.DueTo != nil {
		where += fmt.Sprintf(" AND due_date <= $%d", argIdx)

		args = append(args, *q.DueTo)
		argIdx++
	}

	if q.DueBefore != nil {
		where += fmt.Sprintf(" AND due_date < $%d", argIdx)

		args = append(args, *q.DueBefore)
		argIdx++
	}

	var total int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM payment_reminders`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("counting reminders: %w", err)
	}

	query := `SELECT ` + selectReminderColumns + ` FROM payment_reminders` + where + ` ORDER BY due_date ASC, id ASC`

	if q.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", argIdx, argIdx+1)

		args = append(args, q.Limit, q.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("listing reminders: %w", err)
	}
	defer rows.Close()

	var rs []*reminder.Reminder

	for rows.Next() {
		r, err := scanReminder(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scanning reminder: %w", err)
		}

		rs = append(rs, r)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterating reminder rows: %w", err)
	}

	return rs, total, nil
}

func (s *Store) Stats(ctx context.Context, tenantID uuid.UUID, today, horizon time.Time) (*reminder.Stats, error) {
	query := `
		SELECT
			COUNT(*) FILTER (WHERE due_date >= $2 AND due_date <= $3),
			COALESCE(SUM(amount) FILTER (WHERE due_date >= $2 AND due_date <= $3), 0),
			COUNT(*) FILTER (WHERE due_date < $2),
			COALESCE(SUM(amount) FILTER (WHERE due_date < $2), 0)
		FROM payment_reminders
		WHERE tenant_id = $1 AND is_paid = FALSE
	`

	var st reminder.Stats

	err := s.db.QueryRowContext(ctx, query, tenantID, today, horizon).Scan(
		&st.UpcomingCount, &st.UpcomingAmount, &st.OverdueCount, &st.OverdueAmount,
	)
	if err != nil {
		return nil, fmt.Errorf("computing reminder stats: %w", err)
	}

	return &st, nil
}

func (s *Store) FindBySource(ctx context.Context, tenantID uuid.UUID, ref reminder.SourceRef) (*reminder.Reminder, error) {
	column := "invoice_id"
	if ref.Kind == reminder.SourceCheckNote {
		column = "check_note_id"
	}

	query := `SELECT ` + selectReminderColumns + `
		FROM payment_reminders
		WHERE tenant_id = $1 AND ` + column + ` = $2`

	r, err := scanReminder(s.db.QueryRowContext(ctx, query, tenantID, ref.ID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, reminder.ErrNotFound
		}

		return nil, fmt.Errorf("finding reminder by source: %w", err)
	}

	return r, nil
}

func (s *Store) UpdateSourceFields(ctx context.Context, tenantID, id uuid.UUID, amount int64, dueDate time.Time) error {
	query := `
		UPDATE payment_reminders
		SET amount = $3, due_date = $4, updated_at = NOW()
		WHERE tenant_id = $1 AND id = $2
	`

	res, err := s.db.ExecContext(ctx, query, tenantID, id, amount, dueDate)
	if err != nil {
		return fmt.Errorf("updating reminder source fields: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking rows affected: %w", err)
	}

	if n == 0 {
		return reminder.ErrNotFound
	}

	return nil
}

// syncLockKey maps a tenant to an advisory lock key, namespaced so it cannot
// collide with other advisory locks taken on the same database.
func syncLockKey(tenantID uuid.UUID) int64 {
	h := fnv.New64a()
	h.Write([]byte("reminder-sync"))
	h.Write([]byte{0})
	h.Write(tenantID[:])

	return int64(h.Sum64())
}

// LockTenant takes a session-level advisory lock on a dedicated connection.
// It does not wait: acquired is false when another session holds the lock.
func (s *Store) LockTenant(ctx context.Context, tenantID uuid.UUID) (func(), bool, error) {
	conn, err := s.db.Conn(ctx)
	if err != nil {
		return nil, false, fmt.Errorf("acquiring connection: %w", err)
	}

	key := syncLockKey(tenantID)

	var acquired bool
	if err := conn.QueryRowContext(ctx, "SELECT pg_try_advisory_lock($1)", key).Scan(&acquired); err != nil {
		conn.Close()
		return nil, false, fmt.Errorf("acquiring sync lock: %w", err)
	}

	if !acquired {
		conn.Close()
		return nil, false, nil
	}

	release := func() {
		// The lock must be released even when the caller's context is done.
		conn.ExecContext(context.Background(), "SELECT pg_advisory_unlock($1)", key)
		conn.Close()
	}

	return release, true, nil
}

func (s *Store) PendingNotifications(ctx context.Context) ([]*reminder.Reminder, error) {
	query := `SELECT ` + selectReminderColumns + `
		FROM payment_reminders
		WHERE reminder_sent = FALSE AND is_paid = FALSE
		ORDER BY due_date ASC, id ASC`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("listing pending notifications: %w", err)
	}
	defer rows.Close()

	var rs []*reminder.Reminder

	for rows.Next() {
		r, err := scanReminder(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning reminder: %w", err)
		}

		rs = append(rs, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating reminder rows: %w", err)
	}

	return rs, nil
}

// Claim leases an unsent reminder to the caller until the given time.
// It reports false when another worker holds a live lease or it was already sent.
func (s *Store) Claim(ctx context.Context, id uuid.UUID, now, until time.Time) (bool, error) {
	query := `
		UPDATE payment_reminders
		SET claimed_until = $3
		WHERE id = $1 AND reminder_sent = FALSE AND (claimed_until IS NULL OR claimed_until <= $2)
	`

	res, err := s.db.ExecContext(ctx, query, id, now, until)
	if err != nil {
		return false, fmt.Errorf("claiming reminder: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("checking rows affected: %w", err)
	}

	return n == 1, nil
}

func (s *Store) MarkSent(ctx context.Context, tenantID, id uuid.UUID, at time.Time) error {
	query := `
		UPDATE payment_reminders
		SET reminder_sent = TRUE, reminder_sent_at = $3, claimed_until = NULL, updated_at = NOW()
		WHERE tenant_id = $1 AND id = $2 AND reminder_sent = FALSE
	`

	res, err := s.db.ExecContext(ctx, query, tenantID, id, at)
	if err != nil {
		return fmt.Errorf("marking reminder sent: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking rows affected: %w", err)
	}

	if n > 0 {
		return nil
	}

	ok, err := s.exists(ctx, tenantID, id)
	if err != nil {
		return err
	}

	if !ok {
		return reminder.ErrNotFound
	}

	return nil
}

func (s *Store) Release(ctx context.Context, id uuid.UUID) error {
	if _, err := s.db.ExecContext(ctx,
		`UPDATE payment_reminders SET claimed_until = NULL WHERE id = $1 AND reminder_sent = FALSE`, id,
	); err != nil {
		return fmt.Errorf("releasing reminder claim: %w", err)
	}

	return nil
}
