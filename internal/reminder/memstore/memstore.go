// Package memstore is an in-memory reminder ledger with the same contract as
// the Postgres store, including the per-source uniqueness constraint. It backs
// tests and the TUI demo mode.
package memstore

import (
	"cmp"
	"context"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/payreminder/internal/reminder"
)

type Store struct {
	mu        sync.Mutex
	reminders map[uuid.UUID]*reminder.Reminder
	locks     map[uuid.UUID]bool
	now       func() time.Time

	// Writes counts every mutating call that changed a row.
	Writes int
}

func New() *Store {
	return &Store{
		reminders: make(map[uuid.UUID]*reminder.Reminder),
		locks:     make(map[uuid.UUID]bool),
		now:       time.Now,
	}
}

func clone(r *reminder.Reminder) *reminder.Reminder {
	c := *r
	return &c
}

func sameSource(a, b *reminder.Reminder) bool {
	if a.TenantID != b.TenantID {
		return false
	}

	if a.InvoiceID != nil && b.InvoiceID != nil && *a.InvoiceID == *b.InvoiceID {
		return true
	}

	return a.CheckNoteID != nil && b.CheckNoteID != nil && *a.CheckNoteID == *b.CheckNoteID
}

func (s *Store) insert(r *reminder.Reminder) error {
	if !r.IsManual() {
		for _, existing := range s.reminders {
			if sameSource(existing, r) {
				return reminder.ErrDuplicateSource
			}
		}
	}

	r.ID = uuid.New()
	r.CreatedAt = s.now().UTC()
	s.reminders[r.ID] = clone(r)
	s.Writes++

	return nil
}

func (s *Store) CreateReminder(_ context.Context, r *reminder.Reminder) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.insert(r)
}

func (s *Store) CreateReminders(_ context.Context, rs []*reminder.Reminder) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, r := range rs {
		if err := s.insert(r); err != nil {
			return err
		}
	}

	return nil
}

func (s *Store) get(tenantID, id uuid.UUID) (*reminder.Reminder, error) {
	r, ok := s.reminders[id]
	if !ok || r.TenantID != tenantID {
		return nil, reminder.ErrNotFound
	}

	return r, nil
}

func (s *Store) GetReminder(_ context.Context, tenantID, id uuid.UUID) (*reminder.Reminder, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, err := s.get(tenantID, id)
	if err != nil {
		return nil, err
	}

	return clone(r), nil
}

func (s *Store) UpdateReminder(_ context.Context, r *reminder.Reminder) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, err := s.get(r.TenantID, r.ID)
	if err != nil {
		return err
	}

	now := s.now().UTC()
	existing.ClientCompanyID = r.ClientCompanyID
	existing.Type = r.Type
	existing.DueDate = r.DueDate
	existing.Amount = r.Amount
	existing.Currency = r.Currency
	existing.Description = r.Description
	existing.ReminderDaysBefore = r.ReminderDaysBefore
	existing.UpdatedAt = &now
	r.UpdatedAt = &now
	s.Writes++

	return nil
}

func (s *Store) DeleteReminder(_ context.Context, tenantID, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.get(tenantID, id); err != nil {
		return err
	}

	delete(s.reminders, id)
	s.Writes++

	return nil
}

func (s *Store) MarkPaid(_ context.Context, tenantID, id uuid.UUID, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, err := s.get(tenantID, id)
	if err != nil {
		return err
	}

	if r.IsPaid {
		return reminder.ErrAlreadyPaid
	}

	r.IsPaid = true
	r.PaidAt = &at
	s.Writes++

	return nil
}

func matches(r *reminder.Reminder, q reminder.Query) bool {
	switch {
	case q.Type != nil && r.Type != *q.Type:
		return false
	case q.IsPaid != nil && r.IsPaid != *q.IsPaid:
		return false
	case q.DueFrom != nil && r.DueDate.Before(*q.DueFrom):
		return false
	case q.DueTo != nil && r.DueDate.After(*q.DueTo):
		return false
	case q.DueBefore != nil && !r.DueDate.Before(*q.DueBefore):
		return false
	}

	return true
}

func byDueDate(a, b *reminder.Reminder) int {
	if c := a.DueDate.Compare(b.DueDate); c != 0 {
		return c
	}

	return cmp.Compare(a.ID.String(), b.ID.String())
}

func (s *Store) ListReminders(_ context.Context, tenantID uuid.UUID, q reminder.Query) ([]*reminder.Reminder, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var all []*reminder.Reminder

	for _, r := range s.reminders {
		if r.TenantID == tenantID && matches(r, q) {
			all = append(all, clone(r))
		}
	}

	slices.SortFunc(all, byDueDate)

	total := len(all)
	if q.Offset >= total {
		return nil, total, nil
	}

	all = all[q.Offset:]
	if q.Limit > 0 && len(all) > q.Limit {
		all = all[:q.Limit]
	}

	return all, total, nil
}

func (s *Store) Stats(_ context.Context, tenantID uuid.UUID, today, horizon time.Time) (*reminder.Stats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var st reminder.Stats

	for _, r := range s.reminders {
		if r.TenantID != tenantID || r.IsPaid {
			continue
		}

		switch {
		case r.DueDate.Before(today):
			st.OverdueCount++
			st.OverdueAmount += r.Amount
		case !r.DueDate.After(horizon):
			st.UpcomingCount++
			st.UpcomingAmount += r.Amount
		}
	}

	return &st, nil
}

func (s *Store) FindBySource(_ context.Context, tenantID uuid.UUID, ref reminder.SourceRef) (*reminder.Reminder, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, r := range s.reminders {
		if r.TenantID != tenantID {
			continue
		}

		if got, ok := r.Source(); ok && got == ref {
			return clone(r), nil
		}
	}

	return nil, reminder.ErrNotFound
}

func (s *Store) UpdateSourceFields(_ context.Context, tenantID, id uuid.UUID, amount int64, dueDate time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, err := s.get(tenantID, id)
	if err != nil {
		return err
	}

	now := s.now().UTC()
	r.Amount = amount
	r.DueDate = dueDate
	r.UpdatedAt = &now
	s.Writes++

	return nil
}

func (s *Store) LockTenant(_ context.Context, tenantID uuid.UUID) (func(), bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.locks[tenantID] {
		return nil, false, nil
	}

	s.locks[tenantID] = true

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.locks, tenantID)
	}, true, nil
}

func (s *Store) PendingNotifications(_ context.Context) ([]*reminder.Reminder, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []*reminder.Reminder

	for _, r := range s.reminders {
		if !r.ReminderSent && !r.IsPaid {
			out = append(out, clone(r))
		}
	}

	slices.SortFunc(out, byDueDate)

	return out, nil
}

func (s *Store) Claim(_ context.Context, id uuid.UUID, now, until time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.reminders[id]
	if !ok || r.ReminderSent {
		return false, nil
	}

	if r.ClaimedUntil != nil && r.ClaimedUntil.After(now) {
		return false, nil
	}

	r.ClaimedUntil = &until

	return true, nil
}

func (s *Store) MarkSent(_ context.Context, tenantID, id uuid.UUID, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, err := s.get(tenantID, id)
	if err != nil {
		return err
	}

	if r.ReminderSent {
		return nil
	}

	r.ReminderSent = true
	r.ReminderSentAt = &at
	r.ClaimedUntil = nil
	s.Writes++

	return nil
}

// Release clears a claim without marking the reminder sent.
func (s *Store) Release(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if r, ok := s.reminders[id]; ok {
		r.ClaimedUntil = nil
	}

	return nil
}

// Snapshot returns copies of every row ordered by due date, for comparisons.
func (s *Store) Snapshot() []reminder.Reminder {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows := make([]*reminder.Reminder, 0, len(s.reminders))
	for _, r := range s.reminders {
		rows = append(rows, r)
	}

	slices.SortFunc(rows, byDueDate)

	out := make([]reminder.Reminder, len(rows))
	for i, r := range rows {
		out[i] = *r
	}

	return out
}

// Seed inserts r verbatim, keeping its ID and flags.
func (s *Store) Seed(r reminder.Reminder) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}

	s.reminders[r.ID] = &r
}
