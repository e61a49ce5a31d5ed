package reminder

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/payreminder/internal/validate"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=reminder
type Repository interface {
	CreateReminder(ctx context.Context, r *Reminder) error
	CreateReminders(ctx context.Context, rs []*Reminder) error
	GetReminder(ctx context.Context, tenantID, id uuid.UUID) (*Reminder, error)
	UpdateReminder(ctx context.Context, r *Reminder) error
	DeleteReminder(ctx context.Context, tenantID, id uuid.UUID) error
	MarkPaid(ctx context.Context, tenantID, id uuid.UUID, at time.Time) error

	ListReminders(ctx context.Context, tenantID uuid.UUID, q Query) ([]*Reminder, int, error)
	Stats(ctx context.Context, tenantID uuid.UUID, today, horizon time.Time) (*Stats, error)
}

const (
	UpcomingWindowDays = 7
	DefaultPageSize    = 20
	MaxPageSize        = 100
)

type Service struct {
	repo Repository
	now  func() time.Time
}

type Option func(*Service)

// WithClock overrides the clock used to resolve "today".
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func NewService(repo Repository, opts ...Option) *Service {
	s := &Service{repo: repo, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}

	return s
}

// ListFilter is the caller-facing filter of List. Upcoming and Overdue are
// mutually exclusive and both imply IsPaid=false.
type ListFilter struct {
	Type     *Type
	IsPaid   *bool
	Upcoming bool
	Overdue  bool
	Page     int
	Limit    int
}

// Query is the resolved, store-level form of a ListFilter.
type Query struct {
	Type      *Type
	IsPaid    *bool
	DueFrom   *time.Time // inclusive
	DueTo     *time.Time // inclusive
	DueBefore *time.Time // exclusive
	Offset    int
	Limit     int
}

type Page struct {
	Items      []*Reminder
	Total      int
	Page       int
	Limit      int
	TotalPages int
}

type Stats struct {
	UpcomingCount  int
	UpcomingAmount int64
	OverdueCount   int
	OverdueAmount  int64
}

func (s *Service) today() time.Time {
	return DateOf(s.now().UTC())
}

func (s *Service) List(ctx context.Context, tenantID uuid.UUID, filter ListFilter) (*Page, error) {
	if filter.Upcoming && filter.Overdue {
		return nil, validationError("upcoming and overdue filters are mutually exclusive")
	}

	if filter.Type != nil && !filter.Type.Valid() {
		return nil, validationError("unknown reminder type %q", *filter.Type)
	}

	page := max(filter.Page, 1)

	limit := filter.Limit
	if limit <= 0 {
		limit = DefaultPageSize
	}

	limit = min(limit, MaxPageSize)

	q := Query{
		Type:   filter.Type,
		IsPaid: filter.IsPaid,
		Offset: (page - 1) * limit,
		Limit:  limit,
	}

	today := s.today()

	switch {
	case filter.Upcoming:
		to := today.AddDate(0, 0, UpcomingWindowDays)
		q.IsPaid = new(false)
		q.DueFrom = &today
		q.DueTo = &to
	case filter.Overdue:
		q.IsPaid = new(false)
		q.DueBefore = &today
	}

	items, total, err := s.repo.ListReminders(ctx, tenantID, q)
	if err != nil {
		return nil, err
	}

	return &Page{
		Items:      items,
		Total:      total,
		Page:       page,
		Limit:      limit,
		TotalPages: (total + limit - 1) / limit,
	}, nil
}

func (s *Service) Get(ctx context.Context, tenantID, id uuid.UUID) (*Reminder, error) {
	return s.repo.GetReminder(ctx, tenantID, id)
}

// Upcoming returns unpaid reminders due between today and daysAhead days from now.
func (s *Service) Upcoming(ctx context.Context, tenantID uuid.UUID, daysAhead int) ([]*Reminder, error) {
	if daysAhead <= 0 {
		daysAhead = UpcomingWindowDays
	}

	today := s.today()
	to := today.AddDate(0, 0, daysAhead)

	items, _, err := s.repo.ListReminders(ctx, tenantID, Query{
		IsPaid:  new(false),
		DueFrom: &today,
		DueTo:   &to,
	})

	return items, err
}

// Overdue returns unpaid reminders whose due date is in the past.
func (s *Service) Overdue(ctx context.Context, tenantID uuid.UUID) ([]*Reminder, error) {
	today := s.today()

	items, _, err := s.repo.ListReminders(ctx, tenantID, Query{
		IsPaid:    new(false),
		DueBefore: &today,
	})

	return items, err
}

func (s *Service) DashboardStats(ctx context.Context, tenantID uuid.UUID) (*Stats, error) {
	today := s.today()
	return s.repo.Stats(ctx, tenantID, today, today.AddDate(0, 0, UpcomingWindowDays))
}

type CreateParams struct {
	ClientCompanyID    *uuid.UUID `validate:"omitempty"`
	Type               Type       `validate:"required"`
	DueDate            time.Time  `validate:"required"`
	Amount             int64      `validate:"gt=0"`
	Currency           string     `validate:"omitempty,iso4217"`
	Description        string     `validate:"required,max=500"`
	ReminderDaysBefore *int       `validate:"omitempty,gte=0,lte=365"`
}

func (p CreateParams) normalized() CreateParams {
	p.Currency = strings.ToUpper(strings.TrimSpace(p.Currency))
	p.Description = strings.TrimSpace(p.Description)

	return p
}

func (p CreateParams) validate() error {
	if err := validate.Struct(p); err != nil {
		return validationError("%s", err)
	}

	if !p.Type.Valid() {
		return validationError("unknown reminder type %q", p.Type)
	}

	if p.DueDate.IsZero() {
		return validationError("due date is required")
	}

	return nil
}

// Validate reports whether Create would accept p.
func (p CreateParams) Validate() error {
	return p.normalized().validate()
}

func (p CreateParams) toReminder(tenantID uuid.UUID) *Reminder {
	r := &Reminder{
		TenantID:           tenantID,
		ClientCompanyID:    p.ClientCompanyID,
		Type:               p.Type,
		DueDate:            DateOf(p.DueDate),
		Amount:             p.Amount,
		Currency:           p.Currency,
		Description:        p.Description,
		ReminderDaysBefore: DefaultDaysBefore,
	}

	if r.Currency == "" {
		r.Currency = DefaultCurrency
	}

	if p.ReminderDaysBefore != nil {
		r.ReminderDaysBefore = *p.ReminderDaysBefore
	}

	return r
}

// Create adds a manual reminder, one without a source link.
func (s *Service) Create(ctx context.Context, tenantID uuid.UUID, params CreateParams) (*Reminder, error) {
	params = params.normalized()
	if err := params.validate(); err != nil {
		return nil, err
	}

	r := params.toReminder(tenantID)
	if err := s.repo.CreateReminder(ctx, r); err != nil {
		return nil, err
	}

	return r, nil
}

// CreateBatch adds manual reminders all-or-nothing. Any invalid row rejects the batch.
func (s *Service) CreateBatch(ctx context.Context, tenantID uuid.UUID, params []CreateParams) ([]*Reminder, error) {
	if len(params) == 0 {
		return nil, nil
	}

	var problems []string

	normalized := make([]CreateParams, len(params))

	for i, p := range params {
		normalized[i] = p.normalized()
		if err := normalized[i].validate(); err != nil {
			problems = append(problems, fmt.Sprintf("row %d: %v", i+1, err))
		}
	}

	if len(problems) > 0 {
		return nil, validationError("%s", strings.Join(problems, "; "))
	}

	rs := make([]*Reminder, len(params))
	for i, p := range normalized {
		rs[i] = p.toReminder(tenantID)
	}

	if err := s.repo.CreateReminders(ctx, rs); err != nil {
		return nil, fmt.Errorf("create reminders: %w", err)
	}

	return rs, nil
}

// UpdateParams carries a partial update; nil fields are left unchanged.
type UpdateParams struct {
	ClientCompanyID    *uuid.UUID `validate:"omitempty"`
	Type               *Type      `validate:"omitempty"`
	DueDate            *time.Time `validate:"omitempty"`
	Amount             *int64     `validate:"omitempty,gt=0"`
	Currency           *string    `validate:"omitempty,iso4217"`
	Description        *string    `validate:"omitempty,max=500"`
	ReminderDaysBefore *int       `validate:"omitempty,gte=0,lte=365"`
}

func (p UpdateParams) touchesSourceFields() bool {
	return p.Type != nil || p.DueDate != nil || p.Amount != nil || p.Currency != nil
}

func (s *Service) Update(ctx context.Context, tenantID, id uuid.UUID, params UpdateParams) (*Reminder, error) {
	if params.Currency != nil {
		params.Currency = new(strings.ToUpper(strings.TrimSpace(*params.Currency)))
	}

	if err := validate.Struct(params); err != nil {
		return nil, validationError("%s", err)
	}

	if params.Type != nil && !params.Type.Valid() {
		return nil, validationError("unknown reminder type %q", *params.Type)
	}

	if params.Description != nil && strings.TrimSpace(*params.Description) == "" {
		return nil, validationError("description cannot be empty")
	}

	r, err := s.repo.GetReminder(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}

	if !r.IsManual() && params.touchesSourceFields() {
		return nil, validationError("type, amount, currency and due date of a source-linked reminder are managed by reconciliation")
	}

	if params.ClientCompanyID != nil {
		r.ClientCompanyID = params.ClientCompanyID
	}

	if params.Type != nil {
		r.Type = *params.Type
	}

	if params.DueDate != nil {
		r.DueDate = DateOf(*params.DueDate)
	}

	if params.Amount != nil {
		r.Amount = *params.Amount
	}

	if params.Currency != nil {
		r.Currency = *params.Currency
	}

	if params.Description != nil {
		r.Description = strings.TrimSpace(*params.Description)
	}

	if params.ReminderDaysBefore != nil {
		r.ReminderDaysBefore = *params.ReminderDaysBefore
	}

	if err := s.repo.UpdateReminder(ctx, r); err != nil {
		return nil, err
	}

	return r, nil
}

// Delete removes a manual reminder. Source-linked reminders are kept as history.
func (s *Service) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	r, err := s.repo.GetReminder(ctx, tenantID, id)
	if err != nil {
		return err
	}

	if !r.IsManual() {
		return validationError("source-linked reminders cannot be deleted")
	}

	return s.repo.DeleteReminder(ctx, tenantID, id)
}

// MarkAsPaid flips isPaid exactly once. A second call fails with ErrAlreadyPaid
// and leaves paidAt untouched.
func (s *Service) MarkAsPaid(ctx context.Context, tenantID, id uuid.UUID) (*Reminder, error) {
	if err := s.repo.MarkPaid(ctx, tenantID, id, s.now().UTC()); err != nil {
		return nil, err
	}

	return s.repo.GetReminder(ctx, tenantID, id)
}
