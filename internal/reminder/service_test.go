package reminder_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MrJamesThe3rd/payreminder/internal/reminder"
	"github.com/MrJamesThe3rd/payreminder/internal/reminder/memstore"
)

var (
	tenantID = uuid.MustParse("5b0c4a3e-1b0f-4c36-9a59-2f6e0c1d7a01")
	fixedNow = time.Date(2026, 3, 10, 14, 30, 0, 0, time.UTC)
)

func clock() time.Time { return fixedNow }

func date(y, m, d int) time.Time {
	return time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC)
}

func TestService_Create(t *testing.T) {
	type args struct {
		params reminder.CreateParams
	}

	type testCase struct {
		name      string
		args      args
		setupMock func(m *reminder.MockRepository)
		wantErr   error
	}

	tests := []testCase{
		{
			name: "Success",
			args: args{
				params: reminder.CreateParams{
					Type:        reminder.TypeTaxDue,
					DueDate:     time.Date(2026, 3, 26, 9, 0, 0, 0, time.UTC),
					Amount:      125000,
					Currency:    "try",
					Description: "  VAT return  ",
				},
			},
			setupMock: func(m *reminder.MockRepository) {
				m.EXPECT().
					CreateReminder(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, r *reminder.Reminder) error {
						assert.Equal(t, tenantID, r.TenantID)
						assert.Equal(t, date(2026, 3, 26), r.DueDate)
						assert.Equal(t, "TRY", r.Currency)
						assert.Equal(t, "VAT return", r.Description)
						assert.Equal(t, reminder.DefaultDaysBefore, r.ReminderDaysBefore)
						assert.True(t, r.IsManual())

						r.ID = uuid.New()

						return nil
					})
			},
		},
		{
			name: "UnknownType",
			args: args{
				params: reminder.CreateParams{
					Type:        "birthday",
					DueDate:     date(2026, 3, 26),
					Amount:      100,
					Description: "x",
				},
			},
			wantErr: reminder.ErrValidation,
		},
		{
			name: "NonPositiveAmount",
			args: args{
				params: reminder.CreateParams{
					Type:        reminder.TypeOther,
					DueDate:     date(2026, 3, 26),
					Amount:      0,
					Description: "x",
				},
			},
			wantErr: reminder.ErrValidation,
		},
		{
			name: "MissingDueDate",
			args: args{
				params: reminder.CreateParams{
					Type:        reminder.TypeOther,
					Amount:      100,
					Description: "x",
				},
			},
			wantErr: reminder.ErrValidation,
		},
		{
			name: "BadCurrency",
			args: args{
				params: reminder.CreateParams{
					Type:        reminder.TypeOther,
					DueDate:     date(2026, 3, 26),
					Amount:      100,
					Currency:    "XXYZ",
					Description: "x",
				},
			},
			wantErr: reminder.ErrValidation,
		},
		{
			name: "OffsetOutOfRange",
			args: args{
				params: reminder.CreateParams{
					Type:               reminder.TypeOther,
					DueDate:            date(2026, 3, 26),
					Amount:             100,
					Description:        "x",
					ReminderDaysBefore: new(400),
				},
			},
			wantErr: reminder.ErrValidation,
		},
		{
			name: "RepoError",
			args: args{
				params: reminder.CreateParams{
					Type:        reminder.TypeOther,
					DueDate:     date(2026, 3, 26),
					Amount:      100,
					Description: "x",
				},
			},
			setupMock: func(m *reminder.MockRepository) {
				m.EXPECT().
					CreateReminder(gomock.Any(), gomock.Any()).
					Return(errors.New("db error"))
			},
			wantErr: errors.New("db error"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			repo := reminder.NewMockRepository(ctrl)
			if tt.setupMock != nil {
				tt.setupMock(repo)
			}

			svc := reminder.NewService(repo, reminder.WithClock(clock))
			got, err := svc.Create(context.Background(), tenantID, tt.args.params)

			if tt.wantErr != nil {
				require.Error(t, err)
				assert.Nil(t, got)

				if errors.Is(tt.wantErr, reminder.ErrValidation) {
					assert.ErrorIs(t, err, reminder.ErrValidation)
				}

				return
			}

			require.NoError(t, err)
			assert.NotEqual(t, uuid.Nil, got.ID)
		})
	}
}

func TestService_List(t *testing.T) {
	today := date(2026, 3, 10)
	nextWeek := date(2026, 3, 17)

	type testCase struct {
		name      string
		filter    reminder.ListFilter
		setupMock func(m *reminder.MockRepository)
		wantPage  *reminder.Page
		wantErr   bool
	}

	tests := []testCase{
		{
			name:   "Defaults",
			filter: reminder.ListFilter{},
			setupMock: func(m *reminder.MockRepository) {
				m.EXPECT().
					ListReminders(gomock.Any(), tenantID, reminder.Query{Limit: reminder.DefaultPageSize}).
					Return([]*reminder.Reminder{{ID: uuid.New()}, {ID: uuid.New()}}, 45, nil)
			},
			wantPage: &reminder.Page{Total: 45, Page: 1, Limit: 20, TotalPages: 3},
		},
		{
			name:   "Upcoming",
			filter: reminder.ListFilter{Upcoming: true, Page: 2, Limit: 10},
			setupMock: func(m *reminder.MockRepository) {
				m.EXPECT().
					ListReminders(gomock.Any(), tenantID, reminder.Query{
						IsPaid:  new(false),
						DueFrom: &today,
						DueTo:   &nextWeek,
						Offset:  10,
						Limit:   10,
					}).
					Return(nil, 0, nil)
			},
			wantPage: &reminder.Page{Page: 2, Limit: 10},
		},
		{
			name:   "OverdueOverridesIsPaid",
			filter: reminder.ListFilter{Overdue: true, IsPaid: new(true), Limit: 500},
			setupMock: func(m *reminder.MockRepository) {
				m.EXPECT().
					ListReminders(gomock.Any(), tenantID, reminder.Query{
						IsPaid:    new(false),
						DueBefore: &today,
						Limit:     reminder.MaxPageSize,
					}).
					Return(nil, 0, nil)
			},
			wantPage: &reminder.Page{Page: 1, Limit: reminder.MaxPageSize},
		},
		{
			name:    "UpcomingAndOverdue",
			filter:  reminder.ListFilter{Upcoming: true, Overdue: true},
			wantErr: true,
		},
		{
			name:    "UnknownType",
			filter:  reminder.ListFilter{Type: new(reminder.Type("nope"))},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			repo := reminder.NewMockRepository(ctrl)
			if tt.setupMock != nil {
				tt.setupMock(repo)
			}

			svc := reminder.NewService(repo, reminder.WithClock(clock))
			got, err := svc.List(context.Background(), tenantID, tt.filter)

			if tt.wantErr {
				assert.ErrorIs(t, err, reminder.ErrValidation)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.wantPage.Total, got.Total)
			assert.Equal(t, tt.wantPage.Page, got.Page)
			assert.Equal(t, tt.wantPage.Limit, got.Limit)
			assert.Equal(t, tt.wantPage.TotalPages, got.TotalPages)
		})
	}
}

func TestService_Update(t *testing.T) {
	id := uuid.New()
	invoiceID := uuid.New()

	manual := func() *reminder.Reminder {
		return &reminder.Reminder{
			ID:                 id,
			TenantID:           tenantID,
			Type:               reminder.TypeOther,
			DueDate:            date(2026, 4, 1),
			Amount:             5000,
			Currency:           "TRY",
			Description:        "Rent",
			ReminderDaysBefore: 3,
		}
	}

	automated := func() *reminder.Reminder {
		r := manual()
		r.InvoiceID = &invoiceID
		r.Type = reminder.TypeCollectionDue

		return r
	}

	t.Run("PartialUpdate", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		repo := reminder.NewMockRepository(ctrl)
		repo.EXPECT().GetReminder(gomock.Any(), tenantID, id).Return(manual(), nil)
		repo.EXPECT().
			UpdateReminder(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, r *reminder.Reminder) error {
				assert.Equal(t, "Office rent", r.Description)
				assert.Equal(t, 5, r.ReminderDaysBefore)
				assert.Equal(t, int64(5000), r.Amount)
				assert.Equal(t, date(2026, 4, 1), r.DueDate)

				return nil
			})

		svc := reminder.NewService(repo)
		got, err := svc.Update(context.Background(), tenantID, id, reminder.UpdateParams{
			Description:        new("Office rent"),
			ReminderDaysBefore: new(5),
		})
		require.NoError(t, err)
		assert.Equal(t, "Office rent", got.Description)
	})

	t.Run("SourceLinkedNonSourceField", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		repo := reminder.NewMockRepository(ctrl)
		repo.EXPECT().GetReminder(gomock.Any(), tenantID, id).Return(automated(), nil)
		repo.EXPECT().UpdateReminder(gomock.Any(), gomock.Any()).Return(nil)

		svc := reminder.NewService(repo)
		_, err := svc.Update(context.Background(), tenantID, id, reminder.UpdateParams{ReminderDaysBefore: new(7)})
		require.NoError(t, err)
	})

	t.Run("SourceLinkedAmount", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		repo := reminder.NewMockRepository(ctrl)
		repo.EXPECT().GetReminder(gomock.Any(), tenantID, id).Return(automated(), nil)

		svc := reminder.NewService(repo)
		_, err := svc.Update(context.Background(), tenantID, id, reminder.UpdateParams{Amount: new(int64(1))})
		assert.ErrorIs(t, err, reminder.ErrValidation)
	})

	t.Run("NotFound", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		repo := reminder.NewMockRepository(ctrl)
		repo.EXPECT().GetReminder(gomock.Any(), tenantID, id).Return(nil, reminder.ErrNotFound)

		svc := reminder.NewService(repo)
		_, err := svc.Update(context.Background(), tenantID, id, reminder.UpdateParams{Description: new("x")})
		assert.ErrorIs(t, err, reminder.ErrNotFound)
	})

	t.Run("EmptyDescription", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		svc := reminder.NewService(reminder.NewMockRepository(ctrl))
		_, err := svc.Update(context.Background(), tenantID, id, reminder.UpdateParams{Description: new("   ")})
		assert.ErrorIs(t, err, reminder.ErrValidation)
	})
}

func TestService_Delete(t *testing.T) {
	id := uuid.New()
	invoiceID := uuid.New()

	tests := []struct {
		name      string
		setupMock func(m *reminder.MockRepository)
		wantErr   error
	}{
		{
			name: "Manual",
			setupMock: func(m *reminder.MockRepository) {
				m.EXPECT().GetReminder(gomock.Any(), tenantID, id).Return(&reminder.Reminder{ID: id, TenantID: tenantID}, nil)
				m.EXPECT().DeleteReminder(gomock.Any(), tenantID, id).Return(nil)
			},
		},
		{
			name: "SourceLinked",
			setupMock: func(m *reminder.MockRepository) {
				m.EXPECT().GetReminder(gomock.Any(), tenantID, id).Return(&reminder.Reminder{ID: id, TenantID: tenantID, InvoiceID: &invoiceID}, nil)
			},
			wantErr: reminder.ErrValidation,
		},
		{
			name: "NotFound",
			setupMock: func(m *reminder.MockRepository) {
				m.EXPECT().GetReminder(gomock.Any(), tenantID, id).Return(nil, reminder.ErrNotFound)
			},
			wantErr: reminder.ErrNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			repo := reminder.NewMockRepository(ctrl)
			tt.setupMock(repo)

			err := reminder.NewService(repo).Delete(context.Background(), tenantID, id)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}

			assert.NoError(t, err)
		})
	}
}

func TestService_MarkAsPaid_Twice(t *testing.T) {
	store := memstore.New()
	svc := reminder.NewService(store, reminder.WithClock(clock))
	ctx := context.Background()

	r, err := svc.Create(ctx, tenantID, reminder.CreateParams{
		Type:        reminder.TypeOther,
		DueDate:     date(2026, 3, 20),
		Amount:      1000,
		Description: "Insurance",
	})
	require.NoError(t, err)

	paid, err := svc.MarkAsPaid(ctx, tenantID, r.ID)
	require.NoError(t, err)
	require.True(t, paid.IsPaid)
	require.NotNil(t, paid.PaidAt)
	firstPaidAt := *paid.PaidAt

	svc = reminder.NewService(store, reminder.WithClock(func() time.Time { return fixedNow.Add(time.Hour) }))

	_, err = svc.MarkAsPaid(ctx, tenantID, r.ID)
	assert.ErrorIs(t, err, reminder.ErrAlreadyPaid)
	assert.ErrorIs(t, err, reminder.ErrValidation)

	got, err := svc.Get(ctx, tenantID, r.ID)
	require.NoError(t, err)
	assert.True(t, got.IsPaid)
	assert.Equal(t, firstPaidAt, *got.PaidAt)
}

func TestService_MarkAsPaid_OtherTenant(t *testing.T) {
	store := memstore.New()
	svc := reminder.NewService(store)
	ctx := context.Background()

	r, err := svc.Create(ctx, tenantID, reminder.CreateParams{
		Type:        reminder.TypeOther,
		DueDate:     date(2026, 3, 20),
		Amount:      1000,
		Description: "Insurance",
	})
	require.NoError(t, err)

	_, err = svc.MarkAsPaid(ctx, uuid.New(), r.ID)
	assert.ErrorIs(t, err, reminder.ErrNotFound)
}

func TestService_DashboardStats(t *testing.T) {
	store := memstore.New()
	svc := reminder.NewService(store, reminder.WithClock(clock))
	ctx := context.Background()

	for _, seed := range []struct {
		amount int64
		due    time.Time
		paid   bool
	}{
		{amount: 100, due: date(2026, 3, 11)},
		{amount: 200, due: date(2026, 3, 17)},
		{amount: 50, due: date(2026, 3, 2)},
		{amount: 999, due: date(2026, 3, 12), paid: true},
		{amount: 777, due: date(2026, 4, 30)},
	} {
		store.Seed(reminder.Reminder{
			TenantID: tenantID,
			Type:     reminder.TypeOther,
			Amount:   seed.amount,
			DueDate:  seed.due,
			IsPaid:   seed.paid,
		})
	}

	store.Seed(reminder.Reminder{TenantID: uuid.New(), Amount: 5, DueDate: date(2026, 3, 11)})

	stats, err := svc.DashboardStats(ctx, tenantID)
	require.NoError(t, err)
	assert.Equal(t, &reminder.Stats{
		UpcomingCount:  2,
		UpcomingAmount: 300,
		OverdueCount:   1,
		OverdueAmount:  50,
	}, stats)
}

func TestService_CreateBatch_RejectsInvalidRows(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc := reminder.NewService(reminder.NewMockRepository(ctrl))

	_, err := svc.CreateBatch(context.Background(), tenantID, []reminder.CreateParams{
		{Type: reminder.TypeOther, DueDate: date(2026, 3, 20), Amount: 10, Description: "ok"},
		{Type: reminder.TypeOther, DueDate: date(2026, 3, 20), Amount: -1, Description: "bad"},
	})
	require.ErrorIs(t, err, reminder.ErrValidation)
	assert.Contains(t, err.Error(), "row 2")
}

func TestReminder_FireDate(t *testing.T) {
	r := reminder.Reminder{DueDate: date(2026, 3, 1), ReminderDaysBefore: 3}
	assert.Equal(t, date(2026, 2, 26), r.FireDate())
}
