package notify_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/payreminder/internal/notify"
	"github.com/MrJamesThe3rd/payreminder/internal/reminder"
)

func TestRenderer(t *testing.T) {
	rem := &reminder.Reminder{
		Description: "Acme Ltd - Invoice #1a2b3c4d",
		Amount:      150000,
		Currency:    "TRY",
		DueDate:     date(2026, 4, 1),
	}

	tests := []struct {
		locale      string
		wantTitle   string
		wantAmount  string
		wantMessage string
	}{
		{
			locale:      "tr",
			wantTitle:   "Ödeme hatırlatması",
			wantAmount:  "1.500,00 TRY",
			wantMessage: "Acme Ltd - Invoice #1a2b3c4d: 1.500,00 TRY tutarındaki ödemenin vadesi 01.04.2026",
		},
		{
			locale:      "en",
			wantTitle:   "Payment reminder",
			wantAmount:  "1,500.00 TRY",
			wantMessage: "Acme Ltd - Invoice #1a2b3c4d: 1,500.00 TRY due on 04/01/2026",
		},
	}

	for _, tt := range tests {
		t.Run(tt.locale, func(t *testing.T) {
			r, err := notify.NewRenderer(tt.locale)
			require.NoError(t, err)

			assert.Equal(t, tt.wantTitle, r.Title())
			assert.Equal(t, tt.wantAmount, r.Amount(rem.Amount, rem.Currency))
			assert.Equal(t, tt.wantMessage, r.Message(rem))
		})
	}
}

func TestNewRenderer_InvalidLocale(t *testing.T) {
	_, err := notify.NewRenderer("!!")
	assert.Error(t, err)
}
