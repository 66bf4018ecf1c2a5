package format

import (
	"testing"
	"time"

	"github.com/semiha11/Fincio/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedNow() time.Time {
	return time.Date(2024, 3, 15, 14, 30, 0, 0, time.UTC)
}

func newFormatter(mutate func(*models.UserSettings)) *Formatter {
	s := models.DefaultSettings()
	if mutate != nil {
		mutate(&s)
	}
	return New(s, fixedNow).In(time.UTC)
}

func TestCurrency(t *testing.T) {
	tests := []struct {
		name     string
		currency string
		amount   float64
		want     string
	}{
		{"lira with grouping", "TRY", 1234, "₺1.234"},
		{"rounds fraction", "TRY", 99.6, "₺100"},
		{"usd converted", "USD", 3000, "$100"},
		{"eur converted", "EUR", 3300, "€100"},
		{"negative", "TRY", -2500, "-₺2.500"},
		{"zero", "TRY", 0, "₺0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFormatter(func(s *models.UserSettings) { s.Currency = tt.currency })
			assert.Equal(t, tt.want, f.Currency(tt.amount))
		})
	}
}

func TestDate(t *testing.T) {
	f := newFormatter(nil)

	assert.Equal(t, "Bugün, 09:05", f.Date("2024-03-15T09:05:00Z"))
	assert.Equal(t, "Dün, 23:59", f.Date("2024-03-14T23:59:00.000Z"))
	assert.Equal(t, "01.02.2024", f.Date("2024-02-01T10:00:00Z"))
	assert.Equal(t, "", f.Date(""))
	assert.Equal(t, "not a date", f.Date("not a date"))
}

func TestDate_Formats(t *testing.T) {
	f := newFormatter(func(s *models.UserSettings) {
		s.DateFormat = models.DateFormatMDY
		s.TimeFormat = models.TimeFormat12h
	})

	assert.Equal(t, "Bugün, 9:05 PM", f.Date("2024-03-15T21:05:00Z"))
	assert.Equal(t, "Bugün, 12:10 AM", f.Date("2024-03-15T00:10:00Z"))
	assert.Equal(t, "02/01/2024", f.Date("2024-02-01T10:00:00Z"))
}

func TestGroupTransactionsByDate(t *testing.T) {
	f := newFormatter(nil)
	txs := []models.Transaction{
		{ID: "1", Timestamp: time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC)},
		{ID: "2", Timestamp: time.Date(2024, 3, 14, 10, 0, 0, 0, time.UTC)},
		{ID: "3", Timestamp: time.Date(2024, 3, 15, 8, 0, 0, 0, time.UTC)},
		{ID: "4", Timestamp: time.Date(2024, 1, 2, 8, 0, 0, 0, time.UTC)},
		{ID: "5", Date: "Geçen ay"},
	}

	groups := f.GroupTransactionsByDate(txs)
	require.Len(t, groups, 4)
	assert.Equal(t, "Bugün", groups[0].Title)
	assert.Len(t, groups[0].Data, 2)
	assert.Equal(t, "Dün", groups[1].Title)
	assert.Equal(t, "02.01.2024", groups[2].Title)
	assert.Equal(t, "Geçen ay", groups[3].Title)
}

func TestDaysRemaining(t *testing.T) {
	now := time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)

	assert.Equal(t, 5, DaysRemaining(now, 20))
	// Day already passed rolls to next month: Apr 10 00:00 is 25.5 days away.
	assert.Equal(t, 26, DaysRemaining(now, 10))
	assert.Equal(t, 1, DaysRemaining(now, 15))
}
