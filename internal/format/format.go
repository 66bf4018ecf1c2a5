// Package format renders amounts and dates according to the user's settings.
package format

import (
	"fmt"
	"math"
	"time"

	"github.com/semiha11/Fincio/internal/models"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// ExchangeRates converts reference-currency amounts for display only.
var ExchangeRates = map[string]float64{
	"TRY": 1,
	"USD": 30,
	"EUR": 33,
}

var currencySymbols = map[string]string{
	"TRY": "₺",
	"USD": "$",
	"EUR": "€",
}

var regionLanguages = map[string]language.Tag{
	"TR": language.Turkish,
	"US": language.AmericanEnglish,
	"DE": language.German,
}

// Relative day labels.
const (
	Today     = "Bugün"
	Yesterday = "Dün"
)

// Formatter formats values for one settings snapshot.
type Formatter struct {
	settings models.UserSettings
	now      func() time.Time
	loc      *time.Location
}

// New builds a Formatter; dates are compared in the local time zone.
func New(settings models.UserSettings, now func() time.Time) *Formatter {
	if now == nil {
		now = time.Now
	}
	return &Formatter{settings: settings, now: now, loc: time.Local}
}

// In returns a copy that compares and prints dates in loc.
func (f *Formatter) In(loc *time.Location) *Formatter {
	c := *f
	c.loc = loc
	return &c
}

// Currency converts amount with the static rate of the configured currency
// and prints it with no fractional digits.
func (f *Formatter) Currency(amount float64) string {
	code := f.settings.Currency
	rate, ok := ExchangeRates[code]
	if !ok || rate == 0 {
		rate = 1
	}
	converted := math.Round(amount / rate)
	if math.IsNaN(converted) || math.IsInf(converted, 0) {
		converted = 0
	}

	tag, ok := regionLanguages[f.settings.Region]
	if !ok {
		tag = language.Turkish
	}
	symbol, ok := currencySymbols[code]
	if !ok {
		symbol = code + " "
	}

	sign := ""
	if converted < 0 {
		sign = "-"
		converted = -converted
	}
	return sign + symbol + message.NewPrinter(tag).Sprintf("%d", int64(converted))
}

// Date formats an ISO timestamp. Today and yesterday are shown as relative
// labels with the time of day; older dates use the configured date pattern.
func (f *Formatter) Date(iso string) string {
	if iso == "" {
		return ""
	}
	t, err := time.Parse(time.RFC3339Nano, iso)
	if err != nil {
		return iso
	}
	return f.DateTime(t)
}

// DateTime is Date for an already parsed time.
func (f *Formatter) DateTime(t time.Time) string {
	if label, ok := f.relativeDay(t); ok {
		return fmt.Sprintf("%s, %s", label, f.clock(t.In(f.loc)))
	}
	return f.calendarDate(t.In(f.loc))
}

func (f *Formatter) relativeDay(t time.Time) (string, bool) {
	now := f.now().In(f.loc)
	t = t.In(f.loc)
	if sameDay(t, now) {
		return Today, true
	}
	if sameDay(t, now.AddDate(0, 0, -1)) {
		return Yesterday, true
	}
	return "", false
}

func (f *Formatter) clock(t time.Time) string {
	if f.settings.TimeFormat == models.TimeFormat12h {
		return t.Format("3:04 PM")
	}
	return t.Format("15:04")
}

func (f *Formatter) calendarDate(t time.Time) string {
	if f.settings.DateFormat == models.DateFormatMDY {
		return t.Format("01/02/2006")
	}
	return t.Format("02.01.2006")
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// TransactionGroup is one dated section of the transaction list.
type TransactionGroup struct {
	Title string               `json:"title"`
	Data  []models.Transaction `json:"data"`
}

// GroupTransactionsByDate buckets transactions under Bugün, Dün or a date
// header, keeping the order in which headers first appear.
func (f *Formatter) GroupTransactionsByDate(txs []models.Transaction) []TransactionGroup {
	var groups []TransactionGroup
	index := make(map[string]int)
	for _, tx := range txs {
		key := tx.Date
		if !tx.Timestamp.IsZero() {
			if label, ok := f.relativeDay(tx.Timestamp); ok {
				key = label
			} else {
				key = f.calendarDate(tx.Timestamp.In(f.loc))
			}
		}
		i, ok := index[key]
		if !ok {
			i = len(groups)
			index[key] = i
			groups = append(groups, TransactionGroup{Title: key})
		}
		groups[i].Data = append(groups[i].Data, tx)
	}
	return groups
}

// DaysRemaining counts the days until the next occurrence of targetDay of the
// month, rolling over to next month once the day has passed.
func DaysRemaining(now time.Time, targetDay int) int {
	target := time.Date(now.Year(), now.Month(), targetDay, 0, 0, 0, 0, now.Location())
	if now.Day() > targetDay {
		target = time.Date(now.Year(), now.Month()+1, targetDay, 0, 0, 0, 0, now.Location())
	}
	diff := target.Sub(now)
	if diff < 0 {
		diff = -diff
	}
	return int(math.Ceil(diff.Hours() / 24))
}
