package ledger

import (
	"math"

	"github.com/semiha11/Fincio/internal/format"
	"github.com/semiha11/Fincio/internal/models"
)

// Summarize derives the summary figures from the stores. It never fails;
// a non-finite amount counts as zero.
//
// TotalIncome counts regular income only while TotalBudgetLimit also adds
// irregular income. The asymmetry is kept as the app has always shown it.
func Summarize(st *State) models.Summary {
	regular := sum(st.RegularIncome, func(i models.IncomeItem) models.Amount { return i.Amount })
	irregular := sum(st.IrregularIncome, func(i models.IncomeItem) models.Amount { return i.Amount })

	expenses := sum(st.Transactions, func(t models.Transaction) models.Amount { return t.Amount }) +
		sum(st.RecurringPayments, func(p models.RecurringPayment) models.Amount { return p.Amount }) +
		sum(st.ExtraPayments, func(p models.ExtraPayment) models.Amount { return p.Amount })

	base := regular * (num(st.Settings.BudgetLimitPercentage) / 100)
	if manual := num(st.Settings.BudgetLimitAmount); manual > 0 {
		base = manual
	}
	limit := base + irregular

	debts := 0.0
	for _, d := range st.Debts {
		if !d.IsPaid() {
			debts += num(d.RemainingAmount)
		}
	}

	return models.Summary{
		TotalRegularIncome:   regular,
		TotalIrregularIncome: irregular,
		TotalIncome:          regular,
		TotalExpenses:        expenses,
		SavingsPotential:     regular - expenses,
		TotalBudgetLimit:     limit,
		RemainingBudget:      limit - expenses,
		TotalDebts:           debts,
		NetWorth:             num(st.FinancialData.Assets) - debts,
	}
}

func sum[T any](items []T, amount func(T) models.Amount) float64 {
	total := 0.0
	for _, it := range items {
		total += num(amount(it))
	}
	return total
}

func num(a models.Amount) float64 {
	f := float64(a)
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}

// Summary recomputes the derived figures from the current stores.
func (l *Ledger) Summary() models.Summary {
	l.mu.Lock()
	defer l.mu.Unlock()
	return Summarize(&l.st)
}

// FinancialData returns the assets overlay with live debts and net worth.
func (l *Ledger) FinancialData() models.FinancialView {
	l.mu.Lock()
	defer l.mu.Unlock()
	s := Summarize(&l.st)
	return models.FinancialView{
		Assets:   num(l.st.FinancialData.Assets),
		Debts:    s.TotalDebts,
		NetWorth: s.NetWorth,
	}
}

// Formatter returns formatting helpers for the current settings.
func (l *Ledger) Formatter() *format.Formatter {
	l.mu.Lock()
	defer l.mu.Unlock()
	return format.New(l.st.Settings, l.now)
}
