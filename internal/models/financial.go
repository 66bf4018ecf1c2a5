package models

// FinancialData is the persisted financial overlay. Debts is never stored;
// it is always derived from the debt list.
type FinancialData struct {
	Assets Amount `json:"assets"`
}

// FinancialView is FinancialData with the derived figures filled in.
type FinancialView struct {
	Assets   float64 `json:"assets"`
	Debts    float64 `json:"debts"`
	NetWorth float64 `json:"netWorth"`
}

// Summary holds every figure the aggregator derives from the record stores.
type Summary struct {
	TotalRegularIncome   float64 `json:"totalRegularIncome"`
	TotalIrregularIncome float64 `json:"totalIrregularIncome"`
	TotalIncome          float64 `json:"totalIncome"`
	TotalExpenses        float64 `json:"totalExpenses"`
	SavingsPotential     float64 `json:"savingsPotential"`
	TotalBudgetLimit     float64 `json:"totalBudgetLimit"`
	RemainingBudget      float64 `json:"remainingBudget"`
	TotalDebts           float64 `json:"totalDebts"`
	NetWorth             float64 `json:"netWorth"`
}
