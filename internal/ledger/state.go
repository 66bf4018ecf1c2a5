package ledger

import (
	"time"

	"github.com/semiha11/Fincio/internal/models"
)

// Key names one record store in local storage.
type Key string

const (
	KeyFinancialData     Key = "@fincio_financial_data"
	KeyDebts             Key = "@fincio_debts_list"
	KeyRegularIncome     Key = "@fincio_regular_income"
	KeyIrregularIncome   Key = "@fincio_irregular_income"
	KeyUserSettings      Key = "@fincio_user_settings"
	KeyRecurringPayments Key = "@fincio_recurring_payments"
	KeyExtraPayments     Key = "@fincio_extra_payments"
	KeyBudgets           Key = "@fincio_budgets"
	KeyGoals             Key = "@fincio_goals"
	KeyAccounts          Key = "@fincio_accounts"
	KeyAssets            Key = "@fincio_assets"
	KeyNotifications     Key = "@fincio_notifications"
	KeyTransactions      Key = "@fincio_transactions"
	KeyUserProfile       Key = "@fincio_user_profile"
	KeyFirstLogin        Key = "@fincio_first_login"
	KeyPayYourselfRule   Key = "@fincio_pay_yourself_rule"
	KeyStartDate         Key = "@fincio_start_date"
)

// AllKeys lists every key the ledger reads, writes or clears.
var AllKeys = []Key{
	KeyFinancialData,
	KeyDebts,
	KeyRegularIncome,
	KeyIrregularIncome,
	KeyUserSettings,
	KeyRecurringPayments,
	KeyExtraPayments,
	KeyBudgets,
	KeyGoals,
	KeyAccounts,
	KeyAssets,
	KeyNotifications,
	KeyTransactions,
	KeyUserProfile,
	KeyFirstLogin,
	KeyPayYourselfRule,
	KeyStartDate,
}

// State is the full set of record stores.
type State struct {
	FinancialData     models.FinancialData      `json:"financialData"`
	Debts             []models.Debt             `json:"debts"`
	RegularIncome     []models.IncomeItem       `json:"regularIncome"`
	IrregularIncome   []models.IncomeItem       `json:"irregularIncome"`
	Transactions      []models.Transaction      `json:"transactions"`
	RecurringPayments []models.RecurringPayment `json:"recurringPayments"`
	ExtraPayments     []models.ExtraPayment     `json:"extraPayments"`
	Budgets           []models.Budget           `json:"budgets"`
	Goals             []models.Goal             `json:"goals"`
	Accounts          []models.Account          `json:"accounts"`
	Assets            []models.Asset            `json:"assets"`
	Notifications     []models.Notification     `json:"notifications"`
	Settings          models.UserSettings       `json:"userSettings"`
	Profile           models.UserProfile        `json:"userProfile"`
	PayYourselfRule   models.PayYourselfRule    `json:"payYourselfRule"`
	FirstLoginDone    bool                      `json:"firstLoginDone"`
	StartDate         *time.Time                `json:"startDate,omitempty"`
}

func defaultState() State {
	return State{
		Debts:             []models.Debt{},
		RegularIncome:     []models.IncomeItem{},
		IrregularIncome:   []models.IncomeItem{},
		Transactions:      []models.Transaction{},
		RecurringPayments: []models.RecurringPayment{},
		ExtraPayments:     []models.ExtraPayment{},
		Budgets:           []models.Budget{},
		Goals:             []models.Goal{},
		Accounts:          []models.Account{},
		Assets:            []models.Asset{},
		Notifications:     []models.Notification{},
		Settings:          models.DefaultSettings(),
		PayYourselfRule:   models.DefaultPayYourselfRule(),
	}
}

// field returns a pointer to the store persisted under k.
func (s *State) field(k Key) any {
	switch k {
	case KeyFinancialData:
		return &s.FinancialData
	case KeyDebts:
		return &s.Debts
	case KeyRegularIncome:
		return &s.RegularIncome
	case KeyIrregularIncome:
		return &s.IrregularIncome
	case KeyUserSettings:
		return &s.Settings
	case KeyRecurringPayments:
		return &s.RecurringPayments
	case KeyExtraPayments:
		return &s.ExtraPayments
	case KeyBudgets:
		return &s.Budgets
	case KeyGoals:
		return &s.Goals
	case KeyAccounts:
		return &s.Accounts
	case KeyAssets:
		return &s.Assets
	case KeyNotifications:
		return &s.Notifications
	case KeyTransactions:
		return &s.Transactions
	case KeyUserProfile:
		return &s.Profile
	case KeyFirstLogin:
		return &s.FirstLoginDone
	case KeyPayYourselfRule:
		return &s.PayYourselfRule
	case KeyStartDate:
		return &s.StartDate
	}
	return nil
}

func (s State) clone() State {
	c := s
	c.Debts = cloneSlice(s.Debts)
	c.RegularIncome = cloneSlice(s.RegularIncome)
	c.IrregularIncome = cloneSlice(s.IrregularIncome)
	c.Transactions = cloneSlice(s.Transactions)
	c.RecurringPayments = cloneSlice(s.RecurringPayments)
	c.ExtraPayments = cloneSlice(s.ExtraPayments)
	c.Budgets = cloneSlice(s.Budgets)
	c.Goals = cloneSlice(s.Goals)
	c.Accounts = cloneSlice(s.Accounts)
	c.Assets = cloneSlice(s.Assets)
	c.Notifications = cloneSlice(s.Notifications)
	if s.StartDate != nil {
		t := *s.StartDate
		c.StartDate = &t
	}
	return c
}

func cloneSlice[T any](s []T) []T {
	return append(make([]T, 0, len(s)), s...)
}

func indexByID[T any](items []T, id string, idOf func(T) string) int {
	for i := range items {
		if idOf(items[i]) == id {
			return i
		}
	}
	return -1
}

// removeByID returns a new slice without the item, leaving items untouched.
func removeByID[T any](items []T, id string, idOf func(T) string) ([]T, bool) {
	i := indexByID(items, id, idOf)
	if i < 0 {
		return items, false
	}
	return append(items[:i:i], items[i+1:]...), true
}
