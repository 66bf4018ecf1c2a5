package models

// IncomeType classifies where an income item comes from.
type IncomeType string

const (
	ActiveIncome  IncomeType = "ActiveIncome"
	PassiveIncome IncomeType = "PassiveIncome"
	SideIncome    IncomeType = "SideIncome"
)

// ListType selects the regular or irregular income store.
type ListType string

const (
	Regular   ListType = "regular"
	Irregular ListType = "irregular"
)

// IncomeItem is one income entry.
type IncomeItem struct {
	ID         string     `json:"id"`
	Name       string     `json:"name"`
	Amount     Amount     `json:"amount"`
	Frequency  string     `json:"frequency,omitempty"`
	Date       string     `json:"date"`
	IncomeType IncomeType `json:"incomeType"`
	ListType   ListType   `json:"type"`
}
