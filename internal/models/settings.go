package models

// UserSettings holds display preferences and the budget limit configuration.
type UserSettings struct {
	ThemeMode             string `json:"themeMode"`
	Currency              string `json:"currency"`
	AccentColor           string `json:"accentColor"`
	FinancialMonthStart   int    `json:"financialMonthStart"`
	Region                string `json:"region"`
	DateFormat            string `json:"dateFormat"`
	TimeFormat            string `json:"timeFormat"`
	BudgetLimitPercentage Amount `json:"budgetLimitPercentage"`
	BudgetLimitAmount     Amount `json:"budgetLimitAmount"`
}

// Date and time format options.
const (
	DateFormatDMY = "DD.MM.YYYY"
	DateFormatMDY = "MM/DD/YYYY"
	TimeFormat24h = "24h"
	TimeFormat12h = "12h"
)

// DefaultSettings returns the settings of a fresh installation.
func DefaultSettings() UserSettings {
	return UserSettings{
		ThemeMode:             "dark",
		Currency:              "TRY",
		AccentColor:           "#10b981",
		FinancialMonthStart:   1,
		Region:                "TR",
		DateFormat:            DateFormatDMY,
		TimeFormat:            TimeFormat24h,
		BudgetLimitPercentage: 100,
		BudgetLimitAmount:     0,
	}
}

// UserProfile is the locally stored display identity.
type UserProfile struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// PayYourselfRule is the "pay yourself first" savings rule.
type PayYourselfRule struct {
	Percent Amount `json:"percent"`
	Amount  Amount `json:"amount"`
	Active  bool   `json:"active"`
}

// DefaultPayYourselfRule returns the rule of a fresh installation.
func DefaultPayYourselfRule() PayYourselfRule {
	return PayYourselfRule{Percent: 10}
}
