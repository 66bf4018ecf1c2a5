package models

import "time"

// Categories written by compound actions.
const (
	CategoryDebtPayment = "Borç Ödemesi"
	CategoryInvestment  = "Yatırım"
)

// Transaction represents an expense. The store keeps them newest first.
type Transaction struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Category      string    `json:"category"`
	Amount        Amount    `json:"amount"`
	Icon          string    `json:"icon"`
	Date          string    `json:"date"`
	Timestamp     time.Time `json:"timestamp"`
	PaymentMethod string    `json:"paymentMethod,omitempty"`
}
