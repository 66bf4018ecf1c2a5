package models

// PaymentType describes a recurring obligation.
type PaymentType string

const (
	PaymentFixed        PaymentType = "fixed"
	PaymentVariable     PaymentType = "variable"
	PaymentSubscription PaymentType = "subscription"
)

// RecurringPayment is an ongoing obligation counted once per computation.
type RecurringPayment struct {
	ID     string      `json:"id"`
	Name   string      `json:"name"`
	Amount Amount      `json:"amount"`
	Date   string      `json:"date"`
	Est    string      `json:"est"`
	Type   PaymentType `json:"type"`
}

// ExtraPaymentType is the only type an extra payment carries.
const ExtraPaymentType = "extra"

// ExtraPayment is a one-off payment.
type ExtraPayment struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Amount Amount `json:"amount"`
	Date   string `json:"date"`
	Type   string `json:"type"`
}
