package models

import "time"

// DebtStatus is the lifecycle state of a debt.
type DebtStatus string

const (
	DebtActive DebtStatus = "active"
	DebtPaid   DebtStatus = "paid"
)

// Debt tracks an outstanding liability. RemainingAmount stays within
// [0, TotalAmount]; a paid debt always has RemainingAmount == 0.
type Debt struct {
	ID              string     `json:"id"`
	Name            string     `json:"name"`
	Icon            string     `json:"icon"`
	RemainingAmount Amount     `json:"remainingAmount"`
	TotalAmount     Amount     `json:"totalAmount"`
	Status          DebtStatus `json:"status"`
	CompletedDate   *time.Time `json:"completedDate,omitempty"`
}

// IsPaid reports whether the debt has been closed.
func (d Debt) IsPaid() bool {
	return d.Status == DebtPaid
}

// PaymentSource selects where money for a debt payment or trade comes from.
type PaymentSource string

const (
	SourceBudget PaymentSource = "budget"
	SourceAsset  PaymentSource = "asset"
)
