package models

// NotificationType groups notifications for filtering.
type NotificationType string

const (
	NotifyPayment  NotificationType = "payment"
	NotifyAnomaly  NotificationType = "anomaly"
	NotifySpending NotificationType = "spending"
	NotifyIncome   NotificationType = "income"
)

// Notification is an in-app alert. Only IsRead changes after creation.
type Notification struct {
	ID     string           `json:"id"`
	Type   NotificationType `json:"type"`
	Title  string           `json:"title"`
	Desc   string           `json:"desc"`
	Time   string           `json:"time"`
	IsRead bool             `json:"isRead"`
}
