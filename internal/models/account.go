package models

// Account is a bank or cash account the user keeps track of.
type Account struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Type     string `json:"type"`
	Balance  Amount `json:"balance"`
	Currency string `json:"currency"`
}

// Goal is a savings target.
type Goal struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Target   Amount `json:"target"`
	Current  Amount `json:"current"`
	Deadline string `json:"deadline,omitempty"`
	Color    string `json:"color"`
}

// Budget is a per-category spending envelope.
type Budget struct {
	ID       string `json:"id"`
	Category string `json:"category"`
	Limit    Amount `json:"limit"`
	Spent    Amount `json:"spent"`
	Color    string `json:"color,omitempty"`
}
