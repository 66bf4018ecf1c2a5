package models

import "time"

// AssetType is the kind of holding.
type AssetType string

const (
	AssetGold       AssetType = "gold"
	AssetCurrency   AssetType = "currency"
	AssetStock      AssetType = "stock"
	AssetCrypto     AssetType = "crypto"
	AssetFund       AssetType = "fund"
	AssetRealEstate AssetType = "real_estate"
	AssetCash       AssetType = "cash"
)

// Asset is a holding. Amount keeps the user's unit text, e.g. "10 Gram" or "$1000".
type Asset struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Amount       string    `json:"amount"`
	AvgCost      Amount    `json:"avgCost"`
	CurrentPrice Amount    `json:"currentPrice"`
	Type         AssetType `json:"type"`
	Color        string    `json:"color"`
	LastUpdated  time.Time `json:"lastUpdated"`
}

// FundingSource is how a new asset was paid for.
type FundingSource string

const (
	// FundBudget spends from the budget: an expense is logged and assets grow.
	FundBudget FundingSource = "budget"
	// FundCash converts cash already counted in assets; nothing else moves.
	FundCash FundingSource = "asset"
	// FundExisting records a holding the user already had: assets grow, no expense.
	FundExisting FundingSource = "existing"
)

// TradeOperation is the direction of an asset amount change.
type TradeOperation string

const (
	Buy  TradeOperation = "buy"
	Sell TradeOperation = "sell"
)
