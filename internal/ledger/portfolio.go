package ledger

import (
	"github.com/shopspring/decimal"

	"github.com/semiha11/Fincio/internal/assetqty"
	"github.com/semiha11/Fincio/internal/integrations/quotes"
	"github.com/semiha11/Fincio/internal/models"
)

// PriceLookup returns the live unit price of a holding when the market feeds know it.
type PriceLookup func(assetType models.AssetType, name string) (float64, bool)

// Holding is one asset valued at its live price, or its stored price without one.
type Holding struct {
	Asset       models.Asset      `json:"asset"`
	Quantity    float64           `json:"quantity"`
	Price       float64           `json:"price"`
	HasLiveData bool              `json:"hasLiveData"`
	Value       float64           `json:"value"`
	ProfitLoss  quotes.ProfitLoss `json:"profitLoss"`
}

// Portfolio is the valuation of every holding.
type Portfolio struct {
	Holdings   []Holding         `json:"holdings"`
	TotalValue float64           `json:"totalValue"`
	TotalCost  float64           `json:"totalCost"`
	ProfitLoss quotes.ProfitLoss `json:"profitLoss"`
}

// Portfolio values the holdings. Real estate counts its price once; every
// other type is quantity times unit price. live may be nil.
func (l *Ledger) Portfolio(live PriceLookup) Portfolio {
	l.mu.Lock()
	assets := cloneSlice(l.st.Assets)
	l.mu.Unlock()

	p := Portfolio{Holdings: make([]Holding, 0, len(assets))}
	value, cost := decimal.Zero, decimal.Zero
	for _, a := range assets {
		h := valueHolding(a, live)
		value = value.Add(decimal.NewFromFloat(h.ProfitLoss.CurrentValue))
		cost = cost.Add(decimal.NewFromFloat(h.ProfitLoss.BuyValue))
		p.Holdings = append(p.Holdings, h)
	}
	p.TotalValue = value.InexactFloat64()
	p.TotalCost = cost.InexactFloat64()
	p.ProfitLoss = quotes.CalculateProfitLoss(p.TotalCost, p.TotalValue, 1)
	return p
}

func valueHolding(a models.Asset, live PriceLookup) Holding {
	h := Holding{
		Asset:    a,
		Quantity: assetqty.Value(a.Amount).InexactFloat64(),
		Price:    num(a.CurrentPrice),
	}
	if live != nil {
		if price, ok := live(a.Type, a.Name); ok && positive(price) {
			h.Price = price
			h.HasLiveData = true
		}
	}
	units := h.Quantity
	if a.Type == models.AssetRealEstate {
		units = 1
	}
	h.ProfitLoss = quotes.CalculateProfitLoss(num(a.AvgCost), h.Price, units)
	h.Value = h.ProfitLoss.CurrentValue
	return h
}
