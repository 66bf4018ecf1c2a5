package ledger

import (
	"context"
	"encoding/json"
	"math"

	"github.com/semiha11/Fincio/internal/assetqty"
	"github.com/semiha11/Fincio/internal/models"
)

const iconInvestment = "💰"

var assetColors = map[models.AssetType]string{
	models.AssetGold:     "#f59e0b",
	models.AssetCurrency: "#3b82f6",
	models.AssetStock:    "#10b981",
	models.AssetCrypto:   "#f7931a",
}

func assetID(a models.Asset) string { return a.ID }

func checkPrices(a models.Asset) error {
	if err := checkNonNegative("currentPrice", a.CurrentPrice); err != nil {
		return err
	}
	return checkNonNegative("avgCost", a.AvgCost)
}

func (l *Ledger) prepareAsset(a models.Asset) (models.Asset, error) {
	if err := checkName(a.Name); err != nil {
		return a, err
	}
	if _, err := assetqty.Parse(a.Amount); err != nil {
		return a, invalid("amount", msgQuantity)
	}
	if err := checkPrices(a); err != nil {
		return a, err
	}
	if a.Type == "" {
		a.Type = models.AssetCash
	}
	if a.Color == "" {
		a.Color = assetColors[a.Type]
		if a.Color == "" {
			a.Color = "#8b5cf6"
		}
	}
	a.LastUpdated = l.now()
	return a, nil
}

// AddAsset appends a holding. The asset pool is left alone; callers that move
// money use PurchaseAsset or AddToAssets.
func (l *Ledger) AddAsset(ctx context.Context, a models.Asset) (models.Asset, error) {
	a, err := l.prepareAsset(a)
	if err != nil {
		return a, err
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	a = l.addAssetLocked(ctx, a)
	l.count("add_asset")
	return a, nil
}

func (l *Ledger) addAssetLocked(ctx context.Context, a models.Asset) models.Asset {
	a.ID = l.newID()
	l.st.Assets = append(cloneSlice(l.st.Assets), a)
	l.persistLocked(ctx, KeyAssets)
	l.mirrorAddLocked(CollAssets, a)
	return a
}

// PurchaseAsset adds a holding and books its cost by funding source:
//   - budget: an investment expense is logged and the asset pool grows
//   - existing: the asset pool grows, nothing is spent
//   - asset: cash already in the pool changes form, nothing else moves
func (l *Ledger) PurchaseAsset(ctx context.Context, a models.Asset, cost float64, source models.FundingSource) (models.Asset, error) {
	switch source {
	case models.FundBudget, models.FundExisting:
		if !positive(cost) {
			return a, invalid("cost", msgAmount)
		}
	case models.FundCash:
	default:
		return a, invalid("source", msgSource)
	}
	a, err := l.prepareAsset(a)
	if err != nil {
		return a, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	a = l.addAssetLocked(ctx, a)
	switch source {
	case models.FundBudget:
		l.addTransactionLocked(ctx, models.Transaction{
			Name:     a.Name + " Alımı",
			Category: models.CategoryInvestment,
			Amount:   models.Amount(cost),
			Icon:     iconInvestment,
		})
		l.addToAssetsLocked(ctx, cost)
	case models.FundExisting:
		l.addToAssetsLocked(ctx, cost)
	}
	l.count("purchase_asset")
	return a, nil
}

// UpdateAsset overlays patch on the holding with id.
func (l *Ledger) UpdateAsset(ctx context.Context, id string, patch json.RawMessage) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	i := indexByID(l.st.Assets, id, assetID)
	if i < 0 {
		return nil
	}
	next, err := applyPatch(l.st.Assets[i], patch)
	if err != nil {
		return err
	}
	next.ID = id
	if err := checkName(next.Name); err != nil {
		return err
	}
	if _, err := assetqty.Parse(next.Amount); err != nil {
		return invalid("amount", msgQuantity)
	}
	if err := checkPrices(next); err != nil {
		return err
	}
	next.LastUpdated = l.now()
	l.replaceAssetLocked(ctx, i, next)
	l.count("update_asset")
	return nil
}

func (l *Ledger) replaceAssetLocked(ctx context.Context, i int, a models.Asset) {
	items := cloneSlice(l.st.Assets)
	items[i] = a
	l.st.Assets = items
	l.persistLocked(ctx, KeyAssets)
	l.mirrorUpdateLocked(CollAssets, a.ID, a)
}

// DeleteAsset removes the holding with id. The asset pool is not touched.
func (l *Ledger) DeleteAsset(ctx context.Context, id string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	items, found := removeByID(l.st.Assets, id, assetID)
	if !found {
		return nil
	}
	l.st.Assets = items
	l.persistLocked(ctx, KeyAssets)
	l.mirrorDeleteLocked(CollAssets, id)
	l.count("delete_asset")
	return nil
}

// UpdateAssetAmount adds (buy) or subtracts (any other op) change from the
// holding's amount text, keeping its unit and flooring at zero. An unknown id
// or an amount without a number leaves the store as it is.
func (l *Ledger) UpdateAssetAmount(ctx context.Context, id, change string, op models.TradeOperation) error {
	if _, err := assetqty.ParseChange(change); err != nil {
		return invalid("change", msgQuantity)
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.updateAssetAmountLocked(ctx, id, change, op)
	return nil
}

func (l *Ledger) updateAssetAmountLocked(ctx context.Context, id, change string, op models.TradeOperation) bool {
	i := indexByID(l.st.Assets, id, assetID)
	if i < 0 {
		l.log.WithField("id", id).Debug("Asset not found")
		return false
	}
	a := l.st.Assets[i]
	amount, err := assetqty.Adjust(a.Amount, change, op == models.Buy)
	if err != nil {
		l.log.WithError(err).WithField("id", id).Debug("Asset amount not adjustable")
		return false
	}
	a.Amount = amount
	a.LastUpdated = l.now()
	l.replaceAssetLocked(ctx, i, a)
	l.count("update_asset_amount")
	return true
}

// TradeAsset buys or sells quantity of an existing holding at its current
// price. A buy from the budget logs an investment expense and grows the pool;
// a buy from cash moves nothing else. A sale books the proceeds as side income
// and takes them out of the pool.
func (l *Ledger) TradeAsset(ctx context.Context, id, quantity string, op models.TradeOperation, source models.PaymentSource) error {
	qty, err := assetqty.ParseChange(quantity)
	if err != nil || !qty.IsPositive() {
		return invalid("quantity", msgQuantity)
	}
	if op != models.Buy && op != models.Sell {
		return invalid("operation", msgInvalidData)
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	i := indexByID(l.st.Assets, id, assetID)
	if i < 0 {
		return nil
	}
	a := l.st.Assets[i]
	cost := qty.InexactFloat64() * a.CurrentPrice.Float64()
	if !positive(cost) {
		return invalid("currentPrice", msgAmount)
	}
	if !l.updateAssetAmountLocked(ctx, id, quantity, op) {
		return nil
	}

	switch {
	case op == models.Buy && source == models.SourceAsset:
	case op == models.Buy:
		l.addTransactionLocked(ctx, models.Transaction{
			Name:     a.Name + " Alımı",
			Category: models.CategoryInvestment,
			Amount:   models.Amount(cost),
			Icon:     iconInvestment,
		})
		l.addToAssetsLocked(ctx, cost)
	default:
		l.addIncomeLocked(ctx, models.IncomeItem{
			ID:         l.newID(),
			Name:       a.Name + " Satışı",
			Amount:     models.Amount(cost),
			Date:       l.timestamp(),
			IncomeType: models.SideIncome,
		}, models.Irregular)
		l.addToAssetsLocked(ctx, -cost)
	}
	l.count("trade_asset")
	return nil
}

// AddToAssets adds amount, which may be negative, to the asset pool. A
// decrement never leaves the pool below zero.
func (l *Ledger) AddToAssets(ctx context.Context, amount float64) error {
	if !finite(amount) {
		return invalid("amount", msgAmount)
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.addToAssetsLocked(ctx, amount)
	l.count("add_to_assets")
	return nil
}

func (l *Ledger) addToAssetsLocked(ctx context.Context, amount float64) {
	next := num(l.st.FinancialData.Assets) + amount
	if amount < 0 {
		next = math.Max(0, next)
	}
	l.st.FinancialData.Assets = models.Amount(next)
	l.persistLocked(ctx, KeyFinancialData)
	l.mirrorFinancialLocked()
}

// UpdateFinancialData overwrites the asset pool figure.
func (l *Ledger) UpdateFinancialData(ctx context.Context, assets float64) error {
	if !finite(assets) || assets < 0 {
		return invalid("assets", msgAmount)
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.st.FinancialData.Assets = models.Amount(assets)
	l.persistLocked(ctx, KeyFinancialData)
	l.mirrorFinancialLocked()
	l.count("update_financial_data")
	return nil
}
