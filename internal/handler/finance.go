package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/semiha11/Fincio/internal/format"
	"github.com/semiha11/Fincio/internal/ledger"
	"github.com/semiha11/Fincio/internal/models"
)

type overview struct {
	Summary       models.Summary       `json:"summary"`
	FinancialData models.FinancialView `json:"financialData"`
	Score         int                  `json:"score"`
	StartDate     *time.Time           `json:"startDate,omitempty"`
	UnreadCount   int                  `json:"unreadCount"`
	Formatted     map[string]string    `json:"formatted"`
}

func (h *Handler) State(w http.ResponseWriter, r *http.Request, l *ledger.Ledger) {
	writeJSON(w, http.StatusOK, l.State())
}

// Summary returns the derived figures shown on the home screen
func (h *Handler) Summary(w http.ResponseWriter, r *http.Request, l *ledger.Ledger) {
	sum := l.Summary()
	f := l.Formatter()
	resp := overview{
		Summary:       sum,
		FinancialData: l.FinancialData(),
		Score:         l.Score(),
		UnreadCount:   l.UnreadCount(),
		Formatted: map[string]string{
			"totalIncome":     f.Currency(sum.TotalIncome),
			"totalExpenses":   f.Currency(sum.TotalExpenses),
			"remainingBudget": f.Currency(sum.RemainingBudget),
			"netWorth":        f.Currency(sum.NetWorth),
		},
	}
	if start, ok := l.StartDate(); ok {
		resp.StartDate = &start
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) Score(w http.ResponseWriter, r *http.Request, l *ledger.Ledger) {
	writeJSON(w, http.StatusOK, map[string]int{"score": l.Score()})
}

func (h *Handler) FinancialData(w http.ResponseWriter, r *http.Request, l *ledger.Ledger) {
	writeJSON(w, http.StatusOK, l.FinancialData())
}

// GroupedTransactions returns the transaction list bucketed by day
func (h *Handler) GroupedTransactions(w http.ResponseWriter, r *http.Request, l *ledger.Ledger) {
	st := l.State()
	groups := l.Formatter().GroupTransactionsByDate(st.Transactions)
	if groups == nil {
		groups = []format.TransactionGroup{}
	}
	writeJSON(w, http.StatusOK, groups)
}

// DaysRemaining counts the days until the given day of month
func (h *Handler) DaysRemaining(w http.ResponseWriter, r *http.Request, l *ledger.Ledger) {
	day, err := strconv.Atoi(r.URL.Query().Get("day"))
	if err != nil {
		day = l.Settings().FinancialMonthStart
	}
	if day < 1 || day > 31 {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "day must be between 1 and 31"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"daysRemaining": format.DaysRemaining(time.Now(), day)})
}

func listType(r *http.Request) models.ListType {
	if t := mux.Vars(r)["type"]; t != "" {
		return models.ListType(t)
	}
	return models.ListType(r.URL.Query().Get("type"))
}

// AddIncome stores an income item in the list named by its type
func (h *Handler) AddIncome(w http.ResponseWriter, r *http.Request, l *ledger.Ledger) {
	var item models.IncomeItem
	if !decode(w, r, &item) {
		return
	}
	list := item.ListType
	if q := listType(r); q != "" {
		list = q
	}
	out, err := l.AddIncome(r.Context(), item, list)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, out)
}

func (h *Handler) UpdateIncome(w http.ResponseWriter, r *http.Request, l *ledger.Ledger) {
	var patch json.RawMessage
	if !decode(w, r, &patch) {
		return
	}
	if err := l.UpdateIncome(r.Context(), mux.Vars(r)["id"], listType(r), patch); err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}

func (h *Handler) DeleteIncome(w http.ResponseWriter, r *http.Request, l *ledger.Ledger) {
	if err := l.DeleteIncome(r.Context(), mux.Vars(r)["id"], listType(r)); err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}

type payDebtRequest struct {
	Amount      float64              `json:"amount"`
	Description string               `json:"description"`
	DebtID      string               `json:"debtId"`
	Source      models.PaymentSource `json:"source"`
}

// PayDebt applies a partial payment
func (h *Handler) PayDebt(w http.ResponseWriter, r *http.Request, l *ledger.Ledger) {
	var req payDebtRequest
	if !decode(w, r, &req) {
		return
	}
	if req.Source == "" {
		req.Source = models.SourceBudget
	}
	if err := l.PayDebt(r.Context(), req.Amount, req.Description, req.DebtID, req.Source); err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, l.FinancialData())
}

type sourceRequest struct {
	Source models.PaymentSource `json:"source"`
}

// PayOffDebt settles the full remaining amount of a debt
func (h *Handler) PayOffDebt(w http.ResponseWriter, r *http.Request, l *ledger.Ledger) {
	req := sourceRequest{Source: models.SourceBudget}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}
	if req.Source == "" {
		req.Source = models.SourceBudget
	}
	if err := l.PayOffDebt(r.Context(), mux.Vars(r)["id"], req.Source); err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, l.FinancialData())
}

type purchaseRequest struct {
	Asset  models.Asset         `json:"asset"`
	Cost   float64              `json:"cost"`
	Source models.FundingSource `json:"source"`
}

// PurchaseAsset records a new holding funded from the given source
func (h *Handler) PurchaseAsset(w http.ResponseWriter, r *http.Request, l *ledger.Ledger) {
	var req purchaseRequest
	if !decode(w, r, &req) {
		return
	}
	if req.Source == "" {
		req.Source = models.FundBudget
	}
	a, err := l.PurchaseAsset(r.Context(), req.Asset, req.Cost, req.Source)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, a)
}

type tradeRequest struct {
	Quantity  string                `json:"quantity"`
	Operation models.TradeOperation `json:"operation"`
	Source    models.PaymentSource  `json:"source"`
}

// TradeAsset buys or sells a quantity of an existing holding
func (h *Handler) TradeAsset(w http.ResponseWriter, r *http.Request, l *ledger.Ledger) {
	var req tradeRequest
	if !decode(w, r, &req) {
		return
	}
	if req.Source == "" {
		req.Source = models.SourceBudget
	}
	if err := l.TradeAsset(r.Context(), mux.Vars(r)["id"], req.Quantity, req.Operation, req.Source); err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, l.FinancialData())
}

type amountChangeRequest struct {
	Change    string                `json:"change"`
	Operation models.TradeOperation `json:"operation"`
}

// UpdateAssetAmount adjusts a holding's quantity without moving money
func (h *Handler) UpdateAssetAmount(w http.ResponseWriter, r *http.Request, l *ledger.Ledger) {
	var req amountChangeRequest
	if !decode(w, r, &req) {
		return
	}
	if err := l.UpdateAssetAmount(r.Context(), mux.Vars(r)["id"], req.Change, req.Operation); err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}

type amountRequest struct {
	Amount float64 `json:"amount"`
}

func (h *Handler) AddToAssets(w http.ResponseWriter, r *http.Request, l *ledger.Ledger) {
	var req amountRequest
	if !decode(w, r, &req) {
		return
	}
	if err := l.AddToAssets(r.Context(), req.Amount); err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, l.FinancialData())
}

func (h *Handler) SetAssets(w http.ResponseWriter, r *http.Request, l *ledger.Ledger) {
	var req amountRequest
	if !decode(w, r, &req) {
		return
	}
	if err := l.UpdateFinancialData(r.Context(), req.Amount); err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, l.FinancialData())
}

func (h *Handler) Reset(w http.ResponseWriter, r *http.Request, l *ledger.Ledger) {
	if err := l.ResetAllFinancialData(r.Context()); err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}
