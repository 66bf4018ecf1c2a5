package handler

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/semiha11/Fincio/internal/config"
	"github.com/semiha11/Fincio/internal/ledger"
	"github.com/semiha11/Fincio/internal/middleware"
)

type ledgerFunc func(w http.ResponseWriter, r *http.Request, l *ledger.Ledger)

// Router builds the HTTP API
func (h *Handler) Router(cfg *config.Config) *mux.Router {
	r := mux.NewRouter()

	// Public routes
	r.HandleFunc("/register", h.Register).Methods("POST")
	r.HandleFunc("/login", h.Login).Methods("POST")
	r.Handle("/metrics", promhttp.Handler()).Methods("GET")
	r.HandleFunc("/quotes", h.Quotes).Methods("GET")
	r.HandleFunc("/quotes/price", h.AssetPrice).Methods("GET")
	r.HandleFunc("/quotes/profit-loss", h.ProfitLoss).Methods("GET")
	r.HandleFunc("/quotes/cache", h.ClearQuoteCache).Methods("DELETE")

	// Device routes, optionally signed in
	d := r.PathPrefix("/").Subrouter()
	d.Use(middleware.DeviceMiddleware, middleware.AuthMiddleware(cfg))
	on := func(path string, fn ledgerFunc, methods ...string) {
		d.HandleFunc(path, h.withLedger(fn)).Methods(methods...)
	}

	d.HandleFunc("/logout", h.Logout).Methods("POST")
	on("/state", h.State, "GET")
	on("/summary", h.Summary, "GET")
	on("/score", h.Score, "GET")
	on("/days-remaining", h.DaysRemaining, "GET")
	on("/financial-data", h.FinancialData, "GET")
	on("/financial-data/assets", h.AddToAssets, "POST")
	on("/financial-data/assets", h.SetAssets, "PUT")
	on("/reset", h.Reset, "POST")

	on("/income", h.AddIncome, "POST")
	on("/income/{type}/{id}", h.UpdateIncome, "PATCH")
	on("/income/{type}/{id}", h.DeleteIncome, "DELETE")

	d.HandleFunc("/transactions", create(h, (*ledger.Ledger).AddTransaction)).Methods("POST")
	on("/transactions/grouped", h.GroupedTransactions, "GET")

	d.HandleFunc("/recurring", create(h, (*ledger.Ledger).AddRecurringPayment)).Methods("POST")
	d.HandleFunc("/recurring/{id}", update(h, (*ledger.Ledger).UpdateRecurringPayment)).Methods("PATCH")
	d.HandleFunc("/recurring/{id}", remove(h, (*ledger.Ledger).DeleteRecurringPayment)).Methods("DELETE")

	d.HandleFunc("/extra", create(h, (*ledger.Ledger).AddExtraPayment)).Methods("POST")
	d.HandleFunc("/extra/{id}", update(h, (*ledger.Ledger).UpdateExtraPayment)).Methods("PATCH")
	d.HandleFunc("/extra/{id}", remove(h, (*ledger.Ledger).DeleteExtraPayment)).Methods("DELETE")

	d.HandleFunc("/debts", create(h, (*ledger.Ledger).AddDebt)).Methods("POST")
	on("/debts/pay", h.PayDebt, "POST")
	on("/debts/{id}/payoff", h.PayOffDebt, "POST")
	d.HandleFunc("/debts/{id}", remove(h, (*ledger.Ledger).DeleteDebt)).Methods("DELETE")

	d.HandleFunc("/assets", create(h, (*ledger.Ledger).AddAsset)).Methods("POST")
	on("/assets/purchase", h.PurchaseAsset, "POST")
	on("/portfolio", h.Portfolio, "GET")
	on("/assets/{id}/trade", h.TradeAsset, "POST")
	on("/assets/{id}/amount", h.UpdateAssetAmount, "POST")
	d.HandleFunc("/assets/{id}", update(h, (*ledger.Ledger).UpdateAsset)).Methods("PATCH")
	d.HandleFunc("/assets/{id}", remove(h, (*ledger.Ledger).DeleteAsset)).Methods("DELETE")

	d.HandleFunc("/accounts", create(h, (*ledger.Ledger).AddAccount)).Methods("POST")
	d.HandleFunc("/accounts/{id}", update(h, (*ledger.Ledger).UpdateAccount)).Methods("PATCH")
	d.HandleFunc("/accounts/{id}", remove(h, (*ledger.Ledger).DeleteAccount)).Methods("DELETE")

	d.HandleFunc("/goals", create(h, (*ledger.Ledger).AddGoal)).Methods("POST")
	d.HandleFunc("/goals/{id}", update(h, (*ledger.Ledger).UpdateGoal)).Methods("PATCH")
	d.HandleFunc("/goals/{id}", remove(h, (*ledger.Ledger).DeleteGoal)).Methods("DELETE")

	d.HandleFunc("/budgets", create(h, (*ledger.Ledger).AddBudget)).Methods("POST")
	d.HandleFunc("/budgets/{id}", update(h, (*ledger.Ledger).UpdateBudget)).Methods("PATCH")
	d.HandleFunc("/budgets/{id}", remove(h, (*ledger.Ledger).DeleteBudget)).Methods("DELETE")

	on("/notifications", h.Notifications, "GET")
	d.HandleFunc("/notifications", create(h, (*ledger.Ledger).AddNotification)).Methods("POST")
	on("/notifications/read-all", h.MarkAllAsRead, "POST")
	on("/notifications/{id}/read", h.MarkAsRead, "POST")
	on("/notifications/{id}", h.DeleteNotification, "DELETE")

	on("/settings", h.Settings, "GET")
	on("/settings", h.UpdateSettings, "PATCH")
	on("/settings/budget-limit/percentage", h.UpdateBudgetLimitPercentage, "PUT")
	on("/settings/budget-limit/amount", h.UpdateBudgetLimitAmount, "PUT")
	on("/profile", h.Profile, "GET")
	on("/profile", h.SetProfile, "PUT")
	on("/profile/first-login", h.FirstLoginDone, "POST")
	on("/pay-yourself-rule", h.UpdatePayYourselfRule, "PUT")

	return r
}
