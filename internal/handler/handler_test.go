package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/semiha11/Fincio/internal/config"
	"github.com/semiha11/Fincio/internal/integrations/quotes"
	"github.com/semiha11/Fincio/internal/ledger"
	"github.com/semiha11/Fincio/internal/middleware"
	"github.com/semiha11/Fincio/internal/models"
	"github.com/semiha11/Fincio/internal/repository"
	"github.com/semiha11/Fincio/internal/service"
)

type fakeQuotes struct{}

func (fakeQuotes) Board(context.Context) quotes.Board {
	return quotes.Board{Gold: []quotes.Quote{{Name: "Gram Altın", Buying: 3000, Selling: 3010}}}
}

func (fakeQuotes) FindAssetPrice(_ context.Context, t models.AssetType, name string) (float64, bool) {
	if t == models.AssetGold && name == "Gram Altın" {
		return 3010, true
	}
	return 0, false
}

func (fakeQuotes) Refresh(context.Context) {}

func (fakeQuotes) ClearCache(context.Context) error { return nil }

func newTestRouter(t *testing.T) *mux.Router {
	t.Helper()
	log := logrus.New()
	log.SetOutput(io.Discard)
	cfg := &config.Config{JWTSecret: "test-secret", JWTTTL: time.Hour}
	store := repository.NewMemoryStore()
	kv := func(ns string) ledger.KV { return store.KV(ns) }
	svc := service.NewService(store, kv, fakeQuotes{}, log, cfg)
	return NewHandler(svc, log).Router(cfg)
}

func do(t *testing.T, r http.Handler, method, path, device string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if device != "" {
		req.Header.Set(middleware.DeviceHeader, device)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v))
	return v
}

func TestAuthFlow(t *testing.T) {
	r := newTestRouter(t)

	creds := map[string]string{"name": "Ayşe", "email": "ayse@example.com", "password": "secret1"}
	rec := do(t, r, "POST", "/register", "", creds)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = do(t, r, "POST", "/register", "", creds)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = do(t, r, "POST", "/login", "", map[string]string{"email": "ayse@example.com", "password": "wrong!"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = do(t, r, "POST", "/login", "", map[string]string{"email": "ayse@example.com", "password": "secret1"})
	require.Equal(t, http.StatusOK, rec.Code)
	token := decodeBody[map[string]string](t, rec)["token"]
	require.NotEmpty(t, token)

	req := httptest.NewRequest("GET", "/state", nil)
	req.Header.Set(middleware.DeviceHeader, "phone")
	req.Header.Set("Authorization", "Bearer "+token)
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestDeviceHeaderRequired(t *testing.T) {
	r := newTestRouter(t)
	rec := do(t, r, "GET", "/summary", "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestInvalidTokenRejected(t *testing.T) {
	r := newTestRouter(t)
	req := httptest.NewRequest("GET", "/summary", nil)
	req.Header.Set(middleware.DeviceHeader, "phone")
	req.Header.Set("Authorization", "Bearer not-a-token")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestSummaryReflectsActions(t *testing.T) {
	r := newTestRouter(t)

	rec := do(t, r, "POST", "/income", "phone", map[string]any{"name": "Maaş", "amount": 5000, "type": "regular"})
	require.Equal(t, http.StatusCreated, rec.Code)
	rec = do(t, r, "POST", "/transactions", "phone", map[string]any{"name": "Market", "category": "Gıda", "amount": "2000"})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = do(t, r, "GET", "/summary", "phone", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody[overview](t, rec)
	assert.InDelta(t, 5000, body.Summary.TotalIncome, 1e-9)
	assert.InDelta(t, 2000, body.Summary.TotalExpenses, 1e-9)
	assert.InDelta(t, 3000, body.Summary.RemainingBudget, 1e-9)

	// other devices keep their own ledger
	rec = do(t, r, "GET", "/summary", "tablet", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Zero(t, decodeBody[overview](t, rec).Summary.TotalIncome)
}

func TestValidationErrorIsBadRequest(t *testing.T) {
	r := newTestRouter(t)
	rec := do(t, r, "POST", "/income", "phone", map[string]any{"name": "Maaş", "amount": -5, "type": "regular"})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	body := decodeBody[errorResponse](t, rec)
	assert.Equal(t, "amount", body.Field)
	assert.NotEmpty(t, body.Error)

	rec = do(t, r, "POST", "/transactions", "phone", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDebtPaymentFromAssets(t *testing.T) {
	r := newTestRouter(t)

	rec := do(t, r, "PUT", "/financial-data/assets", "phone", map[string]any{"amount": 10000})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, r, "POST", "/debts", "phone", map[string]any{"name": "Kredi", "totalAmount": 4000})
	require.Equal(t, http.StatusCreated, rec.Code)
	debt := decodeBody[models.Debt](t, rec)

	rec = do(t, r, "POST", "/debts/pay", "phone", map[string]any{"amount": 1500, "debtId": debt.ID, "source": "asset"})
	require.Equal(t, http.StatusOK, rec.Code)
	fin := decodeBody[models.FinancialView](t, rec)
	assert.InDelta(t, 8500, fin.Assets, 1e-9)
	assert.InDelta(t, 2500, fin.Debts, 1e-9)
	assert.InDelta(t, 6000, fin.NetWorth, 1e-9)

	rec = do(t, r, "POST", "/debts/"+debt.ID+"/payoff", "phone", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	fin = decodeBody[models.FinancialView](t, rec)
	assert.Zero(t, fin.Debts)

	rec = do(t, r, "GET", "/transactions/grouped", "phone", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Kredi Kapatma")
}

func TestNotificationsEndpoints(t *testing.T) {
	r := newTestRouter(t)

	rec := do(t, r, "POST", "/notifications", "phone", map[string]any{"title": "Hatırlatma", "desc": "Kira", "type": "payment"})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = do(t, r, "GET", "/notifications?type=payment", "phone", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 1, decodeBody[map[string]any](t, rec)["unreadCount"])

	rec = do(t, r, "POST", "/notifications/read-all", "phone", nil)
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = do(t, r, "GET", "/notifications", "phone", nil)
	assert.EqualValues(t, 0, decodeBody[map[string]any](t, rec)["unreadCount"])
}

func TestQuoteEndpoints(t *testing.T) {
	r := newTestRouter(t)

	rec := do(t, r, "GET", "/quotes/price?type=gold&name=Gram+Alt%C4%B1n", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.InDelta(t, 3010, decodeBody[map[string]float64](t, rec)["price"], 1e-9)

	rec = do(t, r, "GET", "/quotes/price?type=gold&name=Ons", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, r, "GET", "/quotes/profit-loss?buyPrice=100&currentPrice=120&quantity=2", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	pl := decodeBody[quotes.ProfitLoss](t, rec)
	assert.InDelta(t, 40, pl.ProfitLoss, 1e-9)
	assert.True(t, pl.IsProfit)

	rec = do(t, r, "GET", "/quotes/profit-loss?buyPrice=abc", "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPortfolioUsesLivePrices(t *testing.T) {
	r := newTestRouter(t)

	rec := do(t, r, "POST", "/assets", "phone", map[string]any{"name": "Gram Altın", "amount": "2 Gram", "avgCost": 2500, "currentPrice": 2600, "type": "gold"})
	require.Equal(t, http.StatusCreated, rec.Code)
	rec = do(t, r, "POST", "/assets", "phone", map[string]any{"name": "Arsa", "amount": "1", "avgCost": 100000, "currentPrice": 150000, "type": "real_estate"})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = do(t, r, "GET", "/portfolio", "phone", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	p := decodeBody[ledger.Portfolio](t, rec)
	require.Len(t, p.Holdings, 2)
	assert.True(t, p.Holdings[0].HasLiveData)
	assert.InDelta(t, 6020, p.Holdings[0].Value, 1e-6)
	assert.InDelta(t, 150000, p.Holdings[1].Value, 1e-6)
	assert.InDelta(t, 156020, p.TotalValue, 1e-6)
}
