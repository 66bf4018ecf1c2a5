package handler

import (
	"net/http"
	"strconv"

	"github.com/semiha11/Fincio/internal/integrations/quotes"
	"github.com/semiha11/Fincio/internal/ledger"
	"github.com/semiha11/Fincio/internal/models"
)

// Quotes returns every market feed with fallbacks applied
func (h *Handler) Quotes(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.svc.Quotes().Board(r.Context()))
}

// AssetPrice looks up the live unit price of a holding by type and name
func (h *Handler) AssetPrice(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	price, ok := h.svc.Quotes().FindAssetPrice(r.Context(), models.AssetType(q.Get("type")), q.Get("name"))
	if !ok {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "price not found"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]float64{"price": price})
}

func (h *Handler) ProfitLoss(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	var vals [3]float64
	for i, name := range []string{"buyPrice", "currentPrice", "quantity"} {
		v, err := strconv.ParseFloat(q.Get(name), 64)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid " + name})
			return
		}
		vals[i] = v
	}
	writeJSON(w, http.StatusOK, quotes.CalculateProfitLoss(vals[0], vals[1], vals[2]))
}

func (h *Handler) ClearQuoteCache(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Quotes().ClearCache(r.Context()); err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}

// Portfolio values the device's holdings at live prices where available
func (h *Handler) Portfolio(w http.ResponseWriter, r *http.Request, l *ledger.Ledger) {
	ctx := r.Context()
	p := l.Portfolio(func(t models.AssetType, name string) (float64, bool) {
		return h.svc.Quotes().FindAssetPrice(ctx, t, name)
	})
	writeJSON(w, http.StatusOK, p)
}
