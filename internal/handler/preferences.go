package handler

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/semiha11/Fincio/internal/ledger"
	"github.com/semiha11/Fincio/internal/models"
)

func (h *Handler) Settings(w http.ResponseWriter, r *http.Request, l *ledger.Ledger) {
	writeJSON(w, http.StatusOK, l.Settings())
}

// UpdateSettings merges a partial settings document
func (h *Handler) UpdateSettings(w http.ResponseWriter, r *http.Request, l *ledger.Ledger) {
	var patch json.RawMessage
	if !decode(w, r, &patch) {
		return
	}
	s, err := l.UpdateSettings(r.Context(), patch)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s)
}

type valueRequest struct {
	Value float64 `json:"value"`
}

func (h *Handler) UpdateBudgetLimitPercentage(w http.ResponseWriter, r *http.Request, l *ledger.Ledger) {
	var req valueRequest
	if !decode(w, r, &req) {
		return
	}
	if err := l.UpdateBudgetLimitPercentage(r.Context(), req.Value); err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, l.Settings())
}

func (h *Handler) UpdateBudgetLimitAmount(w http.ResponseWriter, r *http.Request, l *ledger.Ledger) {
	var req valueRequest
	if !decode(w, r, &req) {
		return
	}
	if err := l.UpdateBudgetLimitAmount(r.Context(), req.Value); err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, l.Settings())
}

func (h *Handler) Profile(w http.ResponseWriter, r *http.Request, l *ledger.Ledger) {
	writeJSON(w, http.StatusOK, l.Profile())
}

func (h *Handler) SetProfile(w http.ResponseWriter, r *http.Request, l *ledger.Ledger) {
	var p models.UserProfile
	if !decode(w, r, &p) {
		return
	}
	if err := l.SetUserProfile(r.Context(), p); err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, l.Profile())
}

func (h *Handler) FirstLoginDone(w http.ResponseWriter, r *http.Request, l *ledger.Ledger) {
	l.SetFirstLoginDone(r.Context())
	writeJSON(w, http.StatusNoContent, nil)
}

func (h *Handler) UpdatePayYourselfRule(w http.ResponseWriter, r *http.Request, l *ledger.Ledger) {
	var rule models.PayYourselfRule
	if !decode(w, r, &rule) {
		return
	}
	if err := l.UpdatePayYourselfRule(r.Context(), rule); err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, l.State().PayYourselfRule)
}

// Notifications lists notifications, optionally filtered by ?type=
func (h *Handler) Notifications(w http.ResponseWriter, r *http.Request, l *ledger.Ledger) {
	list := l.Notifications(models.NotificationType(r.URL.Query().Get("type")))
	if list == nil {
		list = []models.Notification{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"notifications": list,
		"unreadCount":   l.UnreadCount(),
	})
}

func (h *Handler) MarkAsRead(w http.ResponseWriter, r *http.Request, l *ledger.Ledger) {
	l.MarkAsRead(r.Context(), mux.Vars(r)["id"])
	writeJSON(w, http.StatusNoContent, nil)
}

func (h *Handler) MarkAllAsRead(w http.ResponseWriter, r *http.Request, l *ledger.Ledger) {
	l.MarkAllAsRead(r.Context())
	writeJSON(w, http.StatusNoContent, nil)
}

func (h *Handler) DeleteNotification(w http.ResponseWriter, r *http.Request, l *ledger.Ledger) {
	l.DeleteNotification(r.Context(), mux.Vars(r)["id"])
	writeJSON(w, http.StatusNoContent, nil)
}
