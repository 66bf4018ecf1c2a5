package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/semiha11/Fincio/internal/ledger"
	"github.com/semiha11/Fincio/internal/middleware"
	"github.com/semiha11/Fincio/internal/repository"
	"github.com/semiha11/Fincio/internal/service"
)

type Handler struct {
	svc *service.Service
	log *logrus.Logger
}

func NewHandler(svc *service.Service, log *logrus.Logger) *Handler {
	return &Handler{svc: svc, log: log}
}

type errorResponse struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		_ = json.NewEncoder(w).Encode(v)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	var verr *ledger.ValidationError
	switch {
	case errors.As(err, &verr):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: verr.Message, Field: verr.Field})
	case errors.Is(err, service.ErrInvalidInput):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
	case errors.Is(err, service.ErrInvalidCredentials):
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: err.Error()})
	case errors.Is(err, repository.ErrEmailTaken):
		writeJSON(w, http.StatusConflict, errorResponse{Error: err.Error()})
	default:
		h.log.WithError(err).Error("Request failed")
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
	}
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return false
	}
	return true
}

// withLedger resolves the ledger of the calling device
func (h *Handler) withLedger(fn func(w http.ResponseWriter, r *http.Request, l *ledger.Ledger)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		l, err := h.svc.Ledger(ctx, middleware.DeviceID(ctx), middleware.UserID(ctx))
		if err != nil {
			h.writeError(w, err)
			return
		}
		fn(w, r, l)
	}
}

func create[T any](h *Handler, add func(*ledger.Ledger, context.Context, T) (T, error)) http.HandlerFunc {
	return h.withLedger(func(w http.ResponseWriter, r *http.Request, l *ledger.Ledger) {
		var in T
		if !decode(w, r, &in) {
			return
		}
		out, err := add(l, r.Context(), in)
		if err != nil {
			h.writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, out)
	})
}

func update(h *Handler, patch func(*ledger.Ledger, context.Context, string, json.RawMessage) error) http.HandlerFunc {
	return h.withLedger(func(w http.ResponseWriter, r *http.Request, l *ledger.Ledger) {
		var body json.RawMessage
		if !decode(w, r, &body) {
			return
		}
		if err := patch(l, r.Context(), mux.Vars(r)["id"], body); err != nil {
			h.writeError(w, err)
			return
		}
		writeJSON(w, http.StatusNoContent, nil)
	})
}

func remove(h *Handler, del func(*ledger.Ledger, context.Context, string) error) http.HandlerFunc {
	return h.withLedger(func(w http.ResponseWriter, r *http.Request, l *ledger.Ledger) {
		if err := del(l, r.Context(), mux.Vars(r)["id"]); err != nil {
			h.writeError(w, err)
			return
		}
		writeJSON(w, http.StatusNoContent, nil)
	})
}
