package handlers

import (
	"net/http"

	"github.com/camptrades/apiserver/internal/services"
	"github.com/camptrades/apiserver/types"
)

// LedgerHandler exposes a user's transaction history.
type LedgerHandler struct {
	ledger *services.LedgerService
}

func NewLedgerHandler(ledger *services.LedgerService) *LedgerHandler {
	return &LedgerHandler{ledger: ledger}
}

// ListTransactions returns the caller's ledger rows, newest first.
func (h *LedgerHandler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	user, err := userFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	history, err := h.ledger.HistoryFor(r.Context(), user.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list transactions")
		return
	}
	if history == nil {
		history = []types.Transaction{}
	}
	writeJSON(w, http.StatusOK, history)
}
