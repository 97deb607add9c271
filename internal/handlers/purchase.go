package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/camptrades/apiserver/internal/services"
	"github.com/camptrades/apiserver/internal/store"
	"github.com/camptrades/apiserver/types"
)

// PurchaseHandler exposes the purchase engine over HTTP.
type PurchaseHandler struct {
	purchases *services.PurchaseService
}

func NewPurchaseHandler(purchases *services.PurchaseService) *PurchaseHandler {
	return &PurchaseHandler{purchases: purchases}
}

type PurchaseRequest struct {
	ItemID string `json:"itemId"`
}

type PurchaseResponse struct {
	UpdatedUser    types.User        `json:"updatedUser"`
	NewTransaction types.Transaction `json:"newTransaction"`
}

// Purchase executes a sale on behalf of the authenticated buyer.
func (h *PurchaseHandler) Purchase(w http.ResponseWriter, r *http.Request) {
	buyer, err := userFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req PurchaseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}
	if strings.TrimSpace(req.ItemID) == "" {
		writeError(w, http.StatusBadRequest, "Item ID is required.")
		return
	}

	updated, receipt, err := h.purchases.Purchase(r.Context(), buyer, req.ItemID)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			writeError(w, http.StatusNotFound, "Item not found.")
		case errors.Is(err, store.ErrAlreadySold):
			writeError(w, http.StatusConflict, "This item has already been sold.")
		case errors.Is(err, store.ErrContended):
			writeError(w, http.StatusConflict, "Another purchase is in progress for this item. Try again.")
		case errors.Is(err, store.ErrOwnItem):
			writeError(w, http.StatusBadRequest, "You cannot buy your own item.")
		case errors.Is(err, store.ErrInsufficientFunds):
			writeError(w, http.StatusBadRequest, "Insufficient funds.")
		default:
			writeError(w, http.StatusInternalServerError, "Transaction failed.")
		}
		return
	}

	writeJSON(w, http.StatusOK, PurchaseResponse{
		UpdatedUser:    updated,
		NewTransaction: receipt,
	})
}
