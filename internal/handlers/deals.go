package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/camptrades/apiserver/internal/services"
)

// DealHandler exposes the AI best-deal matcher.
type DealHandler struct {
	finder *services.DealFinder
	items  *services.ItemService
}

func NewDealHandler(finder *services.DealFinder, items *services.ItemService) *DealHandler {
	return &DealHandler{finder: finder, items: items}
}

type FindDealRequest struct {
	Query string `json:"query"`
}

type FindDealResponse struct {
	// ItemID is null when no listed item matches the query.
	ItemID *string `json:"itemId"`
}

// FindDeal forwards the query and the available listings to the text
// model and returns at most one item id.
func (h *DealHandler) FindDeal(w http.ResponseWriter, r *http.Request) {
	var req FindDealRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}
	req.Query = strings.TrimSpace(req.Query)
	if req.Query == "" {
		writeError(w, http.StatusBadRequest, "Query is required.")
		return
	}

	if !h.finder.Enabled() {
		writeError(w, http.StatusInternalServerError, "deal finder is not configured")
		return
	}

	items, err := h.items.ListAvailable(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list items")
		return
	}

	id, err := h.finder.FindBestDeal(r.Context(), req.Query, items)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "deal finder failed")
		return
	}

	var resp FindDealResponse
	if id != "" {
		resp.ItemID = &id
	}
	writeJSON(w, http.StatusOK, resp)
}
