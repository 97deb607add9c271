package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/camptrades/apiserver/internal/services"
	"github.com/camptrades/apiserver/internal/store"
	"github.com/camptrades/apiserver/types"
)

// ItemHandler provides catalog endpoints.
type ItemHandler struct {
	items *services.ItemService
}

func NewItemHandler(items *services.ItemService) *ItemHandler {
	return &ItemHandler{items: items}
}

// ItemRouter registers catalog routes on the given router. Listing is
// public; creation and removal require authentication.
func ItemRouter(r chi.Router, items *services.ItemService, authMiddleware func(http.Handler) http.Handler) {
	handler := NewItemHandler(items)

	r.Get("/", handler.ListItems)
	r.With(authMiddleware).Post("/", handler.CreateItem)
	r.With(authMiddleware).Post("/remove", handler.RemoveItem)
}

func (h *ItemHandler) ListItems(w http.ResponseWriter, r *http.Request) {
	items, err := h.items.ListAvailable(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list items")
		return
	}
	if items == nil {
		items = []types.Item{}
	}
	writeJSON(w, http.StatusOK, items)
}

type CreateItemRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Price       int    `json:"price"`
	Category    string `json:"category"`
	Condition   string `json:"condition"`
	Image       string `json:"image"`
}

func (h *ItemHandler) CreateItem(w http.ResponseWriter, r *http.Request) {
	user, err := userFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req CreateItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" || req.Category == "" || req.Condition == "" || req.Price == 0 {
		writeError(w, http.StatusBadRequest, "Missing required item fields.")
		return
	}
	if req.Price < 0 {
		writeError(w, http.StatusBadRequest, "Price must be a positive amount.")
		return
	}
	if !types.ValidCategory(req.Category) {
		writeError(w, http.StatusBadRequest, "Unknown category.")
		return
	}
	if !types.ValidCondition(req.Condition) {
		writeError(w, http.StatusBadRequest, "Unknown condition.")
		return
	}

	item, err := h.items.Create(r.Context(), user, types.Item{
		Title:       req.Title,
		Description: req.Description,
		Image:       req.Image,
		Price:       req.Price,
		Category:    req.Category,
		Condition:   req.Condition,
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to create item")
		return
	}

	writeJSON(w, http.StatusCreated, item)
}

type RemoveItemRequest struct {
	ID string `json:"id"`
}

func (h *ItemHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	user, err := userFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req RemoveItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}
	if strings.TrimSpace(req.ID) == "" {
		writeError(w, http.StatusBadRequest, "Item ID is required.")
		return
	}

	if err := h.items.Remove(r.Context(), req.ID, user.ID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Item not found or you do not have permission to remove it.")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to remove item")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Item removed successfully."})
}
