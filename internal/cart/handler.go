package cart

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/ecomstack/backend/internal/auth"
	"github.com/ecomstack/backend/internal/models"
	"github.com/ecomstack/backend/internal/request"
	"github.com/ecomstack/backend/internal/respond"
)

// Store defines the cart operations. Each mutation must be atomic per slot.
type Store interface {
	GetCart(ctx context.Context, userID string) (models.Cart, error)
	IncrementCartSlot(ctx context.Context, userID string, slot int) error
	DecrementCartSlot(ctx context.Context, userID string, slot int) error
}

// Handler holds cart HTTP handlers. All routes sit behind the auth middleware.
type Handler struct {
	carts Store
	log   *slog.Logger
}

func NewHandler(carts Store, log *slog.Logger) *Handler {
	return &Handler{carts: carts, log: log}
}

// Add increments the quantity in the requested slot.
func (h *Handler) Add(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserIDFrom(r.Context())
	slot, ok := h.slot(w, r)
	if !ok {
		return
	}
	if err := h.carts.IncrementCartSlot(r.Context(), userID, slot); err != nil {
		h.fail(w, "add to cart", userID, err)
		return
	}
	h.log.Info("cart item added", "user_id", userID, "item_id", slot)
	respond.Text(w, http.StatusOK, "Added")
}

// Remove decrements the quantity in the requested slot, never below zero.
func (h *Handler) Remove(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserIDFrom(r.Context())
	slot, ok := h.slot(w, r)
	if !ok {
		return
	}
	if err := h.carts.DecrementCartSlot(r.Context(), userID, slot); err != nil {
		h.fail(w, "remove from cart", userID, err)
		return
	}
	h.log.Info("cart item removed", "user_id", userID, "item_id", slot)
	respond.Text(w, http.StatusOK, "Removed")
}

// Get returns the full slot -> quantity map.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserIDFrom(r.Context())
	c, err := h.carts.GetCart(r.Context(), userID)
	if err != nil {
		h.fail(w, "get cart", userID, err)
		return
	}
	respond.JSON(w, http.StatusOK, c)
}

func (h *Handler) slot(w http.ResponseWriter, r *http.Request) (int, bool) {
	var req models.CartItemRequest
	if err := request.Decode(w, r, &req); err != nil {
		respond.JSON(w, http.StatusBadRequest, map[string]string{"errors": "itemId must be an integer between 0 and 299"})
		return 0, false
	}
	return *req.ItemID, true
}

func (h *Handler) fail(w http.ResponseWriter, op, userID string, err error) {
	if errors.Is(err, models.ErrNotFound) {
		respond.JSON(w, http.StatusNotFound, map[string]string{"errors": "user not found"})
		return
	}
	h.log.Error(op, "user_id", userID, "err", err)
	respond.JSON(w, http.StatusInternalServerError, map[string]string{"errors": "internal error"})
}
