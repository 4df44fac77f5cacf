package catalog

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/ecomstack/backend/internal/models"
	"github.com/ecomstack/backend/internal/request"
	"github.com/ecomstack/backend/internal/respond"
)

const (
	newCollectionSize = 8
	popularCategory   = "women"
	popularSize       = 4
)

// ProductStore defines the interface for product persistence.
type ProductStore interface {
	InsertProduct(ctx context.Context, p *models.Product) error
	DeleteProduct(ctx context.Context, id int) error
	ListProducts(ctx context.Context) ([]models.Product, error)
	ListProductsByCategory(ctx context.Context, category string, limit int) ([]models.Product, error)
}

// Handler holds product catalog HTTP handlers.
type Handler struct {
	products ProductStore
	log      *slog.Logger
}

func NewHandler(products ProductStore, log *slog.Logger) *Handler {
	return &Handler{products: products, log: log}
}

// Add stores a new product under the next free id.
func (h *Handler) Add(w http.ResponseWriter, r *http.Request) {
	var req models.AddProductRequest
	if err := request.Decode(w, r, &req); err != nil {
		respond.Failure(w, http.StatusBadRequest, "name, image, category, new_price and old_price are required")
		return
	}

	p := req.Product()
	if err := h.products.InsertProduct(r.Context(), p); err != nil {
		h.log.Error("add product", "name", req.Name, "err", err)
		respond.Failure(w, http.StatusInternalServerError, "could not save product")
		return
	}

	h.log.Info("product added", "id", p.ID, "name", p.Name, "category", p.Category)
	respond.JSON(w, http.StatusOK, map[string]any{"success": true, "name": p.Name})
}

// Remove deletes the product with the given id. Unknown ids succeed.
func (h *Handler) Remove(w http.ResponseWriter, r *http.Request) {
	var req models.RemoveProductRequest
	if err := request.Decode(w, r, &req); err != nil {
		respond.Failure(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.products.DeleteProduct(r.Context(), req.ID); err != nil {
		h.log.Error("remove product", "id", req.ID, "err", err)
		respond.Failure(w, http.StatusInternalServerError, "could not remove product")
		return
	}

	h.log.Info("product removed", "id", req.ID)
	respond.JSON(w, http.StatusOK, map[string]any{"success": true, "name": req.Name})
}

// All returns every product.
func (h *Handler) All(w http.ResponseWriter, r *http.Request) {
	products, err := h.products.ListProducts(r.Context())
	if err != nil {
		h.log.Error("list products", "err", err)
		respond.Failure(w, http.StatusInternalServerError, "database error")
		return
	}
	respond.JSON(w, http.StatusOK, nonNil(products))
}

// NewCollections returns the storefront's "new collection" strip.
func (h *Handler) NewCollections(w http.ResponseWriter, r *http.Request) {
	products, err := h.products.ListProducts(r.Context())
	if err != nil {
		h.log.Error("list products", "err", err)
		respond.Failure(w, http.StatusInternalServerError, "database error")
		return
	}
	respond.JSON(w, http.StatusOK, NewCollection(products))
}

// PopularInWomen returns the first few products of the women category.
func (h *Handler) PopularInWomen(w http.ResponseWriter, r *http.Request) {
	products, err := h.products.ListProductsByCategory(r.Context(), popularCategory, popularSize)
	if err != nil {
		h.log.Error("list popular products", "err", err)
		respond.Failure(w, http.StatusInternalServerError, "database error")
		return
	}
	respond.JSON(w, http.StatusOK, nonNil(products))
}

// NewCollection skips the first product and keeps the last eight of the rest.
// It is positional, not date based.
func NewCollection(products []models.Product) []models.Product {
	if len(products) <= 1 {
		return []models.Product{}
	}
	rest := products[1:]
	if len(rest) > newCollectionSize {
		rest = rest[len(rest)-newCollectionSize:]
	}
	return rest
}

func nonNil(products []models.Product) []models.Product {
	if products == nil {
		return []models.Product{}
	}
	return products
}
