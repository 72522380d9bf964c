package api

import (
	"net/http"
	"strings"

	"github.com/example/ec-shop/internal/domain/product"
	"github.com/example/ec-shop/internal/infrastructure/store"
)

// CategoryHandlers serves the public category tree and per-category
// product listings.
type CategoryHandlers struct {
	categories store.CategoryStore
	products   *product.Service
}

func NewCategoryHandlers(categories store.CategoryStore, products *product.Service) *CategoryHandlers {
	return &CategoryHandlers{categories: categories, products: products}
}

func (h *CategoryHandlers) ListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.categories.ListActive(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, categories)
}

func (h *CategoryHandlers) GetCategory(w http.ResponseWriter, r *http.Request) {
	id := extractPathParam(r.URL.Path, "/categories/")
	c, err := h.categories.GetByID(r.Context(), id)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, c)
}

// GetProductsByCategory lists active products in a category, matching
// either the category or subcategory axis.
func (h *CategoryHandlers) GetProductsByCategory(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSuffix(extractPathParam(r.URL.Path, "/categories/"), "/products")

	all, err := h.products.List(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}
	filtered := all[:0:0]
	for _, p := range all {
		if p.CategoryID == id || p.SubcategoryID == id {
			filtered = append(filtered, p)
		}
	}
	respondJSON(w, http.StatusOK, filtered)
}
