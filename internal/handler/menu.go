package handler

import (
	"net/http"

	"github.com/luwak-cafe/pos-api/internal/catalog"
)

// MenuHandler serves the fixed product catalog.
type MenuHandler struct{}

// NewMenuHandler creates a new MenuHandler.
func NewMenuHandler() *MenuHandler {
	return &MenuHandler{}
}

// Categories returns all menu categories in display order.
func (h *MenuHandler) Categories(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, catalog.Categories())
}

// Products returns the menu, optionally narrowed by ?category=.
func (h *MenuHandler) Products(w http.ResponseWriter, r *http.Request) {
	if categoryID := r.URL.Query().Get("category"); categoryID != "" {
		products := catalog.ProductsByCategory(categoryID)
		if products == nil {
			products = []catalog.Product{}
		}
		writeJSON(w, http.StatusOK, products)
		return
	}
	writeJSON(w, http.StatusOK, catalog.Products())
}
