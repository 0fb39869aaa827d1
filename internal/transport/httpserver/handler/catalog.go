package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"sweets-app-go/internal/domain/catalog"
	"sweets-app-go/internal/domain/events"
)

type createProductRequest struct {
	Name      string           `json:"name"`
	CostPrice events.RawNumber `json:"costPrice"`
	SellPrice events.RawNumber `json:"sellPrice"`
}

type productListResponse struct {
	Items []catalog.Product `json:"items"`
}

func (h *Handlers) ListProducts(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, productListResponse{Items: h.Catalog.ListProducts()})
}

// CreateProduct enforces the add-product precondition (name and both
// prices present) on behalf of the store, which accepts any values.
func (h *Handlers) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var req createProductRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "invalid json body")
		return
	}

	name := strings.TrimSpace(req.Name)
	if name == "" || strings.TrimSpace(string(req.CostPrice)) == "" || strings.TrimSpace(string(req.SellPrice)) == "" {
		writeError(w, http.StatusUnprocessableEntity, "validation_failed", "name, costPrice and sellPrice are required")
		return
	}

	product, err := h.Catalog.AddProduct(r.Context(), name, req.CostPrice.Float(), req.SellPrice.Float())
	if err != nil {
		h.log.InternalError("catalog.create: save failed", err, "name", name)
		writeError(w, http.StatusBadGateway, "remote_unavailable", "could not persist product")
		return
	}

	writeJSON(w, http.StatusCreated, product)
}

func (h *Handlers) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.Catalog.DeleteProduct(r.Context(), id); err != nil {
		if errors.Is(err, catalog.ErrProductNotFound) {
			writeError(w, http.StatusNotFound, "product_not_found", "product not found")
			return
		}
		h.log.InternalError("catalog.delete: cascade failed", err, "product_id", id)
		writeError(w, http.StatusBadGateway, "remote_unavailable", "could not delete product")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
