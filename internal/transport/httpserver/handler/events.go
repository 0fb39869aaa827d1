package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"sweets-app-go/internal/domain/events"
)

type updateFieldRequest struct {
	Field string           `json:"field"`
	Value events.RawNumber `json:"value"`
}

type eventListResponse struct {
	Items []events.Event `json:"items"`
}

type draftResponse struct {
	Event     events.Event `json:"event"`
	IsEditing bool         `json:"isEditing"`
}

func (h *Handlers) ListSavedEvents(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, eventListResponse{Items: h.Events.SavedEvents()})
}

func (h *Handlers) GetDraft(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, draftResponse{
		Event:     h.Events.Draft(),
		IsEditing: h.Events.IsEditing(),
	})
}

func (h *Handlers) DraftSummary(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, events.Summarize(h.Events.Draft()))
}

func (h *Handlers) UpdateDraftField(w http.ResponseWriter, r *http.Request) {
	var req updateFieldRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "invalid json body")
		return
	}

	if err := h.Events.UpdateDraftField(req.Field, string(req.Value)); err != nil {
		if errors.Is(err, events.ErrUnknownField) {
			writeError(w, http.StatusBadRequest, "invalid_request", "unknown event field")
			return
		}
		h.log.InternalError("events.draft: field update failed", err, "field", req.Field)
		writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
		return
	}

	writeJSON(w, http.StatusOK, draftResponse{Event: h.Events.Draft(), IsEditing: h.Events.IsEditing()})
}

func (h *Handlers) UpdateDraftProduct(w http.ResponseWriter, r *http.Request) {
	productID := chi.URLParam(r, "product_id")

	var req updateFieldRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "invalid json body")
		return
	}

	if err := h.Events.UpdateDraftProduct(productID, req.Field, string(req.Value)); err != nil {
		switch {
		case errors.Is(err, events.ErrUnknownField):
			writeError(w, http.StatusBadRequest, "invalid_request", "field must be quantityTaken or quantitySold")
		case errors.Is(err, events.ErrNegativeQuantity), errors.Is(err, events.ErrSoldExceedsTaken):
			h.log.BusinessError("events.draft: quantity rejected", err, "product_id", productID, "field", req.Field)
			writeError(w, http.StatusUnprocessableEntity, "validation_failed", err.Error())
		default:
			h.log.InternalError("events.draft: product update failed", err, "product_id", productID)
			writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
		}
		return
	}

	writeJSON(w, http.StatusOK, draftResponse{Event: h.Events.Draft(), IsEditing: h.Events.IsEditing()})
}

func (h *Handlers) IncrementSale(w http.ResponseWriter, r *http.Request) {
	h.Events.IncrementSale(chi.URLParam(r, "product_id"))
	writeJSON(w, http.StatusOK, draftResponse{Event: h.Events.Draft(), IsEditing: h.Events.IsEditing()})
}

func (h *Handlers) DecrementSale(w http.ResponseWriter, r *http.Request) {
	h.Events.DecrementSale(chi.URLParam(r, "product_id"))
	writeJSON(w, http.StatusOK, draftResponse{Event: h.Events.Draft(), IsEditing: h.Events.IsEditing()})
}

// FinalizeDraft rejects an unnamed draft here, before the store runs;
// the store itself does not validate.
func (h *Handlers) FinalizeDraft(w http.ResponseWriter, r *http.Request) {
	if strings.TrimSpace(h.Events.Draft().Name) == "" {
		writeError(w, http.StatusUnprocessableEntity, "validation_failed", "event name is required")
		return
	}

	saved, err := h.Events.FinalizeDraft(r.Context())
	if err != nil {
		h.log.InternalError("events.finalize: save failed", err)
		writeError(w, http.StatusBadGateway, "remote_unavailable", "could not persist event")
		return
	}

	writeJSON(w, http.StatusCreated, saved)
}

func (h *Handlers) LoadForEditing(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	event, err := h.Events.LoadForEditing(id)
	if err != nil {
		if errors.Is(err, events.ErrEventNotFound) {
			writeError(w, http.StatusNotFound, "event_not_found", "event not found")
			return
		}
		h.log.InternalError("events.edit: load failed", err, "event_id", id)
		writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
		return
	}

	writeJSON(w, http.StatusOK, event)
}

func (h *Handlers) DeleteSaved(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.Events.DeleteSaved(r.Context(), id); err != nil {
		if errors.Is(err, events.ErrEventNotFound) {
			writeError(w, http.StatusNotFound, "event_not_found", "event not found")
			return
		}
		h.log.InternalError("events.delete: remote delete failed", err, "event_id", id)
		writeError(w, http.StatusBadGateway, "remote_unavailable", "could not delete event")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) ResetDraft(w http.ResponseWriter, r *http.Request) {
	h.Events.ResetDraft()
	writeJSON(w, http.StatusOK, draftResponse{Event: h.Events.Draft(), IsEditing: false})
}
