package web

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"unit-recon/internal/app"
)

// stats handles GET /api/stats?purchase_order_id=&delivery_id=.
func (h *Handler) stats(w http.ResponseWriter, r *http.Request) {
	scope, ok := queryScope(w, r)
	if !ok {
		return
	}
	res, err := h.svc.GetStats(r.Context(), scope)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, res)
}

// reconciliation handles GET /api/reconciliation?purchase_order_id=&delivery_id=.
func (h *Handler) reconciliation(w http.ResponseWriter, r *http.Request) {
	scope, ok := queryScope(w, r)
	if !ok {
		return
	}
	res, err := h.svc.Reconcile(r.Context(), scope)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, res)
}

// listQuantityLinks handles GET /api/quantity-links?purchase_order_id=&delivery_id=.
func (h *Handler) listQuantityLinks(w http.ResponseWriter, r *http.Request) {
	scope, ok := queryScope(w, r)
	if !ok {
		return
	}
	links, err := h.svc.ListQuantityLinks(r.Context(), scope)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, links)
}

// createQuantityLink handles POST /api/quantity-links.
func (h *Handler) createQuantityLink(w http.ResponseWriter, r *http.Request) {
	var req app.CreateQuantityLinkRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	link, err := h.svc.CreateQuantityLink(r.Context(), req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSONStatus(w, http.StatusCreated, link)
}

// deleteQuantityLink handles DELETE /api/quantity-links/{id}.
func (h *Handler) deleteQuantityLink(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := h.svc.DeleteQuantityLink(r.Context(), id); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// listSchemas handles GET /api/schemas.
func (h *Handler) listSchemas(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string][]string{"schemas": app.SchemaNames()})
}

// getSchema handles GET /api/schemas/{name}.
func (h *Handler) getSchema(w http.ResponseWriter, r *http.Request) {
	s, err := app.RequestSchema(chi.URLParam(r, "name"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, s)
}
