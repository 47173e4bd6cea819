package web

import (
	"net/http"

	"unit-recon/internal/app"
)

// listLinks handles GET /api/links?purchase_order_id=&delivery_id=.
func (h *Handler) listLinks(w http.ResponseWriter, r *http.Request) {
	scope, ok := queryScope(w, r)
	if !ok {
		return
	}
	res, err := h.svc.ListLinks(r.Context(), scope)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, res)
}

// createLink handles POST /api/links.
func (h *Handler) createLink(w http.ResponseWriter, r *http.Request) {
	var req app.CreateLinkRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	link, err := h.svc.CreateLink(r.Context(), req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSONStatus(w, http.StatusCreated, link)
}

// bulkCreateLinks handles POST /api/links/bulk. Either every pair is linked or none is.
func (h *Handler) bulkCreateLinks(w http.ResponseWriter, r *http.Request) {
	var req app.BulkCreateLinksRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	res, err := h.svc.BulkCreateLinks(r.Context(), req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSONStatus(w, http.StatusCreated, res)
}

// validateLink handles POST /api/links/validate. A rejected pair is still a 200;
// the verdict is in the body.
func (h *Handler) validateLink(w http.ResponseWriter, r *http.Request) {
	var req app.ValidateLinkRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	res, err := h.svc.ValidateLink(r.Context(), req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, res)
}

// updateLink handles PATCH /api/links/{id}.
func (h *Handler) updateLink(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req app.UpdateLinkRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	link, err := h.svc.UpdateLink(r.Context(), id, req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, link)
}

// confirmLink handles POST /api/links/{id}/confirm.
func (h *Handler) confirmLink(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req app.ConfirmLinkRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	link, err := h.svc.ConfirmLink(r.Context(), id, req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, link)
}

// deleteLink handles DELETE /api/links/{id}.
func (h *Handler) deleteLink(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := h.svc.DeleteLink(r.Context(), id); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// autoLink handles POST /api/auto-link.
func (h *Handler) autoLink(w http.ResponseWriter, r *http.Request) {
	var req app.AutoLinkRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	res, err := h.svc.AutoLink(r.Context(), req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, res)
}

// previewAutoLink handles POST /api/auto-link/preview.
func (h *Handler) previewAutoLink(w http.ResponseWriter, r *http.Request) {
	var req app.AutoLinkRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	res, err := h.svc.PreviewAutoLink(r.Context(), req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, res)
}
