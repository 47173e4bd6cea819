package web

import (
	"net/http"

	"unit-recon/internal/app"
)

// createPurchaseOrder handles POST /api/purchase-orders.
func (h *Handler) createPurchaseOrder(w http.ResponseWriter, r *http.Request) {
	var req app.CreatePurchaseOrderRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	res, err := h.svc.CreatePurchaseOrder(r.Context(), req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSONStatus(w, http.StatusCreated, res)
}

// getPurchaseOrder handles GET /api/purchase-orders/{id}.
func (h *Handler) getPurchaseOrder(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	res, err := h.svc.GetPurchaseOrder(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, res)
}

// addOrderItem handles POST /api/purchase-orders/{id}/items.
func (h *Handler) addOrderItem(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req app.AddLineItemRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	res, err := h.svc.AddOrderItem(r.Context(), id, req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSONStatus(w, http.StatusCreated, res)
}

// createDelivery handles POST /api/deliveries.
func (h *Handler) createDelivery(w http.ResponseWriter, r *http.Request) {
	var req app.CreateDeliveryRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	res, err := h.svc.CreateDelivery(r.Context(), req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSONStatus(w, http.StatusCreated, res)
}

// getDelivery handles GET /api/deliveries/{id}.
func (h *Handler) getDelivery(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	res, err := h.svc.GetDelivery(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, res)
}

// addDeliveryItem handles POST /api/deliveries/{id}/items.
func (h *Handler) addDeliveryItem(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req app.AddLineItemRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	res, err := h.svc.AddDeliveryItem(r.Context(), id, req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSONStatus(w, http.StatusCreated, res)
}

// listOrderUnits handles GET /api/order-items/{id}/units.
func (h *Handler) listOrderUnits(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	units, err := h.svc.ListOrderUnits(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, units)
}

// updateOrderUnit handles PATCH /api/order-units/{id}.
func (h *Handler) updateOrderUnit(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req app.UpdateOrderUnitRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	unit, err := h.svc.UpdateOrderUnit(r.Context(), id, req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, unit)
}

// listDeliveryUnits handles GET /api/delivery-items/{id}/units.
func (h *Handler) listDeliveryUnits(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	units, err := h.svc.ListDeliveryUnits(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, units)
}

// updateDeliveryUnit handles PATCH /api/delivery-units/{id}.
func (h *Handler) updateDeliveryUnit(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req app.UpdateDeliveryUnitRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	unit, err := h.svc.UpdateDeliveryUnit(r.Context(), id, req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, unit)
}
