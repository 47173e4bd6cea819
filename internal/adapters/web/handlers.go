package web

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"unit-recon/internal/app"
)

// Handler holds the ApplicationService and the chi router.
type Handler struct {
	svc    app.ApplicationService
	router chi.Router
}

// NewHandler creates and wires the chi router with all routes.
// bodyLimit caps every request body in bytes.
func NewHandler(svc app.ApplicationService, allowedOrigins string, bodyLimit int64) http.Handler {
	h := &Handler{svc: svc}

	r := chi.NewRouter()
	r.Use(RequestID)
	r.Use(Logger)
	r.Use(Recoverer)
	r.Use(CORS(allowedOrigins))
	r.Use(RequestBodyLimit(bodyLimit))

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", h.health)

		// ── Purchase orders and deliveries ────────────────────────────────────
		r.Post("/purchase-orders", h.createPurchaseOrder)
		r.Get("/purchase-orders/{id}", h.getPurchaseOrder)
		r.Post("/purchase-orders/{id}/items", h.addOrderItem)
		r.Post("/deliveries", h.createDelivery)
		r.Get("/deliveries/{id}", h.getDelivery)
		r.Post("/deliveries/{id}/items", h.addDeliveryItem)

		// ── Units ─────────────────────────────────────────────────────────────
		r.Get("/order-items/{id}/units", h.listOrderUnits)
		r.Patch("/order-units/{id}", h.updateOrderUnit)
		r.Get("/delivery-items/{id}/units", h.listDeliveryUnits)
		r.Patch("/delivery-units/{id}", h.updateDeliveryUnit)

		// ── Unit links ────────────────────────────────────────────────────────
		r.Get("/links", h.listLinks)
		r.Post("/links", h.createLink)
		r.Post("/links/bulk", h.bulkCreateLinks)
		r.Post("/links/validate", h.validateLink)
		r.Patch("/links/{id}", h.updateLink)
		r.Post("/links/{id}/confirm", h.confirmLink)
		r.Delete("/links/{id}", h.deleteLink)

		// ── Auto-matcher ──────────────────────────────────────────────────────
		r.Post("/auto-link", h.autoLink)
		r.Post("/auto-link/preview", h.previewAutoLink)

		// ── Reporting ─────────────────────────────────────────────────────────
		r.Get("/stats", h.stats)
		r.Get("/reconciliation", h.reconciliation)

		// ── Quantity links ────────────────────────────────────────────────────
		r.Get("/quantity-links", h.listQuantityLinks)
		r.Post("/quantity-links", h.createQuantityLink)
		r.Delete("/quantity-links/{id}", h.deleteQuantityLink)

		// ── Request schemas ───────────────────────────────────────────────────
		r.Get("/schemas", h.listSchemas)
		r.Get("/schemas/{name}", h.getSchema)
	})

	h.router = r
	return r
}

// health returns service status; 503 when the store does not answer.
func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	type response struct {
		Status string `json:"status"`
	}
	if err := h.svc.Health(r.Context()); err != nil {
		writeJSONStatus(w, http.StatusServiceUnavailable, response{Status: "unavailable"})
		return
	}
	writeJSON(w, response{Status: "ok"})
}

// pathID parses the {id} URL parameter, writing a 400 on failure.
func pathID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, "invalid id: "+chi.URLParam(r, "id"), "INVALID_INPUT", http.StatusBadRequest)
		return uuid.Nil, false
	}
	return id, true
}

// queryScope reads purchase_order_id and delivery_id from the query string.
func queryScope(w http.ResponseWriter, r *http.Request) (app.Scope, bool) {
	var scope app.Scope
	for name, dst := range map[string]**uuid.UUID{
		"purchase_order_id": &scope.PurchaseOrderID,
		"delivery_id":       &scope.DeliveryID,
	} {
		raw := r.URL.Query().Get(name)
		if raw == "" {
			continue
		}
		id, err := uuid.Parse(raw)
		if err != nil {
			writeError(w, r, "invalid "+name+": "+raw, "INVALID_INPUT", http.StatusBadRequest)
			return app.Scope{}, false
		}
		*dst = &id
	}
	return scope, true
}

// decodeJSON decodes the request body into v and returns false + writes an appropriate
// error response on failure. Returns HTTP 413 when the body exceeds the size limit set
// by RequestBodyLimit middleware; HTTP 400 for all other decode errors.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			writeError(w, r, "request body too large", "REQUEST_TOO_LARGE", http.StatusRequestEntityTooLarge)
			return false
		}
		writeError(w, r, "invalid JSON body: "+err.Error(), "BAD_REQUEST", http.StatusBadRequest)
		return false
	}
	return true
}
