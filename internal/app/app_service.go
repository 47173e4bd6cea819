package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"unit-recon/internal/core"
)

type appService struct {
	procurement core.ProcurementService
	units       core.UnitService
	links       core.LinkService
	validator   core.Validator
	matcher     core.AutoMatcher
	recon       core.ReconciliationService
	quantities  core.QuantityLinkService
	ping        func(context.Context) error
}

// NewAppService wires every core service over store and returns the adapter-facing facade.
// guard may be nil to disable auto-link debouncing; ping may be nil when the store has
// no connection to check.
func NewAppService(store core.Store, guard core.AutoLinkGuard, debounce time.Duration, ping func(context.Context) error) ApplicationService {
	links := core.NewLinkService(store)
	return &appService{
		procurement: core.NewProcurementService(store),
		units:       core.NewUnitService(store),
		links:       links,
		validator:   core.NewValidator(store),
		matcher:     core.NewAutoMatcher(store, links, guard, debounce),
		recon:       core.NewReconciliationService(store),
		quantities:  core.NewQuantityLinkService(store),
		ping:        ping,
	}
}

func (s *appService) Health(ctx context.Context) error {
	if s.ping == nil {
		return nil
	}
	return s.ping(ctx)
}

// ── Purchase orders and deliveries ───────────────────────────────────────────

func (s *appService) CreatePurchaseOrder(ctx context.Context, req CreatePurchaseOrderRequest) (*PurchaseOrderResult, error) {
	if err := checkRequest(req); err != nil {
		return nil, err
	}
	po, err := s.procurement.CreatePurchaseOrder(ctx, core.PurchaseOrderInput{
		PONumber: strings.TrimSpace(req.PONumber),
		Supplier: strings.TrimSpace(req.Supplier),
	})
	if err != nil {
		return nil, err
	}
	return &PurchaseOrderResult{PurchaseOrder: po, Items: []core.PurchaseOrderItem{}}, nil
}

func (s *appService) GetPurchaseOrder(ctx context.Context, id uuid.UUID) (*PurchaseOrderResult, error) {
	po, err := s.procurement.GetPurchaseOrder(ctx, id)
	if err != nil {
		return nil, err
	}
	items, err := s.procurement.ListOrderItems(ctx, id)
	if err != nil {
		return nil, err
	}
	return &PurchaseOrderResult{PurchaseOrder: po, Items: items}, nil
}

func (s *appService) AddOrderItem(ctx context.Context, purchaseOrderID uuid.UUID, req AddLineItemRequest) (*OrderItemResult, error) {
	if err := checkRequest(req); err != nil {
		return nil, err
	}
	item, units, err := s.procurement.AddOrderItem(ctx, purchaseOrderID, req.lineItem())
	if err != nil {
		return nil, err
	}
	return &OrderItemResult{Item: item, Units: units}, nil
}

func (s *appService) CreateDelivery(ctx context.Context, req CreateDeliveryRequest) (*DeliveryResult, error) {
	if err := checkRequest(req); err != nil {
		return nil, err
	}
	d, err := s.procurement.CreateDelivery(ctx, core.DeliveryInput{
		DeliveryNumber: strings.TrimSpace(req.DeliveryNumber),
		Supplier:       strings.TrimSpace(req.Supplier),
		DeliveredAt:    req.DeliveredAt,
	})
	if err != nil {
		return nil, err
	}
	return &DeliveryResult{Delivery: d, Items: []core.DeliveryItem{}}, nil
}

func (s *appService) GetDelivery(ctx context.Context, id uuid.UUID) (*DeliveryResult, error) {
	d, err := s.procurement.GetDelivery(ctx, id)
	if err != nil {
		return nil, err
	}
	items, err := s.procurement.ListDeliveryItems(ctx, id)
	if err != nil {
		return nil, err
	}
	return &DeliveryResult{Delivery: d, Items: items}, nil
}

func (s *appService) AddDeliveryItem(ctx context.Context, deliveryID uuid.UUID, req AddLineItemRequest) (*DeliveryItemResult, error) {
	if err := checkRequest(req); err != nil {
		return nil, err
	}
	item, units, err := s.procurement.AddDeliveryItem(ctx, deliveryID, req.lineItem())
	if err != nil {
		return nil, err
	}
	return &DeliveryItemResult{Item: item, Units: units}, nil
}

func (r AddLineItemRequest) lineItem() core.LineItemInput {
	return core.LineItemInput{ProductID: r.ProductID, Model: strings.TrimSpace(r.Model), Quantity: r.Quantity}
}

// ── Units ────────────────────────────────────────────────────────────────────

func (s *appService) ListOrderUnits(ctx context.Context, orderItemID uuid.UUID) ([]core.OrderUnit, error) {
	return s.units.ListOrderUnits(ctx, orderItemID)
}

func (s *appService) ListDeliveryUnits(ctx context.Context, deliveryItemID uuid.UUID) ([]core.DeliveryUnit, error) {
	return s.units.ListDeliveryUnits(ctx, deliveryItemID)
}

func (s *appService) UpdateOrderUnit(ctx context.Context, id uuid.UUID, req UpdateOrderUnitRequest) (*core.OrderUnit, error) {
	if err := checkRequest(req); err != nil {
		return nil, err
	}
	return s.units.UpdateOrderUnit(ctx, id, core.OrderUnitUpdate{
		SerialNumber: req.SerialNumber,
		BatchNumber:  req.BatchNumber,
		Status:       req.Status,
		Notes:        req.Notes,
	})
}

func (s *appService) UpdateDeliveryUnit(ctx context.Context, id uuid.UUID, req UpdateDeliveryUnitRequest) (*core.DeliveryUnit, error) {
	if err := checkRequest(req); err != nil {
		return nil, err
	}
	return s.units.UpdateDeliveryUnit(ctx, id, core.DeliveryUnitUpdate{
		SerialNumber:   req.SerialNumber,
		BatchNumber:    req.BatchNumber,
		Status:         req.Status,
		ConditionNotes: req.ConditionNotes,
	})
}

// ── Unit links ───────────────────────────────────────────────────────────────

func (s *appService) ListLinks(ctx context.Context, scope Scope) (*LinkListResult, error) {
	links, err := s.links.ListLinks(ctx, scope.PurchaseOrderID, scope.DeliveryID)
	if err != nil {
		return nil, err
	}
	return &LinkListResult{Links: links, Count: len(links)}, nil
}

func (s *appService) ValidateLink(ctx context.Context, req ValidateLinkRequest) (*core.ValidationResult, error) {
	if err := checkRequest(req); err != nil {
		return nil, err
	}
	return s.validator.Validate(ctx, req.OrderUnitID, req.DeliveryUnitID, core.ValidateOptions{
		RequireSerialMatch: req.RequireSerialMatch,
		RequireBatchMatch:  req.RequireBatchMatch,
	})
}

func (r CreateLinkRequest) input() core.CreateLinkInput {
	return core.CreateLinkInput{
		OrderUnitID:        r.OrderUnitID,
		DeliveryUnitID:     r.DeliveryUnitID,
		Status:             r.Status,
		Notes:              r.Notes,
		RequireSerialMatch: r.RequireSerialMatch,
		RequireBatchMatch:  r.RequireBatchMatch,
	}
}

func (s *appService) CreateLink(ctx context.Context, req CreateLinkRequest) (*core.UnitLink, error) {
	if err := checkRequest(req); err != nil {
		return nil, err
	}
	return s.links.CreateLink(ctx, req.input())
}

func (s *appService) BulkCreateLinks(ctx context.Context, req BulkCreateLinksRequest) (*LinkListResult, error) {
	if err := checkRequest(req); err != nil {
		return nil, err
	}
	in := make([]core.CreateLinkInput, len(req.Links))
	for i, l := range req.Links {
		in[i] = l.input()
	}
	links, err := s.links.BulkCreateLinks(ctx, in)
	if err != nil {
		return nil, err
	}
	return &LinkListResult{Links: links, Count: len(links)}, nil
}

func (s *appService) UpdateLink(ctx context.Context, id uuid.UUID, req UpdateLinkRequest) (*core.UnitLink, error) {
	if err := checkRequest(req); err != nil {
		return nil, err
	}
	return s.links.UpdateLink(ctx, id, core.LinkUpdate{
		Status:      req.Status,
		Notes:       req.Notes,
		ConfirmedBy: req.ConfirmedBy,
	})
}

func (s *appService) ConfirmLink(ctx context.Context, id uuid.UUID, req ConfirmLinkRequest) (*core.UnitLink, error) {
	if err := checkRequest(req); err != nil {
		return nil, err
	}
	return s.links.ConfirmLink(ctx, id, strings.TrimSpace(req.ConfirmedBy))
}

func (s *appService) DeleteLink(ctx context.Context, id uuid.UUID) error {
	return s.links.DeleteLink(ctx, id)
}

// ── Auto-matcher ─────────────────────────────────────────────────────────────

func (s *appService) AutoLink(ctx context.Context, req AutoLinkRequest) (*core.AutoLinkResult, error) {
	if err := checkRequest(req); err != nil {
		return nil, err
	}
	res, err := s.matcher.AutoLink(ctx, req.PurchaseOrderID, req.DeliveryID, req.options())
	if err != nil {
		return nil, fmt.Errorf("auto-link %s/%s: %w", req.PurchaseOrderID, req.DeliveryID, err)
	}
	return res, nil
}

func (s *appService) PreviewAutoLink(ctx context.Context, req AutoLinkRequest) (*PreviewResult, error) {
	if err := checkRequest(req); err != nil {
		return nil, err
	}
	pairs, err := s.matcher.Preview(ctx, req.PurchaseOrderID, req.DeliveryID, req.options())
	if err != nil {
		return nil, err
	}
	return &PreviewResult{Links: pairs, Count: len(pairs)}, nil
}

// ── Reporting ────────────────────────────────────────────────────────────────

func (s *appService) GetStats(ctx context.Context, scope Scope) (*core.LinkStats, error) {
	return s.recon.Stats(ctx, scope.PurchaseOrderID, scope.DeliveryID)
}

func (s *appService) Reconcile(ctx context.Context, scope Scope) (*core.ReconciliationReport, error) {
	return s.recon.Reconcile(ctx, scope.PurchaseOrderID, scope.DeliveryID)
}

// ── Quantity links ───────────────────────────────────────────────────────────

func (s *appService) ListQuantityLinks(ctx context.Context, scope Scope) ([]core.QuantityLink, error) {
	return s.quantities.ListQuantityLinks(ctx, scope.PurchaseOrderID, scope.DeliveryID)
}

func (s *appService) CreateQuantityLink(ctx context.Context, req CreateQuantityLinkRequest) (*core.QuantityLink, error) {
	if err := checkRequest(req); err != nil {
		return nil, err
	}
	return s.quantities.LinkQuantity(ctx, core.QuantityLinkInput{
		DeliveryItemID: req.DeliveryItemID,
		OrderItemID:    req.OrderItemID,
		Quantity:       req.Quantity,
	})
}

func (s *appService) DeleteQuantityLink(ctx context.Context, id uuid.UUID) error {
	return s.quantities.DeleteQuantityLink(ctx, id)
}
