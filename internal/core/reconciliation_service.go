package core

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// UnitsByStatus counts units per status on each side.
type UnitsByStatus struct {
	POUnits       map[OrderUnitStatus]int    `json:"po_units"`
	DeliveryUnits map[DeliveryUnitStatus]int `json:"delivery_units"`
}

// LinkStats aggregates unit and link state for a purchase order and/or delivery.
// LinkedUnits counts links with both ends in scope. A unit linked to a purchase order or
// delivery outside the scope is counted in LinkedElsewhere*, so on each side
// total = linked + linked elsewhere + unlinked.
type LinkStats struct {
	TotalPOUnits                 int           `json:"total_po_units"`
	TotalDeliveryUnits           int           `json:"total_delivery_units"`
	LinkedUnits                  int           `json:"linked_units"`
	UnlinkedPOUnits              int           `json:"unlinked_po_units"`
	UnlinkedDeliveryUnits        int           `json:"unlinked_delivery_units"`
	LinkedElsewherePOUnits       int           `json:"linked_elsewhere_po_units"`
	LinkedElsewhereDeliveryUnits int           `json:"linked_elsewhere_delivery_units"`
	ConfirmedLinks               int           `json:"confirmed_links"`
	DisputedLinks                int           `json:"disputed_links"`
	UnitsByStatus                UnitsByStatus `json:"units_by_status"`
}

// SerialMismatch is a link whose two units carry different, non-empty serial numbers.
// The link itself is left as it is.
type SerialMismatch struct {
	LinkID             uuid.UUID  `json:"link_id"`
	LinkStatus         LinkStatus `json:"link_status"`
	OrderUnitID        uuid.UUID  `json:"po_unit_id"`
	OrderUnitNumber    int        `json:"po_unit_number"`
	POSerial           string     `json:"po_serial"`
	DeliveryUnitID     uuid.UUID  `json:"delivery_unit_id"`
	DeliveryUnitNumber int        `json:"delivery_unit_number"`
	DeliverySerial     string     `json:"delivery_serial"`
}

// StatusSummary counts units and links per status.
type StatusSummary struct {
	UnitsByStatus
	Links map[LinkStatus]int `json:"links"`
}

// ReconciliationReport compares ordered, delivered, and linked units.
type ReconciliationReport struct {
	PurchaseOrderIDs       []uuid.UUID      `json:"purchase_order_ids"`
	DeliveryIDs            []uuid.UUID      `json:"delivery_ids"`
	TotalOrdered           int              `json:"total_ordered"`
	TotalDelivered         int              `json:"total_delivered"`
	TotalLinked            int              `json:"total_linked"`
	UnmatchedPOUnits       []OrderUnit      `json:"unmatched_po_units"`
	UnmatchedDeliveryUnits []DeliveryUnit   `json:"unmatched_delivery_units"`
	MismatchedSerials      []SerialMismatch `json:"mismatched_serials"`
	StatusSummary          StatusSummary    `json:"status_summary"`
	CompletionPercentage   decimal.Decimal  `json:"completion_percentage"`
}

// ReconciliationService reports on reconciliation progress. It only reads.
type ReconciliationService interface {
	// Stats aggregates unit and link counts. At least one id is required.
	Stats(ctx context.Context, purchaseOrderID, deliveryID *uuid.UUID) (*LinkStats, error)

	// Reconcile builds the itemized discrepancy report. At least one id is required; when only
	// one is given, the other side is everything connected to it by unit or quantity links.
	Reconcile(ctx context.Context, purchaseOrderID, deliveryID *uuid.UUID) (*ReconciliationReport, error)
}

type reconciliationService struct {
	store Store
}

// NewReconciliationService constructs a ReconciliationService over store.
func NewReconciliationService(store Store) ReconciliationService {
	return &reconciliationService{store: store}
}

// reconScope is the loaded state of every unit and link relevant to a report.
type reconScope struct {
	purchaseOrderIDs []uuid.UUID
	deliveryIDs      []uuid.UUID
	orderUnits       []OrderUnit
	deliveryUnits    []DeliveryUnit
	// links with both ends in scope
	links []UnitLink
	// any link touching an in-scope unit, including links into out-of-scope parents
	linkedOrder    map[uuid.UUID]bool
	linkedDelivery map[uuid.UUID]bool
}

func (s *reconciliationService) Stats(ctx context.Context, purchaseOrderID, deliveryID *uuid.UUID) (*LinkStats, error) {
	sc, err := s.loadScope(ctx, purchaseOrderID, deliveryID)
	if err != nil {
		return nil, err
	}

	st := &LinkStats{
		TotalPOUnits:       len(sc.orderUnits),
		TotalDeliveryUnits: len(sc.deliveryUnits),
		LinkedUnits:        len(sc.links),
		UnitsByStatus:      sc.unitsByStatus(),
	}
	inScopeOrder := make(map[uuid.UUID]bool, len(sc.links))
	inScopeDelivery := make(map[uuid.UUID]bool, len(sc.links))
	for _, l := range sc.links {
		inScopeOrder[l.OrderUnitID] = true
		inScopeDelivery[l.DeliveryUnitID] = true
	}
	for _, u := range sc.orderUnits {
		switch {
		case !sc.linkedOrder[u.ID]:
			st.UnlinkedPOUnits++
		case !inScopeOrder[u.ID]:
			st.LinkedElsewherePOUnits++
		}
	}
	for _, u := range sc.deliveryUnits {
		switch {
		case !sc.linkedDelivery[u.ID]:
			st.UnlinkedDeliveryUnits++
		case !inScopeDelivery[u.ID]:
			st.LinkedElsewhereDeliveryUnits++
		}
	}
	for _, l := range sc.links {
		switch l.Status {
		case LinkConfirmed:
			st.ConfirmedLinks++
		case LinkDisputed:
			st.DisputedLinks++
		}
	}
	return st, nil
}

func (s *reconciliationService) Reconcile(ctx context.Context, purchaseOrderID, deliveryID *uuid.UUID) (*ReconciliationReport, error) {
	sc, err := s.loadScope(ctx, purchaseOrderID, deliveryID)
	if err != nil {
		return nil, err
	}

	r := &ReconciliationReport{
		PurchaseOrderIDs:       sc.purchaseOrderIDs,
		DeliveryIDs:            sc.deliveryIDs,
		TotalOrdered:           len(sc.orderUnits),
		TotalDelivered:         len(sc.deliveryUnits),
		TotalLinked:            len(sc.links),
		UnmatchedPOUnits:       []OrderUnit{},
		UnmatchedDeliveryUnits: []DeliveryUnit{},
		MismatchedSerials:      []SerialMismatch{},
		StatusSummary: StatusSummary{
			UnitsByStatus: sc.unitsByStatus(),
			Links:         map[LinkStatus]int{},
		},
	}
	for _, u := range sc.orderUnits {
		if !sc.linkedOrder[u.ID] {
			r.UnmatchedPOUnits = append(r.UnmatchedPOUnits, u)
		}
	}
	for _, u := range sc.deliveryUnits {
		if !sc.linkedDelivery[u.ID] {
			r.UnmatchedDeliveryUnits = append(r.UnmatchedDeliveryUnits, u)
		}
	}

	orderByID := make(map[uuid.UUID]OrderUnit, len(sc.orderUnits))
	for _, u := range sc.orderUnits {
		orderByID[u.ID] = u
	}
	deliveryByID := make(map[uuid.UUID]DeliveryUnit, len(sc.deliveryUnits))
	for _, u := range sc.deliveryUnits {
		deliveryByID[u.ID] = u
	}
	for _, l := range sc.links {
		r.StatusSummary.Links[l.Status]++
		ou, du := orderByID[l.OrderUnitID], deliveryByID[l.DeliveryUnitID]
		if identifiersDiffer(ou.SerialNumber, du.SerialNumber) {
			r.MismatchedSerials = append(r.MismatchedSerials, SerialMismatch{
				LinkID:             l.ID,
				LinkStatus:         l.Status,
				OrderUnitID:        ou.ID,
				OrderUnitNumber:    ou.UnitNumber,
				POSerial:           normalizeIdentifier(ou.SerialNumber),
				DeliveryUnitID:     du.ID,
				DeliveryUnitNumber: du.UnitNumber,
				DeliverySerial:     normalizeIdentifier(du.SerialNumber),
			})
		}
	}

	r.CompletionPercentage = CompletionPercentage(r.TotalLinked, r.TotalOrdered, r.TotalDelivered)
	return r, nil
}

// CompletionPercentage is linked / max(ordered, delivered) * 100 rounded to two places.
// Nothing to reconcile counts as complete.
func CompletionPercentage(linked, ordered, delivered int) decimal.Decimal {
	denom := max(ordered, delivered)
	if denom == 0 {
		return decimal.NewFromInt(100)
	}
	return decimal.NewFromInt(int64(linked)).
		Mul(decimal.NewFromInt(100)).
		Div(decimal.NewFromInt(int64(denom))).
		Round(2)
}

func (sc *reconScope) unitsByStatus() UnitsByStatus {
	out := UnitsByStatus{
		POUnits:       map[OrderUnitStatus]int{},
		DeliveryUnits: map[DeliveryUnitStatus]int{},
	}
	for _, u := range sc.orderUnits {
		out.POUnits[u.Status]++
	}
	for _, u := range sc.deliveryUnits {
		out.DeliveryUnits[u.Status]++
	}
	return out
}

func (s *reconciliationService) loadScope(ctx context.Context, purchaseOrderID, deliveryID *uuid.UUID) (*reconScope, error) {
	if purchaseOrderID == nil && deliveryID == nil {
		return nil, invalidInput("purchase_order_id or delivery_id is required")
	}
	sc := &reconScope{purchaseOrderIDs: ids(1), deliveryIDs: ids(1)}

	if purchaseOrderID != nil {
		if _, err := s.store.GetPurchaseOrder(ctx, *purchaseOrderID); err != nil {
			return nil, err
		}
		sc.purchaseOrderIDs = append(sc.purchaseOrderIDs, *purchaseOrderID)
	}
	if deliveryID != nil {
		if _, err := s.store.GetDelivery(ctx, *deliveryID); err != nil {
			return nil, err
		}
		sc.deliveryIDs = append(sc.deliveryIDs, *deliveryID)
	}

	switch {
	case deliveryID == nil:
		connected, err := s.connectedDeliveries(ctx, *purchaseOrderID)
		if err != nil {
			return nil, err
		}
		sc.deliveryIDs = connected
	case purchaseOrderID == nil:
		connected, err := s.connectedPurchaseOrders(ctx, *deliveryID)
		if err != nil {
			return nil, err
		}
		sc.purchaseOrderIDs = connected
	}

	var err error
	sc.orderUnits, err = s.store.ListOrderUnits(ctx, OrderUnitFilter{PurchaseOrderIDs: sc.purchaseOrderIDs})
	if err != nil {
		return nil, fmt.Errorf("load po units: %w", err)
	}
	sc.deliveryUnits, err = s.store.ListDeliveryUnits(ctx, DeliveryUnitFilter{DeliveryIDs: sc.deliveryIDs})
	if err != nil {
		return nil, fmt.Errorf("load delivery units: %w", err)
	}

	orderLinks, err := s.store.ListLinks(ctx, LinkFilter{PurchaseOrderIDs: sc.purchaseOrderIDs})
	if err != nil {
		return nil, fmt.Errorf("load po links: %w", err)
	}
	deliveryLinks, err := s.store.ListLinks(ctx, LinkFilter{DeliveryIDs: sc.deliveryIDs})
	if err != nil {
		return nil, fmt.Errorf("load delivery links: %w", err)
	}

	sc.linkedOrder = make(map[uuid.UUID]bool, len(orderLinks))
	for _, l := range orderLinks {
		sc.linkedOrder[l.OrderUnitID] = true
	}
	sc.linkedDelivery = make(map[uuid.UUID]bool, len(deliveryLinks))
	inDelivery := make(map[uuid.UUID]bool, len(deliveryLinks))
	for _, l := range deliveryLinks {
		sc.linkedDelivery[l.DeliveryUnitID] = true
		inDelivery[l.ID] = true
	}
	sc.links = []UnitLink{}
	for _, l := range orderLinks {
		if inDelivery[l.ID] {
			sc.links = append(sc.links, l)
		}
	}
	return sc, nil
}

// connectedDeliveries returns every delivery tied to the purchase order by a unit link
// or a quantity link.
func (s *reconciliationService) connectedDeliveries(ctx context.Context, purchaseOrderID uuid.UUID) ([]uuid.UUID, error) {
	links, err := s.store.ListLinks(ctx, LinkFilter{PurchaseOrderIDs: []uuid.UUID{purchaseOrderID}})
	if err != nil {
		return nil, fmt.Errorf("load po links: %w", err)
	}
	unitIDs := ids(len(links))
	for _, l := range links {
		unitIDs = append(unitIDs, l.DeliveryUnitID)
	}
	itemIDs := ids(len(links))
	if len(unitIDs) > 0 {
		units, err := s.store.ListDeliveryUnits(ctx, DeliveryUnitFilter{IDs: unitIDs})
		if err != nil {
			return nil, fmt.Errorf("load linked delivery units: %w", err)
		}
		for _, u := range units {
			itemIDs = append(itemIDs, u.DeliveryItemID)
		}
	}

	qlinks, err := s.store.ListQuantityLinks(ctx, QuantityLinkFilter{PurchaseOrderIDs: []uuid.UUID{purchaseOrderID}})
	if err != nil {
		return nil, fmt.Errorf("load po quantity links: %w", err)
	}
	for _, q := range qlinks {
		itemIDs = append(itemIDs, q.DeliveryItemID)
	}

	out := ids(len(itemIDs))
	if len(itemIDs) == 0 {
		return out, nil
	}
	items, err := s.store.ListDeliveryItems(ctx, ItemFilter{IDs: itemIDs})
	if err != nil {
		return nil, fmt.Errorf("load linked delivery items: %w", err)
	}
	seen := map[uuid.UUID]bool{}
	for _, it := range items {
		if !seen[it.DeliveryID] {
			seen[it.DeliveryID] = true
			out = append(out, it.DeliveryID)
		}
	}
	return out, nil
}

// connectedPurchaseOrders is the delivery-side counterpart of connectedDeliveries.
func (s *reconciliationService) connectedPurchaseOrders(ctx context.Context, deliveryID uuid.UUID) ([]uuid.UUID, error) {
	links, err := s.store.ListLinks(ctx, LinkFilter{DeliveryIDs: []uuid.UUID{deliveryID}})
	if err != nil {
		return nil, fmt.Errorf("load delivery links: %w", err)
	}
	unitIDs := ids(len(links))
	for _, l := range links {
		unitIDs = append(unitIDs, l.OrderUnitID)
	}
	itemIDs := ids(len(links))
	if len(unitIDs) > 0 {
		units, err := s.store.ListOrderUnits(ctx, OrderUnitFilter{IDs: unitIDs})
		if err != nil {
			return nil, fmt.Errorf("load linked po units: %w", err)
		}
		for _, u := range units {
			itemIDs = append(itemIDs, u.OrderItemID)
		}
	}

	qlinks, err := s.store.ListQuantityLinks(ctx, QuantityLinkFilter{DeliveryIDs: []uuid.UUID{deliveryID}})
	if err != nil {
		return nil, fmt.Errorf("load delivery quantity links: %w", err)
	}
	for _, q := range qlinks {
		itemIDs = append(itemIDs, q.OrderItemID)
	}

	out := ids(len(itemIDs))
	if len(itemIDs) == 0 {
		return out, nil
	}
	items, err := s.store.ListOrderItems(ctx, ItemFilter{IDs: itemIDs})
	if err != nil {
		return nil, fmt.Errorf("load linked po items: %w", err)
	}
	seen := map[uuid.UUID]bool{}
	for _, it := range items {
		if !seen[it.PurchaseOrderID] {
			seen[it.PurchaseOrderID] = true
			out = append(out, it.PurchaseOrderID)
		}
	}
	return out, nil
}
