package core

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// AutoLinkGuard debounces repeated auto-link calls for the same purchase order and delivery.
// Acquire returns false when key was already taken within ttl. Release gives the key back
// early so a failed call does not block its own retry.
type AutoLinkGuard interface {
	Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error)
	Release(ctx context.Context, key string) error
}

// AutoLinkKey is the guard key for a (purchase order, delivery) pair.
func AutoLinkKey(purchaseOrderID, deliveryID uuid.UUID) string {
	return "autolink:" + purchaseOrderID.String() + ":" + deliveryID.String()
}

// AutoLinkOptions tightens matching beyond product equality.
type AutoLinkOptions struct {
	MatchBySerial bool `json:"match_by_serial"`
	MatchByBatch  bool `json:"match_by_batch"`
}

// LinkPair is one proposed pairing.
type LinkPair struct {
	OrderUnitID        uuid.UUID `json:"po_unit_id"`
	OrderUnitNumber    int       `json:"po_unit_number"`
	DeliveryUnitID     uuid.UUID `json:"delivery_unit_id"`
	DeliveryUnitNumber int       `json:"delivery_unit_number"`
	Product            string    `json:"product"`
}

// AutoLinkResult reports the outcome of an auto-link call. Created is zero both when
// nothing matched and when the call was debounced.
type AutoLinkResult struct {
	Created   int        `json:"created"`
	Links     []UnitLink `json:"links"`
	Debounced bool       `json:"debounced"`
}

// AutoMatcher pairs unlinked units of a purchase order and a delivery in bulk.
type AutoMatcher interface {
	// AutoLink proposes pairs greedily and persists them in one atomic bulk request.
	AutoLink(ctx context.Context, purchaseOrderID, deliveryID uuid.UUID, opts AutoLinkOptions) (*AutoLinkResult, error)

	// Preview returns the pairs AutoLink would submit without writing anything.
	Preview(ctx context.Context, purchaseOrderID, deliveryID uuid.UUID, opts AutoLinkOptions) ([]LinkPair, error)
}

type autoMatcher struct {
	store    Store
	links    LinkService
	guard    AutoLinkGuard
	debounce time.Duration
}

// NewAutoMatcher constructs an AutoMatcher. guard may be nil; a zero debounce disables it.
func NewAutoMatcher(store Store, links LinkService, guard AutoLinkGuard, debounce time.Duration) AutoMatcher {
	return &autoMatcher{store: store, links: links, guard: guard, debounce: debounce}
}

func (m *autoMatcher) AutoLink(ctx context.Context, purchaseOrderID, deliveryID uuid.UUID, opts AutoLinkOptions) (*AutoLinkResult, error) {
	key := AutoLinkKey(purchaseOrderID, deliveryID)
	held := false
	if m.guard != nil && m.debounce > 0 {
		ok, err := m.guard.Acquire(ctx, key, m.debounce)
		switch {
		case err != nil:
			log.Warn().Err(err).Msg("auto-link: debounce guard unavailable, continuing")
		case !ok:
			log.Info().
				Stringer("purchase_order_id", purchaseOrderID).
				Stringer("delivery_id", deliveryID).
				Msg("auto-link: debounced")
			return &AutoLinkResult{Links: []UnitLink{}, Debounced: true}, nil
		default:
			held = true
		}
	}

	res, err := m.autoLink(ctx, purchaseOrderID, deliveryID, opts)
	if err != nil && held {
		// nothing was linked, so the retry must not be debounced
		if relErr := m.guard.Release(context.WithoutCancel(ctx), key); relErr != nil {
			log.Warn().Err(relErr).Str("key", key).Msg("auto-link: debounce key not released")
		}
	}
	return res, err
}

func (m *autoMatcher) autoLink(ctx context.Context, purchaseOrderID, deliveryID uuid.UUID, opts AutoLinkOptions) (*AutoLinkResult, error) {
	pairs, err := m.Preview(ctx, purchaseOrderID, deliveryID, opts)
	if err != nil {
		return nil, err
	}
	if len(pairs) == 0 {
		log.Info().
			Stringer("purchase_order_id", purchaseOrderID).
			Stringer("delivery_id", deliveryID).
			Msg("auto-link: no matching units found")
		return &AutoLinkResult{Links: []UnitLink{}}, nil
	}

	in := make([]CreateLinkInput, len(pairs))
	for i, p := range pairs {
		in[i] = CreateLinkInput{
			OrderUnitID:        p.OrderUnitID,
			DeliveryUnitID:     p.DeliveryUnitID,
			Notes:              "auto-linked",
			RequireSerialMatch: opts.MatchBySerial,
			RequireBatchMatch:  opts.MatchByBatch,
		}
	}
	created, err := m.links.BulkCreateLinks(ctx, in)
	if err != nil {
		return nil, fmt.Errorf("auto-link: %w", err)
	}

	log.Info().
		Stringer("purchase_order_id", purchaseOrderID).
		Stringer("delivery_id", deliveryID).
		Int("created", len(created)).
		Bool("match_by_serial", opts.MatchBySerial).
		Bool("match_by_batch", opts.MatchByBatch).
		Msg("auto-link: links created")
	return &AutoLinkResult{Created: len(created), Links: created}, nil
}

// Preview proposes pairs greedily: each order unit, in (item created_at, item id, unit number)
// order, takes the first compatible delivery unit not yet claimed by this call.
func (m *autoMatcher) Preview(ctx context.Context, purchaseOrderID, deliveryID uuid.UUID, opts AutoLinkOptions) ([]LinkPair, error) {
	if _, err := m.store.GetPurchaseOrder(ctx, purchaseOrderID); err != nil {
		return nil, err
	}
	if _, err := m.store.GetDelivery(ctx, deliveryID); err != nil {
		return nil, err
	}

	orderItems, err := m.store.ListOrderItems(ctx, ItemFilter{ParentIDs: []uuid.UUID{purchaseOrderID}})
	if err != nil {
		return nil, fmt.Errorf("load po items: %w", err)
	}
	deliveryItems, err := m.store.ListDeliveryItems(ctx, ItemFilter{ParentIDs: []uuid.UUID{deliveryID}})
	if err != nil {
		return nil, fmt.Errorf("load delivery items: %w", err)
	}
	orderRefs := make(map[uuid.UUID]ProductRef, len(orderItems))
	for _, it := range orderItems {
		orderRefs[it.ID] = it.Ref()
	}
	deliveryRefs := make(map[uuid.UUID]ProductRef, len(deliveryItems))
	for _, it := range deliveryItems {
		deliveryRefs[it.ID] = it.Ref()
	}

	orderUnits, err := m.store.ListOrderUnits(ctx, OrderUnitFilter{
		PurchaseOrderIDs: []uuid.UUID{purchaseOrderID},
		Statuses:         []OrderUnitStatus{OrderUnitOrdered},
	})
	if err != nil {
		return nil, fmt.Errorf("load unlinked po units: %w", err)
	}
	deliveryUnits, err := m.store.ListDeliveryUnits(ctx, DeliveryUnitFilter{
		DeliveryIDs: []uuid.UUID{deliveryID},
		Statuses:    []DeliveryUnitStatus{DeliveryUnitDelivered},
	})
	if err != nil {
		return nil, fmt.Errorf("load unlinked delivery units: %w", err)
	}

	// Status alone is not proof of being unlinked: a unit updated independently can carry
	// "ordered" or "delivered" while still referenced by a link.
	linkedOrder, linkedDelivery, err := m.linkedUnits(ctx, orderUnits, deliveryUnits)
	if err != nil {
		return nil, err
	}

	claimed := make(map[uuid.UUID]bool, len(deliveryUnits))
	pairs := []LinkPair{}
	for _, ou := range orderUnits {
		if linkedOrder[ou.ID] {
			continue
		}
		oref := orderRefs[ou.OrderItemID]
		for _, du := range deliveryUnits {
			if claimed[du.ID] || linkedDelivery[du.ID] {
				continue
			}
			if !productsMatch(oref, deliveryRefs[du.DeliveryItemID]) {
				continue
			}
			if opts.MatchBySerial && !identifiersEqual(ou.SerialNumber, du.SerialNumber) {
				continue
			}
			if opts.MatchByBatch && !identifiersEqual(ou.BatchNumber, du.BatchNumber) {
				continue
			}
			claimed[du.ID] = true
			pairs = append(pairs, LinkPair{
				OrderUnitID:        ou.ID,
				OrderUnitNumber:    ou.UnitNumber,
				DeliveryUnitID:     du.ID,
				DeliveryUnitNumber: du.UnitNumber,
				Product:            oref.String(),
			})
			break
		}
	}
	return pairs, nil
}

func (m *autoMatcher) linkedUnits(ctx context.Context, orderUnits []OrderUnit, deliveryUnits []DeliveryUnit) (map[uuid.UUID]bool, map[uuid.UUID]bool, error) {
	ouIDs := ids(len(orderUnits))
	for _, u := range orderUnits {
		ouIDs = append(ouIDs, u.ID)
	}
	duIDs := ids(len(deliveryUnits))
	for _, u := range deliveryUnits {
		duIDs = append(duIDs, u.ID)
	}

	linkedOrder := map[uuid.UUID]bool{}
	links, err := m.store.ListLinks(ctx, LinkFilter{OrderUnitIDs: ouIDs})
	if err != nil {
		return nil, nil, fmt.Errorf("load po unit links: %w", err)
	}
	for _, l := range links {
		linkedOrder[l.OrderUnitID] = true
	}

	linkedDelivery := map[uuid.UUID]bool{}
	links, err = m.store.ListLinks(ctx, LinkFilter{DeliveryUnitIDs: duIDs})
	if err != nil {
		return nil, nil, fmt.Errorf("load delivery unit links: %w", err)
	}
	for _, l := range links {
		linkedDelivery[l.DeliveryUnitID] = true
	}
	return linkedOrder, linkedDelivery, nil
}
