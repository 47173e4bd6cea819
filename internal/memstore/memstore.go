// Package memstore is an in-process core.Store. It enforces the same uniqueness rules as
// the Postgres schema but has no transactions, so callers see every write immediately.
package memstore

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/google/uuid"

	"unit-recon/internal/core"
)

// Store holds all rows in maps guarded by one mutex.
type Store struct {
	mu sync.RWMutex

	purchaseOrders map[uuid.UUID]core.PurchaseOrder
	deliveries     map[uuid.UUID]core.Delivery
	orderItems     map[uuid.UUID]core.PurchaseOrderItem
	deliveryItems  map[uuid.UUID]core.DeliveryItem
	orderUnits     map[uuid.UUID]core.OrderUnit
	deliveryUnits  map[uuid.UUID]core.DeliveryUnit
	links          map[uuid.UUID]core.UnitLink
	quantityLinks  map[uuid.UUID]core.QuantityLink

	// unique indexes
	linkByOrderUnit    map[uuid.UUID]uuid.UUID
	linkByDeliveryUnit map[uuid.UUID]uuid.UUID
}

var _ core.Store = (*Store)(nil)

// New returns an empty store.
func New() *Store {
	return &Store{
		purchaseOrders:     map[uuid.UUID]core.PurchaseOrder{},
		deliveries:         map[uuid.UUID]core.Delivery{},
		orderItems:         map[uuid.UUID]core.PurchaseOrderItem{},
		deliveryItems:      map[uuid.UUID]core.DeliveryItem{},
		orderUnits:         map[uuid.UUID]core.OrderUnit{},
		deliveryUnits:      map[uuid.UUID]core.DeliveryUnit{},
		links:              map[uuid.UUID]core.UnitLink{},
		quantityLinks:      map[uuid.UUID]core.QuantityLink{},
		linkByOrderUnit:    map[uuid.UUID]uuid.UUID{},
		linkByDeliveryUnit: map[uuid.UUID]uuid.UUID{},
	}
}

func notFound(what string, id uuid.UUID) error {
	return fmt.Errorf("%s %s: %w", what, id, core.ErrNotFound)
}

func conflict(format string, args ...any) error {
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), core.ErrConflict)
}

// idSet turns a filter slice into a lookup. A nil result means unconstrained.
func idSet(ids []uuid.UUID) map[uuid.UUID]bool {
	if ids == nil {
		return nil
	}
	m := make(map[uuid.UUID]bool, len(ids))
	for _, id := range ids {
		m[id] = true
	}
	return m
}

func allows(set map[uuid.UUID]bool, id uuid.UUID) bool {
	return set == nil || set[id]
}

func clone(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}

// identifier mirrors the Postgres store: blank identifiers are stored as NULL.
func identifier(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}

// ---- purchase orders and deliveries ----

func (s *Store) InsertPurchaseOrder(_ context.Context, po *core.PurchaseOrder) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.purchaseOrders[po.ID]; ok {
		return conflict("purchase order %s exists", po.ID)
	}
	for _, other := range s.purchaseOrders {
		if other.PONumber == po.PONumber {
			return conflict("po number %q is taken", po.PONumber)
		}
	}
	s.purchaseOrders[po.ID] = *po
	return nil
}

func (s *Store) GetPurchaseOrder(_ context.Context, id uuid.UUID) (*core.PurchaseOrder, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	po, ok := s.purchaseOrders[id]
	if !ok {
		return nil, notFound("purchase order", id)
	}
	return &po, nil
}

func (s *Store) InsertDelivery(_ context.Context, d *core.Delivery) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.deliveries[d.ID]; ok {
		return conflict("delivery %s exists", d.ID)
	}
	for _, other := range s.deliveries {
		if other.DeliveryNumber == d.DeliveryNumber {
			return conflict("delivery number %q is taken", d.DeliveryNumber)
		}
	}
	s.deliveries[d.ID] = *d
	return nil
}

func (s *Store) GetDelivery(_ context.Context, id uuid.UUID) (*core.Delivery, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	d, ok := s.deliveries[id]
	if !ok {
		return nil, notFound("delivery", id)
	}
	return &d, nil
}

// ---- line items ----

func (s *Store) InsertOrderItem(_ context.Context, item *core.PurchaseOrderItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.purchaseOrders[item.PurchaseOrderID]; !ok {
		return notFound("purchase order", item.PurchaseOrderID)
	}
	if _, ok := s.orderItems[item.ID]; ok {
		return conflict("po item %s exists", item.ID)
	}
	it := *item
	it.Model = clone(item.Model)
	s.orderItems[it.ID] = it
	return nil
}

func (s *Store) GetOrderItem(_ context.Context, id uuid.UUID) (*core.PurchaseOrderItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	it, ok := s.orderItems[id]
	if !ok {
		return nil, notFound("po item", id)
	}
	return &it, nil
}

func (s *Store) ListOrderItems(_ context.Context, f core.ItemFilter) ([]core.PurchaseOrderItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	parents, only := idSet(f.ParentIDs), idSet(f.IDs)
	out := []core.PurchaseOrderItem{}
	for _, it := range s.orderItems {
		if allows(parents, it.PurchaseOrderID) && allows(only, it.ID) {
			out = append(out, it)
		}
	}
	slices.SortFunc(out, func(a, b core.PurchaseOrderItem) int {
		return cmp.Or(a.CreatedAt.Compare(b.CreatedAt), strings.Compare(a.ID.String(), b.ID.String()))
	})
	return out, nil
}

func (s *Store) InsertDeliveryItem(_ context.Context, item *core.DeliveryItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.deliveries[item.DeliveryID]; !ok {
		return notFound("delivery", item.DeliveryID)
	}
	if _, ok := s.deliveryItems[item.ID]; ok {
		return conflict("delivery item %s exists", item.ID)
	}
	it := *item
	it.Model = clone(item.Model)
	s.deliveryItems[it.ID] = it
	return nil
}

func (s *Store) GetDeliveryItem(_ context.Context, id uuid.UUID) (*core.DeliveryItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	it, ok := s.deliveryItems[id]
	if !ok {
		return nil, notFound("delivery item", id)
	}
	return &it, nil
}

func (s *Store) ListDeliveryItems(_ context.Context, f core.ItemFilter) ([]core.DeliveryItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	parents, only := idSet(f.ParentIDs), idSet(f.IDs)
	out := []core.DeliveryItem{}
	for _, it := range s.deliveryItems {
		if allows(parents, it.DeliveryID) && allows(only, it.ID) {
			out = append(out, it)
		}
	}
	slices.SortFunc(out, func(a, b core.DeliveryItem) int {
		return cmp.Or(a.CreatedAt.Compare(b.CreatedAt), strings.Compare(a.ID.String(), b.ID.String()))
	})
	return out, nil
}
