package memstore

import (
	"cmp"
	"context"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	"unit-recon/internal/core"
)

func now() time.Time {
	return time.Now().UTC()
}

// InsertLink enforces one link per order unit and one per delivery unit, the
// counterpart of the UNIQUE constraints on unit_links.
func (s *Store) InsertLink(_ context.Context, link *core.UnitLink) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.orderUnits[link.OrderUnitID]; !ok {
		return notFound("po unit", link.OrderUnitID)
	}
	if _, ok := s.deliveryUnits[link.DeliveryUnitID]; !ok {
		return notFound("delivery unit", link.DeliveryUnitID)
	}
	if _, ok := s.links[link.ID]; ok {
		return conflict("link %s exists", link.ID)
	}
	if other, ok := s.linkByOrderUnit[link.OrderUnitID]; ok {
		return conflict("po unit %s is already linked by %s", link.OrderUnitID, other)
	}
	if other, ok := s.linkByDeliveryUnit[link.DeliveryUnitID]; ok {
		return conflict("delivery unit %s is already linked by %s", link.DeliveryUnitID, other)
	}
	l := *link
	l.ConfirmedBy = clone(link.ConfirmedBy)
	s.links[l.ID] = l
	s.linkByOrderUnit[l.OrderUnitID] = l.ID
	s.linkByDeliveryUnit[l.DeliveryUnitID] = l.ID
	return nil
}

func (s *Store) GetLink(_ context.Context, id uuid.UUID) (*core.UnitLink, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	l, ok := s.links[id]
	if !ok {
		return nil, notFound("link", id)
	}
	return &l, nil
}

func (s *Store) UpdateLink(_ context.Context, id uuid.UUID, upd core.LinkUpdate) (*core.UnitLink, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.links[id]
	if !ok {
		return nil, notFound("link", id)
	}
	if upd.Status != nil {
		l.Status = *upd.Status
	}
	if upd.Notes != nil {
		l.Notes = *upd.Notes
	}
	if upd.ConfirmedBy != nil {
		l.ConfirmedBy = clone(upd.ConfirmedBy)
	}
	if upd.ConfirmedAt != nil {
		at := *upd.ConfirmedAt
		l.ConfirmedAt = &at
	}
	l.UpdatedAt = now()
	s.links[id] = l
	return &l, nil
}

func (s *Store) DeleteLink(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.links[id]
	if !ok {
		return notFound("link", id)
	}
	delete(s.links, id)
	delete(s.linkByOrderUnit, l.OrderUnitID)
	delete(s.linkByDeliveryUnit, l.DeliveryUnitID)
	return nil
}

func (s *Store) ListLinks(_ context.Context, f core.LinkFilter) ([]core.UnitLink, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	pos, deliveries := idSet(f.PurchaseOrderIDs), idSet(f.DeliveryIDs)
	orderItems, deliveryItems := idSet(f.OrderItemIDs), idSet(f.DeliveryItemIDs)
	orderUnits, deliveryUnits := idSet(f.OrderUnitIDs), idSet(f.DeliveryUnitIDs)

	out := []core.UnitLink{}
	for _, l := range s.links {
		ou := s.orderUnits[l.OrderUnitID]
		du := s.deliveryUnits[l.DeliveryUnitID]
		oi := s.orderItems[ou.OrderItemID]
		di := s.deliveryItems[du.DeliveryItemID]
		if !allows(pos, oi.PurchaseOrderID) || !allows(deliveries, di.DeliveryID) ||
			!allows(orderItems, ou.OrderItemID) || !allows(deliveryItems, du.DeliveryItemID) ||
			!allows(orderUnits, l.OrderUnitID) || !allows(deliveryUnits, l.DeliveryUnitID) {
			continue
		}
		out = append(out, l)
	}
	slices.SortFunc(out, func(a, b core.UnitLink) int {
		return cmp.Or(a.LinkedAt.Compare(b.LinkedAt), strings.Compare(a.ID.String(), b.ID.String()))
	})
	return out, nil
}

// ---- legacy quantity links ----

func (s *Store) InsertQuantityLink(_ context.Context, link *core.QuantityLink) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.deliveryItems[link.DeliveryItemID]; !ok {
		return notFound("delivery item", link.DeliveryItemID)
	}
	if _, ok := s.orderItems[link.OrderItemID]; !ok {
		return notFound("po item", link.OrderItemID)
	}
	if _, ok := s.quantityLinks[link.ID]; ok {
		return conflict("quantity link %s exists", link.ID)
	}
	s.quantityLinks[link.ID] = *link
	return nil
}

func (s *Store) ListQuantityLinks(_ context.Context, f core.QuantityLinkFilter) ([]core.QuantityLink, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	pos, deliveries := idSet(f.PurchaseOrderIDs), idSet(f.DeliveryIDs)
	orderItems, deliveryItems := idSet(f.OrderItemIDs), idSet(f.DeliveryItemIDs)

	out := []core.QuantityLink{}
	for _, q := range s.quantityLinks {
		oi := s.orderItems[q.OrderItemID]
		di := s.deliveryItems[q.DeliveryItemID]
		if !allows(pos, oi.PurchaseOrderID) || !allows(deliveries, di.DeliveryID) ||
			!allows(orderItems, q.OrderItemID) || !allows(deliveryItems, q.DeliveryItemID) {
			continue
		}
		out = append(out, q)
	}
	slices.SortFunc(out, func(a, b core.QuantityLink) int {
		return cmp.Or(a.CreatedAt.Compare(b.CreatedAt), strings.Compare(a.ID.String(), b.ID.String()))
	})
	return out, nil
}

func (s *Store) DeleteQuantityLink(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.quantityLinks[id]; !ok {
		return notFound("quantity link", id)
	}
	delete(s.quantityLinks, id)
	return nil
}
