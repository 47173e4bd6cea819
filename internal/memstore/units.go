package memstore

import (
	"cmp"
	"context"
	"slices"
	"strings"

	"github.com/google/uuid"

	"unit-recon/internal/core"
)

// InsertOrderUnits inserts all units or none. (item, unit number) is unique.
func (s *Store) InsertOrderUnits(_ context.Context, units []core.OrderUnit) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	taken := map[uuid.UUID]map[int]bool{}
	for _, u := range s.orderUnits {
		if taken[u.OrderItemID] == nil {
			taken[u.OrderItemID] = map[int]bool{}
		}
		taken[u.OrderItemID][u.UnitNumber] = true
	}
	for _, u := range units {
		if _, ok := s.orderItems[u.OrderItemID]; !ok {
			return notFound("po item", u.OrderItemID)
		}
		if _, ok := s.orderUnits[u.ID]; ok {
			return conflict("po unit %s exists", u.ID)
		}
		if taken[u.OrderItemID][u.UnitNumber] {
			return conflict("po item %s already has unit #%d", u.OrderItemID, u.UnitNumber)
		}
		if taken[u.OrderItemID] == nil {
			taken[u.OrderItemID] = map[int]bool{}
		}
		taken[u.OrderItemID][u.UnitNumber] = true
	}
	for _, u := range units {
		u.SerialNumber = identifier(u.SerialNumber)
		u.BatchNumber = identifier(u.BatchNumber)
		s.orderUnits[u.ID] = u
	}
	return nil
}

func (s *Store) GetOrderUnit(_ context.Context, id uuid.UUID) (*core.OrderUnit, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.orderUnits[id]
	if !ok {
		return nil, notFound("po unit", id)
	}
	return &u, nil
}

func (s *Store) ListOrderUnits(_ context.Context, f core.OrderUnitFilter) ([]core.OrderUnit, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	pos, items, only := idSet(f.PurchaseOrderIDs), idSet(f.ItemIDs), idSet(f.IDs)
	var statuses map[core.OrderUnitStatus]bool
	if f.Statuses != nil {
		statuses = map[core.OrderUnitStatus]bool{}
		for _, st := range f.Statuses {
			statuses[st] = true
		}
	}

	out := []core.OrderUnit{}
	for _, u := range s.orderUnits {
		item := s.orderItems[u.OrderItemID]
		if !allows(pos, item.PurchaseOrderID) || !allows(items, u.OrderItemID) || !allows(only, u.ID) {
			continue
		}
		if statuses != nil && !statuses[u.Status] {
			continue
		}
		out = append(out, u)
	}
	slices.SortFunc(out, func(a, b core.OrderUnit) int {
		ia, ib := s.orderItems[a.OrderItemID], s.orderItems[b.OrderItemID]
		return cmp.Or(
			ia.CreatedAt.Compare(ib.CreatedAt),
			strings.Compare(ia.ID.String(), ib.ID.String()),
			cmp.Compare(a.UnitNumber, b.UnitNumber),
		)
	})
	return out, nil
}

func (s *Store) UpdateOrderUnit(_ context.Context, id uuid.UUID, upd core.OrderUnitUpdate) (*core.OrderUnit, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.orderUnits[id]
	if !ok {
		return nil, notFound("po unit", id)
	}
	if upd.SerialNumber != nil {
		u.SerialNumber = identifier(upd.SerialNumber)
	}
	if upd.BatchNumber != nil {
		u.BatchNumber = identifier(upd.BatchNumber)
	}
	if upd.Status != nil {
		u.Status = *upd.Status
	}
	if upd.Notes != nil {
		u.Notes = *upd.Notes
	}
	u.UpdatedAt = now()
	s.orderUnits[id] = u
	return &u, nil
}

func (s *Store) InsertDeliveryUnits(_ context.Context, units []core.DeliveryUnit) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	taken := map[uuid.UUID]map[int]bool{}
	for _, u := range s.deliveryUnits {
		if taken[u.DeliveryItemID] == nil {
			taken[u.DeliveryItemID] = map[int]bool{}
		}
		taken[u.DeliveryItemID][u.UnitNumber] = true
	}
	for _, u := range units {
		if _, ok := s.deliveryItems[u.DeliveryItemID]; !ok {
			return notFound("delivery item", u.DeliveryItemID)
		}
		if _, ok := s.deliveryUnits[u.ID]; ok {
			return conflict("delivery unit %s exists", u.ID)
		}
		if taken[u.DeliveryItemID][u.UnitNumber] {
			return conflict("delivery item %s already has unit #%d", u.DeliveryItemID, u.UnitNumber)
		}
		if taken[u.DeliveryItemID] == nil {
			taken[u.DeliveryItemID] = map[int]bool{}
		}
		taken[u.DeliveryItemID][u.UnitNumber] = true
	}
	for _, u := range units {
		u.SerialNumber = identifier(u.SerialNumber)
		u.BatchNumber = identifier(u.BatchNumber)
		s.deliveryUnits[u.ID] = u
	}
	return nil
}

func (s *Store) GetDeliveryUnit(_ context.Context, id uuid.UUID) (*core.DeliveryUnit, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.deliveryUnits[id]
	if !ok {
		return nil, notFound("delivery unit", id)
	}
	return &u, nil
}

func (s *Store) ListDeliveryUnits(_ context.Context, f core.DeliveryUnitFilter) ([]core.DeliveryUnit, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	deliveries, items, only := idSet(f.DeliveryIDs), idSet(f.ItemIDs), idSet(f.IDs)
	var statuses map[core.DeliveryUnitStatus]bool
	if f.Statuses != nil {
		statuses = map[core.DeliveryUnitStatus]bool{}
		for _, st := range f.Statuses {
			statuses[st] = true
		}
	}

	out := []core.DeliveryUnit{}
	for _, u := range s.deliveryUnits {
		item := s.deliveryItems[u.DeliveryItemID]
		if !allows(deliveries, item.DeliveryID) || !allows(items, u.DeliveryItemID) || !allows(only, u.ID) {
			continue
		}
		if statuses != nil && !statuses[u.Status] {
			continue
		}
		out = append(out, u)
	}
	slices.SortFunc(out, func(a, b core.DeliveryUnit) int {
		ia, ib := s.deliveryItems[a.DeliveryItemID], s.deliveryItems[b.DeliveryItemID]
		return cmp.Or(
			ia.CreatedAt.Compare(ib.CreatedAt),
			strings.Compare(ia.ID.String(), ib.ID.String()),
			cmp.Compare(a.UnitNumber, b.UnitNumber),
		)
	})
	return out, nil
}

func (s *Store) UpdateDeliveryUnit(_ context.Context, id uuid.UUID, upd core.DeliveryUnitUpdate) (*core.DeliveryUnit, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.deliveryUnits[id]
	if !ok {
		return nil, notFound("delivery unit", id)
	}
	if upd.SerialNumber != nil {
		u.SerialNumber = identifier(upd.SerialNumber)
	}
	if upd.BatchNumber != nil {
		u.BatchNumber = identifier(upd.BatchNumber)
	}
	if upd.Status != nil {
		u.Status = *upd.Status
	}
	if upd.ConditionNotes != nil {
		u.ConditionNotes = *upd.ConditionNotes
	}
	u.UpdatedAt = now()
	s.deliveryUnits[id] = u
	return &u, nil
}
