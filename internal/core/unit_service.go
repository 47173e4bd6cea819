package core

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

type unitService struct {
	store Store
}

// NewUnitService constructs a UnitService over store.
func NewUnitService(store Store) UnitService {
	return &unitService{store: store}
}

func (s *unitService) ListOrderUnits(ctx context.Context, orderItemID uuid.UUID) ([]OrderUnit, error) {
	if _, err := s.store.GetOrderItem(ctx, orderItemID); err != nil {
		return nil, err
	}
	units, err := s.store.ListOrderUnits(ctx, OrderUnitFilter{ItemIDs: []uuid.UUID{orderItemID}})
	if err != nil {
		return nil, fmt.Errorf("list po units: %w", err)
	}
	return units, nil
}

func (s *unitService) ListDeliveryUnits(ctx context.Context, deliveryItemID uuid.UUID) ([]DeliveryUnit, error) {
	if _, err := s.store.GetDeliveryItem(ctx, deliveryItemID); err != nil {
		return nil, err
	}
	units, err := s.store.ListDeliveryUnits(ctx, DeliveryUnitFilter{ItemIDs: []uuid.UUID{deliveryItemID}})
	if err != nil {
		return nil, fmt.Errorf("list delivery units: %w", err)
	}
	return units, nil
}

func (s *unitService) UpdateOrderUnit(ctx context.Context, id uuid.UUID, upd OrderUnitUpdate) (*OrderUnit, error) {
	if upd.Status != nil {
		switch {
		case !upd.Status.Valid():
			return nil, invalidInput("unknown po unit status %q", *upd.Status)
		case *upd.Status == OrderUnitLinked:
			return nil, invalidInput("status %q is set by creating a link", OrderUnitLinked)
		}
	}
	return s.store.UpdateOrderUnit(ctx, id, upd)
}

func (s *unitService) UpdateDeliveryUnit(ctx context.Context, id uuid.UUID, upd DeliveryUnitUpdate) (*DeliveryUnit, error) {
	if upd.Status != nil {
		switch {
		case !upd.Status.Valid():
			return nil, invalidInput("unknown delivery unit status %q", *upd.Status)
		case *upd.Status == DeliveryUnitLinked:
			return nil, invalidInput("status %q is set by creating a link", DeliveryUnitLinked)
		}
	}
	return s.store.UpdateDeliveryUnit(ctx, id, upd)
}

func (s *unitService) SeedOrderUnits(ctx context.Context, orderItemID uuid.UUID) ([]OrderUnit, error) {
	var units []OrderUnit
	_, err := inTx(ctx, s.store, func(st Store) error {
		var err error
		units, err = seedOrderUnits(ctx, st, orderItemID)
		return err
	})
	return units, err
}

func (s *unitService) SeedDeliveryUnits(ctx context.Context, deliveryItemID uuid.UUID) ([]DeliveryUnit, error) {
	var units []DeliveryUnit
	_, err := inTx(ctx, s.store, func(st Store) error {
		var err error
		units, err = seedDeliveryUnits(ctx, st, deliveryItemID)
		return err
	})
	return units, err
}

// seedOrderUnits creates units 1..N for the item. Units are never resized: an item that
// already has units is a conflict.
func seedOrderUnits(ctx context.Context, st Store, orderItemID uuid.UUID) ([]OrderUnit, error) {
	item, err := st.GetOrderItem(ctx, orderItemID)
	if err != nil {
		return nil, err
	}
	n, err := unitCount(item.Quantity)
	if err != nil {
		return nil, err
	}
	existing, err := st.ListOrderUnits(ctx, OrderUnitFilter{ItemIDs: []uuid.UUID{item.ID}})
	if err != nil {
		return nil, fmt.Errorf("check existing po units: %w", err)
	}
	if len(existing) > 0 {
		return nil, fmt.Errorf("po item %s already has %d units: %w", item.ID, len(existing), ErrConflict)
	}

	now := nowUTC()
	units := make([]OrderUnit, n)
	for i := range units {
		units[i] = OrderUnit{
			ID:          uuid.New(),
			OrderItemID: item.ID,
			UnitNumber:  i + 1,
			Status:      OrderUnitOrdered,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
	}
	if err := st.InsertOrderUnits(ctx, units); err != nil {
		return nil, fmt.Errorf("insert po units: %w", err)
	}
	return units, nil
}

func seedDeliveryUnits(ctx context.Context, st Store, deliveryItemID uuid.UUID) ([]DeliveryUnit, error) {
	item, err := st.GetDeliveryItem(ctx, deliveryItemID)
	if err != nil {
		return nil, err
	}
	n, err := unitCount(item.Quantity)
	if err != nil {
		return nil, err
	}
	existing, err := st.ListDeliveryUnits(ctx, DeliveryUnitFilter{ItemIDs: []uuid.UUID{item.ID}})
	if err != nil {
		return nil, fmt.Errorf("check existing delivery units: %w", err)
	}
	if len(existing) > 0 {
		return nil, fmt.Errorf("delivery item %s already has %d units: %w", item.ID, len(existing), ErrConflict)
	}

	now := nowUTC()
	units := make([]DeliveryUnit, n)
	for i := range units {
		units[i] = DeliveryUnit{
			ID:             uuid.New(),
			DeliveryItemID: item.ID,
			UnitNumber:     i + 1,
			Status:         DeliveryUnitDelivered,
			CreatedAt:      now,
			UpdatedAt:      now,
		}
	}
	if err := st.InsertDeliveryUnits(ctx, units); err != nil {
		return nil, fmt.Errorf("insert delivery units: %w", err)
	}
	return units, nil
}
