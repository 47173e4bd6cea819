package core

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

type procurementService struct {
	store Store
}

// NewProcurementService constructs a ProcurementService over store.
func NewProcurementService(store Store) ProcurementService {
	return &procurementService{store: store}
}

func (s *procurementService) CreatePurchaseOrder(ctx context.Context, in PurchaseOrderInput) (*PurchaseOrder, error) {
	number := strings.TrimSpace(in.PONumber)
	if number == "" {
		return nil, invalidInput("po_number is required")
	}
	po := &PurchaseOrder{
		ID:        uuid.New(),
		PONumber:  number,
		Supplier:  strings.TrimSpace(in.Supplier),
		CreatedAt: nowUTC(),
	}
	if err := s.store.InsertPurchaseOrder(ctx, po); err != nil {
		return nil, fmt.Errorf("insert purchase order: %w", err)
	}
	return po, nil
}

func (s *procurementService) GetPurchaseOrder(ctx context.Context, id uuid.UUID) (*PurchaseOrder, error) {
	return s.store.GetPurchaseOrder(ctx, id)
}

func (s *procurementService) CreateDelivery(ctx context.Context, in DeliveryInput) (*Delivery, error) {
	number := strings.TrimSpace(in.DeliveryNumber)
	if number == "" {
		return nil, invalidInput("delivery_number is required")
	}
	d := &Delivery{
		ID:             uuid.New(),
		DeliveryNumber: number,
		Supplier:       strings.TrimSpace(in.Supplier),
		DeliveredAt:    in.DeliveredAt,
		CreatedAt:      nowUTC(),
	}
	if err := s.store.InsertDelivery(ctx, d); err != nil {
		return nil, fmt.Errorf("insert delivery: %w", err)
	}
	return d, nil
}

func (s *procurementService) GetDelivery(ctx context.Context, id uuid.UUID) (*Delivery, error) {
	return s.store.GetDelivery(ctx, id)
}

func checkLineInput(in LineItemInput) (*string, error) {
	model := strings.TrimSpace(in.Model)
	if in.ProductID == nil && model == "" {
		return nil, invalidInput("product_id or model is required")
	}
	if _, err := unitCount(in.Quantity); err != nil {
		return nil, err
	}
	if model == "" {
		return nil, nil
	}
	return &model, nil
}

// AddOrderItem inserts the line and seeds its units in one step.
func (s *procurementService) AddOrderItem(ctx context.Context, purchaseOrderID uuid.UUID, in LineItemInput) (*PurchaseOrderItem, []OrderUnit, error) {
	model, err := checkLineInput(in)
	if err != nil {
		return nil, nil, err
	}

	var item *PurchaseOrderItem
	var units []OrderUnit
	_, err = inTx(ctx, s.store, func(st Store) error {
		if _, err := st.GetPurchaseOrder(ctx, purchaseOrderID); err != nil {
			return err
		}
		item = &PurchaseOrderItem{
			ID:              uuid.New(),
			PurchaseOrderID: purchaseOrderID,
			ProductID:       in.ProductID,
			Model:           model,
			Quantity:        in.Quantity,
			CreatedAt:       nowUTC(),
		}
		if err := st.InsertOrderItem(ctx, item); err != nil {
			return fmt.Errorf("insert po item: %w", err)
		}
		units, err = seedOrderUnits(ctx, st, item.ID)
		return err
	})
	if err != nil {
		return nil, nil, err
	}
	return item, units, nil
}

// AddDeliveryItem inserts the delivery line and seeds its units in one step.
func (s *procurementService) AddDeliveryItem(ctx context.Context, deliveryID uuid.UUID, in LineItemInput) (*DeliveryItem, []DeliveryUnit, error) {
	model, err := checkLineInput(in)
	if err != nil {
		return nil, nil, err
	}

	var item *DeliveryItem
	var units []DeliveryUnit
	_, err = inTx(ctx, s.store, func(st Store) error {
		if _, err := st.GetDelivery(ctx, deliveryID); err != nil {
			return err
		}
		item = &DeliveryItem{
			ID:         uuid.New(),
			DeliveryID: deliveryID,
			ProductID:  in.ProductID,
			Model:      model,
			Quantity:   in.Quantity,
			CreatedAt:  nowUTC(),
		}
		if err := st.InsertDeliveryItem(ctx, item); err != nil {
			return fmt.Errorf("insert delivery item: %w", err)
		}
		units, err = seedDeliveryUnits(ctx, st, item.ID)
		return err
	})
	if err != nil {
		return nil, nil, err
	}
	return item, units, nil
}

func (s *procurementService) ListOrderItems(ctx context.Context, purchaseOrderID uuid.UUID) ([]PurchaseOrderItem, error) {
	if _, err := s.store.GetPurchaseOrder(ctx, purchaseOrderID); err != nil {
		return nil, err
	}
	items, err := s.store.ListOrderItems(ctx, ItemFilter{ParentIDs: []uuid.UUID{purchaseOrderID}})
	if err != nil {
		return nil, fmt.Errorf("list po items: %w", err)
	}
	return items, nil
}

func (s *procurementService) ListDeliveryItems(ctx context.Context, deliveryID uuid.UUID) ([]DeliveryItem, error) {
	if _, err := s.store.GetDelivery(ctx, deliveryID); err != nil {
		return nil, err
	}
	items, err := s.store.ListDeliveryItems(ctx, ItemFilter{ParentIDs: []uuid.UUID{deliveryID}})
	if err != nil {
		return nil, fmt.Errorf("list delivery items: %w", err)
	}
	return items, nil
}
