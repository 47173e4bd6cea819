package core

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type quantityLinkService struct {
	store Store
}

// NewQuantityLinkService constructs the legacy quantity linker.
func NewQuantityLinkService(store Store) QuantityLinkService {
	return &quantityLinkService{store: store}
}

func (s *quantityLinkService) LinkQuantity(ctx context.Context, in QuantityLinkInput) (*QuantityLink, error) {
	if in.DeliveryItemID == uuid.Nil || in.OrderItemID == uuid.Nil {
		return nil, invalidInput("delivery_item_id and purchase_order_item_id are required")
	}
	if !in.Quantity.IsPositive() {
		return nil, invalidInput("quantity %s must be positive", in.Quantity.String())
	}

	var link *QuantityLink
	_, err := inTx(ctx, s.store, func(st Store) error {
		di, err := st.GetDeliveryItem(ctx, in.DeliveryItemID)
		if err != nil {
			return err
		}
		oi, err := st.GetOrderItem(ctx, in.OrderItemID)
		if err != nil {
			return err
		}
		if !productsMatch(oi.Ref(), di.Ref()) {
			return invalidInput("product mismatch: po item has %s, delivery item has %s", oi.Ref(), di.Ref())
		}

		delivered, err := allocated(ctx, st, QuantityLinkFilter{DeliveryItemIDs: []uuid.UUID{di.ID}})
		if err != nil {
			return err
		}
		if err := CheckAllocation(di.Quantity, delivered, in.Quantity); err != nil {
			return invalidInput("delivery line over-allocated: %v", err)
		}
		ordered, err := allocated(ctx, st, QuantityLinkFilter{OrderItemIDs: []uuid.UUID{oi.ID}})
		if err != nil {
			return err
		}
		if err := CheckAllocation(oi.Quantity, ordered, in.Quantity); err != nil {
			return invalidInput("po line over-allocated: %v", err)
		}

		link = &QuantityLink{
			ID:             uuid.New(),
			DeliveryItemID: di.ID,
			OrderItemID:    oi.ID,
			Quantity:       in.Quantity,
			CreatedAt:      nowUTC(),
		}
		if err := st.InsertQuantityLink(ctx, link); err != nil {
			return fmt.Errorf("insert quantity link: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return link, nil
}

func allocated(ctx context.Context, st Store, f QuantityLinkFilter) (decimal.Decimal, error) {
	links, err := st.ListQuantityLinks(ctx, f)
	if err != nil {
		return decimal.Zero, fmt.Errorf("sum quantity links: %w", err)
	}
	total := decimal.Zero
	for _, l := range links {
		total = total.Add(l.Quantity)
	}
	return total, nil
}

func (s *quantityLinkService) ListQuantityLinks(ctx context.Context, purchaseOrderID, deliveryID *uuid.UUID) ([]QuantityLink, error) {
	if purchaseOrderID == nil && deliveryID == nil {
		return nil, invalidInput("purchase_order_id or delivery_id is required")
	}
	var f QuantityLinkFilter
	if purchaseOrderID != nil {
		f.PurchaseOrderIDs = []uuid.UUID{*purchaseOrderID}
	}
	if deliveryID != nil {
		f.DeliveryIDs = []uuid.UUID{*deliveryID}
	}
	links, err := s.store.ListQuantityLinks(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("list quantity links: %w", err)
	}
	return links, nil
}

func (s *quantityLinkService) DeleteQuantityLink(ctx context.Context, id uuid.UUID) error {
	return s.store.DeleteQuantityLink(ctx, id)
}
