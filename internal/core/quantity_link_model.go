package core

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// QuantityLink is a legacy quantity-based allocation of part of a delivery line to a
// purchase order line. It lives beside unit links and never changes unit statuses.
type QuantityLink struct {
	ID             uuid.UUID       `json:"id"`
	DeliveryItemID uuid.UUID       `json:"delivery_item_id"`
	OrderItemID    uuid.UUID       `json:"purchase_order_item_id"`
	Quantity       decimal.Decimal `json:"quantity"`
	CreatedAt      time.Time       `json:"created_at"`
}

// QuantityLinkInput holds the fields required to allocate a delivered quantity.
type QuantityLinkInput struct {
	DeliveryItemID uuid.UUID
	OrderItemID    uuid.UUID
	Quantity       decimal.Decimal
}

// QuantityLinkService manages legacy quantity links.
type QuantityLinkService interface {
	// LinkQuantity allocates Quantity of the delivery line to the order line. Products must
	// match and neither line may be allocated beyond its quantity.
	LinkQuantity(ctx context.Context, in QuantityLinkInput) (*QuantityLink, error)

	// ListQuantityLinks returns links scoped to a purchase order and/or delivery.
	ListQuantityLinks(ctx context.Context, purchaseOrderID, deliveryID *uuid.UUID) ([]QuantityLink, error)

	DeleteQuantityLink(ctx context.Context, id uuid.UUID) error
}
