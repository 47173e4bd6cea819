package core

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PurchaseOrder is a purchase order header. Only the fields the reconciliation engine
// needs are modelled; pricing and supplier master data live elsewhere.
type PurchaseOrder struct {
	ID        uuid.UUID `json:"id"`
	PONumber  string    `json:"po_number"`
	Supplier  string    `json:"supplier"`
	CreatedAt time.Time `json:"created_at"`
}

// Delivery is a delivery (goods-in) header.
type Delivery struct {
	ID             uuid.UUID  `json:"id"`
	DeliveryNumber string     `json:"delivery_number"`
	Supplier       string     `json:"supplier"`
	DeliveredAt    *time.Time `json:"delivered_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
}

// PurchaseOrderItem is one line on a purchase order.
// ProductID may be absent, in which case Model carries the free-text product description.
type PurchaseOrderItem struct {
	ID              uuid.UUID       `json:"id"`
	PurchaseOrderID uuid.UUID       `json:"purchase_order_id"`
	ProductID       *uuid.UUID      `json:"product_id,omitempty"`
	Model           *string         `json:"model,omitempty"`
	Quantity        decimal.Decimal `json:"quantity"`
	CreatedAt       time.Time       `json:"created_at"`
}

// DeliveryItem is one line on a delivery.
type DeliveryItem struct {
	ID         uuid.UUID       `json:"id"`
	DeliveryID uuid.UUID       `json:"delivery_id"`
	ProductID  *uuid.UUID      `json:"product_id,omitempty"`
	Model      *string         `json:"model,omitempty"`
	Quantity   decimal.Decimal `json:"quantity"`
	CreatedAt  time.Time       `json:"created_at"`
}

// ProductRef identifies what a line item refers to: a catalogue product or a free-text model.
type ProductRef struct {
	ProductID *uuid.UUID
	Model     string
}

// Ref returns the product reference of the order line.
func (i PurchaseOrderItem) Ref() ProductRef {
	return ProductRef{ProductID: i.ProductID, Model: deref(i.Model)}
}

// Ref returns the product reference of the delivery line.
func (i DeliveryItem) Ref() ProductRef {
	return ProductRef{ProductID: i.ProductID, Model: deref(i.Model)}
}

// String renders the reference for messages.
func (r ProductRef) String() string {
	if r.ProductID != nil {
		return "product " + r.ProductID.String()
	}
	if m := strings.TrimSpace(r.Model); m != "" {
		return "model " + m
	}
	return "unspecified product"
}

// PurchaseOrderInput holds the fields required to create a purchase order header.
type PurchaseOrderInput struct {
	PONumber string
	Supplier string
}

// DeliveryInput holds the fields required to create a delivery header.
type DeliveryInput struct {
	DeliveryNumber string
	Supplier       string
	DeliveredAt    *time.Time
}

// LineItemInput holds the fields required to create an order or delivery line.
type LineItemInput struct {
	ProductID *uuid.UUID
	Model     string
	Quantity  decimal.Decimal
}

// ProcurementService creates the order and delivery records the engine reconciles.
// Adding a line item seeds one unit row per piece in the same step.
type ProcurementService interface {
	CreatePurchaseOrder(ctx context.Context, in PurchaseOrderInput) (*PurchaseOrder, error)
	GetPurchaseOrder(ctx context.Context, id uuid.UUID) (*PurchaseOrder, error)
	CreateDelivery(ctx context.Context, in DeliveryInput) (*Delivery, error)
	GetDelivery(ctx context.Context, id uuid.UUID) (*Delivery, error)

	// AddOrderItem inserts a purchase order line and its units 1..Quantity.
	AddOrderItem(ctx context.Context, purchaseOrderID uuid.UUID, in LineItemInput) (*PurchaseOrderItem, []OrderUnit, error)

	// AddDeliveryItem inserts a delivery line and its units 1..Quantity.
	AddDeliveryItem(ctx context.Context, deliveryID uuid.UUID, in LineItemInput) (*DeliveryItem, []DeliveryUnit, error)

	ListOrderItems(ctx context.Context, purchaseOrderID uuid.UUID) ([]PurchaseOrderItem, error)
	ListDeliveryItems(ctx context.Context, deliveryID uuid.UUID) ([]DeliveryItem, error)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
