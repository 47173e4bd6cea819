package app

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"unit-recon/internal/core"
)

// Scope selects a purchase order and/or a delivery. At least one must be set.
type Scope struct {
	PurchaseOrderID *uuid.UUID `json:"purchase_order_id,omitempty"`
	DeliveryID      *uuid.UUID `json:"delivery_id,omitempty"`
}

// CreatePurchaseOrderRequest is the input for creating a purchase order header.
type CreatePurchaseOrderRequest struct {
	PONumber string `json:"po_number" validate:"required,max=64" jsonschema:"required,maxLength=64"`
	Supplier string `json:"supplier,omitempty" validate:"max=255" jsonschema:"maxLength=255"`
}

// CreateDeliveryRequest is the input for creating a delivery header.
type CreateDeliveryRequest struct {
	DeliveryNumber string     `json:"delivery_number" validate:"required,max=64" jsonschema:"required,maxLength=64"`
	Supplier       string     `json:"supplier,omitempty" validate:"max=255" jsonschema:"maxLength=255"`
	DeliveredAt    *time.Time `json:"delivered_at,omitempty"`
}

// AddLineItemRequest is one order or delivery line. Either ProductID or Model is required;
// Quantity must be a whole number of pieces.
type AddLineItemRequest struct {
	ProductID *uuid.UUID      `json:"product_id,omitempty" validate:"required_without=Model"`
	Model     string          `json:"model,omitempty" validate:"required_without=ProductID,max=255" jsonschema:"maxLength=255"`
	Quantity  decimal.Decimal `json:"quantity" jsonschema:"required"`
}

// UpdateOrderUnitRequest changes an order unit. Absent fields are left unchanged; an empty
// serial or batch number clears it.
type UpdateOrderUnitRequest struct {
	SerialNumber *string               `json:"serial_number,omitempty" validate:"omitempty,max=128"`
	BatchNumber  *string               `json:"batch_number,omitempty" validate:"omitempty,max=128"`
	Status       *core.OrderUnitStatus `json:"status,omitempty" validate:"omitempty,oneof=ordered delivered received rejected" jsonschema:"enum=ordered,enum=delivered,enum=received,enum=rejected"`
	Notes        *string               `json:"notes,omitempty"`
}

// UpdateDeliveryUnitRequest changes a delivery unit.
type UpdateDeliveryUnitRequest struct {
	SerialNumber   *string                  `json:"serial_number,omitempty" validate:"omitempty,max=128"`
	BatchNumber    *string                  `json:"batch_number,omitempty" validate:"omitempty,max=128"`
	Status         *core.DeliveryUnitStatus `json:"status,omitempty" validate:"omitempty,oneof=delivered received damaged returned" jsonschema:"enum=delivered,enum=received,enum=damaged,enum=returned"`
	ConditionNotes *string                  `json:"condition_notes,omitempty"`
}

// ValidateLinkRequest asks whether two units may be linked.
type ValidateLinkRequest struct {
	OrderUnitID        uuid.UUID `json:"po_unit_id" validate:"required" jsonschema:"required"`
	DeliveryUnitID     uuid.UUID `json:"delivery_unit_id" validate:"required" jsonschema:"required"`
	RequireSerialMatch bool      `json:"require_serial_match,omitempty"`
	RequireBatchMatch  bool      `json:"require_batch_match,omitempty"`
}

// CreateLinkRequest is the input for one pairing.
type CreateLinkRequest struct {
	OrderUnitID        uuid.UUID       `json:"po_unit_id" validate:"required" jsonschema:"required"`
	DeliveryUnitID     uuid.UUID       `json:"delivery_unit_id" validate:"required" jsonschema:"required"`
	Status             core.LinkStatus `json:"status,omitempty" validate:"omitempty,oneof=linked confirmed disputed rejected" jsonschema:"enum=linked,enum=confirmed,enum=disputed,enum=rejected"`
	Notes              string          `json:"notes,omitempty"`
	RequireSerialMatch bool            `json:"require_serial_match,omitempty"`
	RequireBatchMatch  bool            `json:"require_batch_match,omitempty"`
}

// BulkCreateLinksRequest is an all-or-nothing batch of pairings.
type BulkCreateLinksRequest struct {
	Links []CreateLinkRequest `json:"links" validate:"required,min=1,max=1000,dive" jsonschema:"required,minItems=1,maxItems=1000"`
}

// UpdateLinkRequest changes a link. Absent fields are left unchanged.
type UpdateLinkRequest struct {
	Status      *core.LinkStatus `json:"status,omitempty" validate:"omitempty,oneof=linked confirmed disputed rejected" jsonschema:"enum=linked,enum=confirmed,enum=disputed,enum=rejected"`
	Notes       *string          `json:"notes,omitempty"`
	ConfirmedBy *string          `json:"confirmed_by,omitempty" validate:"omitempty,max=255"`
}

// ConfirmLinkRequest names the operator confirming a link.
type ConfirmLinkRequest struct {
	ConfirmedBy string `json:"confirmed_by" validate:"required,max=255" jsonschema:"required,maxLength=255"`
}

// AutoLinkRequest selects the purchase order and delivery to pair up.
type AutoLinkRequest struct {
	PurchaseOrderID uuid.UUID `json:"purchase_order_id" validate:"required" jsonschema:"required"`
	DeliveryID      uuid.UUID `json:"delivery_id" validate:"required" jsonschema:"required"`
	MatchBySerial   bool      `json:"match_by_serial,omitempty"`
	MatchByBatch    bool      `json:"match_by_batch,omitempty"`
}

func (r AutoLinkRequest) options() core.AutoLinkOptions {
	return core.AutoLinkOptions{MatchBySerial: r.MatchBySerial, MatchByBatch: r.MatchByBatch}
}

// CreateQuantityLinkRequest allocates a delivered quantity to an order line.
type CreateQuantityLinkRequest struct {
	DeliveryItemID uuid.UUID       `json:"delivery_item_id" validate:"required" jsonschema:"required"`
	OrderItemID    uuid.UUID       `json:"purchase_order_item_id" validate:"required" jsonschema:"required"`
	Quantity       decimal.Decimal `json:"quantity" jsonschema:"required"`
}
