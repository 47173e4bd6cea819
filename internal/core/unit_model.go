package core

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// OrderUnitStatus is the lifecycle state of one physical piece on a purchase order line.
type OrderUnitStatus string

const (
	OrderUnitOrdered   OrderUnitStatus = "ordered"
	OrderUnitDelivered OrderUnitStatus = "delivered"
	OrderUnitLinked    OrderUnitStatus = "linked"
	OrderUnitReceived  OrderUnitStatus = "received"
	OrderUnitRejected  OrderUnitStatus = "rejected"
)

// Valid reports whether s is a known order unit status.
func (s OrderUnitStatus) Valid() bool {
	switch s {
	case OrderUnitOrdered, OrderUnitDelivered, OrderUnitLinked, OrderUnitReceived, OrderUnitRejected:
		return true
	}
	return false
}

// IsTerminal reports whether s must survive link creation and deletion untouched.
func (s OrderUnitStatus) IsTerminal() bool {
	return s == OrderUnitReceived || s == OrderUnitRejected
}

// Linkable reports whether a unit in status s may take part in a new link.
func (s OrderUnitStatus) Linkable() bool {
	return s != OrderUnitRejected
}

// DeliveryUnitStatus is the lifecycle state of one physical piece on a delivery line.
type DeliveryUnitStatus string

const (
	DeliveryUnitDelivered DeliveryUnitStatus = "delivered"
	DeliveryUnitLinked    DeliveryUnitStatus = "linked"
	DeliveryUnitReceived  DeliveryUnitStatus = "received"
	DeliveryUnitDamaged   DeliveryUnitStatus = "damaged"
	DeliveryUnitReturned  DeliveryUnitStatus = "returned"
)

// Valid reports whether s is a known delivery unit status.
func (s DeliveryUnitStatus) Valid() bool {
	switch s {
	case DeliveryUnitDelivered, DeliveryUnitLinked, DeliveryUnitReceived, DeliveryUnitDamaged, DeliveryUnitReturned:
		return true
	}
	return false
}

// IsTerminal reports whether s must survive link creation and deletion untouched.
func (s DeliveryUnitStatus) IsTerminal() bool {
	return s == DeliveryUnitReceived || s == DeliveryUnitDamaged || s == DeliveryUnitReturned
}

// Linkable reports whether a unit in status s may take part in a new link.
func (s DeliveryUnitStatus) Linkable() bool {
	return s != DeliveryUnitDamaged && s != DeliveryUnitReturned
}

// OrderUnit is one physical, individually trackable piece on a purchase order line item.
type OrderUnit struct {
	ID           uuid.UUID       `json:"id"`
	OrderItemID  uuid.UUID       `json:"purchase_order_item_id"`
	UnitNumber   int             `json:"unit_number"`
	SerialNumber *string         `json:"serial_number,omitempty"`
	BatchNumber  *string         `json:"batch_number,omitempty"`
	Status       OrderUnitStatus `json:"status"`
	Notes        string          `json:"notes"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// DeliveryUnit is one physical, individually trackable piece on a delivery line item.
type DeliveryUnit struct {
	ID             uuid.UUID          `json:"id"`
	DeliveryItemID uuid.UUID          `json:"delivery_item_id"`
	UnitNumber     int                `json:"unit_number"`
	SerialNumber   *string            `json:"serial_number,omitempty"`
	BatchNumber    *string            `json:"batch_number,omitempty"`
	Status         DeliveryUnitStatus `json:"status"`
	ConditionNotes string             `json:"condition_notes"`
	CreatedAt      time.Time          `json:"created_at"`
	UpdatedAt      time.Time          `json:"updated_at"`
}

// OrderUnitUpdate carries the mutable fields of an order unit. Nil fields are left unchanged;
// an empty serial or batch string clears the stored value.
type OrderUnitUpdate struct {
	SerialNumber *string
	BatchNumber  *string
	Status       *OrderUnitStatus
	Notes        *string
}

// DeliveryUnitUpdate carries the mutable fields of a delivery unit.
type DeliveryUnitUpdate struct {
	SerialNumber   *string
	BatchNumber    *string
	Status         *DeliveryUnitStatus
	ConditionNotes *string
}

// UnitService lists, updates, and seeds per-piece unit records.
type UnitService interface {
	// ListOrderUnits returns the units of a purchase order line item ordered by unit number.
	ListOrderUnits(ctx context.Context, orderItemID uuid.UUID) ([]OrderUnit, error)

	// ListDeliveryUnits returns the units of a delivery line item ordered by unit number.
	ListDeliveryUnits(ctx context.Context, deliveryItemID uuid.UUID) ([]DeliveryUnit, error)

	// UpdateOrderUnit changes serial/batch/status/notes. Returns ErrNotFound if id is absent.
	// Status "linked" cannot be set directly; only the link store moves units into it.
	UpdateOrderUnit(ctx context.Context, id uuid.UUID, upd OrderUnitUpdate) (*OrderUnit, error)

	// UpdateDeliveryUnit is the delivery-side counterpart of UpdateOrderUnit.
	UpdateDeliveryUnit(ctx context.Context, id uuid.UUID, upd DeliveryUnitUpdate) (*DeliveryUnit, error)

	// SeedOrderUnits creates units 1..N for a line item whose quantity is N.
	// Returns ErrConflict if the item already has units.
	SeedOrderUnits(ctx context.Context, orderItemID uuid.UUID) ([]OrderUnit, error)

	// SeedDeliveryUnits creates units 1..N for a delivery line item whose quantity is N.
	SeedDeliveryUnits(ctx context.Context, deliveryItemID uuid.UUID) ([]DeliveryUnit, error)
}
