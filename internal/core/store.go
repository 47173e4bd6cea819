package core

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Filters select rows by id sets. A nil slice leaves that dimension unconstrained;
// a non-nil empty slice matches nothing. Multiple non-nil fields are combined with AND.

// ItemFilter selects purchase order or delivery line items.
type ItemFilter struct {
	ParentIDs []uuid.UUID // purchase order ids or delivery ids
	IDs       []uuid.UUID
}

// OrderUnitFilter selects order units. Results are ordered by
// (item created_at, item id, unit number).
type OrderUnitFilter struct {
	PurchaseOrderIDs []uuid.UUID
	ItemIDs          []uuid.UUID
	IDs              []uuid.UUID
	Statuses         []OrderUnitStatus
}

// DeliveryUnitFilter selects delivery units, ordered like OrderUnitFilter.
type DeliveryUnitFilter struct {
	DeliveryIDs []uuid.UUID
	ItemIDs     []uuid.UUID
	IDs         []uuid.UUID
	Statuses    []DeliveryUnitStatus
}

// LinkFilter selects unit links. Results are ordered by (linked_at, id).
type LinkFilter struct {
	PurchaseOrderIDs []uuid.UUID
	DeliveryIDs      []uuid.UUID
	OrderItemIDs     []uuid.UUID
	DeliveryItemIDs  []uuid.UUID
	OrderUnitIDs     []uuid.UUID
	DeliveryUnitIDs  []uuid.UUID
}

// QuantityLinkFilter selects legacy quantity links.
type QuantityLinkFilter struct {
	PurchaseOrderIDs []uuid.UUID
	DeliveryIDs      []uuid.UUID
	OrderItemIDs     []uuid.UUID
	DeliveryItemIDs  []uuid.UUID
}

// Store is the relational store the engine runs against.
// Implementations report absent rows as ErrNotFound and unique-key violations as ErrConflict.
// unit_links must carry a uniqueness constraint on each of its two unit columns.
type Store interface {
	InsertPurchaseOrder(ctx context.Context, po *PurchaseOrder) error
	GetPurchaseOrder(ctx context.Context, id uuid.UUID) (*PurchaseOrder, error)
	InsertDelivery(ctx context.Context, d *Delivery) error
	GetDelivery(ctx context.Context, id uuid.UUID) (*Delivery, error)

	InsertOrderItem(ctx context.Context, item *PurchaseOrderItem) error
	GetOrderItem(ctx context.Context, id uuid.UUID) (*PurchaseOrderItem, error)
	ListOrderItems(ctx context.Context, f ItemFilter) ([]PurchaseOrderItem, error)
	InsertDeliveryItem(ctx context.Context, item *DeliveryItem) error
	GetDeliveryItem(ctx context.Context, id uuid.UUID) (*DeliveryItem, error)
	ListDeliveryItems(ctx context.Context, f ItemFilter) ([]DeliveryItem, error)

	InsertOrderUnits(ctx context.Context, units []OrderUnit) error
	GetOrderUnit(ctx context.Context, id uuid.UUID) (*OrderUnit, error)
	ListOrderUnits(ctx context.Context, f OrderUnitFilter) ([]OrderUnit, error)
	UpdateOrderUnit(ctx context.Context, id uuid.UUID, upd OrderUnitUpdate) (*OrderUnit, error)
	InsertDeliveryUnits(ctx context.Context, units []DeliveryUnit) error
	GetDeliveryUnit(ctx context.Context, id uuid.UUID) (*DeliveryUnit, error)
	ListDeliveryUnits(ctx context.Context, f DeliveryUnitFilter) ([]DeliveryUnit, error)
	UpdateDeliveryUnit(ctx context.Context, id uuid.UUID, upd DeliveryUnitUpdate) (*DeliveryUnit, error)

	InsertLink(ctx context.Context, link *UnitLink) error
	GetLink(ctx context.Context, id uuid.UUID) (*UnitLink, error)
	UpdateLink(ctx context.Context, id uuid.UUID, upd LinkUpdate) (*UnitLink, error)
	DeleteLink(ctx context.Context, id uuid.UUID) error
	ListLinks(ctx context.Context, f LinkFilter) ([]UnitLink, error)

	InsertQuantityLink(ctx context.Context, link *QuantityLink) error
	ListQuantityLinks(ctx context.Context, f QuantityLinkFilter) ([]QuantityLink, error)
	DeleteQuantityLink(ctx context.Context, id uuid.UUID) error
}

// Transactor is implemented by stores that can run a group of operations atomically.
// fn receives a Store bound to the transaction; returning an error rolls it back.
type Transactor interface {
	InTx(ctx context.Context, fn func(Store) error) error
}

// inTx runs fn inside a transaction when s supports one, and directly otherwise.
// The boolean reports whether fn ran transactionally.
func inTx(ctx context.Context, s Store, fn func(Store) error) (bool, error) {
	if t, ok := s.(Transactor); ok {
		return true, t.InTx(ctx, fn)
	}
	return false, fn(s)
}

// ids returns a non-nil slice so that an empty result constrains a filter to nothing.
func ids(n int) []uuid.UUID {
	return make([]uuid.UUID, 0, n)
}

func nowUTC() time.Time {
	return time.Now().UTC()
}
