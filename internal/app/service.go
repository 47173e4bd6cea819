package app

import (
	"context"

	"github.com/google/uuid"

	"unit-recon/internal/core"
)

// ApplicationService is the single interface all UI adapters (CLI, Web) call.
// It decouples presentation from business logic. Implementations must contain
// no fmt.Println, no ANSI codes, and no display logic of any kind.
type ApplicationService interface {
	// Health reports whether the backing store answers.
	Health(ctx context.Context) error

	// CreatePurchaseOrder creates a purchase order header.
	CreatePurchaseOrder(ctx context.Context, req CreatePurchaseOrderRequest) (*PurchaseOrderResult, error)

	// GetPurchaseOrder returns a purchase order with its line items.
	GetPurchaseOrder(ctx context.Context, id uuid.UUID) (*PurchaseOrderResult, error)

	// AddOrderItem adds a line to a purchase order and seeds one unit per piece.
	AddOrderItem(ctx context.Context, purchaseOrderID uuid.UUID, req AddLineItemRequest) (*OrderItemResult, error)

	// CreateDelivery creates a delivery header.
	CreateDelivery(ctx context.Context, req CreateDeliveryRequest) (*DeliveryResult, error)

	// GetDelivery returns a delivery with its line items.
	GetDelivery(ctx context.Context, id uuid.UUID) (*DeliveryResult, error)

	// AddDeliveryItem adds a line to a delivery and seeds one unit per piece.
	AddDeliveryItem(ctx context.Context, deliveryID uuid.UUID, req AddLineItemRequest) (*DeliveryItemResult, error)

	ListOrderUnits(ctx context.Context, orderItemID uuid.UUID) ([]core.OrderUnit, error)
	ListDeliveryUnits(ctx context.Context, deliveryItemID uuid.UUID) ([]core.DeliveryUnit, error)

	// UpdateOrderUnit records serial/batch numbers, notes, or a manual status change.
	UpdateOrderUnit(ctx context.Context, id uuid.UUID, req UpdateOrderUnitRequest) (*core.OrderUnit, error)

	// UpdateDeliveryUnit records serial/batch numbers, condition notes, or a manual status change.
	UpdateDeliveryUnit(ctx context.Context, id uuid.UUID, req UpdateDeliveryUnitRequest) (*core.DeliveryUnit, error)

	// ListLinks returns unit links scoped to a purchase order and/or delivery.
	ListLinks(ctx context.Context, scope Scope) (*LinkListResult, error)

	// ValidateLink runs the linking validator without writing anything.
	ValidateLink(ctx context.Context, req ValidateLinkRequest) (*core.ValidationResult, error)

	// CreateLink validates and persists one pairing.
	CreateLink(ctx context.Context, req CreateLinkRequest) (*core.UnitLink, error)

	// BulkCreateLinks persists every pairing or none.
	BulkCreateLinks(ctx context.Context, req BulkCreateLinksRequest) (*LinkListResult, error)

	// UpdateLink changes a link's status or notes.
	UpdateLink(ctx context.Context, id uuid.UUID, req UpdateLinkRequest) (*core.UnitLink, error)

	// ConfirmLink marks a link confirmed by an operator.
	ConfirmLink(ctx context.Context, id uuid.UUID, req ConfirmLinkRequest) (*core.UnitLink, error)

	// DeleteLink removes a link and reverts both unit statuses.
	DeleteLink(ctx context.Context, id uuid.UUID) error

	// AutoLink pairs unlinked units of matching products between a purchase order and a delivery.
	AutoLink(ctx context.Context, req AutoLinkRequest) (*core.AutoLinkResult, error)

	// PreviewAutoLink returns the pairs AutoLink would create.
	PreviewAutoLink(ctx context.Context, req AutoLinkRequest) (*PreviewResult, error)

	// GetStats returns unit and link counts.
	GetStats(ctx context.Context, scope Scope) (*core.LinkStats, error)

	// Reconcile returns the itemized discrepancy report.
	Reconcile(ctx context.Context, scope Scope) (*core.ReconciliationReport, error)

	ListQuantityLinks(ctx context.Context, scope Scope) ([]core.QuantityLink, error)

	// CreateQuantityLink allocates part of a delivery line to an order line.
	CreateQuantityLink(ctx context.Context, req CreateQuantityLinkRequest) (*core.QuantityLink, error)

	DeleteQuantityLink(ctx context.Context, id uuid.UUID) error
}
