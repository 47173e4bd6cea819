package app

import "unit-recon/internal/core"

// PurchaseOrderResult is returned by purchase order operations.
type PurchaseOrderResult struct {
	PurchaseOrder *core.PurchaseOrder      `json:"purchase_order"`
	Items         []core.PurchaseOrderItem `json:"items"`
}

// DeliveryResult is returned by delivery operations.
type DeliveryResult struct {
	Delivery *core.Delivery      `json:"delivery"`
	Items    []core.DeliveryItem `json:"items"`
}

// OrderItemResult is an order line together with its freshly seeded units.
type OrderItemResult struct {
	Item  *core.PurchaseOrderItem `json:"item"`
	Units []core.OrderUnit        `json:"units"`
}

// DeliveryItemResult is a delivery line together with its freshly seeded units.
type DeliveryItemResult struct {
	Item  *core.DeliveryItem  `json:"item"`
	Units []core.DeliveryUnit `json:"units"`
}

// LinkListResult is returned by ListLinks and BulkCreateLinks.
type LinkListResult struct {
	Links []core.UnitLink `json:"links"`
	Count int             `json:"count"`
}

// PreviewResult is returned by PreviewAutoLink.
type PreviewResult struct {
	Links []core.LinkPair `json:"links"`
	Count int             `json:"count"`
}
