package memstore_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"unit-recon/internal/core"
	"unit-recon/internal/memstore"
)

type seeded struct {
	store         *memstore.Store
	poID          uuid.UUID
	deliveryID    uuid.UUID
	orderUnits    []core.OrderUnit
	deliveryUnits []core.DeliveryUnit
}

func seed(t *testing.T) seeded {
	t.Helper()
	ctx := context.Background()
	s := memstore.New()
	ts := time.Now().UTC()

	po := core.PurchaseOrder{ID: uuid.New(), PONumber: "PO-1", CreatedAt: ts}
	require.NoError(t, s.InsertPurchaseOrder(ctx, &po))
	d := core.Delivery{ID: uuid.New(), DeliveryNumber: "DN-1", CreatedAt: ts}
	require.NoError(t, s.InsertDelivery(ctx, &d))

	model := "TN-2420"
	oi := core.PurchaseOrderItem{ID: uuid.New(), PurchaseOrderID: po.ID, Model: &model, Quantity: decimal.NewFromInt(2), CreatedAt: ts}
	require.NoError(t, s.InsertOrderItem(ctx, &oi))
	di := core.DeliveryItem{ID: uuid.New(), DeliveryID: d.ID, Model: &model, Quantity: decimal.NewFromInt(2), CreatedAt: ts}
	require.NoError(t, s.InsertDeliveryItem(ctx, &di))

	blank := "   "
	ous := []core.OrderUnit{
		{ID: uuid.New(), OrderItemID: oi.ID, UnitNumber: 2, Status: core.OrderUnitOrdered, SerialNumber: &blank},
		{ID: uuid.New(), OrderItemID: oi.ID, UnitNumber: 1, Status: core.OrderUnitOrdered},
	}
	require.NoError(t, s.InsertOrderUnits(ctx, ous))
	dus := []core.DeliveryUnit{
		{ID: uuid.New(), DeliveryItemID: di.ID, UnitNumber: 1, Status: core.DeliveryUnitDelivered},
		{ID: uuid.New(), DeliveryItemID: di.ID, UnitNumber: 2, Status: core.DeliveryUnitDelivered},
	}
	require.NoError(t, s.InsertDeliveryUnits(ctx, dus))

	return seeded{store: s, poID: po.ID, deliveryID: d.ID, orderUnits: ous, deliveryUnits: dus}
}

func TestStore_DocumentNumbersAreUnique(t *testing.T) {
	ctx := context.Background()
	sd := seed(t)

	err := sd.store.InsertPurchaseOrder(ctx, &core.PurchaseOrder{ID: uuid.New(), PONumber: "PO-1"})
	assert.ErrorIs(t, err, core.ErrConflict)

	err = sd.store.InsertDelivery(ctx, &core.Delivery{ID: uuid.New(), DeliveryNumber: "DN-1"})
	assert.ErrorIs(t, err, core.ErrConflict)

	_, err = sd.store.GetPurchaseOrder(ctx, uuid.New())
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestStore_OrderUnitsSortedAndBlankSerialsCleared(t *testing.T) {
	ctx := context.Background()
	sd := seed(t)

	units, err := sd.store.ListOrderUnits(ctx, core.OrderUnitFilter{PurchaseOrderIDs: []uuid.UUID{sd.poID}})
	require.NoError(t, err)
	require.Len(t, units, 2)
	assert.Equal(t, 1, units[0].UnitNumber)
	assert.Equal(t, 2, units[1].UnitNumber)
	assert.Nil(t, units[1].SerialNumber)

	dup := []core.OrderUnit{{ID: uuid.New(), OrderItemID: units[0].OrderItemID, UnitNumber: 1, Status: core.OrderUnitOrdered}}
	assert.ErrorIs(t, sd.store.InsertOrderUnits(ctx, dup), core.ErrConflict)
}

func TestStore_LinkUniquenessPerUnit(t *testing.T) {
	ctx := context.Background()
	sd := seed(t)

	first := core.UnitLink{ID: uuid.New(), OrderUnitID: sd.orderUnits[0].ID, DeliveryUnitID: sd.deliveryUnits[0].ID, Status: core.LinkLinked, LinkedAt: time.Now()}
	require.NoError(t, sd.store.InsertLink(ctx, &first))

	sameOrder := core.UnitLink{ID: uuid.New(), OrderUnitID: sd.orderUnits[0].ID, DeliveryUnitID: sd.deliveryUnits[1].ID, Status: core.LinkLinked}
	assert.ErrorIs(t, sd.store.InsertLink(ctx, &sameOrder), core.ErrConflict)

	sameDelivery := core.UnitLink{ID: uuid.New(), OrderUnitID: sd.orderUnits[1].ID, DeliveryUnitID: sd.deliveryUnits[0].ID, Status: core.LinkLinked}
	assert.ErrorIs(t, sd.store.InsertLink(ctx, &sameDelivery), core.ErrConflict)

	missing := core.UnitLink{ID: uuid.New(), OrderUnitID: uuid.New(), DeliveryUnitID: sd.deliveryUnits[1].ID, Status: core.LinkLinked}
	assert.ErrorIs(t, sd.store.InsertLink(ctx, &missing), core.ErrNotFound)

	// deleting frees both units again
	require.NoError(t, sd.store.DeleteLink(ctx, first.ID))
	require.NoError(t, sd.store.InsertLink(ctx, &sameOrder))
}

func TestStore_ListLinksFilters(t *testing.T) {
	ctx := context.Background()
	sd := seed(t)

	link := core.UnitLink{ID: uuid.New(), OrderUnitID: sd.orderUnits[1].ID, DeliveryUnitID: sd.deliveryUnits[0].ID, Status: core.LinkLinked, LinkedAt: time.Now()}
	require.NoError(t, sd.store.InsertLink(ctx, &link))

	all, err := sd.store.ListLinks(ctx, core.LinkFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 1)

	byPO, err := sd.store.ListLinks(ctx, core.LinkFilter{PurchaseOrderIDs: []uuid.UUID{sd.poID}})
	require.NoError(t, err)
	assert.Len(t, byPO, 1)

	// a non-nil empty filter matches nothing
	none, err := sd.store.ListLinks(ctx, core.LinkFilter{DeliveryIDs: []uuid.UUID{}})
	require.NoError(t, err)
	assert.Empty(t, none)
	assert.NotNil(t, none)

	other, err := sd.store.ListLinks(ctx, core.LinkFilter{DeliveryIDs: []uuid.UUID{uuid.New()}})
	require.NoError(t, err)
	assert.Empty(t, other)
}
