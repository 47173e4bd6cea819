package core_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"unit-recon/internal/core"
	"unit-recon/internal/memstore"
)

// fixture wires every service over one in-memory store with one purchase order and one delivery.
type fixture struct {
	store     core.Store
	proc      core.ProcurementService
	units     core.UnitService
	links     core.LinkService
	validator core.Validator
	recon     core.ReconciliationService
	qty       core.QuantityLinkService
	po        *core.PurchaseOrder
	delivery  *core.Delivery
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	return newFixtureOn(t, memstore.New())
}

func newFixtureOn(t *testing.T, store core.Store) *fixture {
	t.Helper()
	ctx := context.Background()
	f := &fixture{
		store:     store,
		proc:      core.NewProcurementService(store),
		units:     core.NewUnitService(store),
		links:     core.NewLinkService(store),
		validator: core.NewValidator(store),
		recon:     core.NewReconciliationService(store),
		qty:       core.NewQuantityLinkService(store),
	}
	var err error
	f.po, err = f.proc.CreatePurchaseOrder(ctx, core.PurchaseOrderInput{PONumber: "PO-" + uuid.NewString()[:8], Supplier: "Acme"})
	require.NoError(t, err)
	f.delivery, err = f.proc.CreateDelivery(ctx, core.DeliveryInput{DeliveryNumber: "DN-" + uuid.NewString()[:8], Supplier: "Acme"})
	require.NoError(t, err)
	return f
}

func (f *fixture) newDelivery(t *testing.T) *core.Delivery {
	t.Helper()
	d, err := f.proc.CreateDelivery(context.Background(), core.DeliveryInput{DeliveryNumber: "DN-" + uuid.NewString()[:8]})
	require.NoError(t, err)
	return d
}

func (f *fixture) orderLine(t *testing.T, model string, qty int64) []core.OrderUnit {
	t.Helper()
	_, units, err := f.proc.AddOrderItem(context.Background(), f.po.ID, core.LineItemInput{
		Model:    model,
		Quantity: decimal.NewFromInt(qty),
	})
	require.NoError(t, err)
	return units
}

func (f *fixture) deliveryLine(t *testing.T, model string, qty int64) []core.DeliveryUnit {
	t.Helper()
	return f.deliveryLineOn(t, f.delivery.ID, model, qty)
}

func (f *fixture) deliveryLineOn(t *testing.T, deliveryID uuid.UUID, model string, qty int64) []core.DeliveryUnit {
	t.Helper()
	_, units, err := f.proc.AddDeliveryItem(context.Background(), deliveryID, core.LineItemInput{
		Model:    model,
		Quantity: decimal.NewFromInt(qty),
	})
	require.NoError(t, err)
	return units
}

func (f *fixture) setOrderSerial(t *testing.T, id uuid.UUID, serial string) {
	t.Helper()
	_, err := f.units.UpdateOrderUnit(context.Background(), id, core.OrderUnitUpdate{SerialNumber: &serial})
	require.NoError(t, err)
}

func (f *fixture) setDeliverySerial(t *testing.T, id uuid.UUID, serial string) {
	t.Helper()
	_, err := f.units.UpdateDeliveryUnit(context.Background(), id, core.DeliveryUnitUpdate{SerialNumber: &serial})
	require.NoError(t, err)
}

func (f *fixture) orderUnit(t *testing.T, id uuid.UUID) *core.OrderUnit {
	t.Helper()
	u, err := f.store.GetOrderUnit(context.Background(), id)
	require.NoError(t, err)
	return u
}

func (f *fixture) deliveryUnit(t *testing.T, id uuid.UUID) *core.DeliveryUnit {
	t.Helper()
	u, err := f.store.GetDeliveryUnit(context.Background(), id)
	require.NoError(t, err)
	return u
}

func (f *fixture) allLinks(t *testing.T) []core.UnitLink {
	t.Helper()
	links, err := f.links.ListLinks(context.Background(), &f.po.ID, nil)
	require.NoError(t, err)
	return links
}

var one = decimal.NewFromInt(1)

func ptr[T any](v T) *T { return &v }
