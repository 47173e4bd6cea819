package core_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"unit-recon/internal/core"
)

func TestUnitService_SeedOnItemCreation(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	item, units, err := f.proc.AddOrderItem(ctx, f.po.ID, core.LineItemInput{Model: "TN-2420", Quantity: decimal.NewFromInt(4)})
	require.NoError(t, err)
	require.Len(t, units, 4)

	listed, err := f.units.ListOrderUnits(ctx, item.ID)
	require.NoError(t, err)
	require.Len(t, listed, 4)
	for i, u := range listed {
		assert.Equal(t, i+1, u.UnitNumber)
		assert.Equal(t, core.OrderUnitOrdered, u.Status)
		assert.Equal(t, item.ID, u.OrderItemID)
	}

	t.Run("reseeding conflicts", func(t *testing.T) {
		_, err := f.units.SeedOrderUnits(ctx, item.ID)
		assert.ErrorIs(t, err, core.ErrConflict)
	})

	t.Run("delivery side", func(t *testing.T) {
		ditem, dunits, err := f.proc.AddDeliveryItem(ctx, f.delivery.ID, core.LineItemInput{Model: "TN-2420", Quantity: decimal.NewFromInt(2)})
		require.NoError(t, err)
		require.Len(t, dunits, 2)
		assert.Equal(t, core.DeliveryUnitDelivered, dunits[0].Status)
		_, err = f.units.SeedDeliveryUnits(ctx, ditem.ID)
		assert.ErrorIs(t, err, core.ErrConflict)
	})
}

func TestUnitService_RejectsUntrackableQuantities(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	for _, q := range []string{"0", "-2", "1.5", "10001"} {
		_, _, err := f.proc.AddOrderItem(ctx, f.po.ID, core.LineItemInput{Model: "TN-2420", Quantity: decimal.RequireFromString(q)})
		assert.ErrorIs(t, err, core.ErrInvalidInput, "quantity %s", q)
	}
	_, _, err := f.proc.AddOrderItem(ctx, f.po.ID, core.LineItemInput{Quantity: one})
	assert.ErrorIs(t, err, core.ErrInvalidInput, "product or model required")
}

func TestUnitService_Update(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	ous := f.orderLine(t, "TN-2420", 1)
	dus := f.deliveryLine(t, "TN-2420", 1)

	u, err := f.units.UpdateOrderUnit(ctx, ous[0].ID, core.OrderUnitUpdate{
		SerialNumber: ptr(" SN-100 "),
		BatchNumber:  ptr("B-7"),
		Notes:        ptr("boxed"),
	})
	require.NoError(t, err)
	require.NotNil(t, u.SerialNumber)
	assert.Equal(t, "SN-100", *u.SerialNumber)
	assert.Equal(t, "B-7", *u.BatchNumber)
	assert.Equal(t, "boxed", u.Notes)
	assert.Equal(t, core.OrderUnitOrdered, u.Status)

	u, err = f.units.UpdateOrderUnit(ctx, ous[0].ID, core.OrderUnitUpdate{SerialNumber: ptr("")})
	require.NoError(t, err)
	assert.Nil(t, u.SerialNumber, "empty serial clears the value")
	assert.Equal(t, "B-7", *u.BatchNumber)

	d, err := f.units.UpdateDeliveryUnit(ctx, dus[0].ID, core.DeliveryUnitUpdate{ConditionNotes: ptr("dented")})
	require.NoError(t, err)
	assert.Equal(t, "dented", d.ConditionNotes)

	t.Run("linked cannot be set directly", func(t *testing.T) {
		_, err := f.units.UpdateOrderUnit(ctx, ous[0].ID, core.OrderUnitUpdate{Status: ptr(core.OrderUnitLinked)})
		assert.ErrorIs(t, err, core.ErrInvalidInput)
		_, err = f.units.UpdateDeliveryUnit(ctx, dus[0].ID, core.DeliveryUnitUpdate{Status: ptr(core.DeliveryUnitLinked)})
		assert.ErrorIs(t, err, core.ErrInvalidInput)
	})

	t.Run("unknown status", func(t *testing.T) {
		_, err := f.units.UpdateOrderUnit(ctx, ous[0].ID, core.OrderUnitUpdate{Status: ptr(core.OrderUnitStatus("lost"))})
		assert.ErrorIs(t, err, core.ErrInvalidInput)
	})

	t.Run("not found", func(t *testing.T) {
		_, err := f.units.UpdateOrderUnit(ctx, uuid.New(), core.OrderUnitUpdate{Notes: ptr("x")})
		assert.ErrorIs(t, err, core.ErrNotFound)
		assert.Equal(t, core.KindNotFound, core.ErrorKind(err))
		_, err = f.units.ListDeliveryUnits(ctx, uuid.New())
		assert.ErrorIs(t, err, core.ErrNotFound)
	})
}
