package core_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"unit-recon/internal/cache"
	"unit-recon/internal/core"
	"unit-recon/internal/memstore"
)

func TestAutoMatcher_ThreeByThree(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	ous := f.orderLine(t, "TN-2420", 3)
	dus := f.deliveryLine(t, "TN-2420", 3)
	m := core.NewAutoMatcher(f.store, f.links, nil, 0)

	res, err := m.AutoLink(ctx, f.po.ID, f.delivery.ID, core.AutoLinkOptions{})
	require.NoError(t, err)
	assert.Equal(t, 3, res.Created)
	assert.False(t, res.Debounced)
	require.Len(t, res.Links, 3)
	for i, l := range res.Links {
		assert.Equal(t, ous[i].ID, l.OrderUnitID, "po unit #%d", i+1)
		assert.Equal(t, dus[i].ID, l.DeliveryUnitID, "delivery unit #%d", i+1)
	}

	stats, err := f.recon.Stats(ctx, &f.po.ID, &f.delivery.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, stats.LinkedUnits)
	assert.Equal(t, 0, stats.UnlinkedPOUnits)
	assert.Equal(t, 0, stats.UnlinkedDeliveryUnits)
	assert.Equal(t, 3, stats.UnitsByStatus.POUnits[core.OrderUnitLinked])
}

func TestAutoMatcher_Idempotent(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	ous := f.orderLine(t, "TN-2420", 3)
	dus := f.deliveryLine(t, "TN-2420", 3)
	// delivered in reverse order
	for i := range ous {
		f.setOrderSerial(t, ous[i].ID, fmt.Sprintf("SN-%d", i))
		f.setDeliverySerial(t, dus[len(dus)-1-i].ID, fmt.Sprintf("SN-%d", i))
	}
	m := core.NewAutoMatcher(f.store, f.links, nil, 0)
	opts := core.AutoLinkOptions{MatchBySerial: true}

	first, err := m.AutoLink(ctx, f.po.ID, f.delivery.ID, opts)
	require.NoError(t, err)
	assert.Equal(t, 3, first.Created)
	for _, l := range first.Links {
		ou, du := f.orderUnit(t, l.OrderUnitID), f.deliveryUnit(t, l.DeliveryUnitID)
		assert.Equal(t, *ou.SerialNumber, *du.SerialNumber)
	}

	second, err := m.AutoLink(ctx, f.po.ID, f.delivery.ID, opts)
	require.NoError(t, err)
	assert.Equal(t, 0, second.Created)
	assert.Len(t, f.allLinks(t), 3)
}

func TestAutoMatcher_Deterministic(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.orderLine(t, "TN-2420", 4)
	f.deliveryLine(t, "TN-2420", 2)
	m := core.NewAutoMatcher(f.store, f.links, nil, 0)

	a, err := m.Preview(ctx, f.po.ID, f.delivery.ID, core.AutoLinkOptions{})
	require.NoError(t, err)
	b, err := m.Preview(ctx, f.po.ID, f.delivery.ID, core.AutoLinkOptions{})
	require.NoError(t, err)
	assert.Equal(t, a, b)
	require.Len(t, a, 2)
	assert.Equal(t, 1, a[0].OrderUnitNumber)
	assert.Equal(t, 2, a[1].OrderUnitNumber)
	assert.Empty(t, f.allLinks(t), "preview must not write")
}

func TestAutoMatcher_SkipsOtherProductsAndUnmatchedSerials(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	ous := f.orderLine(t, "TN-2420", 2)
	f.deliveryLine(t, "DR-2400", 2)
	dus := f.deliveryLine(t, "TN-2420", 1)
	f.setOrderSerial(t, ous[1].ID, "SN-1")
	f.setDeliverySerial(t, dus[0].ID, "SN-1")
	m := core.NewAutoMatcher(f.store, f.links, nil, 0)

	res, err := m.AutoLink(ctx, f.po.ID, f.delivery.ID, core.AutoLinkOptions{MatchBySerial: true})
	require.NoError(t, err)
	require.Equal(t, 1, res.Created)
	assert.Equal(t, ous[1].ID, res.Links[0].OrderUnitID)
	assert.Equal(t, dus[0].ID, res.Links[0].DeliveryUnitID)
}

func TestAutoMatcher_NoMatchesIsNotAnError(t *testing.T) {
	f := newFixture(t)
	f.orderLine(t, "TN-2420", 2)
	f.deliveryLine(t, "DR-2400", 2)
	m := core.NewAutoMatcher(f.store, f.links, nil, 0)

	res, err := m.AutoLink(context.Background(), f.po.ID, f.delivery.ID, core.AutoLinkOptions{})
	require.NoError(t, err)
	assert.Equal(t, 0, res.Created)
	assert.NotNil(t, res.Links)
}

func TestAutoMatcher_Debounce(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.orderLine(t, "TN-2420", 2)
	f.deliveryLine(t, "TN-2420", 1)
	m := core.NewAutoMatcher(f.store, f.links, cache.NewMemoryGuard(), time.Minute)

	first, err := m.AutoLink(ctx, f.po.ID, f.delivery.ID, core.AutoLinkOptions{})
	require.NoError(t, err)
	assert.Equal(t, 1, first.Created)

	f.deliveryLine(t, "TN-2420", 1)
	second, err := m.AutoLink(ctx, f.po.ID, f.delivery.ID, core.AutoLinkOptions{})
	require.NoError(t, err)
	assert.True(t, second.Debounced)
	assert.Equal(t, 0, second.Created)
	assert.Len(t, f.allLinks(t), 1)
}

type brokenGuard struct{}

func (brokenGuard) Acquire(context.Context, string, time.Duration) (bool, error) {
	return false, errors.New("connection refused")
}

func (brokenGuard) Release(context.Context, string) error {
	return errors.New("connection refused")
}

func TestAutoMatcher_GuardFailureDoesNotBlock(t *testing.T) {
	f := newFixture(t)
	f.orderLine(t, "TN-2420", 1)
	f.deliveryLine(t, "TN-2420", 1)
	m := core.NewAutoMatcher(f.store, f.links, brokenGuard{}, time.Minute)

	res, err := m.AutoLink(context.Background(), f.po.ID, f.delivery.ID, core.AutoLinkOptions{})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Created)
}

func TestAutoMatcher_FailedRunIsNotDebounced(t *testing.T) {
	ctx := context.Background()
	store := &flakyStore{Store: memstore.New(), failOn: 1}
	f := newFixtureOn(t, store)
	f.orderLine(t, "TN-2420", 2)
	f.deliveryLine(t, "TN-2420", 2)
	m := core.NewAutoMatcher(f.store, f.links, cache.NewMemoryGuard(), 2*time.Second)

	_, err := m.AutoLink(ctx, f.po.ID, f.delivery.ID, core.AutoLinkOptions{})
	require.ErrorIs(t, err, errDiskFull)
	assert.Empty(t, f.allLinks(t))

	retry, err := m.AutoLink(ctx, f.po.ID, f.delivery.ID, core.AutoLinkOptions{})
	require.NoError(t, err)
	assert.False(t, retry.Debounced)
	assert.Equal(t, 2, retry.Created)
	assert.Len(t, f.allLinks(t), 2)

	// a successful run still holds the key
	again, err := m.AutoLink(ctx, f.po.ID, f.delivery.ID, core.AutoLinkOptions{})
	require.NoError(t, err)
	assert.True(t, again.Debounced)
}
