package core_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"unit-recon/internal/core"
	"unit-recon/internal/memstore"
)

func TestLinkService_CreateAndDelete(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	ous := f.orderLine(t, "LaserJet M404", 2)
	dus := f.deliveryLine(t, "laserjet m404", 2)

	link, err := f.links.CreateLink(ctx, core.CreateLinkInput{OrderUnitID: ous[0].ID, DeliveryUnitID: dus[0].ID, Notes: "bench check"})
	require.NoError(t, err)
	assert.Equal(t, core.LinkLinked, link.Status)
	assert.Equal(t, "bench check", link.Notes)
	assert.Nil(t, link.ConfirmedAt)
	assert.Equal(t, core.OrderUnitLinked, f.orderUnit(t, ous[0].ID).Status)
	assert.Equal(t, core.DeliveryUnitLinked, f.deliveryUnit(t, dus[0].ID).Status)

	t.Run("second link on a linked unit is refused", func(t *testing.T) {
		_, err := f.links.CreateLink(ctx, core.CreateLinkInput{OrderUnitID: ous[0].ID, DeliveryUnitID: dus[1].ID})
		require.Error(t, err)
		assert.ErrorIs(t, err, core.ErrValidationFailed)
		assert.Equal(t, core.KindValidationFailed, core.ErrorKind(err))
		assert.Contains(t, core.ErrorMessages(err), "po unit #1 is already linked")
		assert.Equal(t, core.DeliveryUnitDelivered, f.deliveryUnit(t, dus[1].ID).Status)
	})

	t.Run("delete reverts both units", func(t *testing.T) {
		require.NoError(t, f.links.DeleteLink(ctx, link.ID))
		assert.Equal(t, core.OrderUnitOrdered, f.orderUnit(t, ous[0].ID).Status)
		assert.Equal(t, core.DeliveryUnitDelivered, f.deliveryUnit(t, dus[0].ID).Status)
		assert.Empty(t, f.allLinks(t))
	})

	t.Run("delete of a missing link is not found", func(t *testing.T) {
		err := f.links.DeleteLink(ctx, link.ID)
		assert.ErrorIs(t, err, core.ErrNotFound)
	})
}

func TestLinkService_DeletePreservesTerminalStatus(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	ous := f.orderLine(t, "TN-2420", 1)
	dus := f.deliveryLine(t, "TN-2420", 1)

	link, err := f.links.CreateLink(ctx, core.CreateLinkInput{OrderUnitID: ous[0].ID, DeliveryUnitID: dus[0].ID})
	require.NoError(t, err)

	_, err = f.units.UpdateOrderUnit(ctx, ous[0].ID, core.OrderUnitUpdate{Status: ptr(core.OrderUnitReceived)})
	require.NoError(t, err)

	require.NoError(t, f.links.DeleteLink(ctx, link.ID))
	assert.Equal(t, core.OrderUnitReceived, f.orderUnit(t, ous[0].ID).Status)
	assert.Equal(t, core.DeliveryUnitDelivered, f.deliveryUnit(t, dus[0].ID).Status)
}

// brittleStore fails link deletes, or delivery unit status writes, on demand.
type brittleStore struct {
	core.Store
	failDelete         bool
	failDeliveryStatus bool
}

func (s *brittleStore) DeleteLink(ctx context.Context, id uuid.UUID) error {
	if s.failDelete {
		return errDiskFull
	}
	return s.Store.DeleteLink(ctx, id)
}

func (s *brittleStore) UpdateDeliveryUnit(ctx context.Context, id uuid.UUID, upd core.DeliveryUnitUpdate) (*core.DeliveryUnit, error) {
	if s.failDeliveryStatus && upd.Status != nil {
		return nil, errDiskFull
	}
	return s.Store.UpdateDeliveryUnit(ctx, id, upd)
}

func TestLinkService_FailedDeleteKeepsUnitsLinked(t *testing.T) {
	tests := []struct {
		name  string
		store *brittleStore
	}{
		{"link delete fails", &brittleStore{Store: memstore.New(), failDelete: true}},
		{"delivery unit revert fails", &brittleStore{Store: memstore.New(), failDeliveryStatus: true}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			f := newFixtureOn(t, tt.store)
			ous := f.orderLine(t, "TN-2420", 1)
			dus := f.deliveryLine(t, "TN-2420", 1)

			fail := tt.store.failDeliveryStatus
			tt.store.failDeliveryStatus = false
			link, err := f.links.CreateLink(ctx, core.CreateLinkInput{OrderUnitID: ous[0].ID, DeliveryUnitID: dus[0].ID})
			require.NoError(t, err)
			tt.store.failDeliveryStatus = fail

			err = f.links.DeleteLink(ctx, link.ID)
			require.ErrorIs(t, err, errDiskFull)

			assert.Len(t, f.allLinks(t), 1)
			assert.Equal(t, core.OrderUnitLinked, f.orderUnit(t, ous[0].ID).Status)
			assert.Equal(t, core.DeliveryUnitLinked, f.deliveryUnit(t, dus[0].ID).Status)
		})
	}
}

func TestLinkService_UpdateAndConfirm(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	ous := f.orderLine(t, "TN-2420", 1)
	dus := f.deliveryLine(t, "TN-2420", 1)
	link, err := f.links.CreateLink(ctx, core.CreateLinkInput{OrderUnitID: ous[0].ID, DeliveryUnitID: dus[0].ID})
	require.NoError(t, err)

	disputed, err := f.links.UpdateLink(ctx, link.ID, core.LinkUpdate{Status: ptr(core.LinkDisputed), Notes: ptr("box crushed")})
	require.NoError(t, err)
	assert.Equal(t, core.LinkDisputed, disputed.Status)
	assert.Equal(t, "box crushed", disputed.Notes)
	assert.Nil(t, disputed.ConfirmedAt)

	confirmed, err := f.links.ConfirmLink(ctx, link.ID, "warehouse-1")
	require.NoError(t, err)
	assert.Equal(t, core.LinkConfirmed, confirmed.Status)
	require.NotNil(t, confirmed.ConfirmedAt)
	require.NotNil(t, confirmed.ConfirmedBy)
	assert.Equal(t, "warehouse-1", *confirmed.ConfirmedBy)

	_, err = f.links.UpdateLink(ctx, link.ID, core.LinkUpdate{Status: ptr(core.LinkStatus("lost"))})
	assert.ErrorIs(t, err, core.ErrInvalidInput)

	_, err = f.links.UpdateLink(ctx, uuid.New(), core.LinkUpdate{Notes: ptr("x")})
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestLinkService_ListLinksRequiresScope(t *testing.T) {
	f := newFixture(t)
	_, err := f.links.ListLinks(context.Background(), nil, nil)
	assert.ErrorIs(t, err, core.ErrInvalidInput)
	assert.Equal(t, core.KindInvalidInput, core.ErrorKind(err))
}

func TestLinkService_ListLinksIntersectsScope(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	other := f.newDelivery(t)
	ous := f.orderLine(t, "TN-2420", 2)
	dus := f.deliveryLine(t, "TN-2420", 1)
	otherUnits := f.deliveryLineOn(t, other.ID, "TN-2420", 1)

	_, err := f.links.BulkCreateLinks(ctx, []core.CreateLinkInput{
		{OrderUnitID: ous[0].ID, DeliveryUnitID: dus[0].ID},
		{OrderUnitID: ous[1].ID, DeliveryUnitID: otherUnits[0].ID},
	})
	require.NoError(t, err)

	byPO, err := f.links.ListLinks(ctx, &f.po.ID, nil)
	require.NoError(t, err)
	assert.Len(t, byPO, 2)

	both, err := f.links.ListLinks(ctx, &f.po.ID, &other.ID)
	require.NoError(t, err)
	require.Len(t, both, 1)
	assert.Equal(t, otherUnits[0].ID, both[0].DeliveryUnitID)
}

// staleStore hides existing links from reads, standing in for a concurrent caller whose
// link committed after validation ran.
type staleStore struct {
	core.Store
}

func (s staleStore) ListLinks(context.Context, core.LinkFilter) ([]core.UnitLink, error) {
	return []core.UnitLink{}, nil
}

func TestLinkService_StorageConstraintReportsConflict(t *testing.T) {
	ctx := context.Background()
	mem := memstore.New()
	f := newFixtureOn(t, mem)
	ous := f.orderLine(t, "TN-2420", 1)
	dus := f.deliveryLine(t, "TN-2420", 2)

	_, err := f.links.CreateLink(ctx, core.CreateLinkInput{OrderUnitID: ous[0].ID, DeliveryUnitID: dus[0].ID})
	require.NoError(t, err)

	racing := core.NewLinkService(staleStore{Store: mem})
	_, err = racing.CreateLink(ctx, core.CreateLinkInput{OrderUnitID: ous[0].ID, DeliveryUnitID: dus[1].ID})
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrConflict)
	assert.Equal(t, core.KindConflict, core.ErrorKind(err))
	assert.Equal(t, core.DeliveryUnitDelivered, f.deliveryUnit(t, dus[1].ID).Status)
}

// flakyStore fails the nth InsertLink call.
type flakyStore struct {
	core.Store
	failOn  int
	inserts int
}

var errDiskFull = errors.New("disk full")

func (s *flakyStore) InsertLink(ctx context.Context, link *core.UnitLink) error {
	s.inserts++
	if s.inserts == s.failOn {
		return errDiskFull
	}
	return s.Store.InsertLink(ctx, link)
}

func TestLinkService_BulkCreateCompensatesOnWriteFailure(t *testing.T) {
	ctx := context.Background()
	store := &flakyStore{Store: memstore.New(), failOn: 3}
	f := newFixtureOn(t, store)
	ous := f.orderLine(t, "TN-2420", 3)
	dus := f.deliveryLine(t, "TN-2420", 3)

	// a non-default pre-link status must come back exactly
	_, err := f.units.UpdateOrderUnit(ctx, ous[0].ID, core.OrderUnitUpdate{Status: ptr(core.OrderUnitDelivered)})
	require.NoError(t, err)

	in := make([]core.CreateLinkInput, 3)
	for i := range in {
		in[i] = core.CreateLinkInput{OrderUnitID: ous[i].ID, DeliveryUnitID: dus[i].ID}
	}
	created, err := f.links.BulkCreateLinks(ctx, in)
	require.Error(t, err)
	assert.Nil(t, created)

	var bulk *core.BulkLinkError
	require.ErrorAs(t, err, &bulk)
	assert.Equal(t, 2, bulk.Index)
	assert.Equal(t, ous[2].ID, bulk.OrderUnitID)
	assert.ErrorIs(t, err, core.ErrBulkLinkFailed)
	assert.ErrorIs(t, err, errDiskFull)
	assert.Equal(t, core.KindPartialBulkFailure, core.ErrorKind(err))

	assert.Empty(t, f.allLinks(t))
	assert.Equal(t, core.OrderUnitDelivered, f.orderUnit(t, ous[0].ID).Status)
	assert.Equal(t, core.OrderUnitOrdered, f.orderUnit(t, ous[1].ID).Status)
	for _, du := range dus {
		assert.Equal(t, core.DeliveryUnitDelivered, f.deliveryUnit(t, du.ID).Status)
	}
}

func TestLinkService_BulkCreateValidatesBeforeWriting(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	ous := f.orderLine(t, "TN-2420", 2)
	dus := f.deliveryLine(t, "TN-2420", 2)
	other := f.deliveryLine(t, "DR-2400", 1)

	t.Run("duplicate unit inside the batch", func(t *testing.T) {
		_, err := f.links.BulkCreateLinks(ctx, []core.CreateLinkInput{
			{OrderUnitID: ous[0].ID, DeliveryUnitID: dus[0].ID},
			{OrderUnitID: ous[0].ID, DeliveryUnitID: dus[1].ID},
		})
		var bulk *core.BulkLinkError
		require.ErrorAs(t, err, &bulk)
		assert.Equal(t, 1, bulk.Index)
		assert.ErrorIs(t, err, core.ErrConflict)
		assert.Empty(t, f.allLinks(t))
	})

	t.Run("invalid pair aborts the whole batch", func(t *testing.T) {
		_, err := f.links.BulkCreateLinks(ctx, []core.CreateLinkInput{
			{OrderUnitID: ous[0].ID, DeliveryUnitID: dus[0].ID},
			{OrderUnitID: ous[1].ID, DeliveryUnitID: other[0].ID},
		})
		var bulk *core.BulkLinkError
		require.ErrorAs(t, err, &bulk)
		assert.Equal(t, 1, bulk.Index)
		assert.ErrorIs(t, err, core.ErrValidationFailed)
		assert.Empty(t, f.allLinks(t))
		assert.Equal(t, core.OrderUnitOrdered, f.orderUnit(t, ous[0].ID).Status)
	})

	t.Run("empty batch", func(t *testing.T) {
		created, err := f.links.BulkCreateLinks(ctx, nil)
		require.NoError(t, err)
		assert.Empty(t, created)
	})
}
