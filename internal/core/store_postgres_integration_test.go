package core_test

import (
	"context"
	"errors"
	"os"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"

	"unit-recon/internal/core"
	"unit-recon/internal/db"
)

func setupTestDB(t *testing.T) *pgxpool.Pool {
	_ = godotenv.Load("../../.env")

	// Use a dedicated TEST database; every run truncates the reconciliation tables.
	dbURL := os.Getenv("TEST_DATABASE_URL")
	if dbURL == "" {
		t.Skip("TEST_DATABASE_URL not set, skipping integration test")
	}

	if err := db.MigrateUp(dbURL); err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, dbURL)
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}

	_, err = pool.Exec(ctx, `
		TRUNCATE TABLE delivery_item_links, unit_links, delivery_item_units, po_item_units,
		               delivery_items, purchase_order_items, deliveries, purchase_orders CASCADE`)
	if err != nil {
		t.Fatalf("Failed to clean test database: %v", err)
	}
	return pool
}

func TestPostgresStore_Reconciliation(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	ctx := context.Background()
	store := core.NewPostgresStore(pool)
	if _, ok := store.(core.Transactor); !ok {
		t.Fatal("expected postgres store to be transactional")
	}
	f := newFixtureOn(t, store)
	ous := f.orderLine(t, "TN-2420", 3)
	dus := f.deliveryLine(t, "TN-2420", 3)
	matcher := core.NewAutoMatcher(store, f.links, nil, 0)

	t.Run("SeededUnits", func(t *testing.T) {
		for i, u := range ous {
			if u.UnitNumber != i+1 {
				t.Errorf("expected unit number %d, got %d", i+1, u.UnitNumber)
			}
			if u.Status != core.OrderUnitOrdered {
				t.Errorf("expected status ordered, got %s", u.Status)
			}
		}
	})

	t.Run("BulkCreate_InvalidPairWritesNothing", func(t *testing.T) {
		_, err := f.links.BulkCreateLinks(ctx, []core.CreateLinkInput{
			{OrderUnitID: ous[0].ID, DeliveryUnitID: dus[0].ID},
			{OrderUnitID: ous[1].ID, DeliveryUnitID: dus[0].ID},
		})
		var bulk *core.BulkLinkError
		if !errors.As(err, &bulk) {
			t.Fatalf("expected BulkLinkError, got %v", err)
		}
		if links := f.allLinks(t); len(links) != 0 {
			t.Errorf("expected no links after rollback, got %d", len(links))
		}
	})

	t.Run("AutoLink_ThreeByThree", func(t *testing.T) {
		res, err := matcher.AutoLink(ctx, f.po.ID, f.delivery.ID, core.AutoLinkOptions{})
		if err != nil {
			t.Fatalf("AutoLink: %v", err)
		}
		if res.Created != 3 {
			t.Errorf("expected 3 links, got %d", res.Created)
		}
		stats, err := f.recon.Stats(ctx, &f.po.ID, &f.delivery.ID)
		if err != nil {
			t.Fatalf("Stats: %v", err)
		}
		if stats.LinkedUnits != 3 || stats.UnlinkedPOUnits != 0 || stats.UnlinkedDeliveryUnits != 0 {
			t.Errorf("unexpected stats: %+v", stats)
		}
	})

	t.Run("AutoLink_SecondCallCreatesNothing", func(t *testing.T) {
		res, err := matcher.AutoLink(ctx, f.po.ID, f.delivery.ID, core.AutoLinkOptions{})
		if err != nil {
			t.Fatalf("AutoLink: %v", err)
		}
		if res.Created != 0 {
			t.Errorf("expected 0 links, got %d", res.Created)
		}
	})

	t.Run("DeleteLink_RevertsStatus", func(t *testing.T) {
		links := f.allLinks(t)
		if len(links) != 3 {
			t.Fatalf("expected 3 links, got %d", len(links))
		}
		if err := f.links.DeleteLink(ctx, links[0].ID); err != nil {
			t.Fatalf("DeleteLink: %v", err)
		}
		if got := f.orderUnit(t, links[0].OrderUnitID).Status; got != core.OrderUnitOrdered {
			t.Errorf("expected ordered, got %s", got)
		}
		if got := f.deliveryUnit(t, links[0].DeliveryUnitID).Status; got != core.DeliveryUnitDelivered {
			t.Errorf("expected delivered, got %s", got)
		}
	})
}

func TestPostgresStore_ConcurrentClaimsOnOneUnit(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	ctx := context.Background()
	store := core.NewPostgresStore(pool)
	f := newFixtureOn(t, store)
	ous := f.orderLine(t, "TN-2420", 1)
	dus := f.deliveryLine(t, "TN-2420", 2)

	var wg sync.WaitGroup
	errs := make([]error, len(dus))
	for i, du := range dus {
		wg.Add(1)
		go func(i int, deliveryUnitID uuid.UUID) {
			defer wg.Done()
			_, errs[i] = f.links.CreateLink(ctx, core.CreateLinkInput{OrderUnitID: ous[0].ID, DeliveryUnitID: deliveryUnitID})
		}(i, du.ID)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		switch kind := core.ErrorKind(err); kind {
		case "":
			succeeded++
		case core.KindConflict, core.KindValidationFailed:
		default:
			t.Errorf("unexpected error kind %s: %v", kind, err)
		}
	}
	if succeeded != 1 {
		t.Errorf("expected exactly one successful claim, got %d", succeeded)
	}
	if links := f.allLinks(t); len(links) != 1 {
		t.Errorf("expected 1 link, got %d", len(links))
	}
}
