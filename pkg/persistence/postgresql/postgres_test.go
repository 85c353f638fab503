package postgresql_test

import (
	"context"
	"database/sql"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	_ "github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go/modules/postgres"

	"github.com/storeops/stocksync/pkg/models"
	"github.com/storeops/stocksync/pkg/persistence"
	"github.com/storeops/stocksync/pkg/persistence/postgresql"
)

var postgresContainer *postgres.PostgresContainer

func dropDB(ctx context.Context, t *testing.T, databaseURL string) {
	t.Helper()

	db, err := sql.Open("postgres", databaseURL)
	require.NoError(t, err)

	// Drop children first, parents last.
	for _, table := range []string{"availability_snapshots", "run_summaries", "supplier_links", "supplier_products", "storefront_products", "schema_migrations"} {
		_, err = db.ExecContext(ctx, "DROP TABLE IF EXISTS "+table+" CASCADE")
		require.NoError(t, err)
	}

	require.NoError(t, db.Close())
}

func setupTestDB(t *testing.T) (*postgresql.Persistence, context.Context, string) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 120*time.Second)

	if postgresContainer == nil || !postgresContainer.IsRunning() {
		var err error

		postgresContainer, err = postgres.Run(ctx,
			"postgres:16-alpine",
			postgres.WithDatabase("stocksync_test"),
			postgres.WithUsername("stocksync"),
			postgres.WithPassword("stocksync"),
			postgres.BasicWaitStrategies(),
		)
		require.NoError(t, err)
	}

	databaseURL, err := postgresContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	dropDB(ctx, t, databaseURL)

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))

	store, err := postgresql.NewPersistence(ctx, logger, databaseURL)
	require.NoError(t, err)

	t.Cleanup(func() {
		dropDB(ctx, t, databaseURL)
		require.NoError(t, store.Close(ctx))
		cancel()
	})

	return store, ctx, databaseURL
}

// seedLink inserts one supplier product, one storefront product, and a link
// between them, returning the link and storefront row ids.
func seedLink(ctx context.Context, t *testing.T, db *sql.DB, supplier string, stock int, availability models.Availability, inventory int, active bool, syncedAt time.Time) (string, string) {
	t.Helper()

	supplierID := uuid.NewString()
	storefrontID := uuid.NewString()
	linkID := uuid.NewString()
	sku := "SKU-" + linkID[:8]

	_, err := db.ExecContext(ctx, `
		INSERT INTO supplier_products (id, supplier_name, supplier_sku, product_name, stock_level, availability, last_synced_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, supplierID, supplier, sku, "Seeded Product", stock, "in stock", syncedAt)
	require.NoError(t, err)

	_, err = db.ExecContext(ctx, `
		INSERT INTO storefront_products (id, product_id, sku, name, availability, inventory_level, is_visible, price, sale_price, is_clearance)
		VALUES ($1, $2, $3, $4, $5, $6, true, 19.95, 0, false)
	`, storefrontID, 100000+stock, sku, "Seeded Product", string(availability), inventory)
	require.NoError(t, err)

	_, err = db.ExecContext(ctx, `
		INSERT INTO supplier_links (id, storefront_product_id, supplier_product_id, supplier_name, active)
		VALUES ($1, $2, $3, $4, $5)
	`, linkID, storefrontID, supplierID, supplier, active)
	require.NoError(t, err)

	return linkID, storefrontID
}

func openDB(t *testing.T, databaseURL string) *sql.DB {
	t.Helper()

	db, err := sql.Open("postgres", databaseURL)
	require.NoError(t, err)

	t.Cleanup(func() {
		require.NoError(t, db.Close())
	})

	return db
}

func TestNewPersistence_Migrations(t *testing.T) {
	_, ctx, databaseURL := setupTestDB(t)

	db := openDB(t, databaseURL)

	for _, table := range []string{"supplier_products", "storefront_products", "supplier_links", "availability_snapshots", "run_summaries"} {
		var exists bool

		err := db.QueryRowContext(ctx,
			"SELECT EXISTS (SELECT 1 FROM information_schema.tables WHERE table_name = $1)",
			table,
		).Scan(&exists)
		require.NoError(t, err)
		assert.True(t, exists, "table %s should exist", table)
	}
}

func TestListActiveLinks(t *testing.T) {
	store, ctx, databaseURL := setupTestDB(t)
	db := openDB(t, databaseURL)

	syncedAt := time.Now().Add(-time.Hour)

	seedLink(ctx, t, db, "uhp", 5, models.AvailabilityDisabled, 0, true, syncedAt)
	seedLink(ctx, t, db, "oborne", 0, models.AvailabilityAvailable, 1000, true, syncedAt)
	seedLink(ctx, t, db, "kadac", 3, models.AvailabilityAvailable, 1000, false, syncedAt)

	links, err := store.ListActiveLinks(ctx, 1000)
	require.NoError(t, err)

	// The inactive link is excluded.
	require.Len(t, links, 2)

	for _, link := range links {
		assert.True(t, link.Link.Active)
		assert.NotEmpty(t, link.Storefront.SKU)
		assert.Equal(t, link.Storefront.SKU, link.Supplier.SupplierSKU)
	}
}

func TestListActiveLinks_Paging(t *testing.T) {
	store, ctx, databaseURL := setupTestDB(t)
	db := openDB(t, databaseURL)

	syncedAt := time.Now().Add(-time.Hour)
	for i := range 5 {
		seedLink(ctx, t, db, "unleashed", 10+i, models.AvailabilityAvailable, 10+i, true, syncedAt)
	}

	// Page size 2 forces three pages, the last one short.
	links, err := store.ListActiveLinks(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, links, 5)
}

func TestSupplierLastSync(t *testing.T) {
	store, ctx, databaseURL := setupTestDB(t)
	db := openDB(t, databaseURL)

	older := time.Now().Add(-10 * time.Hour).UTC().Truncate(time.Second)
	newer := time.Now().Add(-1 * time.Hour).UTC().Truncate(time.Second)

	seedLink(ctx, t, db, "uhp", 1, models.AvailabilityAvailable, 1000, true, older)
	seedLink(ctx, t, db, "uhp", 2, models.AvailabilityAvailable, 1000, true, newer)

	lastSync, err := store.SupplierLastSync(ctx)
	require.NoError(t, err)

	require.Contains(t, lastSync, "uhp")
	assert.WithinDuration(t, newer, lastSync["uhp"], time.Second)
}

func TestUpdateStorefrontState(t *testing.T) {
	store, ctx, databaseURL := setupTestDB(t)
	db := openDB(t, databaseURL)

	_, storefrontID := seedLink(ctx, t, db, "uhp", 1, models.AvailabilityDisabled, 0, true, time.Now())

	availability := models.AvailabilityAvailable
	inventory := 1000

	err := store.UpdateStorefrontState(ctx, storefrontID, persistence.StorefrontStateUpdate{
		Availability:   &availability,
		InventoryLevel: &inventory,
		UpdatedAt:      time.Now(),
	})
	require.NoError(t, err)

	var (
		gotAvailability string
		gotInventory    int
	)

	err = db.QueryRowContext(ctx,
		"SELECT availability, inventory_level FROM storefront_products WHERE id = $1",
		storefrontID,
	).Scan(&gotAvailability, &gotInventory)
	require.NoError(t, err)

	assert.Equal(t, "available", gotAvailability)
	assert.Equal(t, 1000, gotInventory)
}

func TestUpdateStorefrontState_PartialUpdate(t *testing.T) {
	store, ctx, databaseURL := setupTestDB(t)
	db := openDB(t, databaseURL)

	_, storefrontID := seedLink(ctx, t, db, "unleashed", 20, models.AvailabilityAvailable, 5, true, time.Now())

	inventory := 20

	err := store.UpdateStorefrontState(ctx, storefrontID, persistence.StorefrontStateUpdate{
		InventoryLevel: &inventory,
		UpdatedAt:      time.Now(),
	})
	require.NoError(t, err)

	var gotAvailability string

	err = db.QueryRowContext(ctx,
		"SELECT availability FROM storefront_products WHERE id = $1", storefrontID,
	).Scan(&gotAvailability)
	require.NoError(t, err)

	// Availability was not part of the update and must be untouched.
	assert.Equal(t, "available", gotAvailability)
}

func TestUpdateStorefrontState_NotFound(t *testing.T) {
	store, ctx, _ := setupTestDB(t)

	inventory := 5

	err := store.UpdateStorefrontState(ctx, uuid.NewString(), persistence.StorefrontStateUpdate{
		InventoryLevel: &inventory,
		UpdatedAt:      time.Now(),
	})
	require.Error(t, err)
	assert.True(t, persistence.IsStorefrontProductNotFound(err))
}

func TestInsertSnapshots(t *testing.T) {
	store, ctx, databaseURL := setupTestDB(t)
	db := openDB(t, databaseURL)

	runID := uuid.NewString()
	snapshots := []*models.RunSnapshot{
		{
			RunID:                runID,
			LinkID:               uuid.NewString(),
			ProductID:            101,
			SKU:                  "SNAP-001",
			PreviousAvailability: models.AvailabilityDisabled,
			PreviousInventory:    0,
			IntendedAction:       models.ActionEnable,
			IntendedAvailability: models.AvailabilityAvailable,
			IntendedInventory:    1000,
			SupplierName:         "uhp",
			CreatedAt:            time.Now(),
		},
		{
			RunID:                runID,
			LinkID:               uuid.NewString(),
			ProductID:            102,
			SKU:                  "SNAP-002",
			PreviousAvailability: models.AvailabilityAvailable,
			PreviousInventory:    1000,
			IntendedAction:       models.ActionDisable,
			IntendedAvailability: models.AvailabilityDisabled,
			IntendedInventory:    0,
			SupplierName:         "oborne",
			CreatedAt:            time.Now(),
		},
	}

	require.NoError(t, store.InsertSnapshots(ctx, snapshots))

	var count int

	err := db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM availability_snapshots WHERE run_id = $1", runID,
	).Scan(&count)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestRunSummaries_RoundTrip(t *testing.T) {
	store, ctx, _ := setupTestDB(t)

	startedAt := time.Now().Add(-time.Minute).UTC().Truncate(time.Second)
	summary := &models.RunSummary{
		ID:              uuid.NewString(),
		WorkflowName:    models.WorkflowName,
		Status:          models.RunStatusPartialFailure,
		StartedAt:       startedAt,
		CompletedAt:     startedAt.Add(30 * time.Second),
		DurationSeconds: 30,
		Metadata: models.RunMetadata{
			Enabled:  12,
			Disabled: 3,
			Errors:   1,
			ErrorDetails: []models.ItemError{
				{SKU: "ERR-001", Action: models.ActionEnable, Message: "api returned 502"},
			},
		},
	}

	require.NoError(t, store.InsertRunSummary(ctx, summary))

	got, err := store.RunSummaryByID(ctx, summary.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RunStatusPartialFailure, got.Status)
	assert.Equal(t, 12, got.Metadata.Enabled)
	require.Len(t, got.Metadata.ErrorDetails, 1)
	assert.Equal(t, "ERR-001", got.Metadata.ErrorDetails[0].SKU)

	list, err := store.RunSummaries(ctx, 10)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, summary.ID, list[0].ID)
}

func TestRunSummaryByID_NotFound(t *testing.T) {
	store, ctx, _ := setupTestDB(t)

	_, err := store.RunSummaryByID(ctx, uuid.NewString())
	require.Error(t, err)
	assert.True(t, persistence.IsRunSummaryNotFound(err))
}

func TestHealthCheck(t *testing.T) {
	store, ctx, _ := setupTestDB(t)

	require.NoError(t, store.HealthCheck(ctx))
}
