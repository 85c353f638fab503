// Package postgresql provides the PostgreSQL persistence implementation for
// the supplier feed store, storefront catalog store, and audit sinks.
package postgresql

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/lib/pq"

	"github.com/storeops/stocksync/pkg/models"
	"github.com/storeops/stocksync/pkg/persistence"
	"github.com/storeops/stocksync/pkg/persistence/sqlbase"
)

// Persistence implements persistence.Persistence on top of PostgreSQL.
type Persistence struct {
	db           *sql.DB
	logger       *slog.Logger
	linkRepo     *LinkRepository
	supplierRepo *SupplierRepository
	catalogRepo  *CatalogRepository
	snapshotRepo *SnapshotRepository
	runRepo      *RunRepository
}

// NewPersistence connects to PostgreSQL and runs pending migrations.
func NewPersistence(ctx context.Context, logger *slog.Logger, databaseURL string) (*Persistence, error) {
	database, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to PostgreSQL database: %w", err)
	}

	err = database.PingContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	migrationManager := sqlbase.NewMigrationManager(logger, database, migrations())

	err = migrationManager.RunMigrations(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &Persistence{
		db:           database,
		logger:       logger,
		linkRepo:     NewLinkRepository(database, logger),
		supplierRepo: NewSupplierRepository(database, logger),
		catalogRepo:  NewCatalogRepository(database, logger),
		snapshotRepo: NewSnapshotRepository(database, logger),
		runRepo:      NewRunRepository(database, logger),
	}, nil
}

// ListActiveLinks accumulates paged joins of links, supplier state, and
// storefront state.
func (p *Persistence) ListActiveLinks(ctx context.Context, pageSize int) ([]*models.LinkedProduct, error) {
	return p.linkRepo.ListActive(ctx, pageSize)
}

// SupplierLastSync returns the most recent feed sync timestamp per supplier.
func (p *Persistence) SupplierLastSync(ctx context.Context) (map[string]time.Time, error) {
	return p.supplierRepo.LastSyncBySupplier(ctx)
}

// UpdateStorefrontState mirrors a confirmed external mutation locally.
func (p *Persistence) UpdateStorefrontState(ctx context.Context, storefrontProductID string, update persistence.StorefrontStateUpdate) error {
	return p.catalogRepo.UpdateState(ctx, storefrontProductID, update)
}

// InsertSnapshots persists one batch of pre-mutation snapshots.
func (p *Persistence) InsertSnapshots(ctx context.Context, snapshots []*models.RunSnapshot) error {
	return p.snapshotRepo.InsertBatch(ctx, snapshots)
}

// InsertRunSummary appends one audit row.
func (p *Persistence) InsertRunSummary(ctx context.Context, summary *models.RunSummary) error {
	return p.runRepo.Insert(ctx, summary)
}

// RunSummaries lists the most recent run summaries, newest first.
func (p *Persistence) RunSummaries(ctx context.Context, limit int) ([]*models.RunSummary, error) {
	return p.runRepo.List(ctx, limit)
}

// RunSummaryByID fetches one run summary.
func (p *Persistence) RunSummaryByID(ctx context.Context, id string) (*models.RunSummary, error) {
	return p.runRepo.GetByID(ctx, id)
}

// HealthCheck verifies the database connection is healthy.
func (p *Persistence) HealthCheck(ctx context.Context) error {
	err := p.db.PingContext(ctx)
	if err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}

	return nil
}

// Close closes the database connection.
func (p *Persistence) Close(ctx context.Context) error {
	if p.db != nil {
		err := p.db.Close()
		if err != nil {
			return fmt.Errorf("failed to close database connection: %w", err)
		}
	}

	return nil
}
