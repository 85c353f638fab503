// Package persistence provides the data storage abstraction for the
// reconciliation engine: the supplier feed store, the storefront catalog
// store, and the snapshot and run-log sinks.
package persistence

import (
	"context"
	"time"

	"github.com/storeops/stocksync/pkg/models"
)

// StorefrontStateUpdate is a partial write-back to the catalog store. Nil
// fields are left untouched.
type StorefrontStateUpdate struct {
	Availability   *models.Availability
	InventoryLevel *int
	UpdatedAt      time.Time
}

type Persistence interface {
	// ListActiveLinks fetches every active supplier link joined with its
	// supplier and storefront state, accumulating fixed-size pages until a
	// short page terminates the scan. Any page error aborts the whole read;
	// partial link sets must never be reconciled.
	ListActiveLinks(ctx context.Context, pageSize int) ([]*models.LinkedProduct, error)

	// SupplierLastSync returns the most recent feed sync timestamp per
	// supplier, for the freshness gate.
	SupplierLastSync(ctx context.Context) (map[string]time.Time, error)

	// UpdateStorefrontState mirrors a confirmed external mutation into the
	// catalog store, keyed by the storefront product row id.
	UpdateStorefrontState(ctx context.Context, storefrontProductID string, update StorefrontStateUpdate) error

	// InsertSnapshots persists one batch of pre-mutation snapshots.
	InsertSnapshots(ctx context.Context, snapshots []*models.RunSnapshot) error

	// InsertRunSummary appends one audit row for a finished or aborted run.
	InsertRunSummary(ctx context.Context, summary *models.RunSummary) error

	// RunSummaries lists the most recent run summaries, newest first.
	RunSummaries(ctx context.Context, limit int) ([]*models.RunSummary, error)

	// RunSummaryByID fetches one run summary.
	RunSummaryByID(ctx context.Context, id string) (*models.RunSummary, error)

	HealthCheck(ctx context.Context) error

	Close(ctx context.Context) error
}
