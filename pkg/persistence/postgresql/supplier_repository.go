package postgresql

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"
)

// SupplierRepository answers freshness queries against the supplier feed store.
type SupplierRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewSupplierRepository creates a new supplier repository.
func NewSupplierRepository(db *sql.DB, logger *slog.Logger) *SupplierRepository {
	return &SupplierRepository{db: db, logger: logger}
}

// LastSyncBySupplier returns the most recent last_synced_at per supplier.
func (r *SupplierRepository) LastSyncBySupplier(ctx context.Context) (map[string]time.Time, error) {
	query := `
		SELECT
			supplier_name
		  , MAX(last_synced_at)
		FROM supplier_products
		GROUP BY supplier_name
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query supplier sync times: %w", err)
	}

	defer func() {
		err := rows.Close()
		if err != nil {
			r.logger.ErrorContext(ctx, "failed to close rows", "error", err)
		}
	}()

	lastSync := make(map[string]time.Time)

	for rows.Next() {
		var (
			supplier string
			syncedAt time.Time
		)

		err := rows.Scan(&supplier, &syncedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan supplier sync time: %w", err)
		}

		lastSync[supplier] = syncedAt
	}

	err = rows.Err()
	if err != nil {
		return nil, fmt.Errorf("error iterating supplier sync times: %w", err)
	}

	return lastSync, nil
}
