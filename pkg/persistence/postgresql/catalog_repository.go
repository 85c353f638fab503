package postgresql

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/storeops/stocksync/pkg/persistence"
)

// CatalogRepository writes confirmed availability changes back into the
// storefront catalog store.
type CatalogRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewCatalogRepository creates a new catalog repository.
func NewCatalogRepository(db *sql.DB, logger *slog.Logger) *CatalogRepository {
	return &CatalogRepository{db: db, logger: logger}
}

// UpdateState applies a partial update to one catalog row. Nil fields in the
// update are left untouched.
func (r *CatalogRepository) UpdateState(ctx context.Context, storefrontProductID string, update persistence.StorefrontStateUpdate) error {
	assignments := make([]string, 0, 3)
	args := make([]any, 0, 4)

	if update.Availability != nil {
		args = append(args, string(*update.Availability))
		assignments = append(assignments, "availability = $"+strconv.Itoa(len(args)))
	}

	if update.InventoryLevel != nil {
		args = append(args, *update.InventoryLevel)
		assignments = append(assignments, "inventory_level = $"+strconv.Itoa(len(args)))
	}

	args = append(args, update.UpdatedAt)
	assignments = append(assignments, "updated_at = $"+strconv.Itoa(len(args)))

	args = append(args, storefrontProductID)
	query := fmt.Sprintf(
		"UPDATE storefront_products SET %s WHERE id = $%d",
		strings.Join(assignments, ", "),
		len(args),
	)

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return persistence.NewStoreError("UpdateStorefrontState", storefrontProductID, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return persistence.NewStoreError("UpdateStorefrontState", storefrontProductID, err)
	}

	if affected == 0 {
		return persistence.NewStoreError("UpdateStorefrontState", storefrontProductID, persistence.ErrStorefrontProductNotFound)
	}

	return nil
}
