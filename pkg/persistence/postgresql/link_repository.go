package postgresql

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/storeops/stocksync/pkg/models"
)

// LinkRepository reads active supplier links joined with their supplier and
// storefront state.
type LinkRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewLinkRepository creates a new link repository.
func NewLinkRepository(db *sql.DB, logger *slog.Logger) *LinkRepository {
	return &LinkRepository{db: db, logger: logger}
}

// ListActive fetches every active link in fixed-size pages, accumulating
// until a page returns fewer rows than the page size. Any page error is
// propagated immediately; callers must never reconcile a partial link set.
func (r *LinkRepository) ListActive(ctx context.Context, pageSize int) ([]*models.LinkedProduct, error) {
	links := make([]*models.LinkedProduct, 0)

	for page := 0; ; page++ {
		rows, err := r.listPage(ctx, pageSize, page*pageSize)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch links page %d: %w", page, err)
		}

		links = append(links, rows...)

		if len(rows) < pageSize {
			return links, nil
		}
	}
}

func (r *LinkRepository) listPage(ctx context.Context, limit, offset int) ([]*models.LinkedProduct, error) {
	query := `
		SELECT
			l.id
		  , l.storefront_product_id
		  , l.supplier_product_id
		  , l.supplier_name
		  , l.active
		  , sp.id
		  , sp.supplier_sku
		  , COALESCE(sp.product_name, '')
		  , sp.stock_level
		  , COALESCE(sp.availability, '')
		  , sp.last_synced_at
		  , ep.id
		  , ep.product_id
		  , ep.sku
		  , COALESCE(ep.name, '')
		  , ep.availability
		  , ep.inventory_level
		  , ep.is_visible
		  , ep.price
		  , ep.sale_price
		  , ep.is_clearance
		FROM supplier_links l
		INNER JOIN supplier_products sp ON sp.id = l.supplier_product_id
		INNER JOIN storefront_products ep ON ep.id = l.storefront_product_id
		WHERE l.active = true
		ORDER BY l.id
		LIMIT $1 OFFSET $2
	`

	rows, err := r.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query supplier links: %w", err)
	}

	defer func() {
		err := rows.Close()
		if err != nil {
			r.logger.ErrorContext(ctx, "failed to close rows", "error", err)
		}
	}()

	links := make([]*models.LinkedProduct, 0, limit)

	for rows.Next() {
		link := &models.LinkedProduct{}

		err := rows.Scan(
			&link.Link.ID,
			&link.Link.StorefrontProductID,
			&link.Link.SupplierProductID,
			&link.Link.SupplierName,
			&link.Link.Active,
			&link.Supplier.ID,
			&link.Supplier.SupplierSKU,
			&link.Supplier.ProductName,
			&link.Supplier.StockLevel,
			&link.Supplier.Availability,
			&link.Supplier.LastSyncedAt,
			&link.Storefront.ID,
			&link.Storefront.PlatformProductID,
			&link.Storefront.SKU,
			&link.Storefront.Name,
			&link.Storefront.Availability,
			&link.Storefront.InventoryLevel,
			&link.Storefront.Visible,
			&link.Storefront.Price,
			&link.Storefront.SalePrice,
			&link.Storefront.Clearance,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan supplier link: %w", err)
		}

		links = append(links, link)
	}

	err = rows.Err()
	if err != nil {
		return nil, fmt.Errorf("error iterating supplier links: %w", err)
	}

	return links, nil
}
