package reconcile

import (
	"context"
	"log/slog"

	"github.com/storeops/stocksync/pkg/persistence"
)

// reconcileCatalog mirrors confirmed platform mutations back into the local
// catalog store so the next run plans from accurate state. Only successful
// mutations are written back; failed items keep their prior local state and
// are retried naturally on the next run.
func (e *Engine) reconcileCatalog(ctx context.Context, logger *slog.Logger, succeeded []executedItem) {
	if len(succeeded) == 0 {
		return
	}

	logger.InfoContext(ctx, "Mirroring confirmed changes into catalog store", "items", len(succeeded))

	for _, executed := range succeeded {
		update := persistence.StorefrontStateUpdate{
			Availability:   executed.Update.Availability,
			InventoryLevel: executed.Update.InventoryLevel,
			UpdatedAt:      e.now(),
		}

		if err := e.store.UpdateStorefrontState(ctx, executed.Item.StorefrontProductID, update); err != nil {
			logger.ErrorContext(ctx, "Catalog write-back failed",
				"sku", executed.Item.SKU, "storefront_product_id", executed.Item.StorefrontProductID, "error", err)
		}
	}
}
