package reconcile

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"

	"github.com/storeops/stocksync/pkg/commerce"
	"github.com/storeops/stocksync/pkg/models"
	"github.com/storeops/stocksync/pkg/otelhelper"
)

// executedItem pairs a plan item with the update that was confirmed by the
// commerce platform, for the catalog write-back.
type executedItem struct {
	Item   PlanItem
	Update commerce.ProductUpdate
}

// execution accumulates the outcome of applying one plan.
type execution struct {
	Enabled  int
	Disabled int
	Updated  int

	Errors    []models.ItemError
	Succeeded []executedItem
}

// applyPlan issues the plan's mutations sequentially: enables first, then
// disables, then inventory corrections. Individual failures are recorded and
// never stop the batch.
func (e *Engine) applyPlan(ctx context.Context, logger *slog.Logger, plan *Plan) *execution {
	exec := &execution{}

	exec.Enabled = e.applyBatch(ctx, logger, "enable", plan.Enable, exec)
	exec.Disabled = e.applyBatch(ctx, logger, "disable", plan.Disable, exec)
	exec.Updated = e.applyBatch(ctx, logger, "update", plan.Update, exec)

	return exec
}

// applyBatch sends one action batch with a fixed pause between requests and
// returns the number of confirmed mutations. A cancelled context stops the
// batch early; already-issued mutations stay counted.
func (e *Engine) applyBatch(ctx context.Context, logger *slog.Logger, batch string, items []PlanItem, exec *execution) int {
	if len(items) == 0 {
		return 0
	}

	logger.InfoContext(ctx, "Applying batch", "batch", batch, "items", len(items))

	ctx, span := otelhelper.StartSpan(ctx, e.tracer, "reconciliation.batch",
		attribute.String(otelhelper.PhaseKey, batch),
		attribute.Int("stocksync.batch.size", len(items)),
	)
	defer span.End()

	succeeded := 0

	for i, item := range items {
		if ctx.Err() != nil {
			logger.WarnContext(ctx, "Context cancelled, stopping batch",
				"batch", batch, "done", i, "total", len(items))

			break
		}

		update := buildUpdate(item.Decision)

		if err := e.commerce.UpdateProduct(ctx, item.PlatformProductID, update); err != nil {
			exec.Errors = append(exec.Errors, models.ItemError{
				SKU:     item.SKU,
				Action:  item.Decision.Action,
				Message: err.Error(),
			})
			logger.WarnContext(ctx, "Product update failed",
				"batch", batch, "sku", item.SKU, "product_id", item.PlatformProductID, "error", err)
		} else {
			succeeded++
			exec.Succeeded = append(exec.Succeeded, executedItem{Item: item, Update: update})
		}

		if (i+1)%e.cfg.ProgressInterval == 0 {
			logger.InfoContext(ctx, "Batch progress",
				"batch", batch, "done", i+1, "total", len(items), "errors", len(exec.Errors))
		}

		if i < len(items)-1 {
			e.sleep(ctx, e.cfg.RequestDelay())
		}
	}

	return succeeded
}

// buildUpdate translates a decision into the partial-field platform update,
// sending only the fields that actually differ.
func buildUpdate(decision models.Decision) commerce.ProductUpdate {
	var update commerce.ProductUpdate

	if decision.ChangeAvailability {
		availability := decision.TargetAvailability
		update.Availability = &availability
	}

	if decision.ChangeInventory {
		inventory := decision.TargetInventory
		update.InventoryLevel = &inventory
	}

	return update
}
