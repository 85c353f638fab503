package reconcile

import (
	"context"
	"log/slog"

	"github.com/storeops/stocksync/pkg/models"
)

// SnapshotResult reports how the pre-mutation snapshot write went. Snapshot
// failures degrade the run's rollback safety net but never block it.
type SnapshotResult struct {
	OK      bool
	Count   int
	Warning string
}

// writeSnapshots persists the pre-mutation state of every item the plan will
// touch, in fixed-size batches. A failed batch is recorded and the remaining
// batches are still attempted.
func (e *Engine) writeSnapshots(ctx context.Context, logger *slog.Logger, runID string, plan *Plan) SnapshotResult {
	mutations := plan.Mutations()
	if len(mutations) == 0 {
		return SnapshotResult{OK: true}
	}

	createdAt := e.now()
	snapshots := make([]*models.RunSnapshot, 0, len(mutations))

	for _, item := range mutations {
		snapshots = append(snapshots, &models.RunSnapshot{
			RunID:                runID,
			LinkID:               item.LinkID,
			ProductID:            item.PlatformProductID,
			SKU:                  item.SKU,
			PreviousAvailability: item.PreviousAvailability,
			PreviousInventory:    item.PreviousInventory,
			IntendedAction:       item.Decision.Action,
			IntendedAvailability: item.Decision.TargetAvailability,
			IntendedInventory:    item.Decision.TargetInventory,
			SupplierName:         item.Decision.SupplierName,
			CreatedAt:            createdAt,
		})
	}

	result := SnapshotResult{OK: true}

	for start := 0; start < len(snapshots); start += e.cfg.SnapshotBatchSize {
		end := start + e.cfg.SnapshotBatchSize
		if end > len(snapshots) {
			end = len(snapshots)
		}

		if err := e.store.InsertSnapshots(ctx, snapshots[start:end]); err != nil {
			logger.WarnContext(ctx, "Snapshot batch write failed; run continues without it",
				"from", start, "to", end, "error", err)

			result.OK = false
			if result.Warning == "" {
				result.Warning = err.Error()
			}

			continue
		}

		result.Count += end - start
	}

	if result.OK {
		logger.InfoContext(ctx, "Pre-mutation snapshots written", "count", result.Count)
	}

	return result
}
