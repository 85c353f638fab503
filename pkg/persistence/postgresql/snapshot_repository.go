package postgresql

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"

	"github.com/storeops/stocksync/pkg/models"
)

// SnapshotRepository appends pre-mutation snapshots for rollback capability.
type SnapshotRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewSnapshotRepository creates a new snapshot repository.
func NewSnapshotRepository(db *sql.DB, logger *slog.Logger) *SnapshotRepository {
	return &SnapshotRepository{db: db, logger: logger}
}

const snapshotColumns = 10

// InsertBatch inserts one batch of snapshots in a single statement.
func (r *SnapshotRepository) InsertBatch(ctx context.Context, snapshots []*models.RunSnapshot) error {
	if len(snapshots) == 0 {
		return nil
	}

	placeholders := make([]string, 0, len(snapshots))
	args := make([]any, 0, len(snapshots)*snapshotColumns)

	for i, snapshot := range snapshots {
		base := i * snapshotColumns
		group := make([]string, snapshotColumns)

		for j := range group {
			group[j] = fmt.Sprintf("$%d", base+j+1)
		}

		placeholders = append(placeholders, "("+strings.Join(group, ", ")+")")
		args = append(args,
			snapshot.RunID,
			snapshot.LinkID,
			snapshot.ProductID,
			snapshot.SKU,
			string(snapshot.PreviousAvailability),
			snapshot.PreviousInventory,
			string(snapshot.IntendedAction),
			string(snapshot.IntendedAvailability),
			snapshot.IntendedInventory,
			snapshot.SupplierName,
		)
	}

	query := `
		INSERT INTO availability_snapshots (
			run_id, link_id, product_id, sku,
			previous_availability, previous_inventory,
			intended_action, intended_availability, intended_inventory,
			supplier_name
		) VALUES ` + strings.Join(placeholders, ", ")

	_, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to insert snapshot batch: %w", err)
	}

	return nil
}
