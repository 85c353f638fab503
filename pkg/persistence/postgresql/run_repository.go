package postgresql

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/storeops/stocksync/pkg/models"
	"github.com/storeops/stocksync/pkg/persistence"
)

// RunRepository stores and reads run summary audit rows.
type RunRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewRunRepository creates a new run repository.
func NewRunRepository(db *sql.DB, logger *slog.Logger) *RunRepository {
	return &RunRepository{db: db, logger: logger}
}

// Insert appends one run summary. Summaries are append-only.
func (r *RunRepository) Insert(ctx context.Context, summary *models.RunSummary) error {
	metadata, err := json.Marshal(summary.Metadata)
	if err != nil {
		return fmt.Errorf("failed to marshal run metadata: %w", err)
	}

	query := `
		INSERT INTO run_summaries (
			id, workflow_name, status, started_at, completed_at, duration_seconds, metadata
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err = r.db.ExecContext(ctx, query,
		summary.ID,
		summary.WorkflowName,
		string(summary.Status),
		summary.StartedAt,
		summary.CompletedAt,
		summary.DurationSeconds,
		metadata,
	)
	if err != nil {
		return persistence.NewStoreError("InsertRunSummary", summary.ID, err)
	}

	return nil
}

// List returns the most recent run summaries, newest first.
func (r *RunRepository) List(ctx context.Context, limit int) ([]*models.RunSummary, error) {
	query := `
		SELECT
			id
		  , workflow_name
		  , status
		  , started_at
		  , completed_at
		  , duration_seconds
		  , metadata
		FROM run_summaries
		ORDER BY started_at DESC
		LIMIT $1
	`

	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query run summaries: %w", err)
	}

	defer func() {
		err := rows.Close()
		if err != nil {
			r.logger.ErrorContext(ctx, "failed to close rows", "error", err)
		}
	}()

	summaries := make([]*models.RunSummary, 0)

	for rows.Next() {
		summary, err := scanRunSummary(rows)
		if err != nil {
			return nil, err
		}

		summaries = append(summaries, summary)
	}

	err = rows.Err()
	if err != nil {
		return nil, fmt.Errorf("error iterating run summaries: %w", err)
	}

	return summaries, nil
}

// GetByID fetches one run summary.
func (r *RunRepository) GetByID(ctx context.Context, id string) (*models.RunSummary, error) {
	query := `
		SELECT
			id
		  , workflow_name
		  , status
		  , started_at
		  , completed_at
		  , duration_seconds
		  , metadata
		FROM run_summaries
		WHERE id = $1
	`

	summary, err := scanRunSummary(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, persistence.NewStoreError("RunSummaryByID", id, persistence.ErrRunSummaryNotFound)
		}

		return nil, err
	}

	return summary, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRunSummary(row rowScanner) (*models.RunSummary, error) {
	var (
		summary  models.RunSummary
		status   string
		metadata []byte
	)

	err := row.Scan(
		&summary.ID,
		&summary.WorkflowName,
		&status,
		&summary.StartedAt,
		&summary.CompletedAt,
		&summary.DurationSeconds,
		&metadata,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}

		return nil, fmt.Errorf("failed to scan run summary: %w", err)
	}

	summary.Status = models.RunStatus(status)

	if len(metadata) > 0 {
		err = json.Unmarshal(metadata, &summary.Metadata)
		if err != nil {
			return nil, fmt.Errorf("failed to unmarshal run metadata: %w", err)
		}
	}

	return &summary, nil
}
