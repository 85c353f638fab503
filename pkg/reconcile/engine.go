package reconcile

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/storeops/stocksync/pkg/commerce"
	"github.com/storeops/stocksync/pkg/config"
	"github.com/storeops/stocksync/pkg/eventbus"
	"github.com/storeops/stocksync/pkg/events"
	"github.com/storeops/stocksync/pkg/log"
	"github.com/storeops/stocksync/pkg/models"
	"github.com/storeops/stocksync/pkg/otelhelper"
	"github.com/storeops/stocksync/pkg/persistence"
)

// RunOptions control one reconciliation run. The zero value is a dry run.
type RunOptions struct {
	// DryRun computes and reports the plan with zero side effects: no
	// mutations, no snapshots, no run summary row.
	DryRun bool
	// Force lets a live run proceed past failed safety gates, with loud
	// warnings. It never skips the gate evaluation itself.
	Force bool
}

// RunResult is the outcome of one run as seen by callers.
type RunResult struct {
	RunID       string
	Summary     *models.RunSummary
	Aborted     bool
	AbortReason models.AbortReason
}

// Engine executes reconciliation runs: read, plan, gate, snapshot, apply,
// report. One Engine is safe to reuse across runs but runs must not overlap;
// callers serialize via the scheduler's run lock.
type Engine struct {
	store    persistence.Persistence
	commerce commerce.ProductUpdater
	bus      eventbus.EventBus
	cfg      config.Config
	logger   *slog.Logger
	tracer   trace.Tracer

	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration)
}

// NewEngine creates an engine over the given stores. The event bus and tracer
// are optional; see WithEventBus and WithTracer.
func NewEngine(logger *slog.Logger, cfg config.Config, store persistence.Persistence, updater commerce.ProductUpdater) *Engine {
	if logger == nil {
		logger = log.WithModule("reconcile")
	}

	return &Engine{
		store:    store,
		commerce: updater,
		cfg:      cfg,
		logger:   logger,
		tracer:   noop.NewTracerProvider().Tracer("reconcile"),
		now:      time.Now,
		sleep:    sleepContext,
	}
}

// WithEventBus attaches a bus for run lifecycle notifications.
func (e *Engine) WithEventBus(bus eventbus.EventBus) *Engine {
	e.bus = bus

	return e
}

// WithTracer replaces the default no-op tracer.
func (e *Engine) WithTracer(tracer trace.Tracer) *Engine {
	e.tracer = tracer

	return e
}

// Run executes one reconciliation run end to end. A non-nil error means the
// run died fatally before mutating anything; gate aborts return a normal
// result with Aborted set.
func (e *Engine) Run(ctx context.Context, opts RunOptions) (*RunResult, error) {
	runID := newRunID()
	startedAt := e.now()

	logger := e.logger.With("run_id", runID, "dry_run", opts.DryRun, "force", opts.Force)

	ctx, span := otelhelper.StartSpan(ctx, e.tracer, "reconciliation.run",
		attribute.String(otelhelper.RunIDKey, runID),
		attribute.Bool(otelhelper.DryRunKey, opts.DryRun),
		attribute.Bool(otelhelper.ForceKey, opts.Force),
	)
	defer span.End()

	logger.InfoContext(ctx, "Starting reconciliation run")
	e.publish(ctx, runID, events.RunStarted{
		BaseEvent: e.baseEvent(runID, events.RunStartedEvent),
		DryRun:    opts.DryRun,
		Force:     opts.Force,
	})

	links, err := e.store.ListActiveLinks(ctx, e.cfg.PageSize)
	if err != nil {
		err = fmt.Errorf("failed to read active supplier links: %w", err)
		otelhelper.SetError(span, err)
		logger.ErrorContext(ctx, "Run failed", "error", err)
		e.publish(ctx, runID, events.RunFailed{
			BaseEvent: e.baseEvent(runID, events.RunFailedEvent),
			Error:     err.Error(),
		})

		return nil, err
	}

	logger.InfoContext(ctx, "Loaded active supplier links", "links", len(links))

	plan := BuildPlan(links, e.cfg)
	e.logPlan(ctx, logger, plan)

	if result, aborted := e.runGates(ctx, logger, runID, startedAt, plan, opts); aborted {
		span.AddEvent("run.blocked")

		return result, nil
	}

	if plan.ChangeCount() == 0 {
		logger.InfoContext(ctx, "All linked products already in sync")

		return e.finish(ctx, logger, runID, startedAt, plan, &execution{}, SnapshotResult{OK: true}, opts)
	}

	if opts.DryRun {
		logger.InfoContext(ctx, "Dry run complete - no changes were made",
			"would_enable", len(plan.Enable),
			"would_disable", len(plan.Disable),
			"would_update", len(plan.Update))

		return e.finish(ctx, logger, runID, startedAt, plan, nil, SnapshotResult{}, opts)
	}

	snapshots := e.writeSnapshots(ctx, logger, runID, plan)

	exec := e.applyPlan(ctx, logger, plan)
	e.reconcileCatalog(ctx, logger, exec.Succeeded)

	return e.finish(ctx, logger, runID, startedAt, plan, exec, snapshots, opts)
}

// runGates evaluates the freshness and anomaly gates in order. It returns an
// aborted result when a gate blocks a live, unforced run.
func (e *Engine) runGates(ctx context.Context, logger *slog.Logger, runID string, startedAt time.Time, plan *Plan, opts RunOptions) (*RunResult, bool) {
	freshness := e.checkFreshness(ctx, logger)

	if freshness.Blocked() {
		for _, stale := range freshness.Stale {
			logger.WarnContext(ctx, "Supplier feed is stale",
				"supplier", stale.Supplier,
				"last_synced_at", stale.LastSyncedAt,
				"age_hours", fmt.Sprintf("%.1f", stale.AgeHours))
		}

		switch {
		case opts.DryRun:
			logger.InfoContext(ctx, "Stale feeds reported only; dry run continues")
		case opts.Force:
			logger.WarnContext(ctx, "Force enabled: proceeding despite stale supplier feeds")
		default:
			return e.abort(ctx, logger, runID, startedAt, plan, opts, models.AbortStaleData, freshness.Stale, nil), true
		}
	}

	anomalies := DetectAnomalies(plan, e.cfg)
	for _, anomaly := range anomalies {
		logger.WarnContext(ctx, "Anomaly detected",
			"type", anomaly.Type,
			"severity", anomaly.Severity,
			"message", anomaly.Message)
	}

	if HasCritical(anomalies) {
		switch {
		case opts.DryRun:
			logger.InfoContext(ctx, "Critical anomalies reported only; dry run continues")
		case opts.Force:
			logger.WarnContext(ctx, "Force enabled: proceeding despite critical anomalies")
		default:
			return e.abort(ctx, logger, runID, startedAt, plan, opts, models.AbortAnomalyDetected, freshness.Stale, anomalies), true
		}
	}

	return nil, false
}

// checkFreshness loads per-supplier sync times. A failed freshness query is
// logged and treated as an empty report rather than killing the run; the
// anomaly gate still stands between a broken feed and the catalog.
func (e *Engine) checkFreshness(ctx context.Context, logger *slog.Logger) FreshnessReport {
	lastSync, err := e.store.SupplierLastSync(ctx)
	if err != nil {
		logger.WarnContext(ctx, "Failed to check supplier feed freshness", "error", err)

		return FreshnessReport{}
	}

	return EvaluateFreshness(lastSync, e.now(), e.cfg.StaleThreshold())
}

// abort writes the aborted audit row, publishes the blocked event, and builds
// the caller-facing result.
func (e *Engine) abort(ctx context.Context, logger *slog.Logger, runID string, startedAt time.Time, plan *Plan, opts RunOptions, reason models.AbortReason, stale []models.SupplierFreshness, anomalies []models.Anomaly) *RunResult {
	logger.ErrorContext(ctx, "Run blocked by safety gate", "reason", reason)

	completedAt := e.now()
	summary := &models.RunSummary{
		ID:              runID,
		WorkflowName:    models.WorkflowName,
		Status:          models.RunStatusAborted,
		StartedAt:       startedAt,
		CompletedAt:     completedAt,
		DurationSeconds: completedAt.Sub(startedAt).Seconds(),
		Metadata: models.RunMetadata{
			Skipped:        len(plan.Skipped),
			NoChange:       plan.NoChange,
			MarginWarnings: len(plan.MarginWarnings),
			AbortReason:    reason,
			StaleSuppliers: stale,
			Anomalies:      anomalies,
			Forced:         opts.Force,
		},
	}

	if err := e.store.InsertRunSummary(ctx, summary); err != nil {
		logger.WarnContext(ctx, "Failed to write run summary", "error", err)
	}

	e.publish(ctx, runID, events.RunBlocked{
		BaseEvent:      e.baseEvent(runID, events.RunBlockedEvent),
		Reason:         reason,
		StaleSuppliers: stale,
		Anomalies:      anomalies,
	})

	return &RunResult{
		RunID:       runID,
		Summary:     summary,
		Aborted:     true,
		AbortReason: reason,
	}
}

// finish assembles the run summary, persists it for live runs, and publishes
// the completion event. A nil execution means a dry run: the summary reports
// the plan's would-be counts and is returned without being written anywhere.
func (e *Engine) finish(ctx context.Context, logger *slog.Logger, runID string, startedAt time.Time, plan *Plan, exec *execution, snapshots SnapshotResult, opts RunOptions) (*RunResult, error) {
	completedAt := e.now()

	metadata := models.RunMetadata{
		Skipped:        len(plan.Skipped),
		NoChange:       plan.NoChange,
		MarginWarnings: len(plan.MarginWarnings),
		SnapshotCount:  snapshots.Count,
		DryRun:         opts.DryRun,
		Forced:         opts.Force,
	}

	status := models.RunStatusSuccess

	if exec == nil {
		metadata.Enabled = len(plan.Enable)
		metadata.Disabled = len(plan.Disable)
		metadata.Updated = len(plan.Update)
	} else {
		metadata.Enabled = exec.Enabled
		metadata.Disabled = exec.Disabled
		metadata.Updated = exec.Updated
		metadata.Errors = len(exec.Errors)
		metadata.ErrorDetails = firstN(exec.Errors, e.cfg.ErrorDetailLimit)

		if len(exec.Errors) > 0 {
			status = models.RunStatusPartialFailure
		}
	}

	summary := &models.RunSummary{
		ID:              runID,
		WorkflowName:    models.WorkflowName,
		Status:          status,
		StartedAt:       startedAt,
		CompletedAt:     completedAt,
		DurationSeconds: completedAt.Sub(startedAt).Seconds(),
		Metadata:        metadata,
	}

	if !opts.DryRun {
		if err := e.store.InsertRunSummary(ctx, summary); err != nil {
			logger.WarnContext(ctx, "Failed to write run summary", "error", err)
		}
	}

	e.publish(ctx, runID, events.RunCompleted{
		BaseEvent: e.baseEvent(runID, events.RunCompletedEvent),
		Status:    status,
		Enabled:   metadata.Enabled,
		Disabled:  metadata.Disabled,
		Updated:   metadata.Updated,
		Skipped:   metadata.Skipped,
		Errors:    metadata.Errors,
		DryRun:    opts.DryRun,
	})

	logger.InfoContext(ctx, "Reconciliation run finished",
		"status", status,
		"enabled", metadata.Enabled,
		"disabled", metadata.Disabled,
		"updated", metadata.Updated,
		"skipped", metadata.Skipped,
		"no_change", metadata.NoChange,
		"errors", metadata.Errors,
		"duration_seconds", fmt.Sprintf("%.1f", summary.DurationSeconds))

	return &RunResult{RunID: runID, Summary: summary}, nil
}

// logPlan reports the plan breakdown and a short preview of pending changes.
func (e *Engine) logPlan(ctx context.Context, logger *slog.Logger, plan *Plan) {
	logger.InfoContext(ctx, "Plan computed",
		"total_links", plan.TotalLinks,
		"enable", len(plan.Enable),
		"disable", len(plan.Disable),
		"update", len(plan.Update),
		"skipped", len(plan.Skipped),
		"no_change", plan.NoChange,
		"margin_warnings", len(plan.MarginWarnings))

	for _, item := range firstN(plan.Enable, e.cfg.PreviewLimit) {
		logger.InfoContext(ctx, "Pending enable", "sku", item.SKU, "reason", item.Decision.Reason)
	}

	for _, item := range firstN(plan.Disable, e.cfg.PreviewLimit) {
		logger.InfoContext(ctx, "Pending disable", "sku", item.SKU, "reason", item.Decision.Reason)
	}

	for _, warning := range firstN(plan.MarginWarnings, e.cfg.PreviewLimit) {
		logger.WarnContext(ctx, "Margin warning", "sku", warning.SKU, "message", warning.Message)
	}
}

func (e *Engine) publish(ctx context.Context, runID string, event eventbus.Event) {
	if e.bus == nil {
		return
	}

	if err := e.bus.Publish(ctx, runID, event); err != nil {
		e.logger.WarnContext(ctx, "Failed to publish run event",
			"event_type", event.GetType(), "error", err)
	}
}

func (e *Engine) baseEvent(runID string, eventType events.EventType) events.BaseEvent {
	return events.BaseEvent{
		ID:        uuid.NewString(),
		Type:      eventType,
		Timestamp: e.now(),
		RunID:     runID,
	}
}

func newRunID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}

	return id.String()
}

func firstN[T any](items []T, n int) []T {
	if len(items) <= n {
		return items
	}

	return items[:n]
}

func sleepContext(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}
