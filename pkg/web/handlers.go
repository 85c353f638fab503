// Package web provides the HTTP handlers for the reconciliation API: run
// history queries, on-demand run triggering, and the health endpoint.
package web

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"

	"github.com/storeops/stocksync/pkg/persistence"
	"github.com/storeops/stocksync/pkg/reconcile"
)

const defaultListLimit = 50

// Runner starts one reconciliation run. The engine satisfies it.
type Runner interface {
	Run(ctx context.Context, opts reconcile.RunOptions) (*reconcile.RunResult, error)
}

// TriggerRunRequest is the POST /runs body.
type TriggerRunRequest struct {
	DryRun bool `json:"dry_run"`
	Force  bool `json:"force"`
}

type APIHandlers struct {
	store     persistence.Persistence
	runner    Runner
	validator *validator.Validate
	logger    *slog.Logger

	// running guards against overlapping API-triggered runs in this process.
	// Cross-process exclusion is the scheduler lock's job.
	running atomic.Bool
}

func NewAPIHandlers(logger *slog.Logger, store persistence.Persistence, runner Runner, validator *validator.Validate) *APIHandlers {
	return &APIHandlers{
		store:     store,
		runner:    runner,
		validator: validator,
		logger:    logger,
	}
}

// GetRuns lists recent run summaries, newest first.
func (h *APIHandlers) GetRuns(c fiber.Ctx) error {
	limit := defaultListLimit

	if limitStr := c.Query("limit"); limitStr != "" {
		parsed, err := strconv.Atoi(limitStr)
		if err != nil || parsed <= 0 {
			return badRequest(c, "limit must be a positive integer")
		}

		limit = parsed
	}

	summaries, err := h.store.RunSummaries(c.Context(), limit)
	if err != nil {
		return handleStoreError(c, err)
	}

	return c.JSON(fiber.Map{
		"runs":  summaries,
		"count": len(summaries),
	})
}

// GetRun fetches one run summary by id.
func (h *APIHandlers) GetRun(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "run id is required")
	}

	summary, err := h.store.RunSummaryByID(c.Context(), id)
	if err != nil {
		return handleStoreError(c, err)
	}

	return c.JSON(summary)
}

// TriggerRun starts a run in the background and returns 202 immediately.
// Only one API-triggered run may be in flight per process.
func (h *APIHandlers) TriggerRun(c fiber.Ctx) error {
	req := TriggerRunRequest{DryRun: true}

	if len(c.Body()) > 0 {
		if err := c.Bind().JSON(&req); err != nil {
			return badRequest(c, "invalid request body: "+err.Error())
		}
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	if !h.running.CompareAndSwap(false, true) {
		return conflict(c, "a reconciliation run is already in progress")
	}

	opts := reconcile.RunOptions{DryRun: req.DryRun, Force: req.Force}

	go func() {
		defer h.running.Store(false)

		ctx, cancel := context.WithTimeout(context.Background(), time.Hour)
		defer cancel()

		if _, err := h.runner.Run(ctx, opts); err != nil {
			h.logger.Error("API-triggered run failed", "error", err)
		}
	}()

	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{
		"status":  "accepted",
		"dry_run": req.DryRun,
		"force":   req.Force,
	})
}

// HealthCheck reports the store's health.
func (h *APIHandlers) HealthCheck(c fiber.Ctx) error {
	status := "healthy"
	message := "stocksync API is healthy"
	httpStatus := http.StatusOK
	storeCheck := "ok"

	if err := h.store.HealthCheck(c.Context()); err != nil {
		status = "unhealthy"
		message = "stocksync API is unhealthy"
		httpStatus = http.StatusInternalServerError
		storeCheck = err.Error()
	}

	return c.Status(httpStatus).JSON(fiber.Map{
		"status":  status,
		"message": message,
		"checkers": fiber.Map{
			"repository": storeCheck,
		},
		"timestamp": time.Now().UTC(),
	})
}
